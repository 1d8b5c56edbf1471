package renderer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/devblok/korugl/core"
	"github.com/devblok/korugl/device"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/packr"
	log "github.com/sirupsen/logrus"
)

// package errors
var (
	ErrShaderSource = errors.New("shader source not found")
)

// ShaderLibrary provides vertex and fragment sources by shader name
type ShaderLibrary interface {
	Source(name string) (core.ShaderSource, error)
}

type shaderLibrary struct {
	box       packr.Box
	overrides map[string]core.ShaderSource
}

func newShaderLibrary() *shaderLibrary {
	return &shaderLibrary{
		box: packr.NewBox("./shaders"),
	}
}

// Source prefers an override and falls back to the packed sources
func (l *shaderLibrary) Source(name string) (core.ShaderSource, error) {
	if src, ok := l.overrides[name]; ok {
		return src, nil
	}
	vert, err := l.box.FindString(name + ".vert.glsl")
	if err != nil {
		return core.ShaderSource{}, fmt.Errorf("%w: %s vertex stage", ErrShaderSource, name)
	}
	frag, err := l.box.FindString(name + ".frag.glsl")
	if err != nil {
		return core.ShaderSource{}, fmt.Errorf("%w: %s fragment stage", ErrShaderSource, name)
	}
	return core.ShaderSource{Vertex: vert, Fragment: frag}, nil
}

// ShaderAttribute is an attribute input of a shader
type ShaderAttribute struct {
	Name     AttributeName
	Location uint32
}

// Shader is a compiled program shared by every material with the same tag
type Shader struct {
	tag        string
	dev        device.Device
	program    *device.Program
	attributes []ShaderAttribute
	slots      uint32
}

func newShader(tag string, dev device.Device, program *device.Program) *Shader {
	sh := &Shader{
		tag:     tag,
		dev:     dev,
		program: program,
	}
	for name, loc := range program.Attributes {
		sh.attributes = append(sh.attributes, ShaderAttribute{Name: AttributeName(name), Location: loc})
		if loc+1 > sh.slots {
			sh.slots = loc + 1
		}
	}
	sort.Slice(sh.attributes, func(i, j int) bool {
		return sh.attributes[i].Location < sh.attributes[j].Location
	})
	return sh
}

// Tag returns the material tag the shader was compiled for
func (s *Shader) Tag() string {
	return s.tag
}

// Program returns the linked device program
func (s *Shader) Program() *device.Program {
	return s.program
}

// Attributes returns the attribute inputs ordered by location
func (s *Shader) Attributes() []ShaderAttribute {
	return s.attributes
}

// Slots is the number of attribute slots the shader needs enabled
func (s *Shader) Slots() uint32 {
	return s.slots
}

// HasUniform reports whether the program has an active uniform called name
func (s *Shader) HasUniform(name string) bool {
	_, ok := s.program.Uniforms[name]
	return ok
}

// Uniform setters do nothing for names the program lacks, compilers drop
// uniforms a permutation does not use.

// SetInt sets an int or sampler uniform
func (s *Shader) SetInt(name string, v int32) {
	if loc, ok := s.program.Uniforms[name]; ok {
		s.dev.Uniform1i(loc, v)
	}
}

// SetFloat sets a float uniform
func (s *Shader) SetFloat(name string, v float32) {
	if loc, ok := s.program.Uniforms[name]; ok {
		s.dev.Uniform1f(loc, v)
	}
}

// SetVec2 sets a vec2 uniform
func (s *Shader) SetVec2(name string, v glm.Vec2) {
	if loc, ok := s.program.Uniforms[name]; ok {
		s.dev.Uniform2f(loc, v)
	}
}

// SetVec3 sets a vec3 uniform
func (s *Shader) SetVec3(name string, v glm.Vec3) {
	if loc, ok := s.program.Uniforms[name]; ok {
		s.dev.Uniform3f(loc, v)
	}
}

// SetVec4 sets a vec4 uniform
func (s *Shader) SetVec4(name string, v glm.Vec4) {
	if loc, ok := s.program.Uniforms[name]; ok {
		s.dev.Uniform4f(loc, v)
	}
}

// SetMat3 sets a mat3 uniform
func (s *Shader) SetMat3(name string, m glm.Mat3) {
	if loc, ok := s.program.Uniforms[name]; ok {
		s.dev.UniformMatrix3(loc, m)
	}
}

// SetMat4 sets a mat4 uniform
func (s *Shader) SetMat4(name string, m glm.Mat4) {
	if loc, ok := s.program.Uniforms[name]; ok {
		s.dev.UniformMatrix4(loc, m)
	}
}

// CheckupShader returns the shader cached under the tag of m, compiling it
// first when the tag is new. Compile errors are logged with the line
// numbered source and returned.
func (r *Renderer) CheckupShader(m Material) (*Shader, error) {
	tag := m.Tag()
	if sh, ok := r.shaders[tag]; ok {
		return sh, nil
	}

	program, err := m.CreateShader(r.dev, r.library)
	if err != nil {
		var compileErr *device.CompileError
		if errors.As(err, &compileErr) {
			r.logger.WithFields(log.Fields{
				"tag":   tag,
				"stage": compileErr.Stage,
			}).Errorf("shader compilation failed\n%s", compileErr.Annotated())
		}
		return nil, fmt.Errorf("shader %s: %w", tag, err)
	}

	sh := newShader(tag, r.dev, program)
	r.shaders[tag] = sh
	r.logger.WithFields(log.Fields{
		"tag":        tag,
		"attributes": len(program.Attributes),
		"uniforms":   len(program.Uniforms),
	}).Debug("shader compiled")
	return sh, nil
}

// Shader returns the cached shader for tag
func (r *Renderer) Shader(tag string) (*Shader, bool) {
	sh, ok := r.shaders[tag]
	return sh, ok
}
