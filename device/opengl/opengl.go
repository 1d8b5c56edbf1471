// Package opengl implements device.Device on an OpenGL 4.1 core context.
// A context must be current on the calling thread before New is called and
// for every call afterwards.
package opengl

import (
	"fmt"
	"strings"

	"github.com/devblok/korugl/core"
	"github.com/devblok/korugl/device"
	"github.com/go-gl/gl/v4.1-core/gl"
	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// Device drives the current GL context
type Device struct {
	vao uint32
}

// New initialises the GL bindings and binds the vertex array object every
// attribute call in a core profile needs.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialise gl: %w", err)
	}
	log.WithFields(log.Fields{
		"vendor":   gl.GoStr(gl.GetString(gl.VENDOR)),
		"renderer": gl.GoStr(gl.GetString(gl.RENDERER)),
		"version":  gl.GoStr(gl.GetString(gl.VERSION)),
	}).Info("OpenGL context ready")

	d := &Device{}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	return d, nil
}

// Destroy releases the vertex array object
func (d *Device) Destroy() {
	gl.DeleteVertexArrays(1, &d.vao)
}

func (d *Device) CreateBuffer(target device.BufferTarget, usage device.BufferUsage, data []byte) (device.Buffer, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, device.ErrResourceCreation
	}
	gl.BindBuffer(uint32(target), id)
	if len(data) > 0 {
		gl.BufferData(uint32(target), len(data), gl.Ptr(data), uint32(usage))
	} else {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
	}
	return device.Buffer(id), nil
}

func (d *Device) BindBuffer(target device.BufferTarget, b device.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}

func compileShader(stage device.ShaderStage, source string) (uint32, error) {
	shader := gl.CreateShader(uint32(stage))
	if shader == 0 {
		return 0, device.ErrResourceCreation
	}
	csources, free := gl.Strs(core.SafeString(source))
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, &device.CompileError{
			Stage:  stage,
			Log:    strings.TrimRight(msg, "\x00\n"),
			Source: source,
		}
	}
	return shader, nil
}

func (d *Device) CreateProgram(vertex, fragment string, defines []device.Define) (*device.Program, error) {
	vert, err := compileShader(device.VertexStage, device.AddHeader(vertex, defines, device.VertexStage))
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vert)
	frag, err := compileShader(device.FragmentStage, device.AddHeader(fragment, defines, device.FragmentStage))
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	if program == 0 {
		return nil, device.ErrResourceCreation
	}
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(program)
		return nil, &device.CompileError{
			Stage: device.LinkStage,
			Log:   strings.TrimRight(msg, "\x00\n"),
		}
	}

	p := &device.Program{
		ID:         program,
		Attributes: make(map[string]uint32),
		Uniforms:   make(map[string]int32),
	}
	for _, name := range activeNames(program, gl.ACTIVE_ATTRIBUTES, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib) {
		if loc := gl.GetAttribLocation(program, gl.Str(core.SafeString(name))); loc >= 0 {
			p.Attributes[name] = uint32(loc)
		}
	}
	for _, name := range activeNames(program, gl.ACTIVE_UNIFORMS, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform) {
		if loc := gl.GetUniformLocation(program, gl.Str(core.SafeString(name))); loc >= 0 {
			p.Uniforms[name] = loc
		}
	}
	return p, nil
}

type activeFunc func(program, index uint32, bufSize int32, length, size *int32, xtype *uint32, name *uint8)

// activeNames lists active attribute or uniform names. Array uniforms are
// reported by their base name.
func activeNames(program uint32, countParam, lengthParam uint32, active activeFunc) []string {
	var count, maxLength int32
	gl.GetProgramiv(program, countParam, &count)
	gl.GetProgramiv(program, lengthParam, &maxLength)

	names := make([]string, 0, count)
	buf := make([]uint8, maxLength+1)
	for idx := int32(0); idx < count; idx++ {
		var (
			length, size int32
			xtype        uint32
		)
		active(program, uint32(idx), int32(len(buf)), &length, &size, &xtype, &buf[0])
		names = append(names, strings.TrimSuffix(string(buf[:length]), "[0]"))
	}
	return names
}

func (d *Device) UseProgram(p *device.Program) {
	if p == nil {
		gl.UseProgram(0)
		return
	}
	gl.UseProgram(p.ID)
}

func (d *Device) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (d *Device) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (d *Device) Uniform2f(location int32, v glm.Vec2) {
	gl.Uniform2f(location, v[0], v[1])
}

func (d *Device) Uniform3f(location int32, v glm.Vec3) {
	gl.Uniform3f(location, v[0], v[1], v[2])
}

func (d *Device) Uniform4f(location int32, v glm.Vec4) {
	gl.Uniform4f(location, v[0], v[1], v[2], v[3])
}

func (d *Device) UniformMatrix3(location int32, m glm.Mat3) {
	gl.UniformMatrix3fv(location, 1, false, &m[0])
}

func (d *Device) UniformMatrix4(location int32, m glm.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Device) VertexAttribPointer(location uint32, opts device.AttributeOptions) {
	gl.VertexAttribPointerWithOffset(location, opts.Size, uint32(opts.Type), opts.Normalized, opts.Stride, uintptr(opts.Offset))
}

func (d *Device) EnableVertexAttribArray(location uint32) {
	gl.EnableVertexAttribArray(location)
}

func (d *Device) DisableVertexAttribArray(location uint32) {
	gl.DisableVertexAttribArray(location)
}

func (d *Device) CreateTexture() (device.Texture, error) {
	var id uint32
	gl.GenTextures(1, &id)
	if id == 0 {
		return 0, device.ErrResourceCreation
	}
	return device.Texture(id), nil
}

func (d *Device) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (d *Device) BindTexture(target device.TextureTarget, t device.Texture) {
	gl.BindTexture(uint32(target), uint32(t))
}

func (d *Device) TexImage2D(target device.TextureTarget, level int32, format device.TextureFormat, width, height int32, kind device.ComponentType, pixels []byte) {
	internal := int32(format)
	if format == device.DepthComponent {
		internal = gl.DEPTH_COMPONENT24
	}
	if len(pixels) == 0 {
		gl.TexImage2D(uint32(target), level, internal, width, height, 0, uint32(format), uint32(kind), nil)
		return
	}
	gl.TexImage2D(uint32(target), level, internal, width, height, 0, uint32(format), uint32(kind), gl.Ptr(pixels))
}

func (d *Device) GenerateMipmap(target device.TextureTarget) {
	gl.GenerateMipmap(uint32(target))
}

func (d *Device) TexParameter(target device.TextureTarget, name device.TexParamName, value device.TexParam) {
	gl.TexParameteri(uint32(target), uint32(name), int32(value))
}

func (d *Device) CreateFramebuffer() (device.Framebuffer, error) {
	var id uint32
	gl.GenFramebuffers(1, &id)
	if id == 0 {
		return 0, device.ErrResourceCreation
	}
	return device.Framebuffer(id), nil
}

func (d *Device) BindFramebuffer(f device.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(f))
}

func (d *Device) FramebufferTexture2D(attachment device.FramebufferAttachment, target device.TextureTarget, t device.Texture) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, uint32(attachment), uint32(target), uint32(t), 0)
}

func (d *Device) CheckFramebufferComplete() error {
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w: framebuffer status 0x%x", device.ErrResourceCreation, status)
	}
	return nil
}

func (d *Device) Enable(f device.Feature) {
	gl.Enable(uint32(f))
}

func (d *Device) Disable(f device.Feature) {
	gl.Disable(uint32(f))
}

func (d *Device) DepthFunc(f device.DepthFunc) {
	gl.DepthFunc(uint32(f))
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) ClearColor(c glm.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
}

func (d *Device) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *Device) DrawArrays(mode device.DrawMode, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (d *Device) DrawElements(mode device.DrawMode, count int32, kind device.ComponentType, offset int) {
	gl.DrawElementsWithOffset(uint32(mode), count, uint32(kind), uintptr(offset))
}

var _ device.Device = (*Device)(nil)
