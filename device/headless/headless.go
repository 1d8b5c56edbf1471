// Package headless is an in-memory device.Device. It hands out resource
// names, builds programs by scanning shader declarations and records every
// call it receives, which makes it the device of choice for tests and for
// offline tooling that never draws to a screen.
package headless

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/devblok/korugl/device"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded device invocation
type Call struct {
	Name string
	Args []interface{}
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// BufferRecord is what was uploaded for a buffer
type BufferRecord struct {
	Target device.BufferTarget
	Usage  device.BufferUsage
	Data   []byte
}

// TextureRecord tracks the state of a texture
type TextureRecord struct {
	Target  device.TextureTarget
	Format  device.TextureFormat
	Width   int32
	Height  int32
	// Faces counts image uploads at level 0, 6 for a complete cube map
	Faces   int
	Mipmaps bool
	Params  map[device.TexParamName]device.TexParam
}

// Device records calls and keeps enough state to answer questions about
// what the caller did. Setting RefuseResources makes every creation call
// fail, CompileFailure lets a test reject chosen shader sources by
// returning a non-empty compiler log.
type Device struct {
	Calls        []Call
	Buffers      map[device.Buffer]*BufferRecord
	Textures     map[device.Texture]*TextureRecord
	Framebuffers map[device.Framebuffer]map[device.FramebufferAttachment]device.Texture
	Programs     []*device.Program

	RefuseResources bool
	CompileFailure  func(stage device.ShaderStage, source string) string

	next          uint32
	program       *device.Program
	uniforms      map[uint32]map[int32]interface{}
	boundBuffers  map[device.BufferTarget]device.Buffer
	boundTextures map[uint32]device.Texture
	activeUnit    uint32
	framebuffer   device.Framebuffer
	enabled       map[device.Feature]bool
	attribArrays  map[uint32]bool
	depthFunc     device.DepthFunc
	viewport      [4]int32
}

// New creates an empty headless device
func New() *Device {
	return &Device{
		Buffers:       make(map[device.Buffer]*BufferRecord),
		Textures:      make(map[device.Texture]*TextureRecord),
		Framebuffers:  make(map[device.Framebuffer]map[device.FramebufferAttachment]device.Texture),
		uniforms:      make(map[uint32]map[int32]interface{}),
		boundBuffers:  make(map[device.BufferTarget]device.Buffer),
		boundTextures: make(map[uint32]device.Texture),
		enabled:       make(map[device.Feature]bool),
		attribArrays:  make(map[uint32]bool),
		depthFunc:     device.Less,
	}
}

func (d *Device) record(name string, args ...interface{}) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

func (d *Device) allocate() (uint32, error) {
	if d.RefuseResources {
		return 0, device.ErrResourceCreation
	}
	d.next++
	return d.next, nil
}

// Count returns how many calls of the given name were recorded
func (d *Device) Count(name string) int {
	var n int
	for _, c := range d.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// CallsNamed returns the recorded calls of the given name in order
func (d *Device) CallsNamed(name string) []Call {
	var calls []Call
	for _, c := range d.Calls {
		if c.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}

// Reset forgets recorded calls but keeps all resources and state
func (d *Device) Reset() {
	d.Calls = nil
}

// Program returns the program in use
func (d *Device) Program() *device.Program {
	return d.program
}

// Uniform returns the last value set for the named uniform of the
// program in use.
func (d *Device) Uniform(name string) (interface{}, bool) {
	if d.program == nil {
		return nil, false
	}
	loc, ok := d.program.Uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := d.uniforms[d.program.ID][loc]
	return v, ok
}

// Enabled reports whether a feature is currently on
func (d *Device) Enabled(f device.Feature) bool {
	return d.enabled[f]
}

// EnabledAttribArrays returns the number of enabled vertex attribute arrays
func (d *Device) EnabledAttribArrays() int {
	var n int
	for _, on := range d.attribArrays {
		if on {
			n++
		}
	}
	return n
}

// CurrentDepthFunc returns the depth comparison in effect
func (d *Device) CurrentDepthFunc() device.DepthFunc {
	return d.depthFunc
}

// BoundFramebuffer returns the framebuffer draws currently go to
func (d *Device) BoundFramebuffer() device.Framebuffer {
	return d.framebuffer
}

// BoundTexture returns the texture bound to a texture unit
func (d *Device) BoundTexture(unit uint32) device.Texture {
	return d.boundTextures[unit]
}

// CurrentViewport returns the last viewport rectangle
func (d *Device) CurrentViewport() [4]int32 {
	return d.viewport
}

func (d *Device) CreateBuffer(target device.BufferTarget, usage device.BufferUsage, data []byte) (device.Buffer, error) {
	id, err := d.allocate()
	if err != nil {
		return 0, err
	}
	b := device.Buffer(id)
	d.Buffers[b] = &BufferRecord{
		Target: target,
		Usage:  usage,
		Data:   append([]byte(nil), data...),
	}
	d.record("CreateBuffer", target, usage, len(data))
	return b, nil
}

func (d *Device) BindBuffer(target device.BufferTarget, b device.Buffer) {
	d.boundBuffers[target] = b
	d.record("BindBuffer", target, b)
}

func (d *Device) CreateProgram(vertex, fragment string, defines []device.Define) (*device.Program, error) {
	if d.RefuseResources {
		return nil, device.ErrResourceCreation
	}
	vert := device.AddHeader(vertex, defines, device.VertexStage)
	frag := device.AddHeader(fragment, defines, device.FragmentStage)
	for _, stage := range []struct {
		stage  device.ShaderStage
		source string
	}{{device.VertexStage, vert}, {device.FragmentStage, frag}} {
		if d.CompileFailure == nil {
			break
		}
		if msg := d.CompileFailure(stage.stage, stage.source); msg != "" {
			return nil, &device.CompileError{Stage: stage.stage, Log: msg, Source: stage.source}
		}
	}

	id, _ := d.allocate()
	vertLines := preprocess(vert)
	fragLines := preprocess(frag)
	p := &device.Program{
		ID:         id,
		Attributes: make(map[string]uint32),
		Uniforms:   make(map[string]int32),
	}
	for _, line := range vertLines {
		if m := attributeDecl.FindStringSubmatch(line); m != nil {
			p.Attributes[m[1]] = uint32(len(p.Attributes))
		}
	}
	for _, line := range append(vertLines, fragLines...) {
		if m := uniformDecl.FindStringSubmatch(line); m != nil {
			if _, ok := p.Uniforms[m[1]]; !ok {
				p.Uniforms[m[1]] = int32(len(p.Uniforms))
			}
		}
	}
	d.Programs = append(d.Programs, p)
	d.uniforms[p.ID] = make(map[int32]interface{})
	d.record("CreateProgram", p.ID)
	return p, nil
}

func (d *Device) UseProgram(p *device.Program) {
	d.program = p
	var id uint32
	if p != nil {
		id = p.ID
	}
	d.record("UseProgram", id)
}

func (d *Device) setUniform(name string, location int32, v interface{}) {
	if d.program != nil && location >= 0 {
		d.uniforms[d.program.ID][location] = v
	}
	d.record(name, location, v)
}

func (d *Device) Uniform1i(location int32, v int32) {
	d.setUniform("Uniform1i", location, v)
}

func (d *Device) Uniform1f(location int32, v float32) {
	d.setUniform("Uniform1f", location, v)
}

func (d *Device) Uniform2f(location int32, v glm.Vec2) {
	d.setUniform("Uniform2f", location, v)
}

func (d *Device) Uniform3f(location int32, v glm.Vec3) {
	d.setUniform("Uniform3f", location, v)
}

func (d *Device) Uniform4f(location int32, v glm.Vec4) {
	d.setUniform("Uniform4f", location, v)
}

func (d *Device) UniformMatrix3(location int32, m glm.Mat3) {
	d.setUniform("UniformMatrix3", location, m)
}

func (d *Device) UniformMatrix4(location int32, m glm.Mat4) {
	d.setUniform("UniformMatrix4", location, m)
}

func (d *Device) VertexAttribPointer(location uint32, opts device.AttributeOptions) {
	d.record("VertexAttribPointer", location, opts)
}

func (d *Device) EnableVertexAttribArray(location uint32) {
	d.attribArrays[location] = true
	d.record("EnableVertexAttribArray", location)
}

func (d *Device) DisableVertexAttribArray(location uint32) {
	d.attribArrays[location] = false
	d.record("DisableVertexAttribArray", location)
}

func (d *Device) CreateTexture() (device.Texture, error) {
	id, err := d.allocate()
	if err != nil {
		return 0, err
	}
	t := device.Texture(id)
	d.Textures[t] = &TextureRecord{
		Params: make(map[device.TexParamName]device.TexParam),
	}
	d.record("CreateTexture", t)
	return t, nil
}

func (d *Device) ActiveTexture(unit uint32) {
	d.activeUnit = unit
	d.record("ActiveTexture", unit)
}

func (d *Device) BindTexture(target device.TextureTarget, t device.Texture) {
	d.boundTextures[d.activeUnit] = t
	if rec, ok := d.Textures[t]; ok && rec.Target == 0 {
		rec.Target = target
	}
	d.record("BindTexture", target, t)
}

func (d *Device) bound() *TextureRecord {
	return d.Textures[d.boundTextures[d.activeUnit]]
}

func (d *Device) TexImage2D(target device.TextureTarget, level int32, format device.TextureFormat, width, height int32, kind device.ComponentType, pixels []byte) {
	if rec := d.bound(); rec != nil && level == 0 {
		rec.Format = format
		rec.Width = width
		rec.Height = height
		rec.Faces++
	}
	d.record("TexImage2D", target, level, format, width, height, kind, len(pixels))
}

func (d *Device) GenerateMipmap(target device.TextureTarget) {
	if rec := d.bound(); rec != nil {
		rec.Mipmaps = true
	}
	d.record("GenerateMipmap", target)
}

func (d *Device) TexParameter(target device.TextureTarget, name device.TexParamName, value device.TexParam) {
	if rec := d.bound(); rec != nil {
		rec.Params[name] = value
	}
	d.record("TexParameter", target, name, value)
}

func (d *Device) CreateFramebuffer() (device.Framebuffer, error) {
	id, err := d.allocate()
	if err != nil {
		return 0, err
	}
	f := device.Framebuffer(id)
	d.Framebuffers[f] = make(map[device.FramebufferAttachment]device.Texture)
	d.record("CreateFramebuffer", f)
	return f, nil
}

func (d *Device) BindFramebuffer(f device.Framebuffer) {
	d.framebuffer = f
	d.record("BindFramebuffer", f)
}

func (d *Device) FramebufferTexture2D(attachment device.FramebufferAttachment, target device.TextureTarget, t device.Texture) {
	if attachments, ok := d.Framebuffers[d.framebuffer]; ok {
		attachments[attachment] = t
	}
	d.record("FramebufferTexture2D", attachment, target, t)
}

func (d *Device) CheckFramebufferComplete() error {
	d.record("CheckFramebufferComplete")
	attachments, ok := d.Framebuffers[d.framebuffer]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d is not bound", device.ErrResourceCreation, d.framebuffer)
	}
	if _, ok := attachments[device.ColorAttachment0]; !ok {
		return fmt.Errorf("%w: framebuffer %d has no color attachment", device.ErrResourceCreation, d.framebuffer)
	}
	return nil
}

func (d *Device) Enable(f device.Feature) {
	d.enabled[f] = true
	d.record("Enable", f)
}

func (d *Device) Disable(f device.Feature) {
	d.enabled[f] = false
	d.record("Disable", f)
}

func (d *Device) DepthFunc(f device.DepthFunc) {
	d.depthFunc = f
	d.record("DepthFunc", f)
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.viewport = [4]int32{x, y, width, height}
	d.record("Viewport", x, y, width, height)
}

func (d *Device) ClearColor(c glm.Vec4) {
	d.record("ClearColor", c)
}

func (d *Device) Clear(color, depth bool) {
	d.record("Clear", color, depth)
}

func (d *Device) DrawArrays(mode device.DrawMode, first, count int32) {
	d.record("DrawArrays", mode, first, count)
}

func (d *Device) DrawElements(mode device.DrawMode, count int32, kind device.ComponentType, offset int) {
	d.record("DrawElements", mode, count, kind, offset)
}

var (
	attributeDecl = regexp.MustCompile(`^\s*(?:layout\s*\([^)]*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
	uniformDecl   = regexp.MustCompile(`^\s*uniform\s+\w+\s+(\w+)\s*;`)
	directive     = regexp.MustCompile(`^\s*#\s*(\w+)\s*(\w*)`)
)

// preprocess resolves #define, #ifdef, #ifndef, #else and #endif and
// returns the lines that survive. Everything else passes through.
func preprocess(src string) []string {
	defined := make(map[string]bool)
	// active[i] tells whether the i-th nested conditional is taking its branch
	var active []bool
	live := func() bool {
		for _, a := range active {
			if !a {
				return false
			}
		}
		return true
	}

	var out []string
	for _, line := range strings.Split(src, "\n") {
		m := directive.FindStringSubmatch(line)
		if m == nil {
			if live() {
				out = append(out, line)
			}
			continue
		}
		switch m[1] {
		case "define":
			if live() {
				defined[m[2]] = true
			}
		case "ifdef":
			active = append(active, defined[m[2]])
		case "ifndef":
			active = append(active, !defined[m[2]])
		case "else":
			if n := len(active); n > 0 {
				active[n-1] = !active[n-1]
			}
		case "endif":
			if n := len(active); n > 0 {
				active = active[:n-1]
			}
		default:
			if live() {
				out = append(out, line)
			}
		}
	}
	return out
}
