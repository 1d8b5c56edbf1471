// Package device describes the graphics binding layer the renderer drives.
// The contract is shaped after OpenGL: buffers are bound to targets, vertex
// attributes are described per location and draws are issued against the
// currently bound state. Enum values match their GL counterparts so a GL
// backend can pass them through unchanged.
package device

import glm "github.com/go-gl/mathgl/mgl32"

// Buffer is a device buffer name
type Buffer uint32

// Texture is a device texture name
type Texture uint32

// Framebuffer is a device framebuffer name, 0 is the default target
type Framebuffer uint32

// BufferTarget tells how a buffer is going to be bound
type BufferTarget uint32

// Buffer targets
const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
)

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "array"
	case ElementArrayBuffer:
		return "element_array"
	}
	return "unknown"
}

// BufferUsage is an upload frequency hint
type BufferUsage uint32

// Buffer usages
const (
	StreamDraw  BufferUsage = 0x88E0
	StaticDraw  BufferUsage = 0x88E4
	DynamicDraw BufferUsage = 0x88E8
)

// ComponentType is the scalar type of vertex, index or pixel data
type ComponentType uint32

// Component types, numerically equal to the glTF componentType values
const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
)

// Size returns the byte size of a single component
func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	}
	return 0
}

func (c ComponentType) String() string {
	switch c {
	case Byte:
		return "byte"
	case UnsignedByte:
		return "ubyte"
	case Short:
		return "short"
	case UnsignedShort:
		return "ushort"
	case UnsignedInt:
		return "uint"
	case Float:
		return "float"
	}
	return "unknown"
}

// DrawMode is the primitive topology of a draw
type DrawMode uint32

// Draw modes
const (
	Points DrawMode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

// Feature is a capability toggled with Enable and Disable
type Feature uint32

// Features
const (
	CullFace  Feature = 0x0B44
	DepthTest Feature = 0x0B71
	Blend     Feature = 0x0BE2
)

// DepthFunc is the depth comparison function
type DepthFunc uint32

// Depth functions
const (
	Never    DepthFunc = 0x0200
	Less     DepthFunc = 0x0201
	Equal    DepthFunc = 0x0202
	LEqual   DepthFunc = 0x0203
	Greater  DepthFunc = 0x0204
	NotEqual DepthFunc = 0x0205
	GEqual   DepthFunc = 0x0206
	Always   DepthFunc = 0x0207
)

// TextureTarget is the bind point of a texture, or one face of a cube map
type TextureTarget uint32

// Texture targets
const (
	Texture2D               TextureTarget = 0x0DE1
	TextureCubeMap          TextureTarget = 0x8513
	TextureCubeMapPositiveX TextureTarget = 0x8515
	TextureCubeMapNegativeX TextureTarget = 0x8516
	TextureCubeMapPositiveY TextureTarget = 0x8517
	TextureCubeMapNegativeY TextureTarget = 0x8518
	TextureCubeMapPositiveZ TextureTarget = 0x8519
	TextureCubeMapNegativeZ TextureTarget = 0x851A
)

// CubeMapFaces lists the cube map face targets in upload order
var CubeMapFaces = [6]TextureTarget{
	TextureCubeMapPositiveX,
	TextureCubeMapNegativeX,
	TextureCubeMapPositiveY,
	TextureCubeMapNegativeY,
	TextureCubeMapPositiveZ,
	TextureCubeMapNegativeZ,
}

// TextureFormat is the pixel layout of texture data
type TextureFormat uint32

// Texture formats
const (
	DepthComponent TextureFormat = 0x1902
	RGB            TextureFormat = 0x1907
	RGBA           TextureFormat = 0x1908
)

// TexParamName names a texture parameter
type TexParamName uint32

// Texture parameter names
const (
	TextureMagFilter TexParamName = 0x2800
	TextureMinFilter TexParamName = 0x2801
	TextureWrapS     TexParamName = 0x2802
	TextureWrapT     TexParamName = 0x2803
	TextureWrapR     TexParamName = 0x8072
)

// TexParam is a texture parameter value
type TexParam uint32

// Texture parameter values
const (
	Nearest              TexParam = 0x2600
	Linear               TexParam = 0x2601
	NearestMipmapNearest TexParam = 0x2700
	LinearMipmapNearest  TexParam = 0x2701
	NearestMipmapLinear  TexParam = 0x2702
	LinearMipmapLinear   TexParam = 0x2703
	Repeat               TexParam = 0x2901
	ClampToEdge          TexParam = 0x812F
	MirroredRepeat       TexParam = 0x8370
)

// UsesMipmaps reports whether a minification filter samples mip levels
func (p TexParam) UsesMipmaps() bool {
	switch p {
	case NearestMipmapNearest, LinearMipmapNearest, NearestMipmapLinear, LinearMipmapLinear:
		return true
	}
	return false
}

// FramebufferAttachment is an attachment point of a framebuffer
type FramebufferAttachment uint32

// Framebuffer attachments
const (
	ColorAttachment0 FramebufferAttachment = 0x8CE0
	DepthAttachment  FramebufferAttachment = 0x8D00
)

// ShaderStage identifies a pipeline stage of a program
type ShaderStage uint32

// Shader stages, LinkStage reports failures of the program link step
const (
	LinkStage     ShaderStage = 0
	FragmentStage ShaderStage = 0x8B30
	VertexStage   ShaderStage = 0x8B31
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	case LinkStage:
		return "link"
	}
	return "unknown"
}

// AttributeOptions describes how a bound array buffer feeds one attribute
type AttributeOptions struct {
	Type       ComponentType
	Size       int32
	Normalized bool
	// Stride of 0 means tightly packed
	Stride int32
	Offset int
}

// Program is a linked shader program. Attribute and uniform locations are
// captured once at link time and never change afterwards.
type Program struct {
	ID         uint32
	Attributes map[string]uint32
	Uniforms   map[string]int32
}

// Device is the binding layer the renderer issues all GPU work through.
// Every call must come from the goroutine that owns the device context.
// Creation calls fail with ErrResourceCreation when the device refuses.
type Device interface {
	CreateBuffer(target BufferTarget, usage BufferUsage, data []byte) (Buffer, error)
	BindBuffer(target BufferTarget, b Buffer)

	// CreateProgram compiles and links a program. Compile and link failures
	// are returned as *CompileError.
	CreateProgram(vertex, fragment string, defines []Define) (*Program, error)
	UseProgram(p *Program)

	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, v glm.Vec2)
	Uniform3f(location int32, v glm.Vec3)
	Uniform4f(location int32, v glm.Vec4)
	UniformMatrix3(location int32, m glm.Mat3)
	UniformMatrix4(location int32, m glm.Mat4)

	VertexAttribPointer(location uint32, opts AttributeOptions)
	EnableVertexAttribArray(location uint32)
	DisableVertexAttribArray(location uint32)

	CreateTexture() (Texture, error)
	ActiveTexture(unit uint32)
	BindTexture(target TextureTarget, t Texture)
	TexImage2D(target TextureTarget, level int32, format TextureFormat, width, height int32, kind ComponentType, pixels []byte)
	GenerateMipmap(target TextureTarget)
	TexParameter(target TextureTarget, name TexParamName, value TexParam)

	CreateFramebuffer() (Framebuffer, error)
	BindFramebuffer(f Framebuffer)
	FramebufferTexture2D(attachment FramebufferAttachment, target TextureTarget, t Texture)
	CheckFramebufferComplete() error

	Enable(f Feature)
	Disable(f Feature)
	DepthFunc(f DepthFunc)
	Viewport(x, y, width, height int32)
	ClearColor(c glm.Vec4)
	Clear(color, depth bool)

	DrawArrays(mode DrawMode, first, count int32)
	DrawElements(mode DrawMode, count int32, kind ComponentType, offset int)
}
