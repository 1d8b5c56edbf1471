package renderer

import (
	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
)

// AttributeName is the semantic of a vertex attribute. Shaders declare
// their inputs under the same names.
type AttributeName string

// Well known attribute semantics, any other name is passed through as is
const (
	Position AttributeName = "position"
	Normal   AttributeName = "normal"
	UV       AttributeName = "uv"
)

// Accessor is a typed view into a device buffer
type Accessor struct {
	Buffer  store.Handle
	Count   int32
	Options device.AttributeOptions
}

// Primitive is one drawable unit of a mesh. A nil Indices handle means a
// non-indexed draw of Count vertices, a nil Material skips the primitive.
type Primitive struct {
	Attributes map[AttributeName]store.Handle
	Indices    store.Handle
	Count      int32
	Material   store.Handle
}

// Mesh is an ordered list of primitives
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Image is a device texture together with what was uploaded to it
type Image struct {
	Texture device.Texture
	Target  device.TextureTarget
	Format  device.TextureFormat
	Width   int32
	Height  int32
}

// Texture pairs an image with the sampler it is read through
type Texture struct {
	Source  store.Handle
	Sampler store.Handle
}

// RenderTarget is an offscreen framebuffer with its attachments
type RenderTarget struct {
	Framebuffer  store.Handle
	ColorTexture store.Handle
	// DepthTexture is nil when the target was baked without depth
	DepthTexture store.Handle
	Width        int32
	Height       int32
}

// Camera holds view and projection matrices
type Camera struct {
	View       glm.Mat4
	Projection glm.Mat4
}

// NewCamera returns a camera with identity matrices
func NewCamera() Camera {
	return Camera{
		View:       glm.Ident4(),
		Projection: glm.Ident4(),
	}
}
