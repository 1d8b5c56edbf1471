// Package renderer owns every GPU side resource of a scene and draws it.
// Resources live in generational arenas and refer to each other by handle.
// Materials are compiled into shaders once per distinct tag and frames are
// rendered as an ordered list of passes.
package renderer

import (
	"fmt"

	"github.com/devblok/korugl/core"
	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/store"
	log "github.com/sirupsen/logrus"
)

// Option configures a Renderer
type Option func(*Renderer)

// WithLogger sets the log entry the renderer reports through
func WithLogger(logger *log.Entry) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithShaderSources overrides built-in shader sources by shader name
func WithShaderSources(sources map[string]core.ShaderSource) Option {
	return func(r *Renderer) {
		r.library.overrides = sources
	}
}

// WithSurface sets the surface whose size drives the viewport
func WithSurface(s core.Surface) Option {
	return func(r *Renderer) {
		r.surface = s
	}
}

// Renderer is the resource store, the shader cache and the frame driver.
// It is not safe for concurrent use, all calls must come from the
// goroutine that owns the device.
type Renderer struct {
	dev     device.Device
	logger  *log.Entry
	library *shaderLibrary

	surface core.Surface
	tracker core.SurfaceTracker
	width   int32
	height  int32

	buffers      *store.Arena[device.Buffer]
	images       *store.Arena[Image]
	samplers     *store.Arena[Sampler]
	textures     *store.Arena[Texture]
	framebuffers *store.Arena[device.Framebuffer]
	targets      *store.Arena[RenderTarget]
	accessors    *store.Arena[Accessor]
	materials    *store.Arena[Material]
	meshes       *store.Arena[Mesh]
	cameras      *store.Arena[Camera]

	scene   *scene.Scene
	shaders map[string]*Shader

	// attributeSlots is the number of vertex attribute arrays enabled by
	// the previous draw
	attributeSlots uint32
}

// New creates a renderer issuing its work to dev
func New(dev device.Device, opts ...Option) *Renderer {
	r := &Renderer{
		dev:          dev,
		logger:       core.Component("renderer"),
		library:      newShaderLibrary(),
		buffers:      store.NewArena[device.Buffer](),
		images:       store.NewArena[Image](),
		samplers:     store.NewArena[Sampler](),
		textures:     store.NewArena[Texture](),
		framebuffers: store.NewArena[device.Framebuffer](),
		targets:      store.NewArena[RenderTarget](),
		accessors:    store.NewArena[Accessor](),
		materials:    store.NewArena[Material](),
		meshes:       store.NewArena[Mesh](),
		cameras:      store.NewArena[Camera](),
		scene:        scene.New(),
		shaders:      make(map[string]*Shader),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Device returns the device the renderer draws with
func (r *Renderer) Device() device.Device {
	return r.dev
}

// Logger returns the renderer's log entry
func (r *Renderer) Logger() *log.Entry {
	return r.logger
}

// Scene returns the scene graph
func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}

// InsertNode adds a node to the scene graph
func (r *Renderer) InsertNode(node scene.Node) store.Handle {
	return r.scene.Insert(node)
}

// SurfaceSize returns the physical surface size seen at the last frame
func (r *Renderer) SurfaceSize() (int32, int32) {
	return r.width, r.height
}

// CreateBuffer uploads data to a new device buffer and stores it
func (r *Renderer) CreateBuffer(target device.BufferTarget, usage device.BufferUsage, data []byte) (store.Handle, error) {
	b, err := r.dev.CreateBuffer(target, usage, data)
	if err != nil {
		return store.Handle{}, fmt.Errorf("create %s buffer: %w", target, err)
	}
	return r.buffers.Insert(b), nil
}

// InsertBuffer stores an existing device buffer
func (r *Renderer) InsertBuffer(b device.Buffer) store.Handle {
	return r.buffers.Insert(b)
}

// Buffer returns the device buffer h refers to
func (r *Renderer) Buffer(h store.Handle) (device.Buffer, error) {
	return r.buffers.Get(h)
}

// InsertImage stores an uploaded image
func (r *Renderer) InsertImage(img Image) store.Handle {
	return r.images.Insert(img)
}

// Image returns the image h refers to
func (r *Renderer) Image(h store.Handle) (Image, error) {
	return r.images.Get(h)
}

// InsertSampler stores a sampler
func (r *Renderer) InsertSampler(s Sampler) store.Handle {
	return r.samplers.Insert(s)
}

// Sampler returns the sampler h refers to
func (r *Renderer) Sampler(h store.Handle) (Sampler, error) {
	return r.samplers.Get(h)
}

// InsertTexture stores a texture
func (r *Renderer) InsertTexture(t Texture) store.Handle {
	return r.textures.Insert(t)
}

// Texture returns the texture h refers to
func (r *Renderer) Texture(h store.Handle) (Texture, error) {
	return r.textures.Get(h)
}

// InsertFramebuffer stores a device framebuffer
func (r *Renderer) InsertFramebuffer(f device.Framebuffer) store.Handle {
	return r.framebuffers.Insert(f)
}

// Framebuffer returns the device framebuffer h refers to
func (r *Renderer) Framebuffer(h store.Handle) (device.Framebuffer, error) {
	return r.framebuffers.Get(h)
}

// InsertRenderTarget stores a render target
func (r *Renderer) InsertRenderTarget(t RenderTarget) store.Handle {
	return r.targets.Insert(t)
}

// RenderTarget returns the render target h refers to
func (r *Renderer) RenderTarget(h store.Handle) (RenderTarget, error) {
	return r.targets.Get(h)
}

// InsertAccessor stores an accessor
func (r *Renderer) InsertAccessor(a Accessor) store.Handle {
	return r.accessors.Insert(a)
}

// Accessor returns the accessor h refers to
func (r *Renderer) Accessor(h store.Handle) (Accessor, error) {
	return r.accessors.Get(h)
}

// InsertMaterial makes sure the shader for m exists and stores m. A
// material whose shader does not compile is not stored.
func (r *Renderer) InsertMaterial(m Material) (store.Handle, error) {
	if _, err := r.CheckupShader(m); err != nil {
		return store.Handle{}, err
	}
	return r.materials.Insert(m), nil
}

// Material returns the material h refers to
func (r *Renderer) Material(h store.Handle) (Material, error) {
	return r.materials.Get(h)
}

// InsertMesh stores a mesh
func (r *Renderer) InsertMesh(m Mesh) store.Handle {
	return r.meshes.Insert(m)
}

// Mesh returns the mesh h refers to
func (r *Renderer) Mesh(h store.Handle) (Mesh, error) {
	return r.meshes.Get(h)
}

// Stats counts stored resources
type Stats struct {
	Buffers, Images, Textures, RenderTargets int
	Accessors, Materials, Meshes, Nodes      int
	Shaders                                  int
}

// Stats returns the current resource counts
func (r *Renderer) Stats() Stats {
	return Stats{
		Buffers:       r.buffers.Len(),
		Images:        r.images.Len(),
		Textures:      r.textures.Len(),
		RenderTargets: r.targets.Len(),
		Accessors:     r.accessors.Len(),
		Materials:     r.materials.Len(),
		Meshes:        r.meshes.Len(),
		Nodes:         r.scene.Len(),
		Shaders:       len(r.shaders),
	}
}
