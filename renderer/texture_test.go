package renderer_test

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/renderer"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBake2DTexture(t *testing.T) {
	r, dev := newRenderer()

	h, err := r.Bake2DRGBTexture(renderer.DefaultSampler(), solidImage(4, 2, color.RGBA{R: 255, A: 255}))
	require.NoError(t, err)

	tex, err := r.Texture(h)
	require.NoError(t, err)
	img, err := r.Image(tex.Source)
	require.NoError(t, err)
	assert.Equal(t, device.Texture2D, img.Target)
	assert.Equal(t, int32(4), img.Width)
	assert.Equal(t, int32(2), img.Height)

	rec := dev.Textures[img.Texture]
	require.NotNil(t, rec)
	assert.Equal(t, device.RGB, rec.Format)
	assert.True(t, rec.Mipmaps)

	uploads := dev.CallsNamed("TexImage2D")
	require.Len(t, uploads, 1)
	assert.Equal(t, 4*2*3, uploads[0].Args[6])
}

func TestBake2DTextureWithoutMipmaps(t *testing.T) {
	r, dev := newRenderer()
	h, err := r.Bake2DTexture(device.RGBA, renderer.ClampSampler(), solidImage(2, 2, color.White))
	require.NoError(t, err)

	tex, err := r.Texture(h)
	require.NoError(t, err)
	img, err := r.Image(tex.Source)
	require.NoError(t, err)
	assert.False(t, dev.Textures[img.Texture].Mipmaps)
	assert.Zero(t, dev.Count("GenerateMipmap"))

	_, err = r.Bake2DTexture(device.DepthComponent, renderer.ClampSampler(), solidImage(2, 2, color.White))
	assert.Error(t, err)
}

func TestBakeCubemap(t *testing.T) {
	r, dev := newRenderer()
	var faces [6]image.Image
	for idx := range faces {
		faces[idx] = solidImage(8, 8, color.Gray{Y: uint8(idx * 40)})
	}
	faces[3] = solidImage(16, 4, color.Black)

	h, err := r.BakeCubemap(renderer.ClampSampler(), faces)
	require.NoError(t, err)
	tex, err := r.Texture(h)
	require.NoError(t, err)
	img, err := r.Image(tex.Source)
	require.NoError(t, err)

	rec := dev.Textures[img.Texture]
	require.NotNil(t, rec)
	assert.Equal(t, device.TextureCubeMap, rec.Target)
	assert.Equal(t, 6, rec.Faces)

	uploads := dev.CallsNamed("TexImage2D")
	require.Len(t, uploads, 6)
	for idx, c := range uploads {
		assert.Equal(t, device.CubeMapFaces[idx], c.Args[0])
		assert.Equal(t, int32(8), c.Args[3])
		assert.Equal(t, int32(8), c.Args[4])
	}
}

func TestBindTextureAppliesSampler(t *testing.T) {
	r, dev := newRenderer()
	camera := r.InsertCamera(renderer.NewCamera())
	h, err := r.Bake2DRGBTexture(renderer.DefaultSampler(), solidImage(2, 2, color.White))
	require.NoError(t, err)

	cfg := renderer.DefaultPbrConfig()
	cfg.ColorMap = h
	m, err := r.InsertMaterial(renderer.NewPbrMaterial(cfg))
	require.NoError(t, err)
	quad, err := r.BakeQuad(1, 1, m)
	require.NoError(t, err)
	addNode(r, quad, glm.Vec3{})

	require.NoError(t, r.RenderFrame([]*renderer.Pass{scenePass(camera)}))

	tex, err := r.Texture(h)
	require.NoError(t, err)
	img, err := r.Image(tex.Source)
	require.NoError(t, err)
	assert.Equal(t, img.Texture, dev.BoundTexture(0))
	assert.Equal(t, device.Repeat, dev.Textures[img.Texture].Params[device.TextureWrapS])

	v, ok := dev.Uniform("colorMap")
	require.True(t, ok)
	assert.Equal(t, int32(0), v)
	v, ok = dev.Uniform("uvRepeating")
	require.True(t, ok)
	assert.Equal(t, glm.Vec2{1, 1}, v)
}

func TestBakeRenderTarget(t *testing.T) {
	r, dev := newRenderer()
	h, err := r.BakeRenderTarget(64, 32, renderer.ClampSampler(), true)
	require.NoError(t, err)

	rt, err := r.RenderTarget(h)
	require.NoError(t, err)
	assert.Equal(t, int32(64), rt.Width)
	assert.Equal(t, int32(32), rt.Height)
	require.False(t, rt.DepthTexture.IsNil())

	fb, err := r.Framebuffer(rt.Framebuffer)
	require.NoError(t, err)
	attachments := dev.Framebuffers[fb]
	assert.Len(t, attachments, 2)
	assert.Equal(t, device.Framebuffer(0), dev.BoundFramebuffer())

	shallow, err := r.BakeRenderTarget(16, 16, renderer.ClampSampler(), false)
	require.NoError(t, err)
	rt, err = r.RenderTarget(shallow)
	require.NoError(t, err)
	assert.True(t, rt.DepthTexture.IsNil())
}

func TestBakeRenderTargetRefused(t *testing.T) {
	r, dev := newRenderer()
	dev.RefuseResources = true
	_, err := r.BakeRenderTarget(64, 64, renderer.ClampSampler(), true)
	assert.True(t, errors.Is(err, device.ErrResourceCreation))
	assert.Equal(t, 0, r.Stats().RenderTargets)
}

func TestGeometryShapes(t *testing.T) {
	cuboid := renderer.CuboidGeometry(1, 2, 3)
	assert.Len(t, cuboid.Positions, 24)
	assert.Len(t, cuboid.Normals, 24)
	assert.Len(t, cuboid.UVs, 24)
	assert.Len(t, cuboid.Indices, 36)
	for _, p := range cuboid.Positions {
		assert.InDelta(t, 0.5, abs(p.X()), 1e-6)
		assert.InDelta(t, 1, abs(p.Y()), 1e-6)
		assert.InDelta(t, 1.5, abs(p.Z()), 1e-6)
	}

	sphere := renderer.SphereGeometry(2, 8, 4)
	assert.Len(t, sphere.Positions, 9*5)
	// the pole rows contribute one triangle per segment
	assert.Len(t, sphere.Indices, 3*(8*2*4-2*8))
	for _, p := range sphere.Positions {
		assert.InDelta(t, 2, p.Len(), 1e-4)
	}

	quad := renderer.QuadGeometry(2, 2)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, quad.Indices)
	assert.Equal(t, glm.Vec2{0, 0}, quad.UVs[3])
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestBakeGeometry(t *testing.T) {
	r, dev := newRenderer()
	h, err := r.BakeCuboid(1, 1, 1, store.Handle{})
	require.NoError(t, err)

	mesh, err := r.Mesh(h)
	require.NoError(t, err)
	require.Len(t, mesh.Primitives, 1)
	prim := mesh.Primitives[0]
	assert.Equal(t, int32(36), prim.Count)
	assert.Len(t, prim.Attributes, 3)

	uv, err := r.Accessor(prim.Attributes[renderer.UV])
	require.NoError(t, err)
	assert.Equal(t, int32(2), uv.Options.Size)
	assert.Equal(t, device.Float, uv.Options.Type)

	indices, err := r.Accessor(prim.Indices)
	require.NoError(t, err)
	assert.Equal(t, device.UnsignedShort, indices.Options.Type)
	buf, err := r.Buffer(indices.Buffer)
	require.NoError(t, err)
	rec := dev.Buffers[buf]
	assert.Equal(t, device.ElementArrayBuffer, rec.Target)
	assert.Len(t, rec.Data, 36*2)
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(rec.Data[4:]))

	pos, err := r.Accessor(prim.Attributes[renderer.Position])
	require.NoError(t, err)
	buf, err = r.Buffer(pos.Buffer)
	require.NoError(t, err)
	assert.Len(t, dev.Buffers[buf].Data, 24*3*4)
}

func TestBakeGeometryWideIndices(t *testing.T) {
	r, _ := newRenderer()
	g := renderer.Geometry{
		Positions: make([]glm.Vec3, 70000),
		Indices:   []uint32{0, 1, 69999},
	}
	h, err := r.BakeGeometry(g, store.Handle{})
	require.NoError(t, err)

	mesh, err := r.Mesh(h)
	require.NoError(t, err)
	indices, err := r.Accessor(mesh.Primitives[0].Indices)
	require.NoError(t, err)
	assert.Equal(t, device.UnsignedInt, indices.Options.Type)
	assert.Len(t, mesh.Primitives[0].Attributes, 1)

	_, err = r.BakeGeometry(renderer.Geometry{}, store.Handle{})
	assert.Error(t, err)
}

func TestCameras(t *testing.T) {
	r, _ := newRenderer()
	h := r.InsertCamera(renderer.NewCamera())

	require.NoError(t, r.MakePerspectiveCamera(h, 4.0/3.0, glm.DegToRad(45), 0.1, 100))
	c, err := r.Camera(h)
	require.NoError(t, err)
	assert.Equal(t, glm.Perspective(glm.DegToRad(45), 4.0/3.0, 0.1, 100), c.Projection)
	assert.Equal(t, glm.Ident4(), c.View)

	tt := renderer.NewTurntable(5, 0.01)
	require.NoError(t, tt.UpdateCamera(r, h))
	c, err = r.Camera(h)
	require.NoError(t, err)
	assert.Equal(t, tt.View(), c.View)

	err = r.UpdateCamera(store.Handle{}, nil, nil)
	assert.True(t, errors.Is(err, store.ErrStaleHandle))
}

func TestTurntable(t *testing.T) {
	tt := renderer.NewTurntable(10, 0.01)
	start := tt.Position()
	assert.InDeltaSlice(t, []float32{0, 0, 10}, start[:], 1e-5)

	tt.Start(100, 100)
	tt.Rotate(100, 1000)
	assert.InDelta(t, 3.14159/2, tt.Roll, 1e-4)
	assert.InDelta(t, 10, tt.Position().Y(), 1e-3)

	tt.Start(0, 0)
	tt.Rotate(0, -5000)
	assert.InDelta(t, -3.14159/2, tt.Roll, 1e-4)

	tt.Center = glm.Vec3{1, 1, 1}
	assert.InDelta(t, 10, tt.Position().Sub(tt.Center).Len(), 1e-3)
}
