package renderer_test

import (
	"testing"

	"github.com/devblok/korugl/core"
	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/device/headless"
	"github.com/devblok/korugl/renderer"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleMesh(t *testing.T, r *renderer.Renderer, material store.Handle) store.Handle {
	buf, err := r.CreateBuffer(device.ArrayBuffer, device.StaticDraw, make([]byte, 36))
	require.NoError(t, err)
	acc := r.InsertAccessor(renderer.Accessor{
		Buffer:  buf,
		Count:   3,
		Options: device.AttributeOptions{Type: device.Float, Size: 3},
	})
	return r.InsertMesh(renderer.Mesh{
		Name: "triangle",
		Primitives: []renderer.Primitive{{
			Attributes: map[renderer.AttributeName]store.Handle{renderer.Position: acc},
			Count:      3,
			Material:   material,
		}},
	})
}

func addNode(r *renderer.Renderer, mesh store.Handle, position glm.Vec3) store.Handle {
	n := scene.NewNode()
	n.Mesh = mesh
	n.Position = position
	return r.InsertNode(n)
}

func scenePass(camera store.Handle) *renderer.Pass {
	return renderer.NewPass(func(r *renderer.Renderer) error {
		return r.RenderScene(r.Scene().Root(), camera)
	})
}

func TestAttributeSlotsSwitchByDelta(t *testing.T) {
	r, dev := newRenderer(renderer.WithShaderSources(attributeSources))
	camera := r.InsertCamera(renderer.NewCamera())

	for _, name := range []string{"two", "four", "one"} {
		m, err := r.InsertMaterial(attributeMaterial{name: name})
		require.NoError(t, err)
		addNode(r, triangleMesh(t, r, m), glm.Vec3{})
	}
	dev.Reset()

	require.NoError(t, r.RenderFrame([]*renderer.Pass{scenePass(camera)}))

	var switches []headless.Call
	for _, c := range dev.Calls {
		if c.Name == "EnableVertexAttribArray" || c.Name == "DisableVertexAttribArray" {
			switches = append(switches, c)
		}
	}
	assert.Equal(t, []headless.Call{
		{Name: "EnableVertexAttribArray", Args: []interface{}{uint32(0)}},
		{Name: "EnableVertexAttribArray", Args: []interface{}{uint32(1)}},
		{Name: "EnableVertexAttribArray", Args: []interface{}{uint32(2)}},
		{Name: "EnableVertexAttribArray", Args: []interface{}{uint32(3)}},
		{Name: "DisableVertexAttribArray", Args: []interface{}{uint32(1)}},
		{Name: "DisableVertexAttribArray", Args: []interface{}{uint32(2)}},
		{Name: "DisableVertexAttribArray", Args: []interface{}{uint32(3)}},
	}, switches)
	assert.Equal(t, 1, dev.EnabledAttribArrays())
	assert.Equal(t, 3, dev.Count("DrawArrays"))

	// a second frame starts from one enabled slot
	dev.Reset()
	require.NoError(t, r.RenderFrame([]*renderer.Pass{scenePass(camera)}))
	assert.Equal(t, 3, dev.Count("EnableVertexAttribArray"))
	assert.Equal(t, 3, dev.Count("DisableVertexAttribArray"))
}

func TestIndexedAndArrayDraws(t *testing.T) {
	r, dev := newRenderer()
	camera := r.InsertCamera(renderer.NewCamera())
	m, err := r.InsertMaterial(&renderer.DebugMaterial{})
	require.NoError(t, err)

	quad, err := r.BakeQuad(1, 1, m)
	require.NoError(t, err)
	addNode(r, quad, glm.Vec3{})
	addNode(r, triangleMesh(t, r, m), glm.Vec3{})
	dev.Reset()

	require.NoError(t, r.RenderFrame([]*renderer.Pass{scenePass(camera)}))

	elements := dev.CallsNamed("DrawElements")
	require.Len(t, elements, 1)
	assert.Equal(t, []interface{}{device.Triangles, int32(6), device.UnsignedShort, 0}, elements[0].Args)

	arrays := dev.CallsNamed("DrawArrays")
	require.Len(t, arrays, 1)
	assert.Equal(t, []interface{}{device.Triangles, int32(0), int32(3)}, arrays[0].Args)
}

func TestPrimitiveWithoutMaterialIsSkipped(t *testing.T) {
	r, dev := newRenderer()
	camera := r.InsertCamera(renderer.NewCamera())
	addNode(r, triangleMesh(t, r, store.Handle{}), glm.Vec3{})
	dev.Reset()

	require.NoError(t, r.RenderFrame([]*renderer.Pass{scenePass(camera)}))
	assert.Zero(t, dev.Count("UseProgram"))
	assert.Zero(t, dev.Count("DrawArrays"))
}

func TestInvisibleNodesAreNotDrawn(t *testing.T) {
	r, dev := newRenderer()
	camera := r.InsertCamera(renderer.NewCamera())
	m, err := r.InsertMaterial(&renderer.DebugMaterial{})
	require.NoError(t, err)
	h := addNode(r, triangleMesh(t, r, m), glm.Vec3{})

	node, err := r.Scene().Node(h)
	require.NoError(t, err)
	node.Visible = false
	dev.Reset()

	require.NoError(t, r.RenderFrame([]*renderer.Pass{scenePass(camera)}))
	assert.Zero(t, dev.Count("DrawArrays"))
}

func TestUniformsFollowNodeAndMaterial(t *testing.T) {
	r, dev := newRenderer()
	camera := r.InsertCamera(renderer.NewCamera())
	m, err := r.InsertMaterial(&renderer.DebugMaterial{Color: glm.Vec3{0, 1, 0}})
	require.NoError(t, err)
	addNode(r, triangleMesh(t, r, m), glm.Vec3{1, 2, 3})

	require.NoError(t, r.RenderFrame([]*renderer.Pass{scenePass(camera)}))

	v, ok := dev.Uniform("color")
	require.True(t, ok)
	assert.Equal(t, glm.Vec3{0, 1, 0}, v)

	v, ok = dev.Uniform("modelMatrix")
	require.True(t, ok)
	model, ok := v.(glm.Mat4)
	require.True(t, ok)
	expected := glm.Translate3D(1, 2, 3)
	assert.InDeltaSlice(t, expected[:], model[:], 1e-6)
}

func TestMaterialParamsAreApplied(t *testing.T) {
	r, dev := newRenderer()
	camera := r.InsertCamera(renderer.NewCamera())

	cfg := renderer.DefaultPbrConfig()
	cfg.DisableCullFace = true
	m, err := r.InsertMaterial(renderer.NewPbrMaterial(cfg))
	require.NoError(t, err)
	addNode(r, triangleMesh(t, r, m), glm.Vec3{})

	require.NoError(t, r.RenderFrame([]*renderer.Pass{scenePass(camera)}))
	assert.False(t, dev.Enabled(device.CullFace))
	assert.True(t, dev.Enabled(device.DepthTest))
	assert.Equal(t, device.Less, dev.CurrentDepthFunc())
}

func TestDanglingMeshAbortsFrame(t *testing.T) {
	r, _ := newRenderer()
	camera := r.InsertCamera(renderer.NewCamera())
	addNode(r, store.NewArena[int]().Insert(1), glm.Vec3{})

	err := r.RenderFrame([]*renderer.Pass{scenePass(camera)})
	assert.ErrorIs(t, err, store.ErrStaleHandle)
}

func TestPassRestoresDefaultTarget(t *testing.T) {
	r, dev := newRenderer(renderer.WithSurface(core.FixedSurface{Width: 800, Height: 600}))
	target, err := r.BakeRenderTarget(256, 128, renderer.ClampSampler(), true)
	require.NoError(t, err)
	rt, err := r.RenderTarget(target)
	require.NoError(t, err)
	fb, err := r.Framebuffer(rt.Framebuffer)
	require.NoError(t, err)
	dev.Reset()

	var boundDuringPass device.Framebuffer
	pass := renderer.NewPass(func(*renderer.Renderer) error {
		boundDuringPass = dev.BoundFramebuffer()
		return nil
	})
	pass.Target = target
	require.NoError(t, r.RenderFrame([]*renderer.Pass{pass}))

	assert.Equal(t, fb, boundDuringPass)
	assert.Equal(t, device.Framebuffer(0), dev.BoundFramebuffer())

	var viewports [][]interface{}
	for _, c := range dev.CallsNamed("Viewport") {
		viewports = append(viewports, c.Args)
	}
	assert.Equal(t, [][]interface{}{
		{int32(0), int32(0), int32(800), int32(600)},
		{int32(0), int32(0), int32(256), int32(128)},
		{int32(0), int32(0), int32(800), int32(600)},
	}, viewports)
}

func TestPassClears(t *testing.T) {
	r, dev := newRenderer()
	pass := renderer.NewPass(nil)
	pass.ClearDepth = false
	pass.Background = glm.Vec4{0, 0, 0, 1}

	require.NoError(t, r.RenderFrame([]*renderer.Pass{pass}))
	clears := dev.CallsNamed("Clear")
	require.Len(t, clears, 1)
	assert.Equal(t, []interface{}{true, false}, clears[0].Args)
	assert.Equal(t, []interface{}{glm.Vec4{0, 0, 0, 1}}, dev.CallsNamed("ClearColor")[0].Args)
}

type resizableSurface struct {
	width, height int32
}

func (s *resizableSurface) Size() (int32, int32) {
	return s.width, s.height
}

func (s *resizableSurface) PixelRatio() float32 {
	return 2
}

func TestViewportFollowsResize(t *testing.T) {
	surface := &resizableSurface{width: 400, height: 300}
	r, dev := newRenderer(renderer.WithSurface(surface))

	require.NoError(t, r.RenderFrame(nil))
	require.NoError(t, r.RenderFrame(nil))
	assert.Equal(t, 1, dev.Count("Viewport"))
	assert.Equal(t, [4]int32{0, 0, 800, 600}, dev.CurrentViewport())

	surface.width = 500
	require.NoError(t, r.RenderFrame(nil))
	assert.Equal(t, 2, dev.Count("Viewport"))
	assert.Equal(t, [4]int32{0, 0, 1000, 600}, dev.CurrentViewport())

	w, h := r.SurfaceSize()
	assert.Equal(t, int32(1000), w)
	assert.Equal(t, int32(600), h)
}

func TestFrameUpdatesWorldTransforms(t *testing.T) {
	r, _ := newRenderer()
	parent := addNode(r, store.Handle{}, glm.Vec3{1, 0, 0})
	n := scene.NewNode()
	n.Parent = parent
	n.Position = glm.Vec3{0, 1, 0}
	child := r.InsertNode(n)

	require.NoError(t, r.RenderFrame(nil))

	node, err := r.Scene().Node(child)
	require.NoError(t, err)
	assert.InDelta(t, 1, node.World.At(0, 3), 1e-6)
	assert.InDelta(t, 1, node.World.At(1, 3), 1e-6)
}
