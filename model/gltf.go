package model

import (
	"fmt"

	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/renderer"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	log "github.com/sirupsen/logrus"
)

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// BakeGLTF imports every accessor, material, mesh, node and scene of doc
// into r and returns one new root node per scene, in document order.
// Buffer data must already be loaded. Sparse accessors, matrix node
// transforms and buffer views shared by index and vertex data fail the
// import with ErrUnsupportedFeature.
func BakeGLTF(doc *gltf.Document, r *renderer.Renderer) ([]store.Handle, error) {
	b := &gltfBaker{
		doc:       doc,
		r:         r,
		views:     make(map[int]store.Handle),
		viewIndex: make(map[int]bool),
	}
	steps := []struct {
		name string
		run  func() error
	}{
		{"accessors", b.bakeAccessors},
		{"materials", b.bakeMaterials},
		{"meshes", b.bakeMeshes},
		{"nodes", b.bakeNodes},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("gltf %s: %w", step.name, err)
		}
	}
	roots, err := b.bakeScenes()
	if err != nil {
		return nil, fmt.Errorf("gltf scenes: %w", err)
	}

	r.Logger().WithField("component", "gltf").WithFields(log.Fields{
		"buffers":   len(b.views),
		"accessors": len(b.accessors),
		"materials": len(b.materials),
		"meshes":    len(b.meshes),
		"nodes":     len(b.nodes),
		"scenes":    len(roots),
	}).Info("document baked")
	return roots, nil
}

type gltfBaker struct {
	doc *gltf.Document
	r   *renderer.Renderer

	// views memoizes the device buffer of every buffer view
	views map[int]store.Handle
	// viewIndex records whether a baked view holds indices
	viewIndex map[int]bool

	accessors       []store.Handle
	materials       []store.Handle
	defaultMaterial store.Handle
	meshes          []store.Handle
	nodes           []store.Handle
}

func componentType(c gltf.ComponentType) (device.ComponentType, error) {
	switch c {
	case gltf.ComponentByte:
		return device.Byte, nil
	case gltf.ComponentUbyte:
		return device.UnsignedByte, nil
	case gltf.ComponentShort:
		return device.Short, nil
	case gltf.ComponentUshort:
		return device.UnsignedShort, nil
	case gltf.ComponentUint:
		return device.UnsignedInt, nil
	case gltf.ComponentFloat:
		return device.Float, nil
	}
	return 0, fmt.Errorf("%w: component type %d", ErrUnsupportedFeature, c)
}

// indexAccessors returns the accessors some primitive draws its indices from
func (b *gltfBaker) indexAccessors() map[int]bool {
	used := make(map[int]bool)
	for _, mesh := range b.doc.Meshes {
		for _, prim := range mesh.Primitives {
			if prim.Indices != nil {
				used[*prim.Indices] = true
			}
		}
	}
	return used
}

func (b *gltfBaker) viewBuffer(idx int, index bool) (store.Handle, error) {
	if h, ok := b.views[idx]; ok {
		if b.viewIndex[idx] != index {
			return store.Handle{}, fmt.Errorf("%w: buffer view %d holds both indices and vertices", ErrUnsupportedFeature, idx)
		}
		return h, nil
	}
	if idx < 0 || idx >= len(b.doc.BufferViews) {
		return store.Handle{}, fmt.Errorf("%w: buffer view %d out of range", ErrInvalidDocument, idx)
	}
	view := b.doc.BufferViews[idx]
	if view.Buffer < 0 || view.Buffer >= len(b.doc.Buffers) {
		return store.Handle{}, fmt.Errorf("%w: buffer %d out of range", ErrInvalidDocument, view.Buffer)
	}
	buf := b.doc.Buffers[view.Buffer]
	end := view.ByteOffset + view.ByteLength
	if end > len(buf.Data) {
		return store.Handle{}, fmt.Errorf("%w: buffer view %d needs %d bytes of buffer %d, %d loaded",
			ErrMissingBufferData, idx, end, view.Buffer, len(buf.Data))
	}

	target := device.ArrayBuffer
	if index {
		target = device.ElementArrayBuffer
	}
	h, err := b.r.CreateBuffer(target, device.StaticDraw, buf.Data[view.ByteOffset:end])
	if err != nil {
		return store.Handle{}, err
	}
	b.views[idx] = h
	b.viewIndex[idx] = index
	return h, nil
}

func (b *gltfBaker) bakeAccessors() error {
	indices := b.indexAccessors()
	for idx, acc := range b.doc.Accessors {
		if acc.Sparse != nil {
			return fmt.Errorf("%w: sparse accessor %d", ErrUnsupportedFeature, idx)
		}
		if acc.BufferView == nil {
			return fmt.Errorf("%w: accessor %d has no buffer view", ErrUnsupportedFeature, idx)
		}
		kind, err := componentType(acc.ComponentType)
		if err != nil {
			return fmt.Errorf("accessor %d: %w", idx, err)
		}
		buf, err := b.viewBuffer(*acc.BufferView, indices[idx])
		if err != nil {
			return fmt.Errorf("accessor %d: %w", idx, err)
		}

		view := b.doc.BufferViews[*acc.BufferView]
		b.accessors = append(b.accessors, b.r.InsertAccessor(renderer.Accessor{
			Buffer: buf,
			Count:  int32(acc.Count),
			Options: device.AttributeOptions{
				Type:       kind,
				Size:       int32(acc.Type.Components()),
				Normalized: acc.Normalized,
				Stride:     int32(view.ByteStride),
				Offset:     acc.ByteOffset,
			},
		}))
	}
	return nil
}

func placeholderMaterial() renderer.Material {
	return renderer.NewPbrMaterial(renderer.DefaultPbrConfig())
}

// bakeMaterials stores a placeholder for every document material, their
// parameters are not read.
func (b *gltfBaker) bakeMaterials() error {
	for idx := range b.doc.Materials {
		h, err := b.r.InsertMaterial(placeholderMaterial())
		if err != nil {
			return fmt.Errorf("material %d: %w", idx, err)
		}
		b.materials = append(b.materials, h)
	}
	return nil
}

func (b *gltfBaker) material(idx *int) (store.Handle, error) {
	if idx != nil {
		if *idx < 0 || *idx >= len(b.materials) {
			return store.Handle{}, fmt.Errorf("%w: material %d out of range", ErrInvalidDocument, *idx)
		}
		return b.materials[*idx], nil
	}
	if b.defaultMaterial.IsNil() {
		h, err := b.r.InsertMaterial(placeholderMaterial())
		if err != nil {
			return store.Handle{}, fmt.Errorf("default material: %w", err)
		}
		b.defaultMaterial = h
	}
	return b.defaultMaterial, nil
}

func (b *gltfBaker) accessor(idx int) (store.Handle, error) {
	if idx < 0 || idx >= len(b.accessors) {
		return store.Handle{}, fmt.Errorf("%w: accessor %d out of range", ErrInvalidDocument, idx)
	}
	return b.accessors[idx], nil
}

func semantic(name string) renderer.AttributeName {
	switch name {
	case gltf.POSITION:
		return renderer.Position
	case gltf.NORMAL:
		return renderer.Normal
	case gltf.TEXCOORD_0:
		return renderer.UV
	}
	return renderer.AttributeName(name)
}

func (b *gltfBaker) bakePrimitive(prim *gltf.Primitive) (renderer.Primitive, error) {
	out := renderer.Primitive{
		Attributes: make(map[renderer.AttributeName]store.Handle, len(prim.Attributes)),
	}
	for name, idx := range prim.Attributes {
		h, err := b.accessor(idx)
		if err != nil {
			return out, fmt.Errorf("attribute %s: %w", name, err)
		}
		out.Attributes[semantic(name)] = h
	}

	counted, ok := out.Attributes[renderer.Position]
	if prim.Indices != nil {
		h, err := b.accessor(*prim.Indices)
		if err != nil {
			return out, fmt.Errorf("indices: %w", err)
		}
		out.Indices, counted, ok = h, h, true
	}
	if ok {
		acc, err := b.r.Accessor(counted)
		if err != nil {
			return out, err
		}
		out.Count = acc.Count
	}

	material, err := b.material(prim.Material)
	if err != nil {
		return out, err
	}
	out.Material = material
	return out, nil
}

func (b *gltfBaker) bakeMeshes() error {
	for idx, mesh := range b.doc.Meshes {
		m := renderer.Mesh{Name: mesh.Name}
		for pidx, prim := range mesh.Primitives {
			p, err := b.bakePrimitive(prim)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", idx, pidx, err)
			}
			m.Primitives = append(m.Primitives, p)
		}
		b.meshes = append(b.meshes, b.r.InsertMesh(m))
	}
	return nil
}

func nodeTransform(n *gltf.Node) (glm.Vec3, glm.Quat, glm.Vec3, error) {
	if n.Matrix != [16]float64{} && n.Matrix != identityMatrix {
		return glm.Vec3{}, glm.Quat{}, glm.Vec3{}, fmt.Errorf("%w: matrix transform", ErrUnsupportedFeature)
	}
	position := glm.Vec3{float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2])}

	rotation := glm.QuatIdent()
	if n.Rotation != [4]float64{} {
		rotation = glm.Quat{
			W: float32(n.Rotation[3]),
			V: glm.Vec3{float32(n.Rotation[0]), float32(n.Rotation[1]), float32(n.Rotation[2])},
		}
	}

	scale := glm.Vec3{1, 1, 1}
	if n.Scale != [3]float64{} {
		scale = glm.Vec3{float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2])}
	}
	return position, rotation, scale, nil
}

// checkHierarchy makes sure children indices are in range, every node has
// at most one parent and no node is its own ancestor.
func (b *gltfBaker) checkHierarchy() error {
	parents := make(map[int]int)
	for idx, n := range b.doc.Nodes {
		for _, child := range n.Children {
			if child < 0 || child >= len(b.doc.Nodes) {
				return fmt.Errorf("%w: node %d child %d out of range", ErrInvalidDocument, idx, child)
			}
			if other, ok := parents[child]; ok {
				return fmt.Errorf("%w: node %d is a child of both %d and %d", ErrInvalidDocument, child, other, idx)
			}
			parents[child] = idx
		}
	}
	for idx := range b.doc.Nodes {
		steps := 0
		for cur, ok := parents[idx]; ok; cur, ok = parents[cur] {
			if cur == idx || steps > len(b.doc.Nodes) {
				return fmt.Errorf("%w: node %d is its own ancestor", ErrInvalidDocument, idx)
			}
			steps++
		}
	}
	return nil
}

func (b *gltfBaker) bakeNodes() error {
	if err := b.checkHierarchy(); err != nil {
		return err
	}

	for idx, n := range b.doc.Nodes {
		position, rotation, scale, err := nodeTransform(n)
		if err != nil {
			return fmt.Errorf("node %d: %w", idx, err)
		}
		node := scene.NewNode()
		node.Name = n.Name
		node.Position = position
		node.Rotation = rotation
		node.Scale = scale
		if n.Mesh != nil {
			if *n.Mesh < 0 || *n.Mesh >= len(b.meshes) {
				return fmt.Errorf("%w: node %d mesh %d out of range", ErrInvalidDocument, idx, *n.Mesh)
			}
			node.Mesh = b.meshes[*n.Mesh]
		}
		b.nodes = append(b.nodes, b.r.InsertNode(node))
	}

	// children keep document order under their parent
	sc := b.r.Scene()
	for idx, n := range b.doc.Nodes {
		for _, child := range n.Children {
			sc.SetParent(b.nodes[child], b.nodes[idx])
		}
	}
	return nil
}

// bakeScenes inserts a root node per scene and moves the scene's top
// level nodes under it. A node listed by several scenes ends up under
// the last one.
func (b *gltfBaker) bakeScenes() ([]store.Handle, error) {
	for idx, s := range b.doc.Scenes {
		for _, n := range s.Nodes {
			if n < 0 || n >= len(b.nodes) {
				return nil, fmt.Errorf("%w: scene %d node %d out of range", ErrInvalidDocument, idx, n)
			}
		}
	}

	sc := b.r.Scene()
	roots := make([]store.Handle, 0, len(b.doc.Scenes))
	for idx, s := range b.doc.Scenes {
		root := scene.NewNode()
		root.Name = s.Name
		if root.Name == "" {
			root.Name = fmt.Sprintf("scene %d", idx)
		}
		h := b.r.InsertNode(root)
		for _, n := range s.Nodes {
			sc.SetParent(b.nodes[n], h)
		}
		roots = append(roots, h)
	}
	return roots, nil
}
