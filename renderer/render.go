package renderer

import (
	"fmt"

	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/store"
)

// RenderScene draws every visible mesh under root as seen by camera.
// World transforms are used as they are, RenderFrame updates them.
// A dangling mesh or material handle aborts the draw.
func (r *Renderer) RenderScene(root, camera store.Handle) error {
	cam, err := r.cameras.Get(camera)
	if err != nil {
		return fmt.Errorf("render camera: %w", err)
	}

	for _, h := range r.scene.CollectVisible(root) {
		node, err := r.scene.Node(h)
		if err != nil {
			return err
		}
		mesh, err := r.meshes.Get(node.Mesh)
		if err != nil {
			return fmt.Errorf("node %s mesh: %w", h, err)
		}
		for idx := range mesh.Primitives {
			if err := r.drawPrimitive(node, &mesh.Primitives[idx], cam); err != nil {
				return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, idx, err)
			}
		}
	}
	return nil
}

func (r *Renderer) drawPrimitive(node *scene.Node, prim *Primitive, camera Camera) error {
	if prim.Material.IsNil() {
		return nil
	}
	material, err := r.materials.Get(prim.Material)
	if err != nil {
		return fmt.Errorf("material: %w", err)
	}
	sh, err := r.CheckupShader(material)
	if err != nil {
		return err
	}

	r.dev.UseProgram(sh.program)
	if err := material.SetupShader(r, sh, node, camera); err != nil {
		return err
	}

	for _, attr := range sh.attributes {
		h, ok := prim.Attributes[attr.Name]
		if !ok {
			continue
		}
		acc, err := r.accessors.Get(h)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", attr.Name, err)
		}
		buf, err := r.buffers.Get(acc.Buffer)
		if err != nil {
			return fmt.Errorf("attribute %s buffer: %w", attr.Name, err)
		}
		r.dev.BindBuffer(device.ArrayBuffer, buf)
		r.dev.VertexAttribPointer(attr.Location, acc.Options)
	}
	r.switchAttributes(sh.slots)

	params := material.Params()
	r.applyParams(params)

	if prim.Indices.IsNil() {
		r.dev.DrawArrays(params.DrawMode, 0, prim.Count)
		return nil
	}
	acc, err := r.accessors.Get(prim.Indices)
	if err != nil {
		return fmt.Errorf("indices: %w", err)
	}
	buf, err := r.buffers.Get(acc.Buffer)
	if err != nil {
		return fmt.Errorf("indices buffer: %w", err)
	}
	r.dev.BindBuffer(device.ElementArrayBuffer, buf)
	r.dev.DrawElements(params.DrawMode, acc.Count, acc.Options.Type, acc.Options.Offset)
	return nil
}

// switchAttributes enables or disables only the slots between the amount
// used by the previous draw and amount.
func (r *Renderer) switchAttributes(amount uint32) {
	for loc := r.attributeSlots; loc < amount; loc++ {
		r.dev.EnableVertexAttribArray(loc)
	}
	for loc := amount; loc < r.attributeSlots; loc++ {
		r.dev.DisableVertexAttribArray(loc)
	}
	r.attributeSlots = amount
}
