package renderer

import (
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
)

// InsertCamera stores a camera
func (r *Renderer) InsertCamera(c Camera) store.Handle {
	return r.cameras.Insert(c)
}

// Camera returns the camera h refers to
func (r *Renderer) Camera(h store.Handle) (Camera, error) {
	return r.cameras.Get(h)
}

// UpdateCamera replaces the matrices that are not nil
func (r *Renderer) UpdateCamera(h store.Handle, view, projection *glm.Mat4) error {
	c, err := r.cameras.GetMut(h)
	if err != nil {
		return err
	}
	if view != nil {
		c.View = *view
	}
	if projection != nil {
		c.Projection = *projection
	}
	return nil
}

// MakePerspectiveCamera sets a perspective projection, fovy in radians
func (r *Renderer) MakePerspectiveCamera(h store.Handle, aspect, fovy, near, far float32) error {
	projection := glm.Perspective(fovy, aspect, near, far)
	return r.UpdateCamera(h, nil, &projection)
}
