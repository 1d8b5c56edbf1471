package renderer

import (
	"fmt"

	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// Pass is one step of a frame: clear, optionally redirect drawing to a
// render target, run the handler, and restore the default target.
type Pass struct {
	ClearColor bool
	ClearDepth bool
	Background glm.Vec4
	// Target is a render target handle, nil draws to the surface
	Target  store.Handle
	Handler func(r *Renderer) error
}

// NewPass returns a pass clearing color and depth to white
func NewPass(handler func(r *Renderer) error) *Pass {
	return &Pass{
		ClearColor: true,
		ClearDepth: true,
		Background: glm.Vec4{1, 1, 1, 1},
		Handler:    handler,
	}
}

func (p *Pass) render(r *Renderer) error {
	if !p.Target.IsNil() {
		target, err := r.targets.Get(p.Target)
		if err != nil {
			return fmt.Errorf("render target: %w", err)
		}
		fb, err := r.framebuffers.Get(target.Framebuffer)
		if err != nil {
			return fmt.Errorf("render target framebuffer: %w", err)
		}
		r.dev.BindFramebuffer(fb)
		r.dev.Viewport(0, 0, target.Width, target.Height)
		defer r.restoreDefaultTarget()
	}

	r.dev.ClearColor(p.Background)
	r.dev.Clear(p.ClearColor, p.ClearDepth)

	if p.Handler == nil {
		return nil
	}
	return p.Handler(r)
}

func (r *Renderer) restoreDefaultTarget() {
	r.dev.BindFramebuffer(0)
	if r.width > 0 && r.height > 0 {
		r.dev.Viewport(0, 0, r.width, r.height)
	}
}

// RenderFrame begins a frame and runs passes in order. Beginning a frame
// resizes the viewport when the surface size changed and recomputes all
// world transforms. The first failing pass aborts the frame.
func (r *Renderer) RenderFrame(passes []*Pass) error {
	r.beginFrame()
	for idx, p := range passes {
		if err := p.render(r); err != nil {
			return fmt.Errorf("pass %d: %w", idx, err)
		}
	}
	return nil
}

func (r *Renderer) beginFrame() {
	if r.surface != nil {
		if width, height, changed := r.tracker.Check(r.surface); changed {
			r.width, r.height = width, height
			r.dev.Viewport(0, 0, width, height)
			r.logger.WithFields(log.Fields{
				"width":  width,
				"height": height,
			}).Debug("surface resized")
		}
	}
	r.scene.UpdateWorldTransforms()
}
