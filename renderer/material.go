package renderer

import (
	"fmt"

	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
)

// MaterialParams are the fixed function states applied right before a
// primitive using the material is drawn.
type MaterialParams struct {
	CullFace  bool
	DepthTest bool
	DepthFunc device.DepthFunc
	DrawMode  device.DrawMode
}

// Material decides how primitives are shaded. Tag must be a pure function
// of the configuration: equal tags share one compiled shader, so two
// configurations that need different shader permutations must report
// different tags.
type Material interface {
	Tag() string
	CreateShader(dev device.Device, lib ShaderLibrary) (*device.Program, error)
	// SetupShader is called with sh in use and binds uniforms and textures
	SetupShader(r *Renderer, sh *Shader, node *scene.Node, camera Camera) error
	Params() MaterialParams
}

// NormalMatrix is the inverse transpose of the upper 3x3 of world. It keeps
// normals perpendicular under non-uniform scale. A singular world matrix
// gives the identity.
func NormalMatrix(world glm.Mat4) glm.Mat3 {
	m := world.Mat3()
	if m.Det() == 0 {
		return glm.Ident3()
	}
	return m.Inv().Transpose()
}

// setTransforms binds the camera and node matrices every lit material uses
func setTransforms(sh *Shader, node *scene.Node, camera Camera) {
	sh.SetMat4("projectionMatrix", camera.Projection)
	sh.SetMat4("viewMatrix", camera.View)
	sh.SetMat4("modelMatrix", node.World)
	sh.SetMat3("normalMatrix", NormalMatrix(node.World))
}

// BindTexture binds texture h to unit, applies its sampler and points the
// named sampler uniform at the unit.
func (r *Renderer) BindTexture(sh *Shader, h store.Handle, target device.TextureTarget, uniform string, unit uint32) error {
	tex, err := r.textures.Get(h)
	if err != nil {
		return fmt.Errorf("texture %s: %w", uniform, err)
	}
	img, err := r.images.Get(tex.Source)
	if err != nil {
		return fmt.Errorf("texture %s image: %w", uniform, err)
	}
	smp, err := r.samplers.Get(tex.Sampler)
	if err != nil {
		return fmt.Errorf("texture %s sampler: %w", uniform, err)
	}

	r.dev.ActiveTexture(unit)
	r.dev.BindTexture(target, img.Texture)
	smp.apply(r.dev, target)
	sh.SetInt(uniform, int32(unit))
	return nil
}

func (r *Renderer) applyParams(p MaterialParams) {
	r.setFeature(device.CullFace, p.CullFace)
	r.setFeature(device.DepthTest, p.DepthTest)
	if p.DepthTest {
		fn := p.DepthFunc
		if fn == 0 {
			fn = device.Less
		}
		r.dev.DepthFunc(fn)
	}
}

func (r *Renderer) setFeature(f device.Feature, on bool) {
	if on {
		r.dev.Enable(f)
	} else {
		r.dev.Disable(f)
	}
}
