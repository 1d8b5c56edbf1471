package renderer

import (
	"fmt"

	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
)

// SkyboxMaterial draws a cube map behind everything else. It is meant for
// a clip space quad such as QuadGeometry(2, 2).
type SkyboxMaterial struct {
	Cubemap store.Handle
}

// NewSkyboxMaterial creates a skybox reading from a cube map texture
func NewSkyboxMaterial(cubemap store.Handle) *SkyboxMaterial {
	return &SkyboxMaterial{Cubemap: cubemap}
}

// Tag implements Material
func (m *SkyboxMaterial) Tag() string {
	return "skybox"
}

// CreateShader implements Material
func (m *SkyboxMaterial) CreateShader(dev device.Device, lib ShaderLibrary) (*device.Program, error) {
	src, err := lib.Source("skybox")
	if err != nil {
		return nil, err
	}
	return dev.CreateProgram(src.Vertex, src.Fragment, nil)
}

// ViewDirectionProjectionInverse maps clip space back to world directions
// as seen from the camera, ignoring the camera translation.
func ViewDirectionProjectionInverse(camera Camera) glm.Mat4 {
	view := camera.View
	view.SetCol(3, glm.Vec4{0, 0, 0, 1})
	m := camera.Projection.Mul4(view)
	if m.Det() == 0 {
		return glm.Ident4()
	}
	return m.Inv()
}

// SetupShader binds the inverse view direction projection and the cube map
func (m *SkyboxMaterial) SetupShader(r *Renderer, sh *Shader, _ *scene.Node, camera Camera) error {
	sh.SetMat4("viewDirectionProjectionInverse", ViewDirectionProjectionInverse(camera))
	if err := r.BindTexture(sh, m.Cubemap, device.TextureCubeMap, "skybox", 0); err != nil {
		return fmt.Errorf("skybox: %w", err)
	}
	return nil
}

// Params depth tests with LEqual so the skybox passes at the far plane
func (m *SkyboxMaterial) Params() MaterialParams {
	return MaterialParams{
		CullFace:  true,
		DepthTest: true,
		DepthFunc: device.LEqual,
		DrawMode:  device.Triangles,
	}
}
