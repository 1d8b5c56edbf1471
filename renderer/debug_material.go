package renderer

import (
	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/scene"
	glm "github.com/go-gl/mathgl/mgl32"
)

// DebugMaterial shades everything in one flat color
type DebugMaterial struct {
	Color glm.Vec3
}

// Tag implements Material
func (m *DebugMaterial) Tag() string {
	return "debug"
}

// CreateShader implements Material
func (m *DebugMaterial) CreateShader(dev device.Device, lib ShaderLibrary) (*device.Program, error) {
	src, err := lib.Source("debug")
	if err != nil {
		return nil, err
	}
	return dev.CreateProgram(src.Vertex, src.Fragment, nil)
}

// SetupShader binds the color and the camera and model matrices
func (m *DebugMaterial) SetupShader(_ *Renderer, sh *Shader, node *scene.Node, camera Camera) error {
	sh.SetVec3("color", m.Color)
	sh.SetMat4("projectionMatrix", camera.Projection)
	sh.SetMat4("viewMatrix", camera.View)
	sh.SetMat4("modelMatrix", node.World)
	return nil
}

// Params implements Material
func (m *DebugMaterial) Params() MaterialParams {
	return MaterialParams{
		CullFace:  true,
		DepthTest: true,
		DepthFunc: device.Less,
		DrawMode:  device.Triangles,
	}
}
