package renderer

import (
	"fmt"

	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Texture units of the pbr shader
const (
	colorMapUnit uint32 = 0
	envMapUnit   uint32 = 1
)

// PbrConfig configures a PbrMaterial. Nil handles leave a map out.
type PbrConfig struct {
	Color    glm.Vec3
	ColorMap store.Handle
	// UVRepeat tiles the color map, zero means no tiling
	UVRepeat glm.Vec2
	// EnvMap is a cube map texture reflected on the surface, for debugging
	EnvMap store.Handle

	DisableCullFace  bool
	DisableDepthTest bool
	// DrawMode is the primitive topology. The zero value is read as
	// Triangles, lit shading has no use for points.
	DrawMode device.DrawMode
}

// DefaultPbrConfig returns a black, untextured, triangle drawn config
func DefaultPbrConfig() PbrConfig {
	return PbrConfig{
		UVRepeat: glm.Vec2{1, 1},
		DrawMode: device.Triangles,
	}
}

// PbrMaterial is the lit surface material
type PbrMaterial struct {
	cfg PbrConfig
}

// NewPbrMaterial freezes cfg into a material, filling in the tiling and
// topology a literal config leaves zero.
func NewPbrMaterial(cfg PbrConfig) *PbrMaterial {
	if cfg.UVRepeat == (glm.Vec2{}) {
		cfg.UVRepeat = glm.Vec2{1, 1}
	}
	if cfg.DrawMode == device.Points {
		cfg.DrawMode = device.Triangles
	}
	return &PbrMaterial{cfg: cfg}
}

// Config returns the configuration the material was built with
func (m *PbrMaterial) Config() PbrConfig {
	return m.cfg
}

// Tag names the shader permutation: pbr plus one suffix per bound map
func (m *PbrMaterial) Tag() string {
	tag := "pbr"
	if !m.cfg.ColorMap.IsNil() {
		tag += ":color_map"
	}
	if !m.cfg.EnvMap.IsNil() {
		tag += ":env_map"
	}
	return tag
}

func (m *PbrMaterial) defines() []device.Define {
	var defines []device.Define
	if !m.cfg.ColorMap.IsNil() {
		defines = append(defines, device.Def("USE_COLOR_MAP"))
	}
	if !m.cfg.EnvMap.IsNil() {
		defines = append(defines, device.Def("USE_ENV_MAP"))
	}
	return defines
}

// CreateShader compiles the pbr sources with a define per bound map
func (m *PbrMaterial) CreateShader(dev device.Device, lib ShaderLibrary) (*device.Program, error) {
	src, err := lib.Source("pbr")
	if err != nil {
		return nil, err
	}
	return dev.CreateProgram(src.Vertex, src.Fragment, m.defines())
}

// SetupShader binds color, tiling, transforms and the bound maps
func (m *PbrMaterial) SetupShader(r *Renderer, sh *Shader, node *scene.Node, camera Camera) error {
	sh.SetVec3("color", m.cfg.Color)
	sh.SetVec2("uvRepeating", m.cfg.UVRepeat)
	setTransforms(sh, node, camera)

	if !m.cfg.ColorMap.IsNil() {
		if err := r.BindTexture(sh, m.cfg.ColorMap, device.Texture2D, "colorMap", colorMapUnit); err != nil {
			return fmt.Errorf("pbr: %w", err)
		}
	}
	if !m.cfg.EnvMap.IsNil() {
		sh.SetVec3("cameraPosition", camera.View.Inv().Col(3).Vec3())
		if err := r.BindTexture(sh, m.cfg.EnvMap, device.TextureCubeMap, "envMap", envMapUnit); err != nil {
			return fmt.Errorf("pbr: %w", err)
		}
	}
	return nil
}

// Params culls back faces and depth tests unless disabled
func (m *PbrMaterial) Params() MaterialParams {
	return MaterialParams{
		CullFace:  !m.cfg.DisableCullFace,
		DepthTest: !m.cfg.DisableDepthTest,
		DepthFunc: device.Less,
		DrawMode:  m.cfg.DrawMode,
	}
}
