package renderer

import (
	"github.com/chewxy/math32"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Turntable orbits a camera around Center from cursor drags
type Turntable struct {
	Roll        float32
	Pitch       float32
	Radius      float32
	Center      glm.Vec3
	Sensitivity float32

	cursor glm.Vec2
}

// NewTurntable creates a turntable looking at the origin
func NewTurntable(radius, sensitivity float32) *Turntable {
	return &Turntable{
		Radius:      radius,
		Sensitivity: sensitivity,
	}
}

// Start records the cursor position a drag begins at
func (t *Turntable) Start(x, y float32) {
	t.cursor = glm.Vec2{x, y}
}

// Rotate turns by the cursor movement since the previous sample. Roll is
// kept within a quarter turn up or down.
func (t *Turntable) Rotate(x, y float32) {
	const round = 2 * math32.Pi
	const bound = math32.Pi / 2

	dx, dy := x-t.cursor[0], y-t.cursor[1]
	roll := t.Roll + dy*t.Sensitivity
	pitch := t.Pitch - dx*t.Sensitivity

	t.Roll = math32.Min(bound, math32.Max(-bound, math32.Mod(roll, round)))
	t.Pitch = math32.Mod(pitch, round)
	t.cursor = glm.Vec2{x, y}
}

// Position is where the camera sits on the orbit
func (t *Turntable) Position() glm.Vec3 {
	flat := t.Radius * math32.Abs(math32.Cos(t.Roll))
	return glm.Vec3{
		flat * math32.Sin(t.Pitch),
		t.Radius * math32.Sin(t.Roll),
		flat * math32.Cos(t.Pitch),
	}.Add(t.Center)
}

// View returns the view matrix looking from Position at Center
func (t *Turntable) View() glm.Mat4 {
	return glm.LookAtV(t.Position(), t.Center, glm.Vec3{0, 1, 0})
}

// UpdateCamera writes the view matrix into camera h
func (t *Turntable) UpdateCamera(r *Renderer, h store.Handle) error {
	view := t.View()
	return r.UpdateCamera(h, &view, nil)
}
