package core

// Surface is the window or canvas frames are presented on
type Surface interface {
	// Size returns the logical size in window coordinates
	Size() (width, height int32)

	// PixelRatio returns physical pixels per logical pixel
	PixelRatio() float32
}

// SurfaceTracker remembers the last physical surface size it saw, so a
// frame only reacts to a resize when one actually happened.
type SurfaceTracker struct {
	width  int32
	height int32
	seen   bool
}

// Check returns the physical pixel size of s and whether it differs from
// the size seen on the previous call. The first call always reports a change.
func (t *SurfaceTracker) Check(s Surface) (width, height int32, changed bool) {
	w, h := s.Size()
	ratio := s.PixelRatio()
	if ratio <= 0 {
		ratio = 1
	}
	width = int32(float32(w) * ratio)
	height = int32(float32(h) * ratio)

	changed = !t.seen || width != t.width || height != t.height
	t.width, t.height, t.seen = width, height, true
	return width, height, changed
}

// FixedSurface is a Surface of constant size, for offscreen work
type FixedSurface struct {
	Width, Height int32
	Ratio         float32
}

// Size implements Surface
func (f FixedSurface) Size() (int32, int32) {
	return f.Width, f.Height
}

// PixelRatio implements Surface
func (f FixedSurface) PixelRatio() float32 {
	if f.Ratio == 0 {
		return 1
	}
	return f.Ratio
}

// ShaderSource is the vertex and fragment source pair of one shader
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)
