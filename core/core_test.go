package core_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devblok/korugl/core"
	"github.com/gobuffalo/envy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func checker(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestLoadConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "koru.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[time]
frames_per_second = 30

[renderer]
screen_width = 1024
background = [0.0, 0.0, 0.0, 1.0]

[assets]
scene = "scenes/box.glb"
`), 0o644))

	envy.Temp(func() {
		envy.Set(core.EnvScreenHeight, "720")
		envy.Set(core.EnvLogLevel, "debug")

		cfg, err := core.LoadConfiguration(path)
		require.NoError(t, err)
		assert.Equal(t, 30, cfg.Time.FramesPerSecond)
		assert.Equal(t, uint32(1024), cfg.Renderer.ScreenWidth)
		assert.Equal(t, uint32(720), cfg.Renderer.ScreenHeight)
		assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.Renderer.Background)
		assert.Equal(t, "scenes/box.glb", cfg.Assets.Scene)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, float32(45), cfg.Renderer.FieldOfView)
	})
}

func TestLoadConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nscreen_depth = 3\n"), 0o644))

	_, err := core.LoadConfiguration(path)
	assert.Error(t, err)

	_, err = core.LoadConfiguration(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	envy.Temp(func() {
		envy.Set(core.EnvFPS, "fast")
		_, err := core.LoadConfiguration("")
		assert.Error(t, err)
	})
}

func TestLoadShaderSources(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"pbr.vert.glsl":   "vertex",
		"pbr.frag.glsl":   "fragment",
		"notes.txt":       "ignored",
		"pbr.extra.glsl":  "ignored",
		"sky.vert.glsl":   "sky vertex",
		"sky.frag.glsl":   "sky fragment",
		"old.vert.spv":    "ignored",
		"x.y.vert.glsl":   "ignored",
		"debug.geom.glsl": "ignored",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	sources, err := core.LoadShaderSources(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]core.ShaderSource{
		"pbr": {Vertex: "vertex", Fragment: "fragment"},
		"sky": {Vertex: "sky vertex", Fragment: "sky fragment"},
	}, sources)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lonely.vert.glsl"), []byte("v"), 0o644))
	_, err = core.LoadShaderSources(dir)
	assert.Error(t, err)
}

type testSurface struct {
	w, h  int32
	ratio float32
}

func (s *testSurface) Size() (int32, int32) { return s.w, s.h }
func (s *testSurface) PixelRatio() float32  { return s.ratio }

func TestSurfaceTracker(t *testing.T) {
	s := &testSurface{w: 400, h: 300, ratio: 2}
	var tracker core.SurfaceTracker

	w, h, changed := tracker.Check(s)
	assert.True(t, changed)
	assert.Equal(t, int32(800), w)
	assert.Equal(t, int32(600), h)

	_, _, changed = tracker.Check(s)
	assert.False(t, changed)

	s.w = 500
	w, _, changed = tracker.Check(s)
	assert.True(t, changed)
	assert.Equal(t, int32(1000), w)
}

func TestDecodeAndPixels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(4)))

	img, format, err := core.DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	pix := core.RGBAPixels(img)
	assert.Len(t, pix, 4*4*4)
	assert.Equal(t, []uint8{255, 0, 0, 255}, pix[:4])
	assert.Equal(t, []uint8{0, 0, 255, 255}, pix[4:8])
	// the second row starts with blue
	assert.Equal(t, []uint8{0, 0, 255, 255}, pix[16:20])

	scaled := core.ScaleImage(img, 8, 2)
	assert.Equal(t, image.Rect(0, 0, 8, 2), scaled.Bounds())
}

// tgaImage is a 2x2 uncompressed 24 bit targa with a top left origin,
// red in the first pixel and black elsewhere.
func tgaImage() []byte {
	header := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 2, 0, 24, 0x20}
	pixels := []byte{
		0, 0, 255, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
	}
	return append(header, pixels...)
}

func TestDecodeImageFormats(t *testing.T) {
	cases := []struct {
		format string
		encode func(io.Writer, image.Image) error
	}{
		{"png", png.Encode},
		{"jpeg", func(w io.Writer, img image.Image) error { return jpeg.Encode(w, img, nil) }},
		{"bmp", bmp.Encode},
	}
	for _, c := range cases {
		t.Run(c.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.encode(&buf, checker(4)))

			img, format, err := core.DecodeImage(&buf)
			require.NoError(t, err)
			assert.Equal(t, c.format, format)
			assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
		})
	}

	img, format, err := core.DecodeImage(bytes.NewReader(tgaImage()))
	require.NoError(t, err)
	assert.Equal(t, "tga", format)
	assert.Equal(t, []uint8{255, 0, 0, 255}, core.RGBAPixels(img)[:4])
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(2)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	img, err := core.LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	_, err = core.LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestSafeString(t *testing.T) {
	assert.Equal(t, "abc\x00", core.SafeString("abc"))
	assert.Equal(t, "abc\x00", core.SafeString("abc\x00"))
}

func TestTimeFrame(t *testing.T) {
	tm := core.NewTime(core.TimeConfiguration{FramesPerSecond: 50})
	defer tm.Stop()
	assert.Equal(t, 50, tm.Fps())
	assert.Equal(t, 20*time.Millisecond, tm.EventPollDelay())
	assert.NotNil(t, tm.FpsTicker())

	start := time.Now()
	delta, elapsed := tm.Frame(start.Add(time.Second))
	assert.Equal(t, delta, elapsed)
	delta, _ = tm.Frame(start.Add(1500 * time.Millisecond))
	assert.Equal(t, 500*time.Millisecond, delta)
}

func BenchmarkRGBAPixelsSmall(b *testing.B) {
	img := checker(16)
	for idx := 0; idx < b.N; idx++ {
		core.RGBAPixels(img)
	}
}

func BenchmarkRGBAPixelsBig(b *testing.B) {
	img := checker(512)
	for idx := 0; idx < b.N; idx++ {
		core.RGBAPixels(img)
	}
}
