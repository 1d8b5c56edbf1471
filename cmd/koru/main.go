package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"runtime"
	"time"

	"github.com/devblok/korugl/core"
	"github.com/devblok/korugl/device/opengl"
	"github.com/devblok/korugl/model"
	"github.com/devblok/korugl/renderer"
	"github.com/devblok/korugl/scene"
	"github.com/devblok/korugl/store"
	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

// sdlSurface reports the window size to the renderer
type sdlSurface struct {
	window *sdl.Window
}

func (s sdlSurface) Size() (int32, int32) {
	return s.window.GetSize()
}

func (s sdlSurface) PixelRatio() float32 {
	w, _ := s.window.GetSize()
	dw, _ := s.window.GLGetDrawableSize()
	if w == 0 {
		return 1
	}
	return float32(dw) / float32(w)
}

func newWindow(cfg core.RendererConfiguration) (*sdl.Window, sdl.GLContext, error) {
	for attr, value := range map[sdl.GLattr]int{
		sdl.GL_CONTEXT_MAJOR_VERSION: 4,
		sdl.GL_CONTEXT_MINOR_VERSION: 1,
		sdl.GL_CONTEXT_PROFILE_MASK:  sdl.GL_CONTEXT_PROFILE_CORE,
		sdl.GL_DOUBLEBUFFER:          1,
		sdl.GL_DEPTH_SIZE:            24,
	} {
		if err := sdl.GLSetAttribute(attr, value); err != nil {
			return nil, nil, err
		}
	}

	window, err := sdl.CreateWindow("Koru3D",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth),
		int32(cfg.ScreenHeight),
		sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI)
	if err != nil {
		return nil, nil, err
	}
	ctx, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		return nil, nil, err
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.WithError(err).Warn("swap interval not supported")
	}
	return window, ctx, nil
}

func checkerboard(size, cells int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := size / cells
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{R: 230, G: 230, B: 230, A: 255}
			if (x/cell+y/cell)%2 == 1 {
				c = color.RGBA{R: 40, G: 90, B: 160, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func namedNode(name string) scene.Node {
	n := scene.NewNode()
	n.Name = name
	return n
}

// demoScene builds a few procedural meshes when no scene is configured
func demoScene(r *renderer.Renderer) ([]store.Handle, error) {
	tex, err := r.Bake2DRGBTexture(renderer.DefaultSampler(), checkerboard(256, 8))
	if err != nil {
		return nil, err
	}
	textured := renderer.DefaultPbrConfig()
	textured.Color = glm.Vec3{1, 1, 1}
	textured.ColorMap = tex
	textured.UVRepeat = glm.Vec2{4, 4}
	floorMaterial, err := r.InsertMaterial(renderer.NewPbrMaterial(textured))
	if err != nil {
		return nil, err
	}

	plain := renderer.DefaultPbrConfig()
	plain.Color = glm.Vec3{0.8, 0.3, 0.2}
	solidMaterial, err := r.InsertMaterial(renderer.NewPbrMaterial(plain))
	if err != nil {
		return nil, err
	}

	floor, err := r.BakeQuad(10, 10, floorMaterial)
	if err != nil {
		return nil, err
	}
	cuboid, err := r.BakeCuboid(1, 1, 1, solidMaterial)
	if err != nil {
		return nil, err
	}
	sphere, err := r.BakeSphere(0.6, 32, 16, solidMaterial)
	if err != nil {
		return nil, err
	}

	root := r.InsertNode(namedNode("demo"))
	for _, n := range []struct {
		name     string
		mesh     store.Handle
		position glm.Vec3
		rotation glm.Quat
	}{
		{"floor", floor, glm.Vec3{0, -0.5, 0}, glm.QuatRotate(-glm.DegToRad(90), glm.Vec3{1, 0, 0})},
		{"cuboid", cuboid, glm.Vec3{-1, 0, 0}, glm.QuatRotate(glm.DegToRad(30), glm.Vec3{0, 1, 0})},
		{"sphere", sphere, glm.Vec3{1, 0.1, 0}, glm.QuatIdent()},
	} {
		node := namedNode(n.name)
		node.Parent = root
		node.Mesh = n.mesh
		node.Position = n.position
		node.Rotation = n.rotation
		r.InsertNode(node)
	}
	return []store.Handle{root}, nil
}

func run(c *cli.Context) error {
	if files := c.StringSlice("env"); len(files) > 0 {
		if err := core.LoadEnvFiles(files...); err != nil {
			return err
		}
	}
	cfg, err := core.LoadConfiguration(c.String("config"))
	if err != nil {
		return err
	}
	if err := core.SetupLogging(cfg.Log, os.Stderr); err != nil {
		return err
	}
	logger := core.Component("koru")

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return err
	}
	defer sdl.Quit()

	window, ctx, err := newWindow(cfg.Renderer)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	defer sdl.GLDeleteContext(ctx)

	dev, err := opengl.New()
	if err != nil {
		return err
	}
	defer dev.Destroy()

	opts := []renderer.Option{renderer.WithSurface(sdlSurface{window: window})}
	if dir := cfg.Assets.ShaderDirectory; dir != "" {
		sources, err := core.LoadShaderSources(dir)
		if err != nil {
			return err
		}
		opts = append(opts, renderer.WithShaderSources(sources))
	}
	r := renderer.New(dev, opts...)

	var roots []store.Handle
	if cfg.Assets.Scene != "" {
		doc, err := model.LoadConfigured(cfg.Assets)
		if err != nil {
			return err
		}
		if roots, err = model.BakeGLTF(doc, r); err != nil {
			return err
		}
	} else if roots, err = demoScene(r); err != nil {
		return err
	}
	logger.WithField("stats", fmt.Sprintf("%+v", r.Stats())).Info("scene ready")

	camera := r.InsertCamera(renderer.NewCamera())
	turntable := renderer.NewTurntable(5, 0.01)
	turntable.Roll = glm.DegToRad(20)

	pass := renderer.NewPass(func(r *renderer.Renderer) error {
		for _, root := range roots {
			if err := r.RenderScene(root, camera); err != nil {
				return err
			}
		}
		return nil
	})
	pass.Background = glm.Vec4(cfg.Renderer.Background)
	passes := []*renderer.Pass{pass}

	clock := core.NewTime(cfg.Time)
	defer clock.Stop()

	var (
		dragging bool
		frames   int
		counted  time.Duration
	)
	for {
		<-clock.FpsTicker().C
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				if ev.Keysym.Sym == sdl.K_ESCAPE {
					return nil
				}
			case *sdl.MouseButtonEvent:
				if ev.Button == sdl.BUTTON_LEFT {
					dragging = ev.State == sdl.PRESSED
					turntable.Start(float32(ev.X), float32(ev.Y))
				}
			case *sdl.MouseMotionEvent:
				if dragging {
					turntable.Rotate(float32(ev.X), float32(ev.Y))
				}
			case *sdl.MouseWheelEvent:
				turntable.Radius = glm.Clamp(turntable.Radius-float32(ev.Y)*0.5, 1, cfg.Renderer.Far/2)
			}
		}

		w, h := window.GetSize()
		if h > 0 {
			fovy := glm.DegToRad(cfg.Renderer.FieldOfView)
			if err := r.MakePerspectiveCamera(camera, float32(w)/float32(h), fovy, cfg.Renderer.Near, cfg.Renderer.Far); err != nil {
				return err
			}
		}
		if err := turntable.UpdateCamera(r, camera); err != nil {
			return err
		}
		if err := r.RenderFrame(passes); err != nil {
			return err
		}
		window.GLSwap()

		delta, _ := clock.Frame(time.Now())
		frames++
		if counted += delta; counted >= 5*time.Second {
			logger.WithField("fps", float64(frames)/counted.Seconds()).Debug("frame rate")
			frames, counted = 0, 0
		}
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "koru"
	app.Usage = "view a glTF scene"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML configuration file",
		},
		cli.StringSliceFlag{
			Name:  "env, e",
			Usage: ".env files loaded before the configuration",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
