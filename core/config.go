package core

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration     `toml:"time"`
	Renderer RendererConfiguration `toml:"renderer"`
	Assets   AssetConfiguration    `toml:"assets"`
	Log      LogConfiguration      `toml:"log"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int `toml:"frames_per_second"`

	// EventPollDelay is the window event polling period in milliseconds
	EventPollDelay int `toml:"event_poll_delay"`
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	ScreenWidth  uint32 `toml:"screen_width"`
	ScreenHeight uint32 `toml:"screen_height"`

	// FieldOfView is the vertical field of view in degrees
	FieldOfView float32    `toml:"field_of_view"`
	Near        float32    `toml:"near"`
	Far         float32    `toml:"far"`
	Background  [4]float32 `toml:"background"`
	VSync       bool       `toml:"vsync"`
}

// AssetConfiguration points at the content a host program loads
type AssetConfiguration struct {
	// Scene is a .gltf or .glb file, or an entry name when Archive is set
	Scene   string `toml:"scene"`
	Archive string `toml:"archive"`
	// ShaderDirectory overrides the built-in shader sources when set
	ShaderDirectory string `toml:"shader_directory"`
}

// LogConfiguration selects log verbosity and output format
type LogConfiguration struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Environment variables that override configuration values
const (
	EnvScreenWidth  = "KORU_SCREEN_WIDTH"
	EnvScreenHeight = "KORU_SCREEN_HEIGHT"
	EnvFPS          = "KORU_FPS"
	EnvScene        = "KORU_SCENE"
	EnvArchive      = "KORU_ARCHIVE"
	EnvShaderDir    = "KORU_SHADER_DIR"
	EnvLogLevel     = "KORU_LOG_LEVEL"
)

// DefaultConfiguration returns the settings used when nothing overrides them
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  10,
		},
		Renderer: RendererConfiguration{
			ScreenWidth:  800,
			ScreenHeight: 600,
			FieldOfView:  45,
			Near:         0.1,
			Far:          100,
			Background:   [4]float32{1, 1, 1, 1},
			VSync:        true,
		},
		Log: LogConfiguration{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfiguration starts from the defaults, applies the TOML file at path
// when path is not empty and finally applies environment overrides.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open configuration: %w", err)
		}
		defer f.Close()

		if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return cfg, fmt.Errorf("configuration %s: %s", path, strict.String())
			}
			return cfg, fmt.Errorf("configuration %s: %w", path, err)
		}
	}
	if err := applyEnvironment(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Variables already set are left untouched.
func LoadEnvFiles(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	envy.Reload()
	return nil
}

func applyEnvironment(cfg *Configuration) error {
	for _, u := range []struct {
		name string
		dst  *uint32
	}{
		{EnvScreenWidth, &cfg.Renderer.ScreenWidth},
		{EnvScreenHeight, &cfg.Renderer.ScreenHeight},
	} {
		v := envy.Get(u.name, "")
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", u.name, err)
		}
		*u.dst = uint32(n)
	}

	if v := envy.Get(EnvFPS, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFPS, err)
		}
		cfg.Time.FramesPerSecond = n
	}

	cfg.Assets.Scene = envy.Get(EnvScene, cfg.Assets.Scene)
	cfg.Assets.Archive = envy.Get(EnvArchive, cfg.Assets.Archive)
	cfg.Assets.ShaderDirectory = envy.Get(EnvShaderDir, cfg.Assets.ShaderDirectory)
	cfg.Log.Level = envy.Get(EnvLogLevel, cfg.Log.Level)
	return nil
}
