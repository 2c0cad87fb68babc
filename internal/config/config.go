package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Render  RenderConfig  `toml:"render"`
	Camera  CameraConfig  `toml:"camera"`
	Loop    LoopConfig    `toml:"loop"`
	Logging LoggingConfig `toml:"logging"`
	Debug   DebugConfig   `toml:"debug"`
	Assets  AssetsConfig  `toml:"assets"`
}

type WindowConfig struct {
	Title      string `toml:"title"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	VSync      bool   `toml:"vsync"`
	ClearColor string `toml:"clear_color"` // palette name or #rrggbb[aa]
}

type RenderConfig struct {
	MaxQuads      int    `toml:"max_quads"`
	TextureFilter string `toml:"texture_filter"` // "nearest" or "linear"
}

type CameraConfig struct {
	Mode       string    `toml:"mode"` // "2d" or "3d"
	Zoom       float32   `toml:"zoom"`
	FOVDegrees float32   `toml:"fov_degrees"`
	Near       float32   `toml:"near"`
	Far        float32   `toml:"far"`
	Eye        []float32 `toml:"eye"`
	Target     []float32 `toml:"target"`
}

type LoopConfig struct {
	TickRate  time.Duration `toml:"tick_rate"`  // 0 = run as fast as the platform delivers frames
	MaxFrames int           `toml:"max_frames"` // 0 = unbounded
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	Profile string `toml:"profile"` // "", "cpu" or "mem"
	ShowFPS bool   `toml:"show_fps"`
}

type AssetsConfig struct {
	Scene    string `toml:"scene"`
	Textures string `toml:"textures"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Render.MaxQuads <= 0 {
		return fmt.Errorf("render.max_quads must be positive, got %d", c.Render.MaxQuads)
	}
	switch c.Render.TextureFilter {
	case "nearest", "linear":
	default:
		return fmt.Errorf("render.texture_filter %q: want nearest or linear", c.Render.TextureFilter)
	}
	switch c.Camera.Mode {
	case "2d", "3d":
	default:
		return fmt.Errorf("camera.mode %q: want 2d or 3d", c.Camera.Mode)
	}
	if c.Camera.Mode == "3d" && (len(c.Camera.Eye) != 3 || len(c.Camera.Target) != 3) {
		return fmt.Errorf("camera.eye and camera.target need 3 numbers each")
	}
	switch c.Debug.Profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("debug.profile %q: want cpu, mem or empty", c.Debug.Profile)
	}
	if c.Loop.TickRate < 0 || c.Loop.MaxFrames < 0 {
		return fmt.Errorf("loop settings must not be negative")
	}
	return nil
}

// Default returns the built-in configuration used when a key is absent.
func Default() *Config { return defaults() }

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "GreyEngine",
			Width:      1280,
			Height:     720,
			VSync:      true,
			ClearColor: "#1a1a26",
		},
		Render: RenderConfig{
			MaxQuads:      10000,
			TextureFilter: "nearest",
		},
		Camera: CameraConfig{
			Mode:       "2d",
			Zoom:       1,
			FOVDegrees: 60,
			Near:       0.1,
			Far:        1000,
			Eye:        []float32{0, 2, 5},
			Target:     []float32{0, 0, 0},
		},
		Loop: LoopConfig{
			TickRate: time.Second / 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
