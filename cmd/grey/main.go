package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/greyengine/grey/internal/component"
	"github.com/greyengine/grey/internal/config"
	"github.com/greyengine/grey/internal/core/ecs"
	"github.com/greyengine/grey/internal/data"
	"github.com/greyengine/grey/internal/engine"
	"github.com/greyengine/grey/internal/input"
	"github.com/greyengine/grey/internal/render"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(title string, width, height int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              GreyEngine  v0.1.0           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        ECS · batched WebGPU renderer      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mWindow:\033[0m %s \033[90m(%dx%d)\033[0m\n\n", title, width, height)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main engine logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("GREY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch cfg.Debug.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	printBanner(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)

	// 3. Platform and GPU resources
	printSection("Renderer")
	clearColor, err := render.ParseColor(cfg.Window.ClearColor)
	if err != nil {
		return fmt.Errorf("window.clear_color: %w", err)
	}
	platform := engine.NewHeadlessPlatform(float32(cfg.Window.Width), float32(cfg.Window.Height), cfg.Loop.TickRate, cfg.Window.VSync)
	platform.SetClearColor(clearColor)

	eng, err := engine.New(cfg, platform, log)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	printOK(fmt.Sprintf("Pipelines built (shader %s)", eng.Pipelines().Digest()[:12]))
	vcap, icap := eng.Renderer().Capacity()
	printStat("Vertex capacity", vcap)
	printStat("Index capacity", icap)
	fmt.Println()

	// 4. Assets
	printSection("Assets")
	if cfg.Assets.Textures != "" {
		manifest, err := data.LoadTextureManifest(cfg.Assets.Textures)
		if err != nil {
			return fmt.Errorf("load textures: %w", err)
		}
		n, err := eng.LoadTextures(manifest)
		if err != nil {
			return err
		}
		printStat("Textures", n)
	}
	if cfg.Assets.Scene != "" {
		desc, err := data.LoadScene(cfg.Assets.Scene)
		if err != nil {
			return fmt.Errorf("load scene: %w", err)
		}
		if _, err := eng.LoadScene(desc); err != nil {
			return err
		}
		printStat("Scene entities", desc.Count())
	}
	fmt.Println()

	// 5. Run until signalled
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	printSection("Ready")
	printReady(fmt.Sprintf("Main loop (tick: %s, camera: %s)", cfg.Loop.TickRate, eng.Camera().Projection()))
	fmt.Println()

	if err := eng.Run(ctx, &demoApp{quit: cancel}); err != nil {
		return err
	}
	log.Info("engine stopped", zap.Uint64("frames", eng.Time().Frames()), zap.Duration("uptime", eng.Time().Total()))
	return nil
}

// demoApp spins every 3D mesh in the view plane and quits on Escape.
type demoApp struct {
	quit context.CancelFunc
	spin float32
}

func (a *demoApp) Init(e *engine.Engine) error {
	a.spin = 0.8
	return nil
}

func (a *demoApp) Update(e *engine.Engine, dt time.Duration) error {
	if e.Input().KeyPressed(input.KeyEscape) {
		a.quit()
		return nil
	}
	secs := float32(dt.Seconds())
	ecs.Each2(e.World(), func(_ ecs.Entity, tr *component.Transform3D, _ *component.Mesh) {
		tr.Rotation[2] += a.spin * secs
	})
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
