package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"product-viewer/internal/asset"
	"product-viewer/internal/camera"
	"product-viewer/internal/chrome"
	"product-viewer/internal/commands"
	"product-viewer/internal/config"
	"product-viewer/internal/debug"
	"product-viewer/internal/download"
	"product-viewer/internal/fonts"
	"product-viewer/internal/googlefonts"
	"product-viewer/internal/graphics"
	"product-viewer/internal/logger"
	"product-viewer/internal/remote"
	"product-viewer/internal/shell"
	"product-viewer/internal/terminal"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the viewer YAML config")
	modelURL := flag.String("url", "", "model to show; overrides asset.url")
	flag.Parse()

	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "env:", err)
	}
	prefs, cfgErr := config.Load(*configPath)
	prefs, envErr := config.ApplyEnv(prefs)
	if *modelURL != "" {
		prefs.Asset.URL = *modelURL
	}

	log, err := logger.New(prefs.Log.Level, prefs.Log.Dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if log, err = logger.New(prefs.Log.Level, ""); err != nil {
			os.Exit(1)
		}
	}
	if cfgErr != nil {
		log.WithError(cfgErr).Warn("using default config")
	}
	if envErr != nil {
		log.WithError(envErr).Warn("ignoring environment overrides")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := asset.NewGLTFLoader(prefs.Asset.Root, download.New(prefs.Asset.DownloadDir), log.WithField("component", "loader"))
	loader.Timeout = prefs.Asset.LoadTimeout
	cache := asset.NewCache(loader, log.WithField("component", "cache"))
	defer cache.Close()

	bus := commands.NewBus(log.WithField("component", "commands"))
	cam := camera.New(cameraOptions(prefs.Camera))
	viewer := shell.New(shell.Options{
		URL:            prefs.Asset.URL,
		EvictOnUnmount: prefs.Asset.EvictOnUnmount,
	}, cache, cam, bus, log.Logger)

	reg := commands.NewRegistry()
	viewer.RegisterCommands(reg, log.Writer())

	if prefs.Remote.Enabled {
		srv := remote.New(remote.Options{
			Addr:           prefs.Remote.Addr,
			StatusInterval: prefs.Remote.StatusInterval,
		}, viewer, bus, reg, log)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.WithError(err).Error("remote control stopped")
			}
		}()
	}

	look, err := chrome.Load(prefs.Window.Stylesheet)
	if err != nil {
		log.WithError(err).Warn("using the built-in stylesheet")
		look, _ = chrome.Load("")
	}
	renderer := graphics.NewRenderer(look, graphics.NewBackdrop(prefs.Asset.Environment, log), fontDirs(prefs.Window), log.WithField("component", "renderer"))
	if prefs.Window.FetchFonts {
		renderer.FetchFonts(googlefonts.New())
	}
	input := graphics.NewInput(cam, func() { viewer.PressReset() })
	term := terminal.New(log, reg)
	overlay := debug.New(viewer.Status)
	overlay.ShowFPS = prefs.Debug.ShowFPS
	overlay.ShowStatus = prefs.Debug.ShowStatus

	viewer.Mount()
	defer viewer.Unmount()

	graphics.Run(ctx, prefs.Window, &app{
		viewer:   viewer,
		cam:      cam,
		renderer: renderer,
		input:    input,
		term:     term,
		overlay:  overlay,
	})
}

// app ties the viewer to the window: one Frame per update, then the renderer and overlays.
type app struct {
	viewer   *shell.Shell
	cam      *camera.Controller
	renderer *graphics.Renderer
	input    *graphics.Input
	term     *terminal.Terminal
	overlay  *debug.Debug
	view     shell.View
}

func (a *app) Update(dt float32) {
	a.term.Update()
	if !a.term.IsOpen() && rl.IsKeyPressed(rl.KeyF1) {
		a.overlay.Toggle()
	}
	a.input.Update(a.renderer.Layout(), !a.term.IsOpen())
	a.view = a.viewer.Frame(dt)
}

func (a *app) Draw() {
	a.renderer.Draw(a.view, a.cam.FOV(), a.input.ResetHovered())
	a.term.Draw()
	a.overlay.Draw()
}

func (a *app) Close() {
	a.renderer.Unload()
}

func cameraOptions(p config.CameraPrefs) camera.Options {
	opts := camera.DefaultOptions()
	opts.Home = camera.Pose{Azimuth: p.Azimuth, Polar: p.Polar, Distance: p.Distance}
	opts.FOV = p.FOV
	opts.MinPolar, opts.MaxPolar = p.MinPolar, p.MaxPolar
	opts.MinDistance, opts.MaxDistance = p.MinDistance, p.MaxDistance
	opts.AutoRotate = p.AutoRotate
	opts.AutoRotateSpeed = p.AutoRotateSpeed
	return opts
}

func fontDirs(w config.WindowPrefs) []string {
	if len(w.FontDirs) > 0 {
		return w.FontDirs
	}
	return fonts.BaseDirs()
}
