package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.aimuz.me/tempo/config"
	"go.aimuz.me/tempo/hotkey"
	"go.aimuz.me/tempo/internal/app"
	"go.aimuz.me/tempo/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/tray.png
var trayIconBytes []byte

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type windowSpec struct {
	name          string
	title         string
	width, height int
	overlay       bool
}

var windowSpecs = []windowSpec{
	{name: app.SurfaceInGame, title: "Tempo", width: 360, height: 240, overlay: true},
	{name: app.SurfaceDesktop, title: "Tempo Lobby", width: 480, height: 360},
	{name: app.SurfaceSecond, title: "Tempo Metronome", width: app.ConsumerWidth, height: app.ConsumerHeight},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	logging.Setup(os.Stderr, cfg.SlogLevel())
	if err != nil {
		slog.Error("load config, using defaults", "error", err)
	}

	slog.Info("starting app", "version", version, "commit", commit, "date", date)
	appService := app.New(version)

	wails := application.New(application.Options{
		Name:        "Tempo",
		Description: "Attack-speed metronome for League of Legends",
		Services: []application.Service{
			application.NewService(appService),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when all windows are closed (we have a system tray)
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
		OnShutdown: appService.Shutdown,
	})

	windows := make(map[string]application.Window, len(windowSpecs))
	for _, spec := range windowSpecs {
		windows[spec.name] = newWindow(wails, spec)
	}

	// Initialize service with app and window references
	appService.Init(wails, windows, cfg)

	systemTray := wails.SystemTray.New()
	systemTray.SetIcon(trayIconBytes)

	trayMenu := wails.NewMenu()
	trayMenu.Add("Show Windows").OnClick(func(ctx *application.Context) {
		appService.ShowWindows()
	})
	trayMenu.Add("Toggle In-Game Window").OnClick(func(ctx *application.Context) {
		appService.ToggleInGameWindow()
	})
	trayMenu.Add("Copy Cadence").OnClick(func(ctx *application.Context) {
		if _, err := appService.CopyCadence(); err != nil {
			slog.Warn("copy cadence", "error", err)
		}
	})

	styleMenu := trayMenu.AddSubmenu("Style")
	current := appService.GetSettings().Style
	for _, st := range appService.GetStyles() {
		style := st
		styleMenu.AddRadio(string(style), style == current).OnClick(func(ctx *application.Context) {
			if _, err := appService.SetStyle(string(style)); err != nil {
				slog.Error("set style from tray", "error", err)
			}
		})
	}

	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(ctx *application.Context) {
			appService.Shutdown()
			wails.Quit()
		})

	systemTray.SetMenu(trayMenu)
	slog.Info("tray ready", "toggle", hotkey.Name, "keys", cfg.Hotkey)

	if err := wails.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}

func newWindow(wails *application.App, spec windowSpec) application.Window {
	opts := application.WebviewWindowOptions{
		Name:   spec.name,
		Title:  spec.title,
		Width:  spec.width,
		Height: spec.height,
		URL:    "/?surface=" + spec.name,
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInsetUnified,
			InvisibleTitleBarHeight: 38,
		},
		DevToolsEnabled: version == "dev",
	}
	if spec.overlay {
		opts.Frameless = true
		opts.AlwaysOnTop = true
		opts.BackgroundType = application.BackgroundTypeTransparent
	}

	w := wails.Window.NewWithOptions(opts)

	// Intercept window close: hide instead of destroy so tray can reopen
	w.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		w.Hide()
	})
	return w
}
