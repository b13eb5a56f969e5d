// Package app provides the core application service for Wails bindings.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"
	"golang.org/x/sync/errgroup"

	"go.aimuz.me/tempo/champion"
	"go.aimuz.me/tempo/channel"
	"go.aimuz.me/tempo/clipboard"
	"go.aimuz.me/tempo/config"
	"go.aimuz.me/tempo/hotkey"
	"go.aimuz.me/tempo/internal/surface"
	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/settings"
	"go.aimuz.me/tempo/store"
	"go.aimuz.me/tempo/telemetry"
)

// Consumer window size, also used to center it on the secondary screen.
const (
	ConsumerWidth  = 420
	ConsumerHeight = 420
)

// Source kinds reported in types.SourceStatus.
const (
	SourceBridge = "bridge"
	SourceLive   = "live"
	SourceReplay = "replay"
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; business logic lives in sub-components.
type Service struct {
	cfg      *config.Config
	kv       *store.Store
	champs   *champion.Table
	loader   *champion.Loader
	settings *settings.Store
	hotkey   *hotkey.Manager

	// UI references - set via Init
	app     *application.App
	windows map[string]application.Window

	// Surfaces
	inGame    *surface.Producer
	lobby     *surface.Producer
	metronome *surface.Metronome
	sources   map[string]*SourceAdapter
	bridges   map[string]*telemetry.Bridge

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	once   sync.Once

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, windows map[string]application.Window, cfg *config.Config) {
	s.app = app
	s.windows = windows

	s.start(context.Background(), cfg, s.openStore(cfg))

	if w, ok := windows[SurfaceSecond]; ok && app != nil {
		placeOnSecondary(appStarted(app), appScreens(app), w, ConsumerWidth, ConsumerHeight)
	}
	s.setupHotkey()
}

// start wires every surface over kv and launches background work. Init calls
// it; tests call it directly without a Wails app.
func (s *Service) start(ctx context.Context, cfg *config.Config, kv *store.Store) {
	s.cfg = cfg
	s.kv = kv

	s.champs = &champion.Table{}
	s.loader = champion.NewLoader(champion.LoaderConfig{
		BaseURL: cfg.DDragonURL,
		Locale:  cfg.Locale,
		Cache:   kv,
	})

	s.settings = settings.New(kv)
	s.settings.Load()

	// Every surface writes and reads through its own handle.
	s.inGame = surface.NewInGameProducer(channel.New(kv), cfg.Epsilon, s.emit)
	s.lobby = surface.NewLobbyProducer(channel.New(kv), s.champs, cfg.Epsilon, s.emit)
	s.metronome = surface.NewMetronome(channel.New(kv), s.settings, s.emit)

	s.sources = map[string]*SourceAdapter{
		SurfaceInGame:  NewSourceAdapter(SurfaceInGame, s.inGame),
		SurfaceDesktop: NewSourceAdapter(SurfaceDesktop, s.lobby),
	}
	s.bridges = map[string]*telemetry.Bridge{
		SurfaceInGame:  telemetry.NewBridge(telemetry.ClassLeague),
		SurfaceDesktop: telemetry.NewBridge(telemetry.ClassLauncher),
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)
	s.ctx = ctx

	s.group.Go(func() error {
		s.loader.Load(ctx, s.champs)
		slog.Info("champion table ready", "count", s.champs.Len(), "version", s.champs.Version())
		return nil
	})
	s.group.Go(func() error {
		return s.metronome.Run(ctx)
	})

	if cfg.LiveClient.Enabled {
		s.sources[SurfaceInGame].Start(ctx, SourceLive, telemetry.NewLivePoller(telemetry.LivePollerConfig{
			BaseURL:  cfg.LiveClient.URL,
			Interval: cfg.LiveClient.PollInterval,
		}))
	} else {
		s.startBridge(ctx, SurfaceInGame)
	}
	s.startBridge(ctx, SurfaceDesktop)
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	s.once.Do(func() {
		if s.hotkey != nil {
			s.hotkey.Stop()
		}
		for _, src := range s.sources {
			src.Stop()
		}
		if s.cancel != nil {
			s.cancel()
		}
		if s.group != nil {
			if err := s.group.Wait(); err != nil {
				slog.Error("background task", "error", err)
			}
		}
		if s.kv != nil {
			if err := s.kv.Close(); err != nil {
				slog.Error("close store", "error", err)
			}
		}
	})
}

func (s *Service) openStore(cfg *config.Config) *store.Store {
	kv, err := store.Open(cfg.StorePath())
	if err == nil {
		slog.Info("store opened", "path", cfg.StorePath())
		return kv
	}
	slog.Error("open store, state will not persist", "path", cfg.StorePath(), "error", err)

	kv, err = store.OpenInMemory()
	if err != nil {
		// Both badger modes failing means the process cannot work at all.
		panic(fmt.Sprintf("open in-memory store: %v", err))
	}
	return kv
}

func (s *Service) setupHotkey() {
	m, err := hotkey.NewManager(s.cfg.Hotkey, s.ToggleInGameWindow)
	if err != nil {
		slog.Error("parse hotkey", "hotkey", s.cfg.Hotkey, "error", err)
		return
	}
	if err := m.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
		return
	}
	s.hotkey = m
}

func (s *Service) startBridge(ctx context.Context, name string) {
	s.sources[name].Start(ctx, SourceBridge, s.bridges[name])
	s.emit(surface.EventSource, s.sources[name].Status())
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Telemetry
// ─────────────────────────────────────────────────────────────────────────────

// PushInfo delivers an info update from the host integration to a producer.
func (s *Service) PushInfo(name, payload string) error {
	b, ok := s.bridges[name]
	if !ok {
		return fmt.Errorf("unknown surface %q", name)
	}
	return b.PushInfo([]byte(payload))
}

// PushEvents delivers a new-events batch to a producer.
func (s *Service) PushEvents(name string, events []telemetry.Event) error {
	b, ok := s.bridges[name]
	if !ok {
		return fmt.Errorf("unknown surface %q", name)
	}
	return b.PushEvents(events)
}

// GetFeatures returns the feature set a producer surface requests.
func (s *Service) GetFeatures(name string) []string {
	b, ok := s.bridges[name]
	if !ok {
		return nil
	}
	return telemetry.Features(b.Class())
}

// StartReplay feeds a recorded session into a producer in place of its
// current source. StopReplay restores the bridge.
func (s *Service) StartReplay(name, path string, speed float64) error {
	src, ok := s.sources[name]
	if !ok {
		return fmt.Errorf("unknown surface %q", name)
	}
	replay, f, err := telemetry.OpenReplay(path, speed)
	if err != nil {
		return err
	}

	src.Start(s.ctx, SourceReplay, closingSource{replay, f.Close})
	s.emit(surface.EventSource, src.Status())
	slog.Info("replay started", "surface", name, "path", path)
	return nil
}

// StopReplay returns a producer to its bridge.
func (s *Service) StopReplay(name string) error {
	if _, ok := s.sources[name]; !ok {
		return fmt.Errorf("unknown surface %q", name)
	}
	s.startBridge(s.ctx, name)
	return nil
}

// GetSourceStatus reports the source attached to each producer.
func (s *Service) GetSourceStatus() []types.SourceStatus {
	return []types.SourceStatus{
		s.sources[SurfaceInGame].Status(),
		s.sources[SurfaceDesktop].Status(),
	}
}

// GetDisplay returns the lobby display line.
func (s *Service) GetDisplay() string {
	return s.lobby.Display()
}

// closingSource closes its file once the wrapped source returns.
type closingSource struct {
	telemetry.Source
	close func() error
}

func (c closingSource) Run(ctx context.Context, h telemetry.Handler) error {
	defer c.close()
	return c.Source.Run(ctx, h)
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetRender returns the consumer's current render state.
func (s *Service) GetRender() types.RenderState {
	return s.metronome.Render()
}

// GetSettings returns the current user settings.
func (s *Service) GetSettings() types.UserSettings {
	return s.settings.Current()
}

// GetStyles lists the selectable styles.
func (s *Service) GetStyles() []types.Style {
	return types.Styles
}

// SetStyle switches the metronome style.
func (s *Service) SetStyle(style string) (types.Appearance, error) {
	a, err := s.settings.ApplyStyle(types.Style(style))
	if err != nil {
		return a, err
	}
	s.metronome.Refresh()
	return a, nil
}

// SetColors replaces the color triple.
func (s *Service) SetColors(c types.Colors) (types.Appearance, error) {
	a, err := s.settings.ApplyColors(c)
	if err != nil {
		return a, err
	}
	s.metronome.Refresh()
	return a, nil
}

// SetSize sets the base size in pixels.
func (s *Service) SetSize(px int) types.Appearance {
	return s.refreshed(s.settings.ApplySize(px))
}

// SetIntensity sets the pulse intensity in percent.
func (s *Service) SetIntensity(pct int) types.Appearance {
	return s.refreshed(s.settings.ApplyIntensity(pct))
}

// SetAnimeImage sets the anime style's image URL.
func (s *Service) SetAnimeImage(url string) types.Appearance {
	return s.refreshed(s.settings.ApplyAnimeImage(url))
}

// SetAnimeScale sets the anime image scale in percent.
func (s *Service) SetAnimeScale(pct int) types.Appearance {
	return s.refreshed(s.settings.ApplyAnimeScale(pct))
}

// SetAnimeOffsetX sets the anime image horizontal offset.
func (s *Service) SetAnimeOffsetX(px int) types.Appearance {
	return s.refreshed(s.settings.ApplyAnimeOffsetX(px))
}

// SetAnimeOffsetY sets the anime image vertical offset.
func (s *Service) SetAnimeOffsetY(px int) types.Appearance {
	return s.refreshed(s.settings.ApplyAnimeOffsetY(px))
}

// ResetSettings restores default settings.
func (s *Service) ResetSettings() types.Appearance {
	return s.refreshed(s.settings.Reset())
}

func (s *Service) refreshed(a types.Appearance) types.Appearance {
	s.metronome.Refresh()
	return a
}

// ─────────────────────────────────────────────────────────────────────────────
// Windows
// ─────────────────────────────────────────────────────────────────────────────

// ToggleInGameWindow minimizes the in-game window, or restores it when it
// is already minimized.
func (s *Service) ToggleInGameWindow() {
	w, ok := s.windows[SurfaceInGame]
	if !ok {
		return
	}
	if w.IsMinimised() {
		w.UnMinimise()
		w.Show()
		return
	}
	w.Minimise()
}

// CopyCadence copies the active cadence to the clipboard and returns the
// copied line.
func (s *Service) CopyCadence() (string, error) {
	text, err := clipboard.CadenceText(s.metronome.Render().Cadence)
	if err != nil {
		return "", err
	}
	if err := clipboard.SetText(s.app, text); err != nil {
		return "", err
	}
	return text, nil
}

// ShowWindows brings every surface to the front.
func (s *Service) ShowWindows() {
	for _, w := range s.windows {
		w.Show()
	}
}
