// Package settings persists the user's metronome preferences and derives the
// appearance of the consumer surface from them.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"

	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/store"
)

// Key is the persisted key holding the settings record.
const Key = "tempo_settings"

// Bounds for numeric settings. Out-of-range input is clamped.
const (
	MinSize, MaxSize             = 40, 640
	MinIntensity, MaxIntensity   = 0, 200
	MinAnimeScale, MaxAnimeScale = 10, 400
	MaxAnimeOffset               = 1000
)

var (
	ErrInvalidStyle = errors.New("settings: invalid style")
	ErrInvalidColor = errors.New("settings: invalid color")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Defaults returns the built-in settings.
func Defaults() types.UserSettings {
	return types.UserSettings{
		Style: types.StyleOrb,
		Colors: types.Colors{
			Core: "#ff4655",
			Glow: "#ff8a95",
			Dim:  "#3a0d12",
		},
		Size:       160,
		Intensity:  100,
		AnimeScale: 100,
	}
}

// Store holds the current settings and writes every change through to the
// persisted record.
type Store struct {
	mu  sync.Mutex
	kv  *store.Store
	cur types.UserSettings
}

// New creates a Store holding defaults. Call Load to read the persisted record.
func New(kv *store.Store) *Store {
	return &Store{kv: kv, cur: Defaults()}
}

// Load reads the persisted record. Missing or corrupt data yields defaults;
// a corrupt record is left in place until the next save replaces it.
func (s *Store) Load() types.UserSettings {
	loaded := s.read()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = loaded
	return s.cur
}

func (s *Store) read() types.UserSettings {
	data, err := s.kv.Get(Key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("read settings", "error", err)
		}
		return Defaults()
	}

	// Unmarshal over defaults so absent fields keep their default.
	u := Defaults()
	if err := json.Unmarshal(data, &u); err != nil {
		slog.Warn("corrupt settings record, using defaults", "error", err)
		return Defaults()
	}
	return Normalize(u)
}

// Save persists u. Errors are logged, never returned.
func (s *Store) Save(u types.UserSettings) {
	data, err := json.Marshal(u)
	if err != nil {
		slog.Error("marshal settings", "error", err)
		return
	}
	if err := s.kv.Set(Key, data); err != nil {
		slog.Error("save settings", "error", err)
	}
}

// Current returns the in-memory settings.
func (s *Store) Current() types.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Appearance returns the current derived appearance.
func (s *Store) Appearance() types.Appearance {
	return AppearanceOf(s.Current())
}

// Reset restores defaults and persists them.
func (s *Store) Reset() types.Appearance {
	return s.update(func(u *types.UserSettings) { *u = Defaults() })
}

// update applies fn, persists and returns the new appearance.
func (s *Store) update(fn func(u *types.UserSettings)) types.Appearance {
	s.mu.Lock()
	fn(&s.cur)
	s.cur = Normalize(s.cur)
	u := s.cur
	s.mu.Unlock()

	s.Save(u)
	return AppearanceOf(u)
}

// ─────────────────────────────────────────────────────────────────────────────
// Apply operations
//
// Each is idempotent: applying the same value twice yields the same
// appearance and the same persisted record.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyStyle switches the active style.
func (s *Store) ApplyStyle(style types.Style) (types.Appearance, error) {
	if !slices.Contains(types.Styles, style) {
		return s.Appearance(), fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}
	return s.update(func(u *types.UserSettings) { u.Style = style }), nil
}

// ApplyColors replaces the color triple. All three must be #rrggbb; they
// are stored lowercased.
func (s *Store) ApplyColors(c types.Colors) (types.Appearance, error) {
	for _, v := range []string{c.Core, c.Glow, c.Dim} {
		if !hexColor.MatchString(v) {
			return s.Appearance(), fmt.Errorf("%w: %q", ErrInvalidColor, v)
		}
	}
	c = types.Colors{Core: strings.ToLower(c.Core), Glow: strings.ToLower(c.Glow), Dim: strings.ToLower(c.Dim)}
	return s.update(func(u *types.UserSettings) { u.Colors = c }), nil
}

// ApplySize sets the base size in pixels.
func (s *Store) ApplySize(px int) types.Appearance {
	return s.update(func(u *types.UserSettings) { u.Size = px })
}

// ApplyIntensity sets the pulse intensity in percent.
func (s *Store) ApplyIntensity(pct int) types.Appearance {
	return s.update(func(u *types.UserSettings) { u.Intensity = pct })
}

// ApplyAnimeImage sets the anime style's image URL.
func (s *Store) ApplyAnimeImage(url string) types.Appearance {
	return s.update(func(u *types.UserSettings) { u.AnimeImageURL = strings.TrimSpace(url) })
}

// ApplyAnimeScale sets the anime image scale in percent.
func (s *Store) ApplyAnimeScale(pct int) types.Appearance {
	return s.update(func(u *types.UserSettings) { u.AnimeScale = pct })
}

// ApplyAnimeOffsetX sets the anime image horizontal offset in pixels.
func (s *Store) ApplyAnimeOffsetX(px int) types.Appearance {
	return s.update(func(u *types.UserSettings) { u.AnimeOffsetX = px })
}

// ApplyAnimeOffsetY sets the anime image vertical offset in pixels.
func (s *Store) ApplyAnimeOffsetY(px int) types.Appearance {
	return s.update(func(u *types.UserSettings) { u.AnimeOffsetY = px })
}

// ─────────────────────────────────────────────────────────────────────────────
// Derivation
// ─────────────────────────────────────────────────────────────────────────────

// AppearanceOf derives the rendered appearance of u.
func AppearanceOf(u types.UserSettings) types.Appearance {
	return types.Appearance{
		Settings:   u,
		Layout:     LayoutFor(u.Size),
		AnimePanel: u.Style == types.StyleAnime,
		Opacity:    float64(u.Intensity) / 100,
	}
}

// Normalize replaces invalid style and colors with their defaults and clamps
// numbers. Absent fields are defaulted by the reader, not here, so a zero
// size clamps like any other small size.
func Normalize(u types.UserSettings) types.UserSettings {
	d := Defaults()

	if !slices.Contains(types.Styles, u.Style) {
		u.Style = d.Style
	}
	u.Colors.Core = normalizeColor(u.Colors.Core, d.Colors.Core)
	u.Colors.Glow = normalizeColor(u.Colors.Glow, d.Colors.Glow)
	u.Colors.Dim = normalizeColor(u.Colors.Dim, d.Colors.Dim)

	u.Size = clamp(u.Size, MinSize, MaxSize)
	u.Intensity = clamp(u.Intensity, MinIntensity, MaxIntensity)
	u.AnimeScale = clamp(u.AnimeScale, MinAnimeScale, MaxAnimeScale)
	u.AnimeOffsetX = clamp(u.AnimeOffsetX, -MaxAnimeOffset, MaxAnimeOffset)
	u.AnimeOffsetY = clamp(u.AnimeOffsetY, -MaxAnimeOffset, MaxAnimeOffset)
	return u
}

// normalizeColor keeps a valid color as written so stored records read back
// unchanged.
func normalizeColor(v, fallback string) string {
	if !hexColor.MatchString(v) {
		return fallback
	}
	return v
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
