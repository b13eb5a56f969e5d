// Package types provides shared type definitions for the application.
package types

// ReferenceEntry is one champion from the static reference dataset.
type ReferenceEntry struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	AttackSpeed float64 `json:"attackSpeed"`
}

// SignalSample is the current champion and its attack rate.
// AttackSpeed is always > 0 for a sample that reached the channel.
type SignalSample struct {
	Name        string  `json:"name"`
	AttackSpeed float64 `json:"attackSpeed"`
}

// Valid reports whether the sample carries a usable rate.
func (s SignalSample) Valid() bool {
	return s.AttackSpeed > 0
}

// ─────────────────────────────────────────────────────────────────────────────
// User Settings
// ─────────────────────────────────────────────────────────────────────────────

// Style selects the metronome visual. Exactly one is active at a time.
type Style string

const (
	StyleOrb     Style = "orb"
	StyleRadiate Style = "radiate"
	StyleAnime   Style = "anime"
)

// Styles lists every style in menu order.
var Styles = []Style{StyleOrb, StyleRadiate, StyleAnime}

// Colors is the color triple used by every style, each "#rrggbb".
type Colors struct {
	Core string `json:"core"`
	Glow string `json:"glow"`
	Dim  string `json:"dim"`
}

// UserSettings are the persisted user preferences.
type UserSettings struct {
	Style     Style  `json:"style"`
	Colors    Colors `json:"color"`
	Size      int    `json:"size"`      // px
	Intensity int    `json:"intensity"` // percent

	// Anime sub-panel
	AnimeImageURL string `json:"animeImageUrl,omitempty"`
	AnimeScale    int    `json:"animeScale"`   // percent
	AnimeOffsetX  int    `json:"animeOffsetX"` // px
	AnimeOffsetY  int    `json:"animeOffsetY"` // px
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────────────────────

// Mode is the consumer display mode.
type Mode string

const (
	ModeWaiting Mode = "waiting"
	ModeActive  Mode = "active"
)

// CadenceView is what the consumer surface shows for the current sample.
type CadenceView struct {
	Mode            Mode    `json:"mode"`
	Name            string  `json:"name"`
	AttackSpeedText string  `json:"attackSpeedText"`
	BPM             int     `json:"bpm"`
	BeatDuration    float64 `json:"beatDuration"` // seconds
	BeatCSS         string  `json:"beatCss"`      // value for --beat-duration
}

// TickPivot anchors one tick mark on the outer ring, measured from the
// wrap's top-left corner. Ticks pulse outward from this point.
type TickPivot struct {
	Direction string `json:"direction"` // "n", "e", "s", "w"
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// Layout holds every pixel dimension derived from the size setting.
type Layout struct {
	Orb        int         `json:"orb"`
	Wrap       int         `json:"wrap"`
	InnerRing  int         `json:"innerRing"`
	OuterRing  int         `json:"outerRing"`
	TickLength int         `json:"tickLength"`
	Pivots     []TickPivot `json:"pivots"`
}

// Appearance is the settings-driven part of the consumer surface.
type Appearance struct {
	Settings   UserSettings `json:"settings"`
	Layout     Layout       `json:"layout"`
	AnimePanel bool         `json:"animePanel"` // sub-panel visible
	Opacity    float64      `json:"opacity"`    // intensity as a factor, 1 = 100%
}

// RenderState merges live cadence with user settings for the consumer surface.
type RenderState struct {
	Cadence CadenceView `json:"cadence"`
	Appearance
}

// LogLine is one entry in a producer window's event log.
type LogLine struct {
	Surface   string `json:"surface"`
	Text      string `json:"text"`
	Highlight bool   `json:"highlight"`
	Timestamp int64  `json:"timestamp"` // Unix ms
}

// DisplayLine is the lobby surface's current champion line.
type DisplayLine struct {
	Surface string `json:"surface"`
	Text    string `json:"text"` // "Name - AS: rate", the raw id, or empty
}

// SourceStatus describes the telemetry source attached to a producer surface.
type SourceStatus struct {
	Surface string `json:"surface"`
	Kind    string `json:"kind"` // "bridge", "live", "replay"
	Running bool   `json:"running"`
	Since   int64  `json:"since,omitempty"` // Unix ms
}
