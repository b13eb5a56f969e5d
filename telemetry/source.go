package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/samber/lo"
)

var ErrNoHandler = errors.New("telemetry: no handler attached")

// Event is one entry of a new-events batch.
type Event struct {
	Name string `json:"name"`
	Data string `json:"data,omitempty"`
}

// Handler receives payloads from a Source. Calls are serialized per source.
type Handler interface {
	HandleInfo(payload []byte)
	HandleEvents(events []Event)
}

// Source produces telemetry until ctx is cancelled or the source is exhausted.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

var highlighted = []string{"kill", "death", "assist", "level", "matchStart", "match_start", "matchEnd", "match_end"}

// Highlighted reports whether a batch contains an event worth emphasizing
// in the producer's log.
func Highlighted(events []Event) bool {
	return lo.SomeBy(events, func(e Event) bool {
		return lo.Contains(highlighted, e.Name)
	})
}

// Summary renders a payload for a log line, cut to at most n bytes.
func Summary(payload []byte, n int) string {
	s := strings.TrimSpace(string(payload))
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary; summoner names are often not ASCII.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// EventsSummary renders a batch for a log line.
func EventsSummary(events []Event) string {
	b, err := json.Marshal(events)
	if err != nil {
		return strings.Join(lo.Map(events, func(e Event, _ int) string { return e.Name }), ",")
	}
	return string(b)
}

// ─────────────────────────────────────────────────────────────────────────────
// Bridge
// ─────────────────────────────────────────────────────────────────────────────

// Bridge is a Source fed from outside the process, for example by a host
// integration calling bound service methods. Pushes before Run or after it
// returns fail with ErrNoHandler.
type Bridge struct {
	class int

	mu sync.Mutex
	h  Handler
}

// NewBridge creates a bridge for one game class.
func NewBridge(class int) *Bridge {
	return &Bridge{class: class}
}

// Class returns the game class the bridge carries.
func (b *Bridge) Class() int { return b.class }

// Run attaches h and blocks until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context, h Handler) error {
	b.mu.Lock()
	b.h = h
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	b.h = nil
	b.mu.Unlock()
	return nil
}

// PushInfo delivers an info update.
func (b *Bridge) PushInfo(payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.h == nil {
		return ErrNoHandler
	}
	b.h.HandleInfo(payload)
	return nil
}

// PushEvents delivers a new-events batch.
func (b *Bridge) PushEvents(events []Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.h == nil {
		return ErrNoHandler
	}
	b.h.HandleEvents(events)
	return nil
}
