package surface

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.aimuz.me/tempo/channel"
	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/signal"
	"go.aimuz.me/tempo/telemetry"
)

const logSummaryLen = 300

// Extractor turns one info update into an extraction result.
type Extractor func(payload []byte) signal.Result

// Producer turns telemetry from one surface into writes on the shared
// channel. It owns a channel handle and a throttle gate; nothing else
// writes through them.
type Producer struct {
	surface string
	extract Extractor
	ch      *channel.Channel
	emit    EmitFunc

	// Lobby picks reset the gate when the champion changes so a new pick
	// with the same rate still replaces the name on the channel.
	resetOnChange bool

	mu       sync.Mutex
	gate     *signal.Gate
	champion int
	display  string
	// published is set while the channel may hold a sample from this
	// producer. Only then does a clear from here mean anything.
	published bool
}

// NewInGameProducer creates the in-session producer.
func NewInGameProducer(ch *channel.Channel, epsilon float64, emit EmitFunc) *Producer {
	return &Producer{
		surface: InGame,
		extract: signal.FromLiveClient,
		ch:      ch,
		emit:    emit,
		gate:    signal.NewGate(epsilon),
	}
}

// NewLobbyProducer creates the lobby producer resolving ids through champs.
func NewLobbyProducer(ch *channel.Channel, champs signal.Resolver, epsilon float64, emit EmitFunc) *Producer {
	return &Producer{
		surface: Desktop,
		extract: func(p []byte) signal.Result {
			return signal.FromChampSelect(p, champs)
		},
		ch:            ch,
		emit:          emit,
		gate:          signal.NewGate(epsilon),
		resetOnChange: true,
	}
}

// Surface returns the producer's window name.
func (p *Producer) Surface() string { return p.surface }

// Display returns the lobby display line, empty when nothing is selected.
func (p *Producer) Display() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.display
}

// HandleInfo processes one info update. Nothing here fails the caller:
// unusable payloads are logged and dropped.
func (p *Producer) HandleInfo(payload []byte) {
	p.log(telemetry.Summary(payload, logSummaryLen), false)

	res := p.extract(payload)

	p.mu.Lock()
	defer p.mu.Unlock()

	if res.Display != "" && res.Display != p.display {
		p.setDisplay(res.Display)
	}

	switch res.Kind {
	case signal.KindSample:
		if p.resetOnChange && res.ChampionID != p.champion {
			p.gate.Reset()
			p.champion = res.ChampionID
		}
		if !p.allow(res.Sample.AttackSpeed) {
			return
		}
		if err := p.ch.Publish(res.Sample); err != nil {
			slog.Error("publish sample", "surface", p.surface, "error", err)
			return
		}
		p.published = true
		slog.Debug("published sample", "surface", p.surface, "name", res.Sample.Name, "attackSpeed", res.Sample.AttackSpeed)

	case signal.KindClear:
		p.gate.Reset()
		p.champion = 0
		if p.display != "" {
			p.setDisplay("")
		}
		if !p.published {
			return
		}
		if err := p.ch.Clear(); err != nil {
			slog.Error("clear channel", "surface", p.surface, "error", err)
			return
		}
		p.published = false
		slog.Debug("cleared channel", "surface", p.surface)

	default:
		if errors.Is(res.Err, signal.ErrNoData) {
			return
		}
		slog.Warn("drop payload", "surface", p.surface, "error", res.Err)
	}
}

// allow runs the gate. A rate the gate would suppress still goes through
// when the channel no longer holds a sample, so a clear written by another
// surface cannot leave the consumer waiting. Must be called with p.mu held.
func (p *Producer) allow(rate float64) bool {
	if p.gate.Allow(rate) {
		return true
	}
	if !p.published {
		return false
	}
	if _, ok, err := p.ch.Current(); err != nil || ok {
		return false
	}
	slog.Debug("channel cleared elsewhere, republishing", "surface", p.surface)
	p.gate.Reset()
	return p.gate.Allow(rate)
}

// HandleEvents logs a new-events batch, highlighted when it contains a
// notable event.
func (p *Producer) HandleEvents(events []telemetry.Event) {
	if len(events) == 0 {
		return
	}
	p.log(telemetry.EventsSummary(events), telemetry.Highlighted(events))
}

// setDisplay must be called with p.mu held.
func (p *Producer) setDisplay(text string) {
	p.display = text
	p.emit(EventDisplay, types.DisplayLine{Surface: p.surface, Text: text})
}

func (p *Producer) log(text string, highlight bool) {
	p.emit(EventLog, types.LogLine{
		Surface:   p.surface,
		Text:      text,
		Highlight: highlight,
		Timestamp: time.Now().UnixMilli(),
	})
}
