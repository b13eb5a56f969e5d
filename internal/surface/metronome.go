package surface

import (
	"context"
	"log/slog"
	"sync"

	"go.aimuz.me/tempo/cadence"
	"go.aimuz.me/tempo/channel"
	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/settings"
)

// Metronome is the consumer surface. It follows the shared channel, keeps
// the cadence engine current and emits a render state on every change.
type Metronome struct {
	ch       *channel.Channel
	engine   *cadence.Engine
	settings *settings.Store
	emit     EmitFunc

	mu    sync.Mutex
	last  types.RenderState
	ready chan struct{}
}

// NewMetronome creates a consumer in waiting mode.
func NewMetronome(ch *channel.Channel, st *settings.Store, emit EmitFunc) *Metronome {
	m := &Metronome{
		ch:       ch,
		engine:   cadence.NewEngine(),
		settings: st,
		emit:     emit,
		ready:    make(chan struct{}),
	}
	m.last = types.RenderState{Cadence: m.engine.View(), Appearance: st.Appearance()}
	return m
}

// Run follows the channel until ctx is cancelled. Once the subscription is
// live it applies whatever sample the channel already holds, so a write
// racing with startup is seen either way.
func (m *Metronome) Run(ctx context.Context) error {
	m.Refresh()
	return m.ch.SubscribeReady(ctx, m.catchUp, m.Apply)
}

// Ready is closed once Run is following the channel.
func (m *Metronome) Ready() <-chan struct{} {
	return m.ready
}

func (m *Metronome) catchUp() {
	defer close(m.ready)
	s, ok, err := m.ch.Current()
	if err != nil {
		slog.Warn("read channel", "error", err)
	}
	if ok {
		m.Apply(channel.Update{Sample: s})
	}
}

// Apply feeds one channel update into the engine. A sample that yields no
// valid cadence leaves the previous render untouched.
func (m *Metronome) Apply(u channel.Update) {
	if u.Cleared {
		m.engine.Clear()
		slog.Info("metronome waiting")
		m.Refresh()
		return
	}

	st, changed := m.engine.OnSample(u.Sample)
	if !changed {
		slog.Warn("skip invalid cadence", "name", u.Sample.Name, "attackSpeed", u.Sample.AttackSpeed)
		return
	}
	slog.Info("metronome active", "name", u.Sample.Name, "bpm", st.BPM)
	m.Refresh()
}

// Refresh recomputes and emits the render state.
func (m *Metronome) Refresh() types.RenderState {
	rs := types.RenderState{
		Cadence:    m.engine.View(),
		Appearance: m.settings.Appearance(),
	}

	m.mu.Lock()
	m.last = rs
	m.mu.Unlock()

	m.emit(EventRender, rs)
	return rs
}

// Render returns the last emitted render state.
func (m *Metronome) Render() types.RenderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
