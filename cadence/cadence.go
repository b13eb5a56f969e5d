// Package cadence turns an attack speed into a metronome: beats per minute
// and the duration of one beat.
package cadence

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"go.aimuz.me/tempo/internal/types"
)

// ErrInvalidRate is returned for rates that do not produce at least one beat
// per minute.
var ErrInvalidRate = errors.New("cadence: invalid rate")

// State is the cadence derived from one rate.
type State struct {
	BPM          int
	BeatDuration float64 // seconds
}

// Compute derives the cadence for rate attacks per second.
func Compute(rate float64) (State, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	bpm := int(math.Round(rate * 60))
	if bpm <= 0 {
		return State{}, fmt.Errorf("%w: %v rounds to 0 bpm", ErrInvalidRate, rate)
	}
	return State{BPM: bpm, BeatDuration: 60 / float64(bpm)}, nil
}

// BeatCSS formats the beat duration for the --beat-duration custom property.
func (s State) BeatCSS() string {
	return strconv.FormatFloat(s.BeatDuration, 'f', -1, 64) + "s"
}

// Engine holds the consumer surface's current cadence. It starts waiting;
// the first valid sample makes it active and Clear returns it to waiting.
// Invalid samples leave the previous cadence on screen.
type Engine struct {
	mu     sync.RWMutex
	mode   types.Mode
	sample types.SignalSample
	state  State
}

// NewEngine returns an engine in waiting mode.
func NewEngine() *Engine {
	return &Engine{mode: types.ModeWaiting}
}

// OnSample applies a new sample. changed is false when the sample was
// rejected and the previous cadence persists.
func (e *Engine) OnSample(s types.SignalSample) (State, bool) {
	st, err := Compute(s.AttackSpeed)
	if err != nil {
		e.mu.RLock()
		defer e.mu.RUnlock()
		return e.state, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sample = s
	e.state = st
	e.mode = types.ModeActive
	return st, true
}

// Clear drops the current sample and returns to waiting.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = types.ModeWaiting
	e.sample = types.SignalSample{}
	e.state = State{}
}

// Mode returns the current display mode.
func (e *Engine) Mode() types.Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// View returns what the consumer surface should display.
func (e *Engine) View() types.CadenceView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.mode != types.ModeActive {
		return types.CadenceView{Mode: types.ModeWaiting}
	}
	return types.CadenceView{
		Mode:            types.ModeActive,
		Name:            e.sample.Name,
		AttackSpeedText: strconv.FormatFloat(e.sample.AttackSpeed, 'f', 3, 64),
		BPM:             e.state.BPM,
		BeatDuration:    e.state.BeatDuration,
		BeatCSS:         e.state.BeatCSS(),
	}
}
