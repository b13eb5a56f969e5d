package tui

import "go.aimuz.me/tempo/internal/types"

// RenderMsg carries a new render state from the metronome.
type RenderMsg types.RenderState

// LogMsg carries one producer log line.
type LogMsg types.LogLine

// DoneMsg reports that the telemetry source finished.
type DoneMsg struct {
	Err error
}

// beatMsg flips the pulse. gen discards beats scheduled for an older cadence.
type beatMsg struct {
	gen int
}
