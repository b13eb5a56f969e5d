// Package surface implements the producer and consumer sides of the overlay.
// Producers turn telemetry into channel writes; the metronome turns channel
// updates into render states.
package surface

// Event names for frontend communication.
const (
	EventRender  = "tempo:render"  // types.RenderState, consumer window
	EventLog     = "tempo:log"     // types.LogLine, producer windows
	EventDisplay = "tempo:display" // types.DisplayLine, lobby window
	EventSource  = "tempo:source"  // types.SourceStatus
)

// Window names. Each window loads its own frontend route.
const (
	InGame  = "in_game"
	Desktop = "desktop"
	Second  = "desktop_second"
)

// EmitFunc delivers a named event to whatever renders the surfaces.
type EmitFunc func(name string, data any)
