// Package tui renders the metronome in a terminal.
package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"go.aimuz.me/tempo/internal/types"
)

const maxLogLines = 6

// Model is the terminal metronome. Producers feed it with p.Send.
type Model struct {
	render types.RenderState
	logs   []types.LogLine
	lit    bool
	gen    int
	done   bool
	err    error
	width  int
}

// New creates a model showing the initial render state.
func New(initial types.RenderState) Model {
	return Model{render: initial}
}

func (m Model) Init() tea.Cmd {
	return m.scheduleBeat()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case RenderMsg:
		prev := m.render.Cadence
		m.render = types.RenderState(msg)
		if m.render.Cadence.BeatDuration != prev.BeatDuration || m.render.Cadence.Mode != prev.Mode {
			m.gen++
			m.lit = false
			return m, m.scheduleBeat()
		}

	case LogMsg:
		m.logs = append(m.logs, types.LogLine(msg))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}

	case DoneMsg:
		m.done = true
		m.err = msg.Err

	case beatMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.lit = !m.lit
		return m, m.scheduleBeat()
	}
	return m, nil
}

// scheduleBeat ticks at half the beat so the orb is lit for one half of
// every beat and dark for the other.
func (m Model) scheduleBeat() tea.Cmd {
	c := m.render.Cadence
	if c.Mode != types.ModeActive || c.BeatDuration <= 0 {
		return nil
	}
	half := time.Duration(c.BeatDuration * float64(time.Second) / 2)
	gen := m.gen
	return tea.Tick(half, func(time.Time) tea.Msg { return beatMsg{gen: gen} })
}

func (m Model) View() string {
	var b strings.Builder

	colors := m.render.Settings.Colors
	b.WriteString(titleStyle(colors).Render("TEMPO"))
	b.WriteString("\n\n")

	c := m.render.Cadence
	if c.Mode == types.ModeActive {
		orb := orbStyle(colors, m.lit).Width(12).Height(5)
		b.WriteString(orb.Render(fmt.Sprintf("%d", c.BPM)))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "%s  AS %s  %d BPM  beat %.3fs\n", c.Name, c.AttackSpeedText, c.BPM, c.BeatDuration)
	} else {
		b.WriteString(StyleMuted.Render("Waiting for champion..."))
		b.WriteString("\n")
	}

	s := m.render.Settings
	b.WriteString(StyleMuted.Render(fmt.Sprintf("style %s  size %dpx  intensity %d%%", s.Style, s.Size, s.Intensity)))
	b.WriteString("\n\n")

	for _, l := range m.logs {
		text := l.Text
		if m.width > 4 && len(text) > m.width-2 {
			cut := m.width - 5
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut] + "..."
		}
		if l.Highlight {
			b.WriteString(StyleLogHighlight.Render(text))
		} else {
			b.WriteString(StyleLog.Render(text))
		}
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(StyleLogHighlight.Render("source failed: " + m.err.Error()))
		} else {
			b.WriteString(StyleMuted.Render("source finished"))
		}
		b.WriteString("\n")
	}
	b.WriteString(StyleMuted.Render("q to quit"))
	return b.String()
}
