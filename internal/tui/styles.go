package tui

import (
	"github.com/charmbracelet/lipgloss"

	"go.aimuz.me/tempo/internal/types"
)

var (
	ColorMuted     = lipgloss.Color("#6c6c6c")
	ColorHighlight = lipgloss.Color("#ffcc00")

	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleLog = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleLogHighlight = lipgloss.NewStyle().
				Foreground(ColorHighlight).
				Bold(true)
)

// orbStyle paints the orb in the settings colors. lit selects the beat phase.
func orbStyle(c types.Colors, lit bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Align(lipgloss.Center, lipgloss.Center)
	if lit {
		return s.Background(lipgloss.Color(c.Core)).BorderForeground(lipgloss.Color(c.Glow))
	}
	return s.Background(lipgloss.Color(c.Dim)).BorderForeground(lipgloss.Color(c.Dim))
}

func titleStyle(c types.Colors) lipgloss.Style {
	return StyleTitle.Foreground(lipgloss.Color(c.Core))
}
