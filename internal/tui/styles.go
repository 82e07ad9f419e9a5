package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/mornify/internal/model"
	"github.com/idilsaglam/mornify/internal/ui"
)

// styles is rebuilt from the app theme whenever it changes.
type styles struct {
	frame         lipgloss.Style
	title         lipgloss.Style
	status        lipgloss.Style
	muted         lipgloss.Style
	selected      lipgloss.Style
	button        lipgloss.Style
	buttonFocused lipgloss.Style
	input         lipgloss.Style
	inputFocused  lipgloss.Style
	err           lipgloss.Style
	help          lipgloss.Style
}

func newStyles(th model.Theme) styles {
	bg := lipgloss.Color(ui.Hex(th.Background))
	fg := lipgloss.Color(ui.Hex(th.Text))
	btn := lipgloss.Color(ui.Hex(th.Button))

	base := lipgloss.NewStyle().Foreground(fg).Background(bg)
	button := base.Padding(0, 2).Border(lipgloss.RoundedBorder()).
		BorderForeground(btn).BorderBackground(bg)

	return styles{
		frame: base.Border(lipgloss.RoundedBorder()).
			BorderForeground(btn).BorderBackground(bg).Padding(0, 1),
		title:         base.Bold(true),
		status:        base.Foreground(btn).Bold(true),
		muted:         base.Faint(true),
		selected:      base.Bold(true).Foreground(btn),
		button:        button,
		buttonFocused: button.Foreground(bg).Background(btn).Bold(true),
		input:         base.Padding(0, 1),
		inputFocused:  base.Padding(0, 1).Underline(true),
		err:           base.Foreground(lipgloss.Color("9")).Bold(true),
		help:          base.Faint(true),
	}
}
