package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/mornify/internal/app"
	"github.com/idilsaglam/mornify/internal/model"
)

const (
	colTime = iota
	colActivity
	colDuration
	numCols
)

var colWidths = [numCols]int{7, 36, 6}

type gridRow [numCols]textinput.Model

// editGrid is the routine editor: one row of inputs per task.
type editGrid struct {
	rows     []gridRow
	row, col int
	err      string
}

func newEditGrid(r model.Routine) editGrid {
	var g editGrid
	for _, er := range app.EditRows(r) {
		g.rows = append(g.rows, newGridRow(er))
	}
	if len(g.rows) == 0 {
		g.rows = append(g.rows, newGridRow(app.EditRow{Duration: "0"}))
	}
	g.focus()
	return g
}

func newGridRow(er app.EditRow) gridRow {
	var row gridRow
	row[colTime] = newInput(er.Time, "HH:MM", colWidths[colTime], 5)
	row[colActivity] = newInput(er.Activity, "Activity", colWidths[colActivity], 120)
	row[colDuration] = newInput(er.Duration, "0", colWidths[colDuration], 5)
	return row
}

func newInput(value, placeholder string, width, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = width
	ti.SetValue(value)
	return ti
}

func (g *editGrid) focus() tea.Cmd {
	for r := range g.rows {
		for c := range g.rows[r] {
			g.rows[r][c].Blur()
		}
	}
	return g.rows[g.row][g.col].Focus()
}

// step moves the cursor by n fields, wrapping across rows.
func (g *editGrid) step(n int) tea.Cmd {
	total := len(g.rows) * numCols
	pos := ((g.row*numCols+g.col+n)%total + total) % total
	g.row, g.col = pos/numCols, pos%numCols
	return g.focus()
}

func (g *editGrid) moveRow(n int) tea.Cmd {
	g.row = min(max(g.row+n, 0), len(g.rows)-1)
	return g.focus()
}

// addRow inserts a blank task below the cursor.
func (g *editGrid) addRow() tea.Cmd {
	at := g.row + 1
	g.rows = append(g.rows, gridRow{})
	copy(g.rows[at+1:], g.rows[at:])
	g.rows[at] = newGridRow(app.EditRow{Duration: "0"})
	g.row, g.col = at, colTime
	return g.focus()
}

func (g *editGrid) removeRow() tea.Cmd {
	if len(g.rows) == 1 {
		g.rows[0] = newGridRow(app.EditRow{Duration: "0"})
		g.col = colTime
		return g.focus()
	}
	g.rows = append(g.rows[:g.row], g.rows[g.row+1:]...)
	if g.row >= len(g.rows) {
		g.row = len(g.rows) - 1
	}
	return g.focus()
}

func (g *editGrid) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	g.rows[g.row][g.col], cmd = g.rows[g.row][g.col].Update(msg)
	return cmd
}

func (g editGrid) values() []app.EditRow {
	out := make([]app.EditRow, 0, len(g.rows))
	for _, r := range g.rows {
		out = append(out, app.EditRow{
			Time:     r[colTime].Value(),
			Activity: r[colActivity].Value(),
			Duration: r[colDuration].Value(),
		})
	}
	return out
}

func (g editGrid) view(st styles) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		st.title.Width(colWidths[colTime]+2).Render("Time"),
		st.title.Width(colWidths[colActivity]+2).Render("Activity"),
		st.title.Width(colWidths[colDuration]+2).Render("Min"),
	)
	lines := []string{header}
	for r, row := range g.rows {
		cells := make([]string, 0, numCols)
		for c := range row {
			s := st.input
			if r == g.row && c == g.col {
				s = st.inputFocused
			}
			cells = append(cells, s.Width(colWidths[c]+2).Render(row[c].View()))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	if g.err != "" {
		lines = append(lines, "", st.err.Render("✖ "+g.err))
	}
	return strings.Join(lines, "\n")
}
