package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/mornify/internal/model"
)

// taskItem adapts model.Task to bubbles/list.Item
type taskItem struct{ model.Task }

func (i taskItem) Title() string       { return i.Activity }
func (i taskItem) Description() string { return "" }
func (i taskItem) FilterValue() string { return i.Activity }

func taskItems(r model.Routine) []list.Item {
	out := make([]list.Item, 0, len(r))
	for _, t := range r {
		out = append(out, taskItem{t})
	}
	return out
}

// Custom delegate to control how tasks render (single line)
type taskDelegate struct{ st styles }

func (d taskDelegate) Height() int                               { return 1 }
func (d taskDelegate) Spacing() int                              { return 0 }
func (d taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	line := fmt.Sprintf("%s  %s %s", it.Time, it.Activity, d.st.muted.Render(fmt.Sprintf("(%d min)", it.Duration)))
	prefix := "  "
	if index == m.Index() {
		prefix = d.st.selected.Render("> ")
		line = d.st.selected.Render(fmt.Sprintf("%s  %s", it.Time, it.Activity)) + " " +
			d.st.muted.Render(fmt.Sprintf("(%d min)", it.Duration))
	}
	fmt.Fprint(w, prefix+line)
}
