// Package tui is the interactive front end: the main screen with the
// routine and its three actions, the routine editor and the theme picker.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/idilsaglam/mornify/internal/app"
	"github.com/idilsaglam/mornify/internal/eventbus"
	"github.com/idilsaglam/mornify/internal/model"
)

type screen int

const (
	screenMain screen = iota
	screenEdit
	screenTheme
)

var buttons = []string{"Start Routine", "Customize Routine", "Change Theme"}

const refreshEvery = 30 * time.Second

type (
	eventMsg eventbus.Event
	tickMsg  time.Time
)

// Model is the Bubble Tea model for the whole program.
type Model struct {
	app    *app.App
	events <-chan eventbus.Event
	st     styles

	screen screen
	status string
	err    string

	list   list.Model
	help   help.Model
	button int

	edit     editGrid
	themeIdx int

	width, height int
}

// New builds the model. events feeds status updates; pass the channel of
// a subscription on a.Bus().
func New(a *app.App, events <-chan eventbus.Event) Model {
	st := newStyles(a.Theme())
	l := list.New(taskItems(a.Routine()), taskDelegate{st: st}, 60, 10)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.Styles.PaginationStyle = st.help

	return Model{
		app:    a,
		events: events,
		st:     st,
		list:   l,
		help:   help.New(),
		width:  80,
		height: 24,
	}
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, a *app.App) error {
	events, unsub := a.Bus().Subscribe(16)
	defer unsub()
	p := tea.NewProgram(New(a, events), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func waitForEvent(ch <-chan eventbus.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tea.Batch(waitForEvent(m.events), tick()) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(max(m.width-6, 20), max(m.height-14, 3))
		return m, nil
	case eventMsg:
		m.onEvent(eventbus.Event(msg))
		return m, waitForEvent(m.events)
	case tickMsg:
		return m, tick()
	}

	switch m.screen {
	case screenEdit:
		return m.updateEdit(msg)
	case screenTheme:
		return m.updateTheme(msg)
	}
	return m.updateMain(msg)
}

func (m *Model) onEvent(e eventbus.Event) {
	if e.Status != "" {
		m.status = e.Status
	}
	switch e.Type {
	case eventbus.TypeRoutineUpdated:
		m.list.SetItems(taskItems(m.app.Routine()))
	case eventbus.TypeThemeChanged:
		m.applyTheme(m.app.Theme())
	}
}

func (m *Model) applyTheme(th model.Theme) {
	m.st = newStyles(th)
	m.list.SetDelegate(taskDelegate{st: m.st})
	m.list.Styles.PaginationStyle = m.st.help
}

func (m Model) updateMain(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	switch {
	case key.Matches(k, mainKeyMap.Quit):
		return m, tea.Quit
	case key.Matches(k, mainKeyMap.Prev):
		m.button = (m.button + len(buttons) - 1) % len(buttons)
		return m, nil
	case key.Matches(k, mainKeyMap.Next):
		m.button = (m.button + 1) % len(buttons)
		return m, nil
	case key.Matches(k, mainKeyMap.Press):
		return m.press(m.button)
	case key.Matches(k, mainKeyMap.Start):
		return m.press(0)
	case key.Matches(k, mainKeyMap.Edit):
		return m.press(1)
	case key.Matches(k, mainKeyMap.Theme):
		return m.press(2)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) press(button int) (tea.Model, tea.Cmd) {
	m.button = button
	m.err = ""
	switch button {
	case 0:
		if err := m.app.StartRoutine(); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.status = app.StatusStarted
	case 1:
		m.edit = newEditGrid(m.app.Routine())
		m.screen = screenEdit
		return m, m.edit.focus()
	case 2:
		m.themeIdx = 0
		m.screen = screenTheme
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, m.edit.update(msg)
	}
	switch {
	case key.Matches(k, editKeyMap.Cancel):
		m.screen = screenMain
		return m, nil
	case key.Matches(k, editKeyMap.Save):
		if err := m.app.SaveEdits(m.edit.values()); err != nil {
			m.edit.err = err.Error()
			var ve *app.ValidationError
			if errors.As(err, &ve) {
				m.edit.row, m.edit.col = min(ve.Row-1, len(m.edit.rows)-1), colDuration
				return m, m.edit.focus()
			}
			return m, nil
		}
		m.status = app.StatusUpdated
		m.list.SetItems(taskItems(m.app.Routine()))
		m.screen = screenMain
		return m, nil
	case key.Matches(k, editKeyMap.NextField):
		return m, m.edit.step(1)
	case key.Matches(k, editKeyMap.PrevField):
		return m, m.edit.step(-1)
	case key.Matches(k, editKeyMap.Up):
		return m, m.edit.moveRow(-1)
	case key.Matches(k, editKeyMap.Down):
		return m, m.edit.moveRow(1)
	case key.Matches(k, editKeyMap.Add):
		return m, m.edit.addRow()
	case key.Matches(k, editKeyMap.Remove):
		return m, m.edit.removeRow()
	}
	m.edit.err = ""
	return m, m.edit.update(msg)
}

func (m Model) updateTheme(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "esc", "q":
		m.screen = screenMain
	case "up", "k":
		m.themeIdx = (m.themeIdx + len(model.ThemeNames) - 1) % len(model.ThemeNames)
	case "down", "j":
		m.themeIdx = (m.themeIdx + 1) % len(model.ThemeNames)
	case "enter", " ":
		if err := m.app.SetTheme(model.ThemeNames[m.themeIdx]); err != nil {
			m.err = err.Error()
		} else {
			m.applyTheme(m.app.Theme())
		}
		m.screen = screenMain
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenEdit:
		body = m.viewEdit()
	case screenTheme:
		body = m.viewTheme()
	default:
		body = m.viewMain()
	}
	return m.st.frame.Render(body)
}

func (m Model) viewMain() string {
	lines := []string{
		m.st.title.Render("Mornify"),
		m.st.status.Render(m.status),
		m.upcomingLine(),
		"",
		m.list.View(),
		"",
		m.buttonRow(),
	}
	if m.err != "" {
		lines = append(lines, m.st.err.Render("✖ "+m.err))
	}
	lines = append(lines, m.st.help.Render(m.help.View(mainKeyMap)))
	return strings.Join(lines, "\n")
}

func (m Model) upcomingLine() string {
	task, wait, ok := m.app.Upcoming()
	if !ok {
		return m.st.muted.Render("Nothing left for today")
	}
	now := m.app.Now()
	return m.st.muted.Render(fmt.Sprintf("Next: %s at %s (%s)",
		task.Activity, task.Time, humanize.RelTime(now.Add(wait), now, "ago", "from now")))
}

func (m Model) buttonRow() string {
	cells := make([]string, 0, len(buttons))
	for i, b := range buttons {
		s := m.st.button
		if i == m.button {
			s = m.st.buttonFocused
		}
		cells = append(cells, s.Render(b))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) viewEdit() string {
	return strings.Join([]string{
		m.st.title.Render("Customize Routine"),
		"",
		m.edit.view(m.st),
		"",
		m.st.help.Render(m.help.View(editKeyMap)),
	}, "\n")
}

func (m Model) viewTheme() string {
	lines := []string{m.st.title.Render("Change Theme"), ""}
	for i, name := range model.ThemeNames {
		label := strings.ToUpper(name[:1]) + name[1:]
		if i == m.themeIdx {
			lines = append(lines, m.st.selected.Render("> "+label))
			continue
		}
		lines = append(lines, "  "+label)
	}
	lines = append(lines, "", m.st.help.Render("↑/↓ choose • enter apply • esc back"))
	return strings.Join(lines, "\n")
}
