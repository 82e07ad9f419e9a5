package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/mornify/internal/app"
	"github.com/idilsaglam/mornify/internal/clock"
	"github.com/idilsaglam/mornify/internal/config"
	"github.com/idilsaglam/mornify/internal/eventbus"
	"github.com/idilsaglam/mornify/internal/logx"
	"github.com/idilsaglam/mornify/internal/model"
	"github.com/idilsaglam/mornify/internal/scheduler"
)

func newTestModel(t *testing.T) (Model, *app.App, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RoutineFile = filepath.Join(dir, "routine.json")
	cfg.ThemeFile = filepath.Join(dir, "theme.json")
	cfg.SoundFile = ""
	cfg.Notifications.Backend = "log"
	cfg.History.Driver = "none"

	clk := clock.Fake(time.Date(2024, 5, 6, 7, 55, 0, 0, time.Local))
	a, err := app.New(cfg, logx.Nop(), app.Deps{Clock: clk})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return New(a, nil), a, cfg
}

func runes(s string) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestStartRoutineButton(t *testing.T) {
	m, a, _ := newTestModel(t)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if a.Scheduler().State() != scheduler.Running {
		t.Fatalf("state = %s", a.Scheduler().State())
	}
	if m.status != app.StatusStarted {
		t.Fatalf("status = %q", m.status)
	}
}

func TestButtonFocusWraps(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.button != 2 {
		t.Fatalf("button = %d", m.button)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.button != 0 {
		t.Fatalf("button = %d", m.button)
	}
}

func TestEditRejectsBadDuration(t *testing.T) {
	m, a, cfg := newTestModel(t)
	m = send(m, runes("e"))
	if m.screen != screenEdit || len(m.edit.rows) != 7 {
		t.Fatalf("screen=%d rows=%d", m.screen, len(m.edit.rows))
	}
	m.edit.rows[3][colDuration].SetValue("soon")
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.screen != screenEdit {
		t.Fatal("left the editor after a rejected save")
	}
	if !strings.Contains(m.edit.err, "duration") || m.edit.row != 3 || m.edit.col != colDuration {
		t.Fatalf("err=%q cursor=%d,%d", m.edit.err, m.edit.row, m.edit.col)
	}
	if _, err := os.Stat(cfg.RoutineFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("routine file written: %v", err)
	}
	if a.Routine()[3].Duration != 20 {
		t.Fatalf("routine changed: %+v", a.Routine()[3])
	}
}

func TestEditAddRowAndSave(t *testing.T) {
	m, a, _ := newTestModel(t)
	m = send(m, runes("e"), tea.KeyMsg{Type: tea.KeyCtrlN})
	if len(m.edit.rows) != 8 || m.edit.row != 1 {
		t.Fatalf("rows=%d row=%d", len(m.edit.rows), m.edit.row)
	}
	m.edit.rows[1][colTime].SetValue("08:10")
	m.edit.rows[1][colActivity].SetValue("Coffee")
	m.edit.rows[1][colDuration].SetValue("5")
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.screen != screenMain || m.status != app.StatusUpdated {
		t.Fatalf("screen=%d status=%q err=%q", m.screen, m.status, m.edit.err)
	}
	r := a.Routine()
	if len(r) != 8 || r[1] != (model.Task{Time: "08:10", Activity: "Coffee", Duration: 5}) {
		t.Fatalf("routine = %+v", r)
	}
	if n := len(m.list.Items()); n != 8 {
		t.Fatalf("list items = %d", n)
	}
}

func TestEditRemoveRow(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = send(m, runes("e"), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyCtrlX})
	if len(m.edit.rows) != 6 {
		t.Fatalf("rows = %d", len(m.edit.rows))
	}
	if got := m.edit.values()[1].Activity; got != "Prayer and Worship" {
		t.Fatalf("row 1 = %q", got)
	}
}

func TestEditCancelKeepsRoutine(t *testing.T) {
	m, a, _ := newTestModel(t)
	m = send(m, runes("e"))
	m.edit.rows[0][colActivity].SetValue("Sleep in")
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenMain || a.Routine()[0].Activity != "Wake Up" {
		t.Fatalf("screen=%d first=%q", m.screen, a.Routine()[0].Activity)
	}
}

func TestGridStepWraps(t *testing.T) {
	g := newEditGrid(model.Routine{{Time: "08:00", Activity: "A"}, {Time: "09:00", Activity: "B"}})
	g.step(-1)
	if g.row != 1 || g.col != colDuration {
		t.Fatalf("cursor = %d,%d", g.row, g.col)
	}
	g.step(1)
	if g.row != 0 || g.col != colTime {
		t.Fatalf("cursor = %d,%d", g.row, g.col)
	}
}

func TestThemePickerAppliesDark(t *testing.T) {
	m, a, cfg := newTestModel(t)
	m = send(m, runes("t"), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenMain {
		t.Fatalf("screen = %d", m.screen)
	}
	if a.Theme().Background != model.DarkTheme().Background {
		t.Fatalf("theme = %+v", a.Theme())
	}
	if _, err := os.Stat(cfg.ThemeFile); err != nil {
		t.Fatalf("theme not saved: %v", err)
	}
}

func TestEventSetsStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = send(m, eventMsg(eventbus.Event{Type: eventbus.TypeReminder, Status: "Reminder: Wake Up at 08:00"}))
	if m.status != "Reminder: Wake Up at 08:00" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestMainView(t *testing.T) {
	m, _, _ := newTestModel(t)
	v := m.View()
	for _, want := range []string{"Mornify", "Start Routine", "Customize Routine", "Change Theme", "Next: Wake Up at 08:00 (5 minutes from now)"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
