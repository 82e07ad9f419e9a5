// Package app holds the state shared by the UI, the scheduler and the
// stores. One App is created per process and passed to whoever needs it.
package app

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/idilsaglam/mornify/internal/clock"
	"github.com/idilsaglam/mornify/internal/config"
	"github.com/idilsaglam/mornify/internal/eventbus"
	"github.com/idilsaglam/mornify/internal/history"
	"github.com/idilsaglam/mornify/internal/logx"
	"github.com/idilsaglam/mornify/internal/model"
	"github.com/idilsaglam/mornify/internal/reminder"
	"github.com/idilsaglam/mornify/internal/scheduler"
	"github.com/idilsaglam/mornify/internal/store/jsonstore"
)

// Status texts shown after user actions.
const (
	StatusStarted = "Routine Started"
	StatusUpdated = "Routine Updated"
)

// Deps overrides collaborators that New would otherwise build from the
// config. Zero fields are built.
type Deps struct {
	Clock    clock.Clock
	Notifier reminder.Notifier
	Player   reminder.Player
	History  history.Store
}

type App struct {
	cfg *config.Config
	log logx.Logger
	clk clock.Clock

	routines *jsonstore.RoutineStore
	themes   *jsonstore.ThemeStore

	bus      eventbus.Bus
	hist     history.Store
	notifier reminder.Notifier
	disp     *reminder.Dispatcher
	sched    *scheduler.Scheduler

	mu      sync.Mutex
	routine model.Routine
	theme   model.Theme
}

// New loads the routine and theme and wires the reminder pipeline. A
// malformed routine or theme file is an error.
func New(cfg *config.Config, log logx.Logger, deps Deps) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		clk:      deps.Clock,
		routines: jsonstore.NewRoutineStore(cfg.RoutineFile),
		themes:   jsonstore.NewThemeStore(cfg.ThemeFile),
		bus:      eventbus.New(),
	}

	routine, err := a.routines.Load()
	if err != nil {
		return nil, err
	}
	theme, err := a.themes.Load(model.LightTheme())
	if err != nil {
		return nil, err
	}
	a.routine, a.theme = routine, theme

	timeout, err := cfg.NotifyTimeout()
	if err != nil {
		return nil, err
	}
	window, err := cfg.DuplicateWindow()
	if err != nil {
		return nil, err
	}

	a.notifier = deps.Notifier
	if a.notifier == nil {
		if a.notifier, err = reminder.NewNotifier(cfg.Notifications.Backend, cfg.Notifications.AppName, log); err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
	}
	player := deps.Player
	if player == nil {
		if player, err = reminder.NewPlayer(cfg.SoundFile, cfg.SoundPlayer, log); err != nil {
			return nil, fmt.Errorf("sound: %w", err)
		}
	}
	a.hist = deps.History
	if a.hist == nil {
		if a.hist, err = history.Open(history.Config{Driver: cfg.History.Driver, Path: cfg.History.Path}, log); err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
	}

	a.disp = reminder.New(reminder.Options{
		Notifier:   a.notifier,
		Player:     player,
		Bus:        a.bus,
		History:    a.hist,
		Log:        log,
		Clock:      a.clk,
		Timeout:    timeout,
		RatePerSec: cfg.Notifications.RatePerSec,
		Burst:      cfg.Notifications.Burst,
	})
	a.sched = scheduler.New(scheduler.Config{
		Tick:            cfg.Scheduler.Tick,
		DuplicateWindow: window,
	}, a.disp, a.clk, log)
	a.sched.SetRoutine(routine)

	log.Debug("app ready",
		logx.Int("tasks", len(routine)),
		logx.String("notifier", a.notifier.Name()),
		logx.Bool("sound", player != nil),
		logx.Bool("history", a.hist != nil),
	)
	return a, nil
}

func (a *App) Bus() eventbus.Bus { return a.bus }
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }
func (a *App) Now() time.Time { return a.clk.Now() }

func (a *App) Routine() model.Routine {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.routine.Clone()
}

func (a *App) Theme() model.Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.theme.Clone()
}

// Upcoming returns the next task still ahead today.
func (a *App) Upcoming() (model.Task, time.Duration, bool) {
	return scheduler.Upcoming(a.Routine(), a.clk.Now())
}

// StartRoutine arms the periodic scan. Calling it again re-arms it.
func (a *App) StartRoutine() error {
	if err := a.sched.Start(); err != nil {
		return err
	}
	a.publish(eventbus.TypeRoutineStarted, StatusStarted, nil)
	return nil
}

// SetTheme applies a preset to the current theme and saves it at once.
func (a *App) SetTheme(name string) error {
	preset, err := model.ThemeByName(name)
	if err != nil {
		return err
	}
	a.mu.Lock()
	next := a.theme.Apply(preset)
	if err := a.themes.Save(next); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("save theme: %w", err)
	}
	a.theme = next
	a.mu.Unlock()

	a.log.Info("theme changed", logx.String("theme", name))
	a.publish(eventbus.TypeThemeChanged, "", next.Clone())
	return nil
}

// SaveEdits replaces the routine with rows. Nothing is written when a row
// does not parse.
func (a *App) SaveEdits(rows []EditRow) error {
	r, err := ParseEdits(rows)
	if err != nil {
		return err
	}
	if err := a.routines.Save(r); err != nil {
		return fmt.Errorf("save routine: %w", err)
	}
	a.replaceRoutine(r)
	a.log.Info("routine saved", logx.Int("tasks", len(r)))
	return nil
}

// TriggerIndex fires the reminder for the task at i (zero-based) now.
func (a *App) TriggerIndex(ctx context.Context, i int) (model.Task, error) {
	r := a.Routine()
	if i < 0 || i >= len(r) {
		return model.Task{}, fmt.Errorf("index out of range: have %d, got %d", len(r), i+1)
	}
	a.disp.Trigger(ctx, r[i], reminder.SourceManual)
	return r[i], nil
}

// WatchRoutine reloads the routine when its file changes on disk. It
// blocks until ctx is done.
func (a *App) WatchRoutine(ctx context.Context) error {
	return a.routines.Watch(ctx, a.log, func(r model.Routine) {
		a.mu.Lock()
		same := slices.Equal(r, a.routine)
		a.mu.Unlock()
		if same {
			return
		}
		a.log.Info("routine file changed", logx.Int("tasks", len(r)))
		a.replaceRoutine(r)
	})
}

func (a *App) replaceRoutine(r model.Routine) {
	a.mu.Lock()
	a.routine = r.Clone()
	a.mu.Unlock()
	a.sched.SetRoutine(r)
	a.publish(eventbus.TypeRoutineUpdated, StatusUpdated, nil)
}

func (a *App) publish(typ, status string, data any) {
	a.bus.Publish(eventbus.Event{Type: typ, Time: a.clk.Now(), Status: status, Data: data})
}

// Close stops the scheduler, waits for sounds in flight and releases the
// history store and notifier.
func (a *App) Close(ctx context.Context) error {
	a.sched.Stop(ctx)
	a.disp.Wait()

	var firstErr error
	if a.hist != nil {
		if err := a.hist.Close(); err != nil {
			firstErr = fmt.Errorf("close history: %w", err)
		}
	}
	if c, ok := a.notifier.(io.Closer); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close notifier: %w", err)
		}
	}
	return firstErr
}
