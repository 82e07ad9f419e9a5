package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/mornify/internal/app"
	"github.com/idilsaglam/mornify/internal/config"
	"github.com/idilsaglam/mornify/internal/eventbus"
	"github.com/idilsaglam/mornify/internal/history"
	"github.com/idilsaglam/mornify/internal/logx"
	"github.com/idilsaglam/mornify/internal/model"
	"github.com/idilsaglam/mornify/internal/scheduler"
	"github.com/idilsaglam/mornify/internal/store/jsonstore"
	"github.com/idilsaglam/mornify/internal/tui"
	"github.com/idilsaglam/mornify/internal/ui"
)

// Options carry the root flags.
type Options struct {
	ConfigPath string
	LogLevel   string
	// Routine and Theme override the files named in the config.
	Routine string
	Theme   string
}

// out receives command output; tests swap it.
var out io.Writer = os.Stdout

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	cmd, a := "tui", []string(nil)
	if len(args) > 0 {
		cmd, a = args[0], args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "next":
		if len(a) != 2 {
			ui.Fail("usage: mornify next <HH:MM> <minutes>")
			return 2
		}
		n, err := strconv.Atoi(a[1])
		if err != nil {
			ui.Fail("next: not a number: " + a[1])
			return 2
		}
		return doNext(a[0], n)
	}

	cfg, err := loadConfig(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}

	switch cmd {
	case "tui":
		return doTUI(ctx, cfg)

	case "run":
		return doDaemon(ctx, cfg)

	case "ls":
		return doList(cfg)

	case "validate":
		return doValidate(cfg)

	case "theme":
		if len(a) > 1 {
			ui.Fail("usage: mornify theme [light|dark]")
			return 2
		}
		name := ""
		if len(a) == 1 {
			name = a[0]
		}
		return doTheme(cfg, name)

	case "trigger":
		if len(a) != 1 {
			ui.Fail("usage: mornify trigger <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("trigger: not a number: " + a[0])
			return 2
		}
		return doTrigger(ctx, cfg, n)

	case "history":
		n := 20
		if len(a) > 1 {
			ui.Fail("usage: mornify history [n]")
			return 2
		}
		if len(a) == 1 {
			if n, err = strconv.Atoi(a[0]); err != nil || n < 1 {
				ui.Fail("history: not a positive number: " + a[0])
				return 2
			}
		}
		return doHistory(ctx, cfg, n)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprint(out, `mornify - daily routine reminders

Usage:
  mornify [flags] [subcommand] [args]

Subcommands:
  tui                    Interactive screen (default)
  run                    Start the routine headless and print reminders
  ls                     Show the routine and what comes next
  validate               Check the routine file against its schema
  next <HH:MM> <minutes> Print the time a task's successor starts
  theme [light|dark]     Show or switch the theme
  trigger <index>        Fire the reminder for task at 1-based index now
  history [n]            Show the last n reminders (default 20)

Flags:
  -c, --config <path>    Config file (yaml, toml, json or jsonc)
      --no-color         Plain ASCII output without colors (also NO_COLOR)
      --log-level <lvl>  trace, debug, info, warn, error
      --routine <path>   Routine file, overrides the config
      --theme <path>     Theme file, overrides the config

Examples:
  mornify ls
  mornify next 23:50 20
  mornify theme dark
  mornify trigger 2
`)
}

func loadConfig(opt Options) (*config.Config, error) {
	path, explicit := config.Resolve(opt.ConfigPath)
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	if opt.Routine != "" {
		cfg.RoutineFile = opt.Routine
	}
	if opt.Theme != "" {
		cfg.ThemeFile = opt.Theme
	}
	if opt.LogLevel != "" {
		cfg.Logging.Level = opt.LogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger. The TUI owns the terminal, so its
// logs only go to the file.
func newLogger(cfg *config.Config, console bool) (*logx.Service, logx.Logger) {
	return logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: console && cfg.Logging.Console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File != "", Path: cfg.Logging.File},
	})
}

func openApp(cfg *config.Config, console bool) (*app.App, func(), error) {
	svc, log := newLogger(cfg, console)
	a, err := app.New(cfg, log, app.Deps{})
	if err != nil {
		_ = svc.Close()
		return nil, nil, err
	}
	ui.SetTheme(a.Theme())
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			log.Warn("close failed", logx.Err(err))
		}
		_ = svc.Close()
	}
	return a, closeFn, nil
}

// -------------- subcommand impls ----------------

func doTUI(ctx context.Context, cfg *config.Config) int {
	a, closeApp, err := openApp(cfg, false)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	defer closeApp()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Scheduler.WatchRoutine {
		go watch(ctx, a)
	}
	if err := tui.Run(ctx, a); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func doDaemon(ctx context.Context, cfg *config.Config) int {
	a, closeApp, err := openApp(cfg, true)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	defer closeApp()

	events, unsub := a.Bus().Subscribe(32)
	defer unsub()

	if err := a.StartRoutine(); err != nil {
		ui.Fail("start: " + err.Error())
		return 1
	}
	if cfg.Scheduler.WatchRoutine {
		go watch(ctx, a)
	}
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		ui.Fail("sd_notify: " + err.Error())
	}
	ui.OK(app.StatusStarted)

	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			return 0
		case e := <-events:
			if e.Type == eventbus.TypeReminder {
				fmt.Fprintf(out, "%s  %s\n", e.Time.Format("15:04:05"), ui.C(ui.Current().Accent, e.Status))
			}
		}
	}
}

func watch(ctx context.Context, a *app.App) {
	if err := a.WatchRoutine(ctx); err != nil && !errors.Is(err, context.Canceled) {
		ui.Fail("watch: " + err.Error())
	}
}

func doList(cfg *config.Config) int {
	routine, err := jsonstore.NewRoutineStore(cfg.RoutineFile).Load()
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	th, err := jsonstore.NewThemeStore(cfg.ThemeFile).Load(model.LightTheme())
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	ui.SetTheme(th)
	fmt.Fprint(out, ui.PanelString(routineLines(routine, time.Now())))
	return 0
}

func doValidate(cfg *config.Config) int {
	if err := jsonstore.NewRoutineStore(cfg.RoutineFile).Validate(); err != nil {
		ui.Fail(cfg.RoutineFile + ": " + err.Error())
		return 1
	}
	ui.OK(cfg.RoutineFile + " is valid")
	return 0
}

func doNext(start string, minutes int) int {
	next, err := scheduler.CalculateNextTime(start, minutes)
	if err != nil {
		ui.Fail("next: " + err.Error())
		return 2
	}
	fmt.Fprintln(out, next)
	return 0
}

func doTheme(cfg *config.Config, name string) int {
	store := jsonstore.NewThemeStore(cfg.ThemeFile)
	th, err := store.Load(model.LightTheme())
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	if name == "" {
		ui.SetTheme(th)
		fmt.Fprint(out, ui.PanelString(themeLines(th)))
		return 0
	}
	preset, err := model.ThemeByName(name)
	if err != nil {
		ui.Fail("theme: " + err.Error())
		return 2
	}
	th = th.Apply(preset)
	if err := store.Save(th); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	ui.SetTheme(th)
	ui.OK("theme set to " + strings.ToLower(name))
	return 0
}

func doTrigger(ctx context.Context, cfg *config.Config, userIndex int) int {
	a, closeApp, err := openApp(cfg, true)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	defer closeApp()

	task, err := a.TriggerIndex(ctx, userIndex-1)
	if err != nil {
		ui.Fail(err.Error())
		fmt.Fprintln(os.Stderr, ui.Dim("Hint: run `mornify ls` to see valid indexes"))
		return 2
	}
	ui.OK("reminded: " + task.Activity)
	return 0
}

func doHistory(ctx context.Context, cfg *config.Config, n int) int {
	store, err := history.Open(history.Config{Driver: cfg.History.Driver, Path: cfg.History.Path}, logx.Nop())
	if err != nil {
		ui.Fail("history: " + err.Error())
		return 1
	}
	if store == nil {
		ui.Fail("history is disabled (history.driver is none)")
		return 1
	}
	defer store.Close()

	recs, err := store.Recent(ctx, n)
	if err != nil {
		ui.Fail("history: " + err.Error())
		return 1
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, ui.Dim("no reminders yet"))
		return 0
	}
	for _, r := range recs {
		fmt.Fprintln(out, historyLine(r))
	}
	return 0
}

// -------------- rendering helpers --------------

// routineLines renders the routine with a progress bar of the tasks
// already started today and a marker on the next one.
func routineLines(r model.Routine, now time.Time) []string {
	t := ui.Current()
	next, wait, hasNext := scheduler.Upcoming(r, now)
	started := 0
	cur := scheduler.FromTime(now).Minutes()
	for _, task := range r {
		if tod, err := scheduler.ParseTimeOfDay(task.Time); err == nil && tod.Minutes() <= cur {
			started++
		}
	}

	lines := []string{
		fmt.Sprintf("%s  %s %d", ui.C(t.Title, "Routine"), ui.C(t.Accent, "Tasks"), len(r)),
		ui.C(t.Muted, ui.ProgressBar(started, len(r), 28)),
		"",
	}
	if len(r) == 0 {
		lines = append(lines, ui.C(t.Muted, "no tasks"))
	}
	for i, task := range r {
		mark := ui.C(t.Pending, t.SymTask)
		if tod, err := scheduler.ParseTimeOfDay(task.Time); err == nil && tod.Minutes() <= cur {
			mark = ui.C(t.Muted, t.SymTask)
		}
		if hasNext && task == next {
			mark = ui.C(t.Accent, t.SymNext)
		}
		activity := runewidth.Truncate(task.Activity, 60, "...")
		lines = append(lines, fmt.Sprintf("%s %s %s  %s %s",
			ui.Dim(fmt.Sprintf("%2d.", i+1)), mark, task.Time, activity,
			ui.C(t.Muted, fmt.Sprintf("(%d min)", task.Duration))))
	}
	lines = append(lines, "")
	if hasNext {
		lines = append(lines, ui.C(t.Muted, fmt.Sprintf("Next: %s at %s (%s)",
			next.Activity, next.Time, humanize.RelTime(now.Add(wait), now, "ago", "from now"))))
	} else {
		lines = append(lines, ui.C(t.Muted, "Nothing left for today"))
	}
	return lines
}

func themeLines(th model.Theme) []string {
	t := ui.Current()
	swatch := func(label string, c model.RGBA) string {
		return fmt.Sprintf("%-10s %s %s  %v", label, ui.C(ui.FG(c), "██"), ui.Hex(c), [4]float64(c))
	}
	lines := []string{
		ui.C(t.Title, "Theme"),
		"",
		swatch("background", th.Background),
		swatch("text", th.Text),
		swatch("button", th.Button),
	}
	if n := len(th.Extra); n > 0 {
		lines = append(lines, "", ui.C(t.Muted, fmt.Sprintf("%d extra key(s) kept", n)))
	}
	return lines
}

func historyLine(r history.Record) string {
	t := ui.Current()
	line := fmt.Sprintf("%s  %-8s %s %s",
		r.At.Local().Format("2006-01-02 15:04:05"), r.Source, r.TaskTime, r.Activity)
	if r.NotifyError != "" {
		line += "  " + ui.C(t.Error, "notify: "+r.NotifyError)
	}
	return line
}
