// Package reminder fires a task's reminder: OS notification, sound, status
// text and a history record. Every step fails soft; a broken backend is
// logged and the remaining steps still run.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/idilsaglam/mornify/internal/clock"
	"github.com/idilsaglam/mornify/internal/eventbus"
	"github.com/idilsaglam/mornify/internal/history"
	"github.com/idilsaglam/mornify/internal/logx"
	"github.com/idilsaglam/mornify/internal/model"
)

// Source says what caused a trigger.
type Source string

const (
	SourceTick     Source = "tick"
	SourceFollowUp Source = "followup"
	SourceManual   Source = "manual"
)

// DefaultTimeout is how long the notification stays up.
const DefaultTimeout = 10 * time.Second

// maxNotifyWait bounds how long a trigger waits on the rate limiter.
const maxNotifyWait = 5 * time.Second

func Title(t model.Task) string { return "Reminder: " + t.Activity }

func Body(t model.Task) string {
	return fmt.Sprintf("It's %s - Time for %s", t.Time, t.Activity)
}

func Status(t model.Task) string {
	return fmt.Sprintf("Reminder: %s at %s", t.Activity, t.Time)
}

type Options struct {
	Notifier Notifier
	Player   Player // nil when there is no sound asset
	Bus      eventbus.Bus
	History  history.Store
	Log      logx.Logger
	Clock    clock.Clock

	Timeout    time.Duration
	RatePerSec int
	Burst      int
}

type Dispatcher struct {
	notifier Notifier
	player   Player
	bus      eventbus.Bus
	hist     history.Store
	log      logx.Logger
	clock    clock.Clock
	timeout  time.Duration
	limiter  *rate.Limiter

	sounds sync.WaitGroup
}

func New(opt Options) *Dispatcher {
	if opt.Log.IsZero() {
		opt.Log = logx.Nop()
	}
	if opt.Clock == nil {
		opt.Clock = clock.Real()
	}
	if opt.Notifier == nil {
		opt.Notifier = NewLogNotifier(opt.Log)
	}
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}
	if opt.RatePerSec <= 0 {
		opt.RatePerSec = 1
	}
	if opt.Burst <= 0 {
		opt.Burst = 3
	}
	return &Dispatcher{
		notifier: opt.Notifier,
		player:   opt.Player,
		bus:      opt.Bus,
		hist:     opt.History,
		log:      opt.Log.With(logx.String("comp", "reminder")),
		clock:    opt.Clock,
		timeout:  opt.Timeout,
		limiter:  rate.NewLimiter(rate.Limit(opt.RatePerSec), opt.Burst),
	}
}

// Trigger fires the reminder for t.
func (d *Dispatcher) Trigger(ctx context.Context, t model.Task, src Source) {
	log := d.log.With(logx.String("activity", t.Activity), logx.String("time", t.Time), logx.String("source", string(src)))

	notifyErr := d.notify(ctx, t)
	if notifyErr != nil {
		log.Warn("notification failed", logx.String("backend", d.notifier.Name()), logx.Err(notifyErr))
	}

	if d.player != nil {
		d.sounds.Add(1)
		go func() {
			defer d.sounds.Done()
			if err := d.player.Play(context.Background()); err != nil {
				log.Warn("sound failed", logx.Err(err))
			}
		}()
	}

	status := Status(t)
	if d.bus != nil {
		d.bus.Publish(eventbus.Event{Type: eventbus.TypeReminder, Time: d.clock.Now(), Status: status, Data: t})
	}
	log.Info("reminder fired")

	if d.hist != nil {
		rec := history.Record{
			ID:       uuid.NewString(),
			At:       d.clock.Now(),
			TaskTime: t.Time,
			Activity: t.Activity,
			Source:   string(src),
		}
		if notifyErr != nil {
			rec.NotifyError = notifyErr.Error()
		}
		if err := d.hist.Append(ctx, rec); err != nil {
			log.Warn("history append failed", logx.Err(err))
		}
	}
}

func (d *Dispatcher) notify(ctx context.Context, t model.Task) error {
	wctx, cancel := context.WithTimeout(ctx, maxNotifyWait)
	defer cancel()
	if err := d.limiter.Wait(wctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return d.notifier.Notify(ctx, Notification{Title: Title(t), Body: Body(t), Timeout: d.timeout})
}

// Wait blocks until sounds started so far have finished.
func (d *Dispatcher) Wait() { d.sounds.Wait() }
