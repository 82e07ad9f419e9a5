// Package scheduler scans the routine once per tick and fires reminders
// for tasks whose start minute has come. When a task fires, the reminder
// for the task after it is armed as a one-shot timer at start + duration.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/idilsaglam/mornify/internal/clock"
	"github.com/idilsaglam/mornify/internal/logx"
	"github.com/idilsaglam/mornify/internal/model"
	"github.com/idilsaglam/mornify/internal/reminder"
)

// DefaultTick scans once a minute, counted from Start.
const DefaultTick = "@every 1m"

type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Dispatcher fires one reminder. *reminder.Dispatcher implements it.
type Dispatcher interface {
	Trigger(ctx context.Context, t model.Task, src reminder.Source)
}

type Config struct {
	// Tick is a robfig/cron spec; empty means DefaultTick.
	Tick string
	// DuplicateWindow, when positive, drops a trigger of a task that
	// already fired within the window. Zero keeps the follow-up and the
	// regular scan free to fire the same task twice.
	DuplicateWindow time.Duration
}

type Scheduler struct {
	mu sync.Mutex

	cfg   Config
	log   logx.Logger
	clock clock.Clock
	disp  Dispatcher

	ctx    context.Context
	cancel context.CancelFunc

	routine model.Routine
	state   State

	parser cron.Parser
	c      *cron.Cron
	entry  cron.EntryID

	// followUps holds pending one-shot triggers keyed by routine index.
	followUps map[int]*followUp
	lastFired map[model.Task]time.Time
}

type followUp struct {
	task  model.Task
	due   time.Time
	timer clock.Timer
}

func New(cfg Config, disp Dispatcher, clk clock.Clock, log logx.Logger) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if strings.TrimSpace(cfg.Tick) == "" {
		cfg.Tick = DefaultTick
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:       cfg,
		log:       log.With(logx.String("comp", "scheduler")),
		clock:     clk,
		disp:      disp,
		ctx:       ctx,
		cancel:    cancel,
		parser:    cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		followUps: map[int]*followUp{},
		lastFired: map[model.Task]time.Time{},
	}
}

// SetRoutine swaps in a new routine. Pending follow-ups carry their own
// copy of the task and stay armed; only Stop drops them.
func (s *Scheduler) SetRoutine(r model.Routine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routine = r.Clone()
	s.log.Debug("routine set", logx.Int("tasks", len(r)), logx.Int("pending_followups", len(s.followUps)))
}

func (s *Scheduler) Routine() model.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routine.Clone()
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start arms the periodic scan. Calling it again replaces the previous
// registration, so there is only ever one.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.parser.Parse(s.cfg.Tick); err != nil {
		return fmt.Errorf("tick spec %q: %w", s.cfg.Tick, err)
	}
	if s.c == nil {
		s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(time.Local))
		s.c.Start()
	}
	if s.entry != 0 {
		s.c.Remove(s.entry)
		s.entry = 0
	}
	id, err := s.c.AddFunc(s.cfg.Tick, s.CheckTime)
	if err != nil {
		return fmt.Errorf("register tick: %w", err)
	}
	s.entry = id
	s.state = Running
	s.log.Info("routine started", logx.String("tick", s.cfg.Tick), logx.Int("tasks", len(s.routine)))
	return nil
}

// TickRegistrations reports how many periodic scans are armed.
func (s *Scheduler) TickRegistrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return 0
	}
	return len(s.c.Entries())
}

// PendingFollowUps reports armed one-shot triggers.
func (s *Scheduler) PendingFollowUps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.followUps)
}

// Stop is for process shutdown: it halts the periodic scan and drops
// pending follow-ups.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.entry = 0
	s.state = Idle
	dropped := s.cancelFollowUpsLocked()
	s.mu.Unlock()

	s.cancel()
	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	s.log.Info("scheduler stopped", logx.Int("dropped_followups", dropped))
}

// CheckTime is the periodic callback.
func (s *Scheduler) CheckTime() { s.Scan(s.clock.Now()) }

// Scan fires every task starting at now's minute and arms the follow-up
// for each one's successor.
func (s *Scheduler) Scan(now time.Time) {
	cur := FromTime(now).String()
	s.mu.Lock()
	routine := s.routine
	s.mu.Unlock()

	for i, t := range routine {
		if t.Time != cur {
			continue
		}
		s.fire(t, reminder.SourceTick)

		next, ok := routine.Next(i)
		if !ok {
			continue
		}
		at, err := CalculateNextTime(t.Time, t.Duration)
		if err != nil {
			s.log.Warn("cannot compute follow-up time", logx.String("activity", t.Activity), logx.Err(err))
			continue
		}
		delay, err := SecondsUntil(at, now)
		if err != nil {
			s.log.Warn("cannot compute follow-up delay", logx.String("at", at), logx.Err(err))
			continue
		}
		s.armFollowUp(i+1, next, delay)
		s.log.Debug("follow-up armed", logx.String("activity", next.Activity), logx.String("at", at), logx.Duration("in", delay))
	}
}

// armFollowUp replaces any pending follow-up for idx. The timer is created
// outside the lock because a zero delay may run the callback at once.
func (s *Scheduler) armFollowUp(idx int, t model.Task, delay time.Duration) {
	s.mu.Lock()
	if prev, ok := s.followUps[idx]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	f := &followUp{task: t, due: s.clock.Now().Add(delay)}
	s.followUps[idx] = f
	s.mu.Unlock()

	timer := s.clock.AfterFunc(delay, func() { s.runFollowUp(idx, f) })

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.followUps[idx] == f {
		f.timer = timer
		return
	}
	// Replaced or cancelled while arming.
	timer.Stop()
}

func (s *Scheduler) runFollowUp(idx int, f *followUp) {
	s.mu.Lock()
	if s.followUps[idx] != f {
		s.mu.Unlock()
		return
	}
	delete(s.followUps, idx)
	s.mu.Unlock()
	s.fire(f.task, reminder.SourceFollowUp)
}

func (s *Scheduler) cancelFollowUpsLocked() int {
	n := len(s.followUps)
	for idx, f := range s.followUps {
		if f.timer != nil {
			f.timer.Stop()
		}
		delete(s.followUps, idx)
	}
	return n
}

func (s *Scheduler) fire(t model.Task, src reminder.Source) {
	if w := s.cfg.DuplicateWindow; w > 0 {
		now := s.clock.Now()
		s.mu.Lock()
		last, seen := s.lastFired[t]
		if seen && now.Sub(last) < w {
			s.mu.Unlock()
			s.log.Debug("duplicate trigger suppressed", logx.String("activity", t.Activity), logx.String("source", string(src)))
			return
		}
		s.lastFired[t] = now
		s.mu.Unlock()
	}
	if s.disp != nil {
		s.disp.Trigger(s.ctx, t, src)
	}
}
