package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/idilsaglam/mornify/internal/clock"
	"github.com/idilsaglam/mornify/internal/logx"
	"github.com/idilsaglam/mornify/internal/model"
	"github.com/idilsaglam/mornify/internal/reminder"
)

type fired struct {
	activity string
	src      reminder.Source
	at       time.Time
}

type recordingDispatcher struct {
	mu    sync.Mutex
	clock clock.Clock
	got   []fired
}

func (d *recordingDispatcher) Trigger(_ context.Context, t model.Task, src reminder.Source) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, fired{activity: t.Activity, src: src, at: d.clock.Now()})
}

func (d *recordingDispatcher) calls() []fired {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]fired(nil), d.got...)
}

func at(hh, mm, ss int) time.Time {
	return time.Date(2024, 5, 6, hh, mm, ss, 0, time.Local)
}

func newTestScheduler(t *testing.T, start time.Time, cfg Config) (*Scheduler, *clock.FakeClock, *recordingDispatcher) {
	t.Helper()
	clk := clock.Fake(start)
	d := &recordingDispatcher{clock: clk}
	s := New(cfg, d, clk, logx.Nop())
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s, clk, d
}

func TestCalculateNextTime(t *testing.T) {
	cases := []struct {
		start string
		dur   int
		want  string
	}{
		{"08:00", 30, "08:30"},
		{"07:45", 15, "08:00"},
		{"23:50", 20, "00:10"},
		{"22:30", 150, "01:00"},
		{"9:05", 5, "09:10"},
		{"09:40", 1440, "09:40"},
		{"06:00", 0, "06:00"},
	}
	for _, c := range cases {
		got, err := CalculateNextTime(c.start, c.dur)
		if err != nil {
			t.Fatalf("%s+%d: %v", c.start, c.dur, err)
		}
		if got != c.want {
			t.Errorf("%s+%d = %s, want %s", c.start, c.dur, got, c.want)
		}
	}
}

func TestCalculateNextTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "8am", "24:00", "12:60", "12:5", "ab:cd"} {
		if _, err := CalculateNextTime(in, 10); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestSecondsUntil(t *testing.T) {
	cases := []struct {
		next string
		now  time.Time
		want time.Duration
	}{
		{"08:30", at(8, 0, 0), 30 * time.Minute},
		{"08:30", at(8, 0, 45), 30 * time.Minute},
		{"08:00", at(8, 0, 0), 0},
		{"07:00", at(8, 0, 0), 0},
		// wrapped past midnight counts as already passed
		{"00:10", at(23, 50, 0), 0},
	}
	for _, c := range cases {
		got, err := SecondsUntil(c.next, c.now)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("SecondsUntil(%s, %s) = %s, want %s", c.next, c.now.Format("15:04:05"), got, c.want)
		}
	}
}

func TestUpcoming(t *testing.T) {
	r := model.Routine{
		{Time: "09:00", Activity: "C"},
		{Time: "07:00", Activity: "A"},
		{Time: "08:15", Activity: "B"},
	}
	task, wait, ok := Upcoming(r, at(8, 0, 30))
	if !ok || task.Activity != "B" {
		t.Fatalf("got %+v ok=%v, want B", task, ok)
	}
	if wait != 14*time.Minute+30*time.Second {
		t.Fatalf("wait = %s", wait)
	}
	if _, _, ok := Upcoming(r, at(9, 0, 0)); ok {
		t.Fatal("nothing should be left after the last task")
	}
}

func TestScanFiresTaskAndArmsSuccessor(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(8, 0, 0), Config{})
	s.SetRoutine(model.Routine{
		{Time: "08:00", Activity: "A", Duration: 30},
		{Time: "08:30", Activity: "B", Duration: 10},
	})

	s.Scan(clk.Now())
	calls := d.calls()
	if len(calls) != 1 || calls[0].activity != "A" || calls[0].src != reminder.SourceTick {
		t.Fatalf("after scan: %+v", calls)
	}
	if s.PendingFollowUps() != 1 {
		t.Fatalf("pending = %d, want 1", s.PendingFollowUps())
	}

	clk.Advance(1799 * time.Second)
	if n := len(d.calls()); n != 1 {
		t.Fatalf("B fired early: %d calls", n)
	}

	clk.Advance(time.Second)
	calls = d.calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[1].activity != "B" || calls[1].src != reminder.SourceFollowUp {
		t.Fatalf("follow-up = %+v", calls[1])
	}
	if !calls[1].at.Equal(at(8, 30, 0)) {
		t.Fatalf("follow-up fired at %s", calls[1].at)
	}
	if s.PendingFollowUps() != 0 {
		t.Fatalf("pending after fire = %d", s.PendingFollowUps())
	}
}

func TestScanLastTaskHasNoFollowUp(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(9, 40, 0), Config{})
	s.SetRoutine(model.Routine{
		{Time: "09:00", Activity: "A", Duration: 40},
		{Time: "09:40", Activity: "Z", Duration: 20},
	})
	s.Scan(clk.Now())
	if len(d.calls()) != 1 || s.PendingFollowUps() != 0 {
		t.Fatalf("calls=%d pending=%d", len(d.calls()), s.PendingFollowUps())
	}
}

func TestFollowUpPastMidnightFiresImmediately(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(23, 50, 0), Config{})
	s.SetRoutine(model.Routine{
		{Time: "23:50", Activity: "Late", Duration: 20},
		{Time: "00:10", Activity: "Later", Duration: 5},
	})
	s.Scan(clk.Now())
	calls := d.calls()
	if len(calls) != 2 || calls[1].activity != "Later" || calls[1].src != reminder.SourceFollowUp {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestTasksSharingAMinuteAllFire(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(7, 0, 0), Config{})
	s.SetRoutine(model.Routine{
		{Time: "07:00", Activity: "Stretch", Duration: 5},
		{Time: "07:00", Activity: "Water", Duration: 5},
	})
	s.Scan(clk.Now())
	if n := len(d.calls()); n != 2 {
		t.Fatalf("calls = %d, want 2", n)
	}
}

func TestDoubleTriggerWithoutWindow(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(8, 0, 0), Config{})
	s.SetRoutine(model.Routine{
		{Time: "08:00", Activity: "A", Duration: 30},
		{Time: "08:30", Activity: "B", Duration: 10},
	})
	s.Scan(clk.Now())
	clk.Advance(30 * time.Minute)
	s.Scan(clk.Now())

	var b int
	for _, c := range d.calls() {
		if c.activity == "B" {
			b++
		}
	}
	if b != 2 {
		t.Fatalf("B fired %d times, want 2", b)
	}
}

func TestDuplicateWindowSuppressesRepeat(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(8, 0, 0), Config{DuplicateWindow: 2 * time.Minute})
	s.SetRoutine(model.Routine{
		{Time: "08:00", Activity: "A", Duration: 30},
		{Time: "08:30", Activity: "B", Duration: 10},
	})
	s.Scan(clk.Now())
	clk.Advance(30 * time.Minute)
	s.Scan(clk.Now())

	var b int
	for _, c := range d.calls() {
		if c.activity == "B" {
			b++
		}
	}
	if b != 1 {
		t.Fatalf("B fired %d times, want 1", b)
	}
}

func TestRearmReplacesPendingFollowUp(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(8, 0, 0), Config{})
	s.SetRoutine(model.Routine{
		{Time: "08:00", Activity: "A", Duration: 30},
		{Time: "08:30", Activity: "B", Duration: 10},
	})
	s.Scan(clk.Now())
	s.Scan(clk.Now())
	if s.PendingFollowUps() != 1 || clk.Pending() != 1 {
		t.Fatalf("pending scheduler=%d clock=%d", s.PendingFollowUps(), clk.Pending())
	}
	clk.Advance(30 * time.Minute)

	var b int
	for _, c := range d.calls() {
		if c.activity == "B" {
			b++
		}
	}
	if b != 1 {
		t.Fatalf("B fired %d times, want 1", b)
	}
}

func TestSetRoutineKeepsFollowUps(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(8, 0, 0), Config{})
	s.SetRoutine(model.Routine{
		{Time: "08:00", Activity: "A", Duration: 30},
		{Time: "08:30", Activity: "B", Duration: 10},
	})
	s.Scan(clk.Now())
	s.SetRoutine(model.Routine{{Time: "12:00", Activity: "Lunch", Duration: 60}})
	if s.PendingFollowUps() != 1 {
		t.Fatalf("pending = %d, want 1", s.PendingFollowUps())
	}
	clk.Advance(30 * time.Minute)
	calls := d.calls()
	if len(calls) != 2 || calls[1].activity != "B" || calls[1].src != reminder.SourceFollowUp {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	s, _, _ := newTestScheduler(t, at(6, 0, 0), Config{})
	if s.State() != Idle {
		t.Fatalf("initial state %s", s.State())
	}
	for i := 0; i < 3; i++ {
		if err := s.Start(); err != nil {
			t.Fatal(err)
		}
	}
	if n := s.TickRegistrations(); n != 1 {
		t.Fatalf("registrations = %d, want 1", n)
	}
	if s.State() != Running {
		t.Fatalf("state %s", s.State())
	}
}

func TestStartRejectsBadTick(t *testing.T) {
	s, _, _ := newTestScheduler(t, at(6, 0, 0), Config{Tick: "every now and then"})
	if err := s.Start(); err == nil {
		t.Fatal("expected error")
	}
	if s.State() != Idle || s.TickRegistrations() != 0 {
		t.Fatalf("state=%s regs=%d", s.State(), s.TickRegistrations())
	}
}

func TestStopDropsEverything(t *testing.T) {
	s, clk, d := newTestScheduler(t, at(8, 0, 0), Config{})
	s.SetRoutine(model.Routine{
		{Time: "08:00", Activity: "A", Duration: 30},
		{Time: "08:30", Activity: "B", Duration: 10},
	})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.Scan(clk.Now())
	s.Stop(context.Background())
	if s.State() != Idle || s.TickRegistrations() != 0 || s.PendingFollowUps() != 0 {
		t.Fatalf("state=%s regs=%d pending=%d", s.State(), s.TickRegistrations(), s.PendingFollowUps())
	}
	clk.Advance(time.Hour)
	if n := len(d.calls()); n != 1 {
		t.Fatalf("calls = %d", n)
	}
}
