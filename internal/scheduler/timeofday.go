package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/mornify/internal/model"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock minute within a single day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (a single-digit hour is accepted).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || len(hh) > 2 || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// FromTime drops everything below the minute.
func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

// Add moves t by n minutes, wrapping at midnight. Whole days are dropped.
func (t TimeOfDay) Add(n int) TimeOfDay {
	m := ((t.Minutes()+n)%minutesPerDay + minutesPerDay) % minutesPerDay
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// CalculateNextTime returns start plus duration minutes as "HH:MM",
// wrapping minutes at 60 and hours at 24.
func CalculateNextTime(start string, duration int) (string, error) {
	t, err := ParseTimeOfDay(start)
	if err != nil {
		return "", err
	}
	return t.Add(duration).String(), nil
}

// SecondsUntil is the delay from now until next on the same day. now is
// first truncated to its minute, so a follow-up computed at 08:00:45 for
// 08:30 is still 30 minutes out. A time already passed (including one that
// wrapped past midnight) gives 0.
func SecondsUntil(next string, now time.Time) (time.Duration, error) {
	t, err := ParseTimeOfDay(next)
	if err != nil {
		return 0, err
	}
	d := time.Duration(t.Minutes()-FromTime(now).Minutes()) * time.Minute
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Upcoming returns the task starting soonest after now, today. Tasks with
// an unparseable time are skipped.
func Upcoming(r model.Routine, now time.Time) (model.Task, time.Duration, bool) {
	cur := FromTime(now).Minutes()
	var (
		best  model.Task
		bestD = -1
	)
	for _, t := range r {
		tod, err := ParseTimeOfDay(t.Time)
		if err != nil {
			continue
		}
		d := tod.Minutes() - cur
		if d <= 0 {
			continue
		}
		if bestD < 0 || d < bestD {
			best, bestD = t, d
		}
	}
	if bestD < 0 {
		return model.Task{}, 0, false
	}
	wait := time.Duration(bestD)*time.Minute - time.Duration(now.Second())*time.Second
	return best, wait, true
}
