// Package clock lets the scheduler read time and arm one-shot timers
// through an interface, so tests can drive follow-up reminders without
// sleeping.
package clock

import "time"

// Clock is the subset of the time package the scheduler needs.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f once d has elapsed. If d <= 0 the call is
	// immediate (in a new goroutine for Real, synchronously for Fake).
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending call.
type Timer interface {
	// Stop reports whether the call was prevented.
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
