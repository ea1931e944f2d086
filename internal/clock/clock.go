// Package clock abstracts the time operations the scheduler needs so tests
// can drive timers deterministically.
//
// Production code uses Real(). Tests use Fake(start) and call Advance to fire
// pending timers synchronously on the calling goroutine.
package clock

import "time"

// Clock is the subset of the time package used by panels.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f in its own goroutine (Real) or synchronously during
	// Advance (Fake) once d has elapsed. If d <= 0 the Fake calls f before
	// returning.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from happening. It reports whether the timer
	// was still pending.
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
