package clock

import "time"

// Timer is a scheduled callback that can be cancelled before it fires.
// Stop reports whether the call prevented the callback from running.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Production code uses Real; tests inject a
// manual implementation so delays can be advanced deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the wall clock backed by the time package.
type Real struct{}

var _ Clock = Real{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
