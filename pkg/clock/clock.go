package clock

import "time"

// Clock abstracts wall-clock time so that date-window computations in the
// scanner and dispatcher can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a settable instant.
type Fixed struct {
	Instant time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Instant
}

// Advance moves the fixed clock forward.
func (f *Fixed) Advance(d time.Duration) {
	f.Instant = f.Instant.Add(d)
}

// Date builds a Fixed clock at midnight local time of the given day.
func Date(year int, month time.Month, day int) *Fixed {
	return &Fixed{Instant: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}
