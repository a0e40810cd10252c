package ports

import "time"

// Clock supplies the current time. Election phases are derived from a clock
// read on every call, so tests inject a fake to exercise timing rules without
// real delays.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
