package engine

import "time"

// Clock abstracts wall-clock reads so the scheduler and unlock timestamps
// stay testable. The transition function itself takes an explicit now.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real clock.
func SystemClock() Clock { return systemClock{} }
