package box2d

import "time"

/// Timer for profiling. Times are reported in milliseconds.
type B2Timer struct {
	start time.Time
}

func MakeB2Timer() B2Timer {
	return B2Timer{start: time.Now()}
}

func (t *B2Timer) Reset() {
	t.start = time.Now()
}

func (t B2Timer) GetMilliseconds() float64 {
	return float64(time.Since(t.start).Nanoseconds()) / 1e6
}
