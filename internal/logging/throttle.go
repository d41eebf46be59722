package logging

// ProgressThrottle decides which progress percentages are worth a log line.
// A percentage is reported the first time it reaches a new multiple of step;
// the final 100% is always reported once.
type ProgressThrottle struct {
	step int
	next float64
	done bool
}

// NewProgressThrottle returns a throttle reporting every step percent. Values
// outside (0, 100] fall back to 10.
func NewProgressThrottle(step int) *ProgressThrottle {
	if step <= 0 || step > 100 {
		step = 10
	}
	return &ProgressThrottle{step: step}
}

// Report reports whether percent should be logged. Negative values mean the
// total is unknown and are never reported. A nil throttle reports everything.
func (t *ProgressThrottle) Report(percent float64) bool {
	if t == nil {
		return true
	}
	if percent < 0 || t.done {
		return false
	}
	if percent >= 100 {
		t.done = true
		return true
	}
	if percent < t.next {
		return false
	}
	for t.next <= percent {
		t.next += float64(t.step)
	}
	return true
}
