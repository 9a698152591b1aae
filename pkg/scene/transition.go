package scene

import "time"

type lerper[T any] interface {
	Lerp(to T, t float64) T
}

// transition moves a value toward a fixed target over a bounded duration.
type transition[T lerper[T]] struct {
	from, to T
	start    time.Time
	dur      time.Duration
	active   bool
}

func (tr *transition[T]) begin(from, to T, now time.Time, dur time.Duration) {
	tr.from, tr.to = from, to
	tr.start, tr.dur = now, dur
	tr.active = true
}

// step returns the value at now and whether the transition has finished.
// A finished transition yields its target exactly.
func (tr *transition[T]) step(now time.Time) (T, bool) {
	p := progress(tr.start, tr.dur, now)
	if p >= 1 {
		tr.active = false
		return tr.to, true
	}
	return tr.from.Lerp(tr.to, easeCubicInOut(p)), false
}

// finish ends the transition at its target.
func (tr *transition[T]) finish() T {
	tr.active = false
	return tr.to
}

// reveal is the entrance channel: 0 hidden, 1 fully shown.
type reveal struct {
	value  float64
	start  time.Time
	dur    time.Duration
	active bool
}

func (r *reveal) begin(now time.Time, delay, dur time.Duration) {
	r.value = 0
	r.start = now.Add(delay)
	r.dur = dur
	r.active = true
}

func (r *reveal) step(now time.Time) bool {
	p := progress(r.start, r.dur, now)
	if p >= 1 {
		r.value, r.active = 1, false
		return true
	}
	r.value = easeCubicInOut(p)
	return false
}

func (r *reveal) finish() {
	r.value, r.active = 1, false
}

func progress(start time.Time, dur time.Duration, now time.Time) float64 {
	if dur <= 0 {
		return 1
	}
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	return min(float64(elapsed)/float64(dur), 1)
}
