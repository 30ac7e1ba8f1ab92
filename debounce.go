package tether

import "time"

// Debouncer delays calls to fn until wait has passed without another call,
// then runs fn once with the most recent argument (trailing edge). It never
// starts goroutines or timers: the owning event loop calls Tick to fire due
// calls, so fn always runs on that loop.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)
	now  func() time.Time

	pending  bool
	arg      T
	deadline time.Time
}

// NewDebouncer creates a debouncer around fn. now defaults to time.Now.
func NewDebouncer[T any](wait time.Duration, fn func(T), now func() time.Time) *Debouncer[T] {
	if now == nil {
		now = time.Now
	}
	return &Debouncer[T]{wait: wait, fn: fn, now: now}
}

// Call records arg and restarts the wait window. A pending call whose window
// already elapsed runs first, so a late Tick never merges it with arg.
func (d *Debouncer[T]) Call(arg T) {
	if d.pending && !d.now().Before(d.deadline) {
		d.Flush()
	}
	d.arg = arg
	d.pending = true
	d.deadline = d.now().Add(d.wait)
}

// Tick runs the pending call if its window has elapsed. Returns true if fn
// ran.
func (d *Debouncer[T]) Tick() bool {
	if !d.pending || d.now().Before(d.deadline) {
		return false
	}
	return d.Flush()
}

// Flush runs the pending call immediately, if any.
func (d *Debouncer[T]) Flush() bool {
	if !d.pending {
		return false
	}
	arg := d.arg
	d.Cancel()
	d.fn(arg)
	return true
}

// Cancel drops the pending call without running it.
func (d *Debouncer[T]) Cancel() {
	var zero T
	d.pending = false
	d.arg = zero
}

// Pending reports whether a call is waiting to fire.
func (d *Debouncer[T]) Pending() bool {
	return d.pending
}
