// Package search turns a stream of typed queries into provider searches:
// input is debounced, repeated values are dropped and only the newest
// search result is delivered.
package search

import (
	"sync"
	"time"
)

// Debouncer emits a value once no newer value has been pushed for delay, and
// only when it differs from the previously emitted value.
type Debouncer[T comparable] struct {
	delay time.Duration
	emit  func(T)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	last    T
	hasLast bool
	closed  bool
}

// NewDebouncer creates a Debouncer that calls emit on its own goroutine.
func NewDebouncer[T comparable](delay time.Duration, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, emit: emit}
}

// Push records v as the latest value and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq, v) })
}

func (d *Debouncer[T]) fire(seq uint64, v T) {
	d.mu.Lock()
	if d.closed || seq != d.seq {
		d.mu.Unlock()
		return
	}
	if d.hasLast && d.last == v {
		d.mu.Unlock()
		return
	}
	d.last, d.hasLast = v, true
	d.mu.Unlock()

	d.emit(v)
}

// Close stops any pending emission. Pushes after Close are ignored.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
