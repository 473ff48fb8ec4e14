package archapi

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when the request budget for the current window is spent.
var ErrRateLimited = errors.New("archapi: request budget exhausted")

// SlidingWindow admits at most limit events in any trailing window. It keeps
// the timestamps of admitted events; an event frees its slot exactly one
// window after it was admitted.
type SlidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

// NewSlidingWindow creates a limiter admitting limit events per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &SlidingWindow{
		limit:  limit,
		window: window,
		stamps: make([]time.Time, 0, limit),
		now:    time.Now,
	}
}

// Reserve records an event if the budget allows it. It never waits.
func (w *SlidingWindow) Reserve() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.expire(now)
	if len(w.stamps) >= w.limit {
		return ErrRateLimited
	}
	w.stamps = append(w.stamps, now)
	return nil
}

// Remaining returns how many events would currently be admitted.
func (w *SlidingWindow) Remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.expire(w.now())
	return w.limit - len(w.stamps)
}

// expire drops events admitted a full window or more ago. Must be called with lock held.
func (w *SlidingWindow) expire(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}
