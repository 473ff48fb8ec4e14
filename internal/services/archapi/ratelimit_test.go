package archapi

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestWindow(limit int, window time.Duration) (*SlidingWindow, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	w := NewSlidingWindow(limit, window)
	w.now = clock.Now
	return w, clock
}

func TestSlidingWindow_Budget(t *testing.T) {
	const budget = 90
	w, clock := newTestWindow(budget, time.Minute)

	for i := range budget {
		if err := w.Reserve(); err != nil {
			t.Fatalf("request %d refused: %v", i+1, err)
		}
		clock.Advance(100 * time.Millisecond)
	}

	if err := w.Reserve(); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("request %d = %v, want ErrRateLimited", budget+1, err)
	}

	// The first request was admitted at t0; the clock is now t0+9s.
	clock.Advance(time.Minute - 9*time.Second - time.Millisecond)
	if err := w.Reserve(); !errors.Is(err, ErrRateLimited) {
		t.Fatal("slot freed before a full window elapsed")
	}

	clock.Advance(time.Millisecond)
	if err := w.Reserve(); err != nil {
		t.Fatalf("slot not freed one window after the earliest request: %v", err)
	}
	if err := w.Reserve(); !errors.Is(err, ErrRateLimited) {
		t.Fatal("more than one slot freed")
	}
}

func TestSlidingWindow_Remaining(t *testing.T) {
	w, clock := newTestWindow(3, time.Minute)
	if w.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", w.Remaining())
	}
	_ = w.Reserve()
	_ = w.Reserve()
	if w.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", w.Remaining())
	}
	clock.Advance(time.Minute)
	if w.Remaining() != 3 {
		t.Errorf("Remaining() = %d after window, want 3", w.Remaining())
	}
}

func TestSlidingWindow_Concurrent(t *testing.T) {
	w, _ := newTestWindow(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.Reserve() == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 50 {
		t.Errorf("admitted = %d, want 50", admitted)
	}
}

func TestNewSlidingWindow_Defaults(t *testing.T) {
	w := NewSlidingWindow(0, 0)
	if w.limit != 1 || w.window != time.Minute {
		t.Errorf("defaults = %d/%v", w.limit, w.window)
	}
}
