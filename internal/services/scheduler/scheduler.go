// Package scheduler runs periodic tasks as supervised services.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

// Func is the body of one tick.
type Func func(ctx context.Context) error

// Reporter is told about ticks that failed or panicked.
type Reporter interface {
	ReportTaskError(ctx context.Context, task string, err error)
}

// Task runs a Func on its own timer. It implements suture.Service.
type Task struct {
	name     string
	fn       Func
	next     func(now time.Time) time.Time
	reporter Reporter
	now      func() time.Time
}

// Every returns a task that ticks once per interval, the first tick one
// interval after start.
func Every(name string, interval time.Duration, fn Func, reporter Reporter) *Task {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Task{
		name:     name,
		fn:       fn,
		next:     func(now time.Time) time.Time { return now.Add(interval) },
		reporter: reporter,
		now:      time.Now,
	}
}

// DailyAt returns a task that ticks once a day at hour:minute in loc.
func DailyAt(name string, hour, minute int, loc *time.Location, fn Func, reporter Reporter) *Task {
	if loc == nil {
		loc = time.UTC
	}
	return &Task{
		name:     name,
		fn:       fn,
		next:     func(now time.Time) time.Time { return nextDaily(now, hour, minute, loc) },
		reporter: reporter,
		now:      time.Now,
	}
}

// nextDaily returns the first hour:minute in loc strictly after now.
func nextDaily(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !at.After(local) {
		at = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return at
}

// Serve waits for each scheduled time and runs the task until ctx is done.
// A failing tick never stops the loop.
func (t *Task) Serve(ctx context.Context) error {
	for {
		wait := time.Until(t.next(t.now()))
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			_ = t.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single tick, converting a panic into an error. Failures are
// logged and handed to the reporter.
func (t *Task) RunOnce(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			logger.Error("Scheduled task panicked", "task", t.name, "panic", r, "stack", string(debug.Stack()))
		} else if err != nil {
			logger.Error("Scheduled task failed", "task", t.name, "error", err)
		}

		if err == nil {
			logger.Debug("Scheduled task finished", "task", t.name, "duration", time.Since(start))
			return
		}
		if t.reporter != nil {
			t.reporter.ReportTaskError(ctx, t.name, err)
		}
	}()

	return t.fn(ctx)
}

// String names the task in supervisor logs.
func (t *Task) String() string {
	return t.name
}
