package render

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by Do after Close.
var ErrPoolClosed = errors.New("render pool closed")

// Pool bounds how many renders run at once.
type Pool struct {
	sem    *semaphore.Weighted
	size   int64
	closed atomic.Bool
}

// NewPool returns a pool running at most workers renders concurrently.
// workers <= 0 means one per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers)), size: int64(workers)}
}

// Do waits for a free worker and runs fn. It gives up when ctx is done.
// A panicking render is turned into an error.
func (p *Pool) Do(ctx context.Context, fn func() ([]byte, error)) (out []byte, err error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for render worker: %w", err)
	}
	defer p.sem.Release(1)

	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("render panic: %v", r)
		}
	}()
	return fn()
}

// Close rejects new work and waits for running renders to finish.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	_ = p.sem.Acquire(context.Background(), p.size)
	p.sem.Release(p.size)
}
