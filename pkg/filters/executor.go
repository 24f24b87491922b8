package filters

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Executor runs blocking predicates on a bounded set of goroutines. The zero
// value delegates to DefaultExecutor; use NewExecutor for a pool of its own.
type Executor struct {
	sem     *semaphore.Weighted
	workers int
}

var (
	defaultExecutor *Executor
	defaultMu       sync.RWMutex
)

// NewExecutor returns an executor running at most workers predicates at once.
// A value below 1 means runtime.GOMAXPROCS(0).
func NewExecutor(workers int) *Executor {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Executor{
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: workers,
	}
}

// Workers returns the concurrency limit.
func (e *Executor) Workers() int {
	if e.sem == nil {
		return DefaultExecutor().Workers()
	}
	return e.workers
}

type result struct {
	ok  bool
	err error
}

// Run evaluates fn on a pool goroutine and waits for its verdict. If ctx is
// done before a slot frees up or before fn returns, Run returns ctx.Err();
// fn keeps its slot until it actually returns.
func (e *Executor) Run(ctx context.Context, fn func() bool) (bool, error) {
	if e.sem == nil {
		return DefaultExecutor().Run(ctx, fn)
	}
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}

	done := make(chan result, 1)
	go func() {
		defer e.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("predicate panicked: %v", r)}
			}
		}()
		done <- result{ok: fn()}
	}()

	select {
	case r := <-done:
		return r.ok, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// DefaultExecutor returns the executor used by updates that carry none.
func DefaultExecutor() *Executor {
	defaultMu.RLock()
	e := defaultExecutor
	defaultMu.RUnlock()
	if e != nil {
		return e
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultExecutor == nil {
		defaultExecutor = NewExecutor(0)
	}
	return defaultExecutor
}

// SetDefaultExecutor replaces the process-wide default executor. Nil or a
// zero Executor resets it to a GOMAXPROCS-sized pool on next use.
func SetDefaultExecutor(e *Executor) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if e != nil && e.sem == nil {
		e = nil
	}
	defaultExecutor = e
}
