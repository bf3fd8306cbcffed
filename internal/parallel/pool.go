// Package parallel provides the process-wide worker pool used by the matrix
// kernels and the encoder blocks. The pool is created once and reused across
// forward passes so repeated runs do not pay goroutine start-up cost.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type task struct {
	fn   func()
	done chan struct{}
}

// Pool is a fixed set of worker goroutines that execute chunked loops and
// small groups of sibling tasks.
//
// Nested regions never spawn additional workers: a For or Sections call made
// while another region is active runs inline on the calling goroutine. This
// keeps per-head attention from re-partitioning inside the matrix kernels and
// also prevents a worker from blocking on its own task queue.
type Pool struct {
	size  int
	tasks chan task
	// doneSlots hands out per-region completion channels so concurrent
	// submitters never share one.
	doneSlots chan chan struct{}
	depth     atomic.Int32
}

// NewPool starts a pool with n workers. n < 1 is clamped to 1.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		size:      n,
		tasks:     make(chan task, n*2),
		doneSlots: make(chan chan struct{}, n),
	}
	for range n {
		p.doneSlots <- make(chan struct{}, 1)
	}
	for range n {
		go func() {
			for t := range p.tasks {
				t.fn()
				t.done <- struct{}{}
			}
		}()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Close stops the workers. Pending regions must have completed.
func (p *Pool) Close() {
	close(p.tasks)
}

// For splits [0, n) into one contiguous chunk per worker and runs fn on each
// chunk. It returns when every chunk has finished. When the pool has a single
// worker, or the call is nested inside another region, fn runs inline as
// fn(0, n).
func (p *Pool) For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p.depth.Add(1) > 1 || p.size <= 1 || n == 1 {
		defer p.depth.Add(-1)
		fn(0, n)
		return
	}
	defer p.depth.Add(-1)

	workers := min(p.size, n)
	chunk := (n + workers - 1) / workers
	done := <-p.doneSlots

	submitted := 0
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		p.tasks <- task{fn: func() { fn(start, end) }, done: done}
		submitted++
	}
	for range submitted {
		<-done
	}
	p.doneSlots <- done
}

// Sections runs a small fixed set of independent computations concurrently,
// one task each, and waits for all of them. Nested calls run the sections
// sequentially inline.
func (p *Pool) Sections(fns ...func()) {
	if len(fns) == 0 {
		return
	}
	if p.depth.Add(1) > 1 || p.size <= 1 || len(fns) == 1 {
		defer p.depth.Add(-1)
		for _, fn := range fns {
			fn()
		}
		return
	}
	defer p.depth.Add(-1)

	done := <-p.doneSlots
	for _, fn := range fns {
		p.tasks <- task{fn: fn, done: done}
	}
	for range fns {
		<-done
	}
	p.doneSlots <- done
}

// InRegion reports whether the caller is (anywhere) inside an active parallel
// region of this pool.
func (p *Pool) InRegion() bool {
	return p.depth.Load() > 0
}

var (
	mu      sync.Mutex
	current = NewPool(runtime.GOMAXPROCS(0))
)

// SetWorkers replaces the shared pool with one of n workers. It must not be
// called while a forward pass is running.
func SetWorkers(n int) {
	mu.Lock()
	defer mu.Unlock()
	if n < 1 {
		n = 1
	}
	if n == current.size {
		return
	}
	current.Close()
	current = NewPool(n)
}

// Workers returns the worker count of the shared pool.
func Workers() int {
	mu.Lock()
	defer mu.Unlock()
	return current.size
}

// Default returns the shared pool.
func Default() *Pool {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// For runs fn over [0, n) on the shared pool.
func For(n int, fn func(start, end int)) {
	Default().For(n, fn)
}

// Sections runs fns on the shared pool.
func Sections(fns ...func()) {
	Default().Sections(fns...)
}
