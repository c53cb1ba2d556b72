package parallel

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
)

// Pool runs file-level tasks on a fixed number of goroutines. With one
// worker every task runs inline in Do. A task that panics is logged and
// counted instead of taking the process down.
type Pool struct {
	Workers int

	tasks     chan func()
	wg        sync.WaitGroup
	closeOnce sync.Once
	panics    atomic.Uint64
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{Workers: numWorkers}
	if numWorkers == 1 {
		return pool
	}

	pool.tasks = make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range pool.tasks {
				pool.run(f)
			}
		})
	}
	return pool
}

// Do queues f, blocking while every worker is busy and the queue is full.
// It must not be called after Cancel.
func (p *Pool) Do(f func()) {
	if p.tasks == nil {
		p.run(f)
		return
	}
	p.tasks <- f
}

// Wait blocks until the workers have drained the queue. done closes the
// queue first; without it Wait returns only after Cancel.
func (p *Pool) Wait(done bool) {
	if done {
		p.Cancel()
	}
	p.wg.Wait()
}

// Cancel stops accepting tasks. It is safe to call more than once.
func (p *Pool) Cancel() {
	p.closeOnce.Do(func() {
		if p.tasks != nil {
			close(p.tasks)
		}
	})
}

// Panics returns the number of tasks that panicked.
func (p *Pool) Panics() uint64 {
	return p.panics.Load()
}

// Err reports recovered panics as an error.
func (p *Pool) Err() error {
	if n := p.Panics(); n > 0 {
		return fmt.Errorf("%d tasks panicked", n)
	}
	return nil
}

func (p *Pool) run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			slog.Error("task panicked", "panic", r)
		}
	}()
	f()
}
