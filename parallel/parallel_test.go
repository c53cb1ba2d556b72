package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestRowsCoversRange(t *testing.T) {
	for _, tc := range []struct {
		n, workers int
	}{
		{0, 4},
		{1, 4},
		{15, 4},
		{16, 1},
		{100, 4},
		{257, 8},
		{1000, 3},
	} {
		hits := make([]int32, tc.n)
		RowsN(tc.n, tc.workers, func(start, end int) {
			if start >= end {
				t.Errorf("n=%d: empty range [%d, %d)", tc.n, start, end)
			}
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Errorf("n=%d workers=%d: row %d visited %d times, want 1", tc.n, tc.workers, i, h)
			}
		}
	}
}

func TestRowsSmallStaysSequential(t *testing.T) {
	var calls int
	RowsN(MinRowsPerWorker, 8, func(start, end int) {
		calls++
		if start != 0 || end != MinRowsPerWorker {
			t.Errorf("got range [%d, %d), want [0, %d)", start, end, MinRowsPerWorker)
		}
	})
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestPoolRunsAllTasks(t *testing.T) {
	for _, workers := range []int{1, 4} {
		pool := Start(workers)
		if pool.Workers != workers {
			t.Errorf("Workers = %d, want %d", pool.Workers, workers)
		}

		var count atomic.Int64
		for range 50 {
			pool.Do(func() { count.Add(1) })
		}
		pool.Wait(true)

		if got := count.Load(); got != 50 {
			t.Errorf("workers=%d: ran %d tasks, want 50", workers, got)
		}
	}
}

func TestPoolRecoversPanics(t *testing.T) {
	for _, workers := range []int{1, 3} {
		pool := Start(workers)

		var count atomic.Int64
		for i := range 10 {
			pool.Do(func() {
				if i%4 == 0 {
					panic("bad image")
				}
				count.Add(1)
			})
		}
		pool.Wait(true)

		if got := count.Load(); got != 7 {
			t.Errorf("workers=%d: ran %d tasks, want 7", workers, got)
		}
		if got := pool.Panics(); got != 3 {
			t.Errorf("workers=%d: got %d panics, want 3", workers, got)
		}
		if pool.Err() == nil {
			t.Errorf("workers=%d: Err() = nil after panics", workers)
		}
	}

	if err := Start(2).Err(); err != nil {
		t.Errorf("fresh pool: Err() = %v", err)
	}
}

func TestPoolCancelTwice(t *testing.T) {
	pool := Start(2)
	var mu sync.Mutex
	ran := false
	pool.Do(func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	})
	pool.Cancel()
	pool.Wait(true)

	if !ran {
		t.Error("task did not run")
	}
}
