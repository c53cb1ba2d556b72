package parallel

import (
	"runtime"
	"sync"
)

// MinRowsPerWorker keeps tiny images on the calling goroutine.
const MinRowsPerWorker = 16

// Rows calls fn with contiguous [start, end) ranges covering [0, n) and
// returns once every range is done. Ranges are spread over GOMAXPROCS
// goroutines; fn must only touch state owned by its range.
func Rows(n int, fn func(start, end int)) {
	RowsN(n, runtime.GOMAXPROCS(0), fn)
}

// RowsN is Rows with an explicit worker limit.
func RowsN(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers = min(max(workers, 1), (n+MinRowsPerWorker-1)/MinRowsPerWorker)
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Go(func() { fn(start, end) })
	}
	wg.Wait()
}
