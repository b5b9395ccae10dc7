package testutil

import (
	"sync"
	"testing"

	"github.com/vibecharting/chartsafe/internal/results"
)

// RunConcurrent executes the given function concurrently n times.
// Waits for all goroutines to complete before returning.
// Any panics are captured and reported as test failures.
func RunConcurrent(t *testing.T, n int, fn func(workerID int)) {
	t.Helper()

	var wg sync.WaitGroup
	wg.Add(n)

	for i := range n {
		go func(workerID int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("worker %d panicked: %v", workerID, r)
				}
			}()
			fn(workerID)
		}(i)
	}

	wg.Wait()
}

// CategoryRows generates n aggregated result rows with descending values,
// matching the shape the GROUP BY query path produces.
func CategoryRows(n int, dimField, metricField string) []results.Row {
	rows := make([]results.Row, 0, n)
	for i := range n {
		rows = append(rows, results.Row{
			dimField:    string(rune('A' + i%26)),
			metricField: float64((n - i) * 10),
		})
	}

	return rows
}
