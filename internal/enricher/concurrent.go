package enricher

import (
	"context"
	"runtime"
	"sync"

	"fjacquet/spendsense/internal/models"
)

// sequentialThreshold is the batch size below which the worker pool overhead
// is not worth paying.
const sequentialThreshold = 64

// processConcurrent applies fn to every parsed transaction, spreading work
// across the worker pool for large batches. Transactions are independent, so
// no ordering is required between them; results are reported per index.
func (e *Enricher) processConcurrent(ctx context.Context, parsed []models.ParsedTransaction, fn func(*models.ParsedTransaction) error) []error {
	if len(parsed) < sequentialThreshold {
		return e.processSequential(ctx, parsed, fn)
	}

	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type indexedResult struct {
		index int
		err   error
	}

	workChan := make(chan int, workers)
	resultChan := make(chan indexedResult, len(parsed))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workChan {
				select {
				case <-ctx.Done():
					resultChan <- indexedResult{index: idx, err: ctx.Err()}
				default:
					resultChan <- indexedResult{index: idx, err: fn(&parsed[idx])}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range parsed {
			select {
			case workChan <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	errs := make([]error, len(parsed))
	delivered := make([]bool, len(parsed))
	for result := range resultChan {
		errs[result.index] = result.err
		delivered[result.index] = true
	}

	// Indices never dispatched after cancellation were not processed and
	// must not read as successes.
	if err := ctx.Err(); err != nil {
		for i := range errs {
			if !delivered[i] {
				errs[i] = err
			}
		}
	}
	return errs
}

func (e *Enricher) processSequential(ctx context.Context, parsed []models.ParsedTransaction, fn func(*models.ParsedTransaction) error) []error {
	errs := make([]error, len(parsed))
	for i := range parsed {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		errs[i] = fn(&parsed[i])
	}
	return errs
}
