package tasks

import (
	"context"
	"sync"

	"github.com/8bitbanana/music-converter/internal/models"
)

// MaxWorkers bounds how many bulk operations run concurrently.
const MaxWorkers = 4

// Operation is one independent unit of work for the pool: a track list and
// the direction to resolve it in.
type Operation struct {
	Tracks    []*models.Track
	Direction Direction
}

// OperationResult pairs an operation's outcome with any terminal error.
// Err is non-nil only when the operation itself aborted (cancellation or
// an uninitialized engine); per-track failures live inside Result.
type OperationResult struct {
	Result *UpdateResult
	Err    error
}

// Pool runs bulk operations concurrently through a bounded worker pool.
// Operations are independent: one failing or being cancelled never stops
// the others. The engine's rate limiter is shared across workers, so the
// pool's total request volume stays bounded no matter how many operations
// are in flight.
type Pool struct {
	engine  *UpdateEngine
	workers int
}

// NewPool creates a pool over the given engine. workers is clamped to
// [1, MaxWorkers].
func NewPool(engine *UpdateEngine, workers int) *Pool {
	if workers <= 0 || workers > MaxWorkers {
		workers = MaxWorkers
	}
	return &Pool{engine: engine, workers: workers}
}

// Run executes every operation and returns their results in submission
// order. Progress updates from all operations are interleaved on the one
// channel, distinguished by OperationID.
func (p *Pool) Run(ctx context.Context, ops []Operation, progress chan<- ProgressUpdate) []OperationResult {
	results := make([]OperationResult, len(ops))

	jobs := make(chan int, len(ops))
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := p.engine.UpdateAll(ctx, ops[i].Tracks, ops[i].Direction, progress)
				results[i] = OperationResult{Result: res, Err: err}
			}
		}()
	}

	for i := range ops {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
