package simulation

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GameJob represents a single simulation job
type GameJob struct {
	SimID int
	Seed  int64
}

// RunBatchParallel plays cfg.Games games on a worker pool. Records come back in
// SimID order and match what RunBatch produces for the same config.
// If ctx is cancelled before every game has finished, the batch stops early
// and ctx.Err() is returned.
func RunBatchParallel(ctx context.Context, cfg Config) ([]GameRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	start := time.Now()

	jobs := make(chan GameJob, numWorkers)
	results := make(chan GameRecord, numWorkers)

	var wg sync.WaitGroup

	// Start workers
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go worker(ctx, &wg, cfg, jobs, results)
	}

	// Queue jobs with deterministic seeds
	go func() {
		defer close(jobs)
		for i, seed := range gameSeeds(cfg.Seed, cfg.Games) {
			select {
			case jobs <- GameJob{SimID: i, Seed: seed}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close results once every worker has drained
	go func() {
		wg.Wait()
		close(results)
	}()

	records := make([]GameRecord, cfg.Games)
	collected := 0
	for rec := range results {
		records[rec.SimID] = rec
		collected++
		if cfg.OnResult != nil {
			cfg.OnResult(rec)
		}
	}

	// A cancellation that lands after the last record keeps the batch
	if err := ctx.Err(); err != nil && collected < cfg.Games {
		return nil, err
	}

	cfg.logger().WithFields(logrus.Fields{
		"games":   cfg.Games,
		"workers": numWorkers,
		"policy":  cfg.policy().String(),
		"seed":    cfg.Seed,
		"elapsed": time.Since(start).String(),
	}).Info("batch complete")
	return records, nil
}

// worker processes simulation jobs from the jobs channel
func worker(ctx context.Context, wg *sync.WaitGroup, cfg Config, jobs <-chan GameJob, results chan<- GameRecord) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			continue
		}
		select {
		case results <- RunSingleGame(cfg, job.SimID, job.Seed):
		case <-ctx.Done():
		}
	}
}
