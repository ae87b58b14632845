// Package worker runs a bounded pool of goroutines that ingest image files.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job asks the pool to ingest the file at Path. Ctx carries cancellation for
// that single file.
type Job struct {
	Ctx  context.Context
	Path string
}

// Result is the outcome of one Job.
type Result struct {
	Path      string
	Signature string
	Created   bool
	Err       error
}

// IngestFunc processes one file and reports the signature it was stored under.
type IngestFunc func(ctx context.Context, path string) (signature string, created bool, err error)

// Pool feeds Jobs to a fixed number of workers and emits one Result per Job.
type Pool struct {
	workers int
	ingest  IngestFunc
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewPool creates a pool of workers calling ingest. Call Start to launch it.
func NewPool(workers int, ingest IngestFunc, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		ingest:  ingest,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit enqueues a job, blocking while the buffer is full. It returns false
// once the pool has been cancelled.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *Pool) Results() <-chan Result {
	return p.results
}

// Cancel stops workers after their current job. Pending jobs are dropped.
func (p *Pool) Cancel() {
	p.cancel()
}

// Shutdown closes the job queue, waits for the workers to drain it and then
// closes Results. Call it once, after the last Submit.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
	p.cancel()
	close(p.results)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				p.logger.Debug("worker exiting", slog.Int("worker_id", id))
				return
			}
			p.results <- p.process(id, job)

		case <-p.ctx.Done():
			p.logger.Debug("worker cancelled", slog.Int("worker_id", id))
			return
		}
	}
}

func (p *Pool) process(workerID int, job Job) Result {
	ctx := job.Ctx
	if ctx == nil {
		ctx = p.ctx
	}
	if err := ctx.Err(); err != nil {
		return Result{Path: job.Path, Err: fmt.Errorf("job cancelled before processing: %w", err)}
	}

	start := time.Now()
	sig, created, err := p.ingest(ctx, job.Path)
	latency := time.Since(start)

	if err != nil {
		p.logger.Warn("ingest failed",
			slog.Int("worker_id", workerID),
			slog.String("path", job.Path),
			slog.Duration("latency", latency),
			slog.String("error", err.Error()),
		)
		return Result{Path: job.Path, Err: err}
	}

	p.logger.Info("ingest completed",
		slog.Int("worker_id", workerID),
		slog.String("path", job.Path),
		slog.String("signature", sig),
		slog.Bool("created", created),
		slog.Duration("latency", latency),
	)
	return Result{Path: job.Path, Signature: sig, Created: created}
}
