package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cityfeed/cityfeed/internal/logger"
)

// Job is one background ingestion request.
type Job struct {
	Source   string
	CitySlug string
	URL      string
}

// IngestFunc executes one ingestion run.
type IngestFunc func(ctx context.Context, job Job)

// Runner executes ingestion jobs off the request path so the triggering
// HTTP call can return immediately.
type Runner struct {
	jobs      chan Job
	run       IngestFunc
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
}

// NewRunner creates a runner with the given worker count and queue depth.
func NewRunner(workers, queueDepth int, run IngestFunc) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if queueDepth <= 0 {
		queueDepth = workers * 2
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		jobs:   make(chan Job, queueDepth),
		run:    run,
		ctx:    ctx,
		cancel: cancel,
	}
	r.startOnce.Do(func() {
		for i := 0; i < workers; i++ {
			r.wg.Add(1)
			go r.worker()
		}
	})
	return r
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case job, ok := <-r.jobs:
			if !ok {
				return
			}
			r.run(r.ctx, job)
		}
	}
}

// Enqueue submits a job. Returns false when the queue is full or the runner
// is shutting down; the caller should fall back to a synchronous run or
// report back-pressure.
func (r *Runner) Enqueue(job Job) bool {
	select {
	case <-r.ctx.Done():
		return false
	case r.jobs <- job:
		logger.Debug("ingestion job queued",
			zap.String("source", job.Source),
			zap.String("city", job.CitySlug))
		return true
	default:
		return false
	}
}

// Shutdown stops the workers. In-flight runs observe ctx cancellation
// through their fetches.
func (r *Runner) Shutdown() {
	r.cancel()
	r.wg.Wait()
}
