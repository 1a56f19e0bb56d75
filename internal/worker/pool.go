// Package worker runs app analyses concurrently for batch mode and paces
// requests to the review feed.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed. Execute must return promptly
// once ctx is cancelled.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type queuedJob struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed number of workers. Wait returns results in
// submission order regardless of completion order.
type Pool struct {
	workers  int
	jobQueue chan queuedJob
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	submitMu  sync.Mutex
	submitted int
	closed    bool

	resultsMu sync.Mutex
	results   map[int]Result
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops accepting jobs
// and is propagated to running ones.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:  workers,
		jobQueue: make(chan queuedJob, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		results:  make(map[int]Result),
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker drains the queue until it is closed. Jobs dequeued after
// cancellation still run with the cancelled context so every accepted job
// produces a result.
func (p *Pool) worker() {
	defer p.wg.Done()

	for q := range p.jobQueue {
		result := q.job.Execute(p.ctx)

		p.resultsMu.Lock()
		p.results[q.index] = result
		p.resultsMu.Unlock()
	}
}

// Submit queues a job. It reports false when the pool has been shut down or
// its context cancelled, in which case the job will not run.
func (p *Pool) Submit(job Job) bool {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	if p.closed || p.ctx.Err() != nil {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- queuedJob{index: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait stops accepting jobs, waits for the accepted ones and returns their
// results in submission order
func (p *Pool) Wait() []Result {
	p.close()
	p.wg.Wait()
	p.cancel()

	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()

	out := make([]Result, p.submitted)
	for i := range out {
		out[i] = p.results[i]
	}
	return out
}

// Shutdown cancels running jobs and waits for the workers to exit
func (p *Pool) Shutdown() {
	p.cancel()
	p.close()
	p.wg.Wait()
}

func (p *Pool) close() {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	if !p.closed {
		p.closed = true
		close(p.jobQueue)
	}
}
