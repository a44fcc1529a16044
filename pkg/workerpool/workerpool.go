// Package workerpool runs jobs on a fixed number of goroutines.
package workerpool

import (
	"context"
	"sync"
)

// Job is a unit of work submitted to the Pool.
// It returns an error to indicate failure; callers may treat errors as they see fit.
type Job func(ctx context.Context) error

// Pool runs jobs using a fixed number of goroutines.
// It is used to fan out CPU-bound work such as hydrating dictionary
// entries and segmenting article sentences.
type Pool struct {
	jobs      chan Job
	wg        sync.WaitGroup
	workers   int
	closeMu   sync.RWMutex
	closeOnce sync.Once
	closed    bool
	done      chan struct{}

	errMu    sync.Mutex
	firstErr error
}

// New creates a new worker pool with the specified number of workers
// and job queue capacity.
func New(workers, queue int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &Pool{
		jobs:    make(chan Job, queue),
		workers: workers,
		done:    make(chan struct{}),
	}
}

// Start begins the worker goroutines and listens for jobs until ctx is done or Close is called.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					if err := job(ctx); err != nil {
						p.recordErr(err)
					}
				}
			}
		}()
	}
}

func (p *Pool) recordErr(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.firstErr == nil {
		p.firstErr = err
	}
}

// Submit enqueues a job for processing. Returns ErrPoolClosed if the pool is
// closed, including when Close runs while Submit is blocked on a full queue.
func (p *Pool) Submit(job Job) error {
	return p.SubmitCtx(context.Background(), job)
}

// SubmitCtx enqueues a job but returns promptly if ctx is canceled.
func (p *Pool) SubmitCtx(ctx context.Context, job Job) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new jobs and waits for workers to finish.
// It returns the first error reported by a job.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		// Wake blocked submitters before taking the write lock they hold shared.
		close(p.done)
		p.closeMu.Lock()
		p.closed = true
		close(p.jobs)
		p.closeMu.Unlock()
	})
	p.wg.Wait()
	return p.err()
}

func (p *Pool) err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.firstErr
}

// ErrPoolClosed is returned if a Submit is attempted after Close.
var ErrPoolClosed = &PoolError{"worker pool closed"}

// PoolError provides a simple typed error for pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
