package plagiarism

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

type Job interface {
	Execute(ctx context.Context) error
}

type WorkerPool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// DefaultPoolSize leaves a quarter of the CPUs (at least one) to the rest of
// the process, and never goes below one worker.
func DefaultPoolSize() int {
	totalCPU := runtime.NumCPU()
	systemReserve := max(1, totalCPU/4)
	return max(1, totalCPU-systemReserve)
}

// NewWorkerPool starts size workers; size <= 0 picks DefaultPoolSize.
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		size = DefaultPoolSize()
	}
	poolCtx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  size,
		jobQueue: make(chan Job, size*2),
		ctx:      poolCtx,
		cancel:   cancel,
	}
	pool.start()

	log.Info().
		Int("totalCPU", runtime.NumCPU()).
		Int("workers", size).
		Msg("Worker pool initialized")

	return pool
}

func (p *WorkerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			if err := job.Execute(p.ctx); err != nil {
				log.Error().Err(err).Int("worker", id).Msg("Worker failed to execute job")
			}
		}
	}
}

// Submit queues a job, blocking while the queue is full. It fails once ctx or
// the pool is done.
func (p *WorkerPool) Submit(ctx context.Context, job Job) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- job:
		return nil
	}
}

// Close stops the workers and waits for them. Queued jobs that have not
// started are dropped.
func (p *WorkerPool) Close() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// Done is closed once the pool stops accepting and running jobs
func (p *WorkerPool) Done() <-chan struct{} {
	return p.ctx.Done()
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	return p.workers
}
