// Package imaging runs the asynchronous image pipeline: a worker pool
// that consumes upload events and produces compressed renditions and
// thumbnails through the photo service.
package imaging

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	NumWorkers int
	QueueSize  int
	JobTimeout time.Duration
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers: 3,
		QueueSize:  64,
		JobTimeout: 2 * time.Minute,
	}
}

// Job identifies one uploaded photo to process.
type Job struct {
	PhotoID     string
	UploaderID  string
	ContentType string
}

// Pool manages the processing workers.
type Pool struct {
	config  PoolConfig
	process func(ctx context.Context, job Job)
	jobs    chan Job
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.RWMutex
	running bool
	dropped atomic.Int64
}

// NewPool creates a worker pool that runs process for every job.
func NewPool(cfg PoolConfig, process func(ctx context.Context, job Job)) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = DefaultPoolConfig().NumWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultPoolConfig().QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultPoolConfig().JobTimeout
	}
	return &Pool{
		config:  cfg,
		process: process,
		jobs:    make(chan Job, cfg.QueueSize),
	}
}

// Start launches the workers.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("pool is already running")
	}
	p.running = true
	p.mu.Unlock()

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.config.NumWorkers; i++ {
		workerID := fmt.Sprintf("worker-%d", i+1)

		p.wg.Add(1)
		go func(id string) {
			defer p.wg.Done()
			p.run(workerCtx, id)
		}(workerID)
	}

	log.Printf("[imaging] Worker pool started with %d workers", p.config.NumWorkers)
	return nil
}

// run is one worker's main loop.
func (p *Pool) run(ctx context.Context, id string) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("[imaging] %s stopping due to context cancellation", id)
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			jobCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
			p.process(jobCtx, job)
			cancel()
		}
	}
}

// Enqueue hands a job to the pool without blocking. It reports false
// when the queue is full and the job was dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

// Stop shuts the pool down, waiting for in-flight jobs up to the
// context deadline. Queued jobs that have not started are discarded.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[imaging] All workers stopped gracefully")
	case <-ctx.Done():
		log.Println("[imaging] Timeout waiting for workers to stop")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// QueueDepth returns the number of jobs waiting for a worker.
func (p *Pool) QueueDepth() int {
	return len(p.jobs)
}

// Dropped returns how many jobs were rejected because the queue was full.
func (p *Pool) Dropped() int64 {
	return p.dropped.Load()
}
