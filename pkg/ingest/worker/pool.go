// Package worker provides an asynchronous worker pool that indexes documents
// off the caller's hot path, so file watchers and HTTP handlers can hand off
// ingestion without waiting on embedding and store round trips.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/vector"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 2 * time.Minute
)

// Indexer writes documents to the store.
type Indexer interface {
	Index(ctx context.Context, docs []vector.Document) (int, error)
}

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	// Source labels the job in logs, e.g. a file path.
	Source string
	Docs   []vector.Document
}

// Config is the configuration options for the worker pool.
type Config struct {
	Indexer Indexer

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds a single job (defaults to 2 minutes).
	JobTimeout time.Duration

	Logger *slog.Logger
}

// Pool processes indexing jobs asynchronously via a worker pool.
type Pool struct {
	config  *Config
	queue   chan Job
	wg      sync.WaitGroup

	// mu guards closed; sends on queue hold the read lock.
	mu     sync.RWMutex
	closed bool

	logger  *slog.Logger
	indexed atomic.Int64
	failed  atomic.Int64
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Indexer == nil {
		return nil, fmt.Errorf("worker pool requires an indexer")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout == 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full or the pool is closed,
// resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("job not queued, pool closed",
			"source", job.Source,
			"docs", len(job.Docs),
		)
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"source", job.Source,
			"docs", len(job.Docs),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"source", job.Source,
			"docs", len(job.Docs),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Calling Close more than once is a no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Indexed returns the number of documents written so far.
func (p *Pool) Indexed() int64 {
	return p.indexed.Load()
}

// Failed returns the number of jobs that returned an error.
func (p *Pool) Failed() int64 {
	return p.failed.Load()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("index worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	n, err := p.config.Indexer.Index(ctx, job.Docs)
	p.indexed.Add(int64(n))
	if err != nil {
		p.failed.Add(1)
		p.logger.Error("async indexing failed",
			"source", job.Source,
			"indexed", n,
			"error", err,
		)
		return
	}

	p.logger.Info("documents indexed",
		"source", job.Source,
		"count", n,
	)
}
