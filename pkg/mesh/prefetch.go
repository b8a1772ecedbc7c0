package mesh

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a participant whose description should be resolved ahead of
// time.
type Job struct {
	Participant string
	Result      *neem.Result
}

// PoolConfig is the configuration options for the prefetch pool.
type PoolConfig struct {
	// Resolver resolves participant descriptions.
	Resolver *Resolver

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided logger.
	Logger *slog.Logger
}

// Pool resolves participant descriptions asynchronously so that replay
// setup does not stall on downloads.
type Pool struct {
	config *PoolConfig
	queue  chan Job
	wg     sync.WaitGroup
	log    *slog.Logger

	mu       sync.Mutex
	resolved map[string]string
}

// NewPool creates a prefetch pool and starts its worker goroutines.
func NewPool(c *PoolConfig) (*Pool, error) {
	if c.Resolver == nil {
		return nil, fmt.Errorf("prefetch pool requires a resolver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	p := &Pool{
		config:   c,
		queue:    make(chan Job, c.QueueSize),
		log:      c.Logger,
		resolved: make(map[string]string),
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a participant for prefetching.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.log.Debug("prefetch queued", "participant", job.Participant)
		return true
	default:
		p.log.Error("prefetch not queued, queue full, job dropped",
			"participant", job.Participant)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// Resolved returns a copy of the descriptions resolved so far, keyed by
// participant.
func (p *Pool) Resolved() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]string, len(p.resolved))
	for k, v := range p.resolved {
		out[k] = v
	}
	return out
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue.
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.log.Debug("prefetch worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.log.Debug("prefetch worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	description, err := p.config.Resolver.DescribeParticipant(ctx, job.Participant, job.Result)
	if err != nil {
		p.log.Warn("prefetch failed", "participant", job.Participant, "error", err)
		return
	}

	p.mu.Lock()
	p.resolved[job.Participant] = description
	p.mu.Unlock()

	p.log.Debug("prefetched description", "participant", job.Participant, "description", description)
}
