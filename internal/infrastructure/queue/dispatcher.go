package queue

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/jnfpayroll/auth-api/internal/api/metrics"
	"github.com/jnfpayroll/auth-api/internal/core/ports"
)

const channelBuffer = 256

// ErrStopped is returned for jobs submitted after the workers have exited.
var ErrStopped = errors.New("hash dispatcher stopped")

type jobKind int

const (
	jobHash jobKind = iota
	jobCompare
)

type job struct {
	ctx      context.Context
	kind     jobKind
	hash     string
	password string
	done     chan result
}

type result struct {
	hash  string
	match bool
	err   error
}

// Dispatcher bounds the number of concurrent password hashing operations by
// running them on a fixed set of workers. It implements ports.PasswordHasher
// by decorating another hasher.
type Dispatcher struct {
	jobs    chan job
	stopped chan struct{}
	workers int
	hasher  ports.PasswordHasher
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers workers.
// If numWorkers <= 0, one worker per CPU is used.
func NewDispatcher(numWorkers int, hasher ports.PasswordHasher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Dispatcher{
		jobs:    make(chan job, channelBuffer),
		stopped: make(chan struct{}),
		workers: numWorkers,
		hasher:  hasher,
		log:     log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// pending and later submissions then fail with ErrStopped.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		go d.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(d.stopped)
	}()
}

func (d *Dispatcher) Hash(ctx context.Context, password string) (string, error) {
	res, err := d.submit(ctx, job{kind: jobHash, password: password})
	return res.hash, err
}

func (d *Dispatcher) Compare(ctx context.Context, hash, password string) (bool, error) {
	res, err := d.submit(ctx, job{kind: jobCompare, hash: hash, password: password})
	return res.match, err
}

func (d *Dispatcher) submit(ctx context.Context, j job) (result, error) {
	j.ctx = ctx
	j.done = make(chan result, 1)

	select {
	case <-d.stopped:
		return result{}, ErrStopped
	default:
	}

	// Counted before the send so a worker's Dec never precedes it.
	metrics.HashQueueDepth.Inc()
	select {
	case d.jobs <- j:
	case <-ctx.Done():
		metrics.HashQueueDepth.Dec()
		return result{}, ctx.Err()
	case <-d.stopped:
		metrics.HashQueueDepth.Dec()
		return result{}, ErrStopped
	}

	select {
	case res := <-j.done:
		return res, res.err
	case <-ctx.Done():
		return result{}, ctx.Err()
	case <-d.stopped:
		return result{}, ErrStopped
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			metrics.HashQueueDepth.Dec()
			if err := j.ctx.Err(); err != nil {
				// Caller gave up while queued; skip the bcrypt round.
				j.done <- result{err: err}
				continue
			}
			res := d.run(j)
			if res.err != nil {
				d.log.Error().Err(res.err).Int("worker_id", id).Msg("password hashing failed")
			}
			j.done <- res
		}
	}
}

func (d *Dispatcher) run(j job) result {
	start := time.Now()
	switch j.kind {
	case jobHash:
		hash, err := d.hasher.Hash(j.ctx, j.password)
		metrics.HashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
		return result{hash: hash, err: err}
	default:
		ok, err := d.hasher.Compare(j.ctx, j.hash, j.password)
		metrics.HashDuration.WithLabelValues("compare").Observe(time.Since(start).Seconds())
		return result{match: ok, err: err}
	}
}
