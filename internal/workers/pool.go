// Package workers runs blocking storage work off the transport and HTTP
// goroutines on a fixed set of workers.
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"incidentService/pkg/e"
)

type Task func(ctx context.Context) error

type job struct {
	ctx    context.Context
	task   Task
	result chan error
}

type Pool struct {
	jobs     chan job
	poolSize int
	logger   *slog.Logger
	stopped  chan struct{}
}

func NewPool(poolSize, queueSize int, logger *slog.Logger) *Pool {
	if poolSize <= 0 {
		poolSize = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		jobs:     make(chan job, queueSize),
		poolSize: poolSize,
		logger:   logger,
		stopped:  make(chan struct{}),
	}
}

// Run blocks until ctx is done and every worker has returned.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < p.poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx)
		}()
	}
	wg.Wait()
	close(p.stopped)
}

func (p *Pool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			j.result <- p.process(j)
		}
	}
}

func (p *Pool) process(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker task panicked", slog.Any("panic", r))
			err = fmt.Errorf("workers.Pool: task panicked: %v: %w", r, e.ErrInternal)
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return err
	}
	return j.task(j.ctx)
}

// Do submits task and waits for its result. The caller's goroutine is never
// used to run the task.
func (p *Pool) Do(ctx context.Context, task Task) error {
	j := job{ctx: ctx, task: task, result: make(chan error, 1)}

	select {
	case p.jobs <- j:
	case <-p.stopped:
		return e.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-p.stopped:
		select {
		case err := <-j.result:
			return err
		default:
			return e.ErrQueueClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
