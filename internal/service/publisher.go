package service

import (
	"context"
	"fmt"
	"log/slog"

	"incidentService/internal/domain"
	"incidentService/internal/envelope"
	"incidentService/internal/messaging"
	"incidentService/pkg/e"
)

type publishJob struct {
	ctx  context.Context
	rec  messaging.OutboundRecord
	done chan error
}

// Publisher encodes snapshots and hands them to a Sender through a bounded
// queue drained by Run. Publish returns once the transport accepted or
// refused the record. There is no retry here.
type Publisher struct {
	encoder *envelope.Encoder
	sender  messaging.Sender
	logger  *slog.Logger
	jobs    chan publishJob
	stopped chan struct{}
}

func NewPublisher(encoder *envelope.Encoder, sender messaging.Sender, logger *slog.Logger, queueSize int) *Publisher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		encoder: encoder,
		sender:  sender,
		logger:  logger,
		jobs:    make(chan publishJob, queueSize),
		stopped: make(chan struct{}),
	}
}

// Run sends queued records one at a time until ctx is done. Records still
// queued at shutdown are failed with e.ErrQueueClosed.
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("event publisher STARTED")
	defer close(p.stopped)

	for {
		select {
		case <-ctx.Done():
			p.drain()
			p.logger.Info("event publisher STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		case job := <-p.jobs:
			job.done <- p.sender.Send(job.ctx, job.rec)
		}
	}
}

func (p *Publisher) drain() {
	for {
		select {
		case job := <-p.jobs:
			job.done <- e.ErrQueueClosed
		default:
			return
		}
	}
}

func (p *Publisher) Publish(ctx context.Context, inc domain.Incident, eventType string) (messaging.OutboundRecord, error) {
	const op = "service.Publisher.Publish"

	rec, err := p.encoder.Encode(inc, eventType)
	if err != nil {
		return messaging.OutboundRecord{}, e.Wrap(op, err)
	}

	job := publishJob{ctx: ctx, rec: rec, done: make(chan error, 1)}
	select {
	case p.jobs <- job:
	case <-p.stopped:
		return rec, fmt.Errorf("%s: %w", op, e.ErrQueueClosed)
	case <-ctx.Done():
		return rec, e.WrapError(ctx, op, ctx.Err())
	}

	var sendErr error
	select {
	case sendErr = <-job.done:
	case <-p.stopped:
		select {
		case sendErr = <-job.done:
		default:
			sendErr = e.ErrQueueClosed
		}
	case <-ctx.Done():
		return rec, e.WrapError(ctx, op, ctx.Err())
	}
	if sendErr != nil {
		return rec, fmt.Errorf("%s: %w", op, sendErr)
	}

	p.logger.Debug("event published",
		slog.String("type", eventType),
		slog.String("key", rec.Key),
	)
	return rec, nil
}
