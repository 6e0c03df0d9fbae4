// Package consumer drives inbound commands through decode, reconcile and
// publish, then acknowledges the record. Failed commands are dropped, not
// redelivered.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"incidentService/internal/domain"
	"incidentService/internal/envelope"
	"incidentService/internal/messaging"
	"incidentService/internal/workers"
	"incidentService/pkg/e"
)

//go:generate mockgen -source=consumer.go -destination=mocks/mock.go
type IncidentUpdater interface {
	Update(ctx context.Context, patch domain.IncidentPatch) (*domain.Incident, error)
}

type DroppedLog interface {
	Record(ctx context.Context, cmd domain.DroppedCommand) error
}

type Runner interface {
	Do(ctx context.Context, task workers.Task) error
}

type CommandConsumer struct {
	decoder *envelope.Decoder
	updater IncidentUpdater
	runner  Runner
	dropped DroppedLog
	logger  *slog.Logger
	now     func() time.Time
}

func NewCommandConsumer(
	decoder *envelope.Decoder,
	updater IncidentUpdater,
	runner Runner,
	dropped DroppedLog,
	logger *slog.Logger,
) *CommandConsumer {
	if decoder == nil {
		decoder = envelope.NewDecoder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandConsumer{
		decoder: decoder,
		updater: updater,
		runner:  runner,
		dropped: dropped,
		logger:  logger,
		now:     time.Now,
	}
}

// Run blocks consuming sub until ctx is done.
func (c *CommandConsumer) Run(ctx context.Context, sub messaging.Subscriber) error {
	c.logger.Info("command consumer STARTED")
	err := sub.Consume(ctx, c.Handle)
	c.logger.Info("command consumer STOPPED")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Handle processes one record and acknowledges it exactly once, whatever the
// outcome.
func (c *CommandConsumer) Handle(ctx context.Context, rec messaging.Record) {
	log := c.logger.With(
		slog.String("stream", rec.Stream),
		slog.String("record_id", rec.ID),
		slog.String("key", rec.Key),
	)

	// Settling the record must survive shutdown cancellation.
	settleCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Error("command processing panicked", slog.Any("error", err))
			c.drop(settleCtx, log, rec, err)
		}
		if err := rec.Ack(settleCtx); err != nil {
			log.Error("ack failed", slog.Any("error", err))
		}
	}()

	cmd, err := c.decoder.Decode(rec)
	if err != nil {
		var rej *envelope.RejectError
		if errors.As(err, &rej) {
			log.Log(ctx, rej.Level, "command ignored",
				slog.String("reason", rej.Reason),
				slog.String("type", rej.Type),
			)
			return
		}
		log.Warn("command ignored", slog.Any("error", err))
		return
	}

	log = log.With(slog.String("incident_id", cmd.Incident.ID), slog.String("shape", cmd.Shape.String()))
	log.Debug("command accepted", slog.String("type", cmd.Type), slog.String("message_id", cmd.MessageID))

	err = c.update(ctx, cmd.Incident)
	switch {
	case err == nil:
		log.Debug("command processed")
	case errors.Is(err, e.ErrNotFound):
		log.Warn("incident not found", slog.String("incident_id", cmd.Incident.ID))
	case errors.Is(err, e.ErrPublishFailed):
		log.Error("incident updated but event not published", slog.Any("error", err))
	default:
		log.Error("command processing failed",
			slog.Any("error", err),
			slog.String("payload", string(rec.Value)),
		)
		c.drop(settleCtx, log, rec, err)
	}
}

func (c *CommandConsumer) update(ctx context.Context, patch domain.IncidentPatch) error {
	task := func(ctx context.Context) error {
		_, err := c.updater.Update(ctx, patch)
		return err
	}
	if c.runner == nil {
		return task(ctx)
	}
	return c.runner.Do(ctx, task)
}

func (c *CommandConsumer) drop(ctx context.Context, log *slog.Logger, rec messaging.Record, cause error) {
	if c.dropped == nil {
		return
	}
	err := c.dropped.Record(ctx, domain.DroppedCommand{
		Stream:    rec.Stream,
		RecordID:  rec.ID,
		Key:       rec.Key,
		Headers:   rec.Headers,
		Payload:   string(rec.Value),
		Reason:    cause.Error(),
		DroppedAt: c.now().UTC(),
	})
	if err != nil {
		log.Error("dropped command not recorded", slog.Any("error", err))
	}
}
