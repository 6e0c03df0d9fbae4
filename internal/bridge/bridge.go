// Package bridge is the in-process request/reply facade between the HTTP
// surface and the incident service. Every action has exactly one handler.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"incidentService/internal/domain"
	"incidentService/internal/workers"
	"incidentService/pkg/e"
)

//go:generate mockgen -source=bridge.go -destination=mocks/mock.go
type IncidentService interface {
	Incidents(ctx context.Context) ([]*domain.Incident, error)
	IncidentByID(ctx context.Context, id string) (*domain.Incident, error)
	IncidentsByStatus(ctx context.Context, status domain.IncidentStatus) ([]*domain.Incident, error)
	IncidentsByName(ctx context.Context, pattern string) ([]*domain.Incident, error)
	Create(ctx context.Context, patch domain.IncidentPatch) (*domain.Incident, error)
	Update(ctx context.Context, patch domain.IncidentPatch) (*domain.Incident, error)
	Reset(ctx context.Context) error
}

// Runner executes blocking work off the caller's goroutine.
type Runner interface {
	Do(ctx context.Context, task workers.Task) error
}

type Request struct {
	Action     string
	IncidentID string
	Status     string
	Name       string
	Incident   domain.IncidentPatch
}

// Reply is empty for acknowledgments and not-found lookups.
type Reply struct {
	Incidents []*domain.Incident
	Incident  *domain.Incident
}

type handlerFunc func(ctx context.Context, req Request) (Reply, error)

type Bridge struct {
	svc      IncidentService
	runner   Runner
	timeout  time.Duration
	logger   *slog.Logger
	handlers map[string]handlerFunc
}

func New(svc IncidentService, runner Runner, timeout time.Duration, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		svc:     svc,
		runner:  runner,
		timeout: timeout,
		logger:  logger,
	}
	b.handlers = map[string]handlerFunc{
		domain.ActionIncidents:         b.incidents,
		domain.ActionIncidentByID:      b.incidentByID,
		domain.ActionIncidentsByStatus: b.incidentsByStatus,
		domain.ActionIncidentsByName:   b.incidentsByName,
		domain.ActionReset:             b.reset,
		domain.ActionCreateIncident:    b.createIncident,
		domain.ActionUpdateIncident:    b.updateIncident,
	}
	return b
}

// Dispatch routes req to its action handler. Unknown actions fail with an
// *e.OperationError before any work is scheduled.
func (b *Bridge) Dispatch(ctx context.Context, req Request) (Reply, error) {
	const op = "bridge.Bridge.Dispatch"

	h, ok := b.handlers[req.Action]
	if !ok {
		b.logger.Warn("unsupported action", slog.String("op", op), slog.String("action", req.Action))
		return Reply{}, e.Unsupported(req.Action)
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var reply Reply
	task := func(ctx context.Context) error {
		r, err := h(ctx, req)
		if err != nil {
			return err
		}
		reply = r
		return nil
	}

	var err error
	if b.runner != nil {
		err = b.runner.Do(ctx, task)
	} else {
		err = task(ctx)
	}
	if err != nil {
		return Reply{}, e.WrapError(ctx, op, err)
	}
	return reply, nil
}

func (b *Bridge) incidents(ctx context.Context, _ Request) (Reply, error) {
	items, err := b.svc.Incidents(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Incidents: nonNil(items)}, nil
}

func (b *Bridge) incidentByID(ctx context.Context, req Request) (Reply, error) {
	inc, err := b.svc.IncidentByID(ctx, req.IncidentID)
	if errors.Is(err, e.ErrNotFound) {
		b.logger.Debug("incident not found", slog.String("incident_id", req.IncidentID))
		return Reply{}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Incident: inc}, nil
}

func (b *Bridge) incidentsByStatus(ctx context.Context, req Request) (Reply, error) {
	items, err := b.svc.IncidentsByStatus(ctx, req.Status)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Incidents: nonNil(items)}, nil
}

func (b *Bridge) incidentsByName(ctx context.Context, req Request) (Reply, error) {
	items, err := b.svc.IncidentsByName(ctx, req.Name)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Incidents: nonNil(items)}, nil
}

func (b *Bridge) reset(ctx context.Context, _ Request) (Reply, error) {
	if err := b.svc.Reset(ctx); err != nil {
		return Reply{}, err
	}
	b.logger.Info("incidents reset")
	return Reply{}, nil
}

// createIncident replies with an empty acknowledgment; the created snapshot
// only travels on the event stream.
func (b *Bridge) createIncident(ctx context.Context, req Request) (Reply, error) {
	inc, err := b.svc.Create(ctx, req.Incident)
	if errors.Is(err, e.ErrPublishFailed) {
		b.logger.Error("incident stored but event not published",
			slog.String("incident_id", inc.ID),
			slog.Any("error", err),
		)
		return Reply{}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{}, nil
}

// updateIncident acknowledges an unknown id like a successful update.
func (b *Bridge) updateIncident(ctx context.Context, req Request) (Reply, error) {
	patch := req.Incident
	if req.IncidentID != "" {
		patch.ID = req.IncidentID
	}

	inc, err := b.svc.Update(ctx, patch)
	switch {
	case errors.Is(err, e.ErrNotFound):
		b.logger.Warn("incident to update not found", slog.String("incident_id", patch.ID))
		return Reply{}, nil
	case errors.Is(err, e.ErrPublishFailed):
		b.logger.Error("incident updated but event not published",
			slog.String("incident_id", inc.ID),
			slog.Any("error", err),
		)
		return Reply{}, nil
	case err != nil:
		return Reply{}, err
	}
	return Reply{}, nil
}

func nonNil(items []*domain.Incident) []*domain.Incident {
	if items == nil {
		return []*domain.Incident{}
	}
	return items
}
