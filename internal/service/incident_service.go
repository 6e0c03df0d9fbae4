package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"incidentService/internal/domain"
	"incidentService/pkg/e"
)

type IncidentService struct {
	repo      IncidentRepository
	cache     IncidentCache
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*IncidentService)

func WithClock(now func() time.Time) Option {
	return func(s *IncidentService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *IncidentService) { s.newID = newID }
}

func NewIncidentService(
	repo IncidentRepository,
	cache IncidentCache,
	publisher EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *IncidentService {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &IncidentService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IncidentService) Incidents(ctx context.Context) ([]*domain.Incident, error) {
	const op = "service.IncidentService.Incidents"

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return items, nil
}

// IncidentByID returns e.ErrNotFound when no incident carries id.
func (s *IncidentService) IncidentByID(ctx context.Context, id string) (*domain.Incident, error) {
	const op = "service.IncidentService.IncidentByID"

	cached, generation, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("cache get failed", slog.String("op", op), slog.String("incident_id", id), slog.Any("error", err))
	}
	if cached != nil {
		return cached, nil
	}

	inc, err := s.repo.GetByIncidentID(ctx, id)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	if generation != "" {
		if err := s.cache.Fill(ctx, generation, inc); err != nil {
			s.logger.Warn("cache fill failed", slog.String("op", op), slog.String("incident_id", id), slog.Any("error", err))
		}
	}
	return inc, nil
}

func (s *IncidentService) IncidentsByStatus(ctx context.Context, status domain.IncidentStatus) ([]*domain.Incident, error) {
	const op = "service.IncidentService.IncidentsByStatus"

	items, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return items, nil
}

// IncidentsByName matches victim names with a case-insensitive LIKE pattern.
func (s *IncidentService) IncidentsByName(ctx context.Context, pattern string) ([]*domain.Incident, error) {
	const op = "service.IncidentService.IncidentsByName"

	items, err := s.repo.ListByName(ctx, pattern)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return items, nil
}

// Create persists a new incident and publishes IncidentReportedEvent. When
// the publish fails the stored snapshot is still returned together with an
// error wrapping e.ErrPublishFailed.
func (s *IncidentService) Create(ctx context.Context, patch domain.IncidentPatch) (*domain.Incident, error) {
	const op = "service.IncidentService.Create"

	inc := NewIncident(patch, s.newID(), s.now())
	if err := s.repo.Create(ctx, inc); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	s.logger.Debug("incident created", slog.String("incident_id", inc.ID))

	s.refreshCache(ctx, op, inc)
	return inc, s.publish(ctx, op, inc, domain.IncidentReportedEvent)
}

// Update reconciles patch into the stored incident and publishes
// IncidentUpdatedEvent with the full post state. It returns e.ErrNotFound,
// without publishing, when patch.ID is unknown.
func (s *IncidentService) Update(ctx context.Context, patch domain.IncidentPatch) (*domain.Incident, error) {
	const op = "service.IncidentService.Update"

	var changes ChangeSet
	updated, err := s.repo.Update(ctx, patch.ID, func(current *domain.Incident) (bool, error) {
		changes = Reconcile(current, patch)
		return !changes.Empty(), nil
	})
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	s.logger.Debug("incident reconciled",
		slog.String("incident_id", updated.ID),
		slog.Any("changed", []string(changes)),
	)

	if !changes.Empty() {
		s.refreshCache(ctx, op, updated)
	}
	return updated, s.publish(ctx, op, updated, domain.IncidentUpdatedEvent)
}

// Reset removes every incident. No event is published.
func (s *IncidentService) Reset(ctx context.Context) error {
	const op = "service.IncidentService.Reset"

	if err := s.repo.DeleteAll(ctx); err != nil {
		return e.WrapError(ctx, op, err)
	}
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn("cache flush failed", slog.String("op", op), slog.Any("error", err))
	}
	return nil
}

func (s *IncidentService) publish(ctx context.Context, op string, inc *domain.Incident, eventType string) error {
	if _, err := s.publisher.Publish(ctx, *inc, eventType); err != nil {
		return fmt.Errorf("%s: %w: %v", op, e.ErrPublishFailed, err)
	}
	return nil
}

func (s *IncidentService) refreshCache(ctx context.Context, op string, inc *domain.Incident) {
	if err := s.cache.Store(ctx, inc); err != nil {
		s.logger.Warn("cache store failed", slog.String("op", op), slog.String("incident_id", inc.ID), slog.Any("error", err))
	}
}
