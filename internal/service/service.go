package service

import (
	"context"

	"incidentService/internal/domain"
	"incidentService/internal/messaging"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	List(ctx context.Context) ([]*domain.Incident, error)
	GetByIncidentID(ctx context.Context, id string) (*domain.Incident, error)
	ListByStatus(ctx context.Context, status domain.IncidentStatus) ([]*domain.Incident, error)
	ListByName(ctx context.Context, pattern string) ([]*domain.Incident, error)
	// Update loads the incident inside one unit of work, applies mutate and
	// persists the result when mutate reports a change. It returns the post
	// state snapshot or e.ErrNotFound.
	Update(ctx context.Context, id string, mutate func(*domain.Incident) (bool, error)) (*domain.Incident, error)
	DeleteAll(ctx context.Context) error
}

// IncidentCache is a snapshot cache keyed by incident id. Get reports the
// cache generation it observed; a snapshot loaded after a miss is written
// back with Fill under that generation, so a Flush in between discards it.
type IncidentCache interface {
	Get(ctx context.Context, id string) (*domain.Incident, string, error)
	// Fill writes incident only when no entry exists and the generation is
	// still the one returned by Get.
	Fill(ctx context.Context, generation string, incident *domain.Incident) error
	// Store replaces the entry unless it already holds a newer Version.
	Store(ctx context.Context, incident *domain.Incident) error
	Flush(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, incident domain.Incident, eventType string) (messaging.OutboundRecord, error)
}

// NopCache is used when the read cache is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.Incident, string, error) { return nil, "", nil }
func (NopCache) Fill(context.Context, string, *domain.Incident) error         { return nil }
func (NopCache) Store(context.Context, *domain.Incident) error                { return nil }
func (NopCache) Flush(context.Context) error                                  { return nil }
