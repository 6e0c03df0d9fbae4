// Package memory is an in-process incident store for local runs and tests.
package memory

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"

	"incidentService/internal/domain"
	"incidentService/pkg/e"
)

type Store struct {
	mu        sync.RWMutex
	incidents map[string]domain.Incident
}

func NewStore() *Store {
	return &Store{incidents: make(map[string]domain.Incident)}
}

func (s *Store) Create(_ context.Context, inc *domain.Incident) error {
	const op = "memory.Store.Create"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.incidents[inc.ID]; ok {
		return e.Wrap(op, e.ErrUniqueViolation)
	}
	inc.Version = 1
	s.incidents[inc.ID] = *inc
	return nil
}

func (s *Store) List(_ context.Context) ([]*domain.Incident, error) {
	return s.filter(func(domain.Incident) bool { return true }), nil
}

func (s *Store) GetByIncidentID(_ context.Context, id string) (*domain.Incident, error) {
	const op = "memory.Store.GetByIncidentID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	inc, ok := s.incidents[id]
	if !ok {
		return nil, e.Wrap(op, e.ErrNotFound)
	}
	return &inc, nil
}

func (s *Store) ListByStatus(_ context.Context, status domain.IncidentStatus) ([]*domain.Incident, error) {
	return s.filter(func(inc domain.Incident) bool { return inc.Status == status }), nil
}

// ListByName matches victim names against a LIKE pattern, ignoring case.
func (s *Store) ListByName(_ context.Context, pattern string) ([]*domain.Incident, error) {
	re, err := likeToRegexp(pattern)
	if err != nil {
		return nil, e.Wrap("memory.Store.ListByName", e.ErrInvalidInput)
	}
	return s.filter(func(inc domain.Incident) bool { return re.MatchString(inc.VictimName) }), nil
}

func (s *Store) Update(_ context.Context, id string, mutate func(*domain.Incident) (bool, error)) (*domain.Incident, error) {
	const op = "memory.Store.Update"

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return nil, e.Wrap(op, e.ErrNotFound)
	}
	changed, err := mutate(&inc)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if changed {
		inc.ID = id
		inc.Version++
		s.incidents[id] = inc
	} else {
		inc = s.incidents[id]
	}
	return &inc, nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.incidents = make(map[string]domain.Incident)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) filter(keep func(domain.Incident) bool) []*domain.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		if keep(inc) {
			inc := inc
			out = append(out, &inc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportedTime.Equal(out[j].ReportedTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].ReportedTime.Before(out[j].ReportedTime)
	})
	return out
}

// likeToRegexp translates % and _ wildcards with backslash as the escape
// character, like the postgres default; everything else is literal.
func likeToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	escaped := false
	for _, r := range pattern {
		if escaped {
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		return nil, errors.New("LIKE pattern must not end with escape character")
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
