package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"incidentService/internal/domain"
	"incidentService/pkg/e"
)

const selectIncident = `
	SELECT incident_id,
		   COALESCE(latitude, ''),
		   COALESCE(longitude, ''),
		   number_of_people,
		   medical_needed,
		   COALESCE(victim_name, ''),
		   COALESCE(victim_phone, ''),
		   reported_time,
		   incident_status,
		   version
	FROM reported_incident
`

type IncidentStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIncidentStore(pool *pgxpool.Pool, logger *slog.Logger) *IncidentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &IncidentStore{pool: pool, logger: logger}
}

func (p *IncidentStore) Create(ctx context.Context, incident *domain.Incident) error {
	const op = "postgres.Incident.Create"

	const query = `
		INSERT INTO reported_incident (
			incident_id, latitude, longitude, number_of_people, medical_needed,
			victim_name, victim_phone, reported_time, incident_status, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
	`

	_, err := p.pool.Exec(ctx, query,
		incident.ID,
		nullString(incident.Latitude),
		nullString(incident.Longitude),
		incident.NumberOfPeople,
		incident.MedicalNeeded,
		nullString(incident.VictimName),
		nullString(incident.VictimPhoneNumber),
		incident.ReportedTime,
		incident.Status,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	incident.Version = 1
	return nil
}

func (p *IncidentStore) List(ctx context.Context) ([]*domain.Incident, error) {
	return p.query(ctx, "postgres.Incident.List", selectIncident+` ORDER BY id`)
}

func (p *IncidentStore) ListByStatus(ctx context.Context, status domain.IncidentStatus) ([]*domain.Incident, error) {
	return p.query(ctx, "postgres.Incident.ListByStatus",
		selectIncident+` WHERE incident_status = $1 ORDER BY id`, status)
}

// ListByName matches victim_name with a case-insensitive LIKE pattern.
func (p *IncidentStore) ListByName(ctx context.Context, pattern string) ([]*domain.Incident, error) {
	return p.query(ctx, "postgres.Incident.ListByName",
		selectIncident+` WHERE LOWER(victim_name) LIKE LOWER($1) ORDER BY id`, pattern)
}

func (p *IncidentStore) GetByIncidentID(ctx context.Context, id string) (*domain.Incident, error) {
	const op = "postgres.Incident.GetByIncidentID"

	inc, err := scanIncident(p.pool.QueryRow(ctx, selectIncident+` WHERE incident_id = $1`, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return inc, nil
}

// Update runs lookup, mutate and persist in one transaction holding a row
// lock. The version check guards against writers that bypass the lock.
func (p *IncidentStore) Update(ctx context.Context, id string, mutate func(*domain.Incident) (bool, error)) (*domain.Incident, error) {
	const op = "postgres.Incident.Update"

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		p.logger.Error("begin tx failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inc, err := scanIncident(tx.QueryRow(ctx, selectIncident+` WHERE incident_id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	changed, err := mutate(inc)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	if !changed {
		return inc, nil
	}

	const query = `
		UPDATE reported_incident
		SET latitude = $1,
			longitude = $2,
			number_of_people = $3,
			medical_needed = $4,
			victim_name = $5,
			victim_phone = $6,
			incident_status = $7,
			version = version + 1
		WHERE incident_id = $8 AND version = $9
	`

	tag, err := tx.Exec(ctx, query,
		nullString(inc.Latitude),
		nullString(inc.Longitude),
		inc.NumberOfPeople,
		inc.MedicalNeeded,
		nullString(inc.VictimName),
		nullString(inc.VictimPhoneNumber),
		inc.Status,
		id,
		inc.Version,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, e.WrapError(ctx, op, e.ErrConflict)
	}

	if err := tx.Commit(ctx); err != nil {
		p.logger.Error("commit failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	inc.ID = id
	inc.Version++
	return inc, nil
}

func (p *IncidentStore) DeleteAll(ctx context.Context) error {
	const op = "postgres.Incident.DeleteAll"

	if _, err := p.pool.Exec(ctx, `DELETE FROM reported_incident`); err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (p *IncidentStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.Incident, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	incidents := make([]*domain.Incident, 0)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return incidents, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var inc domain.Incident
	err := row.Scan(
		&inc.ID,
		&inc.Latitude,
		&inc.Longitude,
		&inc.NumberOfPeople,
		&inc.MedicalNeeded,
		&inc.VictimName,
		&inc.VictimPhoneNumber,
		&inc.ReportedTime,
		&inc.Status,
		&inc.Version,
	)
	if err != nil {
		return nil, err
	}
	inc.ReportedTime = inc.ReportedTime.UTC()
	return &inc, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
