package postgres

const schema = `
CREATE TABLE IF NOT EXISTS reported_incident (
	id               BIGSERIAL PRIMARY KEY,
	incident_id      VARCHAR(64)  NOT NULL UNIQUE,
	latitude         VARCHAR(16),
	longitude        VARCHAR(16),
	number_of_people INTEGER      NOT NULL DEFAULT 0 CHECK (number_of_people >= 0),
	medical_needed   BOOLEAN      NOT NULL DEFAULT FALSE,
	victim_name      TEXT,
	victim_phone     TEXT,
	reported_time    TIMESTAMPTZ  NOT NULL,
	incident_status  VARCHAR(32)  NOT NULL,
	version          BIGINT       NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS reported_incident_status_idx ON reported_incident (incident_status);
`
