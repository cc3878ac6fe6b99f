package storage

const schema = `
CREATE TABLE IF NOT EXISTS rosters (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	exams       INTEGER NOT NULL,
	students    INTEGER NOT NULL,
	data        TEXT NOT NULL,
	is_active   INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rosters_active ON rosters (is_active);

CREATE TABLE IF NOT EXISTS assignment_configs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	config      TEXT NOT NULL,
	is_default  INTEGER NOT NULL DEFAULT 0,
	is_active   INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignment_configs_active ON assignment_configs (is_active);
`
