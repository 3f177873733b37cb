package postgres

// Schema migrations are idempotent and run on startup. Each statement uses
// IF NOT EXISTS so a restart against an already-migrated database is a no-op.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS characters (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id        TEXT NOT NULL,
		name           TEXT NOT NULL,
		mentions       INTEGER NOT NULL DEFAULT 0,
		facts          TEXT[] NOT NULL DEFAULT '{}',
		category       TEXT NOT NULL DEFAULT '',
		personality    TEXT NOT NULL DEFAULT '',
		speaking_style TEXT NOT NULL DEFAULT '',
		avatar_url     TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		mentions   INTEGER NOT NULL DEFAULT 0,
		details    TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS topics (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		mentions   INTEGER NOT NULL DEFAULT 0,
		info       TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS relationships (
		id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id           TEXT NOT NULL,
		from_character_id UUID NOT NULL REFERENCES characters(id),
		to_character_id   UUID NOT NULL REFERENCES characters(id),
		relationship_type TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		strength          INTEGER NOT NULL DEFAULT 5,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_characters_user ON characters (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_user ON events (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_topics_user ON topics (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_user ON relationships (user_id)`,
}
