// Package postgres implements knowledge.Store on PostgreSQL using pgx.
//
// Entities are upserted via ON CONFLICT on the (user_id, name) unique key so
// concurrent extraction passes for the same user resolve to last-write-wins
// at the row level. The four entity tables are loaded concurrently.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/ebelyakova/zapomni/internal/knowledge"
)

// Compile-time interface check.
var _ knowledge.Store = (*Store)(nil)

// Store is a PostgreSQL-backed knowledge store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database, verifies connectivity, and applies the
// schema migrations.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies all schema statements in order.
func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}

// Ping verifies database connectivity. Used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements knowledge.Store.
func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Load
// ─────────────────────────────────────────────────────────────────────────────

// Load implements knowledge.Store. The four tables are queried concurrently;
// the first error cancels the remaining queries.
func (s *Store) Load(ctx context.Context, userID string) (*knowledge.KnowledgeBase, error) {
	kb := knowledge.NewKnowledgeBase()

	var (
		characters []knowledge.Character
		events     []knowledge.Event
		topics     []knowledge.Topic
		edges      []knowledge.Relationship
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		characters, err = s.loadCharacters(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.loadEvents(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		topics, err = s.loadTopics(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		edges, err = s.loadRelationships(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range characters {
		c := characters[i]
		kb.Characters[c.Name] = &c
	}
	for i := range events {
		e := events[i]
		kb.Events[e.Name] = &e
	}
	for i := range topics {
		t := topics[i]
		kb.Topics[t.Name] = &t
	}
	kb.Relationships = edges
	return kb, nil
}

func (s *Store) loadCharacters(ctx context.Context, userID string) ([]knowledge.Character, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, mentions, facts, category, personality, speaking_style, avatar_url
		FROM characters
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query characters: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (knowledge.Character, error) {
		var c knowledge.Character
		err := row.Scan(&c.ID, &c.Name, &c.Mentions, &c.Facts,
			&c.Category, &c.Personality, &c.SpeakingStyle, &c.AvatarURL)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan characters: %w", err)
	}
	return out, nil
}

func (s *Store) loadEvents(ctx context.Context, userID string) ([]knowledge.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, mentions, details
		FROM events
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query events: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (knowledge.Event, error) {
		var e knowledge.Event
		err := row.Scan(&e.ID, &e.Name, &e.Mentions, &e.Details)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan events: %w", err)
	}
	return out, nil
}

func (s *Store) loadTopics(ctx context.Context, userID string) ([]knowledge.Topic, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, mentions, info
		FROM topics
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query topics: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (knowledge.Topic, error) {
		var t knowledge.Topic
		err := row.Scan(&t.ID, &t.Name, &t.Mentions, &t.Info)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan topics: %w", err)
	}
	return out, nil
}

func (s *Store) loadRelationships(ctx context.Context, userID string) ([]knowledge.Relationship, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, cf.name, ct.name, r.relationship_type, r.description, r.strength
		FROM relationships r
		JOIN characters cf ON cf.id = r.from_character_id
		JOIN characters ct ON ct.id = r.to_character_id
		WHERE r.user_id = $1
		ORDER BY r.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query relationships: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (knowledge.Relationship, error) {
		var r knowledge.Relationship
		err := row.Scan(&r.ID, &r.From, &r.To, &r.Type, &r.Description, &r.Strength)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan relationships: %w", err)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Upserts
// ─────────────────────────────────────────────────────────────────────────────

// UpsertCharacter implements knowledge.Store.
func (s *Store) UpsertCharacter(ctx context.Context, userID string, c *knowledge.Character) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO characters (user_id, name, mentions, facts, category, personality, speaking_style, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, name) DO UPDATE SET
			mentions       = EXCLUDED.mentions,
			facts          = EXCLUDED.facts,
			category       = EXCLUDED.category,
			personality    = EXCLUDED.personality,
			speaking_style = EXCLUDED.speaking_style,
			avatar_url     = EXCLUDED.avatar_url,
			updated_at     = now()
		RETURNING id`,
		userID, c.Name, c.Mentions, c.Facts,
		c.Category, c.Personality, c.SpeakingStyle, c.AvatarURL).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("postgres: upsert character %q: %w", c.Name, err)
	}
	return nil
}

// UpsertEvent implements knowledge.Store.
func (s *Store) UpsertEvent(ctx context.Context, userID string, e *knowledge.Event) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO events (user_id, name, mentions, details)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET
			mentions   = EXCLUDED.mentions,
			details    = EXCLUDED.details,
			updated_at = now()
		RETURNING id`,
		userID, knowledge.EventKey(e.Name), e.Mentions, e.Details).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("postgres: upsert event %q: %w", e.Name, err)
	}
	return nil
}

// UpsertTopic implements knowledge.Store.
func (s *Store) UpsertTopic(ctx context.Context, userID string, t *knowledge.Topic) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO topics (user_id, name, mentions, info)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET
			mentions   = EXCLUDED.mentions,
			info       = EXCLUDED.info,
			updated_at = now()
		RETURNING id`,
		userID, knowledge.TopicKey(t.Name), t.Mentions, t.Info).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("postgres: upsert topic %q: %w", t.Name, err)
	}
	return nil
}

// InsertRelationship implements knowledge.Store. Both endpoint names are
// resolved to character ids case-insensitively; an unresolved name returns an
// error and creates no edge.
func (s *Store) InsertRelationship(ctx context.Context, userID string, r *knowledge.Relationship) error {
	fromID, fromName, err := s.resolveCharacter(ctx, userID, r.From)
	if err != nil {
		return err
	}
	toID, toName, err := s.resolveCharacter(ctx, userID, r.To)
	if err != nil {
		return err
	}

	strength := r.Strength
	if strength == 0 {
		strength = knowledge.DefaultStrength
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO relationships (user_id, from_character_id, to_character_id, relationship_type, description, strength)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		userID, fromID, toID, r.Type, r.Description, strength).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("postgres: insert relationship: %w", err)
	}

	r.From = fromName
	r.To = toName
	r.Strength = strength
	return nil
}

// resolveCharacter maps a character name to its id, case-insensitively.
func (s *Store) resolveCharacter(ctx context.Context, userID, name string) (id, canonical string, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT id, name FROM characters
		WHERE user_id = $1 AND lower(name) = lower($2)`,
		userID, name).Scan(&id, &canonical)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", fmt.Errorf("postgres: character %q not found", name)
	}
	if err != nil {
		return "", "", fmt.Errorf("postgres: resolve character %q: %w", name, err)
	}
	return id, canonical, nil
}
