package knowledge

import "context"

// Store is the persistence boundary for per-user knowledge bases.
//
// Implementations must provide upsert-by-unique-key semantics: characters are
// keyed by (user, name), events and topics by (user, lower-cased name).
// Upserts are individually idempotent; there is no multi-entity transaction,
// and last-write-wins at the row level is the only concurrency guard.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the full knowledge base for the user. A user with no
	// stored entities gets an empty, non-nil knowledge base.
	Load(ctx context.Context, userID string) (*KnowledgeBase, error)

	// UpsertCharacter inserts or updates the character keyed by (userID,
	// c.Name). On success c.ID is populated with the store-assigned id.
	UpsertCharacter(ctx context.Context, userID string, c *Character) error

	// UpsertEvent inserts or updates the event keyed by (userID, e.Name).
	UpsertEvent(ctx context.Context, userID string, e *Event) error

	// UpsertTopic inserts or updates the topic keyed by (userID, t.Name).
	UpsertTopic(ctx context.Context, userID string, t *Topic) error

	// InsertRelationship creates a new directed edge. Both r.From and r.To
	// must name characters already persisted for the user; otherwise an
	// error is returned and no edge is created.
	InsertRelationship(ctx context.Context, userID string, r *Relationship) error

	// Close releases the store's resources.
	Close(ctx context.Context) error
}
