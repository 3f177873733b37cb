// Package knowledge defines the per-user knowledge base: characters, events,
// topics, and the directed relationship edges between characters.
//
// A KnowledgeBase is loaded fresh from the store at the start of every request
// and written back via per-entity upserts. It is never cached across requests;
// the store is the single source of truth.
package knowledge

import "strings"

// Character is a person the user has talked about. Characters are keyed by
// name within a user's scope and accumulate facts over time.
type Character struct {
	// ID is the store-assigned identifier. Empty until first persisted.
	ID string `json:"id,omitempty"`

	// Name uniquely identifies the character within a user's knowledge base.
	Name string `json:"name"`

	// Mentions counts how many extraction passes or commands touched this
	// character. It only ever grows.
	Mentions int `json:"mentions"`

	// Facts is an ordered, duplicate-free list of fact strings.
	Facts []string `json:"facts"`

	// Category is an optional free-form grouping label ("colleague", "family").
	Category string `json:"category,omitempty"`

	// Personality is an optional description used when the character is active
	// in persona mode.
	Personality string `json:"personality,omitempty"`

	// SpeakingStyle is an optional description of how the character talks.
	SpeakingStyle string `json:"speaking_style,omitempty"`

	// AvatarURL is an optional image URL supplied by the client.
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Event is something that happened or will happen (a meeting, a deadline).
// Events are keyed by lower-cased name within a user's scope.
type Event struct {
	ID string `json:"id,omitempty"`

	// Name is stored lower-cased; EventKey normalizes lookups.
	Name string `json:"name"`

	Mentions int `json:"mentions"`

	// Details is an ordered, duplicate-free list of detail strings.
	Details []string `json:"details"`
}

// Topic is a recurring subject of conversation, keyed by lower-cased name.
type Topic struct {
	ID string `json:"id,omitempty"`

	Name string `json:"name"`

	Mentions int `json:"mentions"`

	// Info is an ordered, duplicate-free list of info strings.
	Info []string `json:"info"`
}

// Relationship is a directed, typed, weighted edge between two characters:
// "From relates to To as Type". Edges are created only via /link and are
// never updated or deleted.
type Relationship struct {
	ID string `json:"id,omitempty"`

	// From and To are character names. The store layer resolves them to
	// character ids on insert and back to names on load.
	From string `json:"from"`
	To   string `json:"to"`

	// Type is a free-form label such as "friend" or "rival".
	Type string `json:"type"`

	// Description optionally elaborates on the edge.
	Description string `json:"description,omitempty"`

	// Strength is a numeric weight. DefaultStrength when not specified.
	Strength int `json:"strength"`
}

// DefaultStrength is the relationship weight assigned when /link does not
// specify one.
const DefaultStrength = 5

// KnowledgeBase aggregates all stored knowledge for one user. Characters are
// keyed by exact name; events and topics by lower-cased name.
type KnowledgeBase struct {
	Characters    map[string]*Character `json:"characters"`
	Events        map[string]*Event     `json:"events"`
	Topics        map[string]*Topic     `json:"topics"`
	Relationships []Relationship        `json:"relationships"`
}

// NewKnowledgeBase returns an empty knowledge base with all maps initialized.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		Characters: make(map[string]*Character),
		Events:     make(map[string]*Event),
		Topics:     make(map[string]*Topic),
	}
}

// EventKey normalizes an event name to its map key.
func EventKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TopicKey normalizes a topic name to its map key.
func TopicKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Character returns the character with the given name, or nil. Lookup is
// exact first, then case-insensitive, so persona activation and /link work
// regardless of how the client cased the name.
func (kb *KnowledgeBase) Character(name string) *Character {
	if c, ok := kb.Characters[name]; ok {
		return c
	}
	for _, c := range kb.Characters {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// CharacterNames returns all character names in unspecified order.
func (kb *KnowledgeBase) CharacterNames() []string {
	names := make([]string, 0, len(kb.Characters))
	for name := range kb.Characters {
		names = append(names, name)
	}
	return names
}

// RelationshipsOf returns every edge where the named character is either
// endpoint, in edge-list order. The comparison is case-insensitive.
func (kb *KnowledgeBase) RelationshipsOf(name string) []Relationship {
	var out []Relationship
	for _, r := range kb.Relationships {
		if strings.EqualFold(r.From, name) || strings.EqualFold(r.To, name) {
			out = append(out, r)
		}
	}
	return out
}
