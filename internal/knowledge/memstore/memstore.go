// Package memstore provides an in-memory knowledge.Store implementation.
//
// It is intended for tests and local development without a database. All data
// is lost when the process exits. Safe for concurrent use.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ebelyakova/zapomni/internal/knowledge"
)

// Compile-time interface check.
var _ knowledge.Store = (*Store)(nil)

// Store keeps one knowledge base per user in process memory.
type Store struct {
	mu    sync.RWMutex
	users map[string]*knowledge.KnowledgeBase
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{users: make(map[string]*knowledge.KnowledgeBase)}
}

// Load implements knowledge.Store. The returned knowledge base is a deep copy
// so callers can mutate it freely before upserting.
func (s *Store) Load(ctx context.Context, userID string) (*knowledge.KnowledgeBase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kb, ok := s.users[userID]
	if !ok {
		return knowledge.NewKnowledgeBase(), nil
	}
	return copyKB(kb), nil
}

// UpsertCharacter implements knowledge.Store.
func (s *Store) UpsertCharacter(ctx context.Context, userID string, c *knowledge.Character) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("memstore: character name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kb := s.kbLocked(userID)
	stored, ok := kb.Characters[c.Name]
	if !ok {
		stored = &knowledge.Character{Name: c.Name, ID: uuid.NewString()}
		kb.Characters[c.Name] = stored
	}
	c.ID = stored.ID
	stored.Mentions = c.Mentions
	stored.Facts = append([]string(nil), c.Facts...)
	stored.Category = c.Category
	stored.Personality = c.Personality
	stored.SpeakingStyle = c.SpeakingStyle
	stored.AvatarURL = c.AvatarURL
	return nil
}

// UpsertEvent implements knowledge.Store.
func (s *Store) UpsertEvent(ctx context.Context, userID string, e *knowledge.Event) error {
	key := knowledge.EventKey(e.Name)
	if key == "" {
		return fmt.Errorf("memstore: event name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kb := s.kbLocked(userID)
	stored, ok := kb.Events[key]
	if !ok {
		stored = &knowledge.Event{Name: key, ID: uuid.NewString()}
		kb.Events[key] = stored
	}
	e.ID = stored.ID
	stored.Mentions = e.Mentions
	stored.Details = append([]string(nil), e.Details...)
	return nil
}

// UpsertTopic implements knowledge.Store.
func (s *Store) UpsertTopic(ctx context.Context, userID string, t *knowledge.Topic) error {
	key := knowledge.TopicKey(t.Name)
	if key == "" {
		return fmt.Errorf("memstore: topic name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kb := s.kbLocked(userID)
	stored, ok := kb.Topics[key]
	if !ok {
		stored = &knowledge.Topic{Name: key, ID: uuid.NewString()}
		kb.Topics[key] = stored
	}
	t.ID = stored.ID
	stored.Mentions = t.Mentions
	stored.Info = append([]string(nil), t.Info...)
	return nil
}

// InsertRelationship implements knowledge.Store. Both endpoints must already
// exist as characters for the user.
func (s *Store) InsertRelationship(ctx context.Context, userID string, r *knowledge.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kb := s.kbLocked(userID)
	from := kb.Character(r.From)
	if from == nil {
		return fmt.Errorf("memstore: character %q not found", r.From)
	}
	to := kb.Character(r.To)
	if to == nil {
		return fmt.Errorf("memstore: character %q not found", r.To)
	}

	stored := *r
	stored.ID = uuid.NewString()
	stored.From = from.Name
	stored.To = to.Name
	if stored.Strength == 0 {
		stored.Strength = knowledge.DefaultStrength
	}
	kb.Relationships = append(kb.Relationships, stored)
	r.ID = stored.ID
	return nil
}

// Close implements knowledge.Store.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// kbLocked returns the user's knowledge base, creating it if absent.
// Caller must hold s.mu.
func (s *Store) kbLocked(userID string) *knowledge.KnowledgeBase {
	kb, ok := s.users[userID]
	if !ok {
		kb = knowledge.NewKnowledgeBase()
		s.users[userID] = kb
	}
	return kb
}

func copyKB(kb *knowledge.KnowledgeBase) *knowledge.KnowledgeBase {
	out := knowledge.NewKnowledgeBase()
	for name, c := range kb.Characters {
		cp := *c
		cp.Facts = append([]string(nil), c.Facts...)
		out.Characters[name] = &cp
	}
	for name, e := range kb.Events {
		cp := *e
		cp.Details = append([]string(nil), e.Details...)
		out.Events[name] = &cp
	}
	for name, t := range kb.Topics {
		cp := *t
		cp.Info = append([]string(nil), t.Info...)
		out.Topics[name] = &cp
	}
	out.Relationships = append([]knowledge.Relationship(nil), kb.Relationships...)
	return out
}
