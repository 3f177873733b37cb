package memstore_test

import (
	"context"
	"testing"

	"github.com/ebelyakova/zapomni/internal/knowledge"
	"github.com/ebelyakova/zapomni/internal/knowledge/memstore"
)

func TestLoadUnknownUserReturnsEmptyBase(t *testing.T) {
	s := memstore.New()
	kb, err := s.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(kb.Characters) != 0 || len(kb.Events) != 0 || len(kb.Topics) != 0 || len(kb.Relationships) != 0 {
		t.Errorf("expected empty knowledge base, got %+v", kb)
	}
}

func TestUpsertCharacterAssignsStableID(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	c := &knowledge.Character{Name: "Alice", Mentions: 1, Facts: []string{"a"}}
	if err := s.UpsertCharacter(ctx, "u1", c); err != nil {
		t.Fatalf("UpsertCharacter: %v", err)
	}
	if c.ID == "" {
		t.Fatal("ID not assigned on insert")
	}
	firstID := c.ID

	c.Mentions = 2
	c.Facts = append(c.Facts, "b")
	if err := s.UpsertCharacter(ctx, "u1", c); err != nil {
		t.Fatalf("UpsertCharacter (update): %v", err)
	}
	if c.ID != firstID {
		t.Errorf("ID changed on upsert: %s != %s", c.ID, firstID)
	}

	kb, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := kb.Characters["Alice"]
	if got == nil {
		t.Fatal("character not persisted")
	}
	if got.Mentions != 2 || len(got.Facts) != 2 {
		t.Errorf("persisted state = %+v", got)
	}
}

func TestLoadReturnsIndependentCopy(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	if err := s.UpsertCharacter(ctx, "u1", &knowledge.Character{Name: "Alice", Facts: []string{"a"}}); err != nil {
		t.Fatalf("UpsertCharacter: %v", err)
	}

	kb1, _ := s.Load(ctx, "u1")
	kb1.Characters["Alice"].Facts = append(kb1.Characters["Alice"].Facts, "mutated")

	kb2, _ := s.Load(ctx, "u1")
	if len(kb2.Characters["Alice"].Facts) != 1 {
		t.Error("mutation of a loaded copy leaked into the store")
	}
}

func TestInsertRelationshipValidatesEndpoints(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	if err := s.UpsertCharacter(ctx, "u1", &knowledge.Character{Name: "Alice"}); err != nil {
		t.Fatalf("UpsertCharacter: %v", err)
	}

	err := s.InsertRelationship(ctx, "u1", &knowledge.Relationship{From: "Alice", To: "Bob", Type: "friend"})
	if err == nil {
		t.Fatal("expected error for unknown endpoint")
	}

	kb, _ := s.Load(ctx, "u1")
	if len(kb.Relationships) != 0 {
		t.Error("edge created despite unresolved endpoint")
	}

	if err := s.UpsertCharacter(ctx, "u1", &knowledge.Character{Name: "Bob"}); err != nil {
		t.Fatalf("UpsertCharacter: %v", err)
	}
	r := &knowledge.Relationship{From: "alice", To: "BOB", Type: "friend", Description: "close colleagues"}
	if err := s.InsertRelationship(ctx, "u1", r); err != nil {
		t.Fatalf("InsertRelationship: %v", err)
	}
	if r.ID == "" {
		t.Error("relationship ID not assigned")
	}

	kb, _ = s.Load(ctx, "u1")
	if len(kb.Relationships) != 1 {
		t.Fatalf("edges = %d, want 1", len(kb.Relationships))
	}
	edge := kb.Relationships[0]
	if edge.From != "Alice" || edge.To != "Bob" {
		t.Errorf("endpoint names not canonicalized: %+v", edge)
	}
	if edge.Strength != knowledge.DefaultStrength {
		t.Errorf("Strength = %d, want %d", edge.Strength, knowledge.DefaultStrength)
	}
}
