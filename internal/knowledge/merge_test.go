package knowledge_test

import (
	"reflect"
	"testing"

	"github.com/ebelyakova/zapomni/internal/knowledge"
)

func TestMergeStringsUnion(t *testing.T) {
	got := knowledge.MergeStrings([]string{"a", "b"}, []string{"b", "c", "a", "d"})
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeStrings = %v, want %v", got, want)
	}
}

func TestMergeStringsSkipsBlanks(t *testing.T) {
	got := knowledge.MergeStrings(nil, []string{"", "  ", "x"})
	want := []string{"x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeStrings = %v, want %v", got, want)
	}
}

func TestMergeStringsDoesNotMutateExisting(t *testing.T) {
	existing := []string{"a"}
	_ = knowledge.MergeStrings(existing, []string{"b"})
	if !reflect.DeepEqual(existing, []string{"a"}) {
		t.Errorf("existing slice mutated: %v", existing)
	}
}

func TestCharacterMergeFactsIncrementsMentionsOncePerCall(t *testing.T) {
	c := &knowledge.Character{Name: "Alice", Facts: []string{"a", "b"}, Mentions: 3}

	c.MergeFacts([]string{"a", "b"})
	if want := []string{"a", "b"}; !reflect.DeepEqual(c.Facts, want) {
		t.Errorf("Facts = %v, want %v", c.Facts, want)
	}
	if c.Mentions != 4 {
		t.Errorf("Mentions = %d, want 4", c.Mentions)
	}

	// An empty merge still counts as a mention.
	c.MergeFacts(nil)
	if c.Mentions != 5 {
		t.Errorf("Mentions = %d, want 5", c.Mentions)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(c.Facts, want) {
		t.Errorf("Facts = %v, want %v", c.Facts, want)
	}
}

func TestKnowledgeBaseMergeCharacterCreatesOnFirstMention(t *testing.T) {
	kb := knowledge.NewKnowledgeBase()

	c := kb.MergeCharacter("Bob", []string{"works remotely"})
	if c.Mentions != 1 {
		t.Errorf("Mentions = %d, want 1", c.Mentions)
	}
	if kb.Characters["Bob"] != c {
		t.Error("character not registered in knowledge base")
	}

	again := kb.MergeCharacter("Bob", []string{"works remotely", "likes jazz"})
	if again != c {
		t.Error("second merge created a new character")
	}
	if want := []string{"works remotely", "likes jazz"}; !reflect.DeepEqual(c.Facts, want) {
		t.Errorf("Facts = %v, want %v", c.Facts, want)
	}
	if c.Mentions != 2 {
		t.Errorf("Mentions = %d, want 2", c.Mentions)
	}
}

func TestMergeEventLowercasesKey(t *testing.T) {
	kb := knowledge.NewKnowledgeBase()

	kb.MergeEvent("Standup Meeting", []string{"daily at 10"})
	kb.MergeEvent("standup meeting", []string{"moved to 11"})

	if len(kb.Events) != 1 {
		t.Fatalf("Events count = %d, want 1", len(kb.Events))
	}
	e := kb.Events["standup meeting"]
	if e == nil {
		t.Fatal("event not found under lower-cased key")
	}
	if e.Mentions != 2 {
		t.Errorf("Mentions = %d, want 2", e.Mentions)
	}
	if want := []string{"daily at 10", "moved to 11"}; !reflect.DeepEqual(e.Details, want) {
		t.Errorf("Details = %v, want %v", e.Details, want)
	}
}

func TestCharacterLookupCaseInsensitive(t *testing.T) {
	kb := knowledge.NewKnowledgeBase()
	kb.Characters["Alice"] = &knowledge.Character{Name: "Alice"}

	if kb.Character("alice") == nil {
		t.Error("case-insensitive lookup failed")
	}
	if kb.Character("Bob") != nil {
		t.Error("unknown name resolved unexpectedly")
	}
}

func TestRelationshipsOfMatchesEitherEndpoint(t *testing.T) {
	kb := knowledge.NewKnowledgeBase()
	kb.Relationships = []knowledge.Relationship{
		{From: "Alice", To: "Bob", Type: "friend"},
		{From: "Carol", To: "Alice", Type: "rival"},
		{From: "Bob", To: "Carol", Type: "colleague"},
	}

	got := kb.RelationshipsOf("alice")
	if len(got) != 2 {
		t.Fatalf("edges = %d, want 2", len(got))
	}
	if got[0].Type != "friend" || got[1].Type != "rival" {
		t.Errorf("unexpected edge order: %+v", got)
	}
}
