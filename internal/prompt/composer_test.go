package prompt_test

import (
	"strings"
	"testing"

	"github.com/ebelyakova/zapomni/internal/knowledge"
	"github.com/ebelyakova/zapomni/internal/prompt"
)

func TestGeneralEmbedsKnowledgeBase(t *testing.T) {
	kb := knowledge.NewKnowledgeBase()
	kb.Characters["Alice"] = &knowledge.Character{
		Name: "Alice", Mentions: 4, Facts: []string{"works at the bank", "likes jazz"},
	}
	kb.Events["standup"] = &knowledge.Event{Name: "standup", Mentions: 2, Details: []string{"daily at 10"}}
	kb.Topics["budget"] = &knowledge.Topic{Name: "budget", Mentions: 1}
	kb.Relationships = []knowledge.Relationship{
		{From: "Alice", To: "Bob", Type: "friend", Description: "close colleagues"},
	}

	p := prompt.General(kb)
	for _, want := range []string{
		"Alice (4 mentions)",
		"works at the bank; likes jazz",
		"standup (2 mentions): daily at 10",
		"budget (1 mentions)",
		"Alice → Bob: friend (close colleagues)",
		prompt.ShowKeyboardMarker,
		"/summary",
		"/link",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("general prompt missing %q", want)
		}
	}
}

func TestGeneralOnEmptyBase(t *testing.T) {
	p := prompt.General(knowledge.NewKnowledgeBase())
	if !strings.Contains(p, "Nothing yet") {
		t.Error("empty base not acknowledged")
	}
	if !strings.Contains(p, prompt.ShowKeyboardMarker) {
		t.Error("marker contract missing")
	}
}

func TestPersonaDirectionAwareEdges(t *testing.T) {
	kb := knowledge.NewKnowledgeBase()
	alice := &knowledge.Character{
		Name:          "Alice",
		Personality:   "Kind banker",
		SpeakingStyle: "dry humor",
		Facts:         []string{"works at the bank"},
	}
	kb.Characters["Alice"] = alice
	kb.Relationships = []knowledge.Relationship{
		{From: "Alice", To: "Bob", Type: "friend", Description: "close colleagues"},
		{From: "Carol", To: "Alice", Type: "rival"},
	}

	p := prompt.Persona(alice, kb)
	for _, want := range []string{
		"You are Alice",
		"first person",
		"Kind banker",
		"dry humor",
		"works at the bank",
		"→ Bob: friend (close colleagues)",
		"← Carol: rival",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("persona prompt missing %q", want)
		}
	}
}

func TestPersonaOmitsEmptySections(t *testing.T) {
	kb := knowledge.NewKnowledgeBase()
	bob := &knowledge.Character{Name: "Bob"}
	kb.Characters["Bob"] = bob

	p := prompt.Persona(bob, kb)
	if strings.Contains(p, "## Your Relationships") {
		t.Error("relationship section rendered with no edges")
	}
	if strings.Contains(p, "## What Is Known About You") {
		t.Error("facts section rendered with no facts")
	}
}
