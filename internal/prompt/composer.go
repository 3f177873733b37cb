// Package prompt builds the system prompt for reply generation.
//
// Two mutually exclusive modes exist: a general assistant prompt embedding a
// rendering of the user's full knowledge base, and a persona prompt that
// makes the model impersonate one stored character.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ebelyakova/zapomni/internal/knowledge"
)

// ShowKeyboardMarker is the control substring the model emits when a short
// yes/no/maybe answer is anticipated. The chat service strips it from the
// reply and surfaces it as a boolean so the client can render quick-reply
// buttons.
const ShowKeyboardMarker = "[SHOW_KEYBOARD]"

const generalInstructions = `You are a personal assistant with long-term memory inside a Telegram Mini App.

Rules:
- Remember people, events, and topics the user mentions and recall stored facts naturally in conversation.
- Keep replies short and conversational; this is a chat, not an essay.
- When your reply invites a short yes/no/maybe answer, append the literal marker ` + ShowKeyboardMarker + ` at the end.
- Answer in the language the user writes in.`

const commandHelp = `Available commands the user may ask about:
/summary [name|all] - knowledge base overview or one character
/facts [name|all] - stored facts
/create Name | Description | Category | Speaking style - add a character
/link From > To type [description] - connect two characters
/analyze - relationship graph statistics
/export - full knowledge base as JSON`

// General composes the general-mode system prompt around a knowledge base
// snapshot.
func General(kb *knowledge.KnowledgeBase) string {
	var b strings.Builder
	b.WriteString(generalInstructions)
	b.WriteString("\n\n")

	if snapshot := renderKnowledgeBase(kb); snapshot != "" {
		b.WriteString("## What you remember\n")
		b.WriteString(snapshot)
		b.WriteString("\n")
	} else {
		b.WriteString("## What you remember\nNothing yet. Learn as the user talks.\n\n")
	}

	b.WriteString(commandHelp)
	return b.String()
}

// Persona composes the role-play prompt for an active character. The model
// answers in first person as the character, using its stored facts, speaking
// style, and relationship edges.
func Persona(c *knowledge.Character, kb *knowledge.KnowledgeBase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Respond in first person and stay in character at all times.\n", c.Name)

	if c.Personality != "" {
		fmt.Fprintf(&b, "\n## Your Identity\n%s\n", c.Personality)
	}
	if c.SpeakingStyle != "" {
		fmt.Fprintf(&b, "\n## How You Speak\n%s\nUse this speaking style in every reply.\n", c.SpeakingStyle)
	}

	if len(c.Facts) > 0 {
		b.WriteString("\n## What Is Known About You\n")
		for _, f := range c.Facts {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if edges := kb.RelationshipsOf(c.Name); len(edges) > 0 {
		b.WriteString("\n## Your Relationships\n")
		for _, e := range edges {
			if strings.EqualFold(e.From, c.Name) {
				fmt.Fprintf(&b, "- → %s: %s", e.To, e.Type)
			} else {
				fmt.Fprintf(&b, "- ← %s: %s", e.From, e.Type)
			}
			if e.Description != "" {
				fmt.Fprintf(&b, " (%s)", e.Description)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nNever reveal that you are an assistant or break character. Keep replies short and conversational.")
	return b.String()
}

// renderKnowledgeBase produces the human-readable snapshot embedded in the
// general prompt. Empty sections are omitted; an entirely empty base yields
// the empty string.
func renderKnowledgeBase(kb *knowledge.KnowledgeBase) string {
	var b strings.Builder

	if len(kb.Characters) > 0 {
		b.WriteString("People:\n")
		for _, name := range sortedKeys(kb.Characters) {
			c := kb.Characters[name]
			fmt.Fprintf(&b, "- %s (%d mentions)", c.Name, c.Mentions)
			if len(c.Facts) > 0 {
				fmt.Fprintf(&b, ": %s", strings.Join(c.Facts, "; "))
			}
			b.WriteString("\n")
		}
	}
	if len(kb.Events) > 0 {
		b.WriteString("Events:\n")
		for _, name := range sortedKeys(kb.Events) {
			e := kb.Events[name]
			fmt.Fprintf(&b, "- %s (%d mentions)", e.Name, e.Mentions)
			if len(e.Details) > 0 {
				fmt.Fprintf(&b, ": %s", strings.Join(e.Details, "; "))
			}
			b.WriteString("\n")
		}
	}
	if len(kb.Topics) > 0 {
		b.WriteString("Topics:\n")
		for _, name := range sortedKeys(kb.Topics) {
			t := kb.Topics[name]
			fmt.Fprintf(&b, "- %s (%d mentions)", t.Name, t.Mentions)
			if len(t.Info) > 0 {
				fmt.Fprintf(&b, ": %s", strings.Join(t.Info, "; "))
			}
			b.WriteString("\n")
		}
	}
	if len(kb.Relationships) > 0 {
		b.WriteString("Relationships:\n")
		for _, r := range kb.Relationships {
			fmt.Fprintf(&b, "- %s → %s: %s", r.From, r.To, r.Type)
			if r.Description != "" {
				fmt.Fprintf(&b, " (%s)", r.Description)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
