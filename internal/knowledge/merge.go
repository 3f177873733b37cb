package knowledge

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// Merge semantics
//
// A merge folds newly extracted strings into an entity's existing list as an
// order-preserving union, and bumps the mention counter by exactly one per
// merge call, no matter how many strings were added (including zero). This
// keeps mention counts a proxy for "conversations that touched the entity"
// rather than "facts known about it".
// ─────────────────────────────────────────────────────────────────────────────

// MergeStrings returns the order-preserving union of existing and incoming.
// Duplicates within incoming and against existing are dropped; blank strings
// are ignored. The existing slice is never mutated.
func MergeStrings(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, s := range existing {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range incoming {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// MergeFacts merges facts into the character and increments Mentions.
func (c *Character) MergeFacts(facts []string) {
	c.Facts = MergeStrings(c.Facts, facts)
	c.Mentions++
}

// MergeDetails merges details into the event and increments Mentions.
func (e *Event) MergeDetails(details []string) {
	e.Details = MergeStrings(e.Details, details)
	e.Mentions++
}

// MergeInfo merges info into the topic and increments Mentions.
func (t *Topic) MergeInfo(info []string) {
	t.Info = MergeStrings(t.Info, info)
	t.Mentions++
}

// MergeCharacter folds an extracted {name, facts} tuple into the knowledge
// base, creating the character on first mention. Returns the merged character.
func (kb *KnowledgeBase) MergeCharacter(name string, facts []string) *Character {
	c := kb.Character(name)
	if c == nil {
		c = &Character{Name: name}
		kb.Characters[name] = c
	}
	c.MergeFacts(facts)
	return c
}

// MergeEvent folds an extracted {name, details} tuple into the knowledge
// base, keyed by lower-cased name. Returns the merged event.
func (kb *KnowledgeBase) MergeEvent(name string, details []string) *Event {
	key := EventKey(name)
	e, ok := kb.Events[key]
	if !ok {
		e = &Event{Name: key}
		kb.Events[key] = e
	}
	e.MergeDetails(details)
	return e
}

// MergeTopic folds an extracted {name, info} tuple into the knowledge base,
// keyed by lower-cased name. Returns the merged topic.
func (kb *KnowledgeBase) MergeTopic(name string, info []string) *Topic {
	key := TopicKey(name)
	t, ok := kb.Topics[key]
	if !ok {
		t = &Topic{Name: key}
		kb.Topics[key] = t
	}
	t.MergeInfo(info)
	return t
}
