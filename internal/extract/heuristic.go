package extract

import (
	"context"
	"regexp"
	"strings"
)

// nameRe matches one or two capitalized words, Latin or Cyrillic, as a
// character-name candidate.
var nameRe = regexp.MustCompile(`\p{Lu}\p{Ll}+(?:\s\p{Lu}\p{Ll}+)?`)

// DefaultStopwords are capitalized words that are common sentence openers or
// greetings rather than names. Matching is case-sensitive on the match as
// found in the text.
var DefaultStopwords = []string{
	"Да", "Нет", "Возможно", "Привет",
	"Yes", "No", "Maybe", "Hello", "Hi",
	"The", "This", "That", "What", "When", "Where", "Why", "How",
	"Today", "Tomorrow", "Yesterday",
}

// DefaultEventKeywords are matched case-insensitively as whole substrings of
// the text; each hit becomes an event candidate named by the keyword.
var DefaultEventKeywords = []string{
	"встреча", "событие", "проект", "работа", "задача",
	"meeting", "event", "project", "work", "task", "deadline",
}

// Compile-time interface check.
var _ Extractor = (*Heuristic)(nil)

// Heuristic is the regex-based extraction pass. It is cheap and intentionally
// low-precision: it surfaces entity names only, never facts, so downstream
// merging increments mention counts without polluting fact lists.
type Heuristic struct {
	stopwords map[string]struct{}
	keywords  []string
}

// NewHeuristic creates a heuristic extractor. Nil slices select the defaults.
func NewHeuristic(stopwords, eventKeywords []string) *Heuristic {
	if stopwords == nil {
		stopwords = DefaultStopwords
	}
	if eventKeywords == nil {
		eventKeywords = DefaultEventKeywords
	}
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stop[w] = struct{}{}
	}
	return &Heuristic{stopwords: stop, keywords: eventKeywords}
}

// Extract implements Extractor. It never returns an error.
func (h *Heuristic) Extract(ctx context.Context, text string) (*Extraction, error) {
	out := &Extraction{}

	seen := make(map[string]struct{})
	for _, match := range nameRe.FindAllString(text, -1) {
		if len([]rune(match)) <= 2 {
			continue
		}
		if _, stopped := h.stopwords[match]; stopped {
			continue
		}
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		out.Characters = append(out.Characters, CharacterCandidate{Name: match})
	}

	lower := strings.ToLower(text)
	for _, kw := range h.keywords {
		if strings.Contains(lower, kw) {
			out.Events = append(out.Events, EventCandidate{Name: kw})
		}
	}

	return out, nil
}
