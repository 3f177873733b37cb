// Package extract derives structured knowledge candidates from free-text
// conversation.
//
// Two extractors exist: a zero-latency regex heuristic that only surfaces
// entity names, and an LLM-backed extractor that returns names with attached
// fact strings via a schema-constrained tool call. Both implement Extractor
// and can be enabled independently; their outputs are merged downstream.
package extract

import "context"

// CharacterCandidate is an extracted character name with zero or more facts.
type CharacterCandidate struct {
	Name  string   `json:"name"`
	Facts []string `json:"facts"`
}

// EventCandidate is an extracted event name with zero or more details.
type EventCandidate struct {
	Name    string   `json:"name"`
	Details []string `json:"details"`
}

// TopicCandidate is an extracted topic name with zero or more info strings.
type TopicCandidate struct {
	Name string   `json:"name"`
	Info []string `json:"info"`
}

// Extraction is the combined output of one extraction pass over a text.
type Extraction struct {
	Characters []CharacterCandidate `json:"characters"`
	Events     []EventCandidate     `json:"events"`
	Topics     []TopicCandidate     `json:"topics"`
}

// Empty reports whether the extraction produced no candidates at all.
func (e *Extraction) Empty() bool {
	return e == nil || len(e.Characters) == 0 && len(e.Events) == 0 && len(e.Topics) == 0
}

// Extractor produces knowledge candidates from conversation text.
//
// Extraction is best-effort: callers log and discard errors rather than
// failing the request that triggered the pass.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}
