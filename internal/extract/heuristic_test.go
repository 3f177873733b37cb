package extract_test

import (
	"context"
	"testing"

	"github.com/ebelyakova/zapomni/internal/extract"
)

func names(e *extract.Extraction) []string {
	var out []string
	for _, c := range e.Characters {
		out = append(out, c.Name)
	}
	return out
}

func TestHeuristicFindsCapitalizedNames(t *testing.T) {
	h := extract.NewHeuristic(nil, nil)

	e, err := h.Extract(context.Background(), "I met Alice and John Smith yesterday.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got := names(e)
	want := map[string]bool{"Alice": true, "John Smith": true}
	for _, n := range got {
		if !want[n] {
			t.Errorf("unexpected candidate %q", n)
		}
		delete(want, n)
	}
	for n := range want {
		t.Errorf("missing candidate %q", n)
	}
}

func TestHeuristicFiltersStopwordsAndShortMatches(t *testing.T) {
	h := extract.NewHeuristic(nil, nil)

	e, err := h.Extract(context.Background(), "Yes! Hello there. Ян said hi.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, n := range names(e) {
		if n == "Yes" || n == "Hello" {
			t.Errorf("stopword %q not filtered", n)
		}
		if len([]rune(n)) <= 2 {
			t.Errorf("short match %q not filtered", n)
		}
	}
}

func TestHeuristicCyrillicNames(t *testing.T) {
	h := extract.NewHeuristic(nil, nil)

	e, err := h.Extract(context.Background(), "Привет! Вчера видел Марину Иванову.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got := names(e)
	found := false
	for _, n := range got {
		if n == "Привет" {
			t.Error("greeting not filtered")
		}
		if n == "Марину Иванову" {
			found = true
		}
	}
	if !found {
		t.Errorf("two-word Cyrillic name not extracted, got %v", got)
	}
}

func TestHeuristicDeduplicatesNames(t *testing.T) {
	h := extract.NewHeuristic(nil, nil)

	e, _ := h.Extract(context.Background(), "Alice called. Later Alice called again.")
	count := 0
	for _, n := range names(e) {
		if n == "Alice" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Alice extracted %d times, want 1", count)
	}
}

func TestHeuristicEventKeywordsCaseInsensitive(t *testing.T) {
	h := extract.NewHeuristic(nil, nil)

	e, _ := h.Extract(context.Background(), "The PROJECT has a Meeting on Friday.")
	got := map[string]bool{}
	for _, ev := range e.Events {
		got[ev.Name] = true
	}
	if !got["project"] || !got["meeting"] {
		t.Errorf("event keywords not detected: %v", e.Events)
	}
}

func TestHeuristicNamesCarryNoFacts(t *testing.T) {
	h := extract.NewHeuristic(nil, nil)

	e, _ := h.Extract(context.Background(), "Alice works at the bank.")
	for _, c := range e.Characters {
		if len(c.Facts) != 0 {
			t.Errorf("heuristic attached facts to %q: %v", c.Name, c.Facts)
		}
	}
}

func TestHeuristicCustomConfig(t *testing.T) {
	h := extract.NewHeuristic([]string{"Alice"}, []string{"sprint"})

	e, _ := h.Extract(context.Background(), "Alice planned the sprint with Bob.")
	for _, n := range names(e) {
		if n == "Alice" {
			t.Error("custom stopword not applied")
		}
	}
	if len(e.Events) != 1 || e.Events[0].Name != "sprint" {
		t.Errorf("custom event keyword not applied: %v", e.Events)
	}
}
