// Package graph computes connectivity statistics over a knowledge base's
// relationship edges. All analysis is in-memory over the loaded edge list;
// nothing here touches the store or the LLM.
package graph

import (
	"sort"

	"github.com/ebelyakova/zapomni/internal/knowledge"
)

// Degree is a character's undirected connection count.
type Degree struct {
	Name  string
	Count int
}

// TypeCount is the frequency of one relationship type.
type TypeCount struct {
	Type  string
	Count int
}

// Report is the output of Analyze.
type Report struct {
	// CharacterCount is the number of characters in the knowledge base,
	// connected or not.
	CharacterCount int

	// RelationshipCount is the number of edges.
	RelationshipCount int

	// AvgConnections is the mean undirected degree over all characters:
	// edges*2 / characters. Zero when there are no characters.
	AvgConnections float64

	// TopConnected lists up to three characters by descending degree. Ties
	// are broken by encounter order in the edge list.
	TopConnected []Degree

	// TypeCounts is the relationship-type frequency table, sorted by
	// descending count, ties broken by encounter order.
	TypeCounts []TypeCount
}

// Analyze computes the connectivity report for a knowledge base. Both
// endpoints of every edge count toward degree, regardless of direction.
func Analyze(kb *knowledge.KnowledgeBase) Report {
	r := Report{
		CharacterCount:    len(kb.Characters),
		RelationshipCount: len(kb.Relationships),
	}
	if r.CharacterCount > 0 {
		r.AvgConnections = float64(r.RelationshipCount*2) / float64(r.CharacterCount)
	}

	degrees := make(map[string]int)
	var degreeOrder []string
	types := make(map[string]int)
	var typeOrder []string

	touch := func(name string) {
		if _, seen := degrees[name]; !seen {
			degreeOrder = append(degreeOrder, name)
		}
		degrees[name]++
	}
	for _, edge := range kb.Relationships {
		touch(edge.From)
		touch(edge.To)
		if _, seen := types[edge.Type]; !seen {
			typeOrder = append(typeOrder, edge.Type)
		}
		types[edge.Type]++
	}

	top := make([]Degree, 0, len(degreeOrder))
	for _, name := range degreeOrder {
		top = append(top, Degree{Name: name, Count: degrees[name]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > 3 {
		top = top[:3]
	}
	r.TopConnected = top

	counts := make([]TypeCount, 0, len(typeOrder))
	for _, typ := range typeOrder {
		counts = append(counts, TypeCount{Type: typ, Count: types[typ]})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	r.TypeCounts = counts

	return r
}
