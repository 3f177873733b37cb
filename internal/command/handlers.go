package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ebelyakova/zapomni/internal/graph"
	"github.com/ebelyakova/zapomni/internal/knowledge"
)

// notFound renders the unknown-character message with an optional
// "did you mean" hint.
func notFound(name string, kb *knowledge.KnowledgeBase) string {
	msg := fmt.Sprintf("⚠️ Character %q not found.", name)
	if hint := suggest(name, kb.CharacterNames()); hint != "" {
		msg += fmt.Sprintf(" Did you mean %q?", hint)
	}
	return msg
}

// ─────────────────────────────────────────────────────────────────────────────
// /summary
// ─────────────────────────────────────────────────────────────────────────────

func (r *Router) handleSummary(kb *knowledge.KnowledgeBase, args string) string {
	if args == "" || strings.EqualFold(args, "all") {
		var b strings.Builder
		b.WriteString("📊 Knowledge base summary:\n")
		fmt.Fprintf(&b, "👥 Characters: %d\n", len(kb.Characters))
		fmt.Fprintf(&b, "📅 Events: %d\n", len(kb.Events))
		fmt.Fprintf(&b, "💬 Topics: %d\n", len(kb.Topics))
		fmt.Fprintf(&b, "🔗 Relationships: %d", len(kb.Relationships))
		return b.String()
	}

	c := kb.Character(args)
	if c == nil {
		return notFound(args, kb)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n", c.Name)
	fmt.Fprintf(&b, "Mentions: %d\n", c.Mentions)
	if c.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", c.Category)
	}
	if c.Personality != "" {
		fmt.Fprintf(&b, "Personality: %s\n", c.Personality)
	}
	if c.SpeakingStyle != "" {
		fmt.Fprintf(&b, "Speaking style: %s\n", c.SpeakingStyle)
	}
	fmt.Fprintf(&b, "Facts (%d):", len(c.Facts))
	for _, f := range c.Facts {
		fmt.Fprintf(&b, "\n• %s", f)
	}
	edges := kb.RelationshipsOf(c.Name)
	if len(edges) > 0 {
		fmt.Fprintf(&b, "\nRelationships (%d):", len(edges))
		for _, e := range edges {
			b.WriteString("\n" + renderEdge(c.Name, e))
		}
	}
	return b.String()
}

// renderEdge renders a relationship from the named character's point of view.
func renderEdge(name string, e knowledge.Relationship) string {
	line := ""
	if strings.EqualFold(e.From, name) {
		line = fmt.Sprintf("→ %s: %s", e.To, e.Type)
	} else {
		line = fmt.Sprintf("← %s: %s", e.From, e.Type)
	}
	if e.Description != "" {
		line += fmt.Sprintf(" (%s)", e.Description)
	}
	return line
}

// ─────────────────────────────────────────────────────────────────────────────
// /facts
// ─────────────────────────────────────────────────────────────────────────────

func (r *Router) handleFacts(kb *knowledge.KnowledgeBase, args string) string {
	if args != "" && !strings.EqualFold(args, "all") {
		c := kb.Character(args)
		if c == nil {
			return notFound(args, kb)
		}
		if len(c.Facts) == 0 {
			return fmt.Sprintf("👤 %s: no facts yet.", c.Name)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "👤 %s (%d mentions):", c.Name, c.Mentions)
		for _, f := range c.Facts {
			fmt.Fprintf(&b, "\n• %s", f)
		}
		return b.String()
	}

	var b strings.Builder
	wrote := false
	for _, name := range sortedCharacterNames(kb) {
		c := kb.Characters[name]
		if len(c.Facts) == 0 {
			continue
		}
		if !wrote {
			b.WriteString("📝 Known facts:")
			wrote = true
		}
		fmt.Fprintf(&b, "\n\n👤 %s (%d mentions):", c.Name, c.Mentions)
		for _, f := range c.Facts {
			fmt.Fprintf(&b, "\n• %s", f)
		}
	}
	if !wrote {
		return "📝 No facts yet. Chat with me and I will remember what you share."
	}
	return b.String()
}

// sortedCharacterNames gives stable display order for map iteration.
func sortedCharacterNames(kb *knowledge.KnowledgeBase) []string {
	names := kb.CharacterNames()
	sort.Strings(names)
	return names
}

// ─────────────────────────────────────────────────────────────────────────────
// /create
// ─────────────────────────────────────────────────────────────────────────────

const createUsage = "⚠️ Usage: /create Name | Description | Category | Speaking style"

func (r *Router) handleCreate(ctx context.Context, userID, args string) string {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return createUsage
	}

	c := &knowledge.Character{
		Name:        parts[0],
		Personality: parts[1],
		Facts:       []string{},
	}
	if len(parts) > 2 {
		c.Category = parts[2]
	}
	if len(parts) > 3 {
		c.SpeakingStyle = parts[3]
	}

	if err := r.store.UpsertCharacter(ctx, userID, c); err != nil {
		r.log.Error("command: create character", "user_id", userID, "name", c.Name, "error", err)
		return fmt.Sprintf("⚠️ Could not save character %q. Please try again.", c.Name)
	}
	return fmt.Sprintf("✅ Character %q created.", c.Name)
}

// ─────────────────────────────────────────────────────────────────────────────
// /link
// ─────────────────────────────────────────────────────────────────────────────

const linkUsage = "⚠️ Usage: /link From > To type [description]"

func (r *Router) handleLink(ctx context.Context, userID string, kb *knowledge.KnowledgeBase, args string) string {
	fromPart, rest, found := strings.Cut(args, ">")
	if !found {
		return linkUsage
	}
	from := strings.TrimSpace(fromPart)
	fields := strings.Fields(rest)
	if from == "" || len(fields) < 2 {
		return linkUsage
	}
	to := fields[0]
	typ := fields[1]
	desc := strings.Join(fields[2:], " ")

	fromChar := kb.Character(from)
	if fromChar == nil {
		return notFound(from, kb)
	}
	toChar := kb.Character(to)
	if toChar == nil {
		return notFound(to, kb)
	}

	rel := &knowledge.Relationship{
		From:        fromChar.Name,
		To:          toChar.Name,
		Type:        typ,
		Description: desc,
		Strength:    knowledge.DefaultStrength,
	}
	if err := r.store.InsertRelationship(ctx, userID, rel); err != nil {
		r.log.Error("command: insert relationship", "user_id", userID, "from", rel.From, "to", rel.To, "error", err)
		return "⚠️ Could not save the relationship. Please try again."
	}

	out := fmt.Sprintf("🔗 %s → %s: %s", rel.From, rel.To, rel.Type)
	if desc != "" {
		out += fmt.Sprintf(" (%s)", desc)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// /analyze
// ─────────────────────────────────────────────────────────────────────────────

func (r *Router) handleAnalyze(kb *knowledge.KnowledgeBase) string {
	report := graph.Analyze(kb)

	var b strings.Builder
	b.WriteString("📊 Relationship graph analysis:\n")
	fmt.Fprintf(&b, "👥 Characters: %d\n", report.CharacterCount)
	fmt.Fprintf(&b, "🔗 Relationships: %d\n", report.RelationshipCount)
	fmt.Fprintf(&b, "📈 Average connections: %s", strconv.FormatFloat(report.AvgConnections, 'f', 1, 64))

	if len(report.TopConnected) > 0 {
		b.WriteString("\n\n🏆 Most connected:")
		for i, d := range report.TopConnected {
			fmt.Fprintf(&b, "\n%d. %s (%d)", i+1, d.Name, d.Count)
		}
	}
	if len(report.TypeCounts) > 0 {
		b.WriteString("\n\n🔖 Relationship types:")
		for _, tc := range report.TypeCounts {
			fmt.Fprintf(&b, "\n• %s: %d", tc.Type, tc.Count)
		}
	}
	return b.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// /export
// ─────────────────────────────────────────────────────────────────────────────

// handleExport serializes the knowledge base as indented JSON. The output
// parses back into the same structure with no loss of field values.
func (r *Router) handleExport(kb *knowledge.KnowledgeBase) string {
	data, err := json.MarshalIndent(kb, "", "  ")
	if err != nil {
		r.log.Error("command: export knowledge base", "error", err)
		return "⚠️ Could not export your knowledge base."
	}
	return string(data)
}
