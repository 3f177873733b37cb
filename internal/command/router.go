// Package command recognizes slash directives in the latest user message and
// handles them locally, bypassing the LLM entirely.
//
// Matching is word-boundary exact on the command token: "/summary Alice"
// routes to the summary handler with target "Alice", while "/summaryx" is not
// a command and falls through to normal reply generation. Validation and
// store errors are rendered as friendly inline chat messages, never as
// request failures.
package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ebelyakova/zapomni/internal/knowledge"
)

// Command tokens.
const (
	cmdSummary = "/summary"
	cmdFacts   = "/facts"
	cmdCreate  = "/create"
	cmdLink    = "/link"
	cmdAnalyze = "/analyze"
	cmdExport  = "/export"
)

// Match reports whether message begins with a known command token followed by
// end-of-string or whitespace. It returns the token and the trimmed argument
// remainder.
func Match(message string) (cmd, args string, ok bool) {
	trimmed := strings.TrimSpace(message)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}

	token := trimmed
	rest := ""
	if i := strings.IndexAny(trimmed, " \t\n"); i >= 0 {
		token = trimmed[:i]
		rest = strings.TrimSpace(trimmed[i:])
	}

	switch token {
	case cmdSummary, cmdFacts, cmdCreate, cmdLink, cmdAnalyze, cmdExport:
		return token, rest, true
	}
	return "", "", false
}

// Router dispatches matched commands against the user's knowledge base.
type Router struct {
	store knowledge.Store
	log   *slog.Logger
}

// New creates a command router backed by the given store.
func New(store knowledge.Store, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{store: store, log: log}
}

// Handle executes the command in message, if any. The second return value
// reports whether the message was a command; when false the caller should
// fall through to normal reply generation.
//
// All failure modes produce a user-facing message, not an error: command
// handling never fails the request.
func (r *Router) Handle(ctx context.Context, userID, message string) (string, bool) {
	cmd, args, ok := Match(message)
	if !ok {
		return "", false
	}

	kb, err := r.store.Load(ctx, userID)
	if err != nil {
		r.log.Error("command: load knowledge base", "user_id", userID, "cmd", cmd, "error", err)
		return "⚠️ Could not load your knowledge base. Please try again.", true
	}

	switch cmd {
	case cmdSummary:
		return r.handleSummary(kb, args), true
	case cmdFacts:
		return r.handleFacts(kb, args), true
	case cmdCreate:
		return r.handleCreate(ctx, userID, args), true
	case cmdLink:
		return r.handleLink(ctx, userID, kb, args), true
	case cmdAnalyze:
		return r.handleAnalyze(kb), true
	case cmdExport:
		return r.handleExport(kb), true
	}
	return "", false
}
