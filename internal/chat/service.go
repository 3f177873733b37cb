// Package chat orchestrates a single inbound chat request: command dispatch,
// knowledge-base loading, prompt composition, reply generation, and the
// best-effort extraction pass that updates the user's memory.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ebelyakova/zapomni/internal/command"
	"github.com/ebelyakova/zapomni/internal/extract"
	"github.com/ebelyakova/zapomni/internal/knowledge"
	"github.com/ebelyakova/zapomni/internal/observe"
	"github.com/ebelyakova/zapomni/internal/prompt"
	"github.com/ebelyakova/zapomni/pkg/provider/llm"
	"github.com/ebelyakova/zapomni/pkg/types"
)

// ErrInvalidRequest marks client-side payload errors. The HTTP layer maps it
// to a 400 instead of a 500.
var ErrInvalidRequest = errors.New("invalid request")

// Request is the inbound chat payload.
type Request struct {
	// Messages is the conversation history; the last entry drives the reply.
	Messages []types.Message `json:"messages"`

	// UserID scopes the knowledge base.
	UserID string `json:"userId"`

	// ActiveCharacter optionally names a stored character to impersonate.
	ActiveCharacter string `json:"activeCharacter,omitempty"`
}

// Response is the outbound chat payload.
type Response struct {
	Response           string `json:"response"`
	ShouldShowKeyboard bool   `json:"shouldShowKeyboard"`
}

// Option configures a Service.
type Option func(*Service)

// WithHeuristicExtractor sets the regex extraction pass. Nil disables it.
func WithHeuristicExtractor(e extract.Extractor) Option {
	return func(s *Service) { s.heuristic = e }
}

// WithLLMExtractor sets the schema-constrained extraction pass. Nil disables it.
func WithLLMExtractor(e extract.Extractor) Option {
	return func(s *Service) { s.llmExtract = e }
}

// WithMetrics attaches service metrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTemperature sets the reply-generation sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithMaxTokens caps reply length in completion tokens.
func WithMaxTokens(n int) Option {
	return func(s *Service) { s.maxTokens = n }
}

// Service handles chat requests. Stateless across requests: the knowledge
// base is reloaded from the store every time.
type Service struct {
	store    knowledge.Store
	provider llm.Provider
	router   *command.Router
	log      *slog.Logger

	heuristic  extract.Extractor
	llmExtract extract.Extractor
	metrics    *observe.Metrics

	temperature float64
	maxTokens   int
}

// NewService creates the chat service.
func NewService(store knowledge.Store, provider llm.Provider, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		store:       store,
		provider:    provider,
		router:      command.New(store, log),
		log:         log,
		temperature: 0.7,
		maxTokens:   600,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handle processes one chat request.
//
// Slash commands are handled locally and never touch the LLM. Otherwise the
// knowledge base is loaded once, the reply is generated from that snapshot,
// and the extraction pass runs afterwards; facts extracted this turn become
// visible to the model on the next one.
func (s *Service) Handle(ctx context.Context, req Request) (*Response, error) {
	ctx, span := observe.StartSpan(ctx, "chat.handle")
	defer span.End()

	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("chat: userId must not be empty: %w", ErrInvalidRequest)
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("chat: messages must not be empty: %w", ErrInvalidRequest)
	}
	latest := req.Messages[len(req.Messages)-1].Content

	if token, _, ok := command.Match(latest); ok {
		text, _ := s.router.Handle(ctx, req.UserID, latest)
		s.metrics.RecordChatRequest(ctx, "command")
		s.metrics.RecordCommand(ctx, token)
		return &Response{Response: text}, nil
	}

	kb, err := s.store.Load(ctx, req.UserID)
	if err != nil {
		s.metrics.RecordChatRequest(ctx, "error")
		return nil, fmt.Errorf("chat: load knowledge base: %w", err)
	}

	systemPrompt := s.composePrompt(kb, req.ActiveCharacter)

	start := time.Now()
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages:     req.Messages,
		Temperature:  s.temperature,
		MaxTokens:    s.maxTokens,
	})
	s.metrics.RecordLLMCall(ctx, "reply", start, err)
	if err != nil {
		s.metrics.RecordChatRequest(ctx, "error")
		return nil, fmt.Errorf("chat: generate reply: %w", err)
	}
	reply := resp.Content

	s.runExtraction(ctx, req.UserID, kb, conversationText(req.Messages, reply))

	shouldShow := strings.Contains(reply, prompt.ShowKeyboardMarker)
	reply = strings.TrimSpace(strings.ReplaceAll(reply, prompt.ShowKeyboardMarker, ""))

	s.metrics.RecordChatRequest(ctx, "reply")
	return &Response{Response: reply, ShouldShowKeyboard: shouldShow}, nil
}

// composePrompt picks persona mode when the active character resolves,
// general mode otherwise.
func (s *Service) composePrompt(kb *knowledge.KnowledgeBase, activeCharacter string) string {
	if activeCharacter != "" {
		if c := kb.Character(activeCharacter); c != nil {
			return prompt.Persona(c, kb)
		}
		s.log.Warn("chat: active character not found, using general prompt", "character", activeCharacter)
	}
	return prompt.General(kb)
}

// conversationText concatenates user and assistant contents plus the fresh
// reply for the extraction pass.
func conversationText(messages []types.Message, reply string) string {
	var b strings.Builder
	for _, m := range messages {
		if m.Role != types.RoleUser && m.Role != types.RoleAssistant {
			continue
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString(reply)
	return b.String()
}

// runExtraction executes the enabled extraction passes and persists merged
// entities. Everything here is best-effort: failures are logged and recorded,
// never propagated.
func (s *Service) runExtraction(ctx context.Context, userID string, kb *knowledge.KnowledgeBase, text string) {
	ctx, span := observe.StartSpan(ctx, "chat.extraction")
	defer span.End()

	passes := []struct {
		name string
		ex   extract.Extractor
	}{
		{"heuristic", s.heuristic},
		{"llm", s.llmExtract},
	}
	for _, p := range passes {
		if p.ex == nil {
			continue
		}
		start := time.Now()
		result, err := p.ex.Extract(ctx, text)
		if p.name == "llm" {
			s.metrics.RecordLLMCall(ctx, "extraction", start, err)
		}
		s.metrics.RecordExtraction(ctx, p.name, err)
		if err != nil {
			s.log.Warn("chat: extraction pass failed", "strategy", p.name, "user_id", userID, "error", err)
			continue
		}
		if result.Empty() {
			continue
		}
		s.persistExtraction(ctx, userID, kb, result)
	}
}

// persistExtraction merges candidates into the knowledge base and upserts
// each touched entity individually.
func (s *Service) persistExtraction(ctx context.Context, userID string, kb *knowledge.KnowledgeBase, ex *extract.Extraction) {
	for _, cand := range ex.Characters {
		c := kb.MergeCharacter(cand.Name, cand.Facts)
		if err := s.store.UpsertCharacter(ctx, userID, c); err != nil {
			s.log.Warn("chat: upsert character", "user_id", userID, "name", c.Name, "error", err)
		}
	}
	for _, cand := range ex.Events {
		e := kb.MergeEvent(cand.Name, cand.Details)
		if err := s.store.UpsertEvent(ctx, userID, e); err != nil {
			s.log.Warn("chat: upsert event", "user_id", userID, "name", e.Name, "error", err)
		}
	}
	for _, cand := range ex.Topics {
		t := kb.MergeTopic(cand.Name, cand.Info)
		if err := s.store.UpsertTopic(ctx, userID, t); err != nil {
			s.log.Warn("chat: upsert topic", "user_id", userID, "name", t.Name, "error", err)
		}
	}
}
