package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ebelyakova/zapomni/internal/chat"
	"github.com/ebelyakova/zapomni/internal/extract"
	"github.com/ebelyakova/zapomni/internal/knowledge"
	"github.com/ebelyakova/zapomni/internal/knowledge/memstore"
	"github.com/ebelyakova/zapomni/pkg/provider/llm"
	"github.com/ebelyakova/zapomni/pkg/provider/llm/mock"
	"github.com/ebelyakova/zapomni/pkg/types"
)

func userMessage(content string) []types.Message {
	return []types.Message{{Role: types.RoleUser, Content: content}}
}

func TestHandleRejectsInvalidRequests(t *testing.T) {
	svc := chat.NewService(memstore.New(), &mock.Provider{}, nil)

	if _, err := svc.Handle(context.Background(), chat.Request{Messages: userMessage("hi")}); err == nil {
		t.Error("expected error for missing userId")
	}
	if _, err := svc.Handle(context.Background(), chat.Request{UserID: "u1"}); err == nil {
		t.Error("expected error for empty messages")
	}
}

func TestCommandBypassesLLM(t *testing.T) {
	p := &mock.Provider{}
	svc := chat.NewService(memstore.New(), p, nil)

	resp, err := svc.Handle(context.Background(), chat.Request{
		UserID:   "u1",
		Messages: userMessage("/summary all"),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(p.CompleteCalls) != 0 {
		t.Errorf("LLM called %d times for a command", len(p.CompleteCalls))
	}
	if !strings.Contains(resp.Response, "Characters: 0") {
		t.Errorf("unexpected command output: %q", resp.Response)
	}
	if resp.ShouldShowKeyboard {
		t.Error("commands never show the keyboard")
	}
}

func TestCommandWithBoundarySuffixFallsThroughToLLM(t *testing.T) {
	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "ok"}}
	svc := chat.NewService(memstore.New(), p, nil)

	if _, err := svc.Handle(context.Background(), chat.Request{
		UserID:   "u1",
		Messages: userMessage("/summaryx"),
	}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(p.CompleteCalls) != 1 {
		t.Errorf("LLM calls = %d, want 1", len(p.CompleteCalls))
	}
}

func TestReplyStripsKeyboardMarker(t *testing.T) {
	p := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Want to hear more? [SHOW_KEYBOARD]"},
	}
	svc := chat.NewService(memstore.New(), p, nil)

	resp, err := svc.Handle(context.Background(), chat.Request{
		UserID:   "u1",
		Messages: userMessage("tell me a story"),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Response != "Want to hear more?" {
		t.Errorf("Response = %q", resp.Response)
	}
	if !resp.ShouldShowKeyboard {
		t.Error("ShouldShowKeyboard = false, want true")
	}
}

func TestReplyWithoutMarker(t *testing.T) {
	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "Just a reply."}}
	svc := chat.NewService(memstore.New(), p, nil)

	resp, _ := svc.Handle(context.Background(), chat.Request{
		UserID:   "u1",
		Messages: userMessage("hi"),
	})
	if resp.ShouldShowKeyboard {
		t.Error("ShouldShowKeyboard = true, want false")
	}
}

func TestReplyFailureIsFatal(t *testing.T) {
	p := &mock.Provider{CompleteErr: errors.New("upstream down")}
	svc := chat.NewService(memstore.New(), p, nil)

	if _, err := svc.Handle(context.Background(), chat.Request{
		UserID:   "u1",
		Messages: userMessage("hi"),
	}); err == nil {
		t.Error("expected reply failure to propagate")
	}
}

func TestExtractionPersistsEntities(t *testing.T) {
	store := memstore.New()
	p := &mock.Provider{
		Responses: []*llm.CompletionResponse{
			{Content: "Nice, Alice sounds great!"},
			{ToolCalls: []types.ToolCall{{
				Name:      "save_knowledge",
				Arguments: `{"characters":[{"name":"Alice","facts":["works at the bank"]}],"topics":[{"name":"Jazz","info":["her hobby"]}]}`,
			}}},
		},
	}
	svc := chat.NewService(store, p, nil, chat.WithLLMExtractor(extract.NewLLM(p)))

	resp, err := svc.Handle(context.Background(), chat.Request{
		UserID:   "u1",
		Messages: userMessage("Alice from the bank loves jazz"),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Response != "Nice, Alice sounds great!" {
		t.Errorf("Response = %q", resp.Response)
	}

	kb, _ := store.Load(context.Background(), "u1")
	alice := kb.Characters["Alice"]
	if alice == nil {
		t.Fatal("Alice not persisted")
	}
	if alice.Mentions != 1 || len(alice.Facts) != 1 || alice.Facts[0] != "works at the bank" {
		t.Errorf("Alice = %+v", alice)
	}
	if kb.Topics["jazz"] == nil {
		t.Errorf("topic not persisted under lower-cased key: %+v", kb.Topics)
	}
}

func TestExtractionFailureDoesNotBlockReply(t *testing.T) {
	calls := 0
	p := &mock.Provider{}
	p.CompleteFunc = func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		calls++
		if calls == 1 {
			return &llm.CompletionResponse{Content: "The reply."}, nil
		}
		return nil, errors.New("extraction backend down")
	}
	svc := chat.NewService(memstore.New(), p, nil, chat.WithLLMExtractor(extract.NewLLM(p)))

	resp, err := svc.Handle(context.Background(), chat.Request{
		UserID:   "u1",
		Messages: userMessage("hi"),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Response != "The reply." {
		t.Errorf("Response = %q", resp.Response)
	}
	if calls != 2 {
		t.Errorf("LLM calls = %d, want 2", calls)
	}
}

func TestHeuristicExtractionIncrementsMentions(t *testing.T) {
	store := memstore.New()
	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "ok"}}
	svc := chat.NewService(store, p, nil, chat.WithHeuristicExtractor(extract.NewHeuristic(nil, nil)))

	if _, err := svc.Handle(context.Background(), chat.Request{
		UserID:   "u1",
		Messages: userMessage("I met Alice near the office"),
	}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	kb, _ := store.Load(context.Background(), "u1")
	alice := kb.Characters["Alice"]
	if alice == nil {
		t.Fatal("heuristic candidate not persisted")
	}
	if alice.Mentions != 1 || len(alice.Facts) != 0 {
		t.Errorf("Alice = %+v, want 1 mention and no facts", alice)
	}
}

func TestPersonaModeUsesCharacterPrompt(t *testing.T) {
	store := memstore.New()
	if err := store.UpsertCharacter(context.Background(), "u1", &knowledge.Character{
		Name: "Alice", Personality: "Kind banker", SpeakingStyle: "dry humor",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "ok"}}
	svc := chat.NewService(store, p, nil)

	if _, err := svc.Handle(context.Background(), chat.Request{
		UserID:          "u1",
		Messages:        userMessage("how was your day?"),
		ActiveCharacter: "alice",
	}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	sys := p.CompleteCalls[0].Req.SystemPrompt
	if !strings.Contains(sys, "You are Alice") || !strings.Contains(sys, "dry humor") {
		t.Errorf("persona prompt not used:\n%s", sys)
	}
}

func TestUnknownActiveCharacterFallsBackToGeneral(t *testing.T) {
	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "ok"}}
	svc := chat.NewService(memstore.New(), p, nil)

	if _, err := svc.Handle(context.Background(), chat.Request{
		UserID:          "u1",
		Messages:        userMessage("hello"),
		ActiveCharacter: "Ghost",
	}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	sys := p.CompleteCalls[0].Req.SystemPrompt
	if strings.Contains(sys, "You are Ghost") {
		t.Error("persona prompt used for unknown character")
	}
	if !strings.Contains(sys, "personal assistant") {
		t.Errorf("general prompt not used:\n%s", sys)
	}
}
