package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ebelyakova/zapomni/pkg/provider/llm"
	"github.com/ebelyakova/zapomni/pkg/types"
)

// saveKnowledgeTool is the tool name the model is forced to call.
const saveKnowledgeTool = "save_knowledge"

// extractionSystemPrompt instructs the model to mine the conversation for
// entities and report them through the tool call only.
const extractionSystemPrompt = `You are a knowledge extraction engine. ` +
	`Analyze the conversation and extract every person, event, and topic mentioned, ` +
	`along with concrete facts about each. Report results exclusively through the ` +
	saveKnowledgeTool + ` tool. Do not invent entities that are not in the text. ` +
	`Use the exact names as written in the conversation.`

// extractionSchema is the JSON Schema for the save_knowledge tool parameters.
var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"characters": map[string]any{
			"type":        "array",
			"description": "People mentioned in the conversation",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":  map[string]any{"type": "string"},
					"facts": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"name"},
			},
		},
		"events": map[string]any{
			"type":        "array",
			"description": "Events, meetings, or happenings mentioned",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    map[string]any{"type": "string"},
					"details": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"name"},
			},
		},
		"topics": map[string]any{
			"type":        "array",
			"description": "Recurring subjects of conversation",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
					"info": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"name"},
			},
		},
	},
}

// Compile-time interface check.
var _ Extractor = (*LLM)(nil)

// LLM is the schema-constrained extraction pass. It forces the model to call
// the save_knowledge tool and deserializes the arguments strictly, skipping
// malformed entries rather than trusting the payload shape.
type LLM struct {
	provider    llm.Provider
	temperature float64
	maxTokens   int
}

// NewLLM creates an LLM-backed extractor on top of the given provider.
func NewLLM(provider llm.Provider) *LLM {
	return &LLM{
		provider:    provider,
		temperature: 0.1,
		maxTokens:   1024,
	}
}

// Extract implements Extractor.
func (l *LLM) Extract(ctx context.Context, text string) (*Extraction, error) {
	resp, err := l.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: extractionSystemPrompt,
		Messages: []types.Message{
			{Role: types.RoleUser, Content: text},
		},
		Tools: []types.ToolDefinition{
			{
				Name:        saveKnowledgeTool,
				Description: "Save extracted knowledge about people, events, and topics",
				Parameters:  extractionSchema,
			},
		},
		ToolChoice:  saveKnowledgeTool,
		Temperature: l.temperature,
		MaxTokens:   l.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: completion: %w", err)
	}

	for _, tc := range resp.ToolCalls {
		if tc.Name != saveKnowledgeTool {
			continue
		}
		return parseArguments(tc.Arguments)
	}
	return nil, fmt.Errorf("extract: model returned no %s tool call", saveKnowledgeTool)
}

// parseArguments deserializes tool-call arguments into an Extraction,
// dropping entries with blank names.
func parseArguments(raw string) (*Extraction, error) {
	var payload Extraction
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("extract: parse tool arguments: %w", err)
	}

	out := &Extraction{}
	for _, c := range payload.Characters {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		out.Characters = append(out.Characters, c)
	}
	for _, e := range payload.Events {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		out.Events = append(out.Events, e)
	}
	for _, t := range payload.Topics {
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		out.Topics = append(out.Topics, t)
	}
	return out, nil
}
