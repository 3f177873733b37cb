package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ebelyakova/zapomni"

// Metrics bundles the named instruments the service records on.
type Metrics struct {
	// ChatRequests counts inbound chat requests by outcome.
	ChatRequests metric.Int64Counter

	// CommandExecutions counts locally handled slash commands by command token.
	CommandExecutions metric.Int64Counter

	// ExtractionPasses counts extraction passes by strategy and outcome.
	ExtractionPasses metric.Int64Counter

	// LLMDuration measures upstream completion latency in seconds by purpose.
	LLMDuration metric.Float64Histogram

	// HTTPDuration measures request handling latency in seconds by route and
	// status code.
	HTTPDuration metric.Float64Histogram
}

// NewMetrics creates all instruments on the global meter provider.
// InitProvider must have been called first for the data to be exported.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	if m.ChatRequests, err = meter.Int64Counter("zapomni.chat.requests",
		metric.WithDescription("Inbound chat requests by outcome")); err != nil {
		return nil, fmt.Errorf("observe: create chat.requests: %w", err)
	}
	if m.CommandExecutions, err = meter.Int64Counter("zapomni.commands.executed",
		metric.WithDescription("Locally handled slash commands by token")); err != nil {
		return nil, fmt.Errorf("observe: create commands.executed: %w", err)
	}
	if m.ExtractionPasses, err = meter.Int64Counter("zapomni.extraction.passes",
		metric.WithDescription("Knowledge extraction passes by strategy and outcome")); err != nil {
		return nil, fmt.Errorf("observe: create extraction.passes: %w", err)
	}
	if m.LLMDuration, err = meter.Float64Histogram("zapomni.llm.duration",
		metric.WithDescription("Upstream LLM completion latency"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("observe: create llm.duration: %w", err)
	}
	if m.HTTPDuration, err = meter.Float64Histogram("zapomni.http.duration",
		metric.WithDescription("HTTP request handling latency"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("observe: create http.duration: %w", err)
	}
	return m, nil
}

// RecordLLMCall records one upstream completion with its purpose
// ("reply" or "extraction") and outcome.
func (m *Metrics) RecordLLMCall(ctx context.Context, purpose string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.LLMDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("purpose", purpose),
			attribute.Bool("error", err != nil),
		))
}

// RecordCommand records one locally handled slash command.
func (m *Metrics) RecordCommand(ctx context.Context, token string) {
	if m == nil {
		return
	}
	m.CommandExecutions.Add(ctx, 1, metric.WithAttributes(attribute.String("command", token)))
}

// RecordExtraction records one extraction pass.
func (m *Metrics) RecordExtraction(ctx context.Context, strategy string, err error) {
	if m == nil {
		return
	}
	m.ExtractionPasses.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
			attribute.Bool("error", err != nil),
		))
}

// RecordChatRequest records one inbound chat request by outcome
// ("command", "reply", "error").
func (m *Metrics) RecordChatRequest(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.ChatRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
