package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the package-wide tracer. Without an installed TracerProvider the
// spans are no-ops, so instrumentation stays in place at zero cost.
var tracer = otel.Tracer(meterName)

// StartSpan opens a span for a logical operation. The caller must End it.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, opts...)
}
