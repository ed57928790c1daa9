package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the application tracer.
const TracerName = "entregaveis"

// Span attribute keys
const (
	AttrOperation     = "operation"
	AttrModel         = "model"
	AttrMeeting       = "meeting"
	AttrReportType    = "report_type"
	AttrReportMode    = "report_mode"
	AttrSessionID     = "session_id"
	AttrPromptChars   = "prompt_chars"
	AttrResponseChars = "response_chars"
	AttrDurationMs    = "duration_ms"
	AttrErrorCode     = "error_code"
)

// Span names
const (
	SpanModelCall = "entregaveis.model_call"
	SpanReport    = "entregaveis.report"
	SpanChat      = "entregaveis.chat"
)

// Tracer wraps the OpenTelemetry tracer. With no SDK installed the global
// provider is a no-op and spans cost nothing.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// NewTracerWithProvider creates a tracer from an explicit provider.
func NewTracerWithProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// StartModelSpan starts a span for one model call.
func (t *Tracer) StartModelSpan(ctx context.Context, model, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanModelCall,
		trace.WithAttributes(
			attribute.String(AttrModel, model),
			attribute.String(AttrOperation, operation),
		),
	)
}

// StartReportSpan starts the span of a report action.
func (t *Tracer) StartReportSpan(ctx context.Context, meeting, reportType, mode string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanReport,
		trace.WithAttributes(
			attribute.String(AttrMeeting, meeting),
			attribute.String(AttrReportType, reportType),
			attribute.String(AttrReportMode, mode),
		),
	)
}

// StartChatSpan starts the span of a chat question.
func (t *Tracer) StartChatSpan(ctx context.Context, documents int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanChat,
		trace.WithAttributes(attribute.Int("documents", documents)),
	)
}

// SpanHelper provides convenient methods for working with a span.
type SpanHelper struct {
	span trace.Span
}

// NewSpanHelper creates a new span helper for the given span.
func NewSpanHelper(span trace.Span) *SpanHelper {
	return &SpanHelper{span: span}
}

// SetModelResult records prompt/response sizes and latency.
func (h *SpanHelper) SetModelResult(promptChars, responseChars int, latencyMs int64) {
	h.span.SetAttributes(
		attribute.Int(AttrPromptChars, promptChars),
		attribute.Int(AttrResponseChars, responseChars),
		attribute.Int64(AttrDurationMs, latencyMs),
	)
}

// SetError records an error and its classification on the span.
func (h *SpanHelper) SetError(err error, code string) {
	h.span.SetStatus(codes.Error, err.Error())
	h.span.SetAttributes(attribute.String(AttrErrorCode, code))
	h.span.RecordError(err)
}

// SetSuccess marks the span as successful.
func (h *SpanHelper) SetSuccess() {
	h.span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
