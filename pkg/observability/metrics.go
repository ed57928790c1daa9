// Package observability provides Prometheus metrics and OpenTelemetry spans
// for model calls and user actions.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the Prometheus collectors of the application.
type Metrics struct {
	// Model call metrics
	ModelCallsTotal     *prometheus.CounterVec
	ModelLatencySeconds *prometheus.HistogramVec
	ModelCharsTotal     *prometheus.CounterVec

	// Action metrics
	ActionsTotal     *prometheus.CounterVec
	ReportParseTotal *prometheus.CounterVec
	CorpusDocuments  prometheus.Gauge
	ChatTurnsTotal   *prometheus.CounterVec
}

// DefaultMetrics registers the metrics on the default registerer.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates and registers the metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ModelCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entregaveis_model_calls_total",
				Help: "Total text-generation calls",
			},
			[]string{"operation", "model", "status"},
		),
		ModelLatencySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "entregaveis_model_latency_seconds",
				Help:    "Text-generation call latency",
				Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60, 120},
			},
			[]string{"operation", "model"},
		),
		ModelCharsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entregaveis_model_chars_total",
				Help: "Characters sent to and received from the model",
			},
			[]string{"direction", "model"},
		),
		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entregaveis_actions_total",
				Help: "User actions by kind and outcome",
			},
			[]string{"action", "status"},
		),
		ReportParseTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entregaveis_report_parse_total",
				Help: "Structured report extraction outcomes",
			},
			[]string{"report_type", "status"},
		),
		CorpusDocuments: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "entregaveis_corpus_documents",
				Help: "Transcripts in the most recently loaded corpus",
			},
		),
		ChatTurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entregaveis_chat_turns_total",
				Help: "Chat turns appended to a session history",
			},
			[]string{"role"},
		),
	}
}

// RecordModelCall records one model call.
func (m *Metrics) RecordModelCall(operation, model, status string, seconds float64) {
	m.ModelCallsTotal.WithLabelValues(operation, model, status).Inc()
	m.ModelLatencySeconds.WithLabelValues(operation, model).Observe(seconds)
}

// RecordModelChars adds prompt and response sizes.
func (m *Metrics) RecordModelChars(model string, prompt, response int) {
	m.ModelCharsTotal.WithLabelValues("prompt", model).Add(float64(prompt))
	m.ModelCharsTotal.WithLabelValues("response", model).Add(float64(response))
}

// RecordAction records the outcome of a user action.
func (m *Metrics) RecordAction(action, status string) {
	m.ActionsTotal.WithLabelValues(action, status).Inc()
}

// RecordReportParse records a structured extraction attempt.
func (m *Metrics) RecordReportParse(reportType, status string) {
	m.ReportParseTotal.WithLabelValues(reportType, status).Inc()
}

// SetCorpusDocuments sets the loaded corpus size.
func (m *Metrics) SetCorpusDocuments(n int) {
	m.CorpusDocuments.Set(float64(n))
}

// RecordChatTurn counts a turn appended to a history.
func (m *Metrics) RecordChatTurn(role string) {
	m.ChatTurnsTotal.WithLabelValues(role).Inc()
}

type operationKey struct{}

// WithOperation labels model calls made with ctx (e.g. "report", "chat").
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey{}, operation)
}

// OperationFrom returns the operation label stored in ctx, or "generate".
func OperationFrom(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "generate"
}
