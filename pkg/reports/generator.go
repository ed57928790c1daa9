package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/llm"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/observability"
)

// Request describes one report to generate.
type Request struct {
	Type        Type
	Mode        Mode
	MeetingName string
	SourceText  string
}

// Result is a generated report.
type Result struct {
	ID          string         `json:"id" yaml:"id"`
	Type        Type           `json:"type" yaml:"type"`
	Title       string         `json:"title" yaml:"title"`
	Mode        Mode           `json:"mode" yaml:"mode"`
	MeetingName string         `json:"meeting_name" yaml:"meeting_name"`
	Model       string         `json:"model" yaml:"model"`
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	Structured  map[string]any `json:"structured,omitempty" yaml:"structured,omitempty"`
	Text        string         `json:"text,omitempty" yaml:"text,omitempty"`
	// JSONText is the decoded JSON as the model wrote it, for download.
	JSONText string `json:"-" yaml:"-"`
	// Raw is the unprocessed model answer.
	Raw string `json:"-" yaml:"-"`
}

// Generator turns requests into results through a Model.
type Generator struct {
	model   llm.Model
	logger  logging.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer

	now   func() time.Time
	newID func() string
}

// NewGenerator creates a generator. logger and metrics may be nil.
func NewGenerator(model llm.Model, logger logging.Logger, metrics *observability.Metrics) *Generator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Generator{
		model:   model,
		logger:  logger,
		metrics: metrics,
		tracer:  observability.NewTracer(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Generate builds the prompt, calls the model once and interprets the answer.
// On failure it returns a nil result and an error the caller can show with
// errors.UserMessage; a *ParseError carries the raw answer.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	def, err := Lookup(req.Type)
	if err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeText
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: invalid report mode %q", eerrors.ErrValidation, mode)
	}
	if strings.TrimSpace(req.SourceText) == "" {
		return nil, fmt.Errorf("%w: source text for %q is empty", eerrors.ErrValidation, req.MeetingName)
	}

	ctx = observability.WithOperation(ctx, "report")
	ctx = context.WithValue(ctx, logging.MeetingKey, req.MeetingName)
	ctx, span := g.tracer.StartReportSpan(ctx, req.MeetingName, string(req.Type), string(mode))
	defer span.End()
	helper := observability.NewSpanHelper(span)

	log := g.logger.WithContext(ctx).With(
		logging.F("report_type", string(req.Type)),
		logging.F("mode", string(mode)),
	)
	log.Info("Generating report")

	result, err := g.generate(ctx, def, req, mode)
	if err != nil {
		ae := eerrors.ClassifyError(err, "report")
		helper.SetError(err, string(ae.Code))
		log.Warn("Report generation failed", logging.Err(err), logging.F("error_code", string(ae.Code)))
		g.recordAction(observability.StatusError)
		return nil, err
	}

	helper.SetSuccess()
	log.Info("Report generated", logging.F("report_id", result.ID))
	g.recordAction(observability.StatusSuccess)
	return result, nil
}

func (g *Generator) generate(ctx context.Context, def Definition, req Request, mode Mode) (*Result, error) {
	answer, err := g.model.Generate(ctx, BuildPrompt(def, req.SourceText, mode))
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", req.Type, err)
	}

	result := &Result{
		ID:          g.newID(),
		Type:        req.Type,
		Title:       def.Title,
		Mode:        mode,
		MeetingName: req.MeetingName,
		Model:       g.model.Name(),
		GeneratedAt: g.now(),
		Raw:         answer,
	}

	if mode == ModeText {
		result.Text = CleanText(answer)
		return result, nil
	}

	data, text, err := ExtractJSON(answer)
	if err != nil {
		g.recordParse(req.Type, observability.StatusError)
		return nil, err
	}
	g.recordParse(req.Type, observability.StatusSuccess)
	result.Structured = data
	result.JSONText = text
	return result, nil
}

func (g *Generator) recordAction(status string) {
	if g.metrics != nil {
		g.metrics.RecordAction("report", status)
	}
}

func (g *Generator) recordParse(t Type, status string) {
	if g.metrics != nil {
		g.metrics.RecordReportParse(string(t), status)
	}
}
