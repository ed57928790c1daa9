package llm

import (
	"context"
	"time"
	"unicode/utf8"

	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/observability"
)

type instrumented struct {
	next    Model
	metrics *observability.Metrics
	tracer  *observability.Tracer
	logger  logging.Logger
}

// Instrument wraps m so each call is counted, timed, traced and logged.
// Any of metrics, tracer or logger may be nil.
func Instrument(m Model, metrics *observability.Metrics, tracer *observability.Tracer, logger logging.Logger) Model {
	if tracer == nil {
		tracer = observability.NewTracer()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &instrumented{next: m, metrics: metrics, tracer: tracer, logger: logger}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	model := i.next.Name()
	operation := observability.OperationFrom(ctx)

	ctx, span := i.tracer.StartModelSpan(ctx, model, operation)
	defer span.End()
	helper := observability.NewSpanHelper(span)

	log := i.logger.WithContext(ctx).With(
		logging.F("model", model),
		logging.F("operation", operation),
	)
	promptChars := utf8.RuneCountInString(prompt)
	log.Debug("Calling model", logging.F("prompt_chars", promptChars))

	start := time.Now()
	out, err := i.next.Generate(ctx, prompt)
	elapsed := time.Since(start)

	respChars := utf8.RuneCountInString(out)
	helper.SetModelResult(promptChars, respChars, elapsed.Milliseconds())

	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusError
		code := eerrors.ClassifyError(err, operation).Code
		helper.SetError(err, string(code))
		log.Warn("Model call failed",
			logging.Err(err),
			logging.F("error_code", string(code)),
			logging.F("duration_ms", elapsed.Milliseconds()),
		)
	} else {
		helper.SetSuccess()
		log.Debug("Model call completed",
			logging.F("response_chars", respChars),
			logging.F("duration_ms", elapsed.Milliseconds()),
		)
	}

	if i.metrics != nil {
		i.metrics.RecordModelCall(operation, model, status, elapsed.Seconds())
		i.metrics.RecordModelChars(model, promptChars, respChars)
	}
	return out, err
}
