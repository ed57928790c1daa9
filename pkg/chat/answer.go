package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/llm"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/observability"
)

// ErrorAnswerPrefix opens the assistant turn recorded when the model fails.
const ErrorAnswerPrefix = "Ocorreu um erro ao processar sua pergunta: "

// Answerer sends questions to a model with transcript context.
type Answerer struct {
	model   llm.Model
	logger  logging.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer
}

// NewAnswerer creates an answerer. logger and metrics may be nil.
func NewAnswerer(model llm.Model, logger logging.Logger, metrics *observability.Metrics) *Answerer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Answerer{
		model:   model,
		logger:  logger,
		metrics: metrics,
		tracer:  observability.NewTracer(),
	}
}

// BuildPrompt picks the prompt for a selection: one meeting gets the
// single-document prompt, several get the multi-document prompt at
// MultiDocumentLimit, none means the whole corpus untruncated. Every
// selected name must be loaded.
func BuildPrompt(c *corpus.Corpus, selected []string, question string) (string, int, error) {
	if len(selected) == 0 {
		docs := c.Documents()
		if len(docs) == 0 {
			return "", 0, fmt.Errorf("%w: no transcripts loaded", eerrors.ErrNotFound)
		}
		return MultiDocumentPrompt(docs, question, Unlimited), len(docs), nil
	}

	var missing []string
	for _, name := range selected {
		if _, ok := c.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", 0, fmt.Errorf("%w: selected meetings are not loaded: %s",
			eerrors.ErrNotFound, strings.Join(missing, ", "))
	}

	docs := c.Select(selected)
	if len(selected) == 1 {
		return SingleDocumentPrompt(docs[0].MeetingName, docs[0].PlainText, question), 1, nil
	}
	return MultiDocumentPrompt(docs, question, MultiDocumentLimit), len(docs), nil
}

// Answer returns the model's answer. When the model fails the returned text
// is the error answer shown to the user and err is non-nil.
func (a *Answerer) Answer(ctx context.Context, question string, c *corpus.Corpus, selected []string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is empty", eerrors.ErrValidation)
	}
	if c == nil {
		return "", fmt.Errorf("%w: no transcripts loaded", eerrors.ErrNotFound)
	}
	prompt, n, err := BuildPrompt(c, selected, question)
	if err != nil {
		return "", err
	}

	ctx = observability.WithOperation(ctx, "chat")
	ctx, span := a.tracer.StartChatSpan(ctx, n)
	defer span.End()
	helper := observability.NewSpanHelper(span)

	log := a.logger.WithContext(ctx).With(logging.F("documents", n))
	log.Info("Answering question")

	answer, err := a.model.Generate(ctx, prompt)
	if err != nil {
		ae := eerrors.ClassifyError(err, "chat")
		helper.SetError(err, string(ae.Code))
		log.Warn("Chat answer failed", logging.Err(err), logging.F("error_code", string(ae.Code)))
		a.recordAction(observability.StatusError)
		return ErrorAnswerPrefix + err.Error(), err
	}

	helper.SetSuccess()
	a.recordAction(observability.StatusSuccess)
	return answer, nil
}

// Ask appends the user turn, answers, and appends the assistant turn, which
// holds the error answer when the model fails. Validation failures append
// nothing.
func (a *Answerer) Ask(ctx context.Context, h *History, question string, c *corpus.Corpus, selected []string) (Turn, error) {
	if strings.TrimSpace(question) == "" {
		return Turn{}, fmt.Errorf("%w: question is empty", eerrors.ErrValidation)
	}
	if c == nil || c.Len() == 0 {
		return Turn{}, fmt.Errorf("%w: no transcripts loaded", eerrors.ErrNotFound)
	}

	h.Append(Turn{Role: RoleUser, Content: question})
	a.recordTurn(RoleUser)

	answer, err := a.Answer(ctx, question, c, selected)
	if answer == "" && err != nil {
		answer = ErrorAnswerPrefix + err.Error()
	}
	turn := Turn{Role: RoleAssistant, Content: answer}
	h.Append(turn)
	a.recordTurn(RoleAssistant)
	return turn, err
}

func (a *Answerer) recordAction(status string) {
	if a.metrics != nil {
		a.metrics.RecordAction("chat", status)
	}
}

func (a *Answerer) recordTurn(r Role) {
	if a.metrics != nil {
		a.metrics.RecordChatTurn(string(r))
	}
}
