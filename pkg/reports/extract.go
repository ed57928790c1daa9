package reports

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
)

var (
	fencedJSON = regexp.MustCompile("(?s)```json\n(.+?)\n```")
	braceSpan  = regexp.MustCompile(`(?s)\{.+\}`)
)

// ParseError is returned when a structured answer is not valid JSON. Raw is
// the text that was handed to the decoder.
type ParseError struct {
	Err error
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing structured report: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrorCode classifies the failure for the presentation layer.
func (e *ParseError) ErrorCode() eerrors.ErrorCode { return eerrors.ErrParseError }

// ExtractJSONText returns the JSON candidate inside a model answer: a fenced
// json block first, otherwise the widest {...} span, otherwise the answer
// itself.
func ExtractJSONText(answer string) string {
	if m := fencedJSON.FindStringSubmatch(answer); m != nil {
		return m[1]
	}
	if m := braceSpan.FindString(answer); m != "" {
		return m
	}
	return answer
}

// ExtractJSON decodes the JSON object inside a model answer. One attempt.
func ExtractJSON(answer string) (map[string]any, string, error) {
	text := ExtractJSONText(answer)

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, text, &ParseError{Err: err, Raw: text}
	}
	if out == nil {
		return nil, text, &ParseError{Err: fmt.Errorf("answer is not a JSON object"), Raw: text}
	}
	return out, text, nil
}

// leadIns are openings the model adds despite being told not to.
var leadIns = []string{
	"Aqui está um resumo detalhado da transcrição da reunião, estruturado conforme solicitado:",
	"Aqui está um resumo conciso da transcrição da reunião:",
	"Aqui está a análise da transcrição da reunião:",
	"Aqui está a ata formal da reunião:",
	"Aqui estão os pontos de ação extraídos da transcrição:",
	"Com base na transcrição fornecida, aqui está o resumo:",
	"Analisando a transcrição da reunião, identifiquei os seguintes pontos:",
	"Segue o resumo estruturado da reunião:",
	"Aqui está o relatório solicitado:",
	"Com base na transcrição, aqui estão os insights:",
	"Aqui está a ata estruturada:",
	"Segue a análise detalhada:",
	"Aqui estão os principais pontos identificados:",
	"Com base na transcrição da reunião:",
	"Aqui está o resumo estruturado:",
	"Segue o relatório solicitado:",
	"Aqui está a análise completa:",
	"Com base na transcrição fornecida:",
	"Aqui está o conteúdo estruturado:",
	"Segue a análise da reunião:",
}

// CleanText removes known lead-in sentences, with and without their colons,
// and trims the result. Sentences not in the list survive.
func CleanText(answer string) string {
	for _, line := range leadIns {
		answer = strings.ReplaceAll(answer, line, "")
		answer = strings.ReplaceAll(answer, strings.ReplaceAll(line, ":", ""), "")
	}
	return strings.TrimSpace(answer)
}
