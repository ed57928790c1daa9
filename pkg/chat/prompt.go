package chat

import (
	"strings"

	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
)

const (
	// SingleDocumentLimit bounds the transcript in a single-document prompt.
	SingleDocumentLimit = 15000
	// MultiDocumentLimit bounds each transcript when the user picks meetings.
	MultiDocumentLimit = 5000
	// Unlimited disables per-document truncation.
	Unlimited = 0
)

const assistantIntro = "Você é um assistente especializado em analisar transcrições de reuniões.\n"

// SingleDocumentPrompt asks question against one transcript.
func SingleDocumentPrompt(meeting, text, question string) string {
	var b strings.Builder
	b.WriteString(assistantIntro)
	b.WriteString("Responda à pergunta com base apenas nas informações contidas na transcrição fornecida.\n")
	b.WriteString("Se a resposta não estiver na transcrição, diga claramente que não consegue responder com base nas informações disponíveis.\n\n")
	b.WriteString("Transcrição da reunião '" + meeting + "':\n")
	b.WriteString(reports.Truncate(text, SingleDocumentLimit))
	writeQuestion(&b, question)
	return b.String()
}

// MultiDocumentPrompt asks question against several transcripts, each cut
// to limit runes (Unlimited keeps them whole).
func MultiDocumentPrompt(docs []*corpus.Document, question string, limit int) string {
	var combined strings.Builder
	for _, d := range docs {
		combined.WriteString("\n\nTranscrição da reunião '" + d.MeetingName + "':\n")
		combined.WriteString(reports.Truncate(d.PlainText, limit))
		combined.WriteString("\n")
	}

	var b strings.Builder
	b.WriteString(assistantIntro)
	b.WriteString("Responda à pergunta com base apenas nas informações contidas nas transcrições fornecidas.\n")
	b.WriteString("Se a resposta não estiver nas transcrições, diga claramente que não consegue responder com base nas informações disponíveis.\n")
	b.WriteString("Quando a informação estiver em uma transcrição específica, mencione qual reunião contém essa informação.\n\n")
	b.WriteString("Contexto das transcrições:\n")
	b.WriteString(combined.String())
	writeQuestion(&b, question)
	return b.String()
}

func writeQuestion(b *strings.Builder, question string) {
	b.WriteString("\n\nPergunta: ")
	b.WriteString(question)
	b.WriteString("\n\nResposta:")
}
