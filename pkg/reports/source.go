package reports

import (
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/stats"
)

// SourceFromTranscript is the report source of a loaded transcript.
func SourceFromTranscript(doc *corpus.Document) string {
	if doc == nil {
		return ""
	}
	return doc.PlainText
}

// SourceFromWorkbook renders every sheet of a statistics workbook as text.
func SourceFromWorkbook(path string) (string, error) {
	wb, err := stats.LoadAllSheets(path)
	if err != nil {
		return "", err
	}
	return wb.Dump(), nil
}
