package dashboard

import (
	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
	"github.com/otherjamesbrown/entregaveis/pkg/stats"
)

// DataLoadedMsg carries the directory listing and transcript corpus.
type DataLoadedMsg struct {
	Listing *deliverables.Listing
	Corpus  *corpus.Corpus
	Err     error
}

// AnalysisLoadedMsg carries the metrics of one statistics workbook.
type AnalysisLoadedMsg struct {
	Name     string
	Analysis *stats.Analysis
	Err      error
}

// ReportDoneMsg is sent when a report request resolves.
type ReportDoneMsg struct {
	Result *reports.Result
	Err    error
}

// ChatDoneMsg is sent when a chat question resolves. The turns are already
// in the session history.
type ChatDoneMsg struct {
	Turn chat.Turn
	Err  error
}

// ExportDoneMsg is sent when the output directory archive is written.
type ExportDoneMsg struct {
	Path  string
	Files int
	Err   error
}

// ReportSavedMsg is sent when the current report is written to disk.
type ReportSavedMsg struct {
	Paths []string
	Err   error
}
