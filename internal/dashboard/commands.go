package dashboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
	"github.com/otherjamesbrown/entregaveis/pkg/stats"
)

// loadCmd scans the output directory and loads the transcript corpus.
func loadCmd(loader *corpus.Loader, dir string) tea.Cmd {
	return func() tea.Msg {
		listing, err := deliverables.Scan(dir)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		c, err := loader.Load(dir)
		if err != nil {
			return DataLoadedMsg{Listing: listing, Err: err}
		}
		return DataLoadedMsg{Listing: listing, Corpus: c}
	}
}

// analyzeCmd loads the first sheet of a workbook and computes its metrics.
func analyzeCmd(e deliverables.Entry) tea.Cmd {
	return func() tea.Msg {
		t, err := stats.LoadTable(e.Path)
		if err != nil {
			return AnalysisLoadedMsg{Name: e.Name, Err: err}
		}
		return AnalysisLoadedMsg{Name: e.Name, Analysis: stats.Analyze(t)}
	}
}

// reportSource is a transcript or workbook offered on the reports page.
type reportSource struct {
	Meeting  string
	Kind     deliverables.Kind
	Document *corpus.Document
	Path     string
}

func (s reportSource) text() (string, error) {
	if s.Kind == deliverables.KindStatistics {
		return reports.SourceFromWorkbook(s.Path)
	}
	return reports.SourceFromTranscript(s.Document), nil
}

// generateCmd runs one report request.
func generateCmd(ctx context.Context, gen *reports.Generator, src reportSource, t reports.Type, mode reports.Mode) tea.Cmd {
	return func() tea.Msg {
		text, err := src.text()
		if err != nil {
			return ReportDoneMsg{Err: err}
		}
		res, err := gen.Generate(ctx, reports.Request{
			Type:        t,
			Mode:        mode,
			MeetingName: src.Meeting,
			SourceText:  text,
		})
		return ReportDoneMsg{Result: res, Err: err}
	}
}

// askCmd runs one chat question against the session history.
func askCmd(ctx context.Context, a *chat.Answerer, h *chat.History, q string, c *corpus.Corpus, selected []string) tea.Cmd {
	return func() tea.Msg {
		turn, err := a.Ask(ctx, h, q, c, selected)
		return ChatDoneMsg{Turn: turn, Err: err}
	}
}

// exportCmd writes the archive of the output directory.
func exportCmd(dir, path string) tea.Cmd {
	return func() tea.Msg {
		n, err := corpus.ArchiveFile(dir, path)
		return ExportDoneMsg{Path: path, Files: n, Err: err}
	}
}

// saveReportCmd writes the report as HTML and JSON into dir.
func saveReportCmd(r *reports.Result, dir string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		page, err := reports.RenderHTML(r, now)
		if err != nil {
			return ReportSavedMsg{Err: err}
		}
		doc, err := reports.JSONDocument(r)
		if err != nil {
			return ReportSavedMsg{Err: err}
		}

		htmlPath := filepath.Join(dir, reports.HTMLFilename(r.Type, r.MeetingName))
		jsonPath := filepath.Join(dir, reports.JSONFilename(r.Type, r.MeetingName))
		if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
			return ReportSavedMsg{Err: fmt.Errorf("writing %s: %w", htmlPath, err)}
		}
		if err := os.WriteFile(jsonPath, doc, 0644); err != nil {
			return ReportSavedMsg{Err: fmt.Errorf("writing %s: %w", jsonPath, err)}
		}
		return ReportSavedMsg{Paths: []string{htmlPath, jsonPath}}
	}
}
