// Package dashboard is the interactive terminal front end: five pages over
// the output directory, driven by bubbletea.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
	"github.com/otherjamesbrown/entregaveis/pkg/session"
	"github.com/otherjamesbrown/entregaveis/pkg/stats"
)

// Page identifies a dashboard page.
type Page int

const (
	PageHome Page = iota
	PageTranscripts
	PageAnalysis
	PageReports
	PageChat
)

var pageTitles = []string{"Início", "Transcrições", "Análise", "Relatórios", "Chat"}

func (p Page) String() string { return pageTitles[p] }

const pageCount = 5

// Deps are the collaborators of the dashboard. Generator and Answerer are
// nil when no API key is available; model actions are then disabled.
type Deps struct {
	OutputDir string
	// ExportPath is where the archive of OutputDir is written.
	ExportPath string
	// SaveDir receives saved reports.
	SaveDir    string
	ReportMode reports.Mode

	Loader    *corpus.Loader
	Session   *session.Session
	Generator *reports.Generator
	Answerer  *chat.Answerer
	Logger    logging.Logger

	Context context.Context
	Now     func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	deps Deps

	page   Page
	width  int
	height int

	// Data
	loaded  bool
	listing *deliverables.Listing
	corpus  *corpus.Corpus
	loadErr string

	// Transcripts page
	transcriptCursor int
	transcriptScroll int

	// Analysis page
	statsCursor    int
	analysis       *stats.Analysis
	analysisFor    string
	analysisErr    string
	analysisScroll int

	// Reports page
	sourceCursor int
	reportType   int
	reportMode   reports.Mode
	reportErr    string
	reportRaw    string
	reportScroll int

	// Chat page
	chatCursor   int
	chatSelected map[string]bool
	input        []rune
	chatScroll   int

	// Status line
	status    string
	statusErr bool
}

// New creates the dashboard model.
func New(deps Deps) Model {
	if deps.Session == nil {
		deps.Session = session.New()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Loader == nil {
		deps.Loader = corpus.NewLoader(deps.Logger)
	}
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ExportPath == "" {
		deps.ExportPath = corpus.ArchiveName
	}
	if deps.SaveDir == "" {
		deps.SaveDir = "."
	}
	mode := deps.ReportMode
	if !mode.IsValid() {
		mode = reports.ModeText
	}
	return Model{
		deps:         deps,
		reportMode:   mode,
		chatSelected: make(map[string]bool),
		status:       "Carregando entregáveis...",
	}
}

// Init loads the output directory.
func (m Model) Init() tea.Cmd {
	return loadCmd(m.deps.Loader, m.deps.OutputDir)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case DataLoadedMsg:
		m.loaded = true
		m.listing = msg.Listing
		m.corpus = msg.Corpus
		m.loadErr = ""
		if msg.Err != nil {
			m.loadErr = loadErrorText(m.deps.OutputDir, msg.Err)
			m.setError(m.loadErr)
			return m, nil
		}
		m.clampCursors()
		m.setStatus(fmt.Sprintf("%d transcrições, %d planilhas",
			m.listing.TranscriptCount(), m.listing.StatisticsCount()))
		return m, nil

	case AnalysisLoadedMsg:
		m.analysisFor = msg.Name
		m.analysisScroll = 0
		if msg.Err != nil {
			m.analysis = nil
			m.analysisErr = msg.Err.Error()
			m.setError("Erro ao carregar planilha: " + msg.Err.Error())
			return m, nil
		}
		m.analysis = msg.Analysis
		m.analysisErr = ""
		m.setStatus("Análise de " + msg.Name)
		return m, nil

	case ReportDoneMsg:
		m.deps.Session.End()
		m.reportScroll = 0
		if msg.Err != nil {
			m.deps.Session.SetReport(nil)
			m.reportErr = eerrors.UserMessage(msg.Err, "report")
			m.reportRaw = ""
			var pe *reports.ParseError
			if errors.As(msg.Err, &pe) {
				m.reportRaw = pe.Raw
			}
			m.setError("Não foi possível gerar o relatório.")
			return m, nil
		}
		m.deps.Session.SetReport(msg.Result)
		m.reportErr = ""
		m.reportRaw = ""
		m.setStatus(fmt.Sprintf("Relatório gerado: %s - %s", msg.Result.Title, msg.Result.MeetingName))
		return m, nil

	case ChatDoneMsg:
		m.deps.Session.End()
		m.chatScroll = 0
		if msg.Err != nil {
			m.setError("Erro ao processar pergunta.")
			return m, nil
		}
		m.setStatus("Resposta recebida.")
		return m, nil

	case ExportDoneMsg:
		m.deps.Session.End()
		if msg.Err != nil {
			m.setError("Erro ao exportar: " + msg.Err.Error())
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%d arquivos exportados em %s", msg.Files, msg.Path))
		return m, nil

	case ReportSavedMsg:
		if msg.Err != nil {
			m.setError("Erro ao salvar relatório: " + msg.Err.Error())
			return m, nil
		}
		m.setStatus("Relatório salvo: " + strings.Join(msg.Paths, ", "))
		return m, nil
	}

	return m, nil
}

func loadErrorText(dir string, err error) string {
	if eerrors.IsNotFound(err) {
		return fmt.Sprintf("Diretório '%s' não encontrado.", dir)
	}
	return "Erro ao carregar entregáveis: " + err.Error()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) clampCursors() {
	clamp := func(v, n int) int {
		if v >= n {
			v = n - 1
		}
		if v < 0 {
			v = 0
		}
		return v
	}
	m.transcriptCursor = clamp(m.transcriptCursor, len(m.transcripts()))
	m.statsCursor = clamp(m.statsCursor, len(m.statistics()))
	m.sourceCursor = clamp(m.sourceCursor, len(m.reportSources()))
	m.chatCursor = clamp(m.chatCursor, len(m.meetingNames()))
}

// Page returns the active page.
func (m Model) Page() Page { return m.page }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

func (m Model) transcripts() []deliverables.Entry {
	if m.listing == nil {
		return nil
	}
	return m.listing.Transcripts
}

func (m Model) statistics() []deliverables.Entry {
	if m.listing == nil {
		return nil
	}
	return m.listing.Statistics
}

func (m Model) meetingNames() []string {
	if m.corpus == nil {
		return nil
	}
	return m.corpus.Names()
}

// reportSources lists corpus transcripts followed by parsed workbooks.
func (m Model) reportSources() []reportSource {
	var out []reportSource
	if m.corpus != nil {
		for _, d := range m.corpus.Documents() {
			out = append(out, reportSource{Meeting: d.MeetingName, Kind: deliverables.KindTranscript, Document: d, Path: d.Path})
		}
	}
	for _, e := range m.statistics() {
		if e.Parsed {
			out = append(out, reportSource{Meeting: e.MeetingName, Kind: deliverables.KindStatistics, Path: e.Path})
		}
	}
	return out
}

// selectedMeetings returns the chat selection in corpus order.
func (m Model) selectedMeetings() []string {
	var out []string
	for _, name := range m.meetingNames() {
		if m.chatSelected[name] {
			out = append(out, name)
		}
	}
	return out
}

func (m Model) actionContext() context.Context {
	return m.deps.Session.Context(m.deps.Context)
}
