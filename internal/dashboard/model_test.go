package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/otherjamesbrown/entregaveis/credentials"
	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/llm"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
	"github.com/otherjamesbrown/entregaveis/pkg/session"
)

var fixedTestTime = time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func entry(kind deliverables.Kind, meeting string) deliverables.Entry {
	name := deliverables.Format(kind, meeting)
	return deliverables.Entry{
		File: deliverables.File{
			Kind:        kind,
			MeetingName: meeting,
			Extension:   kind.Extension(),
			Name:        name,
			Path:        filepath.Join("saidas", name),
		},
		Parsed:      true,
		DisplayName: meeting,
	}
}

// loadedModel returns a model with two transcripts and one workbook loaded.
func loadedModel(t *testing.T, answer string, err error) Model {
	t.Helper()
	model := llm.Func(func(_ context.Context, _ string) (string, error) {
		return answer, err
	})
	m := New(Deps{
		OutputDir: "saidas",
		Generator: reports.NewGenerator(model, nil, nil),
		Answerer:  chat.NewAnswerer(model, nil, nil),
	})
	m.width = 80
	m.height = 24

	listing := &deliverables.Listing{
		Dir: "saidas",
		Transcripts: []deliverables.Entry{
			entry(deliverables.KindTranscript, "kickoff"),
			entry(deliverables.KindTranscript, "retro"),
		},
		Statistics: []deliverables.Entry{entry(deliverables.KindStatistics, "kickoff")},
	}
	c := corpus.New("saidas",
		&corpus.Document{MeetingName: "kickoff", PlainText: "Ana: vamos começar o projeto."},
		&corpus.Document{MeetingName: "retro", PlainText: "Bruno: o sprint foi bom."},
	)
	updated, _ := m.Update(DataLoadedMsg{Listing: listing, Corpus: c})
	return updated.(Model)
}

func withKey(m Model) Model {
	m.deps.Session.SetAPIKey("test-key", credentials.SourceEnv)
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestNewModel(t *testing.T) {
	m := New(Deps{OutputDir: "saidas"})
	if m.page != PageHome {
		t.Errorf("page = %v, want %v", m.page, PageHome)
	}
	if m.reportMode != reports.ModeText {
		t.Errorf("reportMode = %q, want text", m.reportMode)
	}
	if m.deps.SaveDir != "." {
		t.Errorf("SaveDir = %q, want .", m.deps.SaveDir)
	}
	if m.deps.ExportPath != corpus.ArchiveName {
		t.Errorf("ExportPath = %q", m.deps.ExportPath)
	}
	if m.loaded {
		t.Error("new model should not be loaded")
	}
	if m.View() == "" {
		t.Error("view should render before load")
	}
}

func TestNewModel_InvalidModeFallsBackToText(t *testing.T) {
	m := New(Deps{ReportMode: "xml"})
	if m.reportMode != reports.ModeText {
		t.Errorf("reportMode = %q, want text", m.reportMode)
	}
}

func TestDataLoaded(t *testing.T) {
	m := loadedModel(t, "", nil)
	if !m.loaded {
		t.Fatal("should be loaded")
	}
	if m.loadErr != "" {
		t.Errorf("loadErr = %q", m.loadErr)
	}
	if got := len(m.reportSources()); got != 3 {
		t.Errorf("report sources = %d, want 3", got)
	}
	if m.Status() != "2 transcrições, 1 planilhas" {
		t.Errorf("status = %q", m.Status())
	}
}

func TestDataLoaded_MissingDirectory(t *testing.T) {
	m := New(Deps{OutputDir: "saidas"})
	updated, _ := m.Update(DataLoadedMsg{Err: fmt.Errorf("scan: %w", eerrors.ErrNotFound)})
	model := updated.(Model)

	if model.loadErr != "Diretório 'saidas' não encontrado." {
		t.Errorf("loadErr = %q", model.loadErr)
	}
	if !model.statusErr {
		t.Error("status should be an error")
	}
	if !strings.Contains(model.View(), "não encontrado") {
		t.Error("view should show the missing directory")
	}
}

func TestLoadCmd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "html_kickoff.html"), []byte("<p><strong>Ana:</strong> Olá</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notas.html"), []byte("<p>x</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	msg := loadCmd(corpus.NewLoader(nil), dir)()
	loaded, ok := msg.(DataLoadedMsg)
	if !ok {
		t.Fatalf("msg = %T, want DataLoadedMsg", msg)
	}
	if loaded.Err != nil {
		t.Fatalf("err = %v", loaded.Err)
	}
	if loaded.Listing.TranscriptCount() != 2 {
		t.Errorf("transcripts = %d, want 2", loaded.Listing.TranscriptCount())
	}
	if loaded.Corpus.Len() != 1 {
		t.Errorf("corpus = %d, want 1", loaded.Corpus.Len())
	}
}

func TestPageSwitching(t *testing.T) {
	m := loadedModel(t, "", nil)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.page != PageTranscripts {
		t.Errorf("after tab page = %v", m.page)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.page != PageChat {
		t.Errorf("after shift+tab page = %v, want %v", m.page, PageChat)
	}

	// Digits are text on the chat page.
	m, _ = press(t, m, runes("3"))
	if m.page != PageChat {
		t.Errorf("digit on chat page switched to %v", m.page)
	}
	if string(m.input) != "3" {
		t.Errorf("input = %q", string(m.input))
	}

	m.page = PageHome
	m, _ = press(t, m, runes("4"))
	if m.page != PageReports {
		t.Errorf("page = %v, want %v", m.page, PageReports)
	}
}

func TestQuitKeyOnlyOutsideChat(t *testing.T) {
	m := loadedModel(t, "", nil)
	_, cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Error("q should quit outside the chat page")
	}

	m.page = PageChat
	m, cmd = press(t, m, runes("q"))
	if cmd != nil {
		t.Error("q should be typed on the chat page")
	}
	if string(m.input) != "q" {
		t.Errorf("input = %q", string(m.input))
	}
}

func TestTranscriptNavigation(t *testing.T) {
	m := loadedModel(t, "", nil)
	m.page = PageTranscripts

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.transcriptCursor != 1 {
		t.Errorf("cursor = %d, want 1", m.transcriptCursor)
	}
	if !strings.Contains(m.View(), "o sprint foi bom") {
		t.Error("view should show the selected transcript text")
	}
}

func TestReports_CycleTypeAndMode(t *testing.T) {
	m := loadedModel(t, "", nil)
	m.page = PageReports

	m, _ = press(t, m, runes("t"))
	if reports.AllTypes[m.reportType] != reports.TypeResumoExpandido {
		t.Errorf("type = %v", reports.AllTypes[m.reportType])
	}
	m, _ = press(t, m, runes("m"))
	if m.reportMode != reports.ModeStructured {
		t.Errorf("mode = %q", m.reportMode)
	}
	m, _ = press(t, m, runes("m"))
	if m.reportMode != reports.ModeText {
		t.Errorf("mode = %q", m.reportMode)
	}
}

func TestReports_GenerateWithoutKey(t *testing.T) {
	m := loadedModel(t, "Resumo.", nil)
	m.page = PageReports

	m, cmd := press(t, m, runes("g"))
	if cmd != nil {
		t.Error("generate should be disabled without a key")
	}
	if m.Status() != missingKeyNotice {
		t.Errorf("status = %q", m.Status())
	}
	if !strings.Contains(m.View(), "Chave da API Gemini") {
		t.Error("view should show the missing key notice")
	}
}

func TestReports_GenerateBusyAndDone(t *testing.T) {
	m := withKey(loadedModel(t, "Reunião de abertura do projeto.", nil))
	m.page = PageReports

	m, cmd := press(t, m, runes("g"))
	if cmd == nil {
		t.Fatal("generate should return a command")
	}
	if m.deps.Session.Busy() != "report" {
		t.Errorf("busy = %q, want report", m.deps.Session.Busy())
	}

	// A second action is refused while the first runs.
	m, second := press(t, m, runes("g"))
	if second != nil {
		t.Error("second generate should be refused")
	}
	if !m.statusErr || !strings.Contains(m.Status(), "report") {
		t.Errorf("status = %q", m.Status())
	}

	done, ok := cmd().(ReportDoneMsg)
	if !ok {
		t.Fatal("command should produce ReportDoneMsg")
	}
	updated, _ := m.Update(done)
	m = updated.(Model)

	if m.deps.Session.Busy() != "" {
		t.Error("busy flag should clear")
	}
	r := m.deps.Session.Report()
	if r == nil {
		t.Fatal("report should be stored in the session")
	}
	if r.MeetingName != "kickoff" || r.Type != reports.TypeResumo {
		t.Errorf("report = %s/%s", r.MeetingName, r.Type)
	}
	if r.Text != "Reunião de abertura do projeto." {
		t.Errorf("text = %q", r.Text)
	}
	if !strings.Contains(m.View(), "Reunião de abertura") {
		t.Error("view should show the report")
	}
}

func TestReports_ParseErrorKeepsRaw(t *testing.T) {
	m := withKey(loadedModel(t, "", nil))
	m.page = PageReports
	m.deps.Session.SetReport(&reports.Result{MeetingName: "old"})
	if err := m.deps.Session.TryBegin("report"); err != nil {
		t.Fatal(err)
	}

	updated, _ := m.Update(ReportDoneMsg{Err: &reports.ParseError{Err: errors.New("no json"), Raw: "texto livre"}})
	m = updated.(Model)

	if m.reportErr == "" {
		t.Error("reportErr should be set")
	}
	if m.reportRaw != "texto livre" {
		t.Errorf("reportRaw = %q", m.reportRaw)
	}
	if m.deps.Session.Report() != nil {
		t.Error("previous report should be cleared")
	}
	if m.deps.Session.Busy() != "" {
		t.Error("busy flag should clear on failure")
	}
}

func TestReports_SaveWithoutReport(t *testing.T) {
	m := loadedModel(t, "", nil)
	m.page = PageReports
	m, cmd := press(t, m, runes("s"))
	if cmd != nil {
		t.Error("save without a report should not run")
	}
	if !m.statusErr {
		t.Error("status should be an error")
	}
}

func TestSaveReportCmd(t *testing.T) {
	dir := t.TempDir()
	r := &reports.Result{
		Type:        reports.TypeResumo,
		Title:       "Resumo Conciso",
		Mode:        reports.ModeText,
		MeetingName: "kickoff",
		Text:        "Tudo certo.",
	}
	msg := saveReportCmd(r, dir, fixedTestTime)().(ReportSavedMsg)
	if msg.Err != nil {
		t.Fatalf("err = %v", msg.Err)
	}
	if len(msg.Paths) != 2 {
		t.Fatalf("paths = %v", msg.Paths)
	}
	for _, p := range msg.Paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
	if filepath.Base(msg.Paths[0]) != "resumo_kickoff.html" {
		t.Errorf("html = %s", msg.Paths[0])
	}
}

func TestChat_ToggleSelection(t *testing.T) {
	m := loadedModel(t, "", nil)
	m.page = PageChat

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if got := m.selectedMeetings(); len(got) != 1 || got[0] != "retro" {
		t.Errorf("selected = %v", got)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if got := m.selectedMeetings(); len(got) != 0 {
		t.Errorf("selected = %v, want none", got)
	}
}

func TestChat_EmptyQuestion(t *testing.T) {
	m := withKey(loadedModel(t, "resposta", nil))
	m.page = PageChat

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank question should not be sent")
	}
	if m.Status() != "Por favor, digite uma pergunta." {
		t.Errorf("status = %q", m.Status())
	}
	if m.deps.Session.History.Len() != 0 {
		t.Error("history should stay empty")
	}
}

func TestChat_SubmitQuestion(t *testing.T) {
	m := withKey(loadedModel(t, "O projeto começou.", nil))
	m.page = PageChat

	m, _ = press(t, m, runes("Como"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = press(t, m, runes("foi?"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should send the question")
	}
	if len(m.input) != 0 {
		t.Errorf("input should be cleared, got %q", string(m.input))
	}
	if m.deps.Session.Busy() != "chat" {
		t.Errorf("busy = %q", m.deps.Session.Busy())
	}

	updated, _ := m.Update(cmd())
	m = updated.(Model)

	turns := m.deps.Session.History.Turns()
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].Content != "Como foi" {
		t.Errorf("question = %q", turns[0].Content)
	}
	if turns[1].Role != chat.RoleAssistant || turns[1].Content != "O projeto começou." {
		t.Errorf("answer = %+v", turns[1])
	}
	if m.deps.Session.Busy() != "" {
		t.Error("busy flag should clear")
	}
	if !strings.Contains(m.View(), "O projeto começou.") {
		t.Error("view should show the answer")
	}
}

func TestChat_ModelFailureBecomesAssistantTurn(t *testing.T) {
	m := withKey(loadedModel(t, "", errors.New("boom")))
	m.page = PageChat

	m, _ = press(t, m, runes("Oi"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should send the question")
	}
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	last, ok := m.deps.Session.History.Last()
	if !ok {
		t.Fatal("history should not be empty")
	}
	if !strings.HasPrefix(last.Content, chat.ErrorAnswerPrefix) {
		t.Errorf("last = %q", last.Content)
	}
	if !m.statusErr {
		t.Error("status should be an error")
	}
}

func TestExport_BusyGuard(t *testing.T) {
	m := loadedModel(t, "", nil)
	m.deps.Session = session.New()
	if err := m.deps.Session.TryBegin("chat"); err != nil {
		t.Fatal(err)
	}
	m, cmd := press(t, m, runes("e"))
	if cmd != nil {
		t.Error("export should be refused while busy")
	}
	if !strings.Contains(m.Status(), "chat") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestView_SmallWindow(t *testing.T) {
	m := loadedModel(t, "", nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 3})
	m = updated.(Model)
	for p := PageHome; p <= PageChat; p++ {
		m.page = p
		if m.View() == "" {
			t.Errorf("page %v rendered empty", p)
		}
	}
}
