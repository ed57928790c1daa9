package dashboard

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/otherjamesbrown/entregaveis/pkg/reports"
)

const missingKeyNotice = "Chave da API Gemini não configurada. Use 'entregaveis auth login' ou defina GEMINI_API_KEY."

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case KeyCtrlC:
		return m, tea.Quit
	case KeyTab:
		m.page = (m.page + 1) % pageCount
		return m, nil
	case KeyShiftTab:
		m.page = (m.page + pageCount - 1) % pageCount
		return m, nil
	}

	// The chat page takes free text, so single-letter shortcuts stay off.
	if m.page == PageChat {
		return m.handleChatKey(msg)
	}

	switch key {
	case KeyQuit:
		return m, tea.Quit
	case "1", "2", "3", "4", "5":
		m.page = Page(key[0] - '1')
		return m, nil
	case KeyReload:
		m.deps.Loader.Invalidate(m.deps.OutputDir)
		m.setStatus("Recarregando...")
		return m, loadCmd(m.deps.Loader, m.deps.OutputDir)
	}

	switch m.page {
	case PageHome:
		return m.handleHomeKey(key)
	case PageTranscripts:
		return m.handleTranscriptsKey(key)
	case PageAnalysis:
		return m.handleAnalysisKey(key)
	case PageReports:
		return m.handleReportsKey(key)
	}
	return m, nil
}

func (m Model) handleHomeKey(key string) (tea.Model, tea.Cmd) {
	if key != KeyExport {
		return m, nil
	}
	if !m.loaded || m.loadErr != "" {
		m.setError("Nada para exportar.")
		return m, nil
	}
	if err := m.deps.Session.TryBegin("export"); err != nil {
		m.setError(busyText(m.deps.Session.Busy()))
		return m, nil
	}
	m.setStatus("Exportando entregáveis...")
	return m, exportCmd(m.deps.OutputDir, m.deps.ExportPath)
}

func (m Model) handleTranscriptsKey(key string) (tea.Model, tea.Cmd) {
	n := len(m.transcripts())
	switch key {
	case KeyUp, KeyK:
		if m.transcriptCursor > 0 {
			m.transcriptCursor--
			m.transcriptScroll = 0
		}
	case KeyDown, KeyJ:
		if m.transcriptCursor < n-1 {
			m.transcriptCursor++
			m.transcriptScroll = 0
		}
	case KeyPgDown:
		m.transcriptScroll += m.pageStep()
	case KeyPgUp:
		m.transcriptScroll = max(0, m.transcriptScroll-m.pageStep())
	}
	return m, nil
}

func (m Model) handleAnalysisKey(key string) (tea.Model, tea.Cmd) {
	stats := m.statistics()
	switch key {
	case KeyUp, KeyK:
		if m.statsCursor > 0 {
			m.statsCursor--
		}
	case KeyDown, KeyJ:
		if m.statsCursor < len(stats)-1 {
			m.statsCursor++
		}
	case KeyEnter:
		if len(stats) == 0 {
			return m, nil
		}
		e := stats[m.statsCursor]
		m.setStatus("Carregando " + e.Name + "...")
		return m, analyzeCmd(e)
	case KeyPgDown:
		m.analysisScroll += m.pageStep()
	case KeyPgUp:
		m.analysisScroll = max(0, m.analysisScroll-m.pageStep())
	}
	return m, nil
}

func (m Model) handleReportsKey(key string) (tea.Model, tea.Cmd) {
	sources := m.reportSources()
	switch key {
	case KeyUp, KeyK:
		if m.sourceCursor > 0 {
			m.sourceCursor--
		}
	case KeyDown, KeyJ:
		if m.sourceCursor < len(sources)-1 {
			m.sourceCursor++
		}
	case KeyType:
		m.reportType = (m.reportType + 1) % len(reports.AllTypes)
	case KeyMode:
		if m.reportMode == reports.ModeText {
			m.reportMode = reports.ModeStructured
		} else {
			m.reportMode = reports.ModeText
		}
	case KeyPgDown:
		m.reportScroll += m.pageStep()
	case KeyPgUp:
		m.reportScroll = max(0, m.reportScroll-m.pageStep())
	case KeySave:
		r := m.deps.Session.Report()
		if r == nil {
			m.setError("Nenhum relatório para salvar.")
			return m, nil
		}
		return m, saveReportCmd(r, m.deps.SaveDir, m.deps.Now())
	case KeyGenerate, KeyEnter:
		if m.deps.Generator == nil || !m.deps.Session.HasAPIKey() {
			m.setError(missingKeyNotice)
			return m, nil
		}
		if len(sources) == 0 {
			m.setError("Nenhuma fonte disponível.")
			return m, nil
		}
		if err := m.deps.Session.TryBegin("report"); err != nil {
			m.setError(busyText(m.deps.Session.Busy()))
			return m, nil
		}
		src := sources[m.sourceCursor]
		t := reports.AllTypes[m.reportType]
		m.reportErr = ""
		m.reportRaw = ""
		m.setStatus("Gerando relatório... Isso pode levar alguns instantes.")
		return m, generateCmd(m.actionContext(), m.deps.Generator, src, t, m.reportMode)
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	names := m.meetingNames()
	switch msg.Type {
	case tea.KeyUp:
		if m.chatCursor > 0 {
			m.chatCursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.chatCursor < len(names)-1 {
			m.chatCursor++
		}
		return m, nil
	case tea.KeyPgUp:
		m.chatScroll += m.pageStep()
		return m, nil
	case tea.KeyPgDown:
		m.chatScroll = max(0, m.chatScroll-m.pageStep())
		return m, nil
	case tea.KeyCtrlT:
		if len(names) > 0 {
			name := names[m.chatCursor]
			m.chatSelected[name] = !m.chatSelected[name]
		}
		return m, nil
	case tea.KeyEsc:
		m.input = nil
		return m, nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeySpace:
		m.input = append(m.input, ' ')
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if unicode.IsPrint(r) {
				m.input = append(m.input, r)
			}
		}
		return m, nil
	case tea.KeyEnter:
		return m.submitQuestion()
	}
	return m, nil
}

func (m Model) submitQuestion() (tea.Model, tea.Cmd) {
	q := string(m.input)
	if isBlank(q) {
		m.setError("Por favor, digite uma pergunta.")
		return m, nil
	}
	if m.deps.Answerer == nil || !m.deps.Session.HasAPIKey() {
		m.setError(missingKeyNotice)
		return m, nil
	}
	if m.corpus == nil || m.corpus.Len() == 0 {
		m.setError("Nenhum documento encontrado no diretório '" + m.deps.OutputDir + "'.")
		return m, nil
	}
	if err := m.deps.Session.TryBegin("chat"); err != nil {
		m.setError(busyText(m.deps.Session.Busy()))
		return m, nil
	}
	m.input = nil
	m.chatScroll = 0
	m.setStatus("Processando sua pergunta...")
	return m, askCmd(m.actionContext(), m.deps.Answerer, m.deps.Session.History, q, m.corpus, m.selectedMeetings())
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func busyText(action string) string {
	return "Aguarde: ação em andamento (" + action + ")."
}

// pageStep is how far PgUp/PgDown scroll.
func (m Model) pageStep() int {
	if h := m.bodyHeight() / 2; h > 1 {
		return h
	}
	return 5
}
