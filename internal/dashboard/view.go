package dashboard

import (
	"fmt"
	"strings"

	"github.com/otherjamesbrown/entregaveis/internal/ui"
	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	listMaxLines  = 8
)

// View renders the whole screen.
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.viewWidth())))
	sections = append(sections, m.renderBody())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.viewWidth())))
	sections = append(sections, m.renderStatus())
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) viewWidth() int {
	if m.width > 0 {
		return m.width
	}
	return defaultWidth
}

func (m Model) bodyHeight() int {
	h := m.height
	if h == 0 {
		h = defaultHeight
	}
	// header, two dividers, status, footer
	if h -= 5; h < 5 {
		h = 5
	}
	return h
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, pageCount)
	for i, title := range pageTitles {
		label := fmt.Sprintf("%d %s", i+1, title)
		if Page(i) == m.page {
			tabs = append(tabs, ui.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, ui.TabStyle.Render(label))
		}
	}
	return ui.HeaderStyle.Render("Entregáveis da Consultoria") + " " + strings.Join(tabs, "")
}

func (m Model) renderStatus() string {
	var parts []string
	if busy := m.deps.Session.Busy(); busy != "" {
		parts = append(parts, ui.BusyStyle.Render("⏳ "+busy))
	}
	if m.statusErr {
		parts = append(parts, ui.ErrorStyle.Render(m.status))
	} else {
		parts = append(parts, ui.DimStyle.Render(m.status))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderFooter() string {
	type binding struct{ key, desc string }
	common := []binding{{"tab", "página"}, {"ctrl+c", "sair"}}
	var keys []binding
	switch m.page {
	case PageHome:
		keys = []binding{{"e", "exportar .zip"}, {"r", "recarregar"}}
	case PageTranscripts:
		keys = []binding{{"↑↓", "transcrição"}, {"pgup/pgdn", "rolar"}}
	case PageAnalysis:
		keys = []binding{{"↑↓", "planilha"}, {"enter", "analisar"}, {"pgup/pgdn", "rolar"}}
	case PageReports:
		keys = []binding{{"↑↓", "fonte"}, {"t", "tipo"}, {"m", "modo"}, {"g", "gerar"}, {"s", "salvar"}}
	case PageChat:
		keys = []binding{{"↑↓", "reunião"}, {"ctrl+t", "selecionar"}, {"enter", "enviar"}, {"esc", "limpar"}}
	}
	keys = append(keys, common...)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, ui.FooterKeyStyle.Render(k.key)+" "+ui.FooterDescStyle.Render(k.desc))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderBody() string {
	var lines []string
	switch {
	case !m.loaded:
		lines = []string{ui.DimStyle.Render("Carregando...")}
	case m.loadErr != "" && m.page != PageHome:
		lines = []string{ui.ErrorStyle.Render(m.loadErr)}
	default:
		switch m.page {
		case PageHome:
			lines = m.homeLines()
		case PageTranscripts:
			lines = m.transcriptLines()
		case PageAnalysis:
			lines = m.analysisLines()
		case PageReports:
			lines = m.reportLines()
		case PageChat:
			lines = m.chatLines()
		}
	}
	return fitLines(lines, m.bodyHeight())
}

// fitLines pads or cuts lines to exactly h rows.
func fitLines(lines []string, h int) string {
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// window returns at most h lines starting at offset, clamped to the content.
func window(lines []string, offset, h int) []string {
	if h <= 0 {
		return nil
	}
	maxOff := len(lines) - h
	if maxOff < 0 {
		maxOff = 0
	}
	if offset > maxOff {
		offset = maxOff
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + h
	if end > len(lines) {
		end = len(lines)
	}
	return lines[offset:end]
}

func (m Model) homeLines() []string {
	lines := []string{
		ui.TitleStyle.Render("Entregáveis da Consultoria - Sara Carolayne"),
		"",
		"Diretório: " + m.deps.OutputDir,
	}
	if m.loadErr != "" {
		return append(lines, "", ui.ErrorStyle.Render(m.loadErr))
	}
	lines = append(lines,
		fmt.Sprintf("Transcrições (HTML): %d", m.listing.TranscriptCount()),
		fmt.Sprintf("Planilhas (Excel): %d", m.listing.StatisticsCount()),
		"",
	)
	if !m.deps.Session.HasAPIKey() {
		lines = append(lines, ui.NoticeStyle.Render(missingKeyNotice), "")
	}
	lines = append(lines, ui.SectionStyle.Render("Reuniões"))
	meetings := m.listing.Meetings()
	if len(meetings) == 0 {
		lines = append(lines, ui.DimStyle.Render("(nenhuma reunião encontrada)"))
	}
	for _, name := range meetings {
		lines = append(lines, "• "+name)
	}
	lines = append(lines, "", ui.DimStyle.Render("Pressione e para baixar todos os entregáveis em "+m.deps.ExportPath))
	return lines
}

// listLines renders a cursor list limited to listMaxLines rows.
func listLines(items []string, cursor int) []string {
	start := 0
	if cursor >= listMaxLines {
		start = cursor - listMaxLines + 1
	}
	var out []string
	for i := start; i < len(items) && i < start+listMaxLines; i++ {
		if i == cursor {
			out = append(out, ui.SelectedStyle.Render("▸ "+items[i]))
		} else {
			out = append(out, "  "+items[i])
		}
	}
	return out
}

func entryLabels(entries []deliverables.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.DisplayName)
	}
	return out
}

func (m Model) transcriptLines() []string {
	entries := m.transcripts()
	if len(entries) == 0 {
		return []string{ui.NoticeStyle.Render("Nenhuma transcrição encontrada.")}
	}
	lines := listLines(entryLabels(entries), m.transcriptCursor)
	lines = append(lines, ui.DividerStyle.Render(strings.Repeat("·", m.viewWidth())))

	e := entries[m.transcriptCursor]
	var doc *corpus.Document
	if m.corpus != nil && e.Parsed {
		doc, _ = m.corpus.Get(e.MeetingName)
	}
	var text []string
	if doc != nil {
		text = ui.Wrap(doc.PlainText, m.viewWidth())
	} else {
		text = []string{ui.NoticeStyle.Render("Arquivo fora do padrão html_{reunião}.html; não incluído no corpus.")}
	}
	return append(lines, window(text, m.transcriptScroll, m.bodyHeight()-len(lines))...)
}

func (m Model) analysisLines() []string {
	entries := m.statistics()
	if len(entries) == 0 {
		return []string{ui.NoticeStyle.Render("Nenhuma planilha encontrada.")}
	}
	lines := listLines(entryLabels(entries), m.statsCursor)
	lines = append(lines, ui.DividerStyle.Render(strings.Repeat("·", m.viewWidth())))

	var body []string
	switch {
	case m.analysisErr != "":
		body = []string{ui.ErrorStyle.Render(m.analysisErr)}
	case m.analysis != nil:
		body = append([]string{ui.TitleStyle.Render(m.analysisFor)},
			strings.Split(strings.TrimRight(ui.RenderAnalysis(m.analysis, m.viewWidth()), "\n"), "\n")...)
	default:
		body = []string{ui.DimStyle.Render("Pressione enter para analisar a planilha selecionada.")}
	}
	return append(lines, window(body, m.analysisScroll, m.bodyHeight()-len(lines))...)
}

func (m Model) reportLines() []string {
	sources := m.reportSources()
	labels := make([]string, 0, len(sources))
	for _, s := range sources {
		tag := "[HTML] "
		if s.Kind == deliverables.KindStatistics {
			tag = "[Excel]"
		}
		labels = append(labels, tag+" "+s.Meeting)
	}

	t := reports.AllTypes[m.reportType]
	def, _ := reports.Lookup(t)
	lines := []string{
		fmt.Sprintf("Tipo: %s  %s", ui.SelectedStyle.Render(def.Title), ui.DimStyle.Render(def.Description)),
		fmt.Sprintf("Modo: %s", m.reportMode),
	}
	if !m.deps.Session.HasAPIKey() {
		lines = append(lines, ui.NoticeStyle.Render(missingKeyNotice))
	}
	if len(labels) == 0 {
		lines = append(lines, ui.NoticeStyle.Render("Nenhuma fonte disponível."))
	} else {
		lines = append(lines, listLines(labels, m.sourceCursor)...)
	}
	lines = append(lines, ui.DividerStyle.Render(strings.Repeat("·", m.viewWidth())))

	var body []string
	switch r := m.deps.Session.Report(); {
	case m.reportErr != "":
		for _, l := range strings.Split(m.reportErr, "\n") {
			body = append(body, ui.ErrorStyle.Render(l))
		}
		if m.reportRaw != "" {
			body = append(body, "", ui.DimStyle.Render("Resposta recebida:"))
			body = append(body, ui.Wrap(m.reportRaw, m.viewWidth())...)
		}
	case r != nil:
		body = append(body, ui.TitleStyle.Render("Relatório: "+r.MeetingName+" - "+r.Title), "")
		body = append(body, ui.Wrap(reports.RenderMarkdown(r), m.viewWidth())...)
	default:
		body = []string{ui.DimStyle.Render("Escolha a fonte e o tipo, depois pressione g.")}
	}
	return append(lines, window(body, m.reportScroll, m.bodyHeight()-len(lines))...)
}

func (m Model) chatLines() []string {
	names := m.meetingNames()
	items := make([]string, 0, len(names))
	for _, n := range names {
		mark := "[ ]"
		if m.chatSelected[n] {
			mark = "[x]"
		}
		items = append(items, mark+" "+n)
	}

	var lines []string
	if !m.deps.Session.HasAPIKey() {
		lines = append(lines, ui.NoticeStyle.Render(missingKeyNotice))
	}
	if len(items) == 0 {
		lines = append(lines, ui.NoticeStyle.Render("Nenhum documento encontrado."))
	} else {
		lines = append(lines, listLines(items, m.chatCursor)...)
		scope := "todas as reuniões"
		if sel := m.selectedMeetings(); len(sel) > 0 {
			scope = strings.Join(sel, ", ")
		}
		lines = append(lines, ui.DimStyle.Render("Contexto: "+scope))
	}
	lines = append(lines, ui.DividerStyle.Render(strings.Repeat("·", m.viewWidth())))

	var convo []string
	for _, turn := range m.deps.Session.History.Turns() {
		label := ui.UserTurnStyle.Render("Você:")
		if turn.Role == chat.RoleAssistant {
			label = ui.AssistantTurnStyle.Render("Assistente:")
		}
		convo = append(convo, label)
		convo = append(convo, ui.Wrap(turn.Content, m.viewWidth())...)
		convo = append(convo, "")
	}

	input := "> " + string(m.input) + "▌"
	h := m.bodyHeight() - len(lines) - 1
	// chatScroll counts lines up from the newest turn.
	start := len(convo) - h - m.chatScroll
	lines = append(lines, window(convo, start, h)...)
	for len(lines) < m.bodyHeight()-1 {
		lines = append(lines, "")
	}
	return append(lines, input)
}
