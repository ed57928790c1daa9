package ui

import (
	"fmt"
	"strings"

	"github.com/otherjamesbrown/entregaveis/pkg/stats"
)

// RenderAnalysis renders the metrics of a statistics table as text.
func RenderAnalysis(a *stats.Analysis, width int) string {
	if a == nil {
		return ""
	}
	switch {
	case a.Production != nil:
		return renderProduction(a.Production, width)
	case a.Conversation != nil:
		return renderConversation(a.Conversation, width)
	}
	return NoticeStyle.Render("Formato de planilha não reconhecido.") + "\n" +
		DimStyle.Render("Colunas encontradas: "+strings.Join(a.Columns, ", ")) + "\n"
}

func renderProduction(p *stats.ProductionMetrics, width int) string {
	var b strings.Builder

	b.WriteString(SectionStyle.Render("Métricas gerais") + "\n")
	fmt.Fprintf(&b, "Participantes: %d\n", p.Participants)
	fmt.Fprintf(&b, "Falas: %d\n", p.Utterances)
	fmt.Fprintf(&b, "Duração total: %.1f min\n", p.TotalDurationMinutes)
	fmt.Fprintf(&b, "Total de palavras: %.0f\n\n", p.TotalWords)

	bars := make([]Bar, 0, len(p.Speakers))
	for _, s := range p.Speakers {
		bars = append(bars, Bar{Label: s.Name, Value: s.DurationShare})
	}
	b.WriteString(SectionStyle.Render("Tempo de fala (%)") + "\n")
	b.WriteString(BarChart(bars, width, "%.1f%%") + "\n\n")

	bars = bars[:0]
	for _, s := range p.Speakers {
		bars = append(bars, Bar{Label: s.Name, Value: s.AvgWPM})
	}
	b.WriteString(SectionStyle.Render("Velocidade média (palavras/min)") + "\n")
	b.WriteString(BarChart(bars, width, "%.0f") + "\n\n")

	rows := make([][]string, 0, len(p.Speakers))
	for _, s := range p.Speakers {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("%d", s.Utterances),
			fmt.Sprintf("%.0f", s.TotalWords),
			fmt.Sprintf("%.1f", s.AvgWords),
			fmt.Sprintf("%.1f", s.DurationMinutes),
			fmt.Sprintf("%.1f", s.AvgDuration),
			fmt.Sprintf("%.1f", s.DurationShare),
			fmt.Sprintf("%.0f", s.AvgWPM),
		})
	}
	b.WriteString(SectionStyle.Render("Por participante") + "\n")
	b.WriteString(Table([]string{"Locutor", "Falas", "Palavras", "Média palavras", "Min", "Média s", "% tempo", "PPM"}, rows))
	b.WriteString("\n")

	if len(p.Phases) > 0 {
		b.WriteString(SectionStyle.Render("Participação por fase") + "\n")
		speakers := make([]string, 0, len(p.Speakers))
		for _, s := range p.Speakers {
			speakers = append(speakers, s.Name)
		}
		header := append([]string{"Fase"}, speakers...)
		header = append(header, "Total")
		rows = rows[:0]
		for _, ph := range p.Phases {
			row := []string{ph.Phase}
			for _, s := range speakers {
				row = append(row, fmt.Sprintf("%d", ph.Counts[s]))
			}
			row = append(row, fmt.Sprintf("%d", ph.Total))
			rows = append(rows, row)
		}
		b.WriteString(Table(header, rows))
	}
	return b.String()
}

func renderConversation(c *stats.ConversationMetrics, width int) string {
	var b strings.Builder

	b.WriteString(SectionStyle.Render("Métricas gerais") + "\n")
	fmt.Fprintf(&b, "Participantes: %d\n", c.Participants)
	fmt.Fprintf(&b, "Falas: %d\n", c.Utterances)
	if c.DurationMinutes != nil {
		fmt.Fprintf(&b, "Duração: %.1f min\n", *c.DurationMinutes)
	} else {
		b.WriteString("Duração: n/d\n")
	}
	fmt.Fprintf(&b, "Palavras: %d (únicas: %d, diversidade léxica: %.2f)\n\n",
		c.TotalWords, c.UniqueWords, c.LexicalDiversity)

	bars := make([]Bar, 0, len(c.Speakers))
	for _, s := range c.Speakers {
		bars = append(bars, Bar{Label: s.Name, Value: s.UtteranceShare})
	}
	b.WriteString(SectionStyle.Render("Participação (% de falas)") + "\n")
	b.WriteString(BarChart(bars, width, "%.1f%%") + "\n\n")

	rows := make([][]string, 0, len(c.Speakers))
	for _, s := range c.Speakers {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("%d", s.Utterances),
			fmt.Sprintf("%.1f", s.UtteranceShare),
			fmt.Sprintf("%d", s.Characters),
			fmt.Sprintf("%.1f", s.CharacterShare),
			fmt.Sprintf("%.1f", s.AvgCharsPerUtterance),
			fmt.Sprintf("%.1f", s.WordsPerSentence),
			fmt.Sprintf("%+.2f", s.Sentiment),
		})
	}
	b.WriteString(SectionStyle.Render("Por participante") + "\n")
	b.WriteString(Table([]string{"Locutor", "Falas", "% falas", "Caracteres", "% caracteres", "Média car.", "Palavras/frase", "Sentimento"}, rows))
	b.WriteString("\n")

	if n := len(c.Transitions.Speakers); n > 0 {
		b.WriteString(SectionStyle.Render("Transições entre locutores") + "\n")
		header := append([]string{"De \\ Para"}, c.Transitions.Speakers...)
		rows = rows[:0]
		for i, from := range c.Transitions.Speakers {
			row := []string{from}
			for j := range c.Transitions.Speakers {
				row = append(row, fmt.Sprintf("%d", c.Transitions.Counts[i][j]))
			}
			rows = append(rows, row)
		}
		b.WriteString(Table(header, rows))
		b.WriteString("\n")
	}

	if len(c.Segments) > 0 {
		b.WriteString(SectionStyle.Render("Tópicos por segmento") + "\n")
		for _, s := range c.Segments {
			kw := strings.Join(s.Keywords, ", ")
			if kw == "" {
				kw = "-"
			}
			fmt.Fprintf(&b, "%s (%d falas): %s\n", s.Label, s.Rows, kw)
		}
		b.WriteString("\n")
	}

	if len(c.TopWords) > 0 {
		bars = bars[:0]
		for _, w := range c.TopWords {
			bars = append(bars, Bar{Label: w.Word, Value: float64(w.Count)})
		}
		b.WriteString(SectionStyle.Render("Palavras mais frequentes") + "\n")
		b.WriteString(BarChart(bars, width, "%.0f") + "\n")
	}
	return b.String()
}
