package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otherjamesbrown/entregaveis/pkg/stats"
)

func TestBarChart(t *testing.T) {
	out := BarChart([]Bar{{"Ana", 10}, {"Bruno", 5}, {"Caio", 0}}, 39, "%.0f")
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Ana    "))
	assert.Equal(t, 2*strings.Count(lines[1], barRune), strings.Count(lines[0], barRune))
	assert.Equal(t, 0, strings.Count(lines[2], barRune))
	assert.True(t, strings.HasSuffix(lines[0], " 10"))
}

func TestBarChart_Empty(t *testing.T) {
	assert.Contains(t, BarChart(nil, 40, ""), "sem dados")
}

func TestBarChart_TinyValueStillVisible(t *testing.T) {
	out := BarChart([]Bar{{"a", 1000}, {"b", 1}}, 30, "")
	lines := strings.Split(out, "\n")
	assert.Equal(t, 1, strings.Count(lines[1], barRune))
}

func TestPadRightAndTruncate(t *testing.T) {
	assert.Equal(t, "ação  ", PadRight("ação", 6))
	assert.Equal(t, "longo", PadRight("longo", 3))
	assert.Equal(t, "abc…", Truncate("abcdef", 4))
	assert.Equal(t, "abc", Truncate("abc", 4))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestWrap(t *testing.T) {
	lines := Wrap("um dois três quatro\n\ncinco", 9)
	assert.Equal(t, []string{"um dois", "três", "quatro", "", "cinco"}, lines)
}

func TestTable(t *testing.T) {
	out := Table([]string{"Nome", "N"}, [][]string{{"Ana", "1"}, {"Bruno", "22"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, []string{"Nome   N", "Ana    1", "Bruno  22"}, lines)
}

func TestRenderAnalysis_Production(t *testing.T) {
	tbl := stats.NewTable("Sheet1",
		[]string{"locutor", "inicio", "fim", "duracao", "palavras"},
		[][]string{
			{"Ana", "0", "30", "30", "60"},
			{"Bruno", "30", "60", "30", "30"},
		})
	out := RenderAnalysis(stats.Analyze(tbl), 60)

	assert.Contains(t, out, "Participantes: 2")
	assert.Contains(t, out, "Tempo de fala (%)")
	assert.Contains(t, out, "Participação por fase")
	assert.Contains(t, out, "Início")
}

func TestRenderAnalysis_Conversation(t *testing.T) {
	tbl := stats.NewTable("Sheet1",
		[]string{"timestamp", "speaker", "text"},
		[][]string{
			{"10:00:00", "Ana", "Bom dia a todos."},
			{"10:05:00", "Bruno", "Ótimo projeto."},
		})
	out := RenderAnalysis(stats.Analyze(tbl), 60)

	assert.Contains(t, out, "Duração: 5.0 min")
	assert.Contains(t, out, "Transições entre locutores")
	assert.Contains(t, out, "Segmento 1")
}

func TestRenderAnalysis_Unknown(t *testing.T) {
	tbl := stats.NewTable("Sheet1", []string{"a", "b"}, [][]string{{"1", "2"}})
	out := RenderAnalysis(stats.Analyze(tbl), 60)

	assert.Contains(t, out, "não reconhecido")
	assert.Contains(t, out, "a, b")
	assert.Equal(t, "", RenderAnalysis(nil, 60))
}
