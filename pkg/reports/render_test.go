package reports

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structured(t *testing.T, typ Type, js string) *Result {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(js), &data))
	def, err := Lookup(typ)
	require.NoError(t, err)
	return &Result{Type: typ, Title: def.Title, Mode: ModeStructured, MeetingName: "Kickoff", Structured: data, JSONText: js}
}

func TestRenderMarkdown_Text(t *testing.T) {
	r := &Result{Type: TypeResumo, Text: "## Livre\n\ntexto"}
	assert.Equal(t, "## Livre\n\ntexto", RenderMarkdown(r))
	assert.Equal(t, "", RenderMarkdown(nil))
}

func TestRenderMarkdown_Resumo(t *testing.T) {
	r := structured(t, TypeResumo, `{"resumo": "Breve", "principais_pontos": ["A", "B"], "decisoes": ["D"], "proximos_passos": []}`)

	md := RenderMarkdown(r)
	assert.Contains(t, md, "## Resumo da Reunião\n\nBreve\n\n")
	assert.Contains(t, md, "## Principais Pontos\n\n- A\n- B\n")
	assert.Contains(t, md, "## Decisões Tomadas\n\n- D\n")
	assert.Contains(t, md, "## Próximos Passos")
}

func TestRenderMarkdown_ResumoExpandido(t *testing.T) {
	r := structured(t, TypeResumoExpandido, `{
		"introducao": "Intro",
		"topicos_discutidos": [{"topico": "Orçamento", "detalhes": "Cortes"}],
		"decisoes": [{"decisao": "Aprovar", "contexto": "Unânime"}],
		"responsabilidades": [],
		"conclusao": "Fim"
	}`)

	md := RenderMarkdown(r)
	assert.Contains(t, md, "**Orçamento**\n\nCortes")
	assert.Contains(t, md, "**Aprovar**\n\nUnânime")
	assert.Contains(t, md, "## Responsabilidades Atribuídas\n\nNenhuma responsabilidade atribuída.")
	assert.Contains(t, md, "## Conclusão\n\nFim")
}

func TestRenderMarkdown_Insights(t *testing.T) {
	r := structured(t, TypeInsights, `{
		"insights_principais": [{"insight": "Pouca escuta", "explicacao": "Interrupções"}],
		"padroes_comunicacao": "Diretos",
		"pontos_tensao": ["Prazo"],
		"oportunidades_melhoria": ["Pauta"],
		"recomendacoes": ["Ata", "Timebox"]
	}`)

	md := RenderMarkdown(r)
	assert.Contains(t, md, "### Insight 1: Pouca escuta\n\nInterrupções")
	assert.Contains(t, md, "## Recomendações\n\n1. Ata\n2. Timebox\n")
}

func TestRenderMarkdown_Ata(t *testing.T) {
	r := structured(t, TypeAta, `{
		"cabecalho": {"data": "14/03", "horario": "9h", "local": "Meet", "participantes": ["Ana", "Bruno"]},
		"pauta": ["Abertura"],
		"discussoes": [],
		"decisoes": ["Seguir"],
		"encaminhamentos": [{"acao": "Enviar | ata", "responsavel": "Ana", "prazo": "sexta", "obs": "x"}]
	}`)

	md := RenderMarkdown(r)
	assert.True(t, strings.HasPrefix(md, "## Ata de Reunião\n"))
	assert.Contains(t, md, "**Data:** 14/03\n**Horário:** 9h\n**Local:** Meet")
	assert.Contains(t, md, "**Participantes:** Ana, Bruno")
	assert.Contains(t, md, "1. Abertura")
	assert.Contains(t, md, "| Ação | Responsável | Prazo | obs |")
	assert.Contains(t, md, `| Enviar \| ata | Ana | sexta | x |`)
	assert.Contains(t, md, "**Próxima reunião:** A definir")
}

func TestRenderMarkdown_PontosAcao(t *testing.T) {
	r := structured(t, TypePontosAcao, `{"acoes": [], "pendencias": ["Contrato"]}`)

	md := RenderMarkdown(r)
	assert.Contains(t, md, "Nenhum ponto de ação identificado.")
	assert.Contains(t, md, "- Contrato")
	assert.NotContains(t, md, "Observações")

	r = structured(t, TypePontosAcao, `{"acoes": [{"acao": "Ligar", "responsavel": "Bruno", "prazo": 3, "contexto": "cliente"}], "observacoes": "Urgente"}`)
	md = RenderMarkdown(r)
	assert.Contains(t, md, "| Ligar | Bruno | 3 | cliente |")
	assert.Contains(t, md, "## Observações\n\nUrgente")
}

func TestRenderHTML(t *testing.T) {
	r := structured(t, TypeResumo, `{"resumo": "Breve <script>", "principais_pontos": ["A"], "decisoes": [], "proximos_passos": []}`)
	r.MeetingName = "Kick & off"

	page, err := RenderHTML(r, fixedNow)
	require.NoError(t, err)

	assert.Contains(t, page, `<html lang="pt-BR">`)
	assert.Contains(t, page, "<title>Resumo Conciso - Kick &amp; off</title>")
	assert.Contains(t, page, "<h1>Resumo Conciso</h1>")
	assert.Contains(t, page, "<strong>Reunião:</strong> Kick &amp; off")
	assert.Contains(t, page, "<strong>Data de geração:</strong> 14/03/2025 às 09:05")
	assert.Contains(t, page, "<h2>Resumo da Reunião</h2>")
	assert.Contains(t, page, "<li>A</li>")
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "Relatório gerado automaticamente")
	assert.Contains(t, page, "Sara Carolayne - Entregáveis da Consultoria")
}

func TestRenderHTML_TextWithTable(t *testing.T) {
	r := &Result{Type: TypePontosAcao, Title: "Pontos de Ação", MeetingName: "m", Text: "| A | B |\n| --- | --- |\n| 1 | 2 |\n\nlinha1\nlinha2"}

	page, err := RenderHTML(r, fixedNow)
	require.NoError(t, err)
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "linha1<br>")
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "ata_Kickoff_2024.html", HTMLFilename(TypeAta, "Kickoff_2024"))
	assert.Equal(t, "relatorio_Kickoff_2024_ata.json", JSONFilename(TypeAta, "Kickoff_2024"))
}

func TestJSONDocument(t *testing.T) {
	r := structured(t, TypeResumo, `{"resumo":"Ação","principais_pontos":["<b>"]}`)

	out, err := JSONDocument(r)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"resumo\": \"Ação\",\n  \"principais_pontos\": [\n    \"<b>\"\n  ]\n}\n", string(out))

	text := &Result{Type: TypeAta, Title: "Ata Formal", MeetingName: "m", GeneratedAt: fixedNow, Text: "a <b>"}
	out, err = JSONDocument(text)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"conteudo": "a <b>"`)
	assert.Contains(t, string(out), `"tipo": "ata"`)
}
