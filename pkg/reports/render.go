package reports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RenderMarkdown renders a result as Markdown. Structured results follow a
// per-type layout; free text is returned as is.
func RenderMarkdown(r *Result) string {
	if r == nil {
		return ""
	}
	if r.Structured == nil {
		return r.Text
	}

	var b mdBuilder
	d := r.Structured
	switch r.Type {
	case TypeResumo:
		b.heading("Resumo da Reunião")
		b.para(str(d, "resumo"))
		b.heading("Principais Pontos")
		b.bullets(strList(d, "principais_pontos"))
		b.heading("Decisões Tomadas")
		b.bullets(strList(d, "decisoes"))
		b.heading("Próximos Passos")
		b.bullets(strList(d, "proximos_passos"))

	case TypeResumoExpandido:
		b.heading("Introdução")
		b.para(str(d, "introducao"))
		b.heading("Tópicos Discutidos")
		for _, t := range objList(d, "topicos_discutidos") {
			b.bold(str(t, "topico"))
			b.para(str(t, "detalhes"))
		}
		b.heading("Decisões")
		for _, dec := range objList(d, "decisoes") {
			b.bold(str(dec, "decisao"))
			b.para(str(dec, "contexto"))
		}
		b.heading("Responsabilidades Atribuídas")
		b.table(objList(d, "responsabilidades"),
			[]string{"responsavel", "tarefa", "prazo"},
			"Nenhuma responsabilidade atribuída.")
		b.heading("Conclusão")
		b.para(str(d, "conclusao"))

	case TypeInsights:
		b.heading("Insights Principais")
		for i, in := range objList(d, "insights_principais") {
			b.subheading(fmt.Sprintf("Insight %d: %s", i+1, str(in, "insight")))
			b.para(str(in, "explicacao"))
		}
		b.heading("Padrões de Comunicação")
		b.para(str(d, "padroes_comunicacao"))
		b.heading("Pontos de Tensão")
		b.bullets(strList(d, "pontos_tensao"))
		b.heading("Oportunidades de Melhoria")
		b.bullets(strList(d, "oportunidades_melhoria"))
		b.heading("Recomendações")
		b.numbered(strList(d, "recomendacoes"))

	case TypeAta:
		head := obj(d, "cabecalho")
		title := str(head, "titulo")
		if title == "" {
			title = "Ata de Reunião"
		}
		b.heading(title)
		b.para("**Data:** " + str(head, "data") + "\n" +
			"**Horário:** " + str(head, "horario") + "\n" +
			"**Local:** " + str(head, "local"))
		b.para("**Participantes:** " + strings.Join(strList(head, "participantes"), ", "))
		b.heading("Pauta")
		b.numbered(strList(d, "pauta"))
		b.heading("Discussões")
		for _, disc := range objList(d, "discussoes") {
			b.bold(str(disc, "topico"))
			b.para(str(disc, "discussao"))
		}
		b.heading("Decisões")
		b.bullets(strList(d, "decisoes"))
		b.heading("Encaminhamentos")
		b.table(objList(d, "encaminhamentos"),
			[]string{"acao", "responsavel", "prazo"},
			"Nenhum encaminhamento registrado.")
		next := "A definir"
		if _, ok := d["proxima_reuniao"]; ok {
			next = str(d, "proxima_reuniao")
		}
		b.para("**Próxima reunião:** " + next)

	case TypePontosAcao:
		b.heading("Pontos de Ação")
		b.table(objList(d, "acoes"),
			[]string{"acao", "responsavel", "prazo", "contexto"},
			"Nenhum ponto de ação identificado.")
		b.heading("Pendências")
		b.bullets(strList(d, "pendencias"))
		if obs := str(d, "observacoes"); obs != "" {
			b.heading("Observações")
			b.para(obs)
		}

	default:
		for _, k := range sortedKeys(d) {
			b.heading(k)
			b.para(str(d, k))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// columnLabels are table headers for known keys; others print as is.
var columnLabels = map[string]string{
	"acao":        "Ação",
	"responsavel": "Responsável",
	"tarefa":      "Tarefa",
	"prazo":       "Prazo",
	"contexto":    "Contexto",
}

type mdBuilder struct {
	strings.Builder
}

func (b *mdBuilder) heading(s string)    { b.WriteString("## " + s + "\n\n") }
func (b *mdBuilder) subheading(s string) { b.WriteString("### " + s + "\n\n") }
func (b *mdBuilder) bold(s string) {
	if s != "" {
		b.WriteString("**" + s + "**\n\n")
	}
}

func (b *mdBuilder) para(s string) {
	if s = strings.TrimSpace(s); s != "" {
		b.WriteString(s + "\n\n")
	}
}

func (b *mdBuilder) bullets(items []string) {
	if len(items) == 0 {
		return
	}
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
	b.WriteString("\n")
}

func (b *mdBuilder) numbered(items []string) {
	if len(items) == 0 {
		return
	}
	for i, it := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, it)
	}
	b.WriteString("\n")
}

// table renders rows with the known columns first, then any extra keys in
// sorted order.
func (b *mdBuilder) table(rows []map[string]any, known []string, empty string) {
	if len(rows) == 0 {
		b.para(empty)
		return
	}

	cols := append([]string(nil), known...)
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}
	var extra []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	cols = append(cols, extra...)

	header := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, c := range cols {
		if label, ok := columnLabels[c]; ok {
			header[i] = label
		} else {
			header[i] = c
		}
		rule[i] = "---"
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("| " + strings.Join(rule, " | ") + " |\n")
	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cell(str(r, c))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// str renders any JSON value at key as text.
func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return text(m[key])
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, it := range x {
			parts = append(parts, text(it))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		parts := make([]string, 0, len(x))
		for _, k := range sortedKeys(x) {
			parts = append(parts, k+": "+text(x[k]))
		}
		return strings.Join(parts, "; ")
	}
	return fmt.Sprint(v)
}

func strList(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			out = append(out, text(it))
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

func obj(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	o, _ := m[key].(map[string]any)
	return o
}

func objList(m map[string]any, key string) []map[string]any {
	if m == nil {
		return nil
	}
	arr, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(arr))
	for _, it := range arr {
		if o, ok := it.(map[string]any); ok {
			out = append(out, o)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
