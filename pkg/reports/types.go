// Package reports builds report prompts, calls the model and turns its answer
// into a structured or cleaned-text result.
package reports

import (
	"fmt"
	"strings"

	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
)

// Type identifies one of the fixed report kinds.
type Type string

const (
	TypeResumo          Type = "resumo"
	TypeResumoExpandido Type = "resumo_expandido"
	TypeInsights        Type = "insights"
	TypeAta             Type = "ata"
	TypePontosAcao      Type = "pontos_acao"
)

// AllTypes lists the report types in menu order.
var AllTypes = []Type{TypeResumo, TypeResumoExpandido, TypeInsights, TypeAta, TypePontosAcao}

// Mode selects how the model answer is interpreted.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeText       Mode = "text"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeStructured || m == ModeText
}

// Definition is everything the generator needs to know about a report type.
type Definition struct {
	Title string
	// Instruction opens the structured prompt.
	Instruction string
	// TextInstruction opens the free-text prompt.
	TextInstruction string
	// Shape is the JSON example the model must mimic, kept as text so key
	// order survives.
	Shape string
	// Description is the one-line menu help.
	Description string
}

const directAnswer = " Responda diretamente com o conteúdo, sem introduções ou explicações:"

// Lookup returns the definition of t.
func Lookup(t Type) (Definition, error) {
	switch t {
	case TypeResumo:
		instr := "Crie um resumo conciso da seguinte transcrição de reunião, destacando os principais pontos discutidos, decisões tomadas e próximos passos"
		return Definition{
			Title:           "Resumo Conciso",
			Instruction:     instr + ":",
			TextInstruction: instr + "." + directAnswer,
			Shape:           shapeResumo,
			Description:     "Versão curta com os principais pontos da reunião",
		}, nil
	case TypeResumoExpandido:
		instr := "Crie um resumo detalhado da seguinte transcrição de reunião, incluindo todos os tópicos discutidos, decisões tomadas, responsabilidades atribuídas e prazos estabelecidos"
		return Definition{
			Title:           "Resumo Expandido",
			Instruction:     instr + ":",
			TextInstruction: instr + "." + directAnswer,
			Shape:           shapeResumoExpandido,
			Description:     "Versão detalhada com todos os tópicos e decisões",
		}, nil
	case TypeInsights:
		instr := "Analise a seguinte transcrição de reunião e identifique insights importantes, padrões de comunicação, pontos de tensão, oportunidades de melhoria e recomendações"
		return Definition{
			Title:           "Insights e Recomendações",
			Instruction:     instr + ":",
			TextInstruction: instr + "." + directAnswer,
			Shape:           shapeInsights,
			Description:     "Análise aprofundada com recomendações e padrões identificados",
		}, nil
	case TypeAta:
		instr := "Crie uma ata formal da seguinte reunião, incluindo data, participantes, pauta, discussões, decisões e encaminhamentos"
		return Definition{
			Title:           "Ata Formal",
			Instruction:     instr + ":",
			TextInstruction: instr + "." + directAnswer,
			Shape:           shapeAta,
			Description:     "Documento estruturado no formato oficial de ata de reunião",
		}, nil
	case TypePontosAcao:
		instr := "Extraia da seguinte transcrição de reunião todos os pontos de ação, tarefas atribuídas, responsáveis e prazos mencionados"
		return Definition{
			Title:           "Pontos de Ação",
			Instruction:     instr + ":",
			TextInstruction: instr + "." + directAnswer,
			Shape:           shapePontosAcao,
			Description:     "Lista organizada de tarefas, responsáveis e prazos definidos",
		}, nil
	}
	return Definition{}, fmt.Errorf("%w: %q", eerrors.ErrUnknownReportType, string(t))
}

// ParseType accepts a report key or its title, case-insensitively.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for _, t := range AllTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
		if def, _ := Lookup(t); strings.EqualFold(s, def.Title) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", eerrors.ErrUnknownReportType, s)
}

// ParseMode accepts "structured" or "text"; empty means text.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeText, nil
	case ModeStructured, ModeText:
		return m, nil
	}
	return "", fmt.Errorf("%w: invalid report mode %q (must be structured or text)", eerrors.ErrValidation, s)
}

const shapeResumo = `{
  "resumo": "Resumo conciso da reunião",
  "principais_pontos": [
    "Ponto 1",
    "Ponto 2"
  ],
  "decisoes": [
    "Decisão 1",
    "Decisão 2"
  ],
  "proximos_passos": [
    "Passo 1",
    "Passo 2"
  ]
}`

const shapeResumoExpandido = `{
  "introducao": "Introdução sobre o contexto da reunião",
  "topicos_discutidos": [
    {
      "topico": "Tópico 1",
      "detalhes": "Detalhes da discussão"
    },
    {
      "topico": "Tópico 2",
      "detalhes": "Detalhes da discussão"
    }
  ],
  "decisoes": [
    {
      "decisao": "Decisão 1",
      "contexto": "Contexto da decisão"
    },
    {
      "decisao": "Decisão 2",
      "contexto": "Contexto da decisão"
    }
  ],
  "responsabilidades": [
    {
      "responsavel": "Nome",
      "tarefa": "Tarefa",
      "prazo": "Prazo"
    }
  ],
  "conclusao": "Conclusão da reunião"
}`

const shapeInsights = `{
  "insights_principais": [
    {
      "insight": "Insight 1",
      "explicacao": "Explicação detalhada"
    }
  ],
  "padroes_comunicacao": "Análise dos padrões de comunicação",
  "pontos_tensao": [
    "Ponto 1",
    "Ponto 2"
  ],
  "oportunidades_melhoria": [
    "Oportunidade 1",
    "Oportunidade 2"
  ],
  "recomendacoes": [
    "Recomendação 1",
    "Recomendação 2"
  ]
}`

const shapeAta = `{
  "cabecalho": {
    "titulo": "Título da reunião",
    "data": "Data da reunião",
    "horario": "Horário de início e término",
    "local": "Local ou plataforma",
    "participantes": [
      "Participante 1",
      "Participante 2"
    ]
  },
  "pauta": [
    "Item 1",
    "Item 2"
  ],
  "discussoes": [
    {
      "topico": "Tópico 1",
      "discussao": "Detalhes da discussão"
    }
  ],
  "decisoes": [
    "Decisão 1",
    "Decisão 2"
  ],
  "encaminhamentos": [
    {
      "acao": "Ação",
      "responsavel": "Responsável",
      "prazo": "Prazo"
    }
  ],
  "proxima_reuniao": "Data e hora da próxima reunião"
}`

const shapePontosAcao = `{
  "acoes": [
    {
      "acao": "Descrição da ação",
      "responsavel": "Nome do responsável",
      "prazo": "Prazo para conclusão",
      "contexto": "Contexto em que a ação foi definida"
    }
  ],
  "pendencias": [
    "Pendência 1",
    "Pendência 2"
  ],
  "observacoes": "Observações adicionais sobre os pontos de ação"
}`
