package reports

import "strings"

// MaxSourceChars is how much of the source text goes into a prompt.
const MaxSourceChars = 15000

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// BuildPrompt assembles the full prompt for one report.
func BuildPrompt(def Definition, source string, mode Mode) string {
	var b strings.Builder
	if mode == ModeStructured {
		b.WriteString(def.Instruction)
	} else {
		b.WriteString(def.TextInstruction)
	}
	b.WriteString("\n\nTranscrição:\n")
	b.WriteString(Truncate(source, MaxSourceChars))

	if mode == ModeStructured {
		b.WriteString("\n\nForneça a resposta em formato JSON estruturado conforme o exemplo a seguir:\n")
		b.WriteString(def.Shape)
		b.WriteString("\n\nResponda APENAS com o JSON, sem texto adicional.")
	} else {
		b.WriteString("\n\nForneça uma resposta estruturada e detalhada em português, começando diretamente com o conteúdo solicitado.")
	}
	return b.String()
}
