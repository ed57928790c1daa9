package stats

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.BrazilianPortuguese)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Portuguese stopwords, matching the list NLTK ships for "portuguese".
var stopwords = toSet(
	"a", "à", "ao", "aos", "aquela", "aquelas", "aquele", "aqueles", "aquilo", "as", "às", "até",
	"com", "como", "da", "das", "de", "dela", "delas", "dele", "deles", "depois", "do", "dos",
	"e", "é", "ela", "elas", "ele", "eles", "em", "entre", "era", "eram", "éramos", "essa",
	"essas", "esse", "esses", "esta", "está", "estamos", "estão", "estar", "estas", "estava",
	"estavam", "estávamos", "este", "esteja", "estejam", "estejamos", "estes", "esteve",
	"estive", "estivemos", "estiver", "estivera", "estiveram", "estivéramos", "estiverem",
	"estivermos", "estivesse", "estivessem", "estivéssemos", "estou", "eu", "foi", "fomos",
	"for", "fora", "foram", "fôramos", "forem", "formos", "fosse", "fossem", "fôssemos", "fui",
	"há", "haja", "hajam", "hajamos", "hão", "havemos", "haver", "hei", "houve", "houvemos",
	"houver", "houvera", "houverá", "houveram", "houvéramos", "houverão", "houverei",
	"houverem", "houveremos", "houveria", "houveriam", "houveríamos", "houvermos", "houvesse",
	"houvessem", "houvéssemos", "isso", "isto", "já", "lhe", "lhes", "mais", "mas", "me",
	"mesmo", "meu", "meus", "minha", "minhas", "muito", "na", "não", "nas", "nem", "no", "nos",
	"nós", "nossa", "nossas", "nosso", "nossos", "num", "numa", "o", "os", "ou", "para", "pela",
	"pelas", "pelo", "pelos", "por", "qual", "quando", "que", "quem", "são", "se", "seja",
	"sejam", "sejamos", "sem", "ser", "será", "serão", "serei", "seremos", "seria", "seriam",
	"seríamos", "seu", "seus", "só", "somos", "sou", "sua", "suas", "também", "te", "tem",
	"têm", "temos", "tenha", "tenham", "tenhamos", "tenho", "terá", "terão", "terei", "teremos",
	"teria", "teriam", "teríamos", "teu", "teus", "teve", "tinha", "tinham", "tínhamos", "tive",
	"tivemos", "tiver", "tivera", "tiveram", "tivéramos", "tiverem", "tivermos", "tivesse",
	"tivessem", "tivéssemos", "tu", "tua", "tuas", "um", "uma", "você", "vocês", "vos",
)

var (
	positiveWords = toSet(
		"bom", "ótimo", "excelente", "positivo", "feliz", "concordo", "aprovado",
		"sucesso", "eficiente", "eficaz", "melhor", "progresso", "avanço",
	)
	negativeWords = toSet(
		"ruim", "péssimo", "negativo", "triste", "discordo", "reprovado",
		"fracasso", "ineficiente", "ineficaz", "pior", "problema", "dificuldade",
	)
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// IsStopword reports whether w (lower-case) is a Portuguese stopword.
func IsStopword(w string) bool { return stopwords[w] }

// Tokenize lower-cases text and returns its purely alphabetic tokens.
// Tokens with digits, hyphens or apostrophes are dropped whole.
func Tokenize(text string) []string {
	raw := strings.FieldsFunc(lower.String(text), func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '-' && r != '\'') || unicode.IsSymbol(r)
	})

	tokens := raw[:0]
	for _, tok := range raw {
		if isAlpha(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ContentWords returns the tokens of text that are not stopwords.
func ContentWords(text string) []string {
	tokens := Tokenize(text)
	out := tokens[:0]
	for _, t := range tokens {
		if !stopwords[t] {
			out = append(out, t)
		}
	}
	return out
}

// Sentiment scores text in [-1, 1] as (pos-neg)/(pos+neg) over the lexicon.
// Text without lexicon words scores 0.
func Sentiment(text string) float64 {
	var pos, neg int
	for _, tok := range Tokenize(text) {
		switch {
		case positiveWords[tok]:
			pos++
		case negativeWords[tok]:
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// SentenceCount counts the pieces text splits into on runs of [.!?], so a
// trailing terminator yields an extra, empty piece.
func SentenceCount(text string) int {
	return len(sentenceBoundary.Split(text, -1))
}

// WordsPerSentence is the whitespace word count over max(1, SentenceCount).
func WordsPerSentence(text string) float64 {
	n := SentenceCount(text)
	if n < 1 {
		n = 1
	}
	return float64(len(strings.Fields(text))) / float64(n)
}

// WordCount is a word with its frequency.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// TopWords ranks tokens by frequency, breaking ties by first appearance.
func TopWords(tokens []string, n int) []WordCount {
	counts := make(map[string]int)
	var order []string
	for _, t := range tokens {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	out := make([]WordCount, len(order))
	for i, w := range order {
		out[i] = WordCount{Word: w, Count: counts[w]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
