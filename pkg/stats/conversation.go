package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// SegmentCount is the number of contiguous row segments for keyword trends.
const SegmentCount = 5

// SpeakerConversation aggregates one speaker of a conversation table.
type SpeakerConversation struct {
	Name                 string  `json:"name" yaml:"name"`
	Utterances           int     `json:"utterances" yaml:"utterances"`
	UtteranceShare       float64 `json:"utterance_share" yaml:"utterance_share"`
	Characters           int     `json:"characters" yaml:"characters"`
	CharacterShare       float64 `json:"character_share" yaml:"character_share"`
	AvgCharsPerUtterance float64 `json:"avg_chars_per_utterance" yaml:"avg_chars_per_utterance"`
	WordsPerSentence     float64 `json:"words_per_sentence" yaml:"words_per_sentence"`
	Sentiment            float64 `json:"sentiment" yaml:"sentiment"`
}

// TransitionMatrix counts adjacent-row speaker changes. Counts[i][j] is the
// number of times Speakers[j] spoke right after Speakers[i].
type TransitionMatrix struct {
	Speakers []string `json:"speakers" yaml:"speakers"`
	Counts   [][]int  `json:"counts" yaml:"counts"`
}

// Get returns the count for the pair (from, to).
func (m TransitionMatrix) Get(from, to string) int {
	i, j := indexOf(m.Speakers, from), indexOf(m.Speakers, to)
	if i < 0 || j < 0 {
		return 0
	}
	return m.Counts[i][j]
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// Segment holds the top keywords of one contiguous slice of rows.
type Segment struct {
	Label    string   `json:"label" yaml:"label"`
	Rows     int      `json:"rows" yaml:"rows"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// ConversationMetrics is derived from a timestamp/speaker/text table.
type ConversationMetrics struct {
	Participants int `json:"participants" yaml:"participants"`
	Utterances   int `json:"utterances" yaml:"utterances"`
	// DurationMinutes is nil when the timestamps do not parse.
	DurationMinutes  *float64              `json:"duration_minutes" yaml:"duration_minutes"`
	Speakers         []SpeakerConversation `json:"speakers" yaml:"speakers"`
	Transitions      TransitionMatrix      `json:"transitions" yaml:"transitions"`
	Segments         []Segment             `json:"segments" yaml:"segments"`
	TotalWords       int                   `json:"total_words" yaml:"total_words"`
	UniqueWords      int                   `json:"unique_words" yaml:"unique_words"`
	LexicalDiversity float64               `json:"lexical_diversity" yaml:"lexical_diversity"`
	TopWords         []WordCount           `json:"top_words" yaml:"top_words"`
}

// Conversation computes the metrics of a conversation-schema table.
func Conversation(t *Table) (*ConversationMetrics, error) {
	if t.Schema != SchemaConversation {
		return nil, fmt.Errorf("table schema is %s, want %s", t.Schema, SchemaConversation)
	}

	m := &ConversationMetrics{Utterances: len(t.Rows)}
	m.DurationMinutes = conversationDuration(t.Rows)

	type acc struct {
		utterances int
		chars      int
		wps        float64
		sentiment  float64
	}
	bySpeaker := make(map[string]*acc)
	var sequence []string
	var texts []string
	totalChars := 0

	for _, row := range t.Rows {
		speaker := row.Text("speaker")
		text := row["text"]
		if strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
		if speaker == "" {
			continue
		}
		sequence = append(sequence, speaker)

		a := bySpeaker[speaker]
		if a == nil {
			a = &acc{}
			bySpeaker[speaker] = a
		}
		n := utf8.RuneCountInString(text)
		a.utterances++
		a.chars += n
		a.wps += WordsPerSentence(text)
		a.sentiment += Sentiment(text)
		totalChars += n
	}

	names := sortedKeys(bySpeaker)
	m.Participants = len(names)
	for _, name := range names {
		a := bySpeaker[name]
		s := SpeakerConversation{
			Name:                 name,
			Utterances:           a.utterances,
			UtteranceShare:       round1(percent(float64(a.utterances), float64(m.Utterances))),
			Characters:           a.chars,
			CharacterShare:       round1(percent(float64(a.chars), float64(totalChars))),
			AvgCharsPerUtterance: round1(float64(a.chars) / float64(a.utterances)),
			WordsPerSentence:     a.wps / float64(a.utterances),
			Sentiment:            a.sentiment / float64(a.utterances),
		}
		m.Speakers = append(m.Speakers, s)
	}
	sort.SliceStable(m.Speakers, func(i, j int) bool { return m.Speakers[i].Utterances > m.Speakers[j].Utterances })

	m.Transitions = transitions(names, sequence)
	m.Segments = segments(t.Rows)

	all := strings.Join(texts, " ")
	words := strings.Fields(all)
	m.TotalWords = len(words)
	unique := make(map[string]bool, len(words))
	for _, w := range strings.Fields(lower.String(all)) {
		unique[w] = true
	}
	m.UniqueWords = len(unique)
	if m.TotalWords > 0 {
		m.LexicalDiversity = float64(m.UniqueWords) / float64(m.TotalWords)
	}
	m.TopWords = TopWords(ContentWords(all), 20)

	return m, nil
}

func conversationDuration(rows []Row) *float64 {
	if len(rows) == 0 {
		return nil
	}
	first, ok := rows[0].Time("timestamp")
	if !ok {
		return nil
	}
	minT, maxT := first, first
	for _, row := range rows[1:] {
		ts, ok := row.Time("timestamp")
		if !ok {
			return nil
		}
		if ts.Before(minT) {
			minT = ts
		}
		if ts.After(maxT) {
			maxT = ts
		}
	}
	d := maxT.Sub(minT).Minutes()
	return &d
}

func transitions(speakers, sequence []string) TransitionMatrix {
	m := TransitionMatrix{Speakers: speakers, Counts: make([][]int, len(speakers))}
	for i := range m.Counts {
		m.Counts[i] = make([]int, len(speakers))
	}
	for i := 0; i+1 < len(sequence); i++ {
		from, to := indexOf(speakers, sequence[i]), indexOf(speakers, sequence[i+1])
		m.Counts[from][to]++
	}
	return m
}

func segments(rows []Row) []Segment {
	n := len(rows)
	out := make([]Segment, SegmentCount)
	for i := 0; i < SegmentCount; i++ {
		part := rows[i*n/SegmentCount : (i+1)*n/SegmentCount]
		texts := make([]string, 0, len(part))
		for _, row := range part {
			if strings.TrimSpace(row["text"]) != "" {
				texts = append(texts, row["text"])
			}
		}
		keywords := make([]string, 0, 5)
		for _, wc := range TopWords(ContentWords(strings.Join(texts, " ")), 5) {
			keywords = append(keywords, wc.Word)
		}
		out[i] = Segment{Label: fmt.Sprintf("Segmento %d", i+1), Rows: len(part), Keywords: keywords}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
