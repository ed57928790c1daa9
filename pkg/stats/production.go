package stats

import (
	"fmt"
	"math"
	"sort"
)

// MaxWPM caps the per-row speaking rate.
const MaxWPM = 500

// Phase boundaries as fractions of the latest utterance start.
const (
	phaseStartCut = 0.33
	phaseEndCut   = 0.67
)

// Phase names in meeting order.
const (
	PhaseStart  = "Início"
	PhaseMiddle = "Meio"
	PhaseEnd    = "Fim"
)

// SpeakerProduction aggregates one speaker of a production table.
type SpeakerProduction struct {
	Name            string  `json:"name" yaml:"name"`
	Utterances      int     `json:"utterances" yaml:"utterances"`
	TotalWords      float64 `json:"total_words" yaml:"total_words"`
	AvgWords        float64 `json:"avg_words" yaml:"avg_words"`
	TotalDuration   float64 `json:"total_duration_seconds" yaml:"total_duration_seconds"`
	AvgDuration     float64 `json:"avg_duration_seconds" yaml:"avg_duration_seconds"`
	DurationMinutes float64 `json:"duration_minutes" yaml:"duration_minutes"`
	DurationShare   float64 `json:"duration_share" yaml:"duration_share"`
	AvgWPM          float64 `json:"avg_wpm" yaml:"avg_wpm"`
}

// PhaseParticipation counts utterances per speaker within one phase.
type PhaseParticipation struct {
	Phase  string         `json:"phase" yaml:"phase"`
	Counts map[string]int `json:"counts" yaml:"counts"`
	Total  int            `json:"total" yaml:"total"`
}

// ProductionMetrics is derived from a locutor/inicio/fim/duracao/palavras table.
type ProductionMetrics struct {
	Participants         int                  `json:"participants" yaml:"participants"`
	Utterances           int                  `json:"utterances" yaml:"utterances"`
	TotalDurationMinutes float64              `json:"total_duration_minutes" yaml:"total_duration_minutes"`
	TotalWords           float64              `json:"total_words" yaml:"total_words"`
	Speakers             []SpeakerProduction  `json:"speakers" yaml:"speakers"`
	Phases               []PhaseParticipation `json:"phases" yaml:"phases"`
	// RowWPM holds the clamped rate of each row, in table order.
	RowWPM []float64 `json:"row_wpm" yaml:"row_wpm"`
}

// WPM returns palavras/duracao*60 clamped to [0, MaxWPM]; non-finite or
// missing inputs yield 0.
func WPM(words, seconds float64) float64 {
	v := words / seconds * 60
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(MaxWPM, v))
}

// Production computes the metrics of a production-schema table.
func Production(t *Table) (*ProductionMetrics, error) {
	if t.Schema != SchemaProduction {
		return nil, fmt.Errorf("table schema is %s, want %s", t.Schema, SchemaProduction)
	}

	m := &ProductionMetrics{Utterances: len(t.Rows), RowWPM: make([]float64, len(t.Rows))}

	type acc struct {
		utterances int
		words      float64
		wordsN     int
		duration   float64
		durationN  int
		wpm        float64
	}
	bySpeaker := make(map[string]*acc)
	var totalDuration float64

	for i, row := range t.Rows {
		words, hasWords := row.Number("palavras")
		duration, hasDuration := row.Number("duracao")

		wpm := 0.0
		if hasWords && hasDuration {
			wpm = WPM(words, duration)
		}
		m.RowWPM[i] = wpm

		if hasWords {
			m.TotalWords += words
		}
		if hasDuration {
			totalDuration += duration
		}

		speaker := row.Text("locutor")
		if speaker == "" {
			continue
		}
		a := bySpeaker[speaker]
		if a == nil {
			a = &acc{}
			bySpeaker[speaker] = a
		}
		a.utterances++
		a.wpm += wpm
		if hasWords {
			a.words += words
			a.wordsN++
		}
		if hasDuration {
			a.duration += duration
			a.durationN++
		}
	}

	m.TotalDurationMinutes = totalDuration / 60

	names := sortedKeys(bySpeaker)
	m.Participants = len(names)

	var speakerDuration float64
	for _, a := range bySpeaker {
		speakerDuration += a.duration
	}

	for _, name := range names {
		a := bySpeaker[name]
		s := SpeakerProduction{
			Name:            name,
			Utterances:      a.utterances,
			TotalWords:      round1(a.words),
			TotalDuration:   round1(a.duration),
			DurationMinutes: a.duration / 60,
			DurationShare:   round1(percent(a.duration, speakerDuration)),
			AvgWPM:          a.wpm / float64(a.utterances),
		}
		if a.wordsN > 0 {
			s.AvgWords = round1(a.words / float64(a.wordsN))
		}
		if a.durationN > 0 {
			s.AvgDuration = round1(a.duration / float64(a.durationN))
		}
		m.Speakers = append(m.Speakers, s)
	}
	sort.SliceStable(m.Speakers, func(i, j int) bool { return m.Speakers[i].Utterances > m.Speakers[j].Utterances })

	m.Phases = phases(t.Rows)
	return m, nil
}

// phases splits rows with a numeric inicio at 33% and 67% of the latest start.
func phases(rows []Row) []PhaseParticipation {
	out := []PhaseParticipation{
		{Phase: PhaseStart, Counts: map[string]int{}},
		{Phase: PhaseMiddle, Counts: map[string]int{}},
		{Phase: PhaseEnd, Counts: map[string]int{}},
	}

	maxStart := math.Inf(-1)
	for _, row := range rows {
		if v, ok := row.Number("inicio"); ok && v > maxStart {
			maxStart = v
		}
	}
	if math.IsInf(maxStart, -1) {
		return out
	}

	for _, row := range rows {
		start, ok := row.Number("inicio")
		speaker := row.Text("locutor")
		if !ok || speaker == "" {
			continue
		}
		idx := 1
		if start <= maxStart*phaseStartCut {
			idx = 0
		}
		// Fim is applied last and wins when both cuts hold (maxStart == 0).
		if start >= maxStart*phaseEndCut {
			idx = 2
		}
		out[idx].Counts[speaker]++
		out[idx].Total++
	}
	return out
}

// Analysis bundles whichever metrics apply to a table.
type Analysis struct {
	Schema       Schema               `json:"schema" yaml:"schema"`
	Columns      []string             `json:"columns" yaml:"columns"`
	Conversation *ConversationMetrics `json:"conversation,omitempty" yaml:"conversation,omitempty"`
	Production   *ProductionMetrics   `json:"production,omitempty" yaml:"production,omitempty"`
}

// Analyze computes the metrics for the table's schema. Unknown schemas
// return an Analysis carrying only the columns, never an error.
func Analyze(t *Table) *Analysis {
	a := &Analysis{Schema: t.Schema, Columns: t.Columns}
	switch t.Schema {
	case SchemaConversation:
		a.Conversation, _ = Conversation(t)
	case SchemaProduction:
		a.Production, _ = Production(t)
	}
	return a
}
