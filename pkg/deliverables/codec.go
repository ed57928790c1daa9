// Package deliverables parses and formats the output-directory naming
// convention {kind}_{meeting}.{ext} that pairs an HTML transcript with its
// Excel statistics export.
package deliverables

import (
	"path/filepath"
	"regexp"
)

// Kind identifies the two artifacts produced per meeting.
type Kind string

const (
	// KindTranscript is the HTML transcript (html_{meeting}.html).
	KindTranscript Kind = "html"
	// KindStatistics is the per-utterance workbook (excel_{meeting}.xlsx).
	KindStatistics Kind = "excel"
)

// Extension returns the file extension (without dot) paired with the kind.
func (k Kind) Extension() string {
	switch k {
	case KindTranscript:
		return "html"
	case KindStatistics:
		return "xlsx"
	default:
		return ""
	}
}

// Label returns a short human-readable label.
func (k Kind) Label() string {
	switch k {
	case KindTranscript:
		return "transcrição"
	case KindStatistics:
		return "estatísticas"
	default:
		return string(k)
	}
}

// The name group is greedy so it runs to the final extension dot and keeps
// any inner underscores or dots.
var filenamePattern = regexp.MustCompile(`^(html|excel)_(.+)\.(html|xlsx)$`)

// File is one artifact discovered in the output directory.
type File struct {
	Kind        Kind   `json:"kind" yaml:"kind"`
	MeetingName string `json:"meeting_name" yaml:"meeting_name"`
	Extension   string `json:"extension" yaml:"extension"`
	// Name is the base filename as found on disk.
	Name string `json:"name" yaml:"name"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Parse decodes a filename (or path) following the convention. It returns
// false when the name does not match or kind and extension disagree.
func Parse(filename string) (File, bool) {
	base := filepath.Base(filename)
	m := filenamePattern.FindStringSubmatch(base)
	if m == nil {
		return File{}, false
	}

	kind := Kind(m[1])
	if kind.Extension() != m[3] {
		return File{}, false
	}

	return File{
		Kind:        kind,
		MeetingName: m[2],
		Extension:   m[3],
		Name:        base,
		Path:        filename,
	}, true
}

// Format builds the filename for a meeting artifact. It is the inverse of Parse.
func Format(kind Kind, meetingName string) string {
	return string(kind) + "_" + meetingName + "." + kind.Extension()
}

// DisplayName returns the meeting name when filename follows the
// convention, otherwise the raw base filename.
func DisplayName(filename string) string {
	if f, ok := Parse(filename); ok {
		return f.MeetingName
	}
	return filepath.Base(filename)
}
