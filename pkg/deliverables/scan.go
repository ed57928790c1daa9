package deliverables

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
)

// Entry is a listed file with its parsed metadata. Parsed is false for
// files that do not follow the naming convention.
type Entry struct {
	File
	Parsed      bool   `json:"parsed" yaml:"parsed"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Size        int64  `json:"size" yaml:"size"`
}

// Listing is a non-recursive view of the output directory.
type Listing struct {
	Dir         string  `json:"dir" yaml:"dir"`
	Transcripts []Entry `json:"transcripts" yaml:"transcripts"`
	Statistics  []Entry `json:"statistics" yaml:"statistics"`
}

// TranscriptCount is the number of .html files in the directory.
func (l *Listing) TranscriptCount() int { return len(l.Transcripts) }

// StatisticsCount is the number of .xlsx files in the directory.
func (l *Listing) StatisticsCount() int { return len(l.Statistics) }

// Meetings returns the distinct meeting names with a parsed transcript or
// workbook, in lexicographic order.
func (l *Listing) Meetings() []string {
	seen := make(map[string]bool)
	var names []string
	for _, group := range [][]Entry{l.Transcripts, l.Statistics} {
		for _, e := range group {
			if e.Parsed && !seen[e.MeetingName] {
				seen[e.MeetingName] = true
				names = append(names, e.MeetingName)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Find returns the parsed entry of the given kind for a meeting.
func (l *Listing) Find(kind Kind, meetingName string) (Entry, bool) {
	group := l.Transcripts
	if kind == KindStatistics {
		group = l.Statistics
	}
	for _, e := range group {
		if e.Parsed && e.MeetingName == meetingName {
			return e, true
		}
	}
	return Entry{}, false
}

// Scan lists the regular .html and .xlsx files directly under dir, sorted
// by raw filename. A missing directory wraps ErrNotFound.
func Scan(dir string) (*Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("output directory %s: %w", dir, eerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	listing := &Listing{Dir: dir}
	for _, de := range entries {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".html" && ext != ".xlsx" {
			continue
		}

		path := filepath.Join(dir, name)
		entry := Entry{DisplayName: DisplayName(name)}
		if f, ok := Parse(path); ok {
			entry.File = f
			entry.Parsed = true
		} else {
			entry.File = File{Name: name, Path: path, Extension: strings.TrimPrefix(ext, ".")}
		}
		if info, err := de.Info(); err == nil {
			entry.Size = info.Size()
		}

		if ext == ".html" {
			listing.Transcripts = append(listing.Transcripts, entry)
		} else {
			listing.Statistics = append(listing.Statistics, entry)
		}
	}

	sort.SliceStable(listing.Transcripts, func(i, j int) bool { return listing.Transcripts[i].Name < listing.Transcripts[j].Name })
	sort.SliceStable(listing.Statistics, func(i, j int) bool { return listing.Statistics[i].Name < listing.Statistics[j].Name })

	return listing, nil
}
