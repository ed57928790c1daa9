package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
)

// LoadCorpus reads every .html file directly under dir whose name follows
// the deliverables convention. Files are visited in ascending raw filename
// order; names that do not parse are skipped and logged at debug level.
func LoadCorpus(dir string, logger logging.Logger) (*Corpus, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("loading corpus %s: %w", dir, eerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	c := newCorpus(dir)
	for _, name := range names {
		f, ok := deliverables.Parse(name)
		if !ok || f.Kind != deliverables.KindTranscript {
			logger.Debug("Skipping transcript with unrecognized name", logging.F("file", name))
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable transcript", logging.F("file", name), logging.Err(err))
			continue
		}

		raw := decodeText(data)
		c.put(&Document{
			MeetingName: f.MeetingName,
			Path:        path,
			RawMarkup:   raw,
			PlainText:   StripMarkup(raw),
		})
	}

	logger.Debug("Corpus loaded", logging.F("dir", dir), logging.F("documents", c.Len()))
	return c, nil
}

// Loader memoizes corpora per directory for the lifetime of a process.
type Loader struct {
	mu     sync.Mutex
	cache  map[string]*Corpus
	logger logging.Logger
}

// NewLoader creates a Loader. A nil logger discards output.
func NewLoader(logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{cache: make(map[string]*Corpus), logger: logger}
}

// Load returns the memoized corpus for dir, reading it on first use.
func (l *Loader) Load(dir string) (*Corpus, error) {
	key := filepath.Clean(dir)

	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.cache[key]; ok {
		return c, nil
	}
	c, err := LoadCorpus(key, l.logger)
	if err != nil {
		return nil, err
	}
	l.cache[key] = c
	return c, nil
}

// Invalidate drops the memoized corpus for dir.
func (l *Loader) Invalidate(dir string) {
	l.mu.Lock()
	delete(l.cache, filepath.Clean(dir))
	l.mu.Unlock()
}

// InvalidateAll drops every memoized corpus.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	l.cache = make(map[string]*Corpus)
	l.mu.Unlock()
}
