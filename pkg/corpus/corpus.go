// Package corpus loads the HTML transcripts of an output directory into an
// in-memory corpus keyed by meeting name.
package corpus

// Document is one transcript. It is immutable once loaded.
type Document struct {
	MeetingName string `json:"meeting_name" yaml:"meeting_name"`
	Path        string `json:"path" yaml:"path"`
	RawMarkup   string `json:"-" yaml:"-"`
	PlainText   string `json:"plain_text,omitempty" yaml:"plain_text,omitempty"`
}

// Corpus maps meeting names to documents, preserving insertion order.
type Corpus struct {
	Dir   string
	order []string
	docs  map[string]*Document
}

func newCorpus(dir string) *Corpus {
	return &Corpus{Dir: dir, docs: make(map[string]*Document)}
}

// New builds a corpus from documents already in memory. Later duplicates
// replace earlier ones in place.
func New(dir string, docs ...*Document) *Corpus {
	c := newCorpus(dir)
	for _, d := range docs {
		c.put(d)
	}
	return c
}

// put inserts or replaces a document. A replaced name keeps its first position.
func (c *Corpus) put(doc *Document) {
	if _, exists := c.docs[doc.MeetingName]; !exists {
		c.order = append(c.order, doc.MeetingName)
	}
	c.docs[doc.MeetingName] = doc
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.order) }

// Names returns meeting names in load order.
func (c *Corpus) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Get returns the document for a meeting name.
func (c *Corpus) Get(name string) (*Document, bool) {
	doc, ok := c.docs[name]
	return doc, ok
}

// Documents returns all documents in load order.
func (c *Corpus) Documents() []*Document {
	out := make([]*Document, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.docs[name])
	}
	return out
}

// Select returns the documents for the given names in the order given,
// skipping names that are not loaded.
func (c *Corpus) Select(names []string) []*Document {
	out := make([]*Document, 0, len(names))
	for _, name := range names {
		if doc, ok := c.docs[name]; ok {
			out = append(out, doc)
		}
	}
	return out
}
