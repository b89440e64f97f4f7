// Package verse defines the verse entities and the wire format of the
// per-verse JSON documents the viewer is built on.
package verse

import (
	"math"
	"strings"
)

// LineRecord is one line of a verse document, immutable once fetched.
// The line number may be absent; such records sort as line 0.
type LineRecord struct {
	Chapter         string  `json:"chapter"`
	VerseNumber     float64 `json:"verse"`
	LineNumber      *int    `json:"line,omitempty"`
	Text            string  `json:"text"`
	Transliteration string  `json:"transliteration"`
	Translation     string  `json:"translation"`
}

// SortKey returns the effective line number used for ordering.
func (r LineRecord) SortKey() int {
	if r.LineNumber == nil {
		return 0
	}
	return *r.LineNumber
}

// VerseID returns the ID of the verse this record belongs to.
func (r LineRecord) VerseID() int {
	return int(math.Floor(r.VerseNumber))
}

// Verse is the core content unit: an integer ID, the chapter label of the
// group (first seen wins), and its lines ordered by line number.
type Verse struct {
	ID      int          `json:"id"`
	Chapter string       `json:"chapter"`
	Lines   []LineRecord `json:"lines"`
}

// SearchText joins the text/transliteration/translation of every line, in
// that per-line order, lines separated by a single space. The search engine
// matches against this concatenation.
func (v Verse) SearchText() string {
	parts := make([]string, 0, len(v.Lines)*3)
	for _, l := range v.Lines {
		parts = append(parts, l.Text, l.Transliteration, l.Translation)
	}
	return strings.Join(parts, " ")
}
