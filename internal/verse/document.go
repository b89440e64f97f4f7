package verse

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xeipuuv/gojsonschema"
)

// A verse document is a JSON array of line records. Upstream sources are not
// fully trusted: documents are checked against this schema before decoding,
// and text fields occasionally carry stray markup that must not reach the
// rendering surface.
const documentSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["chapter", "verse", "text", "transliteration", "translation"],
    "properties": {
      "chapter":         {"type": "string"},
      "verse":           {"type": "number"},
      "line":            {"type": "integer"},
      "text":            {"type": "string"},
      "transliteration": {"type": "string"},
      "translation":     {"type": "string"}
    }
  }
}`

var (
	schemaLoader = gojsonschema.NewStringLoader(documentSchema)
	stripPolicy  = bluemonday.StrictPolicy()
)

// DecodeDocument validates and decodes one fetched verse document.
func DecodeDocument(data []byte) ([]LineRecord, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid document: %s", strings.Join(msgs, "; "))
	}

	var records []LineRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for i := range records {
		records[i].Text = stripMarkup(records[i].Text)
		records[i].Transliteration = stripMarkup(records[i].Transliteration)
		records[i].Translation = stripMarkup(records[i].Translation)
	}
	return records, nil
}

// stripMarkup drops tags and decodes entities the sanitizer escaped back to
// plain text.
func stripMarkup(s string) string {
	return html.UnescapeString(stripPolicy.Sanitize(s))
}
