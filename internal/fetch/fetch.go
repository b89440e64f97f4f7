// Package fetch implements the document fetcher capability: given a verse
// ID, return that document's line records or fail with a status-bearing
// error. There are two sources, an HTTP library and a local directory
// snapshot.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"

	"shloka/internal/verse"
)

// Fetcher yields the line records of a single verse document.
type Fetcher interface {
	Fetch(ctx context.Context, id int) ([]verse.LineRecord, error)
}

// StatusError reports that the identified document is missing or unreadable
// at its source. The status uses HTTP codes for both sources.
type StatusError struct {
	ID     int
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("document %d: status %d", e.ID, e.Status)
}

// HTTP fetches verse documents from a remote library.
type HTTP struct {
	client  *http.Client
	baseURL string
	pattern string
	log     *logrus.Logger
}

func NewHTTP(baseURL, pattern string, timeout time.Duration, log *logrus.Logger) *HTTP {
	t := &http.Transport{
		MaxIdleConns:       100,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: false,
		ForceAttemptHTTP2:  true,
	}
	return &HTTP{
		client:  &http.Client{Transport: t, Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		pattern: pattern,
		log:     log,
	}
}

func (h *HTTP) url(id int) string {
	return h.baseURL + "/" + fmt.Sprintf(h.pattern, id)
}

func (h *HTTP) Fetch(ctx context.Context, id int) ([]verse.LineRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url(id), nil)
	if err != nil {
		return nil, fmt.Errorf("document %d: build request: %w", id, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document %d: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &StatusError{ID: id, Status: res.StatusCode}
	}

	if h.log.IsLevelEnabled(logrus.DebugLevel) {
		h.log.WithFields(logrus.Fields{
			"id":  id,
			"url": h.url(id),
		}).Debug("library.fetch")
	}

	body := charsetReader(res.Header.Get("Content-Type"), res.Body)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("document %d: read body: %w", id, err)
	}

	records, err := verse.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("document %d: %w", id, err)
	}
	return records, nil
}

// charsetReader decodes non-UTF-8 bodies by the charset declared in the
// Content-Type header. Unknown or missing charsets pass through unchanged.
func charsetReader(contentType string, r io.Reader) io.Reader {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r
	}
	cs := strings.ToLower(params["charset"])
	if cs == "" || cs == "utf-8" {
		return r
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return r
	}
	return enc.NewDecoder().Reader(r)
}

// Dir fetches verse documents from a local directory snapshot.
type Dir struct {
	dir     string
	pattern string
}

func NewDir(dir, pattern string) *Dir {
	return &Dir{dir: dir, pattern: pattern}
}

func (d *Dir) Fetch(_ context.Context, id int) ([]verse.LineRecord, error) {
	path := filepath.Join(d.dir, fmt.Sprintf(d.pattern, id))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StatusError{ID: id, Status: http.StatusNotFound}
		}
		return nil, fmt.Errorf("document %d: %w", id, err)
	}
	records, err := verse.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("document %d: %w", id, err)
	}
	return records, nil
}
