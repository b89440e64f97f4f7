package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/htmlindex"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

const sampleDoc = `[{"chapter":"One","verse":1,"line":1,"text":"x","transliteration":"y","translation":"z"}]`

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verse_1.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleDoc)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "verse_%d.json", time.Second, testLogger())

	records, err := h.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "One", records[0].Chapter)
}

func TestHTTPFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "verse_%d.json", time.Second, testLogger())

	_, err := h.Fetch(context.Background(), 7)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 7, se.ID)
	assert.Equal(t, http.StatusNotFound, se.Status)
}

func TestHTTPFetchRejectsInvalidDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"an array"}`)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "verse_%d.json", time.Second, testLogger())

	_, err := h.Fetch(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 1")
}

func TestHTTPFetchDecodesDeclaredCharset(t *testing.T) {
	enc, err := htmlindex.Get("iso-8859-1")
	require.NoError(t, err)
	doc := `[{"chapter":"Prière","verse":1,"text":"déjà","transliteration":"y","translation":"z"}]`
	encoded, err := enc.NewEncoder().String(doc)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=iso-8859-1")
		fmt.Fprint(w, encoded)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "verse_%d.json", time.Second, testLogger())

	records, err := h.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Prière", records[0].Chapter)
	assert.Equal(t, "déjà", records[0].Text)
}

func TestDirFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "verse_3.json"), []byte(sampleDoc), 0644))

	d := NewDir(dir, "verse_%d.json")

	records, err := d.Fetch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = d.Fetch(context.Background(), 4)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
}
