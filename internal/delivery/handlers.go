// Package delivery is the HTTP presentation adapter: it translates requests
// into view evaluations and render plans, and favorite toggles into catalog
// mutations.
package delivery

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"shloka/internal/catalog"
	"shloka/internal/metrics"
	"shloka/internal/render"
	"shloka/internal/verse"
	"shloka/internal/view"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shloka_adapter_requests_total",
		Help: "Total number of HTTP requests to the web adapter",
	},
	[]string{"endpoint", "code"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}

type Server struct {
	Log      *logrus.Logger
	Catalog  *catalog.Store
	PageSize int
}

// Routes wires the adapter's endpoints onto a mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.Health)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/view", s.View)
	mux.HandleFunc("/verse/", s.Verse)
	mux.HandleFunc("/favorites/", s.ToggleFavorite)
	return mux
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "verses": s.Catalog.Len()})
	requestsTotal.WithLabelValues("health", "200").Inc()
}

// Structured error envelope
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

type planOut struct {
	Mode          string        `json:"mode"`
	Items         []verse.Verse `json:"items"`
	ShowLoadMore  bool          `json:"show_load_more"`
	ShowEndMarker bool          `json:"show_end_marker"`
	HasMore       bool          `json:"has_more"`
	Matched       int           `json:"matched"`
	NoResults     bool          `json:"no_results"`
}

// GET /view?q=&favorites=&page=1&rendered=0
//
// The adapter is stateless: the client reports how many entries it has
// rendered, and gets back a full-replace or append plan.
func (s *Server) View(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := view.Query{
		FavoritesOnly: params.Get("favorites") == "true" || params.Get("favorites") == "1",
		Search:        params.Get("q"),
		Page:          atoiDefault(params.Get("page"), 1),
		PageSize:      atoiDefault(params.Get("page_size"), s.PageSize),
	}
	rendered := atoiDefault(params.Get("rendered"), 0)

	metrics.ViewEvaluations.Inc()
	res := view.Evaluate(s.Catalog, q)
	plan := render.Compute(q, res, rendered)

	items := plan.Items
	if items == nil {
		items = []verse.Verse{} // ensure [] not null
	}
	writeJSON(w, http.StatusOK, planOut{
		Mode:          plan.Mode.String(),
		Items:         items,
		ShowLoadMore:  plan.ShowLoadMore,
		ShowEndMarker: plan.ShowEndMarker,
		HasMore:       res.HasMore,
		Matched:       len(res.Matched),
		NoResults:     res.NoResults(),
	})
	requestsTotal.WithLabelValues("view", "200").Inc()
}

type verseOut struct {
	verse.Verse
	Favorite bool `json:"favorite"`
}

// GET /verse/{id}
func (s *Server) Verse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(lastPath(r.URL.Path))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "verse id must be an integer", nil)
		requestsTotal.WithLabelValues("verse", "400").Inc()
		return
	}
	v, ok := s.Catalog.FindByID(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "no such verse", map[string]any{"id": id})
		requestsTotal.WithLabelValues("verse", "404").Inc()
		return
	}
	writeJSON(w, http.StatusOK, verseOut{Verse: v, Favorite: s.Catalog.IsFavorite(id)})
	requestsTotal.WithLabelValues("verse", "200").Inc()
}

// POST /favorites/{id}
func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST", nil)
		requestsTotal.WithLabelValues("favorite", "405").Inc()
		return
	}
	id, err := strconv.Atoi(lastPath(r.URL.Path))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "verse id must be an integer", nil)
		requestsTotal.WithLabelValues("favorite", "400").Inc()
		return
	}
	if _, ok := s.Catalog.FindByID(id); !ok {
		WriteError(w, http.StatusNotFound, "not_found", "no such verse", map[string]any{"id": id})
		requestsTotal.WithLabelValues("favorite", "404").Inc()
		return
	}
	fav, err := s.Catalog.ToggleFavorite(id)
	if err != nil {
		s.Log.WithError(err).WithField("id", id).Error("favorites.persist.failed")
		WriteError(w, http.StatusInternalServerError, "storage_error", "failed to persist favorites", err.Error())
		requestsTotal.WithLabelValues("favorite", "500").Inc()
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "favorite": fav})
	requestsTotal.WithLabelValues("favorite", "200").Inc()
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoiDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func lastPath(p string) string {
	for len(p) > 0 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
