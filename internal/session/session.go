// Package session holds the owned application state of one viewer: the
// catalog, the current view query, the render driver and the load-more
// sentinel. External events (search input, favorite taps, route changes,
// scroll triggers) come in only through its methods.
package session

import (
	"github.com/sirupsen/logrus"

	"shloka/internal/catalog"
	"shloka/internal/metrics"
	"shloka/internal/render"
	"shloka/internal/route"
	"shloka/internal/verse"
	"shloka/internal/view"
)

// ThemeStore is the persistent side of the theme preference.
type ThemeStore interface {
	Theme() (string, error)
	SaveTheme(theme string) error
}

type Session struct {
	log      *logrus.Logger
	cat      *catalog.Store
	themes   ThemeStore // nil = memory only
	driver   render.Driver
	sentinel *render.Sentinel
	query    view.Query
	theme    string
}

func New(cat *catalog.Store, themes ThemeStore, pageSize int, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Session{
		log:      log,
		cat:      cat,
		themes:   themes,
		sentinel: render.NewSentinel(),
		query:    view.Query{Page: 1, PageSize: pageSize}.Normalized(),
	}
	if themes != nil {
		theme, err := themes.Theme()
		if err != nil {
			log.WithError(err).Warn("prefs.theme.unreadable, using platform default")
		} else {
			s.theme = theme
		}
	}
	return s
}

func (s *Session) Catalog() *catalog.Store { return s.cat }

func (s *Session) Query() view.Query { return s.query }

func (s *Session) evaluate() view.Result {
	metrics.ViewEvaluations.Inc()
	return view.Evaluate(s.cat, s.query)
}

// Refresh recomputes the current view without changing the query.
func (s *Session) Refresh() render.Plan {
	return s.driver.Plan(s.query, s.evaluate())
}

// SetSearch replaces the search term and resets the cursor.
func (s *Session) SetSearch(term string) render.Plan {
	s.query.Search = term
	s.query.Page = 1
	s.sentinel.Rearm()
	return s.Refresh()
}

// SetFavoritesOnly switches between the home and favorites-only views,
// resetting the cursor.
func (s *Session) SetFavoritesOnly(on bool) render.Plan {
	s.query.FavoritesOnly = on
	s.query.Page = 1
	s.sentinel.Rearm()
	return s.Refresh()
}

// LoadMore advances the cursor in response to the sentinel trigger. The
// trigger is disarmed before the advance; rapid repeated triggers while the
// previous render is still pending are no-ops. Call RenderComplete once the
// returned plan has been drawn.
func (s *Session) LoadMore() (render.Plan, bool) {
	if s.query.Searching() {
		return render.Plan{}, false
	}
	if !s.sentinel.Fire() {
		return render.Plan{}, false
	}
	s.query.Page++
	return s.Refresh(), true
}

// RenderComplete re-arms the load-more trigger after the presentation layer
// has applied a plan.
func (s *Session) RenderComplete() {
	s.sentinel.Rearm()
}

// ToggleFavorite flips a verse's favorite state, persisting synchronously.
func (s *Session) ToggleFavorite(id int) (bool, error) {
	return s.cat.ToggleFavorite(id)
}

// View is the outcome of a navigation: either a list plan or a single-verse
// lookup, which may miss.
type View struct {
	Plan     render.Plan
	Verse    *verse.Verse
	NotFound bool
	VerseID  int
}

// Navigate applies a route signal. List routes re-evaluate the view query;
// verse routes resolve through the catalog, with a miss reported as an
// explicit not-found state rather than an error.
func (s *Session) Navigate(rt route.Route) View {
	switch rt.Kind {
	case route.Favorites:
		return View{Plan: s.SetFavoritesOnly(true)}
	case route.Verse:
		v, ok := s.cat.FindByID(rt.VerseID)
		if !ok {
			return View{NotFound: true, VerseID: rt.VerseID}
		}
		return View{Verse: &v, VerseID: rt.VerseID}
	default:
		s.query.Search = ""
		return View{Plan: s.SetFavoritesOnly(false)}
	}
}

// Theme returns the active theme; empty means the platform's ambient
// preference.
func (s *Session) Theme() string { return s.theme }

// SetTheme stores an explicit theme choice.
func (s *Session) SetTheme(theme string) error {
	if s.themes != nil {
		if err := s.themes.SaveTheme(theme); err != nil {
			return err
		}
	}
	s.theme = theme
	return nil
}
