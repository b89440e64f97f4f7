package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shloka/internal/catalog"
	"shloka/internal/render"
	"shloka/internal/route"
	"shloka/internal/verse"
)

func testCatalog(n int) *catalog.Store {
	verses := make([]verse.Verse, 0, n)
	for i := 1; i <= n; i++ {
		verses = append(verses, verse.Verse{
			ID:      i,
			Chapter: "Ch",
			Lines:   []verse.LineRecord{{Translation: "words of wisdom"}},
		})
	}
	return catalog.New(verses, nil, nil)
}

func TestLoadMoreAppends(t *testing.T) {
	s := New(testCatalog(5), nil, 2, nil)

	first := s.Refresh()
	assert.Equal(t, render.FullReplace, first.Mode)
	assert.Len(t, first.Items, 2)
	assert.True(t, first.ShowLoadMore)

	plan, ok := s.LoadMore()
	require.True(t, ok)
	assert.Equal(t, render.Append, plan.Mode)
	require.Len(t, plan.Items, 2)
	assert.Equal(t, 3, plan.Items[0].ID)
}

func TestLoadMoreIgnoresRapidTriggers(t *testing.T) {
	s := New(testCatalog(10), nil, 2, nil)
	s.Refresh()

	_, ok := s.LoadMore()
	require.True(t, ok)

	// the sentinel fired again before the render completed
	_, ok = s.LoadMore()
	assert.False(t, ok, "no double advance while a render is pending")

	s.RenderComplete()
	plan, ok := s.LoadMore()
	require.True(t, ok)
	assert.Equal(t, 5, plan.Items[0].ID, "cursor advanced exactly once per completed render")
}

func TestLoadMoreDisabledWhileSearching(t *testing.T) {
	s := New(testCatalog(10), nil, 2, nil)
	s.SetSearch("wisdom")

	_, ok := s.LoadMore()
	assert.False(t, ok)
}

func TestSetSearchResetsCursor(t *testing.T) {
	s := New(testCatalog(10), nil, 2, nil)
	s.Refresh()
	_, ok := s.LoadMore()
	require.True(t, ok)
	s.RenderComplete()

	plan := s.SetSearch("wisdom")
	assert.Equal(t, render.FullReplace, plan.Mode)
	assert.Len(t, plan.Items, 10, "search shows everything")

	plan = s.SetSearch("")
	assert.Equal(t, render.FullReplace, plan.Mode)
	assert.Len(t, plan.Items, 2, "back to the first page")
	assert.Equal(t, 1, s.Query().Page)
}

func TestNavigate(t *testing.T) {
	s := New(testCatalog(3), nil, 2, nil)

	v := s.Navigate(route.Route{Kind: route.Verse, VerseID: 2})
	require.NotNil(t, v.Verse)
	assert.Equal(t, 2, v.Verse.ID)

	v = s.Navigate(route.Route{Kind: route.Verse, VerseID: 99})
	assert.True(t, v.NotFound)
	assert.Equal(t, 99, v.VerseID)

	v = s.Navigate(route.Route{Kind: route.Favorites})
	assert.True(t, s.Query().FavoritesOnly)
	assert.Len(t, v.Plan.Items, 0)

	v = s.Navigate(route.Route{Kind: route.Home})
	assert.False(t, s.Query().FavoritesOnly)
	assert.Len(t, v.Plan.Items, 2)
}

type themeStub struct {
	theme   string
	loadErr error
	saveErr error
}

func (s *themeStub) Theme() (string, error) { return s.theme, s.loadErr }
func (s *themeStub) SaveTheme(theme string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.theme = theme
	return nil
}

func TestTheme(t *testing.T) {
	stub := &themeStub{theme: "dark"}
	s := New(testCatalog(1), stub, 2, nil)
	assert.Equal(t, "dark", s.Theme())

	require.NoError(t, s.SetTheme("light"))
	assert.Equal(t, "light", s.Theme())
	assert.Equal(t, "light", stub.theme)
}

func TestThemeReadFailureFallsBack(t *testing.T) {
	s := New(testCatalog(1), &themeStub{loadErr: errors.New("corrupt")}, 2, nil)
	assert.Equal(t, "", s.Theme(), "platform default on unreadable prefs")
}

func TestThemeSaveFailureKeepsOldTheme(t *testing.T) {
	stub := &themeStub{theme: "dark", saveErr: errors.New("disk full")}
	s := New(testCatalog(1), stub, 2, nil)

	require.Error(t, s.SetTheme("light"))
	assert.Equal(t, "dark", s.Theme())
}
