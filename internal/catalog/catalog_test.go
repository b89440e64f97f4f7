package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shloka/internal/prefs"
	"shloka/internal/verse"
)

func sampleVerses() []verse.Verse {
	return []verse.Verse{
		{ID: 1, Chapter: "One"},
		{ID: 2, Chapter: "One"},
		{ID: 5, Chapter: "Two"},
	}
}

func TestFindByID(t *testing.T) {
	s := New(sampleVerses(), nil, nil)

	v, ok := s.FindByID(5)
	require.True(t, ok)
	assert.Equal(t, "Two", v.Chapter)

	_, ok = s.FindByID(3)
	assert.False(t, ok)
}

func TestToggleFavoriteIdempotentPair(t *testing.T) {
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer store.Close()

	s := New(sampleVerses(), store, nil)
	require.False(t, s.IsFavorite(2))

	fav, err := s.ToggleFavorite(2)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.True(t, s.IsFavorite(2))

	fav, err = s.ToggleFavorite(2)
	require.NoError(t, err)
	assert.False(t, fav)
	assert.False(t, s.IsFavorite(2), "double toggle restores the original membership")

	after, err := store.Favorites()
	require.NoError(t, err)
	assert.Empty(t, after, "double toggle restores the empty persisted set")
}

func TestToggleFavoritePersistsSynchronously(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	store, err := prefs.Open(path)
	require.NoError(t, err)

	s := New(sampleVerses(), store, nil)
	_, err = s.ToggleFavorite(5)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// a fresh store sees the toggle
	reopened, err := prefs.Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	ids, err := reopened.Favorites()
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ids)

	restored := New(sampleVerses(), reopened, nil)
	assert.True(t, restored.IsFavorite(5))
}

type failingStore struct {
	loadErr error
	saveErr error
	ids     []int
}

func (f *failingStore) Favorites() ([]int, error) { return f.ids, f.loadErr }
func (f *failingStore) SaveFavorites([]int) error { return f.saveErr }

func TestToggleRollsBackOnPersistFailure(t *testing.T) {
	s := New(sampleVerses(), &failingStore{saveErr: errors.New("disk full")}, nil)

	fav, err := s.ToggleFavorite(1)
	require.Error(t, err)
	assert.False(t, fav)
	assert.False(t, s.IsFavorite(1), "memory must not drift from storage")
}

func TestUnreadableStoreFallsBackToEmpty(t *testing.T) {
	s := New(sampleVerses(), &failingStore{loadErr: errors.New("corrupt")}, nil)
	assert.Empty(t, s.FavoriteIDs())
}

func TestVersesNeverReordered(t *testing.T) {
	s := New(sampleVerses(), nil, nil)
	_, err := s.ToggleFavorite(2)
	require.NoError(t, err)

	got := s.Verses()
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
	assert.Equal(t, 5, got[2].ID)
}
