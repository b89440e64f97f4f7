// Package catalog owns the assembled verse sequence and the favorite set.
// The verse sequence is write-once: nothing removes or reorders entries
// after assembly.
package catalog

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"shloka/internal/verse"
)

// FavoriteStore is the persistent side of the favorite set.
type FavoriteStore interface {
	Favorites() ([]int, error)
	SaveFavorites(ids []int) error
}

// Store holds the catalog. Safe for concurrent readers; favorite mutation is
// serialized.
type Store struct {
	mu     sync.RWMutex
	verses []verse.Verse // ascending by ID, immutable after New
	fav    map[int]bool
	prefs  FavoriteStore // nil = memory only
}

// New builds the catalog from an assembled verse sequence. Stored favorites
// are loaded once; an unreadable store is recovered by starting from the
// empty default, never by failing.
func New(verses []verse.Verse, prefs FavoriteStore, log *logrus.Logger) *Store {
	s := &Store{
		verses: verses,
		fav:    make(map[int]bool),
		prefs:  prefs,
	}
	if prefs == nil {
		return s
	}
	ids, err := prefs.Favorites()
	if err != nil {
		if log == nil {
			log = logrus.StandardLogger()
		}
		log.WithError(err).Warn("prefs.favorites.unreadable, falling back to empty set")
		return s
	}
	for _, id := range ids {
		s.fav[id] = true
	}
	return s
}

// Verses returns the full ID-ordered verse sequence.
func (s *Store) Verses() []verse.Verse { return s.verses }

func (s *Store) Len() int { return len(s.verses) }

// FindByID looks a verse up by its ID. The sequence is sorted, so this is a
// binary search.
func (s *Store) FindByID(id int) (verse.Verse, bool) {
	i := sort.Search(len(s.verses), func(i int) bool { return s.verses[i].ID >= id })
	if i < len(s.verses) && s.verses[i].ID == id {
		return s.verses[i], true
	}
	return verse.Verse{}, false
}

func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fav[id]
}

// FavoriteIDs returns the favorite set as a sorted slice.
func (s *Store) FavoriteIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favoriteIDsLocked()
}

func (s *Store) favoriteIDsLocked() []int {
	ids := make([]int, 0, len(s.fav))
	for id := range s.fav {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ToggleFavorite flips membership of id in the favorite set and persists the
// new set before returning. On a persist failure the flip is rolled back, so
// memory and storage never disagree. Returns the resulting membership.
func (s *Store) ToggleFavorite(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := !s.fav[id]
	if now {
		s.fav[id] = true
	} else {
		delete(s.fav, id)
	}

	if s.prefs != nil {
		if err := s.prefs.SaveFavorites(s.favoriteIDsLocked()); err != nil {
			// roll back the in-memory flip
			if now {
				delete(s.fav, id)
			} else {
				s.fav[id] = true
			}
			return !now, err
		}
	}
	return now, nil
}
