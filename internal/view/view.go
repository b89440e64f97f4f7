// Package view computes the currently visible subset of the catalog for a
// given search term, favorites flag and pagination cursor.
package view

import (
	"strconv"
	"strings"

	"shloka/internal/catalog"
	"shloka/internal/verse"
)

// DefaultPageSize is used when a query carries no usable page size.
const DefaultPageSize = 5

// Query is the ephemeral view state, recomputed per render.
type Query struct {
	FavoritesOnly bool
	Search        string // case-insensitive substring, may be empty
	Page          int    // cursor, 1-based; values below 1 mean 1
	PageSize      int
}

// Normalized returns the query with the cursor and page size clamped to
// their documented domains.
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	return q
}

// Searching reports whether a search term is active. Search shows all
// results unpaginated.
func (q Query) Searching() bool { return q.Search != "" }

// Result is derived, never stored. Matched is the full filtered set in
// catalog order; Visible is the cursor-limited prefix, except under search,
// where it equals Matched.
type Result struct {
	Matched []verse.Verse
	Visible []verse.Verse
	HasMore bool
}

// NoResults distinguishes "nothing matched" from "everything already shown".
func (r Result) NoResults() bool { return len(r.Matched) == 0 }

// Evaluate is pure: identical arguments yield identical results, and the
// catalog is never mutated. Filtering preserves the ascending-by-ID catalog
// order.
func Evaluate(c *catalog.Store, q Query) Result {
	q = q.Normalized()
	term := strings.ToLower(q.Search)

	matched := make([]verse.Verse, 0, c.Len())
	for _, v := range c.Verses() {
		if q.FavoritesOnly && !c.IsFavorite(v.ID) {
			continue
		}
		if term != "" && !matches(v, term) {
			continue
		}
		matched = append(matched, v)
	}

	if q.Searching() {
		// intentional policy: search bypasses pagination entirely
		return Result{Matched: matched, Visible: matched, HasMore: false}
	}

	limit := q.Page * q.PageSize
	if limit > len(matched) {
		limit = len(matched)
	}
	return Result{
		Matched: matched,
		Visible: matched[:limit],
		HasMore: q.Page*q.PageSize < len(matched),
	}
}

// matches checks the lowered term against the joined line text, the chapter
// label and the decimal ID string.
func matches(v verse.Verse, term string) bool {
	if strings.Contains(strings.ToLower(v.SearchText()), term) {
		return true
	}
	if strings.Contains(strings.ToLower(v.Chapter), term) {
		return true
	}
	return strings.Contains(strconv.Itoa(v.ID), term)
}
