// Package render turns a view result into a rendering plan for the
// presentation layer, and guards the load-more trigger against duplicate
// page advances.
package render

import (
	"sync"

	"shloka/internal/verse"
	"shloka/internal/view"
)

// Mode selects how the presentation layer applies a plan.
type Mode int

const (
	// FullReplace discards the rendered list and draws Items from scratch.
	FullReplace Mode = iota
	// Append adds Items after the already rendered entries.
	Append
)

func (m Mode) String() string {
	if m == Append {
		return "append"
	}
	return "full_replace"
}

// Plan is the sole output contract toward the presentation layer.
type Plan struct {
	Mode          Mode
	Items         []verse.Verse
	ShowLoadMore  bool // render the load-more sentinel after the list
	ShowEndMarker bool // "you have reached the end", not "only one page"
}

// Compute derives the plan for a result. prevRendered is how many entries
// the previous plan left on screen; it only matters in Append mode.
//
// FullReplace is chosen at the initial cursor or under search; Append only
// when paginating past page 1 without a search term. The end marker shows
// only when more than one page was ever needed.
func Compute(q view.Query, r view.Result, prevRendered int) Plan {
	q = q.Normalized()
	searching := q.Searching()

	var p Plan
	if searching || q.Page == 1 {
		p.Mode = FullReplace
		p.Items = r.Visible
	} else {
		p.Mode = Append
		start := prevRendered
		if start > len(r.Visible) {
			start = len(r.Visible)
		}
		p.Items = r.Visible[start:]
	}

	p.ShowLoadMore = !searching && r.HasMore
	p.ShowEndMarker = !searching && !r.HasMore && len(r.Matched) > q.PageSize
	return p
}

// Driver tracks the rendered count across plans for one viewer session.
type Driver struct {
	rendered int
}

// Plan computes the next plan and records how many entries it leaves
// rendered.
func (d *Driver) Plan(q view.Query, r view.Result) Plan {
	p := Compute(q, r, d.rendered)
	d.rendered = len(r.Visible)
	return p
}

// Rendered returns the entry count left by the last plan.
func (d *Driver) Rendered() int { return d.rendered }

// Reset forgets the rendered state, e.g. when the surface is cleared.
func (d *Driver) Reset() { d.rendered = 0 }

// Sentinel is the load-more trigger guard. A trigger that fires while a page
// advance is still rendering must not double-advance the cursor: Fire
// disarms, and the trigger re-arms only after the new render completes.
type Sentinel struct {
	mu    sync.Mutex
	armed bool
}

func NewSentinel() *Sentinel {
	return &Sentinel{armed: true}
}

// Fire reports whether the trigger was armed, disarming it. A fire while
// disarmed is a no-op.
func (s *Sentinel) Fire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return false
	}
	s.armed = false
	return true
}

// Rearm re-enables the trigger once the advanced page has been rendered.
func (s *Sentinel) Rearm() {
	s.mu.Lock()
	s.armed = true
	s.mu.Unlock()
}

func (s *Sentinel) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}
