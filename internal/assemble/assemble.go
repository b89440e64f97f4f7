// Package assemble builds the initial verse catalog: it fetches every
// configured document concurrently behind an all-or-nothing barrier, then
// groups the fetched line records into ordered verses.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"shloka/internal/fetch"
	"shloka/internal/metrics"
	"shloka/internal/verse"
)

// Options bounds the startup fetch.
type Options struct {
	Threads       int
	RatePerSecond float64        // 0 = unlimited
	OnFetched     func(id int)   // progress hook, called per settled fetch
	Log           *logrus.Logger
}

// FetchFailure names one failed document fetch.
type FetchFailure struct {
	ID  int
	Err error
}

func (f FetchFailure) String() string {
	var se *fetch.StatusError
	if errors.As(f.Err, &se) {
		return fmt.Sprintf("id %d (status %d)", f.ID, se.Status)
	}
	return fmt.Sprintf("id %d (%v)", f.ID, f.Err)
}

// Error aggregates every failed fetch of one assembly attempt. No partial
// catalog exists when it is returned.
type Error struct {
	Total    int
	Failures []FetchFailure
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("assembly failed: %d of %d documents: %s",
		len(e.Failures), e.Total, strings.Join(parts, "; "))
}

// Build fetches documents 1..count and assembles the verse sequence. Any
// failed fetch fails the whole build with an *Error; the caller never sees a
// partial result.
func Build(ctx context.Context, f fetch.Fetcher, count int, opts Options) ([]verse.Verse, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = 4
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), threads)
	}

	log.WithFields(logrus.Fields{
		"documents": count,
		"threads":   threads,
	}).Info("assembly.start")

	var (
		mu       sync.Mutex
		byID     = make(map[int][]verse.LineRecord, count)
		failures []FetchFailure
	)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						recordFailure(&mu, &failures, id, err)
						continue
					}
				}
				start := time.Now()
				records, err := f.Fetch(ctx, id)
				metrics.FetchDuration.Observe(time.Since(start).Seconds())
				if err != nil {
					metrics.FetchTotal.WithLabelValues("error").Inc()
					log.WithField("id", id).WithError(err).Warn("fetch.failed")
					recordFailure(&mu, &failures, id, err)
				} else {
					metrics.FetchTotal.WithLabelValues("success").Inc()
					mu.Lock()
					byID[id] = records
					mu.Unlock()
				}
				if opts.OnFetched != nil {
					opts.OnFetched(id)
				}
			}
		}()
	}
	for id := 1; id <= count; id++ {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].ID < failures[j].ID })
		return nil, &Error{Total: count, Failures: failures}
	}

	verses := group(byID, count)
	log.WithField("verses", len(verses)).Info("assembly.done")
	return verses, nil
}

func recordFailure(mu *sync.Mutex, failures *[]FetchFailure, id int, err error) {
	mu.Lock()
	*failures = append(*failures, FetchFailure{ID: id, Err: err})
	mu.Unlock()
}

// group flattens the fetched documents in request order and groups records
// by the floor of their verse number. Grouping is a property of the record,
// not of which document carried it. The chapter label of a group is the
// first one seen; lines sort by line number, stable among equals.
func group(byID map[int][]verse.LineRecord, count int) []verse.Verse {
	groups := make(map[int][]verse.LineRecord)
	chapters := make(map[int]string)
	for docID := 1; docID <= count; docID++ {
		for _, r := range byID[docID] {
			id := r.VerseID()
			if _, seen := chapters[id]; !seen {
				chapters[id] = r.Chapter
			}
			groups[id] = append(groups[id], r)
		}
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	verses := make([]verse.Verse, 0, len(ids))
	for _, id := range ids {
		lines := groups[id]
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].SortKey() < lines[j].SortKey() })
		verses = append(verses, verse.Verse{ID: id, Chapter: chapters[id], Lines: lines})
	}
	return verses
}
