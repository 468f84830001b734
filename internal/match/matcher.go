// Package match filters, scores, ranks and paginates businesses against a
// user's preferences. Everything here is pure: no I/O and no shared state
// outside of the optional Cache.
package match

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the page size used by callers that do not pick one.
const DefaultPageSize = 20

// DefaultChunkSize is the input length above which a parallel Matcher splits work.
const DefaultChunkSize = 256

// ErrInvalidArgument is returned for a negative page index or page size.
var ErrInvalidArgument = errors.New("invalid argument")

// Matcher runs the filter/score/sort/paginate pipeline. The zero value is a
// sequential matcher using the built-in synonym table.
type Matcher struct {
	// Workers bounds the number of goroutines used for the filter and score
	// stage. Values below 2 run sequentially.
	Workers int
	// ChunkSize is the number of businesses per worker task. Zero means DefaultChunkSize.
	ChunkSize int
	// Synonyms overrides the dietary synonym table. Nil means DefaultSynonyms.
	Synonyms Synonyms
}

// NewParallel returns a Matcher that uses one worker per CPU.
func NewParallel() *Matcher {
	return &Matcher{Workers: runtime.GOMAXPROCS(0)}
}

var defaultMatcher = &Matcher{}

// Match ranks businesses with the default sequential matcher and returns one page.
func Match(businesses []Business, prefs Preferences, page, pageSize int) ([]Business, error) {
	return defaultMatcher.Match(businesses, prefs, page, pageSize)
}

// Rank filters and sorts businesses with the default matcher.
func Rank(businesses []Business, prefs Preferences) []Result {
	return defaultMatcher.Rank(businesses, prefs)
}

// Match returns page `page` (0-based) of size `pageSize` from the ranked list.
// A page past the end is empty, not an error.
func (m *Matcher) Match(businesses []Business, prefs Preferences, page, pageSize int) ([]Business, error) {
	results, err := m.MatchResults(businesses, prefs, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]Business, len(results))
	for i, r := range results {
		out[i] = r.Business
	}
	return out, nil
}

// MatchResults is Match but keeps the transient scores.
func (m *Matcher) MatchResults(businesses []Business, prefs Preferences, page, pageSize int) ([]Result, error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	return Paginate(m.Rank(businesses, prefs), page, pageSize), nil
}

// Rank filters, scores and globally sorts businesses.
func (m *Matcher) Rank(businesses []Business, prefs Preferences) []Result {
	ranked, _ := m.RankWithRejections(businesses, prefs)
	return ranked
}

// RankWithRejections is Rank plus a count of the businesses each hard filter dropped.
func (m *Matcher) RankWithRejections(businesses []Business, prefs Preferences) ([]Result, Rejections) {
	rejected := Rejections{}
	if len(businesses) == 0 {
		return []Result{}, rejected
	}

	syn := m.Synonyms
	if syn == nil {
		syn = DefaultSynonyms()
	}

	var survivors []Result
	chunk := m.chunkSize()
	if m.Workers < 2 || len(businesses) <= chunk {
		survivors = evaluate(businesses, prefs, syn, rejected)
	} else {
		survivors = m.evaluateParallel(businesses, prefs, syn, chunk, rejected)
	}

	sortResults(survivors, prefs.Sort)
	return survivors, rejected
}

func (m *Matcher) chunkSize() int {
	if m.ChunkSize > 0 {
		return m.ChunkSize
	}
	return DefaultChunkSize
}

func (m *Matcher) evaluateParallel(businesses []Business, prefs Preferences, syn Synonyms, chunk int, rejected Rejections) []Result {
	n := (len(businesses) + chunk - 1) / chunk
	parts := make([][]Result, n)
	partRejected := make([]Rejections, n)

	var g errgroup.Group
	g.SetLimit(m.Workers)
	for i := 0; i < n; i++ {
		i := i
		lo := i * chunk
		hi := min(lo+chunk, len(businesses))
		g.Go(func() error {
			partRejected[i] = Rejections{}
			parts[i] = evaluate(businesses[lo:hi], prefs, syn, partRejected[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range partRejected {
		rejected.add(r)
	}
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]Result, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func evaluate(businesses []Business, prefs Preferences, syn Synonyms, rejected Rejections) []Result {
	out := make([]Result, 0, len(businesses))
	for _, b := range businesses {
		if ok, reason := passes(b, prefs, syn, categorySet(b)); !ok {
			rejected[reason]++
			continue
		}
		out = append(out, Result{Business: b, Score: Score(b, prefs)})
	}
	return out
}

// Paginate returns sorted[page*size : min((page+1)*size, len)]. Out-of-range
// pages yield an empty slice. Negative arguments yield an empty slice as well;
// Match rejects them before getting here.
func Paginate[T any](sorted []T, page, size int) []T {
	if page < 0 || size <= 0 || len(sorted) == 0 {
		return []T{}
	}
	// Compare by division so huge page numbers cannot overflow.
	if page > (len(sorted)-1)/size {
		return []T{}
	}
	start := page * size
	end := min(start+size, len(sorted))
	out := make([]T, end-start)
	copy(out, sorted[start:end])
	return out
}

func validatePage(page, pageSize int) error {
	if page < 0 {
		return fmt.Errorf("%w: page index %d is negative", ErrInvalidArgument, page)
	}
	if pageSize < 0 {
		return fmt.Errorf("%w: page size %d is negative", ErrInvalidArgument, pageSize)
	}
	return nil
}

func sortResults(results []Result, by SortPreference) {
	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i], results[j], by)
	})
}

// less is a total order: the primary key picked by the sort preference, then
// score, then review count, then id.
func less(a, b Result, by SortPreference) bool {
	switch by {
	case SortDistance:
		ad, bd := a.Business.DistanceMeters, b.Business.DistanceMeters
		switch {
		case ad != nil && bd == nil:
			return true
		case ad == nil && bd != nil:
			return false
		case ad != nil && bd != nil && *ad != *bd:
			return *ad < *bd
		}
	case SortRating:
		if a.Business.Rating != b.Business.Rating {
			return a.Business.Rating > b.Business.Rating
		}
	case SortReviewCount:
		if a.Business.ReviewCount != b.Business.ReviewCount {
			return a.Business.ReviewCount > b.Business.ReviewCount
		}
	}

	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Business.ReviewCount != b.Business.ReviewCount {
		return a.Business.ReviewCount > b.Business.ReviewCount
	}
	return a.Business.ID < b.Business.ID
}
