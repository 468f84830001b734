// Package feed serves ranked, paginated pages of nearby businesses under the
// user's current preferences.
package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"nosh/internal/logging"
	"nosh/internal/match"
	"nosh/internal/search"
)

// ErrNoLocation is returned when a request has neither location text nor coordinates.
var ErrNoLocation = errors.New("no location: pass -location or set NOSH_LOCATION")

const (
	DefaultCandidateLimit = 200
	defaultCandidateSets  = 16
)

// Provider returns candidate businesses for a query.
type Provider interface {
	SearchAll(ctx context.Context, q search.Query, maxResults int) ([]match.Business, error)
}

// PreferenceStore persists the single preferences record.
type PreferenceStore interface {
	LoadPreferences() (match.Preferences, error)
	SavePreferences(p match.Preferences) error
}

// Options tunes a Service. Zero values pick defaults.
type Options struct {
	Matcher        *match.Matcher
	PageSize       int
	CandidateLimit int
	CacheEntries   int
	Logger         logging.Logger
}

// Request identifies a candidate set.
type Request struct {
	Term      string
	Location  string
	Latitude  *float64
	Longitude *float64
}

func (r Request) hasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// key is stable for equal requests. Coordinates are rounded to roughly 10m.
func (r Request) key() string {
	term := strings.ToLower(strings.TrimSpace(r.Term))
	if r.hasCoordinates() {
		return term + "|@" + strconv.FormatFloat(*r.Latitude, 'f', 4, 64) + "," + strconv.FormatFloat(*r.Longitude, 'f', 4, 64)
	}
	return term + "|" + strings.ToLower(strings.TrimSpace(r.Location))
}

// Page is one page of the feed.
type Page struct {
	Results  []match.Result
	Page     int
	PageSize int
	Total    int // businesses that passed the hard filters
	HasMore  bool
	// Generation is the cache generation the page was ranked under. It only
	// grows, and grows on every preference change or refresh.
	Generation uint64
}

type totalKey struct {
	prefs   uint64
	request string
}

// Service composes a provider, the matcher, and the preference store. It is
// safe for concurrent use.
type Service struct {
	provider Provider
	store    PreferenceStore
	matcher  *match.Matcher
	pageSize int
	limit    int
	log      logging.Logger

	pages *match.Cache

	mu          sync.Mutex
	prefs       match.Preferences
	generation  uint64
	candidates  *simplelru.LRU[string, []match.Business]
	totals      map[totalKey]int
	subscribers map[int]func(match.Preferences)
	nextSubID   int
}

// New builds a Service. Call Load before the first Page to pick up stored preferences.
func New(provider Provider, store PreferenceStore, opts Options) *Service {
	if opts.Matcher == nil {
		opts.Matcher = &match.Matcher{}
	}
	if opts.PageSize <= 0 {
		opts.PageSize = match.DefaultPageSize
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	candidates, err := simplelru.NewLRU[string, []match.Business](defaultCandidateSets, nil)
	if err != nil {
		panic(err)
	}

	return &Service{
		provider:    provider,
		store:       store,
		matcher:     opts.Matcher,
		pageSize:    opts.PageSize,
		limit:       opts.CandidateLimit,
		log:         opts.Logger,
		pages:       match.NewCache(opts.CacheEntries),
		prefs:       match.Preferences{Sort: match.SortBestMatch},
		candidates:  candidates,
		totals:      make(map[totalKey]int),
		subscribers: make(map[int]func(match.Preferences)),
	}
}

// PageSize is the number of results per page.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Load reads preferences from the store.
func (s *Service) Load() error {
	p, err := s.store.LoadPreferences()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	s.mu.Lock()
	s.prefs = clonePreferences(p)
	s.invalidateLocked()
	s.mu.Unlock()
	return nil
}

// Preferences returns a copy of the current preferences.
func (s *Service) Preferences() match.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePreferences(s.prefs)
}

// UpdatePreferences persists p, drops every memoized page and candidate set,
// then notifies subscribers.
func (s *Service) UpdatePreferences(p match.Preferences) error {
	p = clonePreferences(p)

	s.mu.Lock()
	if err := s.store.SavePreferences(p); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	s.prefs = p
	s.invalidateLocked()
	subs := make([]func(match.Preferences), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.log.Info("preferences updated", map[string]interface{}{
		"dietary":     len(p.DietaryRestrictions),
		"cuisines":    len(p.Cuisines),
		"price":       int(p.PriceCeiling),
		"min_rating":  p.MinimumRating,
		"sort":        string(p.Sort),
		"subscribers": len(subs),
	})

	for _, fn := range subs {
		fn(clonePreferences(p))
	}
	return nil
}

// Subscribe registers fn to run after every preference change. The returned
// func removes the subscription.
func (s *Service) Subscribe(fn func(match.Preferences)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Refresh forgets cached candidates and pages so the next Page refetches.
func (s *Service) Refresh() {
	s.mu.Lock()
	s.invalidateLocked()
	s.mu.Unlock()
}

// Generation returns the current cache generation. A Page whose Generation is
// lower was ranked under preferences that may no longer apply.
func (s *Service) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Stats reports page cache counters.
func (s *Service) Stats() match.CacheStats {
	return s.pages.Stats()
}

// Page returns page `page` (0-based) of the ranked feed for req.
func (s *Service) Page(ctx context.Context, req Request, page int) (Page, error) {
	if page < 0 {
		return Page{}, fmt.Errorf("%w: page index %d is negative", match.ErrInvalidArgument, page)
	}
	if !req.hasCoordinates() && strings.TrimSpace(req.Location) == "" {
		return Page{}, ErrNoLocation
	}

	s.mu.Lock()
	prefs := clonePreferences(s.prefs)
	gen := s.generation
	s.mu.Unlock()

	reqKey := req.key()
	fp := match.Fingerprint(prefs)
	key := match.CacheKey{Preferences: fp, Location: reqKey, Page: page, PageSize: s.pageSize}
	tk := totalKey{prefs: fp, request: reqKey}

	if results, ok := s.pages.Get(key); ok {
		s.mu.Lock()
		total, known := s.totals[tk]
		s.mu.Unlock()
		if known {
			s.log.Debug("feed page cache hit", map[string]interface{}{"request": reqKey, "page": page})
			return s.buildPage(results, page, total, gen), nil
		}
	}

	candidates, err := s.candidatesFor(ctx, req, reqKey, prefs, gen)
	if err != nil {
		return Page{}, err
	}

	ranked, rejected := s.matcher.RankWithRejections(candidates, prefs)
	results := match.Paginate(ranked, page, s.pageSize)

	s.mu.Lock()
	if s.generation == gen {
		s.totals[tk] = len(ranked)
		s.pages.Put(key, results)
	}
	s.mu.Unlock()

	fields := map[string]interface{}{
		"request":    reqKey,
		"page":       page,
		"candidates": len(candidates),
		"passed":     len(ranked),
		"returned":   len(results),
	}
	for reason, n := range rejected {
		fields["rejected_"+string(reason)] = n
	}
	s.log.Debug("feed page ranked", fields)
	return s.buildPage(results, page, len(ranked), gen), nil
}

func (s *Service) buildPage(results []match.Result, page, total int, gen uint64) Page {
	return Page{
		Results:    results,
		Page:       page,
		PageSize:   s.pageSize,
		Total:      total,
		HasMore:    total > 0 && page < (total-1)/s.pageSize,
		Generation: gen,
	}
}

func (s *Service) candidatesFor(ctx context.Context, req Request, reqKey string, prefs match.Preferences, gen uint64) ([]match.Business, error) {
	s.mu.Lock()
	cached, ok := s.candidates.Get(reqKey)
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	q := search.Query{
		Term:     strings.TrimSpace(req.Term),
		Location: strings.TrimSpace(req.Location),
		SortBy:   prefs.Sort,
	}
	if req.hasCoordinates() {
		q.HasCoordinates = true
		q.Latitude = *req.Latitude
		q.Longitude = *req.Longitude
	}
	if prefs.MaxDistanceMeters != nil && *prefs.MaxDistanceMeters > 0 {
		q.RadiusMeters = int(math.Ceil(math.Min(*prefs.MaxDistanceMeters, search.MaxRadiusMeters)))
	}

	businesses, err := s.provider.SearchAll(ctx, q, s.limit)
	if err != nil {
		s.log.WithError(err).Warn("candidate fetch failed", map[string]interface{}{"request": reqKey})
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	s.mu.Lock()
	if s.generation == gen {
		s.candidates.Add(reqKey, businesses)
	}
	s.mu.Unlock()
	return businesses, nil
}

func (s *Service) invalidateLocked() {
	s.generation++
	s.candidates.Purge()
	s.totals = make(map[totalKey]int)
	s.pages.Invalidate()
}

func clonePreferences(p match.Preferences) match.Preferences {
	out := p
	out.DietaryRestrictions = append([]match.DietaryRestriction{}, p.DietaryRestrictions...)
	out.Cuisines = make([]match.CuisinePreference, len(p.Cuisines))
	for i, c := range p.Cuisines {
		out.Cuisines[i] = match.CuisinePreference{Tag: c.Tag}
		if c.Weight != nil {
			out.Cuisines[i].Weight = match.Float(*c.Weight)
		}
	}
	if p.MaxDistanceMeters != nil {
		out.MaxDistanceMeters = match.Float(*p.MaxDistanceMeters)
	}
	if out.Sort == "" {
		out.Sort = match.SortBestMatch
	}
	return out
}
