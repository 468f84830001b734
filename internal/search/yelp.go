package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"nosh/internal/logging"
	"nosh/internal/match"
)

const (
	// DefaultBaseURL is the Yelp Fusion v3 endpoint.
	DefaultBaseURL = "https://api.yelp.com/v3"
	// DefaultCategories restricts searches to places that serve food.
	DefaultCategories = "restaurants,food"
	// MaxLimit is the largest page Yelp returns.
	MaxLimit = 50
	// MaxRadiusMeters is the largest radius Yelp accepts.
	MaxRadiusMeters = 40000
	// MaxResultWindow caps offset+limit; Yelp rejects anything deeper.
	MaxResultWindow = 1000

	searchAllConcurrency = 4

	defaultRetries      = 2
	defaultRetryBackoff = 300 * time.Millisecond
)

// YelpClient wraps the Yelp Fusion API. It is safe for concurrent use.
type YelpClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	backoff    time.Duration
	log        logging.Logger
}

// Option configures a YelpClient.
type Option func(*YelpClient)

// WithBaseURL points the client at another host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *YelpClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *YelpClient) { c.httpClient = hc }
}

// WithRateLimit bounds outgoing requests. perSec <= 0 disables limiting.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *YelpClient) {
		if perSec <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithRetries sets how many times a 429 or 5xx response is retried. Each
// retry waits backoff, doubled per attempt, and then waits on the rate limiter.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *YelpClient) {
		c.retries = max(n, 0)
		c.backoff = backoff
	}
}

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option {
	return func(c *YelpClient) { c.log = l }
}

// NewYelpClient creates a new Yelp Fusion API client.
func NewYelpClient(apiKey string, opts ...Option) *YelpClient {
	c := &YelpClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		retries:    defaultRetries,
		backoff:    defaultRetryBackoff,
		log:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query describes one business search.
type Query struct {
	Term           string
	Location       string // free text; used when HasCoordinates is false
	Latitude       float64
	Longitude      float64
	HasCoordinates bool
	RadiusMeters   int // 0 means Yelp's default
	Categories     string
	Price          []match.PriceTier
	OpenNow        bool
	SortBy         match.SortPreference
	Limit          int
	Offset         int
}

// Result is one page of search results.
type Result struct {
	Businesses []match.Business
	Total      int // total matches Yelp reports, not len(Businesses)
}

// Search runs a single business search.
func (c *YelpClient) Search(ctx context.Context, q Query) (Result, error) {
	params, err := q.values()
	if err != nil {
		return Result{}, err
	}

	var resp businessSearchResponse
	if err := c.get(ctx, "/businesses/search", params, &resp); err != nil {
		return Result{}, err
	}

	out := Result{Businesses: make([]match.Business, 0, len(resp.Businesses)), Total: resp.Total}
	for _, b := range resp.Businesses {
		out.Businesses = append(out.Businesses, b.toBusiness())
	}
	return out, nil
}

// SearchAll collects up to maxResults candidates for q, fetching pages concurrently.
// Results keep Yelp's offset order and are de-duplicated by id.
func (c *YelpClient) SearchAll(ctx context.Context, q Query, maxResults int) ([]match.Business, error) {
	if maxResults <= 0 {
		maxResults = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	maxResults = min(maxResults, MaxResultWindow-q.Offset)
	if maxResults <= 0 {
		return []match.Business{}, nil
	}

	first := q
	first.Limit = min(maxResults, MaxLimit)
	res, err := c.Search(ctx, first)
	if err != nil {
		return nil, err
	}

	want := min(maxResults, res.Total)
	if len(res.Businesses) >= want || len(res.Businesses) < first.Limit {
		return dedupe(res.Businesses, maxResults), nil
	}

	// Pages after the first, one slot per page so order survives the fan-out.
	var offsets []int
	for off := q.Offset + first.Limit; off < q.Offset+want; off += MaxLimit {
		offsets = append(offsets, off)
	}
	pages := make([][]match.Business, len(offsets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchAllConcurrency)
	for i, off := range offsets {
		i, off := i, off
		g.Go(func() error {
			page := q
			page.Offset = off
			page.Limit = min(MaxLimit, q.Offset+want-off)
			r, err := c.Search(gctx, page)
			if err != nil {
				return fmt.Errorf("page at offset %d: %w", off, err)
			}
			pages[i] = r.Businesses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := res.Businesses
	for _, p := range pages {
		all = append(all, p...)
	}
	c.log.Debug("collected candidates", map[string]interface{}{
		"pages":     len(offsets) + 1,
		"total":     res.Total,
		"collected": len(all),
	})
	return dedupe(all, maxResults), nil
}

// GetBusiness fetches full details for a business by its Yelp ID.
func (c *YelpClient) GetBusiness(ctx context.Context, businessID string) (match.Business, error) {
	businessID = strings.TrimSpace(businessID)
	if businessID == "" {
		return match.Business{}, fmt.Errorf("business id is empty")
	}

	var detail businessDetail
	if err := c.get(ctx, "/businesses/"+url.PathEscape(businessID), nil, &detail); err != nil {
		return match.Business{}, err
	}

	b := detail.toBusiness()
	if len(detail.Hours) > 0 && detail.Hours[0].IsOpenNow != nil {
		b.IsOpen = *detail.Hours[0].IsOpenNow
	}
	return b, nil
}

func (c *YelpClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	for attempt := 0; ; attempt++ {
		err := c.getOnce(ctx, path, reqURL, out)
		if err == nil || attempt >= c.retries || !IsRetryable(err) {
			return err
		}

		wait := c.backoff << attempt
		c.log.WithError(err).Debug("yelp retry", map[string]interface{}{
			"path":    path,
			"attempt": attempt + 1,
			"wait_ms": wait.Milliseconds(),
		})
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func (c *YelpClient) getOnce(ctx context.Context, path, reqURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("yelp request", map[string]interface{}{
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("JSON decode error: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		apiErr.Code = er.Error.Code
		apiErr.Description = er.Error.Description
	}
	return apiErr
}

func (q Query) values() (url.Values, error) {
	params := url.Values{}
	if term := strings.TrimSpace(q.Term); term != "" {
		params.Set("term", term)
	}

	if q.HasCoordinates {
		params.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	} else if loc := strings.TrimSpace(q.Location); loc != "" {
		params.Set("location", loc)
	} else {
		return nil, fmt.Errorf("search needs a location or coordinates")
	}

	if q.RadiusMeters > 0 {
		params.Set("radius", strconv.Itoa(min(q.RadiusMeters, MaxRadiusMeters)))
	}

	categories := q.Categories
	if categories == "" {
		categories = DefaultCategories
	}
	params.Set("categories", categories)

	if len(q.Price) > 0 {
		tiers := make([]string, 0, len(q.Price))
		for _, p := range q.Price {
			if p.Known() {
				tiers = append(tiers, strconv.Itoa(int(p)))
			}
		}
		if len(tiers) > 0 {
			params.Set("price", strings.Join(tiers, ","))
		}
	}

	if q.OpenNow {
		params.Set("open_now", "true")
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = match.SortBestMatch
	}
	params.Set("sort_by", string(sortBy))

	limit := q.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	params.Set("limit", strconv.Itoa(limit))
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	return params, nil
}

func dedupe(bs []match.Business, limit int) []match.Business {
	seen := make(map[string]struct{}, len(bs))
	out := make([]match.Business, 0, min(len(bs), limit))
	for _, b := range bs {
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
		if len(out) == limit {
			break
		}
	}
	return out
}

// API response types

type businessSearchResponse struct {
	Businesses []businessDetail `json:"businesses"`
	Total      int              `json:"total"`
}

type businessDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ImageURL    string      `json:"image_url"`
	URL         string      `json:"url"`
	Rating      float64     `json:"rating"`
	ReviewCount int         `json:"review_count"`
	Price       string      `json:"price"`
	Categories  []category  `json:"categories"`
	Coordinates coordinates `json:"coordinates"`
	Location    *location   `json:"location"`
	Phone       string      `json:"display_phone"`
	IsClosed    bool        `json:"is_closed"`
	Distance    *float64    `json:"distance"`
	Hours       []hours     `json:"hours"`
}

type category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

type coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type location struct {
	Address1       string   `json:"address1"`
	Address2       string   `json:"address2"`
	Address3       string   `json:"address3"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	Country        string   `json:"country"`
	DisplayAddress []string `json:"display_address"`
}

type hours struct {
	IsOpenNow *bool `json:"is_open_now"`
}

func (d businessDetail) toBusiness() match.Business {
	b := match.Business{
		ID:          d.ID,
		Name:        d.Name,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
		Price:       match.ParsePriceTier(d.Price),
		Coordinates: match.Coordinates{Latitude: d.Coordinates.Latitude, Longitude: d.Coordinates.Longitude},
		IsOpen:      !d.IsClosed,
		Phone:       d.Phone,
		ImageURL:    d.ImageURL,
		URL:         d.URL,
	}

	b.Categories = make([]string, 0, len(d.Categories))
	for _, cat := range d.Categories {
		tag := cat.Title
		if tag == "" {
			tag = cat.Alias
		}
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			b.Categories = append(b.Categories, tag)
		}
	}

	if d.Distance != nil && *d.Distance > 0 {
		b.DistanceMeters = match.Float(*d.Distance)
	}

	if d.Location != nil {
		if len(d.Location.DisplayAddress) > 0 {
			b.Address = strings.Join(d.Location.DisplayAddress, ", ")
		} else {
			parts := make([]string, 0, 2)
			for _, p := range []string{d.Location.Address1, d.Location.City} {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
			b.Address = strings.Join(parts, ", ")
		}
	}
	return b
}
