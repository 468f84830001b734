package search

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nosh/internal/logging"
	"nosh/internal/match"
)

const sampleBusiness = `{
	"id": "taqueria-1",
	"name": "Taqueria Uno",
	"image_url": "https://img.example/1.jpg",
	"url": "https://www.yelp.com/biz/taqueria-1",
	"rating": 4.5,
	"review_count": 321,
	"price": "$$",
	"categories": [
		{"alias": "mexican", "title": "Mexican"},
		{"alias": "gluten_free", "title": "Gluten-Free"},
		{"alias": "vegan", "title": ""}
	],
	"coordinates": {"latitude": 37.77, "longitude": -122.42},
	"location": {"address1": "1 Mission St", "city": "San Francisco",
		"display_address": ["1 Mission St", "San Francisco, CA 94105"]},
	"display_phone": "(415) 555-0100",
	"is_closed": false,
	"distance": 812.5
}`

func newTestClient(t *testing.T, h http.Handler) *YelpClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewYelpClient("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRateLimit(0, 0),
		WithRetries(2, time.Millisecond),
		WithLogger(logging.NewTestLogger(t)),
	)
}

func TestSearch_MapsBusinessesAndParams(t *testing.T) {
	var got http.Header
	var params map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/businesses/search", r.URL.Path)
		got = r.Header.Clone()
		params = map[string]string{}
		for k := range r.URL.Query() {
			params[k] = r.URL.Query().Get(k)
		}
		fmt.Fprintf(w, `{"total": 1, "businesses": [%s]}`, sampleBusiness)
	}))

	res, err := c.Search(context.Background(), Query{
		Term:           " tacos ",
		Latitude:       37.7749,
		Longitude:      -122.4194,
		HasCoordinates: true,
		RadiusMeters:   90000,
		Price:          []match.PriceTier{match.PriceInexpensive, match.PriceModerate, match.PriceUnknown},
		OpenNow:        true,
		SortBy:         match.SortRating,
		Limit:          500,
		Offset:         10,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", got.Get("Authorization"))
	assert.Equal(t, map[string]string{
		"term":       "tacos",
		"latitude":   "37.7749",
		"longitude":  "-122.4194",
		"radius":     "40000",
		"categories": DefaultCategories,
		"price":      "1,2",
		"open_now":   "true",
		"sort_by":    "rating",
		"limit":      "50",
		"offset":     "10",
	}, params)

	require.Len(t, res.Businesses, 1)
	assert.Equal(t, 1, res.Total)
	b := res.Businesses[0]
	assert.Equal(t, "taqueria-1", b.ID)
	assert.Equal(t, match.PriceModerate, b.Price)
	assert.Equal(t, []string{"mexican", "gluten-free", "vegan"}, b.Categories)
	require.NotNil(t, b.DistanceMeters)
	assert.InDelta(t, 812.5, *b.DistanceMeters, 1e-9)
	assert.True(t, b.IsOpen)
	assert.Equal(t, "1 Mission St, San Francisco, CA 94105", b.Address)
	assert.Equal(t, "(415) 555-0100", b.Phone)
	assert.Equal(t, "https://www.yelp.com/biz/taqueria-1", b.URL)
}

func TestSearch_LocationTextAndDefaults(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Brooklyn, NY", q.Get("location"))
		assert.Empty(t, q.Get("latitude"))
		assert.Equal(t, "best_match", q.Get("sort_by"))
		assert.Empty(t, q.Get("price"))
		assert.Empty(t, q.Get("radius"))
		fmt.Fprint(w, `{"total": 0, "businesses": []}`)
	}))

	res, err := c.Search(context.Background(), Query{Location: "Brooklyn, NY"})
	require.NoError(t, err)
	assert.Empty(t, res.Businesses)
}

func TestSearch_RequiresLocation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	_, err := c.Search(context.Background(), Query{Term: "pizza"})
	assert.ErrorContains(t, err, "location")
}

func TestMapping_MissingFields(t *testing.T) {
	var d businessDetail
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "x", "price": "€€", "is_closed": true, "distance": 0,
		"location": {"address1": "9 Elm", "city": "Austin"}
	}`), &d))

	b := d.toBusiness()
	assert.Equal(t, match.PriceUnknown, b.Price)
	assert.Nil(t, b.DistanceMeters)
	assert.False(t, b.IsOpen)
	assert.Equal(t, "9 Elm, Austin", b.Address)
	assert.Empty(t, b.Categories)
}

func pagedHandler(total int, calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		type biz struct {
			ID     string  `json:"id"`
			Rating float64 `json:"rating"`
		}
		resp := struct {
			Total      int   `json:"total"`
			Businesses []biz `json:"businesses"`
		}{Total: total, Businesses: []biz{}}
		for i := offset; i < offset+limit && i < total; i++ {
			id := i
			// Yelp occasionally repeats a business across a page boundary.
			if i == 50 {
				id = 49
			}
			resp.Businesses = append(resp.Businesses, biz{ID: fmt.Sprintf("b-%04d", id), Rating: 4})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestSearchAll_OrderedAndDeduped(t *testing.T) {
	var calls int32
	c := newTestClient(t, pagedHandler(120, &calls))

	got, err := c.SearchAll(context.Background(), Query{Location: "here"}, 200)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	require.Len(t, got, 119)

	ids := make([]string, len(got))
	seen := map[string]bool{}
	for i, b := range got {
		ids[i] = b.ID
		assert.False(t, seen[b.ID], "duplicate %s", b.ID)
		seen[b.ID] = true
	}
	assert.True(t, sort.StringsAreSorted(ids))
	assert.Equal(t, "b-0000", ids[0])
	assert.Equal(t, "b-0119", ids[len(ids)-1])
}

func TestSearchAll_StopsAtMax(t *testing.T) {
	var calls int32
	c := newTestClient(t, pagedHandler(500, &calls))

	got, err := c.SearchAll(context.Background(), Query{Location: "here"}, 75)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Len(t, got, 74)
}

func TestSearchAll_SinglePage(t *testing.T) {
	var calls int32
	c := newTestClient(t, pagedHandler(7, &calls))

	got, err := c.SearchAll(context.Background(), Query{Location: "here"}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Len(t, got, 7)
}

func TestSearchAll_PropagatesPageError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "100" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		pagedHandler(150, new(int32))(w, r)
	}))

	_, err := c.SearchAll(context.Background(), Query{Location: "here"}, 150)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestSearch_RetriesTransientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprintf(w, `{"total": 1, "businesses": [%s]}`, sampleBusiness)
	}))

	res, err := c.Search(context.Background(), Query{Location: "x"})
	require.NoError(t, err)
	require.Len(t, res.Businesses, 1)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSearch_RetriesAreBounded(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.Search(context.Background(), Query{Location: "x"})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSearch_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.Search(context.Background(), Query{Location: "x"})
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSearch_RetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	c := NewYelpClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()),
		WithRateLimit(0, 0), WithRetries(5, time.Hour))

	_, err := c.Search(ctx, Query{Location: "x"})
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestAPIError_Decoded(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		code      string
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"code":"TOO_MANY_REQUESTS_PER_SECOND","description":"slow down"}}`, "TOO_MANY_REQUESTS_PER_SECOND", true},
		{"bad request", http.StatusBadRequest, `{"error":{"code":"VALIDATION_ERROR","description":"bad radius"}}`, "VALIDATION_ERROR", false},
		{"server error without body", http.StatusBadGateway, ``, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			_, err := c.Search(context.Background(), Query{Location: "x"})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.retryable, apiErr.Retryable())
		})
	}
}

func TestMissingAPIKey(t *testing.T) {
	c := NewYelpClient("  ")
	_, err := c.Search(context.Background(), Query{Location: "x"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = c.GetBusiness(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGetBusiness_OpenNowFromHours(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/businesses/caf%C3%A9-1", r.URL.EscapedPath())
		fmt.Fprint(w, `{"id":"café-1","name":"Café","is_closed":false,"hours":[{"is_open_now":false}]}`)
	}))

	b, err := c.GetBusiness(context.Background(), "café-1")
	require.NoError(t, err)
	assert.Equal(t, "Café", b.Name)
	assert.False(t, b.IsOpen)
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		img := image.NewRGBA(image.Rect(0, 0, 4, 3))
		img.Set(1, 1, color.RGBA{R: 255, A: 255})
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer srv.Close()

	c := NewYelpClient("k", WithHTTPClient(srv.Client()))
	img, err := c.FetchImage(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}
