package match

import (
	"encoding/binary"
	"math"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultCacheEntries bounds a Cache created with a non-positive size.
const DefaultCacheEntries = 128

// CacheKey identifies one memoized page.
type CacheKey struct {
	Preferences uint64 // Fingerprint of the preferences used
	Location    string
	Page        int
	PageSize    int
}

// CacheStats counts lookups since the last Invalidate.
type CacheStats struct {
	Hits    int
	Misses  int
	Entries int
}

// Cache memoizes ranked pages. It holds the only shared mutable state in
// this package and serializes every access with one mutex.
type Cache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[CacheKey, []Result]
	hits   int
	misses int
}

// NewCache returns a cache holding at most size pages.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheEntries
	}
	l, err := simplelru.NewLRU[CacheKey, []Result](size, nil)
	if err != nil {
		// NewLRU only fails for a non-positive size.
		panic(err)
	}
	return &Cache{lru: l}
}

// Get returns a copy of the cached page for key.
func (c *Cache) Get(key CacheKey) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	page, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return append([]Result(nil), page...), true
}

// Put stores a copy of page under key.
func (c *Cache) Put(key CacheKey, page []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, append([]Result(nil), page...))
}

// Invalidate drops every entry. Call it whenever preferences change.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.hits, c.misses = 0, 0
}

// Stats reports hit/miss counters and the current entry count.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: c.lru.Len()}
}

// Fingerprint hashes a canonical form of prefs. Set-valued fields are sorted
// first, so two preference values that differ only in element order share a
// fingerprint.
func Fingerprint(prefs Preferences) uint64 {
	d := xxhash.New()
	var buf [8]byte

	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(s)
	}
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	writeOptional := func(f *float64) {
		if f == nil {
			_, _ = d.Write([]byte{0})
			return
		}
		_, _ = d.Write([]byte{1})
		writeFloat(*f)
	}

	dietary := make([]string, 0, len(prefs.DietaryRestrictions))
	seen := make(map[string]bool, len(prefs.DietaryRestrictions))
	for _, r := range prefs.DietaryRestrictions {
		if !seen[string(r)] {
			seen[string(r)] = true
			dietary = append(dietary, string(r))
		}
	}
	sort.Strings(dietary)
	writeString("dietary")
	for _, r := range dietary {
		writeString(r)
	}

	cuisines := append([]CuisinePreference(nil), prefs.Cuisines...)
	sort.SliceStable(cuisines, func(i, j int) bool {
		return NormalizeTag(cuisines[i].Tag) < NormalizeTag(cuisines[j].Tag)
	})
	writeString("cuisines")
	for _, c := range cuisines {
		writeString(NormalizeTag(c.Tag))
		writeOptional(c.Weight)
	}

	writeString("price")
	writeFloat(float64(prefs.PriceCeiling))
	writeString("rating")
	writeFloat(prefs.MinimumRating)
	writeString("distance")
	writeOptional(prefs.MaxDistanceMeters)
	writeString("sort")
	sortBy := prefs.Sort
	if sortBy == "" {
		sortBy = SortBestMatch
	}
	writeString(string(sortBy))

	return d.Sum64()
}
