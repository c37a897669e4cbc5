package store

import (
	"github.com/lowtide/lowtide/internal/shared"
)

// GenreCache is a persistent memoization of genre lookups, keyed by a
// provider-scoped identifier such as "track:12345" or "artist:radiohead".
//
// The cache is write-through on every resolution attempt: a successful "no
// genre data" response is stored as an empty (non-nil) list so permanently
// missing data is never re-queried. Entries have no expiry; the cache is
// treated as durable truth unless manually cleared.
type GenreCache struct {
	path    string
	entries map[string][]string
	dirty   bool
}

// LoadGenreCache reads the cache at path. A missing file yields an empty cache.
func LoadGenreCache(path string) (*GenreCache, error) {
	c := &GenreCache{path: path, entries: make(map[string][]string)}
	if _, err := shared.LoadJSONFile(path, &c.entries); err != nil {
		return nil, err
	}
	return c, nil
}

// NewGenreCache creates an empty in-memory cache bound to path. An empty
// path makes Save a no-op.
func NewGenreCache(path string) *GenreCache {
	return &GenreCache{path: path, entries: make(map[string][]string)}
}

// Get returns the cached genre list for key. The second return distinguishes
// a cached "no genre found" (empty list, true) from a cache miss (nil, false).
func (c *GenreCache) Get(key string) ([]string, bool) {
	genres, ok := c.entries[key]
	return genres, ok
}

// Put stores the resolved genre list for key. A nil list is normalized to an
// empty one so the not-found sentinel survives the JSON round trip.
func (c *GenreCache) Put(key string, genres []string) {
	if genres == nil {
		genres = []string{}
	}
	c.entries[key] = genres
	c.dirty = true
}

// Len returns the number of cached entries.
func (c *GenreCache) Len() int {
	return len(c.entries)
}

// Save persists the cache to its backing file. A clean cache is a no-op.
func (c *GenreCache) Save() error {
	if !c.dirty || c.path == "" {
		return nil
	}
	if err := shared.SaveJSONFile(c.path, c.entries); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
