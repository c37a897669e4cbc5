package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/lowtide/lowtide/internal/store"
)

func newTestGenreClient(server *httptest.Server, cache *store.GenreCache) *TidalGenreClient {
	client := NewTidalGenreClient(testSession(), cache, 0, server.Client())
	client.baseURL = server.URL
	client.retry = RetryPolicy{Backoff: []time.Duration{time.Millisecond}}
	return client
}

func TestTidalGenreClient(t *testing.T) {
	t.Run("Resolves And Caches Genres", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			switch r.URL.Path {
			case "/tracks/101":
				if r.URL.Query().Get("include") != "genres" {
					t.Error("expected include=genres")
				}
				fmt.Fprint(w, `{"data": {"id": "101", "relationships": {"genres": {"data": [{"id": "g1"}, {"id": "g2"}]}}}}`)
			case "/genres/g1":
				fmt.Fprint(w, `{"data": {"id": "g1", "attributes": {"genreName": "Indie Rock"}}}`)
			case "/genres/g2":
				fmt.Fprint(w, `{"data": {"id": "g2", "attributes": {"genreName": "Shoegaze"}}}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))
		defer server.Close()

		cache := store.NewGenreCache("")
		client := newTestGenreClient(server, cache)

		track := models.Track{ID: "101", Title: "Song", Artists: []string{"A"}}

		genres, err := client.TrackGenres(context.Background(), track)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(genres) != 2 || genres[0] != "Indie Rock" || genres[1] != "Shoegaze" {
			t.Errorf("unexpected genres %v", genres)
		}

		// Second call hits the cache, no new requests.
		before := requests
		if _, err := client.TrackGenres(context.Background(), track); err != nil {
			t.Fatalf("cached lookup failed: %v", err)
		}
		if requests != before {
			t.Errorf("expected cached lookup, got %d extra requests", requests-before)
		}
	})

	t.Run("Genre Names Are Memoized Across Tracks", func(t *testing.T) {
		nameLookups := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/tracks/1", "/tracks/2":
				fmt.Fprint(w, `{"data": {"relationships": {"genres": {"data": [{"id": "g1"}]}}}}`)
			case "/genres/g1":
				nameLookups++
				fmt.Fprint(w, `{"data": {"attributes": {"genreName": "Techno"}}}`)
			}
		}))
		defer server.Close()

		client := newTestGenreClient(server, store.NewGenreCache(""))

		for _, id := range []string{"1", "2"} {
			if _, err := client.TrackGenres(context.Background(), models.Track{ID: id}); err != nil {
				t.Fatalf("lookup failed: %v", err)
			}
		}

		if nameLookups != 1 {
			t.Errorf("expected 1 genre name lookup, got %d", nameLookups)
		}
	})

	t.Run("No Genres Is Cached As Empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data": {"relationships": {"genres": {"data": []}}}}`)
		}))
		defer server.Close()

		cache := store.NewGenreCache("")
		client := newTestGenreClient(server, cache)

		genres, err := client.TrackGenres(context.Background(), models.Track{ID: "101"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(genres) != 0 {
			t.Errorf("expected empty genres, got %v", genres)
		}

		cached, ok := cache.Get("track:101")
		if !ok {
			t.Fatal("expected empty result to be cached")
		}
		if cached == nil || len(cached) != 0 {
			t.Errorf("expected empty non-nil cached list, got %#v", cached)
		}
	})

	t.Run("Unknown Genre Name Falls Back", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/tracks/101":
				fmt.Fprint(w, `{"data": {"relationships": {"genres": {"data": [{"id": "g9"}]}}}}`)
			case "/genres/g9":
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		client := newTestGenreClient(server, store.NewGenreCache(""))

		genres, err := client.TrackGenres(context.Background(), models.Track{ID: "101"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(genres) != 1 || genres[0] != "Unknown(g9)" {
			t.Errorf("expected Unknown(g9), got %v", genres)
		}
	})

	t.Run("Failed Lookup Is Not Cached", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		cache := store.NewGenreCache("")
		client := newTestGenreClient(server, cache)

		_, err := client.TrackGenres(context.Background(), models.Track{ID: "101"})
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Fatalf("expected ErrTrackNotFound, got %v", err)
		}

		if _, ok := cache.Get("track:101"); ok {
			t.Error("failed lookup must not be cached")
		}
	})
}
