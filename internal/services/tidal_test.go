package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lowtide/lowtide/internal/auth"
	"github.com/lowtide/lowtide/internal/shared"
	"golang.org/x/oauth2"
)

func testSession() *auth.Session {
	return &auth.Session{
		Token:       &oauth2.Token{AccessToken: "test-token", Expiry: time.Now().Add(time.Hour)},
		UserID:      "42",
		CountryCode: "US",
	}
}

func newTestTidalService(server *httptest.Server) *TidalService {
	svc := NewTidalService(testSession(), 0, server.Client())
	svc.baseURL = server.URL
	svc.retry = RetryPolicy{Backoff: []time.Duration{time.Millisecond}}
	return svc
}

func TestTidalService(t *testing.T) {
	t.Run("GetPlaylists Paginates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/users/42/playlists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("countryCode") != "US" {
				t.Error("expected countryCode query param")
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("unexpected auth header %q", got)
			}

			offset := r.URL.Query().Get("offset")
			if offset == "0" {
				fmt.Fprint(w, `{"items": [{"uuid": "pl1", "title": "First", "numberOfTracks": 3}], "totalNumberOfItems": 2}`)
			} else {
				fmt.Fprint(w, `{"items": [{"uuid": "pl2", "title": "Second", "numberOfTracks": 1}], "totalNumberOfItems": 2}`)
			}
		}))
		defer server.Close()

		playlists, err := newTestTidalService(server).GetPlaylists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		if playlists[0].ID != "pl1" || playlists[0].Name != "First" || playlists[0].TrackCount != 3 {
			t.Errorf("unexpected first playlist: %+v", playlists[0])
		}
		if playlists[1].ID != "pl2" {
			t.Errorf("unexpected second playlist: %+v", playlists[1])
		}
	})

	t.Run("PlaylistTracks Maps Artists", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"items": [
					{"id": 101, "title": "Song A", "artists": [{"id": 1, "name": "Artist A"}, {"id": 2, "name": "Feature"}]},
					{"id": 102, "title": "Song B", "artists": [{"id": 3, "name": "Artist B"}]}
				],
				"totalNumberOfItems": 2
			}`)
		}))
		defer server.Close()

		tracks, err := newTestTidalService(server).PlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		if tracks[0].ID != "101" || tracks[0].Artist() != "Artist A" {
			t.Errorf("unexpected first track: %+v", tracks[0])
		}
		if len(tracks[0].Artists) != 2 {
			t.Errorf("expected 2 artists, got %v", tracks[0].Artists)
		}
	})

	t.Run("AddTracks Sends ETag And Form", func(t *testing.T) {
		var gotETag, gotTrackIDs, gotDupes string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/playlists/pl1":
				w.Header().Set("ETag", "12345")
				fmt.Fprint(w, `{"uuid": "pl1", "title": "Dest"}`)
			case r.Method == http.MethodPost && r.URL.Path == "/playlists/pl1/items":
				r.ParseForm()
				gotETag = r.Header.Get("If-None-Match")
				gotTrackIDs = r.PostForm.Get("trackIds")
				gotDupes = r.PostForm.Get("onDupes")
				w.WriteHeader(http.StatusOK)
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		}))
		defer server.Close()

		err := newTestTidalService(server).AddTracks(context.Background(), "pl1", []string{"t1", "t2"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotETag != "12345" {
			t.Errorf("expected If-None-Match 12345, got %q", gotETag)
		}
		if gotTrackIDs != "t1,t2" {
			t.Errorf("expected trackIds t1,t2, got %q", gotTrackIDs)
		}
		if gotDupes != "SKIP" {
			t.Errorf("expected onDupes SKIP, got %q", gotDupes)
		}
	})

	t.Run("AddTracks Empty Is No-Op", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected for empty add")
		}))
		defer server.Close()

		if err := newTestTidalService(server).AddTracks(context.Background(), "pl1", nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("RemoveTracks Uses Index Path", func(t *testing.T) {
		var gotPath string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				w.Header().Set("ETag", "9")
				fmt.Fprint(w, `{"uuid": "pl1"}`)
			case http.MethodDelete:
				gotPath = r.URL.Path
				w.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		err := newTestTidalService(server).RemoveTracks(context.Background(), "pl1", []int{0, 1, 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotPath != "/playlists/pl1/items/0,1,2" {
			t.Errorf("unexpected delete path %q", gotPath)
		}
	})

	t.Run("FavoriteIDs Unwraps Items", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items": [{"item": {"id": 7}}, {"item": {"id": 8}}], "totalNumberOfItems": 2}`)
		}))
		defer server.Close()

		ids, err := newTestTidalService(server).FavoriteIDs(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(ids) != 2 || ids[0] != "7" || ids[1] != "8" {
			t.Errorf("unexpected favorite ids %v", ids)
		}
	})

	t.Run("Status Mapping", func(t *testing.T) {
		tests := []struct {
			status int
			want   error
		}{
			{http.StatusUnauthorized, shared.ErrAuthFailed},
			{http.StatusForbidden, shared.ErrAuthFailed},
			{http.StatusNotFound, shared.ErrPlaylistNotFound},
			{http.StatusInternalServerError, shared.ErrAPIRequest},
		}

		for _, tt := range tests {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := newTestTidalService(server).GetPlaylist(context.Background(), "pl1")
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
			}
			server.Close()
		}
	})

	t.Run("Rate Limit Is Retried", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"uuid": "pl1", "title": "Dest"})
		}))
		defer server.Close()

		pl, err := newTestTidalService(server).GetPlaylist(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
		if pl.ID != "pl1" {
			t.Errorf("unexpected playlist %+v", pl)
		}
	})
}
