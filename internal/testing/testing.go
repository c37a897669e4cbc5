// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/lowtide/lowtide/internal/models"
)

// MockPlaylistService is an in-memory test double for
// [services.PlaylistService]. Mutations are applied to the maps so tests can
// assert on end state, and per-method error injection simulates failures.
type MockPlaylistService struct {
	Playlists []models.Playlist
	Tracks    map[string][]models.Track // playlist ID -> tracks in order
	Favorites []string

	// Calls records the mutating calls in order, e.g. "AddTracks:pl1:2".
	Calls []string

	GetPlaylistsErr  error
	GetPlaylistErr   error
	TracksErr        error
	CreateErr        error
	AddTracksErr     error
	RemoveTracksErr  error
	FavoriteIDsErr   error
	AddFavoriteErr   error
	AddFavoriteFails map[string]error // per-track failures
}

func NewMockPlaylistService() *MockPlaylistService {
	return &MockPlaylistService{Tracks: make(map[string][]models.Track)}
}

func (m *MockPlaylistService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.GetPlaylistsErr != nil {
		return nil, m.GetPlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockPlaylistService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.GetPlaylistErr != nil {
		return nil, m.GetPlaylistErr
	}
	for i := range m.Playlists {
		if m.Playlists[i].ID == playlistID {
			pl := m.Playlists[i]
			pl.TrackCount = len(m.Tracks[playlistID])
			return &pl, nil
		}
	}
	return nil, errors.New("playlist not found")
}

func (m *MockPlaylistService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return m.Tracks[playlistID], nil
}

func (m *MockPlaylistService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	pl := models.Playlist{ID: "created-" + name, Name: name}
	m.Playlists = append(m.Playlists, pl)
	m.Calls = append(m.Calls, "CreatePlaylist:"+name)
	return &pl, nil
}

func (m *MockPlaylistService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.AddTracksErr != nil {
		return m.AddTracksErr
	}
	for _, id := range trackIDs {
		m.Tracks[playlistID] = append(m.Tracks[playlistID], models.Track{ID: id})
	}
	m.Calls = append(m.Calls, "AddTracks:"+playlistID)
	return nil
}

func (m *MockPlaylistService) RemoveTracks(ctx context.Context, playlistID string, indices []int) error {
	if m.RemoveTracksErr != nil {
		return m.RemoveTracksErr
	}
	remove := make(map[int]bool, len(indices))
	for _, i := range indices {
		remove[i] = true
	}
	var kept []models.Track
	for i, tr := range m.Tracks[playlistID] {
		if !remove[i] {
			kept = append(kept, tr)
		}
	}
	m.Tracks[playlistID] = kept
	m.Calls = append(m.Calls, "RemoveTracks:"+playlistID)
	return nil
}

func (m *MockPlaylistService) FavoriteIDs(ctx context.Context) ([]string, error) {
	if m.FavoriteIDsErr != nil {
		return nil, m.FavoriteIDsErr
	}
	return m.Favorites, nil
}

func (m *MockPlaylistService) AddFavorite(ctx context.Context, trackID string) error {
	if m.AddFavoriteErr != nil {
		return m.AddFavoriteErr
	}
	if err, ok := m.AddFavoriteFails[trackID]; ok {
		return err
	}
	m.Favorites = append(m.Favorites, trackID)
	m.Calls = append(m.Calls, "AddFavorite:"+trackID)
	return nil
}

// MockGenreProvider resolves genres from a fixed map keyed by track ID.
type MockGenreProvider struct {
	Genres map[string][]string
	Errs   map[string]error
	// Lookups counts TrackGenres calls per track ID.
	Lookups map[string]int
}

func NewMockGenreProvider() *MockGenreProvider {
	return &MockGenreProvider{
		Genres:  make(map[string][]string),
		Errs:    make(map[string]error),
		Lookups: make(map[string]int),
	}
}

func (m *MockGenreProvider) TrackGenres(ctx context.Context, track models.Track) ([]string, error) {
	m.Lookups[track.ID]++
	if err, ok := m.Errs[track.ID]; ok {
		return nil, err
	}
	if genres, ok := m.Genres[track.ID]; ok {
		return genres, nil
	}
	return []string{}, nil
}

func (m *MockGenreProvider) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function to http.RoundTripper for per-request logic.
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
