package services

import (
	"context"

	"github.com/lowtide/lowtide/internal/models"
)

// PlaylistService defines the playlist and favorites operations the curation
// batch performs against the music service.
type PlaylistService interface {
	// GetPlaylists retrieves all playlists owned by the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// PlaylistTracks retrieves a playlist's tracks in playlist-native order
	// (earliest position first).
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// CreatePlaylist creates a new empty playlist owned by the user.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// AddTracks appends the given tracks to the bottom of the playlist,
	// preserving their relative order.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// RemoveTracks removes the tracks at the given zero-based positions.
	RemoveTracks(ctx context.Context, playlistID string, indices []int) error

	// FavoriteIDs retrieves the ids of all tracks in the user's favorites.
	FavoriteIDs(ctx context.Context) ([]string, error)

	// AddFavorite adds a single track to the user's favorites.
	AddFavorite(ctx context.Context, trackID string) error
}

// GenreProvider resolves the genre list for a track.
//
// A successful empty result means the provider definitively has no genre
// data for the track; an error means the lookup itself failed and should be
// retried on a later run.
type GenreProvider interface {
	// TrackGenres returns the genre names for a track.
	TrackGenres(ctx context.Context, track models.Track) ([]string, error)

	// Name returns the provider name (e.g. "tidal", "spotify").
	Name() string
}
