// Tidal v1 API implementation of [PlaylistService]
//
// Endpoint shapes based on https://api.tidal.com/v1/ as consumed by the
// official clients: playlist items are paginated, playlist mutation is
// guarded by ETags, and favorites are scoped per user.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lowtide/lowtide/internal/auth"
	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/shared"
	"golang.org/x/time/rate"
)

const (
	tidalBaseURL  = "https://api.tidal.com/v1"
	tidalPageSize = 100
)

type tidalArtist struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// tidalTrack represents a track resource in v1 responses.
type tidalTrack struct {
	ID      json.Number   `json:"id"`
	Title   string        `json:"title"`
	Artists []tidalArtist `json:"artists"`
}

// tidalPlaylist represents a playlist resource in v1 responses.
type tidalPlaylist struct {
	UUID           string `json:"uuid"`
	Title          string `json:"title"`
	NumberOfTracks int    `json:"numberOfTracks"`
}

type tidalPaginatedPlaylists struct {
	Items              []tidalPlaylist `json:"items"`
	TotalNumberOfItems int             `json:"totalNumberOfItems"`
	Limit              int             `json:"limit"`
	Offset             int             `json:"offset"`
}

type tidalPaginatedTracks struct {
	Items              []tidalTrack `json:"items"`
	TotalNumberOfItems int          `json:"totalNumberOfItems"`
	Limit              int          `json:"limit"`
	Offset             int          `json:"offset"`
}

type tidalFavoriteItem struct {
	Item tidalTrack `json:"item"`
}

type tidalPaginatedFavorites struct {
	Items              []tidalFavoriteItem `json:"items"`
	TotalNumberOfItems int                 `json:"totalNumberOfItems"`
}

// TidalService implements [PlaylistService] against the Tidal v1 API.
//
// Every outbound call waits on the service's rate limiter first; 429
// responses are retried per the retry policy. Playlist mutations fetch the
// playlist's current ETag and send it back as If-None-Match, matching how
// the official clients guard concurrent edits.
type TidalService struct {
	baseURL    string
	httpClient *http.Client
	session    *auth.Session
	limiter    *rate.Limiter
	retry      RetryPolicy
}

// NewTidalService creates a Tidal client for the given session.
// minInterval is the minimum spacing between outbound calls in seconds.
func NewTidalService(session *auth.Session, minInterval float64, httpClient *http.Client) *TidalService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TidalService{
		baseURL:    tidalBaseURL,
		httpClient: httpClient,
		session:    session,
		limiter:    rate.NewLimiter(rate.Every(time.Duration(minInterval*float64(time.Second))), 1),
		retry:      DefaultRetryPolicy(),
	}
}

// endpoint builds a request URL with the session's country code attached.
func (s *TidalService) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if s.session.CountryCode != "" {
		query.Set("countryCode", s.session.CountryCode)
	}
	return s.baseURL + path + "?" + query.Encode()
}

// doRequest performs a rate-limited, retried HTTP request against the v1 API.
// form, etag and result are all optional.
func (s *TidalService) doRequest(ctx context.Context, method, requestURL string, form url.Values, etag string, result any) error {
	return s.retry.Do(ctx, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		var req *http.Request
		var err error
		if form != nil {
			req, err = http.NewRequestWithContext(ctx, method, requestURL, strings.NewReader(form.Encode()))
			if err == nil {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
		} else {
			req, err = http.NewRequestWithContext(ctx, method, requestURL, nil)
		}
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+s.session.Token.AccessToken)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrTransient, err)
		}
		defer resp.Body.Close()

		if err := mapStatus(resp.StatusCode); err != nil {
			return err
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	})
}

// mapStatus converts an HTTP status code to the shared error taxonomy.
func mapStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, code)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", shared.ErrPlaylistNotFound, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", shared.ErrRateLimited, code)
	default:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, code)
	}
}

// fetchETag reads the playlist's current ETag, required for mutations.
func (s *TidalService) fetchETag(ctx context.Context, playlistID string) (string, error) {
	var etag string
	err := s.retry.Do(ctx, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/playlists/"+playlistID, nil), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.session.Token.AccessToken)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrTransient, err)
		}
		defer resp.Body.Close()

		if err := mapStatus(resp.StatusCode); err != nil {
			return err
		}
		etag = resp.Header.Get("ETag")
		return nil
	})
	return etag, err
}

// GetPlaylists retrieves all playlists owned by the authenticated user.
func (s *TidalService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	offset := 0

	for {
		query := url.Values{
			"limit":  {strconv.Itoa(tidalPageSize)},
			"offset": {strconv.Itoa(offset)},
		}

		var page tidalPaginatedPlaylists
		endpoint := s.endpoint("/users/"+s.session.UserID+"/playlists", query)
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, "", &page); err != nil {
			return nil, err
		}

		for _, pl := range page.Items {
			all = append(all, models.Playlist{
				ID:         pl.UUID,
				Name:       pl.Title,
				TrackCount: pl.NumberOfTracks,
			})
		}

		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.TotalNumberOfItems {
			break
		}
	}

	return all, nil
}

// GetPlaylist retrieves a playlist by ID.
func (s *TidalService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var pl tidalPlaylist
	if err := s.doRequest(ctx, http.MethodGet, s.endpoint("/playlists/"+playlistID, nil), nil, "", &pl); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:         pl.UUID,
		Name:       pl.Title,
		TrackCount: pl.NumberOfTracks,
	}, nil
}

// PlaylistTracks retrieves a playlist's tracks in playlist-native order.
func (s *TidalService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var all []models.Track
	offset := 0

	for {
		query := url.Values{
			"limit":  {strconv.Itoa(tidalPageSize)},
			"offset": {strconv.Itoa(offset)},
		}

		var page tidalPaginatedTracks
		endpoint := s.endpoint("/playlists/"+playlistID+"/tracks", query)
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, "", &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			all = append(all, toTrack(item))
		}

		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.TotalNumberOfItems {
			break
		}
	}

	return all, nil
}

// CreatePlaylist creates a new empty playlist owned by the user.
func (s *TidalService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	form := url.Values{
		"title":       {name},
		"description": {description},
	}

	var pl tidalPlaylist
	endpoint := s.endpoint("/users/"+s.session.UserID+"/playlists", nil)
	if err := s.doRequest(ctx, http.MethodPost, endpoint, form, "", &pl); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:         pl.UUID,
		Name:       pl.Title,
		TrackCount: pl.NumberOfTracks,
	}, nil
}

// AddTracks appends tracks to the bottom of the playlist in the given order.
func (s *TidalService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	etag, err := s.fetchETag(ctx, playlistID)
	if err != nil {
		return err
	}

	form := url.Values{
		"trackIds":           {strings.Join(trackIDs, ",")},
		"onArtifactNotFound": {"FAIL"},
		"onDupes":            {"SKIP"},
	}
	endpoint := s.endpoint("/playlists/"+playlistID+"/items", nil)
	return s.doRequest(ctx, http.MethodPost, endpoint, form, etag, nil)
}

// RemoveTracks removes the tracks at the given zero-based positions.
func (s *TidalService) RemoveTracks(ctx context.Context, playlistID string, indices []int) error {
	if len(indices) == 0 {
		return nil
	}

	etag, err := s.fetchETag(ctx, playlistID)
	if err != nil {
		return err
	}

	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	endpoint := s.endpoint("/playlists/"+playlistID+"/items/"+strings.Join(parts, ","), nil)
	return s.doRequest(ctx, http.MethodDelete, endpoint, nil, etag, nil)
}

// FavoriteIDs retrieves the ids of all tracks in the user's favorites.
func (s *TidalService) FavoriteIDs(ctx context.Context) ([]string, error) {
	var all []string
	offset := 0

	for {
		query := url.Values{
			"limit":  {strconv.Itoa(tidalPageSize)},
			"offset": {strconv.Itoa(offset)},
		}

		var page tidalPaginatedFavorites
		endpoint := s.endpoint("/users/"+s.session.UserID+"/favorites/tracks", query)
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, "", &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			all = append(all, item.Item.ID.String())
		}

		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.TotalNumberOfItems {
			break
		}
	}

	return all, nil
}

// AddFavorite adds a single track to the user's favorites.
func (s *TidalService) AddFavorite(ctx context.Context, trackID string) error {
	form := url.Values{"trackIds": {trackID}}
	endpoint := s.endpoint("/users/"+s.session.UserID+"/favorites/tracks", nil)
	return s.doRequest(ctx, http.MethodPost, endpoint, form, "", nil)
}

// toTrack converts a v1 track resource to the domain model.
func toTrack(t tidalTrack) models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return models.Track{
		ID:      t.ID.String(),
		Title:   t.Title,
		Artists: artists,
	}
}
