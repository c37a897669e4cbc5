// Spotify fallback implementation of [GenreProvider]
//
// Spotify has no per-track genre data, so the fallback resolves genres from
// the track's primary artist via the search API, authenticated with the
// client-credentials grant.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/lowtide/lowtide/internal/store"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
	spotifySearchURL = "https://api.spotify.com/v1/search"
)

type spotifyArtist struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type spotifySearchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

// SpotifyGenreClient implements [GenreProvider] using artist search.
//
// Lookups are keyed by lowercased artist name ("artist:{name}") in the
// persistent cache, so tracks sharing an artist cost one API call total.
type SpotifyGenreClient struct {
	searchURL  string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
	retry      RetryPolicy
	cache      *store.GenreCache
}

// NewSpotifyGenreClient creates a fallback genre client. clientID and
// clientSecret come from the environment (SPOTIFY_CLIENT_ID /
// SPOTIFY_CLIENT_SECRET), never from the config document.
func NewSpotifyGenreClient(clientID, clientSecret string, cache *store.GenreCache, minInterval float64, httpClient *http.Client) (*SpotifyGenreClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set", shared.ErrAuthFailed)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyGenreClient{
		searchURL:  spotifySearchURL,
		httpClient: httpClient,
		tokens:     config.TokenSource(context.Background()),
		limiter:    rate.NewLimiter(rate.Every(time.Duration(minInterval*float64(time.Second))), 1),
		retry:      DefaultRetryPolicy(),
		cache:      cache,
	}, nil
}

func (c *SpotifyGenreClient) Name() string { return shared.DetectionSpotify }

// TrackGenres resolves genres from the track's primary artist. A search that
// finds no artist is a definitive empty result and is cached; a failed call
// is not.
func (c *SpotifyGenreClient) TrackGenres(ctx context.Context, track models.Track) ([]string, error) {
	artist := track.Artist()
	if artist == "" {
		return []string{}, nil
	}

	key := "artist:" + strings.ToLower(artist)
	if genres, ok := c.cache.Get(key); ok {
		return genres, nil
	}

	query := url.Values{
		"q":     {artist},
		"type":  {"artist"},
		"limit": {"1"},
	}

	var resp spotifySearchResponse
	if err := c.doRequest(ctx, c.searchURL+"?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	genres := []string{}
	if len(resp.Artists.Items) > 0 && resp.Artists.Items[0].Genres != nil {
		genres = resp.Artists.Items[0].Genres
	}

	c.cache.Put(key, genres)
	return genres, nil
}

// doRequest performs a rate-limited, token-authenticated GET.
func (c *SpotifyGenreClient) doRequest(ctx context.Context, requestURL string, result any) error {
	return c.retry.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("%w: client credentials: %v", shared.ErrAuthFailed, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		token.SetAuthHeader(req)

		resp, err := c.httpClient.Do(req)
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
