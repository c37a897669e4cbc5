package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lowtide/lowtide/internal/auth"
	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/lowtide/lowtide/internal/store"
	"golang.org/x/time/rate"
)

const tidalOpenAPIBaseURL = "https://openapi.tidal.com/v2"

// TidalGenreClient resolves track genres through the Tidal v2 catalog API.
//
// Track lookups write through to the persistent genre cache under
// "track:{id}" keys. Genre ids resolve to display names through a separate
// in-run name cache; a name that fails to resolve renders as "Unknown({id})"
// rather than failing the whole track lookup.
type TidalGenreClient struct {
	baseURL    string
	httpClient *http.Client
	session    *auth.Session
	limiter    *rate.Limiter
	retry      RetryPolicy
	cache      *store.GenreCache
	genreNames map[string]string
}

// NewTidalGenreClient creates a genre client backed by the given cache.
func NewTidalGenreClient(session *auth.Session, cache *store.GenreCache, minInterval float64, httpClient *http.Client) *TidalGenreClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TidalGenreClient{
		baseURL:    tidalOpenAPIBaseURL,
		httpClient: httpClient,
		session:    session,
		limiter:    rate.NewLimiter(rate.Every(time.Duration(minInterval*float64(time.Second))), 1),
		retry:      DefaultRetryPolicy(),
		cache:      cache,
		genreNames: make(map[string]string),
	}
}

func (c *TidalGenreClient) Name() string { return shared.DetectionTidal }

// v2 responses follow the JSON:API convention: resources under "data",
// linked resources under "relationships".
type tidalV2Resource struct {
	ID         string `json:"id"`
	Attributes struct {
		GenreName string `json:"genreName"`
	} `json:"attributes"`
	Relationships struct {
		Genres struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"genres"`
	} `json:"relationships"`
}

type tidalV2Response struct {
	Data tidalV2Resource `json:"data"`
}

// TrackGenres returns the genre names for a track, consulting the persistent
// cache first. A successful lookup is cached even when the track has no
// genres; a failed API call is not cached and surfaces as an error.
func (c *TidalGenreClient) TrackGenres(ctx context.Context, track models.Track) ([]string, error) {
	key := "track:" + track.ID
	if genres, ok := c.cache.Get(key); ok {
		return genres, nil
	}

	query := url.Values{"include": {"genres"}}
	var resp tidalV2Response
	if err := c.doRequest(ctx, "/tracks/"+track.ID, query, &resp); err != nil {
		return nil, err
	}

	genres := make([]string, 0, len(resp.Data.Relationships.Genres.Data))
	for _, ref := range resp.Data.Relationships.Genres.Data {
		genres = append(genres, c.genreName(ctx, ref.ID))
	}

	c.cache.Put(key, genres)
	return genres, nil
}

// genreName resolves a genre id to its display name, memoized for the run.
func (c *TidalGenreClient) genreName(ctx context.Context, genreID string) string {
	if name, ok := c.genreNames[genreID]; ok {
		return name
	}

	var resp tidalV2Response
	if err := c.doRequest(ctx, "/genres/"+genreID, nil, &resp); err != nil || resp.Data.Attributes.GenreName == "" {
		return fmt.Sprintf("Unknown(%s)", genreID)
	}

	c.genreNames[genreID] = resp.Data.Attributes.GenreName
	return resp.Data.Attributes.GenreName
}

// doRequest performs a rate-limited GET against the v2 API.
func (c *TidalGenreClient) doRequest(ctx context.Context, path string, query url.Values, result any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.session.CountryCode != "" {
		query.Set("countryCode", c.session.CountryCode)
	}
	requestURL := c.baseURL + path + "?" + query.Encode()

	return c.retry.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.session.Token.AccessToken)
		req.Header.Set("Accept", "application/vnd.api+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrTransient, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: status 404", shared.ErrTrackNotFound)
		}
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
