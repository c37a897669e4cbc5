package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/lowtide/lowtide/internal/store"
)

// likeProgressEvery controls how often bulk favoriting reports progress.
const likeProgressEvery = 100

// LikeResult summarizes a bulk-favorite run.
type LikeResult struct {
	// Playlists whose names carry the configured prefix.
	Playlists []models.Playlist
	// Candidates are the tracks that were not yet favorited.
	Candidates []models.Track
	Liked      int
	Failed     int
	Already    int
	DryRun     bool
}

// Like favorites every track in the playlists whose names start with the
// configured prefix. Already-favorited tracks are skipped, so reruns only
// touch what is missing.
func (e *CurationEngine) Like(ctx context.Context, updates chan<- ProgressUpdate) (*LikeResult, error) {
	prefix := e.config.Like.PlaylistPrefix
	if prefix == "" {
		return nil, fmt.Errorf("%w: like requires a playlist name prefix", shared.ErrInvalidConfig)
	}

	playlists, err := e.playlists.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}

	result := &LikeResult{DryRun: e.dryRun}

	for _, pl := range playlists {
		if strings.HasPrefix(pl.Name, prefix) {
			result.Playlists = append(result.Playlists, pl)
		}
	}

	if len(result.Playlists) == 0 {
		return nil, fmt.Errorf("%w: no playlists named with prefix %q", shared.ErrPlaylistNotFound, prefix)
	}

	favoriteIDs, err := e.playlists.FavoriteIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching favorites: %w", err)
	}

	favorites := store.NewIDSet("")
	favorites.AddAll(favoriteIDs)

	e.sendProgress(updates, fetchFavoritesUpdate(favorites.Len()))

	// Union of all matching playlists, deduplicated, first occurrence wins.
	seen := store.NewIDSet("")

	for i := range result.Playlists {
		pl := &result.Playlists[i]
		e.sendProgress(updates, likePlaylistUpdate(i+1, len(result.Playlists), pl))

		tracks, err := e.playlists.PlaylistTracks(ctx, pl.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching tracks for %s: %w", pl.Name, err)
		}

		for _, tr := range tracks {
			if seen.Contains(tr.ID) {
				continue
			}
			seen.Add(tr.ID)

			if favorites.Contains(tr.ID) {
				result.Already++
				continue
			}

			result.Candidates = append(result.Candidates, tr)
		}
	}

	if e.dryRun {
		return result, nil
	}

	for i, tr := range result.Candidates {
		if err := e.playlists.AddFavorite(ctx, tr.ID); err != nil {
			result.Failed++
			e.logger.Warn("favoriting failed", "track", tr.Title, "artist", tr.Artist(), "err", err)
			continue
		}

		result.Liked++

		if (i+1)%likeProgressEvery == 0 {
			e.sendProgress(updates, likeProgressUpdate(i+1, len(result.Candidates)))
		}
	}

	e.logger.Info("bulk favoriting complete",
		"liked", result.Liked, "failed", result.Failed, "already", result.Already)

	return result, nil
}
