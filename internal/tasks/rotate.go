package tasks

import (
	"context"
	"fmt"

	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/shared"
)

// RotateResult summarizes a rotation run.
type RotateResult struct {
	Master  *models.Playlist
	Archive *models.Playlist
	// Moved holds the tracks archived this run, oldest first.
	Moved  []models.Track
	Before int
	After  int
	DryRun bool
}

// Rotate moves the oldest overflow tracks from the master playlist to the
// archive when the master exceeds its configured size.
//
// Tracks are appended to the archive before they are removed from the
// master. If the append fails nothing is removed and the overflow stays in
// place for the next run.
func (e *CurationEngine) Rotate(ctx context.Context, updates chan<- ProgressUpdate) (*RotateResult, error) {
	cfg := e.config.Rotate
	if cfg.MasterPlaylistID == "" || cfg.ArchivePlaylistID == "" {
		return nil, fmt.Errorf("%w: rotation requires master and archive playlist ids", shared.ErrInvalidConfig)
	}

	master, err := e.playlists.GetPlaylist(ctx, cfg.MasterPlaylistID)
	if err != nil {
		return nil, fmt.Errorf("fetching master playlist: %w", err)
	}

	archive, err := e.playlists.GetPlaylist(ctx, cfg.ArchivePlaylistID)
	if err != nil {
		return nil, fmt.Errorf("fetching archive playlist: %w", err)
	}

	e.sendProgress(updates, fetchRotationUpdate(master, archive, cfg.MaxTracks))

	result := &RotateResult{Master: master, Archive: archive, DryRun: e.dryRun}

	tracks, err := e.playlists.PlaylistTracks(ctx, master.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching master tracks: %w", err)
	}

	result.Before = len(tracks)
	result.After = len(tracks)

	overflow := len(tracks) - cfg.MaxTracks
	if overflow <= 0 {
		e.logger.Info("master playlist within limit, no rotation needed",
			"tracks", len(tracks), "limit", cfg.MaxTracks)
		return result, nil
	}

	// Playlist order is append-only, so the first entries are the oldest.
	oldest := tracks[:overflow]
	result.Moved = oldest

	for i, tr := range oldest {
		e.sendProgress(updates, rotateTracksUpdate(i+1, overflow, tr))
	}

	if e.dryRun {
		return result, nil
	}

	if err := e.playlists.AddTracks(ctx, archive.ID, trackIDs(oldest)); err != nil {
		result.Moved = nil
		return result, fmt.Errorf("archiving %d tracks: %w", overflow, err)
	}

	indices := make([]int, overflow)
	for i := range indices {
		indices[i] = i
	}

	if err := e.playlists.RemoveTracks(ctx, master.ID, indices); err != nil {
		// The tracks are safe in the archive; the master just has
		// duplicates until the next successful rotation.
		return result, fmt.Errorf("removing archived tracks from master: %w", err)
	}

	result.After = len(tracks) - overflow

	e.logger.Info("rotation complete", "moved", overflow,
		"master", result.After, "archive", archive.TrackCount+overflow)

	return result, nil
}
