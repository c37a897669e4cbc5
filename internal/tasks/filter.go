package tasks

import (
	"context"
	"fmt"

	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/lowtide/lowtide/internal/store"
)

// addBatchSize caps the number of tracks sent per add request.
const addBatchSize = 50

// FilterResult summarizes a filter run.
type FilterResult struct {
	Destination        *models.Playlist
	DestinationCreated bool
	Decisions          []TrackDecision
	Added              []models.Track
	RemovedByUser      int
	Evaluated          int
	Blocked            int
	Skipped            int
	Duplicates         int
	Excluded           int
	Errored            int
	DryRun             bool
}

// Filter runs the genre-filter pipeline: evaluate every unprocessed track in
// the source playlists against the blocklist and append the survivors to the
// destination playlist.
//
// Tracks whose genre lookup fails are left unprocessed and retried on the
// next run. Tracks the user manually removed from the destination are
// permanently excluded from re-adding.
func (e *CurationEngine) Filter(ctx context.Context, updates chan<- ProgressUpdate) (*FilterResult, error) {
	if len(e.config.SourcePlaylistIDs) == 0 {
		return nil, fmt.Errorf("%w: no source playlists configured", shared.ErrInvalidConfig)
	}

	result := &FilterResult{DryRun: e.dryRun}

	e.sendProgress(updates, fetchDestinationUpdate(e.config.DestinationPlaylistName))

	dest, created, err := e.resolveDestination(ctx)
	if err != nil {
		return nil, err
	}

	result.Destination = dest
	result.DestinationCreated = created

	existing := store.NewIDSet("")
	if dest != nil && !created {
		tracks, err := e.playlists.PlaylistTracks(ctx, dest.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching destination tracks: %w", err)
		}

		for _, t := range tracks {
			existing.Add(t.ID)
		}
	}

	if dest != nil {
		e.sendProgress(updates, destinationResolvedUpdate(dest, existing.Len()))
	}

	// Anything in the last snapshot but gone from the destination now was
	// removed by the user and must never come back.
	newlyRemoved := 0
	for _, id := range e.snapshot.IDs() {
		if !existing.Contains(id) && !e.removed.Contains(id) {
			e.removed.Add(id)
			newlyRemoved++
		}
	}

	result.RemovedByUser = newlyRemoved
	if newlyRemoved > 0 {
		e.sendProgress(updates, detectRemovalsUpdate(newlyRemoved))
	}

	var toAdd []models.Track

	for i, sourceID := range e.config.SourcePlaylistIDs {
		source, err := e.playlists.GetPlaylist(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("fetching source playlist %s: %w", sourceID, err)
		}

		e.sendProgress(updates, filterSourceUpdate(i+1, len(e.config.SourcePlaylistIDs), source))

		tracks, err := e.playlists.PlaylistTracks(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("fetching tracks for %s: %w", source.Name, err)
		}

		for _, track := range tracks {
			if e.ledger.Contains(track.ID) {
				continue
			}

			d := e.evaluate(ctx, track, existing)
			result.Decisions = append(result.Decisions, d)
			result.Evaluated++

			e.sendProgress(updates, decisionUpdate(d))

			switch d.Action {
			case ActionAdd, ActionKeepUnknown:
				toAdd = append(toAdd, d.Track)
			case ActionBlock:
				result.Blocked++
				e.ledger.Mark(track.ID)
			case ActionSkipUnknown:
				result.Skipped++
				e.ledger.Mark(track.ID)
			case ActionDuplicate:
				result.Duplicates++
				e.ledger.Mark(track.ID)
			case ActionExcludeRemoved:
				result.Excluded++
				e.ledger.Mark(track.ID)
			case ActionError:
				result.Errored++
				e.logger.Warn("genre lookup failed, will retry next run",
					"track", d.Track.Title, "artist", d.Track.Artist(), "err", d.Err)
			}
		}
	}

	if len(toAdd) > 0 && dest != nil {
		e.sendProgress(updates, addTracksUpdate(len(toAdd), dest.Name))
	}

	if !e.dryRun && len(toAdd) > 0 {
		if dest == nil {
			return nil, fmt.Errorf("%w: no destination playlist", shared.ErrPlaylistNotFound)
		}

		ids := trackIDs(toAdd)
		for start := 0; start < len(ids); start += addBatchSize {
			end := min(start+addBatchSize, len(ids))

			if err := e.playlists.AddTracks(ctx, dest.ID, ids[start:end]); err != nil {
				// Unmarked tracks are retried next run; already-added
				// batches are deduplicated by the destination check then.
				e.saveFilterState(updates, result)
				return result, fmt.Errorf("adding tracks to %s: %w", dest.Name, err)
			}

			for _, id := range ids[start:end] {
				e.ledger.Mark(id)
				existing.Add(id)
			}
		}
	}

	result.Added = toAdd

	if e.dryRun {
		// Genre caches still persist so a later real run skips the lookups.
		if err := e.cache.Save(); err != nil {
			e.logger.Warn("saving genre cache", "err", err)
		}

		return result, nil
	}

	e.snapshot.Replace(existing.IDs())
	e.saveFilterState(updates, result)

	return result, nil
}

// evaluate decides what to do with a single unprocessed track. It never
// mutates the ledger; marking is the caller's job so tracks with failed
// lookups stay unprocessed.
func (e *CurationEngine) evaluate(ctx context.Context, track models.Track, existing *store.IDSet) TrackDecision {
	if e.removed.Contains(track.ID) {
		return TrackDecision{Track: track, Action: ActionExcludeRemoved}
	}

	genres, err := e.genres.TrackGenres(ctx, track)
	if err != nil {
		return TrackDecision{Track: track, Action: ActionError, Err: err}
	}

	if e.isBlocked(genres) {
		return TrackDecision{Track: track, Genres: genres, Action: ActionBlock}
	}

	if existing.Contains(track.ID) {
		return TrackDecision{Track: track, Genres: genres, Action: ActionDuplicate}
	}

	if len(genres) == 0 {
		if e.config.UnknownGenrePolicy == shared.PolicySkip {
			return TrackDecision{Track: track, Action: ActionSkipUnknown}
		}

		return TrackDecision{Track: track, Action: ActionKeepUnknown}
	}

	return TrackDecision{Track: track, Genres: genres, Action: ActionAdd}
}

// resolveDestination finds the destination playlist by configured ID, then by
// name, and finally creates it. Dry runs never create; they report a nil
// destination instead.
func (e *CurationEngine) resolveDestination(ctx context.Context) (*models.Playlist, bool, error) {
	if id := e.config.DestinationPlaylistID; id != "" {
		pl, err := e.playlists.GetPlaylist(ctx, id)
		if err == nil {
			return pl, false, nil
		}

		e.logger.Warn("configured destination id not found, falling back to name lookup",
			"id", id, "err", err)
	}

	playlists, err := e.playlists.GetPlaylists(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("listing playlists: %w", err)
	}

	for i := range playlists {
		if playlists[i].Name == e.config.DestinationPlaylistName {
			return &playlists[i], false, nil
		}
	}

	if e.dryRun {
		e.logger.Info("would create destination playlist", "name", e.config.DestinationPlaylistName)
		return nil, true, nil
	}

	pl, err := e.playlists.CreatePlaylist(ctx, e.config.DestinationPlaylistName, "Auto-curated by lowtide")
	if err != nil {
		return nil, false, fmt.Errorf("creating destination playlist: %w", err)
	}

	e.logger.Info("created destination playlist", "name", pl.Name, "id", pl.ID)

	return pl, true, nil
}

// saveFilterState persists every state file a filter run touches. Failures
// are logged, not returned; a lost ledger write only means re-evaluating
// cached tracks next run.
func (e *CurationEngine) saveFilterState(updates chan<- ProgressUpdate, result *FilterResult) {
	e.sendProgress(updates, persistStateUpdate(e.ledger.Len()))

	if err := e.cache.Save(); err != nil {
		e.logger.Warn("saving genre cache", "err", err)
	}

	if err := e.ledger.Save(); err != nil {
		e.logger.Warn("saving processed ledger", "err", err)
	}

	if err := e.removed.Save(); err != nil {
		e.logger.Warn("saving removed-tracks list", "err", err)
	}

	if err := e.snapshot.Save(); err != nil {
		e.logger.Warn("saving destination snapshot", "err", err)
	}
}
