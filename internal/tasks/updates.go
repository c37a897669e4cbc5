package tasks

import (
	"fmt"

	"github.com/lowtide/lowtide/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchDestination Phase = iota
	DetectRemovals
	FilterSource
	EvaluateTrack
	AddTracks
	FetchRotation
	RotateTracks
	FetchLikePlaylists
	FetchFavorites
	LikeTracks
	PersistState
)

func (p Phase) String() string {
	switch p {
	case FetchDestination:
		return "fetch_destination"
	case DetectRemovals:
		return "detect_removals"
	case FilterSource:
		return "filter_source"
	case EvaluateTrack:
		return "evaluate_track"
	case AddTracks:
		return "add_tracks"
	case FetchRotation:
		return "fetch_rotation"
	case RotateTracks:
		return "rotate_tracks"
	case FetchLikePlaylists:
		return "fetch_like_playlists"
	case FetchFavorites:
		return "fetch_favorites"
	case LikeTracks:
		return "like_tracks"
	case PersistState:
		return "persist_state"
	default:
		return ""
	}
}

func fetchDestinationUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDestination,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving destination playlist (%s)...", name),
	}
}

func destinationResolvedUpdate(pl *models.Playlist, existing int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDestination,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Destination: %s (%d existing tracks)", pl.Name, existing),
		Data:    pl,
	}
}

func detectRemovalsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DetectRemovals,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Detected %d tracks removed by user, permanently excluding", count),
	}
}

func filterSourceUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Processing playlist: %s (%d tracks)", step, total, pl.Name, pl.TrackCount),
		Data:    pl,
	}
}

func decisionUpdate(d TrackDecision) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EvaluateTrack,
		Step:    1,
		Total:   1,
		Message: d.String(),
		Data:    d,
	}
}

func addTracksUpdate(count int, dest string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s", count, dest),
	}
}

func fetchRotationUpdate(master, archive *models.Playlist, maxTracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase: FetchRotation,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Master: %s (%d tracks), archive: %s (%d tracks), limit %d",
			master.Name, master.TrackCount, archive.Name, archive.TrackCount, maxTracks),
	}
}

func rotateTracksUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RotateTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("  %d. %s - %s", step, tr.Artist(), tr.Title),
	}
}

func likePlaylistUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLikePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("  %s: %d tracks", pl.Name, pl.TrackCount),
	}
}

func fetchFavoritesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Currently have %d favorited tracks", count),
	}
}

func likeProgressUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LikeTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Progress: %d/%d tracks liked", step, total),
	}
}

func persistStateUpdate(ledgerCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistState,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Persisting state (%d processed tracks)...", ledgerCount),
	}
}
