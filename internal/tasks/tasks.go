// Package tasks implements the batch curation operations: genre filtering,
// playlist rotation and bulk favoriting.
//
// A CurationEngine binds a playlist service, a genre provider and the
// file-backed state stores together. Each operation is a single method that
// reports progress over an optional channel and returns a result summary.
// Engines are not safe for concurrent use; one run owns all state files.
package tasks

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/services"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/lowtide/lowtide/internal/store"
)

// Action taken for a single evaluated track.
type Action int

const (
	ActionAdd Action = iota
	ActionBlock
	ActionSkipUnknown
	ActionKeepUnknown
	ActionDuplicate
	ActionExcludeRemoved
	ActionError
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionBlock:
		return "block"
	case ActionSkipUnknown:
		return "skip_unknown"
	case ActionKeepUnknown:
		return "keep_unknown"
	case ActionDuplicate:
		return "duplicate"
	case ActionExcludeRemoved:
		return "exclude_removed"
	case ActionError:
		return "error"
	default:
		return ""
	}
}

// TrackDecision records the outcome of evaluating one track during a filter
// run. Decisions are collected into the FilterResult so dry runs can report
// exactly what a real run would have done.
type TrackDecision struct {
	Track  models.Track
	Genres []string
	Action Action
	Err    error
}

func (d TrackDecision) String() string {
	label := fmt.Sprintf("%s - %s", d.Track.Artist(), d.Track.Title)

	switch d.Action {
	case ActionBlock:
		return fmt.Sprintf("BLOCKED: %s (genres: %s)", label, strings.Join(d.Genres, ", "))
	case ActionSkipUnknown:
		return fmt.Sprintf("SKIPPED (no genre data): %s", label)
	case ActionError:
		return fmt.Sprintf("ERROR: %s (%v)", label, d.Err)
	case ActionAdd, ActionKeepUnknown:
		return fmt.Sprintf("ADDING: %s (genres: %s)", label, strings.Join(d.Genres, ", "))
	default:
		return fmt.Sprintf("%s: %s", strings.ToUpper(d.Action.String()), label)
	}
}

// CurationEngine runs the curation operations against a playlist service.
type CurationEngine struct {
	playlists services.PlaylistService
	genres    services.GenreProvider
	cache     *store.GenreCache
	ledger    *store.Ledger
	removed   *store.IDSet
	snapshot  *store.IDSet
	config    *shared.Config
	logger    *log.Logger
	dryRun    bool
}

// EngineParams collects the dependencies of a CurationEngine.
type EngineParams struct {
	Playlists services.PlaylistService
	Genres    services.GenreProvider
	Cache     *store.GenreCache
	Ledger    *store.Ledger
	Removed   *store.IDSet
	Snapshot  *store.IDSet
	Config    *shared.Config
	Logger    *log.Logger
}

// NewCurationEngine creates an engine. DryRun comes from the config and
// suppresses every mutation: playlist writes, favorites and state persistence.
func NewCurationEngine(p EngineParams) *CurationEngine {
	logger := p.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &CurationEngine{
		playlists: p.Playlists,
		genres:    p.Genres,
		cache:     p.Cache,
		ledger:    p.Ledger,
		removed:   p.Removed,
		snapshot:  p.Snapshot,
		config:    p.Config,
		logger:    logger,
		dryRun:    p.Config.DryRun,
	}
}

// sendProgress sends a progress update without blocking. Updates are dropped
// when the channel is full or nil.
func (e *CurationEngine) sendProgress(updates chan<- ProgressUpdate, u ProgressUpdate) {
	if updates == nil {
		return
	}

	select {
	case updates <- u:
	default:
	}
}

// isBlocked reports whether any resolved genre matches the blocklist.
// Matching is case-insensitive and bidirectional on substrings, so a
// blocklist entry "metal" blocks "Doom Metal" and an entry "progressive
// metal" blocks a bare "metal" tag.
func (e *CurationEngine) isBlocked(genres []string) bool {
	for _, genre := range genres {
		g := strings.ToLower(strings.TrimSpace(genre))
		if g == "" {
			continue
		}

		for _, blocked := range e.config.GenreBlocklist {
			b := strings.ToLower(strings.TrimSpace(blocked))
			if b == "" {
				continue
			}

			if strings.Contains(g, b) || strings.Contains(b, g) {
				return true
			}
		}
	}

	return false
}

// trackIDs extracts the IDs from a slice of tracks, preserving order.
func trackIDs(tracks []models.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}

	return ids
}
