package main

import (
	"context"

	"github.com/lowtide/lowtide/internal/formatter"
	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/tasks"
	"github.com/urfave/cli/v3"
)

// FilterRun runs the genre-filter pipeline against the configured playlists.
func (r *Runner) FilterRun(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := r.buildEngine(ctx, config)
	if err != nil {
		return err
	}

	r.logger.Info("starting genre filter",
		"sources", len(config.SourcePlaylistIDs),
		"destination", config.DestinationPlaylistName,
		"provider", config.GenreDetection,
		"dry_run", config.DryRun)

	return r.recordRun(config, models.RunCommandFilter, func(record *models.RunRecord) error {
		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progressCh {
				switch update.Phase {
				case tasks.FilterSource, tasks.AddTracks, tasks.DetectRemovals:
					r.writePlain("%s\n", update.Message)
				case tasks.EvaluateTrack:
					r.writePlain("  %s\n", update.Message)
				}
			}
		}()

		result, err := engine.Filter(ctx, progressCh)
		close(progressCh)
		<-done

		if result != nil {
			record.Processed = result.Evaluated
			record.Added = len(result.Added)
			record.Blocked = result.Blocked
			record.Skipped = result.Skipped
		}

		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(result, true)
		}

		r.writePlain("\n")
		r.writePlainHeader("Filter Complete")
		return r.writePlain("%s", formatter.FilterToText(result))
	})
}
