package main

import (
	"context"

	"github.com/lowtide/lowtide/internal/formatter"
	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RotateRun moves the oldest overflow from the master playlist to the archive.
func (r *Runner) RotateRun(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := r.buildEngine(ctx, config)
	if err != nil {
		return err
	}

	r.logger.Info("starting rotation",
		"master", config.Rotate.MasterPlaylistID,
		"archive", config.Rotate.ArchivePlaylistID,
		"limit", config.Rotate.MaxTracks,
		"dry_run", config.DryRun)

	return r.recordRun(config, models.RunCommandRotate, func(record *models.RunRecord) error {
		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progressCh {
				r.writePlain("%s\n", update.Message)
			}
		}()

		result, err := engine.Rotate(ctx, progressCh)
		close(progressCh)
		<-done

		if result != nil {
			record.Processed = result.Before
			record.Added = len(result.Moved)
		}

		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(result, true)
		}

		r.writePlain("\n")
		r.writePlainHeader("Rotation Complete")
		return r.writePlain("%s", formatter.RotateToText(result))
	})
}
