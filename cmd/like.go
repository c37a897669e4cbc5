package main

import (
	"context"

	"github.com/lowtide/lowtide/internal/formatter"
	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/tasks"
	"github.com/urfave/cli/v3"
)

// LikeRun favorites every track in the playlists whose names carry the
// configured prefix.
func (r *Runner) LikeRun(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := r.buildEngine(ctx, config)
	if err != nil {
		return err
	}

	r.logger.Info("starting bulk favoriting",
		"prefix", config.Like.PlaylistPrefix, "dry_run", config.DryRun)

	return r.recordRun(config, models.RunCommandLike, func(record *models.RunRecord) error {
		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progressCh {
				r.writePlain("%s\n", update.Message)
			}
		}()

		result, err := engine.Like(ctx, progressCh)
		close(progressCh)
		<-done

		if result != nil {
			record.Processed = len(result.Candidates) + result.Already
			record.Added = result.Liked
			record.Skipped = result.Already
		}

		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(result, true)
		}

		r.writePlain("\n")
		r.writePlainHeader("Favoriting Complete")
		return r.writePlain("%s", formatter.LikeToText(result))
	})
}
