package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// AllRun executes the full curation batch: filter, then rotate, then like.
// The sequence stops at the first failing step.
func (r *Runner) AllRun(ctx context.Context, cmd *cli.Command) error {
	steps := []struct {
		name   string
		action func(context.Context, *cli.Command) error
	}{
		{"filter", r.FilterRun},
		{"rotate", r.RotateRun},
		{"like", r.LikeRun},
	}

	for _, step := range steps {
		r.writePlain("\n")
		r.writePlainHeader("Step: " + step.name)

		if err := step.action(ctx, cmd); err != nil {
			r.logger.Error("step failed, aborting batch", "step", step.name, "err", err)
			return err
		}
	}

	return nil
}
