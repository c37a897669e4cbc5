package main

import (
	"context"

	"github.com/lowtide/lowtide/internal/repositories"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists past runs from the history database, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.History.MaxOpenConns, config.History.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if command := cmd.String("command"); command != "" {
		criteria["command"] = command
	}

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet\n")
	}

	for _, run := range runs {
		status := "ok"
		if !run.Succeeded {
			status = "failed"
		}

		r.writePlain("%s  %-6s  %-6s  processed=%d added=%d blocked=%d skipped=%d\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Command, status,
			run.Processed, run.Added, run.Blocked, run.Skipped)

		if run.ErrorText != "" {
			r.writePlain("    %s\n", run.ErrorText)
		}
	}

	return nil
}
