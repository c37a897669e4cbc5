package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// Client credentials come from the environment; a local .env is the
	// usual place to keep them.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment from .env")
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "lowtide",
		Usage:    "Batch curation for Tidal playlists: genre filtering, rotation, bulk favoriting",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not authenticated - run `lowtide login` first")
			os.Exit(1)
		}

		logger.Fatalf("application error: %v", err)
	}
}
