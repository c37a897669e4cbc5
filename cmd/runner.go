package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lowtide/lowtide/internal/auth"
	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/repositories"
	"github.com/lowtide/lowtide/internal/services"
	"github.com/lowtide/lowtide/internal/shared"
	"github.com/lowtide/lowtide/internal/store"
	"github.com/lowtide/lowtide/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client

	// Test seams; when nil the real implementations are built from config.
	playlists services.PlaylistService
	genres    services.GenreProvider
	config    *shared.Config
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	Playlists  services.PlaylistService
	Genres     services.GenreProvider
	Config     *shared.Config
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		playlists:  opts.Playlists,
		genres:     opts.Genres,
		config:     opts.Config,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		filterCommand, rotateCommand, likeCommand, allCommand, loginCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the effective config for a command: the injected test
// config if set, otherwise the file named by the --config flag. The --dry-run
// and -v flags override what the file says.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	config := r.config
	if config == nil {
		loaded, err := shared.LoadConfig(cmd.String("config"))
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if cmd.Bool("dry-run") {
		config.DryRun = true
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	return config, nil
}

// buildEngine assembles a CurationEngine from the config: session, playlist
// service, genre provider and the file-backed state stores.
func (r *Runner) buildEngine(ctx context.Context, config *shared.Config) (*tasks.CurationEngine, error) {
	playlists := r.playlists
	genres := r.genres

	var session *auth.Session
	if playlists == nil || (genres == nil && config.GenreDetection == shared.DetectionTidal) {
		authStore := auth.NewStore(config.SessionPath, os.Getenv("TIDAL_CLIENT_ID"), os.Getenv("TIDAL_CLIENT_SECRET"))

		var err error
		if session, err = authStore.Load(ctx); err != nil {
			return nil, err
		}
	}

	if playlists == nil {
		playlists = services.NewTidalService(session, config.Tidal.MinIntervalSeconds, r.httpClient)
	}

	var cache *store.GenreCache
	if genres == nil {
		switch config.GenreDetection {
		case shared.DetectionSpotify:
			spotifyCache, err := store.LoadGenreCache(config.Spotify.CachePath)
			if err != nil {
				return nil, fmt.Errorf("loading spotify genre cache: %w", err)
			}

			client, err := services.NewSpotifyGenreClient(
				os.Getenv("SPOTIFY_CLIENT_ID"), os.Getenv("SPOTIFY_CLIENT_SECRET"),
				spotifyCache, config.Spotify.MinIntervalSeconds, r.httpClient)
			if err != nil {
				return nil, err
			}

			genres = client
			cache = spotifyCache
		default:
			tidalCache, err := store.LoadGenreCache(config.Tidal.CachePath)
			if err != nil {
				return nil, fmt.Errorf("loading tidal genre cache: %w", err)
			}

			genres = services.NewTidalGenreClient(session, tidalCache, config.Tidal.MinIntervalSeconds, r.httpClient)
			cache = tidalCache
		}
	} else {
		cache = store.NewGenreCache("")
	}

	ledger, err := store.LoadLedger(config.ProcessedTracksPath)
	if err != nil {
		return nil, fmt.Errorf("loading processed ledger: %w", err)
	}

	removed, err := store.LoadIDSet(config.RemovedTracksPath)
	if err != nil {
		return nil, fmt.Errorf("loading removed-tracks list: %w", err)
	}

	snapshot, err := store.LoadIDSet(config.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("loading destination snapshot: %w", err)
	}

	return tasks.NewCurationEngine(tasks.EngineParams{
		Playlists: playlists,
		Genres:    genres,
		Cache:     cache,
		Ledger:    ledger,
		Removed:   removed,
		Snapshot:  snapshot,
		Config:    config,
		Logger:    r.logger,
	}), nil
}

// recordRun wraps an operation with run-history bookkeeping. History is
// observational; a failure to record never fails the run.
func (r *Runner) recordRun(config *shared.Config, command string, op func(record *models.RunRecord) error) error {
	if config.DryRun {
		return op(models.NewRunRecord(shared.GenerateID(), command))
	}

	db, err := shared.NewDatabase(config.History.Path)
	if err != nil {
		r.logger.Warn("run history unavailable", "err", err)
		return op(models.NewRunRecord(shared.GenerateID(), command))
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.History.MaxOpenConns, config.History.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run history migrations failed", "err", err)
		return op(models.NewRunRecord(shared.GenerateID(), command))
	}

	repo := repositories.NewRunRepository(db)
	record := models.NewRunRecord(shared.GenerateID(), command)

	if err := repo.Create(record); err != nil {
		r.logger.Warn("failed to record run start", "err", err)
	}

	opErr := op(record)
	record.Finish(opErr)

	if err := repo.Update(record); err != nil {
		r.logger.Warn("failed to record run outcome", "err", err)
	}

	return opErr
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
