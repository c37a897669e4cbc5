package shared

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed config.example.json
var exampleConf []byte

// Genre detection providers.
const (
	DetectionTidal   = "tidal"
	DetectionSpotify = "spotify"
)

// Unknown genre policies.
const (
	PolicyKeep = "keep"
	PolicySkip = "skip"
)

// Config represents the application configuration loaded from a JSON file.
type Config struct {
	SourcePlaylistIDs       []string       `json:"source_playlist_ids"`
	DestinationPlaylistName string         `json:"destination_playlist_name"`
	DestinationPlaylistID   string         `json:"destination_playlist_id"`
	GenreBlocklist          []string       `json:"genre_blocklist"`
	GenreDetection          string         `json:"genre_detection"`
	UnknownGenrePolicy      string         `json:"unknown_genre_policy"`
	DryRun                  bool           `json:"dry_run"`
	SessionPath             string         `json:"session_path"`
	ProcessedTracksPath     string         `json:"processed_tracks_path"`
	RemovedTracksPath       string         `json:"removed_tracks_path"`
	SnapshotPath            string         `json:"snapshot_path"`
	Tidal                   ProviderConfig `json:"tidal"`
	Spotify                 ProviderConfig `json:"spotify"`
	Rotate                  RotateConfig   `json:"rotate"`
	Like                    LikeConfig     `json:"like"`
	History                 HistoryConfig  `json:"history"`
}

// ProviderConfig contains per-provider genre lookup settings.
type ProviderConfig struct {
	CachePath          string  `json:"cache_path"`
	MinIntervalSeconds float64 `json:"min_interval_seconds"`
}

// RotateConfig contains playlist rotation settings.
type RotateConfig struct {
	MasterPlaylistID  string `json:"master_playlist_id"`
	ArchivePlaylistID string `json:"archive_playlist_id"`
	MaxTracks         int    `json:"max_tracks"`
}

// LikeConfig contains bulk favoriting settings.
type LikeConfig struct {
	PlaylistPrefix string `json:"playlist_prefix"`
}

// HistoryConfig contains run-history database settings.
type HistoryConfig struct {
	Path         string `json:"path"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// LoadConfig reads and parses a JSON configuration file from the specified path.
// Missing optional fields are filled with defaults; enum fields are validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := json.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyDefaults()
	return &config
}

// CreateConfigFile creates a config.json file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.GenreDetection == "" {
		c.GenreDetection = DetectionTidal
	}
	if c.UnknownGenrePolicy == "" {
		c.UnknownGenrePolicy = PolicyKeep
	}
	if c.DestinationPlaylistName == "" {
		c.DestinationPlaylistName = "New Music"
	}
	if c.SessionPath == "" {
		c.SessionPath = "tidal_session.json"
	}
	if c.ProcessedTracksPath == "" {
		c.ProcessedTracksPath = "cache/processed_tracks.json"
	}
	if c.RemovedTracksPath == "" {
		c.RemovedTracksPath = "cache/removed_tracks.json"
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "cache/destination_snapshot.json"
	}
	if c.Tidal.CachePath == "" {
		c.Tidal.CachePath = "cache/tidal_genres.json"
	}
	if c.Spotify.CachePath == "" {
		c.Spotify.CachePath = "cache/spotify_genres.json"
	}
	if c.Tidal.MinIntervalSeconds <= 0 {
		c.Tidal.MinIntervalSeconds = 0.1
	}
	if c.Spotify.MinIntervalSeconds <= 0 {
		c.Spotify.MinIntervalSeconds = 0.1
	}
	if c.Rotate.MaxTracks <= 0 {
		c.Rotate.MaxTracks = 200
	}
	if c.History.Path == "" {
		c.History.Path = "cache/history.db"
	}
	if c.History.MaxOpenConns <= 0 {
		c.History.MaxOpenConns = 1
	}
	if c.History.MaxIdleConns <= 0 {
		c.History.MaxIdleConns = 1
	}
}

// Validate checks enum fields and fails fast on malformed values.
// Operation-specific requirements (source playlists, rotation ids) are
// checked by the operation that needs them.
func (c *Config) Validate() error {
	switch c.GenreDetection {
	case DetectionTidal, DetectionSpotify:
	default:
		return fmt.Errorf("%w: genre_detection must be %q or %q, got %q",
			ErrInvalidConfig, DetectionTidal, DetectionSpotify, c.GenreDetection)
	}

	switch c.UnknownGenrePolicy {
	case PolicyKeep, PolicySkip:
	default:
		return fmt.Errorf("%w: unknown_genre_policy must be %q or %q, got %q",
			ErrInvalidConfig, PolicyKeep, PolicySkip, c.UnknownGenrePolicy)
	}

	return nil
}
