package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		path := writeConfig(t, "{not json")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Defaults Applied", func(t *testing.T) {
		path := writeConfig(t, `{"source_playlist_ids": ["pl1"]}`)
		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.DestinationPlaylistName != "New Music" {
			t.Errorf("expected default destination name, got %q", config.DestinationPlaylistName)
		}
		if config.GenreDetection != DetectionTidal {
			t.Errorf("expected default detection tidal, got %q", config.GenreDetection)
		}
		if config.UnknownGenrePolicy != PolicyKeep {
			t.Errorf("expected default policy keep, got %q", config.UnknownGenrePolicy)
		}
		if config.Rotate.MaxTracks != 200 {
			t.Errorf("expected default max tracks 200, got %d", config.Rotate.MaxTracks)
		}
		if config.Tidal.MinIntervalSeconds != 0.1 {
			t.Errorf("expected default tidal interval 0.1, got %v", config.Tidal.MinIntervalSeconds)
		}
		if config.History.Path == "" {
			t.Error("expected default history path")
		}
	})

	t.Run("Invalid Genre Detection", func(t *testing.T) {
		path := writeConfig(t, `{"genre_detection": "lastfm"}`)
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Invalid Unknown Genre Policy", func(t *testing.T) {
		path := writeConfig(t, `{"unknown_genre_policy": "maybe"}`)
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Explicit Values Preserved", func(t *testing.T) {
		path := writeConfig(t, `{
			"source_playlist_ids": ["pl1", "pl2"],
			"destination_playlist_name": "Curated",
			"genre_blocklist": ["metal", "country"],
			"genre_detection": "spotify",
			"unknown_genre_policy": "skip",
			"dry_run": true,
			"rotate": {"master_playlist_id": "m1", "archive_playlist_id": "a1", "max_tracks": 50},
			"like": {"playlist_prefix": "_CBM"}
		}`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(config.SourcePlaylistIDs) != 2 {
			t.Errorf("expected 2 sources, got %d", len(config.SourcePlaylistIDs))
		}
		if !config.DryRun {
			t.Error("expected dry_run true")
		}
		if config.GenreDetection != DetectionSpotify {
			t.Errorf("expected spotify detection, got %q", config.GenreDetection)
		}
		if config.UnknownGenrePolicy != PolicySkip {
			t.Errorf("expected skip policy, got %q", config.UnknownGenrePolicy)
		}
		if config.Rotate.MaxTracks != 50 {
			t.Errorf("expected max tracks 50, got %d", config.Rotate.MaxTracks)
		}
		if config.Like.PlaylistPrefix != "_CBM" {
			t.Errorf("expected prefix _CBM, got %q", config.Like.PlaylistPrefix)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if config.GenreDetection != DetectionTidal {
		t.Errorf("expected tidal detection, got %q", config.GenreDetection)
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("Creates File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("created config should load: %v", err)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("created config should validate: %v", err)
		}
	})

	t.Run("Refuses To Overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("first create failed: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file exists")
		}
	})
}
