package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/lowtide/lowtide/internal/models"
	"github.com/lowtide/lowtide/internal/shared"
	tu "github.com/lowtide/lowtide/internal/testing"
)

func likeConfig(prefix string) *shared.Config {
	return &shared.Config{Like: shared.LikeConfig{PlaylistPrefix: prefix}}
}

func TestLike(t *testing.T) {
	t.Run("Favorites Union Of Prefixed Playlists", func(t *testing.T) {
		playlists := tu.NewMockPlaylistService()
		playlists.Playlists = []models.Playlist{
			{ID: "p1", Name: "_CBM Rock"},
			{ID: "p2", Name: "_CBM Jazz"},
			{ID: "p3", Name: "Unrelated"},
		}
		playlists.Tracks["p1"] = []models.Track{{ID: "t1"}, {ID: "t2"}}
		playlists.Tracks["p2"] = []models.Track{{ID: "t2"}, {ID: "t3"}}
		playlists.Tracks["p3"] = []models.Track{{ID: "t9"}}
		playlists.Favorites = []string{"t3"}

		f := newFixture(t, likeConfig("_CBM"), playlists, nil)

		result, err := f.engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("like failed: %v", err)
		}

		if len(result.Playlists) != 2 {
			t.Errorf("expected 2 matching playlists, got %d", len(result.Playlists))
		}
		if result.Liked != 2 {
			t.Errorf("expected 2 liked (t1, t2), got %d", result.Liked)
		}
		if result.Already != 1 {
			t.Errorf("expected 1 already favorited, got %d", result.Already)
		}

		favorited := make(map[string]bool)
		for _, id := range playlists.Favorites {
			favorited[id] = true
		}
		if !favorited["t1"] || !favorited["t2"] {
			t.Errorf("expected t1 and t2 favorited, got %v", playlists.Favorites)
		}
		if favorited["t9"] {
			t.Error("unmatched playlist tracks must not be favorited")
		}
	})

	t.Run("Prefix Match Is Case Sensitive", func(t *testing.T) {
		playlists := tu.NewMockPlaylistService()
		playlists.Playlists = []models.Playlist{
			{ID: "p1", Name: "_cbm lowercase"},
			{ID: "p2", Name: "Mid _CBM Suffix"},
		}

		f := newFixture(t, likeConfig("_CBM"), playlists, nil)

		_, err := f.engine.Like(context.Background(), nil)
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Rerun Only Likes Missing", func(t *testing.T) {
		playlists := tu.NewMockPlaylistService()
		playlists.Playlists = []models.Playlist{{ID: "p1", Name: "_CBM Rock"}}
		playlists.Tracks["p1"] = []models.Track{{ID: "t1"}, {ID: "t2"}}

		f := newFixture(t, likeConfig("_CBM"), playlists, nil)

		first, err := f.engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if first.Liked != 2 {
			t.Fatalf("expected 2 liked, got %d", first.Liked)
		}

		second, err := f.engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if second.Liked != 0 || second.Already != 2 {
			t.Errorf("expected rerun to like nothing, liked=%d already=%d", second.Liked, second.Already)
		}
	})

	t.Run("Per Track Failure Continues", func(t *testing.T) {
		playlists := tu.NewMockPlaylistService()
		playlists.Playlists = []models.Playlist{{ID: "p1", Name: "_CBM Rock"}}
		playlists.Tracks["p1"] = []models.Track{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
		playlists.AddFavoriteFails = map[string]error{"t2": errors.New("boom")}

		f := newFixture(t, likeConfig("_CBM"), playlists, nil)

		result, err := f.engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("like failed: %v", err)
		}

		if result.Liked != 2 {
			t.Errorf("expected 2 liked, got %d", result.Liked)
		}
		if result.Failed != 1 {
			t.Errorf("expected 1 failed, got %d", result.Failed)
		}
	})

	t.Run("Dry Run Reports Candidates Only", func(t *testing.T) {
		playlists := tu.NewMockPlaylistService()
		playlists.Playlists = []models.Playlist{{ID: "p1", Name: "_CBM Rock"}}
		playlists.Tracks["p1"] = []models.Track{{ID: "t1"}}

		config := likeConfig("_CBM")
		config.DryRun = true
		f := newFixture(t, config, playlists, nil)

		result, err := f.engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("like failed: %v", err)
		}

		if len(result.Candidates) != 1 {
			t.Errorf("expected 1 candidate, got %d", len(result.Candidates))
		}
		if len(playlists.Calls) != 0 {
			t.Errorf("dry run must not favorite, calls: %v", playlists.Calls)
		}
	})

	t.Run("Missing Prefix Configuration", func(t *testing.T) {
		f := newFixture(t, &shared.Config{}, nil, nil)

		_, err := f.engine.Like(context.Background(), nil)
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
