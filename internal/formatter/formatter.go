// package formatter renders run results to plain text and JSON for terminal
// output and report files
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lowtide/lowtide/internal/tasks"
)

// FilterToText renders a filter result as a plain text report.
func FilterToText(result *tasks.FilterResult) []byte {
	var buf bytes.Buffer

	if result.DryRun {
		buf.WriteString("DRY RUN - no changes were made\n\n")
	}

	if result.Destination != nil {
		buf.WriteString(fmt.Sprintf("Destination: %s\n", result.Destination.Name))
		if result.DestinationCreated {
			buf.WriteString("  (created this run)\n")
		}
	} else if result.DestinationCreated {
		buf.WriteString("Destination: would be created\n")
	}

	if result.RemovedByUser > 0 {
		buf.WriteString(fmt.Sprintf("Removed by user since last run: %d (permanently excluded)\n", result.RemovedByUser))
	}

	buf.WriteString(fmt.Sprintf("\nEvaluated: %d\n", result.Evaluated))
	buf.WriteString(fmt.Sprintf("Added: %d\n", len(result.Added)))
	buf.WriteString(fmt.Sprintf("Blocked: %d\n", result.Blocked))
	buf.WriteString(fmt.Sprintf("Skipped (no genre): %d\n", result.Skipped))
	buf.WriteString(fmt.Sprintf("Duplicates: %d\n", result.Duplicates))
	if result.Excluded > 0 {
		buf.WriteString(fmt.Sprintf("Excluded (removed by user): %d\n", result.Excluded))
	}
	buf.WriteString(fmt.Sprintf("Lookup errors: %d\n", result.Errored))

	if len(result.Added) > 0 {
		verb := "Added"
		if result.DryRun {
			verb = "Would add"
		}

		buf.WriteString(fmt.Sprintf("\n%s:\n", verb))
		for i, tr := range result.Added {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, tr.Artist(), tr.Title))
		}
	}

	return buf.Bytes()
}

// FilterDecisionsToText renders the per-track decision log, one line per
// evaluated track.
func FilterDecisionsToText(result *tasks.FilterResult) []byte {
	var buf bytes.Buffer

	for _, d := range result.Decisions {
		buf.WriteString(d.String())
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// RotateToText renders a rotation result as a plain text report.
func RotateToText(result *tasks.RotateResult) []byte {
	var buf bytes.Buffer

	if result.DryRun {
		buf.WriteString("DRY RUN - no changes were made\n\n")
	}

	buf.WriteString(fmt.Sprintf("Master: %s (%d tracks)\n", result.Master.Name, result.Before))
	buf.WriteString(fmt.Sprintf("Archive: %s\n", result.Archive.Name))

	if len(result.Moved) == 0 {
		buf.WriteString("No rotation needed\n")
		return buf.Bytes()
	}

	verb := "Moved"
	if result.DryRun {
		verb = "Would move"
	}

	buf.WriteString(fmt.Sprintf("\n%s %d oldest tracks to archive:\n", verb, len(result.Moved)))
	for i, tr := range result.Moved {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, tr.Artist(), tr.Title))
	}

	return buf.Bytes()
}

// LikeToText renders a bulk-favorite result as a plain text report.
func LikeToText(result *tasks.LikeResult) []byte {
	var buf bytes.Buffer

	if result.DryRun {
		buf.WriteString("DRY RUN - no changes were made\n\n")
	}

	names := make([]string, 0, len(result.Playlists))
	for _, pl := range result.Playlists {
		names = append(names, pl.Name)
	}

	buf.WriteString(fmt.Sprintf("Playlists: %s\n", strings.Join(names, ", ")))
	buf.WriteString(fmt.Sprintf("Already favorited: %d\n", result.Already))

	if result.DryRun {
		buf.WriteString(fmt.Sprintf("Would favorite: %d\n", len(result.Candidates)))
	} else {
		buf.WriteString(fmt.Sprintf("Favorited: %d\n", result.Liked))
		if result.Failed > 0 {
			buf.WriteString(fmt.Sprintf("Failed: %d\n", result.Failed))
		}
	}

	return buf.Bytes()
}

// ToJSON generates an indented JSON representation of any run result.
func ToJSON(result any) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}

	return append(data, '\n'), nil
}

// WriteReport writes report data to the given path, creating it with
// standard permissions.
func WriteReport(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}
