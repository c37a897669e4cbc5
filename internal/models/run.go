package models

import (
	"fmt"
	"time"
)

// Run command enumeration.
const (
	RunCommandFilter = "filter"
	RunCommandRotate = "rotate"
	RunCommandLike   = "like"
)

// RunRecord represents a single curation batch run persisted to the history database.
//
// A record is created when an operation starts and finished with its outcome
// counters before the process exits. Dry runs are never recorded.
type RunRecord struct {
	RunID      string
	Command    string // filter, rotate or like
	StartedAt  time.Time
	FinishedAt time.Time // zero until Finish
	Succeeded  bool
	ErrorText  string
	Processed  int // tracks evaluated (filter) or moved (rotate) or liked (like)
	Added      int
	Blocked    int
	Skipped    int
	Sequence   int
}

// NewRunRecord creates a RunRecord for a command starting now.
func NewRunRecord(id, command string) *RunRecord {
	return &RunRecord{
		RunID:     id,
		Command:   command,
		StartedAt: time.Now().UTC(),
	}
}

func (r *RunRecord) ID() string           { return r.RunID }
func (r *RunRecord) CreatedAt() time.Time { return r.StartedAt }
func (r *RunRecord) UpdatedAt() time.Time { return r.FinishedAt }

// Validate checks that the record identifies a known command.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return fmt.Errorf("run record missing id")
	}
	switch r.Command {
	case RunCommandFilter, RunCommandRotate, RunCommandLike:
		return nil
	default:
		return fmt.Errorf("unknown run command %q", r.Command)
	}
}

// Finish marks the record complete with the given outcome.
func (r *RunRecord) Finish(err error) {
	r.FinishedAt = time.Now().UTC()
	r.Succeeded = err == nil
	if err != nil {
		r.ErrorText = err.Error()
	}
}
