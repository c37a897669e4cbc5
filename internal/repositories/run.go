package repositories

import (
	"database/sql"
	"fmt"

	"github.com/lowtide/lowtide/internal/models"
)

// RunRepository persists [models.RunRecord] rows in the runs table.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a repository backed by the given database.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record and assigns it a sequence number.
func (r *RunRepository) Create(record *models.RunRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return err
	}
	record.Sequence = sequence

	_, err = r.db.Exec(`
		INSERT INTO runs (id, sequence, command, started_at, succeeded, error_text, processed, added, blocked, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID, record.Sequence, record.Command, record.StartedAt,
		record.Succeeded, record.ErrorText, record.Processed, record.Added, record.Blocked, record.Skipped,
	)
	if err != nil {
		return fmt.Errorf("failed to create run record: %w", err)
	}

	return nil
}

// Update writes the record's outcome columns back to its row.
func (r *RunRepository) Update(record *models.RunRecord) error {
	var finishedAt any
	if !record.FinishedAt.IsZero() {
		finishedAt = record.FinishedAt
	}

	result, err := r.db.Exec(`
		UPDATE runs
		SET finished_at = ?, succeeded = ?, error_text = ?, processed = ?, added = ?, blocked = ?, skipped = ?
		WHERE id = ?`,
		finishedAt, record.Succeeded, record.ErrorText,
		record.Processed, record.Added, record.Blocked, record.Skipped, record.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run record %s not found", record.RunID)
	}

	return nil
}

// Get retrieves a run record by its ID.
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, sequence, command, started_at, finished_at, succeeded, error_text, processed, added, blocked, skipped
		FROM runs WHERE id = ?`, id)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run record %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run record: %w", err)
	}

	return record, nil
}

// Delete removes a run record by its ID.
func (r *RunRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	return nil
}

// List retrieves run records matching the criteria, newest first.
// Supported criteria: "command" (string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.RunRecord, error) {
	query := `
		SELECT id, sequence, command, started_at, finished_at, succeeded, error_text, processed, added, blocked, skipped
		FROM runs`
	var args []any

	if command, ok := criteria["command"].(string); ok && command != "" {
		query += " WHERE command = ?"
		args = append(args, command)
	}
	query += " ORDER BY started_at DESC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	defer rows.Close()

	var records []*models.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.RunRecord, error) {
	var record models.RunRecord
	var finishedAt sql.NullTime

	err := s.Scan(
		&record.RunID, &record.Sequence, &record.Command, &record.StartedAt, &finishedAt,
		&record.Succeeded, &record.ErrorText, &record.Processed, &record.Added, &record.Blocked, &record.Skipped,
	)
	if err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		record.FinishedAt = finishedAt.Time
	}
	return &record, nil
}
