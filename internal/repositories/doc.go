// Package repositories implements SQLite persistence for the run history.
//
// Each non-dry-run command records one [models.RunRecord] row: when it
// started, how it finished, and its outcome counters. The history is purely
// observational, curation semantics never depend on it, so repository
// failures are logged by callers and never abort a batch.
//
// Sequence numbers provide stable, human-readable run numbering (run #42)
// independent of UUIDs and timestamps. The [NextSequence] function atomically
// increments the per-table sequence counter in a dedicated sequence table.
package repositories
