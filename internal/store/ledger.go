package store

// Ledger is the processed-track ledger: a durable set of track identifiers
// the filter pipeline has already reached a definitive allow/block decision
// for. A track present here is never reprocessed.
//
// The ledger is append-only within a run and written back atomically before
// the run exits, so a crash mid-run leaves the previous ledger intact and the
// next run simply re-evaluates the unpersisted tracks.
type Ledger struct {
	set *IDSet
}

// LoadLedger reads the ledger at path. A missing file yields an empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	set, err := LoadIDSet(path)
	if err != nil {
		return nil, err
	}
	return &Ledger{set: set}, nil
}

// Contains reports whether the track has already been processed.
func (l *Ledger) Contains(trackID string) bool {
	return l.set.Contains(trackID)
}

// Mark records a definitive allow/block decision for the track.
func (l *Ledger) Mark(trackID string) {
	l.set.Add(trackID)
}

// Len returns the number of processed tracks.
func (l *Ledger) Len() int {
	return l.set.Len()
}

// Save persists the ledger to its backing file.
func (l *Ledger) Save() error {
	return l.set.Save()
}
