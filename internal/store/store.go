// Package store implements the file-backed state a curation run reads at
// start and persists before exit: the processed-track ledger, genre caches,
// and the destination snapshot / removed-track sets.
//
// All files are plain JSON with no external consumers. A single run owns
// exclusive read-modify-write access to each file for its duration; there is
// no locking because concurrent invocations are not a supported case.
package store

// trackSetFile is the on-disk shape shared by the ledger and id sets.
type trackSetFile struct {
	Tracks []string `json:"tracks"`
}
