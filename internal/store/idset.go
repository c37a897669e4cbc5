package store

import (
	"sort"

	"github.com/lowtide/lowtide/internal/shared"
)

// IDSet is a persistent set of track identifiers stored as a JSON
// {"tracks": [...]} document. Used for the removed-tracks set and the
// destination snapshot.
type IDSet struct {
	path string
	ids  map[string]struct{}
}

// LoadIDSet reads the set at path. A missing file yields an empty set.
func LoadIDSet(path string) (*IDSet, error) {
	s := &IDSet{path: path, ids: make(map[string]struct{})}

	var file trackSetFile
	if _, err := shared.LoadJSONFile(path, &file); err != nil {
		return nil, err
	}
	for _, id := range file.Tracks {
		s.ids[id] = struct{}{}
	}

	return s, nil
}

// NewIDSet creates an empty in-memory set bound to path.
func NewIDSet(path string) *IDSet {
	return &IDSet{path: path, ids: make(map[string]struct{})}
}

// Contains reports whether id is in the set.
func (s *IDSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add inserts id into the set.
func (s *IDSet) Add(id string) {
	s.ids[id] = struct{}{}
}

// AddAll inserts every id into the set.
func (s *IDSet) AddAll(ids []string) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Len returns the number of ids in the set.
func (s *IDSet) Len() int {
	return len(s.ids)
}

// IDs returns the set's members in sorted order.
func (s *IDSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Replace swaps the set's contents for the given ids.
func (s *IDSet) Replace(ids []string) {
	s.ids = make(map[string]struct{}, len(ids))
	s.AddAll(ids)
}

// Save persists the set to its backing file.
func (s *IDSet) Save() error {
	return shared.SaveJSONFile(s.path, trackSetFile{Tracks: s.IDs()})
}
