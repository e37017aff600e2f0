package store

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is one sealed store together with the identity of the build that
// produced it.
type Snapshot struct {
	Store      *Store
	Generation string
	BuiltAt    time.Time
}

// NewSnapshot seals s and stamps it with a fresh generation. The store is
// never mutated once a snapshot of it exists.
func NewSnapshot(s *Store) *Snapshot {
	s.Seal()
	return &Snapshot{
		Store:      s,
		Generation: uuid.NewString(),
		BuiltAt:    time.Now().UTC(),
	}
}
