package store

import (
	"context"
	"sync"

	"github.com/offbeatoasis/oasis/pkg/models"
)

// Snapshot holds the current dataset behind a copy-on-write pointer.
// Readers take the pointer once and compute against an immutable view;
// writers build a fresh Dataset and swap. This keeps the scoring
// pipeline free of locks for its whole run.
type Snapshot struct {
	mu   sync.RWMutex
	data *Dataset
}

func NewSnapshot(data *Dataset) *Snapshot {
	return &Snapshot{data: data}
}

// Dataset returns the current immutable view. Callers must not mutate
// it.
func (s *Snapshot) Dataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Refresh reloads every table from the backing store and swaps the
// view. The old view stays valid for in-flight computations.
func (s *Snapshot) Refresh(ctx context.Context, src DataStore) error {
	data, err := LoadAll(ctx, src)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// AddReview appends one ingested review, copy-on-write. Duplicate
// (user, location) pairs are fine; the interaction matrix averages
// them.
func (s *Snapshot) AddReview(review models.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.data
	reviews := make([]models.Review, len(old.Reviews), len(old.Reviews)+1)
	copy(reviews, old.Reviews)
	reviews = append(reviews, review)

	s.data = &Dataset{
		Locations: old.Locations,
		Users:     old.Users,
		Reviews:   reviews,
		Trips:     old.Trips,
	}
}
