package store

import (
	"context"
	"fmt"

	"github.com/offbeatoasis/oasis/pkg/models"
)

// DataStore loads the four reference tables. Implementations own all
// persistence concerns; the recommender core only ever sees the loaded
// slices.
type DataStore interface {
	Locations(ctx context.Context) ([]models.Location, error)
	Users(ctx context.Context) ([]models.User, error)
	Reviews(ctx context.Context) ([]models.Review, error)
	Trips(ctx context.Context) ([]models.Trip, error)
}

// Dataset is one request-scoped snapshot of the reference tables.
type Dataset struct {
	Locations []models.Location
	Users     []models.User
	Reviews   []models.Review
	Trips     []models.Trip
}

// User finds a user by identifier in the snapshot.
func (d *Dataset) User(userID int64) (models.User, bool) {
	for _, u := range d.Users {
		if u.ID == userID {
			return u, true
		}
	}
	return models.User{}, false
}

// ReviewCount counts the reviews a user has in the snapshot.
func (d *Dataset) ReviewCount(userID int64) int {
	count := 0
	for _, r := range d.Reviews {
		if r.UserID == userID {
			count++
		}
	}
	return count
}

// LoadAll assembles a full snapshot from a DataStore.
func LoadAll(ctx context.Context, s DataStore) (*Dataset, error) {
	locations, err := s.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	users, err := s.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	reviews, err := s.Reviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	trips, err := s.Trips(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	return &Dataset{
		Locations: locations,
		Users:     users,
		Reviews:   reviews,
		Trips:     trips,
	}, nil
}
