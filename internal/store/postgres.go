package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/config"
	"github.com/offbeatoasis/oasis/pkg/models"
)

// Querier is the slice of pgx the store needs; satisfied by *pgxpool.Pool
// and by pgxmock in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PostgresStore serves the reference tables from a relational database.
type PostgresStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewPostgresStore(db Querier, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Connect builds a pgx pool from configuration and verifies it with a
// ping.
func Connect(cfg *config.Config, logger *logrus.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
	poolConfig.MaxConnIdleTime = cfg.Database.MaxIdleTime
	poolConfig.MaxConnLifetime = cfg.Database.MaxLifetime
	poolConfig.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")
	return pool, nil
}

func (s *PostgresStore) Locations(ctx context.Context) ([]models.Location, error) {
	rows, err := s.db.Query(ctx, `
		SELECT location_id, location_name, state, category,
		       COALESCE(activities, ''), COALESCE(places, ''),
		       COALESCE(activity_count, 0), COALESCE(place_count, 0)
		FROM locations
		ORDER BY location_id`)
	if err != nil {
		return nil, fmt.Errorf("locations query failed: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.State, &loc.Category,
			&loc.Activities, &loc.Places, &loc.ActivityCount, &loc.PlaceCount); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (s *PostgresStore) Users(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, COALESCE(occupation, ''), COALESCE(location_type, ''),
		       budget_under_25k, budget_25k_to_50k, budget_50k_to_100k, budget_above_100k
		FROM users
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("users query failed: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Occupation, &u.LocationType,
			&u.BudgetUnder25K, &u.Budget25KTo50K, &u.Budget50KTo100K, &u.BudgetAbove100K); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) Reviews(ctx context.Context) ([]models.Review, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, location_id, rating
		FROM reviews
		ORDER BY user_id, location_id`)
	if err != nil {
		return nil, fmt.Errorf("reviews query failed: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.UserID, &r.LocationID, &r.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *PostgresStore) Trips(ctx context.Context) ([]models.Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, cost
		FROM trips
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("trips query failed: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(&t.UserID, &t.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}
