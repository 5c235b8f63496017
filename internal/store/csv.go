package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/pkg/models"
)

// CSVStore reads the reference tables from flat files in a single
// directory: locations.csv, users.csv, reviews.csv and trips.csv. Columns
// are resolved by header name, so column order in the files is free.
type CSVStore struct {
	dir    string
	logger *logrus.Logger
}

func NewCSVStore(dir string, logger *logrus.Logger) *CSVStore {
	return &CSVStore{dir: dir, logger: logger}
}

func (s *CSVStore) Locations(ctx context.Context) ([]models.Location, error) {
	rows, err := s.readTable(ctx, "locations.csv")
	if err != nil {
		return nil, err
	}

	locations := make([]models.Location, 0, len(rows))
	for _, row := range rows {
		id, err := parseID(row["location_id"])
		if err != nil {
			return nil, fmt.Errorf("locations.csv: bad location_id %q: %w", row["location_id"], err)
		}
		locations = append(locations, models.Location{
			ID:            id,
			Name:          row["location_name"],
			State:         row["state"],
			Category:      row["category"],
			Activities:    row["activities"],
			Places:        row["places"],
			ActivityCount: parseFloat(row["activity_count"]),
			PlaceCount:    parseFloat(row["place_count"]),
		})
	}
	return locations, nil
}

func (s *CSVStore) Users(ctx context.Context) ([]models.User, error) {
	rows, err := s.readTable(ctx, "users.csv")
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		id, err := parseID(row["user_id"])
		if err != nil {
			return nil, fmt.Errorf("users.csv: bad user_id %q: %w", row["user_id"], err)
		}
		users = append(users, models.User{
			ID:              id,
			Occupation:      row["occupation"],
			LocationType:    row["location_type"],
			BudgetUnder25K:  parseFlag(row["budget_under_25k"]),
			Budget25KTo50K:  parseFlag(row["budget_25k_to_50k"]),
			Budget50KTo100K: parseFlag(row["budget_50k_to_100k"]),
			BudgetAbove100K: parseFlag(row["budget_above_100k"]),
		})
	}
	return users, nil
}

func (s *CSVStore) Reviews(ctx context.Context) ([]models.Review, error) {
	rows, err := s.readTable(ctx, "reviews.csv")
	if err != nil {
		return nil, err
	}

	reviews := make([]models.Review, 0, len(rows))
	for _, row := range rows {
		userID, err := parseID(row["user_id"])
		if err != nil {
			return nil, fmt.Errorf("reviews.csv: bad user_id %q: %w", row["user_id"], err)
		}
		locationID, err := parseID(row["location_id"])
		if err != nil {
			return nil, fmt.Errorf("reviews.csv: bad location_id %q: %w", row["location_id"], err)
		}
		reviews = append(reviews, models.Review{
			UserID:     userID,
			LocationID: locationID,
			Rating:     parseFloat(row["rating"]),
		})
	}
	return reviews, nil
}

func (s *CSVStore) Trips(ctx context.Context) ([]models.Trip, error) {
	rows, err := s.readTable(ctx, "trips.csv")
	if err != nil {
		return nil, err
	}

	trips := make([]models.Trip, 0, len(rows))
	for _, row := range rows {
		userID, err := parseID(row["user_id"])
		if err != nil {
			return nil, fmt.Errorf("trips.csv: bad user_id %q: %w", row["user_id"], err)
		}
		trips = append(trips, models.Trip{
			UserID: userID,
			Cost:   parseFloat(row["cost"]),
		})
	}
	return trips, nil
}

func (s *CSVStore) readTable(ctx context.Context, name string) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[strings.TrimSpace(col)] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	s.logger.WithFields(logrus.Fields{
		"table": name,
		"rows":  len(rows),
	}).Debug("Loaded reference table")

	return rows, nil
}

// parseID coerces an identifier cell to int64. Sources are inconsistent
// about writing ids as integers or floats ("30" vs "30.0"); both forms
// must land on the same key or joins silently drop rows.
func parseID(value string) (int64, error) {
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseFlag(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "t", "yes":
		return true
	}
	// Numeric truthiness covers exports that write flags as floats.
	return parseFloat(value) != 0
}
