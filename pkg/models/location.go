package models

// Location is immutable reference data describing one travel destination.
// Activities and Places are free-text descriptions; the counts summarize
// them numerically for the optional feature columns.
type Location struct {
	ID            int64   `json:"location_id" db:"location_id"`
	Name          string  `json:"location_name" db:"location_name"`
	State         string  `json:"state" db:"state"`
	Category      string  `json:"category" db:"category"`
	Activities    string  `json:"activities,omitempty" db:"activities"`
	Places        string  `json:"places,omitempty" db:"places"`
	ActivityCount float64 `json:"activity_count" db:"activity_count"`
	PlaceCount    float64 `json:"place_count" db:"place_count"`
}
