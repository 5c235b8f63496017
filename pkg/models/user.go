package models

// User is immutable reference data about a traveler. The four budget
// flags are mutually favored tiers evaluated in ascending priority order
// when deriving a budget ceiling.
type User struct {
	ID              int64  `json:"user_id" db:"user_id"`
	Occupation      string `json:"occupation" db:"occupation"`
	LocationType    string `json:"location_type" db:"location_type"`
	BudgetUnder25K  bool   `json:"budget_under_25k" db:"budget_under_25k"`
	Budget25KTo50K  bool   `json:"budget_25k_to_50k" db:"budget_25k_to_50k"`
	Budget50KTo100K bool   `json:"budget_50k_to_100k" db:"budget_50k_to_100k"`
	BudgetAbove100K bool   `json:"budget_above_100k" db:"budget_above_100k"`
}

// Review is a (user, location, rating) interaction. Duplicates for the
// same pair are legal and averaged by the matrix builder.
type Review struct {
	UserID     int64   `json:"user_id" db:"user_id"`
	LocationID int64   `json:"location_id" db:"location_id"`
	Rating     float64 `json:"rating" db:"rating"`
}

// Trip associates a user with the cost of a past trip. Trips carry no
// location reference; costs reach locations through the review join.
type Trip struct {
	UserID int64   `json:"user_id" db:"user_id"`
	Cost   float64 `json:"cost" db:"cost"`
}

// ReviewSubmission is the ingestion payload accepted over HTTP and
// published to the message bus.
type ReviewSubmission struct {
	UserID     int64   `json:"user_id" validate:"required"`
	LocationID int64   `json:"location_id" validate:"required"`
	Rating     float64 `json:"rating" validate:"required,rating"`
}
