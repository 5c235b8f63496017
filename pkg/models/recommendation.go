package models

import "time"

// Recommendation is one ranked row of the final hybrid output.
type Recommendation struct {
	LocationID        int64   `json:"location_id"`
	LocationName      string  `json:"location_name"`
	State             string  `json:"state"`
	Category          string  `json:"category"`
	EstimatedCost     float64 `json:"estimated_cost"`
	ContentScore      float64 `json:"content_score"`
	CollabScore       float64 `json:"collab_score"`
	NormalizedContent float64 `json:"normalized_content"`
	NormalizedCollab  float64 `json:"normalized_collab"`
	HybridScore       float64 `json:"hybrid_score"`
	Position          int     `json:"position"`
}

// RecommendationResponse is the HTTP payload. BudgetLimit is nil when
// the user is unconstrained; an infinite ceiling has no JSON form.
type RecommendationResponse struct {
	UserID          int64            `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	BudgetLimit     *float64         `json:"budget_limit,omitempty"`
	WeightContent   float64          `json:"weight_content"`
	WeightCollab    float64          `json:"weight_collab"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// EvaluationResult holds the averaged offline ranking metrics of one
// k-fold run.
type EvaluationResult struct {
	Folds          int     `json:"folds"`
	TopK           int     `json:"top_k"`
	UsersEvaluated int     `json:"users_evaluated"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	NDCG           float64 `json:"ndcg"`
	HitRate        float64 `json:"hit_rate"`
}
