package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultConfidence is used when a prediction is submitted without a confidence level
const DefaultConfidence = 50

// Prediction represents a user's forecast for one match
type Prediction struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	MatchID         primitive.ObjectID `bson:"match_id" json:"match_id"`
	LeagueID        primitive.ObjectID `bson:"league_id" json:"league_id"`
	PredictedResult MatchResult        `bson:"predicted_result" json:"predicted_result"`
	PredictedHome   *int               `bson:"predicted_home,omitempty" json:"predicted_home,omitempty"`
	PredictedAway   *int               `bson:"predicted_away,omitempty" json:"predicted_away,omitempty"`
	Confidence      int                `bson:"confidence" json:"confidence"`
	PointsEarned    int                `bson:"points_earned" json:"points_earned"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`

	// Populated by the service layer for listings
	Match *Match `bson:"-" json:"match,omitempty"`
}

// HasScores reports whether both predicted goal counts were supplied
func (p *Prediction) HasScores() bool {
	return p.PredictedHome != nil && p.PredictedAway != nil
}

// PredictionInput is one validated-on-save entry of a single or bulk submission
type PredictionInput struct {
	MatchID       primitive.ObjectID `json:"match_id"`
	Result        MatchResult        `json:"result"`
	PredictedHome *int               `json:"home_score"`
	PredictedAway *int               `json:"away_score"`
	Confidence    int                `json:"confidence"`
}

// IsEmpty is true when nothing was entered for the match
func (in PredictionInput) IsEmpty() bool {
	return in.Result == "" && in.PredictedHome == nil && in.PredictedAway == nil
}

// PredictionStats holds the cumulative statistics derived from a prediction history
type PredictionStats struct {
	Total   int `bson:"total_predictions" json:"total_predictions"`
	Correct int `bson:"correct_predictions" json:"correct_predictions"`
	Exact   int `bson:"exact_predictions" json:"exact_predictions"`
	Points  int `bson:"total_points" json:"total_points"`
}

// AccuracyPercentage is 100*correct/total rounded to two decimals, 0 when there is no history
func (s PredictionStats) AccuracyPercentage() float64 {
	return percentage(s.Correct, s.Total)
}

// ExactScorePercentage is 100*exact/total rounded to two decimals, 0 when there is no history
func (s PredictionStats) ExactScorePercentage() float64 {
	return percentage(s.Exact, s.Total)
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}

// StatsSummary is the JSON view of PredictionStats with derived percentages
type StatsSummary struct {
	PredictionStats
	Accuracy       float64 `json:"accuracy_percentage"`
	ExactScoreRate float64 `json:"exact_score_percentage"`
}

// Summary returns the stats together with their percentages
func (s PredictionStats) Summary() StatsSummary {
	return StatsSummary{
		PredictionStats: s,
		Accuracy:        s.AccuracyPercentage(),
		ExactScoreRate:  s.ExactScorePercentage(),
	}
}
