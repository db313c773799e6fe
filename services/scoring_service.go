package services

import (
	"context"
	"fmt"

	"football-app-go/logging"
	"football-app-go/metrics"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Points awarded per prediction
const (
	ExactScorePoints     = 5
	CorrectOutcomePoints = 2
)

// ScorePrediction returns the points a prediction earns against a match:
// 5 for the exact score, 2 for the correct outcome, otherwise 0. A match
// without a final score earns nothing.
func ScorePrediction(p *models.Prediction, m *models.Match) int {
	if IsExact(p, m) {
		return ExactScorePoints
	}
	if correct, ok := IsCorrect(p, m); ok && correct {
		return CorrectOutcomePoints
	}
	return 0
}

// IsCorrect reports whether the predicted outcome matches. ok is false when
// the match has no result yet.
func IsCorrect(p *models.Prediction, m *models.Match) (correct bool, ok bool) {
	result, ok := m.Result()
	if !ok {
		return false, false
	}
	return p.PredictedResult == result, true
}

// IsExact reports whether both predicted goals match the final score
func IsExact(p *models.Prediction, m *models.Match) bool {
	if _, ok := m.Result(); !ok || !p.HasScores() {
		return false
	}
	return *p.PredictedHome == *m.HomeGoals && *p.PredictedAway == *m.AwayGoals
}

// ScoringService persists prediction points for finished matches
type ScoringService struct {
	matches     MatchRepository
	predictions PredictionRepository
	metrics     *metrics.Collector
	logger      *logging.Logger
}

func NewScoringService(matches MatchRepository, predictions PredictionRepository, collector *metrics.Collector) *ScoringService {
	return &ScoringService{
		matches:     matches,
		predictions: predictions,
		metrics:     collector,
		logger:      logging.WithPrefix("Scoring"),
	}
}

// ScoreMatch writes points_earned on every prediction of a finished match and
// returns how many predictions were scored. Matches without a result are left
// untouched.
func (s *ScoringService) ScoreMatch(ctx context.Context, matchID primitive.ObjectID) (int, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if match == nil {
		return 0, notFound("match", matchID.Hex())
	}
	return s.ScoreLoadedMatch(ctx, match)
}

func (s *ScoringService) ScoreLoadedMatch(ctx context.Context, match *models.Match) (int, error) {
	if _, ok := match.Result(); !ok {
		s.logger.Debugf("Match %s has no result yet (status %s), skipping", match.ID.Hex(), match.Status)
		return 0, nil
	}

	predictions, err := s.predictions.ListByMatch(ctx, match.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load predictions for match %s: %w", match.ID.Hex(), err)
	}

	points := make(map[primitive.ObjectID]int, len(predictions))
	for _, p := range predictions {
		points[p.ID] = ScorePrediction(p, match)
	}
	if err := s.predictions.UpdatePoints(ctx, points); err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.MatchesScored.Inc()
		s.metrics.PredictionsScored.Add(float64(len(points)))
	}
	s.logger.Infof("Scored %d predictions for match %s (%d-%d)", len(points), match.ID.Hex(), *match.HomeGoals, *match.AwayGoals)
	return len(points), nil
}
