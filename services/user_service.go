package services

import (
	"context"

	"football-app-go/database"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	topUsersLimit          = 50
	recentPredictionsLimit = 20
)

// Profile is the public page of a user
type Profile struct {
	User              models.User          `json:"user"`
	Stats             models.StatsSummary  `json:"stats"`
	Groups            []*models.Membership `json:"groups"`
	LeagueStats       []LeagueStats        `json:"league_stats"`
	RecentPredictions []*models.Prediction `json:"recent_predictions"`
}

// UserService serves user listings and profiles
type UserService struct {
	users       UserRepository
	memberships MembershipRepository
	predictions PredictionRepository
	stats       *StatsService
}

func NewUserService(users UserRepository, memberships MembershipRepository, predictions PredictionRepository, stats *StatsService) *UserService {
	return &UserService{
		users:       users,
		memberships: memberships,
		predictions: predictions,
		stats:       stats,
	}
}

// TopUsers returns the best users by profile points
func (s *UserService) TopUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListTop(ctx, topUsersLimit)
	if err != nil {
		return nil, err
	}
	safe := make([]models.User, len(users))
	for i, u := range users {
		safe[i] = u.ToSafeUser()
	}
	return safe, nil
}

// Profile recomputes the user's statistics and returns them with the user's
// groups, per-league breakdown and latest predictions
func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", userID.Hex())
	}

	stats, err := s.stats.RecomputeProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Stats = stats

	memberships, err := s.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.stats.LeagueBreakdown(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	predictions, err := s.predictions.ListByUser(ctx, user.ID, database.PredictionFilter{})
	if err != nil {
		return nil, err
	}
	if len(predictions) > recentPredictionsLimit {
		predictions = predictions[:recentPredictionsLimit]
	}

	return &Profile{
		User:              user.ToSafeUser(),
		Stats:             stats.Summary(),
		Groups:            memberships,
		LeagueStats:       breakdown,
		RecentPredictions: predictions,
	}, nil
}
