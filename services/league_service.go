package services

import (
	"context"

	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeagueService serves the league catalogue
type LeagueService struct {
	leagues LeagueRepository
	teams   TeamRepository
}

func NewLeagueService(leagues LeagueRepository, teams TeamRepository) *LeagueService {
	return &LeagueService{leagues: leagues, teams: teams}
}

func (s *LeagueService) ListActive(ctx context.Context) ([]*models.League, error) {
	return s.leagues.ListActive(ctx)
}

func (s *LeagueService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.League, error) {
	league, err := s.leagues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if league == nil {
		return nil, notFound("league", id.Hex())
	}
	return league, nil
}

// Teams lists the league's teams
func (s *LeagueService) Teams(ctx context.Context, leagueID primitive.ObjectID) ([]*models.Team, error) {
	if _, err := s.GetByID(ctx, leagueID); err != nil {
		return nil, err
	}
	return s.teams.ListByLeague(ctx, leagueID)
}
