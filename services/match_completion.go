package services

import (
	"context"

	"football-app-go/events"
	"football-app-go/logging"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchCompletion runs everything that follows a match reaching a final score:
// prediction points, group and profile statistics, and the scored event
type MatchCompletion struct {
	matches     MatchRepository
	predictions PredictionRepository
	scoring     *ScoringService
	stats       *StatsService
	publisher   events.Publisher
	logger      *logging.Logger
}

func NewMatchCompletion(
	matches MatchRepository,
	predictions PredictionRepository,
	scoring *ScoringService,
	stats *StatsService,
	publisher events.Publisher,
) *MatchCompletion {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &MatchCompletion{
		matches:     matches,
		predictions: predictions,
		scoring:     scoring,
		stats:       stats,
		publisher:   publisher,
		logger:      logging.WithPrefix("MatchCompletion"),
	}
}

// MatchScoredEvent is published once a finished match has been scored
type MatchScoredEvent struct {
	MatchID     string `json:"match_id"`
	LeagueID    string `json:"league_id"`
	HomeGoals   int    `json:"home_goals"`
	AwayGoals   int    `json:"away_goals"`
	Predictions int    `json:"predictions"`
	Groups      int    `json:"groups"`
}

// HandleFinished scores the match and refreshes every statistic it feeds.
// Matches without a result are ignored.
func (c *MatchCompletion) HandleFinished(ctx context.Context, matchID primitive.ObjectID) error {
	match, err := c.matches.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if match == nil {
		return notFound("match", matchID.Hex())
	}
	if _, ok := match.Result(); !ok {
		return nil
	}

	scored, err := c.scoring.ScoreLoadedMatch(ctx, match)
	if err != nil {
		return err
	}

	groups, err := c.stats.RecomputeGroupsForLeague(ctx, match.LeagueID)
	if err != nil {
		return err
	}
	if err := c.recomputeProfiles(ctx, match); err != nil {
		return err
	}

	event := MatchScoredEvent{
		MatchID:     match.ID.Hex(),
		LeagueID:    match.LeagueID.Hex(),
		HomeGoals:   *match.HomeGoals,
		AwayGoals:   *match.AwayGoals,
		Predictions: scored,
		Groups:      groups,
	}
	if err := c.publisher.Publish(ctx, events.SubjectMatchScored, event); err != nil {
		c.logger.Warnf("Failed to publish scored event for match %s: %v", match.ID.Hex(), err)
	}
	c.logger.Infof("Match %s completed: %d predictions scored, %d groups refreshed", match.ID.Hex(), scored, groups)
	return nil
}

func (c *MatchCompletion) recomputeProfiles(ctx context.Context, match *models.Match) error {
	predictions, err := c.predictions.ListByMatch(ctx, match.ID)
	if err != nil {
		return err
	}
	for _, p := range predictions {
		if _, err := c.stats.RecomputeProfile(ctx, p.UserID); err != nil {
			return err
		}
	}
	return nil
}
