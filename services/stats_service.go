package services

import (
	"context"
	"sort"
	"sync"

	"football-app-go/database"
	"football-app-go/logging"
	"football-app-go/metrics"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComputeStats aggregates predictions over finished matches. Predictions whose
// match is missing or not finished are ignored.
func ComputeStats(predictions []*models.Prediction, matches map[primitive.ObjectID]*models.Match) models.PredictionStats {
	var stats models.PredictionStats
	for _, p := range predictions {
		match, ok := matches[p.MatchID]
		if !ok || !match.IsFinished() {
			continue
		}
		stats.Total++
		if correct, ok := IsCorrect(p, match); ok && correct {
			stats.Correct++
		}
		if IsExact(p, match) {
			stats.Exact++
		}
		stats.Points += ScorePrediction(p, match)
	}
	return stats
}

// LeagueStats is one row of a user's per-league breakdown
type LeagueStats struct {
	LeagueID   primitive.ObjectID `json:"league_id"`
	LeagueName string             `json:"league_name"`
	models.StatsSummary
}

// StatsService recomputes membership and profile statistics from predictions
type StatsService struct {
	predictions PredictionRepository
	matches     MatchRepository
	groups      GroupRepository
	memberships MembershipRepository
	users       UserRepository
	leagues     LeagueRepository
	metrics     *metrics.Collector
	groupLocks  *keyedMutex
	logger      *logging.Logger
}

func NewStatsService(
	predictions PredictionRepository,
	matches MatchRepository,
	groups GroupRepository,
	memberships MembershipRepository,
	users UserRepository,
	leagues LeagueRepository,
	collector *metrics.Collector,
) *StatsService {
	return &StatsService{
		predictions: predictions,
		matches:     matches,
		groups:      groups,
		memberships: memberships,
		users:       users,
		leagues:     leagues,
		metrics:     collector,
		groupLocks:  newKeyedMutex(),
		logger:      logging.WithPrefix("Stats"),
	}
}

// RecomputeMembership recomputes one membership scoped to its group's leagues
func (s *StatsService) RecomputeMembership(ctx context.Context, membershipID primitive.ObjectID) (*models.Membership, error) {
	membership, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, notFound("membership", membershipID.Hex())
	}
	group, err := s.loadGroup(ctx, membership.GroupID)
	if err != nil {
		return nil, err
	}

	unlock := s.groupLocks.Lock(group.ID)
	defer unlock()

	if err := s.recompute(ctx, group, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// RecomputeGroup recomputes every active membership of the group. Calls for
// the same group are serialized.
func (s *StatsService) RecomputeGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Membership, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	unlock := s.groupLocks.Lock(group.ID)
	defer unlock()

	memberships, err := s.memberships.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	for _, membership := range memberships {
		if err := s.recompute(ctx, group, membership); err != nil {
			return nil, err
		}
	}
	s.logger.Debugf("Recomputed %d memberships of group %s", len(memberships), group.Name)
	return memberships, nil
}

// RecomputeGroupsForLeague recomputes every group whose league set contains the league
func (s *StatsService) RecomputeGroupsForLeague(ctx context.Context, leagueID primitive.ObjectID) (int, error) {
	groups, err := s.groups.ListByLeague(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	for _, group := range groups {
		if _, err := s.RecomputeGroup(ctx, group.ID); err != nil {
			return 0, err
		}
	}
	return len(groups), nil
}

func (s *StatsService) recompute(ctx context.Context, group *models.Group, membership *models.Membership) error {
	leagues := group.LeagueIDs
	if leagues == nil {
		leagues = []primitive.ObjectID{}
	}
	stats, err := s.statsFor(ctx, membership.UserID, database.PredictionFilter{LeagueIDs: leagues})
	if err != nil {
		return err
	}
	if err := s.memberships.UpdateStats(ctx, membership.ID, stats); err != nil {
		return err
	}
	membership.PredictionStats = stats
	if s.metrics != nil {
		s.metrics.StatsRecomputed.WithLabelValues("membership").Inc()
	}
	return nil
}

// RecomputeProfile recomputes the user's unscoped profile statistics
func (s *StatsService) RecomputeProfile(ctx context.Context, userID primitive.ObjectID) (models.PredictionStats, error) {
	stats, err := s.statsFor(ctx, userID, database.PredictionFilter{})
	if err != nil {
		return stats, err
	}
	if err := s.users.UpdateStats(ctx, userID, stats); err != nil {
		return stats, err
	}
	if s.metrics != nil {
		s.metrics.StatsRecomputed.WithLabelValues("profile").Inc()
	}
	return stats, nil
}

// LeagueBreakdown returns the user's statistics per league, best points first
func (s *StatsService) LeagueBreakdown(ctx context.Context, userID primitive.ObjectID) ([]LeagueStats, error) {
	predictions, matches, err := s.load(ctx, userID, database.PredictionFilter{})
	if err != nil {
		return nil, err
	}

	byLeague := map[primitive.ObjectID][]*models.Prediction{}
	for _, p := range predictions {
		if match, ok := matches[p.MatchID]; ok {
			byLeague[match.LeagueID] = append(byLeague[match.LeagueID], p)
		}
	}

	rows := make([]LeagueStats, 0, len(byLeague))
	for leagueID, group := range byLeague {
		row := LeagueStats{LeagueID: leagueID, StatsSummary: ComputeStats(group, matches).Summary()}
		if s.leagues != nil {
			league, err := s.leagues.GetByID(ctx, leagueID)
			if err != nil {
				return nil, err
			}
			if league != nil {
				row.LeagueName = league.Name
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].LeagueName < rows[j].LeagueName
	})
	return rows, nil
}

func (s *StatsService) statsFor(ctx context.Context, userID primitive.ObjectID, filter database.PredictionFilter) (models.PredictionStats, error) {
	predictions, matches, err := s.load(ctx, userID, filter)
	if err != nil {
		return models.PredictionStats{}, err
	}
	return ComputeStats(predictions, matches), nil
}

func (s *StatsService) load(ctx context.Context, userID primitive.ObjectID, filter database.PredictionFilter) ([]*models.Prediction, map[primitive.ObjectID]*models.Match, error) {
	predictions, err := s.predictions.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, nil, err
	}
	if len(predictions) == 0 {
		return nil, map[primitive.ObjectID]*models.Match{}, nil
	}

	ids := make([]primitive.ObjectID, len(predictions))
	for i, p := range predictions {
		ids[i] = p.MatchID
	}
	matches, err := s.matches.Find(ctx, database.MatchFilter{
		IDs:      ids,
		Statuses: models.StatusesInPhase(models.PhaseFinished),
	})
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[primitive.ObjectID]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	return predictions, byID, nil
}

func (s *StatsService) loadGroup(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, notFound("group", id.Hex())
	}
	return group, nil
}

// keyedMutex hands out one mutex per key and forgets it once unused
type keyedMutex struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[primitive.ObjectID]*refMutex{}}
}

// Lock blocks until the key is free and returns its unlock function
func (k *keyedMutex) Lock(key primitive.ObjectID) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
