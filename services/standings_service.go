package services

import (
	"context"
	"regexp"
	"sort"
	"strconv"

	"football-app-go/database"
	"football-app-go/logging"
	"football-app-go/models"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const teamMatchesLimit = 10

// ComputeStandings builds the league table from finished matches. Every team
// gets a row even without matches. Ties on points are broken by goal
// difference then goals scored, and otherwise keep the order of teams.
func ComputeStandings(teams []*models.Team, matches []*models.Match) []models.StandingRow {
	rows := make([]models.StandingRow, len(teams))
	index := make(map[primitive.ObjectID]int, len(teams))
	for i, team := range teams {
		rows[i] = models.StandingRow{TeamID: team.ID, TeamName: team.Name, Form: []string{}}
		index[team.ID] = i
	}

	finished := finishedByKickoffDesc(matches)
	for _, m := range finished {
		for _, teamID := range []primitive.ObjectID{m.HomeTeamID, m.AwayTeamID} {
			if i, ok := index[teamID]; ok {
				tally(&rows[i], m, teamID)
			}
		}
	}

	for i := range rows {
		rows[i].GoalDifference = rows[i].GoalsFor - rows[i].GoalsAgainst
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

// tally adds one finished match to the team's row. Matches must arrive most
// recent first so the form reads newest to oldest.
func tally(row *models.StandingRow, m *models.Match, teamID primitive.ObjectID) {
	scored, conceded := m.GoalsFor(teamID)
	row.Played++
	row.GoalsFor += scored
	row.GoalsAgainst += conceded

	outcome := m.OutcomeFor(teamID)
	switch outcome {
	case "W":
		row.Wins++
		row.Points += 3
	case "D":
		row.Draws++
		row.Points++
	default:
		row.Losses++
	}
	if len(row.Form) < models.FormLength {
		row.Form = append(row.Form, outcome)
	}
}

func finishedByKickoffDesc(matches []*models.Match) []*models.Match {
	finished := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if _, ok := m.Result(); ok {
			finished = append(finished, m)
		}
	}
	sort.SliceStable(finished, func(i, j int) bool {
		return finished[i].Kickoff.After(finished[j].Kickoff)
	})
	return finished
}

var trailingNumber = regexp.MustCompile(`(\d+)\s*$`)

// roundOrder returns the number a round label sorts by, if it has one
func roundOrder(label string) (int, bool) {
	match := trailingNumber.FindStringSubmatch(label)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// BuildRoundSchedule groups matches by round label. Numbered rounds come first
// in numeric order, the rest follow in label order. Matches inside a round are
// ordered by kickoff.
func BuildRoundSchedule(matches []*models.Match) models.RoundSchedule {
	schedule := models.RoundSchedule{Rounds: []models.RoundGroup{}}
	byLabel := map[string]int{}

	sorted := append([]*models.Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Kickoff.Before(sorted[j].Kickoff) })

	for _, m := range sorted {
		i, ok := byLabel[m.Round]
		if !ok {
			i = len(schedule.Rounds)
			byLabel[m.Round] = i
			schedule.Rounds = append(schedule.Rounds, models.RoundGroup{Round: m.Round, Matches: []models.Match{}})
		}
		group := &schedule.Rounds[i]
		group.Matches = append(group.Matches, *m)
		group.TotalCount++

		schedule.TotalMatches++
		switch m.Phase() {
		case models.PhaseFinished:
			group.FinishedCount++
			schedule.FinishedMatches++
		case models.PhaseScheduled:
			schedule.ScheduledMatches++
		}
	}

	sort.SliceStable(schedule.Rounds, func(i, j int) bool {
		a, aok := roundOrder(schedule.Rounds[i].Round)
		b, bok := roundOrder(schedule.Rounds[j].Round)
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return schedule.Rounds[i].Round < schedule.Rounds[j].Round
		}
	})
	return schedule
}

// StandingsService serves league tables, team pages and round schedules
type StandingsService struct {
	teams   TeamRepository
	matches MatchRepository
	seasons *SeasonService
	clock   clockwork.Clock
	logger  *logging.Logger
}

func NewStandingsService(teams TeamRepository, matches MatchRepository, seasons *SeasonService, clock clockwork.Clock) *StandingsService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StandingsService{
		teams:   teams,
		matches: matches,
		seasons: seasons,
		clock:   clock,
		logger:  logging.WithPrefix("Standings"),
	}
}

// Standings returns the table of a league season. A nil season resolves to
// the league's current season.
func (s *StandingsService) Standings(ctx context.Context, leagueID primitive.ObjectID, seasonID *primitive.ObjectID) ([]models.StandingRow, error) {
	seasonID, err := s.seasons.ResolveSeasonID(ctx, &leagueID, seasonID)
	if err != nil {
		return nil, err
	}

	teams, err := s.teams.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.Find(ctx, database.MatchFilter{
		LeagueIDs: []primitive.ObjectID{leagueID},
		SeasonID:  seasonID,
		Statuses:  models.StatusesInPhase(models.PhaseFinished),
	})
	if err != nil {
		return nil, err
	}
	return ComputeStandings(teams, matches), nil
}

// TeamStats returns a team's season record with its recent and upcoming matches
func (s *StandingsService) TeamStats(ctx context.Context, teamID primitive.ObjectID, seasonID *primitive.ObjectID) (*models.TeamStats, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, notFound("team", teamID.Hex())
	}
	if seasonID, err = s.seasons.ResolveSeasonID(ctx, nil, seasonID); err != nil {
		return nil, err
	}

	matches, err := s.matches.Find(ctx, database.MatchFilter{TeamID: &teamID, SeasonID: seasonID, Descending: true})
	if err != nil {
		return nil, err
	}

	row := models.StandingRow{TeamID: team.ID, TeamName: team.Name, Form: []string{}}
	recent := []models.Match{}
	for _, m := range finishedByKickoffDesc(matches) {
		tally(&row, m, teamID)
		if len(recent) < teamMatchesLimit {
			recent = append(recent, *m)
		}
	}
	row.GoalDifference = row.GoalsFor - row.GoalsAgainst

	now := s.clock.Now()
	upcoming := []models.Match{}
	for i := len(matches) - 1; i >= 0 && len(upcoming) < teamMatchesLimit; i-- {
		m := matches[i]
		if m.Phase() == models.PhaseScheduled && !m.Kickoff.Before(now) {
			upcoming = append(upcoming, *m)
		}
	}

	return &models.TeamStats{
		Team:            team,
		SeasonID:        seasonID,
		Row:             row,
		GoalsForAvg:     row.GoalsForAverage(),
		GoalsAgainstAvg: row.GoalsAgainstAverage(),
		RecentMatches:   recent,
		UpcomingMatches: upcoming,
	}, nil
}

// RoundSchedule returns a league season grouped by round
func (s *StandingsService) RoundSchedule(ctx context.Context, leagueID primitive.ObjectID, seasonID *primitive.ObjectID) (*models.RoundSchedule, error) {
	seasonID, err := s.seasons.ResolveSeasonID(ctx, &leagueID, seasonID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.Find(ctx, database.MatchFilter{
		LeagueIDs: []primitive.ObjectID{leagueID},
		SeasonID:  seasonID,
	})
	if err != nil {
		return nil, err
	}
	schedule := BuildRoundSchedule(matches)
	return &schedule, nil
}
