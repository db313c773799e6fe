package services

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"football-app-go/database"
	"football-app-go/logging"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	dateLayout = "2006-01-02"

	// maxRoundSpan bounds the size of one expanded range
	maxRoundSpan = 500
)

var (
	strictDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	roundRange = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// ParseRoundTokens splits a comma separated round list. "3-5" expands to
// 3, 4 and 5; a descending range expands to nothing. Any other token, including
// a range spanning maxRoundSpan rounds or more, is kept as written, trimmed.
// Empty tokens are dropped.
func ParseRoundTokens(input string) []string {
	rounds := []string{}
	for _, part := range strings.Split(input, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if m := roundRange.FindStringSubmatch(token); m != nil {
			start, errStart := strconv.Atoi(m[1])
			end, errEnd := strconv.Atoi(m[2])
			if errStart == nil && errEnd == nil && end-start < maxRoundSpan {
				for i := start; i <= end; i++ {
					rounds = append(rounds, strconv.Itoa(i))
				}
				continue
			}
		}
		rounds = append(rounds, token)
	}
	return rounds
}

// ParseDates parses a comma separated list of YYYY-MM-DD dates. A single
// malformed token rejects the whole list.
func ParseDates(input string) ([]time.Time, error) {
	dates := []time.Time{}
	for _, part := range strings.Split(input, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if !strictDate.MatchString(token) {
			return nil, invalid("match_dates", "Please enter dates in YYYY-MM-DD format.")
		}
		date, err := time.Parse(dateLayout, token)
		if err != nil {
			return nil, invalid("match_dates", "Please enter dates in YYYY-MM-DD format.")
		}
		dates = append(dates, date)
	}
	return dates, nil
}

func hasRoundSelection(cfg models.SelectionConfig) bool {
	return cfg.RoundLeague != nil && cfg.RoundSeason != nil && len(ParseRoundTokens(cfg.RoundNumbers)) > 0
}

// ValidateSelection checks a selection config for its mode
func ValidateSelection(cfg models.SelectionConfig) error {
	switch cfg.Type {
	case models.SelectionLeagues:
		if len(cfg.LeagueIDs) == 0 {
			return invalid("leagues", "Please select at least one league for league-based selection.")
		}
	case models.SelectionRounds:
		if cfg.RoundLeague == nil {
			return invalid("round_league", "Please select a league for round-based selection.")
		}
		if cfg.RoundSeason == nil {
			return invalid("round_season", "Please select a season for round-based selection.")
		}
		if len(ParseRoundTokens(cfg.RoundNumbers)) == 0 {
			return invalid("round_numbers", "Please enter round numbers for round-based selection.")
		}
	case models.SelectionDates:
		dates, err := ParseDates(cfg.MatchDates)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			return invalid("match_dates", "Please enter match dates for date-based selection.")
		}
	case models.SelectionMixed:
		dates, err := ParseDates(cfg.MatchDates)
		if err != nil {
			return err
		}
		if len(cfg.LeagueIDs) == 0 && !hasRoundSelection(cfg) && len(dates) == 0 {
			return invalid("selection_type", "Please make at least one selection for mixed selection type.")
		}
	default:
		return invalid("selection_type", "Unknown selection type %q.", cfg.Type)
	}
	return nil
}

// Selection is the stored form of a validated selection config
type Selection struct {
	Type          models.SelectionType
	LeagueIDs     []primitive.ObjectID
	DirectLeagues []primitive.ObjectID
	Rounds        []models.RoundSelection
	Dates         []models.DateSelection
}

// Apply copies the selection onto a group
func (s Selection) Apply(group *models.Group) {
	group.SelectionType = s.Type
	group.LeagueIDs = s.LeagueIDs
	group.DirectLeagues = s.DirectLeagues
	group.Rounds = s.Rounds
	group.Dates = s.Dates
}

// BuildSelection validates the config and derives the league set plus the
// round and date records. Only the sub-modes of the selected type are kept.
func BuildSelection(cfg models.SelectionConfig) (*Selection, error) {
	if err := ValidateSelection(cfg); err != nil {
		return nil, err
	}

	sel := &Selection{Type: cfg.Type}
	leagues := newIDSet()
	mixed := cfg.Type == models.SelectionMixed

	if cfg.Type == models.SelectionLeagues || mixed {
		for _, id := range cfg.LeagueIDs {
			leagues.add(id)
		}
		sel.DirectLeagues = dedupeIDs(cfg.LeagueIDs)
	}

	if (cfg.Type == models.SelectionRounds || mixed) && hasRoundSelection(cfg) {
		leagues.add(*cfg.RoundLeague)
		seen := map[string]bool{}
		for _, round := range ParseRoundTokens(cfg.RoundNumbers) {
			if seen[round] {
				continue
			}
			seen[round] = true
			sel.Rounds = append(sel.Rounds, models.RoundSelection{
				LeagueID: *cfg.RoundLeague,
				SeasonID: *cfg.RoundSeason,
				Round:    round,
			})
		}
	}

	if cfg.Type == models.SelectionDates || mixed {
		dates, _ := ParseDates(cfg.MatchDates)
		scope := dedupeIDs(cfg.DateLeagues)
		seen := map[time.Time]bool{}
		for _, date := range dates {
			if seen[date] {
				continue
			}
			seen[date] = true
			sel.Dates = append(sel.Dates, models.DateSelection{Date: date, LeagueIDs: scope})
		}
		if len(dates) > 0 {
			for _, id := range scope {
				leagues.add(id)
			}
		}
	}

	sel.LeagueIDs = leagues.ids()
	return sel, nil
}

// SelectionService resolves a group's selection to concrete matches
type SelectionService struct {
	matches MatchRepository
	leagues LeagueRepository
	logger  *logging.Logger
}

func NewSelectionService(matches MatchRepository, leagues LeagueRepository) *SelectionService {
	return &SelectionService{
		matches: matches,
		leagues: leagues,
		logger:  logging.WithPrefix("Selection"),
	}
}

// Resolve returns the group's league set and the union of matches selected by
// each of its sub-modes, ordered by kickoff. Nothing is cached.
func (s *SelectionService) Resolve(ctx context.Context, group *models.Group) ([]primitive.ObjectID, []*models.Match, error) {
	leagues := newIDSet()
	found := map[primitive.ObjectID]*models.Match{}
	collect := func(filter database.MatchFilter) error {
		matches, err := s.matches.Find(ctx, filter)
		if err != nil {
			return err
		}
		for _, m := range matches {
			found[m.ID] = m
		}
		return nil
	}

	if len(group.DirectLeagues) > 0 {
		for _, id := range group.DirectLeagues {
			leagues.add(id)
		}
		if err := collect(database.MatchFilter{LeagueIDs: group.DirectLeagues}); err != nil {
			return nil, nil, err
		}
	}

	type roundKey struct{ league, season primitive.ObjectID }
	byRound := map[roundKey][]string{}
	var order []roundKey
	for _, r := range group.Rounds {
		key := roundKey{r.LeagueID, r.SeasonID}
		if _, ok := byRound[key]; !ok {
			order = append(order, key)
			leagues.add(r.LeagueID)
		}
		byRound[key] = append(byRound[key], r.Round)
	}
	for _, key := range order {
		season := key.season
		filter := database.MatchFilter{
			LeagueIDs: []primitive.ObjectID{key.league},
			SeasonID:  &season,
			Rounds:    byRound[key],
		}
		if err := collect(filter); err != nil {
			return nil, nil, err
		}
	}

	var active []primitive.ObjectID
	for _, d := range group.Dates {
		scope := d.LeagueIDs
		if len(scope) == 0 {
			if active == nil {
				var err error
				if active, err = s.activeLeagues(ctx); err != nil {
					return nil, nil, err
				}
			}
			scope = active
		} else {
			for _, id := range scope {
				leagues.add(id)
			}
		}
		if err := collect(database.MatchFilter{LeagueIDs: scope}.OnDay(d.Date)); err != nil {
			return nil, nil, err
		}
	}

	matches := make([]*models.Match, 0, len(found))
	for _, m := range found {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Kickoff.Equal(matches[j].Kickoff) {
			return matches[i].Kickoff.Before(matches[j].Kickoff)
		}
		return matches[i].ID.Hex() < matches[j].ID.Hex()
	})

	s.logger.Debugf("Group %s resolved to %d leagues and %d matches", group.Name, len(leagues.order), len(matches))
	return leagues.ids(), matches, nil
}

func (s *SelectionService) activeLeagues(ctx context.Context) ([]primitive.ObjectID, error) {
	leagues, err := s.leagues.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(leagues))
	for i, l := range leagues {
		ids[i] = l.ID
	}
	return ids, nil
}

// idSet keeps insertion order
type idSet struct {
	seen  map[primitive.ObjectID]bool
	order []primitive.ObjectID
}

func newIDSet() *idSet {
	return &idSet{seen: map[primitive.ObjectID]bool{}, order: []primitive.ObjectID{}}
}

func (s *idSet) add(id primitive.ObjectID) {
	if !s.seen[id] {
		s.seen[id] = true
		s.order = append(s.order, id)
	}
}

func (s *idSet) ids() []primitive.ObjectID {
	return s.order
}

func dedupeIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if len(ids) == 0 {
		return nil
	}
	set := newIDSet()
	for _, id := range ids {
		set.add(id)
	}
	return set.ids()
}
