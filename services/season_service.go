package services

import (
	"context"
	"fmt"
	"time"

	"football-app-go/config"
	"football-app-go/events"
	"football-app-go/logging"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeasonService resolves and administers seasons
type SeasonService struct {
	seasons   SeasonRepository
	leagues   LeagueRepository
	publisher events.Publisher
	logger    *logging.Logger
}

func NewSeasonService(seasons SeasonRepository, leagues LeagueRepository, publisher events.Publisher) *SeasonService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SeasonService{
		seasons:   seasons,
		leagues:   leagues,
		publisher: publisher,
		logger:    logging.WithPrefix("Seasons"),
	}
}

// CurrentSeason returns the season flagged current for the league, or the
// global current season when leagueID is nil. Without a flagged season it
// falls back to the most recent active season of the league, or of any scope
// when leagueID is nil. Returns nil when no season qualifies.
func (s *SeasonService) CurrentSeason(ctx context.Context, leagueID *primitive.ObjectID) (*models.Season, error) {
	scope := models.SeasonScope(leagueID)

	season, err := s.seasons.FindCurrent(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current season for %s: %w", scope, err)
	}
	if season != nil {
		return season, nil
	}

	season, err = s.seasons.FindLatestActive(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve latest season for %s: %w", scope, err)
	}
	if season != nil {
		s.logger.Debugf("No current season for %s, falling back to %s", scope, season.Name)
	}
	return season, nil
}

// ResolveSeasonID returns the given season id, or the current season's id when nil.
// A nil result means there is no season at all.
func (s *SeasonService) ResolveSeasonID(ctx context.Context, leagueID *primitive.ObjectID, seasonID *primitive.ObjectID) (*primitive.ObjectID, error) {
	if seasonID != nil {
		return seasonID, nil
	}
	season, err := s.CurrentSeason(ctx, leagueID)
	if err != nil || season == nil {
		return nil, err
	}
	return &season.ID, nil
}

func (s *SeasonService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Season, error) {
	season, err := s.seasons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, notFound("season", id.Hex())
	}
	return season, nil
}

func (s *SeasonService) List(ctx context.Context, leagueID *primitive.ObjectID) ([]*models.Season, error) {
	return s.seasons.List(ctx, leagueID)
}

// SetCurrent makes the season the only current season of its scope
func (s *SeasonService) SetCurrent(ctx context.Context, seasonID primitive.ObjectID) error {
	season, err := s.GetByID(ctx, seasonID)
	if err != nil {
		return err
	}
	if err := s.seasons.SetCurrent(ctx, seasonID); err != nil {
		return err
	}

	s.logger.Infof("Current season for %s set to %s", season.ScopeKey(), season.Name)
	if err := s.publisher.Publish(ctx, events.SubjectSeasonCurrent, map[string]string{
		"season_id": season.ID.Hex(),
		"scope":     season.ScopeKey(),
		"name":      season.Name,
	}); err != nil {
		s.logger.Warnf("Failed to publish season change: %v", err)
	}
	return nil
}

// SetCurrentByName looks a season up by its "YYYY/YYYY" name and makes it current
func (s *SeasonService) SetCurrentByName(ctx context.Context, name string, leagueID *primitive.ObjectID) (*models.Season, error) {
	startYear, endYear, err := models.ParseSeasonName(name)
	if err != nil {
		return nil, &ValidationError{Field: "season", Message: err.Error()}
	}
	name = models.SeasonName(startYear, endYear)

	season, err := s.seasons.FindByName(ctx, name, leagueID)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, notFound("season", name)
	}
	if err := s.SetCurrent(ctx, season.ID); err != nil {
		return nil, err
	}
	season.IsCurrent = true
	return season, nil
}

// PopulateResult summarizes a PopulateSeasons run
type PopulateResult struct {
	Created int
	Updated int
	Current *models.Season
}

// PopulateSeasons creates or updates every season of the seed. When the seed
// names a current season and no season of that scope is current yet, it is
// flagged current.
func (s *SeasonService) PopulateSeasons(ctx context.Context, seed *config.Seed) (*PopulateResult, error) {
	result := &PopulateResult{}
	leagueIDs := map[string]*primitive.ObjectID{}

	for _, entry := range seed.Seasons {
		leagueID, err := s.seedLeague(ctx, entry.League, leagueIDs)
		if err != nil {
			return result, err
		}

		season := &models.Season{
			LeagueID:  leagueID,
			StartYear: entry.StartYear,
			EndYear:   entry.EndYear,
			IsActive:  entry.Active == nil || *entry.Active,
		}
		if season.EndYear == 0 {
			season.EndYear = season.StartYear + 1
		}
		season.Name = models.SeasonName(season.StartYear, season.EndYear)
		if season.StartDate, err = parseSeedDate(entry.StartDate); err != nil {
			return result, err
		}
		if season.EndDate, err = parseSeedDate(entry.EndDate); err != nil {
			return result, err
		}

		created, err := s.seasons.Upsert(ctx, season)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
			s.logger.Infof("Created season %s (%s)", season.Name, season.ScopeKey())
		} else {
			result.Updated++
			s.logger.Debugf("Updated season %s (%s)", season.Name, season.ScopeKey())
		}
	}

	if seed.CurrentSeason == "" {
		return result, nil
	}
	existing, err := s.seasons.FindCurrent(ctx, models.GlobalScope)
	if err != nil {
		return result, err
	}
	if existing != nil {
		s.logger.Infof("Current season already set to %s", existing.Name)
		result.Current = existing
		return result, nil
	}
	current, err := s.SetCurrentByName(ctx, seed.CurrentSeason, nil)
	if err != nil {
		return result, err
	}
	result.Current = current
	return result, nil
}

func (s *SeasonService) seedLeague(ctx context.Context, name string, cache map[string]*primitive.ObjectID) (*primitive.ObjectID, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := cache[name]; ok {
		return id, nil
	}
	league, err := s.leagues.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if league == nil {
		return nil, notFound("league", name)
	}
	cache[name] = &league.ID
	return &league.ID, nil
}

func parseSeedDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, invalid("date", "invalid date %q, use YYYY-MM-DD", value)
	}
	return &t, nil
}
