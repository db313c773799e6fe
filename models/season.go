package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GlobalScope is the scope key of seasons that do not belong to a league
const GlobalScope = "global"

// Season represents a bounded period of play, optionally tied to one league
type Season struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LeagueID  *primitive.ObjectID `bson:"league_id,omitempty" json:"league_id,omitempty"`
	Scope     string              `bson:"scope" json:"-"`
	Name      string              `bson:"name" json:"name"`
	StartYear int                 `bson:"start_year" json:"start_year"`
	EndYear   int                 `bson:"end_year,omitempty" json:"end_year,omitempty"`
	StartDate *time.Time          `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time          `bson:"end_date,omitempty" json:"end_date,omitempty"`
	IsCurrent bool                `bson:"is_current" json:"is_current"`
	IsActive  bool                `bson:"is_active" json:"is_active"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// ScopeKey identifies the set of seasons among which at most one may be current
func (s *Season) ScopeKey() string {
	return SeasonScope(s.LeagueID)
}

// SeasonScope returns the scope key for a league, or the global scope for nil
func SeasonScope(leagueID *primitive.ObjectID) string {
	if leagueID == nil || leagueID.IsZero() {
		return GlobalScope
	}
	return leagueID.Hex()
}

// IsFinished returns true when the season end date has passed
func (s *Season) IsFinished(now time.Time) bool {
	return s.EndDate != nil && dateOnly(now).After(*s.EndDate)
}

// IsUpcoming returns true when the season has not started yet
func (s *Season) IsUpcoming(now time.Time) bool {
	return s.StartDate != nil && dateOnly(now).Before(*s.StartDate)
}

// IsOngoing returns true between start and end date inclusive
func (s *Season) IsOngoing(now time.Time) bool {
	if s.StartDate == nil || s.EndDate == nil {
		return false
	}
	today := dateOnly(now)
	return !today.Before(*s.StartDate) && !today.After(*s.EndDate)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SeasonName formats the canonical "2024/2025" name
func SeasonName(startYear, endYear int) string {
	return fmt.Sprintf("%d/%d", startYear, endYear)
}

// ParseSeasonName parses "YYYY/YYYY" into start and end years
func ParseSeasonName(name string) (startYear, endYear int, err error) {
	parts := strings.Split(strings.TrimSpace(name), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid season format %q, use YYYY/YYYY (e.g. 2025/2026)", name)
	}
	startYear, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid season format %q, use YYYY/YYYY (e.g. 2025/2026)", name)
	}
	endYear, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid season format %q, use YYYY/YYYY (e.g. 2025/2026)", name)
	}
	return startYear, endYear, nil
}
