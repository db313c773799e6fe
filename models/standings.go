package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormLength is the number of recent results shown in a team's form
const FormLength = 5

// StandingRow is one team's line in a league table
type StandingRow struct {
	Position       int                `json:"position"`
	TeamID         primitive.ObjectID `json:"team_id"`
	TeamName       string             `json:"team_name"`
	Played         int                `json:"played"`
	Wins           int                `json:"wins"`
	Draws          int                `json:"draws"`
	Losses         int                `json:"losses"`
	GoalsFor       int                `json:"goals_for"`
	GoalsAgainst   int                `json:"goals_against"`
	GoalDifference int                `json:"goal_difference"`
	Points         int                `json:"points"`
	Form           []string           `json:"form"`
}

// GoalsForAverage is goals scored per match played, 0 before the first match
func (r *StandingRow) GoalsForAverage() float64 {
	if r.Played == 0 {
		return 0
	}
	return float64(r.GoalsFor) / float64(r.Played)
}

// GoalsAgainstAverage is goals conceded per match played, 0 before the first match
func (r *StandingRow) GoalsAgainstAverage() float64 {
	if r.Played == 0 {
		return 0
	}
	return float64(r.GoalsAgainst) / float64(r.Played)
}

// TeamStats is the team detail view for one season
type TeamStats struct {
	Team            *Team               `json:"team"`
	SeasonID        *primitive.ObjectID `json:"season_id,omitempty"`
	Row             StandingRow         `json:"stats"`
	GoalsForAvg     float64             `json:"goals_for_avg"`
	GoalsAgainstAvg float64             `json:"goals_against_avg"`
	RecentMatches   []Match             `json:"recent_matches"`
	UpcomingMatches []Match             `json:"upcoming_matches"`
}

// RoundGroup is one round of a league season with its matches
type RoundGroup struct {
	Round         string  `json:"round"`
	Matches       []Match `json:"matches"`
	FinishedCount int     `json:"finished_count"`
	TotalCount    int     `json:"total_count"`
}

// RoundSchedule is a league season laid out by round
type RoundSchedule struct {
	Rounds           []RoundGroup `json:"rounds"`
	TotalMatches     int          `json:"total_matches"`
	FinishedMatches  int          `json:"finished_matches"`
	ScheduledMatches int          `json:"scheduled_matches"`
}
