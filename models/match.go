package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchStatus is the short status code reported by the fixtures feed (NS, 1H, FT, ...)
type MatchStatus string

const (
	StatusTBD             MatchStatus = "TBD"
	StatusNotStarted      MatchStatus = "NS"
	StatusFirstHalf       MatchStatus = "1H"
	StatusHalftime        MatchStatus = "HT"
	StatusSecondHalf      MatchStatus = "2H"
	StatusExtraTime       MatchStatus = "ET"
	StatusBreakTime       MatchStatus = "BT"
	StatusPenalties       MatchStatus = "P"
	StatusSuspended       MatchStatus = "SUSP"
	StatusInterrupted     MatchStatus = "INT"
	StatusLive            MatchStatus = "LIVE"
	StatusFullTime        MatchStatus = "FT"
	StatusAfterExtraTime  MatchStatus = "AET"
	StatusPenaltyShootout MatchStatus = "PEN"
	StatusPostponed       MatchStatus = "PST"
	StatusCancelled       MatchStatus = "CANC"
	StatusAbandoned       MatchStatus = "ABD"
	StatusTechnicalLoss   MatchStatus = "AWD"
	StatusWalkOver        MatchStatus = "WO"
)

// MatchPhase groups status codes into coarse lifecycle phases
type MatchPhase string

const (
	PhaseScheduled MatchPhase = "Scheduled"
	PhaseInPlay    MatchPhase = "In Play"
	PhaseFinished  MatchPhase = "Finished"
	PhasePostponed MatchPhase = "Postponed"
	PhaseCancelled MatchPhase = "Cancelled"
	PhaseAbandoned MatchPhase = "Abandoned"
	PhaseNotPlayed MatchPhase = "Not Played"
	PhaseUnknown   MatchPhase = "Unknown"
)

type statusInfo struct {
	long  string
	phase MatchPhase
}

var statusTable = map[MatchStatus]statusInfo{
	StatusTBD:             {"Time To Be Defined", PhaseScheduled},
	StatusNotStarted:      {"Not Started", PhaseScheduled},
	StatusFirstHalf:       {"First Half, Kick Off", PhaseInPlay},
	StatusHalftime:        {"Halftime", PhaseInPlay},
	StatusSecondHalf:      {"Second Half, 2nd Half Started", PhaseInPlay},
	StatusExtraTime:       {"Extra Time", PhaseInPlay},
	StatusBreakTime:       {"Break Time", PhaseInPlay},
	StatusPenalties:       {"Penalty In Progress", PhaseInPlay},
	StatusSuspended:       {"Match Suspended", PhaseInPlay},
	StatusInterrupted:     {"Match Interrupted", PhaseInPlay},
	StatusLive:            {"In Progress", PhaseInPlay},
	StatusFullTime:        {"Match Finished", PhaseFinished},
	StatusAfterExtraTime:  {"Match Finished", PhaseFinished},
	StatusPenaltyShootout: {"Match Finished", PhaseFinished},
	StatusPostponed:       {"Match Postponed", PhasePostponed},
	StatusCancelled:       {"Match Cancelled", PhaseCancelled},
	StatusAbandoned:       {"Match Abandoned", PhaseAbandoned},
	StatusTechnicalLoss:   {"Technical Loss", PhaseNotPlayed},
	StatusWalkOver:        {"WalkOver", PhaseNotPlayed},
}

// Phase returns the lifecycle phase for the status code
func (s MatchStatus) Phase() MatchPhase {
	if info, ok := statusTable[s]; ok {
		return info.phase
	}
	return PhaseUnknown
}

// Long returns the human readable status text
func (s MatchStatus) Long() string {
	if info, ok := statusTable[s]; ok {
		return info.long
	}
	return "Unknown"
}

// IsValid reports whether the code belongs to the known vocabulary
func (s MatchStatus) IsValid() bool {
	_, ok := statusTable[s]
	return ok
}

// StatusesInPhase lists every status code mapped to the given phase
func StatusesInPhase(phase MatchPhase) []MatchStatus {
	var codes []MatchStatus
	for code, info := range statusTable {
		if info.phase == phase {
			codes = append(codes, code)
		}
	}
	return codes
}

// MatchResult is the categorical outcome of a match or prediction
type MatchResult string

const (
	ResultHome MatchResult = "H"
	ResultDraw MatchResult = "D"
	ResultAway MatchResult = "A"
)

// IsValid reports whether r is one of H, D or A
func (r MatchResult) IsValid() bool {
	return r == ResultHome || r == ResultDraw || r == ResultAway
}

// ResultFromScore derives the outcome from a pair of goal counts
func ResultFromScore(home, away int) MatchResult {
	switch {
	case home > away:
		return ResultHome
	case away > home:
		return ResultAway
	default:
		return ResultDraw
	}
}

// Match represents a single fixture between two teams in a league season
type Match struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LeagueID   primitive.ObjectID  `bson:"league_id" json:"league_id"`
	SeasonID   *primitive.ObjectID `bson:"season_id,omitempty" json:"season_id,omitempty"`
	HomeTeamID primitive.ObjectID  `bson:"home_team_id" json:"home_team_id"`
	AwayTeamID primitive.ObjectID  `bson:"away_team_id" json:"away_team_id"`
	Kickoff    time.Time           `bson:"date" json:"date"`
	Round      string              `bson:"round" json:"round,omitempty"`
	Status     MatchStatus         `bson:"status" json:"status"`
	Elapsed    *int                `bson:"elapsed,omitempty" json:"elapsed,omitempty"`
	HomeGoals  *int                `bson:"home_goals,omitempty" json:"home_goals,omitempty"`
	AwayGoals  *int                `bson:"away_goals,omitempty" json:"away_goals,omitempty"`
	Venue      string              `bson:"venue,omitempty" json:"venue,omitempty"`
	Referee    string              `bson:"referee,omitempty" json:"referee,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updated_at"`
}

// Phase returns the lifecycle phase of the match
func (m *Match) Phase() MatchPhase {
	return m.Status.Phase()
}

// IsFinished returns true when the match reached a finished status code
func (m *Match) IsFinished() bool {
	return m.Phase() == PhaseFinished
}

// IsLive returns true while the match is being played
func (m *Match) IsLive() bool {
	return m.Phase() == PhaseInPlay
}

// HasScore reports whether both goal counts are recorded
func (m *Match) HasScore() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// Result returns the outcome. ok is false unless the match is finished with both scores present.
func (m *Match) Result() (result MatchResult, ok bool) {
	if !m.IsFinished() || !m.HasScore() {
		return "", false
	}
	return ResultFromScore(*m.HomeGoals, *m.AwayGoals), true
}

// AcceptsPredictions reports whether a prediction may be submitted at the given instant
func (m *Match) AcceptsPredictions(now time.Time) bool {
	return m.Phase() == PhaseScheduled && now.Before(m.Kickoff)
}

// Involves reports whether the team played in this match
func (m *Match) Involves(teamID primitive.ObjectID) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// GoalsFor returns the goals scored and conceded by the given team
func (m *Match) GoalsFor(teamID primitive.ObjectID) (scored, conceded int) {
	if !m.HasScore() {
		return 0, 0
	}
	if m.HomeTeamID == teamID {
		return *m.HomeGoals, *m.AwayGoals
	}
	return *m.AwayGoals, *m.HomeGoals
}

// OutcomeFor returns W, D or L from the perspective of the given team
func (m *Match) OutcomeFor(teamID primitive.ObjectID) string {
	scored, conceded := m.GoalsFor(teamID)
	switch {
	case scored > conceded:
		return "W"
	case scored < conceded:
		return "L"
	default:
		return "D"
	}
}

// String returns "home 2-1 away" style text using ids
func (m *Match) String() string {
	if m.HasScore() {
		return fmt.Sprintf("%s %d-%d %s", m.HomeTeamID.Hex(), *m.HomeGoals, *m.AwayGoals, m.AwayTeamID.Hex())
	}
	return fmt.Sprintf("%s vs %s", m.HomeTeamID.Hex(), m.AwayTeamID.Hex())
}

// Goals is a small helper to build optional score fields
func Goals(n int) *int {
	return &n
}
