package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultMaxMembers = 50
	MinMembers        = 2
	MaxMembers        = 100
	JoinCodeLength    = 8
)

// SelectionType decides how a group picks the matches it predicts on
type SelectionType string

const (
	SelectionLeagues SelectionType = "leagues"
	SelectionRounds  SelectionType = "rounds"
	SelectionDates   SelectionType = "dates"
	SelectionMixed   SelectionType = "mixed"
)

// RoundSelection selects one round of a league season
type RoundSelection struct {
	LeagueID primitive.ObjectID `bson:"league_id" json:"league_id"`
	SeasonID primitive.ObjectID `bson:"season_id" json:"season_id"`
	Round    string             `bson:"round" json:"round"`
}

// DateSelection selects every match on a calendar day, optionally restricted to some leagues
type DateSelection struct {
	Date      time.Time            `bson:"date" json:"date"`
	LeagueIDs []primitive.ObjectID `bson:"league_ids,omitempty" json:"league_ids,omitempty"`
}

// Group is a prediction group whose members compete on a selected set of matches
type Group struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Description   string               `bson:"description,omitempty" json:"description,omitempty"`
	CreatorID     primitive.ObjectID   `bson:"creator_id" json:"creator_id"`
	LeagueIDs     []primitive.ObjectID `bson:"league_ids" json:"league_ids"`
	DirectLeagues []primitive.ObjectID `bson:"direct_league_ids,omitempty" json:"direct_league_ids,omitempty"`
	SelectionType SelectionType        `bson:"selection_type" json:"selection_type"`
	Rounds        []RoundSelection     `bson:"rounds,omitempty" json:"rounds,omitempty"`
	Dates         []DateSelection      `bson:"dates,omitempty" json:"dates,omitempty"`
	IsPrivate     bool                 `bson:"is_private" json:"is_private"`
	MaxMembers    int                  `bson:"max_members" json:"max_members"`
	JoinCode      string               `bson:"join_code" json:"join_code"`
	IsActive      bool                 `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}

// SelectionConfig is the raw selection a group is created or reconfigured with
type SelectionConfig struct {
	Type         SelectionType        `json:"selection_type"`
	LeagueIDs    []primitive.ObjectID `json:"leagues"`
	RoundLeague  *primitive.ObjectID  `json:"round_league,omitempty"`
	RoundSeason  *primitive.ObjectID  `json:"round_season,omitempty"`
	RoundNumbers string               `json:"round_numbers,omitempty"`
	MatchDates   string               `json:"match_dates,omitempty"`
	DateLeagues  []primitive.ObjectID `json:"date_leagues,omitempty"`
}

// GroupInput carries the fields needed to create a group
type GroupInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsPrivate   bool            `json:"is_private"`
	MaxMembers  int             `json:"max_members"`
	Selection   SelectionConfig `json:"selection"`
}

// Role of a member inside a group
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// Membership links a user to a group and carries the member's group statistics
type Membership struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	GroupID primitive.ObjectID `bson:"group_id" json:"group_id"`
	Role    Role               `bson:"role" json:"role"`

	PredictionStats `bson:",inline"`

	JoinedAt time.Time `bson:"joined_at" json:"joined_at"`
	IsActive bool      `bson:"is_active" json:"is_active"`

	Username string `bson:"-" json:"username,omitempty"`
}

// LeaderboardEntry is one ranked row of a group leaderboard
type LeaderboardEntry struct {
	Rank     int                `json:"rank"`
	UserID   primitive.ObjectID `json:"user_id"`
	Username string             `json:"username"`
	Role     Role               `json:"role"`
	StatsSummary
}

// Outcome reports the result of a state-changing request that may be refused
type Outcome struct {
	OK      bool   `json:"success"`
	Message string `json:"message"`
}

// Refused builds a failed outcome
func Refused(message string) Outcome {
	return Outcome{OK: false, Message: message}
}

// Accepted builds a successful outcome
func Accepted(message string) Outcome {
	return Outcome{OK: true, Message: message}
}
