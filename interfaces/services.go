package interfaces

import (
	"context"

	"football-app-go/models"
	"football-app-go/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthService defines authentication operations
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, login, password string) (*models.AuthResponse, error)
	GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error)
}

// SeasonService defines season lookups
type SeasonService interface {
	CurrentSeason(ctx context.Context, leagueID *primitive.ObjectID) (*models.Season, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Season, error)
	List(ctx context.Context, leagueID *primitive.ObjectID) ([]*models.Season, error)
}

// LeagueService defines the league catalogue
type LeagueService interface {
	ListActive(ctx context.Context) ([]*models.League, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.League, error)
	Teams(ctx context.Context, leagueID primitive.ObjectID) ([]*models.Team, error)
}

// StandingsService defines league tables, team pages and round schedules
type StandingsService interface {
	Standings(ctx context.Context, leagueID primitive.ObjectID, seasonID *primitive.ObjectID) ([]models.StandingRow, error)
	TeamStats(ctx context.Context, teamID primitive.ObjectID, seasonID *primitive.ObjectID) (*models.TeamStats, error)
	RoundSchedule(ctx context.Context, leagueID primitive.ObjectID, seasonID *primitive.ObjectID) (*models.RoundSchedule, error)
}

// PredictionService defines prediction entry and listings
type PredictionService interface {
	SavePrediction(ctx context.Context, userID primitive.ObjectID, in models.PredictionInput) (*models.Prediction, bool, error)
	ValidateAndSave(ctx context.Context, userID primitive.ObjectID, inputs []models.PredictionInput) (created, updated int, err error)
	PredictionCenter(ctx context.Context, userID primitive.ObjectID, query services.CenterQuery) ([]services.CenterEntry, error)
	MyPredictions(ctx context.Context, userID primitive.ObjectID, query services.HistoryQuery) (*services.History, error)
}

// GroupService defines group membership and leaderboards
type GroupService interface {
	CreateGroup(ctx context.Context, creatorID primitive.ObjectID, in models.GroupInput) (*models.Group, error)
	GetGroup(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error)
	Join(ctx context.Context, groupID, userID primitive.ObjectID) (models.Outcome, error)
	JoinByCode(ctx context.Context, code string, userID primitive.ObjectID) (models.Outcome, error)
	Leave(ctx context.Context, groupID, userID primitive.ObjectID) (models.Outcome, error)
	Leaderboard(ctx context.Context, groupID primitive.ObjectID) ([]models.LeaderboardEntry, error)
	Members(ctx context.Context, groupID primitive.ObjectID) ([]*models.Membership, error)
	Matches(ctx context.Context, groupID primitive.ObjectID) (*services.GroupMatches, error)
	ListPublic(ctx context.Context) ([]*models.Group, error)
	MyGroups(ctx context.Context, userID primitive.ObjectID) ([]services.MemberGroup, error)
	UpdateSelection(ctx context.Context, groupID, userID primitive.ObjectID, cfg models.SelectionConfig) (*models.Group, error)
}

// InvitationService defines invitations to private groups
type InvitationService interface {
	Invite(ctx context.Context, groupID, inviterID primitive.ObjectID, req services.InviteRequest) (*models.Invitation, models.Outcome, error)
	Accept(ctx context.Context, invitationID, userID primitive.ObjectID) (models.Outcome, error)
	Decline(ctx context.Context, invitationID, userID primitive.ObjectID) (models.Outcome, error)
	ListPending(ctx context.Context, userID primitive.ObjectID) ([]*models.Invitation, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
}

// UserService defines user listings and profiles
type UserService interface {
	TopUsers(ctx context.Context) ([]models.User, error)
	Profile(ctx context.Context, userID primitive.ObjectID) (*services.Profile, error)
}
