package services

import (
	"context"
	"time"

	"football-app-go/database"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository contracts. Lookups return (nil, nil) when nothing matches.

type LeagueRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.League, error)
	GetByName(ctx context.Context, name string) (*models.League, error)
	ListActive(ctx context.Context) ([]*models.League, error)
}

type TeamRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Team, error)
	ListByLeague(ctx context.Context, leagueID primitive.ObjectID) ([]*models.Team, error)
}

// SeasonRegistry owns the one-current-season-per-scope invariant
type SeasonRegistry interface {
	SetCurrent(ctx context.Context, seasonID primitive.ObjectID) error
}

type SeasonRepository interface {
	SeasonRegistry
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Season, error)
	FindCurrent(ctx context.Context, scope string) (*models.Season, error)
	FindLatestActive(ctx context.Context, leagueID *primitive.ObjectID) (*models.Season, error)
	FindByName(ctx context.Context, name string, leagueID *primitive.ObjectID) (*models.Season, error)
	List(ctx context.Context, leagueID *primitive.ObjectID) ([]*models.Season, error)
	Upsert(ctx context.Context, season *models.Season) (bool, error)
}

type MatchRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Match, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Match, error)
	Find(ctx context.Context, filter database.MatchFilter) ([]*models.Match, error)
}

type PredictionRepository interface {
	Save(ctx context.Context, prediction *models.Prediction, match *models.Match) (bool, error)
	GetByUserAndMatch(ctx context.Context, userID, matchID primitive.ObjectID) (*models.Prediction, error)
	ListByMatch(ctx context.Context, matchID primitive.ObjectID) ([]*models.Prediction, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, filter database.PredictionFilter) ([]*models.Prediction, error)
	UpdatePoints(ctx context.Context, points map[primitive.ObjectID]int) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	GetByJoinCode(ctx context.Context, code string) (*models.Group, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Group, error)
	ListPublic(ctx context.Context) ([]*models.Group, error)
	ListByLeague(ctx context.Context, leagueID primitive.ObjectID) ([]*models.Group, error)
	UpdateSelection(ctx context.Context, group *models.Group) error
}

type MembershipRepository interface {
	Activate(ctx context.Context, membership *models.Membership) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Membership, error)
	Get(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Membership, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Membership, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Membership, error)
	CountActive(ctx context.Context, groupID primitive.ObjectID) (int, error)
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.PredictionStats) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type InvitationRepository interface {
	Save(ctx context.Context, invitation *models.Invitation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invitation, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	Get(ctx context.Context, groupID, inviteeID primitive.ObjectID) (*models.Invitation, error)
	ListByInvitee(ctx context.Context, inviteeID primitive.ObjectID, status models.InvitationStatus) ([]*models.Invitation, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.InvitationStatus, respondedAt *time.Time) (bool, error)
}

// UserRepository interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListTop(ctx context.Context, limit int) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.PredictionStats) error
}

var (
	_ LeagueRepository     = (*database.MongoLeagueRepository)(nil)
	_ TeamRepository       = (*database.MongoTeamRepository)(nil)
	_ SeasonRepository     = (*database.MongoSeasonRepository)(nil)
	_ MatchRepository      = (*database.MongoMatchRepository)(nil)
	_ PredictionRepository = (*database.MongoPredictionRepository)(nil)
	_ GroupRepository      = (*database.MongoGroupRepository)(nil)
	_ MembershipRepository = (*database.MongoMembershipRepository)(nil)
	_ InvitationRepository = (*database.MongoInvitationRepository)(nil)
	_ UserRepository       = (*database.MongoUserRepository)(nil)
)
