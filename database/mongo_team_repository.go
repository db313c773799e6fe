package database

import (
	"context"
	"fmt"

	"football-app-go/logging"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoTeamRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoTeamRepository(db *MongoDB) *MongoTeamRepository {
	collection := db.GetCollection(TeamsCollection)
	logger := logging.WithPrefix("mongo_team_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "league_ids", Value: 1}},
	}); err != nil {
		logger.Errorf("Failed to create index on teams collection: %v", err)
	}

	return &MongoTeamRepository{collection: collection, logger: logger}
}

func (r *MongoTeamRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var team models.Team
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find team %s: %w", id.Hex(), err)
	}
	return &team, nil
}

// ListByLeague returns the active teams registered in a league, ordered by name
func (r *MongoTeamRepository) ListByLeague(ctx context.Context, leagueID primitive.ObjectID) ([]*models.Team, error) {
	return r.find(ctx, bson.M{"league_ids": leagueID, "is_active": true})
}

func (r *MongoTeamRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Team, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDsOrEmpty(ids)}})
}

func (r *MongoTeamRepository) find(ctx context.Context, filter bson.M) ([]*models.Team, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find teams: %w", err)
	}
	defer cursor.Close(ctx)

	var teams []*models.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}
	return teams, nil
}
