package database

import (
	"context"
	"fmt"
	"time"

	"football-app-go/logging"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoLeagueRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoLeagueRepository(db *MongoDB) *MongoLeagueRepository {
	collection := db.GetCollection(LeaguesCollection)
	logger := logging.WithPrefix("mongo_league_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "country", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on leagues collection: %v", err)
	}

	return &MongoLeagueRepository{collection: collection, logger: logger}
}

// GetByID returns nil when the league does not exist
func (r *MongoLeagueRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.League, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var league models.League
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&league)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find league %s: %w", id.Hex(), err)
	}
	return &league, nil
}

func (r *MongoLeagueRepository) GetByName(ctx context.Context, name string) (*models.League, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var league models.League
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&league)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find league %q: %w", name, err)
	}
	return &league, nil
}

// ListActive returns active leagues ordered by country then name
func (r *MongoLeagueRepository) ListActive(ctx context.Context) ([]*models.League, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "country", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find leagues: %w", err)
	}
	defer cursor.Close(ctx)

	var leagues []*models.League
	if err := cursor.All(ctx, &leagues); err != nil {
		return nil, fmt.Errorf("failed to decode leagues: %w", err)
	}
	return leagues, nil
}

// Upsert inserts or updates a league keyed by name and country
func (r *MongoLeagueRepository) Upsert(ctx context.Context, league *models.League) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	now := time.Now()
	filter := bson.M{"name": league.Name, "country": league.Country}
	update := bson.M{
		"$set": bson.M{
			"level":      league.Level,
			"type":       league.Type,
			"logo_url":   league.LogoURL,
			"is_active":  league.IsActive,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(league); err != nil {
		return fmt.Errorf("failed to upsert league %q: %w", league.Name, err)
	}
	return nil
}
