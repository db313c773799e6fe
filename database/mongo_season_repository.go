package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"football-app-go/logging"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Index names on the seasons collection
const (
	SeasonCurrentIndex = "one_current_per_scope"
	SeasonNameIndex    = "name_per_scope"
)

type MongoSeasonRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoSeasonRepository(db *MongoDB) *MongoSeasonRepository {
	collection := db.GetCollection(SeasonsCollection)
	logger := logging.WithPrefix("mongo_season_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "scope", Value: 1}},
			Options: options.Index().SetName(SeasonCurrentIndex).SetUnique(true).SetPartialFilterExpression(bson.M{"is_current": true}),
		},
		{
			Keys:    bson.D{{Key: "scope", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName(SeasonNameIndex).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "start_year", Value: -1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on seasons collection: %v", err)
	}

	return &MongoSeasonRepository{
		client:     db.Client(),
		collection: collection,
		logger:     logger,
	}
}

func (r *MongoSeasonRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Season, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

// FindCurrent returns the season flagged current in the scope, or nil
func (r *MongoSeasonRepository) FindCurrent(ctx context.Context, scope string) (*models.Season, error) {
	return r.findOne(ctx, bson.M{"scope": scope, "is_current": true}, nil)
}

// FindLatestActive returns the active season with the highest start year
// within the league scope. A nil league searches every season.
func (r *MongoSeasonRepository) FindLatestActive(ctx context.Context, leagueID *primitive.ObjectID) (*models.Season, error) {
	filter := latestActiveFilter(leagueID)
	opts := options.FindOne().SetSort(bson.D{{Key: "start_year", Value: -1}})
	return r.findOne(ctx, filter, opts)
}

func latestActiveFilter(leagueID *primitive.ObjectID) bson.M {
	if leagueID == nil {
		return bson.M{"is_active": true}
	}
	return bson.M{"is_active": true, "scope": models.SeasonScope(leagueID)}
}

func (r *MongoSeasonRepository) FindByName(ctx context.Context, name string, leagueID *primitive.ObjectID) (*models.Season, error) {
	return r.findOne(ctx, bson.M{"scope": models.SeasonScope(leagueID), "name": name}, nil)
}

// List returns the seasons of a scope, newest first
func (r *MongoSeasonRepository) List(ctx context.Context, leagueID *primitive.ObjectID) ([]*models.Season, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_year", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"scope": models.SeasonScope(leagueID)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find seasons: %w", err)
	}
	defer cursor.Close(ctx)

	var seasons []*models.Season
	if err := cursor.All(ctx, &seasons); err != nil {
		return nil, fmt.Errorf("failed to decode seasons: %w", err)
	}
	return seasons, nil
}

// Upsert creates or updates a season keyed by scope and name. The current flag is
// only ever changed through SetCurrent.
func (r *MongoSeasonRepository) Upsert(ctx context.Context, season *models.Season) (bool, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	now := time.Now()
	season.Scope = season.ScopeKey()
	if season.Name == "" {
		season.Name = models.SeasonName(season.StartYear, season.EndYear)
	}

	filter := bson.M{"scope": season.Scope, "name": season.Name}
	set := bson.M{
		"start_year": season.StartYear,
		"end_year":   season.EndYear,
		"start_date": season.StartDate,
		"end_date":   season.EndDate,
		"is_active":  season.IsActive,
		"updated_at": now,
	}
	if season.LeagueID != nil {
		set["league_id"] = *season.LeagueID
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"is_current": false, "created_at": now},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert season %s: %w", season.Name, err)
	}
	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		season.ID = id
		return true, nil
	}
	return false, nil
}

// SetCurrent flags the season as current and clears the flag on every other
// season of its scope. Both writes run in one transaction when the deployment
// supports it; the partial unique index rejects a second current season either way.
func (r *MongoSeasonRepository) SetCurrent(ctx context.Context, seasonID primitive.ObjectID) error {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	season, err := r.findOne(ctx, bson.M{"_id": seasonID}, nil)
	if err != nil {
		return err
	}
	if season == nil {
		return fmt.Errorf("season %s: %w", seasonID.Hex(), mongo.ErrNoDocuments)
	}
	scope := season.ScopeKey()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, r.swapCurrent(sc, scope, seasonID)
	})
	if err != nil && transactionsUnsupported(err) {
		r.logger.Warnf("Transactions unavailable, setting current season %s without one", season.Name)
		err = r.swapCurrent(ctx, scope, seasonID)
	}
	if err != nil {
		return fmt.Errorf("failed to set current season %s: %w", season.Name, err)
	}

	r.logger.Infof("Season %s is now current for scope %s", season.Name, scope)
	return nil
}

func (r *MongoSeasonRepository) swapCurrent(ctx context.Context, scope string, seasonID primitive.ObjectID) error {
	now := time.Now()
	others := bson.M{"scope": scope, "is_current": true, "_id": bson.M{"$ne": seasonID}}
	if _, err := r.collection.UpdateMany(ctx, others, bson.M{"$set": bson.M{"is_current": false, "updated_at": now}}); err != nil {
		return err
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": seasonID},
		bson.M{"$set": bson.M{"is_current": true, "scope": scope, "updated_at": now}},
	)
	return classifyWriteError(err, SeasonCurrentIndex)
}

func (r *MongoSeasonRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.Season, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	if opts == nil {
		opts = options.FindOne()
	}

	var season models.Season
	err := r.collection.FindOne(ctx, filter, opts).Decode(&season)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find season: %w", err)
	}
	return &season, nil
}

// transactionsUnsupported reports whether the deployment is a standalone server
func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 {
		return true
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
