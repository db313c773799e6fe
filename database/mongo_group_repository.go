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

// Unique index names on the groups collection
const (
	GroupNameIndex     = "group_name_unique"
	GroupJoinCodeIndex = "join_code_unique"
)

type MongoGroupRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoGroupRepository(db *MongoDB) *MongoGroupRepository {
	collection := db.GetCollection(GroupsCollection)
	logger := logging.WithPrefix("mongo_group_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName(GroupNameIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "join_code", Value: 1}},
			Options: options.Index().SetName(GroupJoinCodeIndex).SetUnique(true),
		},
		{Keys: bson.D{{Key: "league_ids", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on groups collection: %v", err)
	}

	return &MongoGroupRepository{collection: collection, logger: logger}
}

// Create inserts the group. A clash on name or join code returns a
// *DuplicateKeyError naming the index.
func (r *MongoGroupRepository) Create(ctx context.Context, group *models.Group) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		return classifyWriteError(err, GroupJoinCodeIndex, GroupNameIndex)
	}
	return nil
}

func (r *MongoGroupRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoGroupRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *MongoGroupRepository) GetByJoinCode(ctx context.Context, code string) (*models.Group, error) {
	return r.findOne(ctx, bson.M{"join_code": code, "is_active": true})
}

// ListPublic returns active public groups, newest first
func (r *MongoGroupRepository) ListPublic(ctx context.Context) ([]*models.Group, error) {
	return r.find(ctx, bson.M{"is_private": false, "is_active": true})
}

func (r *MongoGroupRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Group, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDsOrEmpty(ids)}, "is_active": true})
}

// ListByLeague returns active groups whose league set contains the league
func (r *MongoGroupRepository) ListByLeague(ctx context.Context, leagueID primitive.ObjectID) ([]*models.Group, error) {
	return r.find(ctx, bson.M{"league_ids": leagueID, "is_active": true})
}

// UpdateSelection rewrites the selection and the derived league set
func (r *MongoGroupRepository) UpdateSelection(ctx context.Context, group *models.Group) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	group.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"league_ids":        group.LeagueIDs,
		"direct_league_ids": group.DirectLeagues,
		"selection_type":    group.SelectionType,
		"rounds":            group.Rounds,
		"dates":             group.Dates,
		"updated_at":        group.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": group.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update selection of group %s: %w", group.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("group %s: %w", group.ID.Hex(), mongo.ErrNoDocuments)
	}
	return nil
}

func (r *MongoGroupRepository) findOne(ctx context.Context, filter bson.M) (*models.Group, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var group models.Group
	err := r.collection.FindOne(ctx, filter).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return &group, nil
}

func (r *MongoGroupRepository) find(ctx context.Context, filter bson.M) ([]*models.Group, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []*models.Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}
	return groups, nil
}
