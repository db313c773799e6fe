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

type MongoMembershipRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoMembershipRepository(db *MongoDB) *MongoMembershipRepository {
	collection := db.GetCollection(MembershipsCollection)
	logger := logging.WithPrefix("mongo_membership_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "is_active", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on memberships collection: %v", err)
	}

	return &MongoMembershipRepository{collection: collection, logger: logger}
}

// Activate creates the (user, group) membership or reactivates a previous one.
// Stats start at zero only when the document is new.
func (r *MongoMembershipRepository) Activate(ctx context.Context, membership *models.Membership) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	filter := bson.M{"user_id": membership.UserID, "group_id": membership.GroupID}
	update := bson.M{
		"$set": bson.M{
			"role":      membership.Role,
			"is_active": true,
			"joined_at": membership.JoinedAt,
		},
		"$setOnInsert": bson.M{
			"total_predictions":   0,
			"correct_predictions": 0,
			"exact_predictions":   0,
			"total_points":        0,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(membership); err != nil {
		return fmt.Errorf("failed to activate membership: %w", err)
	}
	return nil
}

func (r *MongoMembershipRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Membership, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// Get returns the membership of the user in the group, active or not
func (r *MongoMembershipRepository) Get(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Membership, error) {
	return r.findOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
}

func (r *MongoMembershipRepository) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Membership, error) {
	return r.find(ctx, bson.M{"group_id": groupID, "is_active": true})
}

func (r *MongoMembershipRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Membership, error) {
	return r.find(ctx, bson.M{"user_id": userID, "is_active": true})
}

func (r *MongoMembershipRepository) CountActive(ctx context.Context, groupID primitive.ObjectID) (int, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"group_id": groupID, "is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count members of group %s: %w", groupID.Hex(), err)
	}
	return int(n), nil
}

func (r *MongoMembershipRepository) UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.PredictionStats) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": stats})
	if err != nil {
		return fmt.Errorf("failed to update membership stats %s: %w", id.Hex(), err)
	}
	return nil
}

func (r *MongoMembershipRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate membership %s: %w", id.Hex(), err)
	}
	return nil
}

func (r *MongoMembershipRepository) findOne(ctx context.Context, filter bson.M) (*models.Membership, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var membership models.Membership
	err := r.collection.FindOne(ctx, filter).Decode(&membership)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return &membership, nil
}

func (r *MongoMembershipRepository) find(ctx context.Context, filter bson.M) ([]*models.Membership, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find memberships: %w", err)
	}
	defer cursor.Close(ctx)

	var memberships []*models.Membership
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, fmt.Errorf("failed to decode memberships: %w", err)
	}
	return memberships, nil
}
