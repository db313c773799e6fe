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

type MongoInvitationRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoInvitationRepository(db *MongoDB) *MongoInvitationRepository {
	collection := db.GetCollection(InvitationsCollection)
	logger := logging.WithPrefix("mongo_invitation_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "invitee_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "invitee_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on invitations collection: %v", err)
	}

	return &MongoInvitationRepository{collection: collection, logger: logger}
}

// Save writes the invitation keyed by (group, invitee), replacing an older
// invitation for the same pair
func (r *MongoInvitationRepository) Save(ctx context.Context, invitation *models.Invitation) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	filter := bson.M{"group_id": invitation.GroupID, "invitee_id": invitation.InviteeID}
	update := bson.M{"$set": bson.M{
		"token":        invitation.Token,
		"inviter_id":   invitation.InviterID,
		"status":       invitation.Status,
		"message":      invitation.Message,
		"created_at":   invitation.CreatedAt,
		"responded_at": invitation.RespondedAt,
	}}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(invitation); err != nil {
		return fmt.Errorf("failed to save invitation: %w", classifyWriteError(err))
	}
	return nil
}

func (r *MongoInvitationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invitation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *MongoInvitationRepository) Get(ctx context.Context, groupID, inviteeID primitive.ObjectID) (*models.Invitation, error) {
	return r.findOne(ctx, bson.M{"group_id": groupID, "invitee_id": inviteeID})
}

func (r *MongoInvitationRepository) ListByInvitee(ctx context.Context, inviteeID primitive.ObjectID, status models.InvitationStatus) ([]*models.Invitation, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	filter := bson.M{"invitee_id": inviteeID, "status": status}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find invitations: %w", err)
	}
	defer cursor.Close(ctx)

	var invitations []*models.Invitation
	if err := cursor.All(ctx, &invitations); err != nil {
		return nil, fmt.Errorf("failed to decode invitations: %w", err)
	}
	return invitations, nil
}

// UpdateStatus transitions the invitation only while it is still pending
func (r *MongoInvitationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.InvitationStatus, respondedAt *time.Time) (bool, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": models.InvitationPending}
	set := bson.M{"status": status}
	if respondedAt != nil {
		set["responded_at"] = *respondedAt
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update invitation %s: %w", id.Hex(), err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *MongoInvitationRepository) findOne(ctx context.Context, filter bson.M) (*models.Invitation, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var invitation models.Invitation
	err := r.collection.FindOne(ctx, filter).Decode(&invitation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return &invitation, nil
}
