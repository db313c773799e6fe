package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"football-app-go/logging"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Unique index names on the users collection
const (
	UserEmailIndex    = "email_unique"
	UserUsernameIndex = "username_unique"
)

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(db *MongoDB) *MongoUserRepository {
	r := &MongoUserRepository{
		collection: db.GetCollection(UsersCollection),
		logger:     logging.WithPrefix("mongo_user_repo"),
	}
	if err := r.EnsureIndexes(); err != nil {
		r.logger.Errorf("Failed to create indexes on users collection: %v", err)
	}
	return r
}

// GetByEmail retrieves a user by their email address (case-insensitive)
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	pattern := "^" + regexp.QuoteMeta(strings.ToLower(email)) + "$"
	return r.findOne(ctx, bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDsOrEmpty(ids)}}, options.Find())
}

// ListTop returns users ordered by profile points, best first
func (r *MongoUserRepository) ListTop(ctx context.Context, limit int) ([]*models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "stats.total_points", Value: -1}, {Key: "username", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.User, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Create inserts a new user. Duplicate email or username returns a *DuplicateKeyError.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return classifyWriteError(err, UserEmailIndex, UserUsernameIndex)
	}
	return nil
}

// UpdateStats stores the unscoped profile statistics
func (r *MongoUserRepository) UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.PredictionStats) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"stats": stats, "updated_at": time.Now()}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to update stats of user %s: %w", id.Hex(), err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes for the users collection
func (r *MongoUserRepository) EnsureIndexes() error {
	ctx, cancel := WithShortTimeout()
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(UserEmailIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(UserUsernameIndex).SetUnique(true),
		},
	})
	return err
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
