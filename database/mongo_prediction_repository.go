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

// PredictionFilter narrows a user's predictions. Nil slices do not constrain.
type PredictionFilter struct {
	LeagueIDs []primitive.ObjectID
	MatchIDs  []primitive.ObjectID
}

func (f PredictionFilter) BSON(userID primitive.ObjectID) bson.M {
	query := bson.M{"user_id": userID}
	if f.LeagueIDs != nil {
		query["league_id"] = bson.M{"$in": f.LeagueIDs}
	}
	if f.MatchIDs != nil {
		query["match_id"] = bson.M{"$in": f.MatchIDs}
	}
	return query
}

// Matches applies the filter to an in-memory prediction
func (f PredictionFilter) Matches(p *models.Prediction) bool {
	if f.LeagueIDs != nil && !containsID(f.LeagueIDs, p.LeagueID) {
		return false
	}
	if f.MatchIDs != nil && !containsID(f.MatchIDs, p.MatchID) {
		return false
	}
	return true
}

// CheckWritable refuses prediction writes for matches that are live or finished
func CheckWritable(match *models.Match) error {
	switch match.Phase() {
	case models.PhaseInPlay, models.PhaseFinished:
		return fmt.Errorf("match %s is %s: %w", match.ID.Hex(), match.Phase(), ErrPredictionLocked)
	}
	return nil
}

type MongoPredictionRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoPredictionRepository(db *MongoDB) *MongoPredictionRepository {
	collection := db.GetCollection(PredictionsCollection)
	logger := logging.WithPrefix("mongo_prediction_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "match_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "match_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "league_id", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on predictions collection: %v", err)
	}

	return &MongoPredictionRepository{collection: collection, logger: logger}
}

// Save upserts the prediction on (user, match) in a single write and reports
// whether a new document was created. Points are never touched here.
func (r *MongoPredictionRepository) Save(ctx context.Context, prediction *models.Prediction, match *models.Match) (bool, error) {
	if err := CheckWritable(match); err != nil {
		return false, err
	}

	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	now := time.Now()
	filter := bson.M{"user_id": prediction.UserID, "match_id": prediction.MatchID}
	update := bson.M{
		"$set": bson.M{
			"league_id":        match.LeagueID,
			"predicted_result": prediction.PredictedResult,
			"predicted_home":   prediction.PredictedHome,
			"predicted_away":   prediction.PredictedAway,
			"confidence":       prediction.Confidence,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{
			"points_earned": 0,
			"created_at":    now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to save prediction for match %s: %w", match.ID.Hex(), classifyWriteError(err))
	}

	prediction.LeagueID = match.LeagueID
	prediction.UpdatedAt = now
	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		prediction.ID = id
		prediction.CreatedAt = now
		return true, nil
	}
	return false, nil
}

func (r *MongoPredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID primitive.ObjectID) (*models.Prediction, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var prediction models.Prediction
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "match_id": matchID}).Decode(&prediction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find prediction: %w", err)
	}
	return &prediction, nil
}

func (r *MongoPredictionRepository) ListByMatch(ctx context.Context, matchID primitive.ObjectID) ([]*models.Prediction, error) {
	return r.find(ctx, bson.M{"match_id": matchID})
}

func (r *MongoPredictionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, filter PredictionFilter) ([]*models.Prediction, error) {
	return r.find(ctx, filter.BSON(userID))
}

// UpdatePoints writes points_earned for many predictions in one bulk write
func (r *MongoPredictionRepository) UpdatePoints(ctx context.Context, points map[primitive.ObjectID]int) error {
	if len(points) == 0 {
		return nil
	}

	ctx, cancel := ContextWithTimeout(ctx, LongTimeout)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(points))
	for id, value := range points {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"points_earned": value}}))
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to update prediction points: %w", err)
	}
	r.logger.Debugf("Updated points on %d predictions (%d modified)", result.MatchedCount, result.ModifiedCount)
	return nil
}

func (r *MongoPredictionRepository) find(ctx context.Context, filter bson.M) ([]*models.Prediction, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find predictions: %w", err)
	}
	defer cursor.Close(ctx)

	var predictions []*models.Prediction
	if err := cursor.All(ctx, &predictions); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return predictions, nil
}
