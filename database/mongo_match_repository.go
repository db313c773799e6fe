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

// MatchFilter narrows a match query. Zero-valued fields do not constrain.
type MatchFilter struct {
	IDs        []primitive.ObjectID
	LeagueIDs  []primitive.ObjectID
	SeasonID   *primitive.ObjectID
	TeamID     *primitive.ObjectID
	Statuses   []models.MatchStatus
	Rounds     []string
	From       *time.Time // inclusive
	To         *time.Time // exclusive
	Descending bool
	Limit      int64
}

// OnDay restricts the filter to kickoffs on the UTC calendar day
func (f MatchFilter) OnDay(day time.Time) MatchFilter {
	start, end := dayBounds(day)
	f.From, f.To = &start, &end
	return f
}

// BSON renders the filter as a query document
func (f MatchFilter) BSON() bson.M {
	query := bson.M{}
	if f.IDs != nil {
		query["_id"] = bson.M{"$in": f.IDs}
	}
	if f.LeagueIDs != nil {
		query["league_id"] = bson.M{"$in": f.LeagueIDs}
	}
	if f.SeasonID != nil {
		query["season_id"] = *f.SeasonID
	}
	if f.TeamID != nil {
		query["$or"] = bson.A{
			bson.M{"home_team_id": *f.TeamID},
			bson.M{"away_team_id": *f.TeamID},
		}
	}
	if f.Statuses != nil {
		query["status"] = bson.M{"$in": f.Statuses}
	}
	if f.Rounds != nil {
		query["round"] = bson.M{"$in": f.Rounds}
	}
	if f.From != nil || f.To != nil {
		date := bson.M{}
		if f.From != nil {
			date["$gte"] = *f.From
		}
		if f.To != nil {
			date["$lt"] = *f.To
		}
		query["date"] = date
	}
	return query
}

// Matches applies the filter to an in-memory match
func (f MatchFilter) Matches(m *models.Match) bool {
	if f.IDs != nil && !containsID(f.IDs, m.ID) {
		return false
	}
	if f.LeagueIDs != nil && !containsID(f.LeagueIDs, m.LeagueID) {
		return false
	}
	if f.SeasonID != nil && (m.SeasonID == nil || *m.SeasonID != *f.SeasonID) {
		return false
	}
	if f.TeamID != nil && !m.Involves(*f.TeamID) {
		return false
	}
	if f.Statuses != nil {
		found := false
		for _, s := range f.Statuses {
			if s == m.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Rounds != nil {
		found := false
		for _, r := range f.Rounds {
			if r == m.Round {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && m.Kickoff.Before(*f.From) {
		return false
	}
	if f.To != nil && !m.Kickoff.Before(*f.To) {
		return false
	}
	return true
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type MongoMatchRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoMatchRepository(db *MongoDB) *MongoMatchRepository {
	collection := db.GetCollection(MatchesCollection)
	logger := logging.WithPrefix("mongo_match_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "league_id", Value: 1}, {Key: "season_id", Value: 1}, {Key: "round", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "home_team_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "away_team_id", Value: 1}, {Key: "date", Value: -1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on matches collection: %v", err)
	}

	return &MongoMatchRepository{collection: collection, logger: logger}
}

func (r *MongoMatchRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Match, error) {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	var match models.Match
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&match)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find match %s: %w", id.Hex(), err)
	}
	return &match, nil
}

func (r *MongoMatchRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Match, error) {
	return r.Find(ctx, MatchFilter{IDs: objectIDsOrEmpty(ids)})
}

// Find returns matches ordered by kickoff
func (r *MongoMatchRepository) Find(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	ctx, cancel := ContextWithTimeout(ctx, MediumTimeout)
	defer cancel()

	direction := 1
	if filter.Descending {
		direction = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: direction}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, filter.BSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find matches: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []*models.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}
	return matches, nil
}

// Upsert replaces a match document by id, used by seeding and fixture imports
func (r *MongoMatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	ctx, cancel := ContextWithTimeout(ctx, ShortTimeout)
	defer cancel()

	now := time.Now()
	if match.ID.IsZero() {
		match.ID = primitive.NewObjectID()
		match.CreatedAt = now
	}
	match.UpdatedAt = now

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": match.ID}, match, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.ID.Hex(), err)
	}
	return nil
}
