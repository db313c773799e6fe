package services

import (
	"context"
	"time"

	"football-app-go/database"
	"football-app-go/logging"
	"football-app-go/models"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reconnectDelay = 5 * time.Second

// MatchChange is the part of a change stream event the watcher needs
type MatchChange struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument *models.Match `bson:"fullDocument"`
}

// IsFinished reports whether the change left the match with a final result
func (c MatchChange) IsFinished() bool {
	if c.FullDocument == nil {
		return false
	}
	_, ok := c.FullDocument.Result()
	return ok
}

// finishedPipeline keeps inserts, replacements and updates that touch the
// status or the goals of a match
func finishedPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or": []bson.M{
				{"operationType": bson.M{"$in": []string{"insert", "replace"}}},
				{
					"operationType": "update",
					"$or": []bson.M{
						{"updateDescription.updatedFields.status": bson.M{"$exists": true}},
						{"updateDescription.updatedFields.home_goals": bson.M{"$exists": true}},
						{"updateDescription.updatedFields.away_goals": bson.M{"$exists": true}},
					},
				},
			},
		}}},
		{{Key: "$match", Value: bson.M{
			"fullDocument.status": bson.M{"$in": models.StatusesInPhase(models.PhaseFinished)},
		}}},
	}
}

// ChangeStreamWatcher watches the matches collection and hands every match
// that reached a final score to the completion handler
type ChangeStreamWatcher struct {
	collection *mongo.Collection
	onFinished func(ctx context.Context, matchID primitive.ObjectID) error
	restart    chan struct{}
	clock      clockwork.Clock
	logger     *logging.Logger
}

// NewChangeStreamWatcher creates a new change stream watcher
func NewChangeStreamWatcher(db *database.MongoDB, onFinished func(ctx context.Context, matchID primitive.ObjectID) error, clock clockwork.Clock) *ChangeStreamWatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ChangeStreamWatcher{
		collection: db.GetCollection(database.MatchesCollection),
		onFinished: onFinished,
		restart:    make(chan struct{}, 1),
		clock:      clock,
		logger:     logging.WithPrefix("ChangeStream"),
	}
}

// ForceRestart forces the change stream to reconnect
func (w *ChangeStreamWatcher) ForceRestart() {
	select {
	case w.restart <- struct{}{}:
		w.logger.Info("Force restart requested")
	default:
	}
}

// Run watches until ctx is cancelled, reconnecting after stream errors
func (w *ChangeStreamWatcher) Run(ctx context.Context) {
	w.logger.Infof("Watching %s for finished matches", database.MatchesCollection)
	for {
		if err := w.watch(ctx); err != nil && ctx.Err() == nil {
			w.logger.Errorf("Change stream error: %v", err)
		}
		if ctx.Err() != nil {
			w.logger.Info("Change stream stopped")
			return
		}

		w.logger.Infof("Reconnecting in %s", reconnectDelay)
		select {
		case <-ctx.Done():
			return
		case <-w.clock.After(reconnectDelay):
		case <-w.restart:
		}
	}
}

func (w *ChangeStreamWatcher) watch(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := w.collection.Watch(streamCtx, finishedPipeline(), opts)
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	go func() {
		select {
		case <-w.restart:
			w.logger.Info("Restarting change stream")
			cancel()
		case <-streamCtx.Done():
		}
	}()

	for stream.Next(streamCtx) {
		var change MatchChange
		if err := stream.Decode(&change); err != nil {
			w.logger.Warnf("Failed to decode change event: %v", err)
			continue
		}
		w.dispatch(ctx, change)
	}
	return stream.Err()
}

func (w *ChangeStreamWatcher) dispatch(ctx context.Context, change MatchChange) {
	if !change.IsFinished() {
		return
	}
	matchID := change.DocumentKey.ID
	w.logger.Debugf("Match %s %s with final score", matchID.Hex(), change.OperationType)
	if err := w.onFinished(ctx, matchID); err != nil {
		w.logger.Errorf("Failed to complete match %s: %v", matchID.Hex(), err)
	}
}
