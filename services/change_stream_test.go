package services

import (
	"context"
	"testing"

	"football-app-go/logging"
	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func decodeChange(t *testing.T, doc bson.M) MatchChange {
	t.Helper()
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var change MatchChange
	if err := bson.Unmarshal(raw, &change); err != nil {
		t.Fatal(err)
	}
	return change
}

func TestDispatchOnlyFinishedMatches(t *testing.T) {
	id := primitive.NewObjectID()
	var handled []primitive.ObjectID
	w := &ChangeStreamWatcher{
		onFinished: func(_ context.Context, matchID primitive.ObjectID) error {
			handled = append(handled, matchID)
			return nil
		},
		logger: logging.WithPrefix("ChangeStream"),
	}

	tests := []struct {
		name string
		doc  bson.M
		want bool
	}{
		{
			name: "full time with score",
			doc: bson.M{
				"operationType": "update",
				"documentKey":   bson.M{"_id": id},
				"fullDocument":  bson.M{"_id": id, "status": "FT", "home_goals": 2, "away_goals": 0},
			},
			want: true,
		},
		{
			name: "full time without score",
			doc: bson.M{
				"operationType": "update",
				"documentKey":   bson.M{"_id": id},
				"fullDocument":  bson.M{"_id": id, "status": "FT"},
			},
		},
		{
			name: "in play",
			doc: bson.M{
				"operationType": "update",
				"documentKey":   bson.M{"_id": id},
				"fullDocument":  bson.M{"_id": id, "status": "2H", "home_goals": 1, "away_goals": 0},
			},
		},
		{
			name: "deleted",
			doc: bson.M{
				"operationType": "delete",
				"documentKey":   bson.M{"_id": id},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handled = nil
			change := decodeChange(t, tt.doc)
			if change.IsFinished() != tt.want {
				t.Errorf("IsFinished() = %v, want %v", change.IsFinished(), tt.want)
			}
			w.dispatch(context.Background(), change)
			if got := len(handled) == 1 && handled[0] == id; got != tt.want {
				t.Errorf("handled = %v, want dispatched %v", handled, tt.want)
			}
		})
	}
}

func TestFinishedPipelineFiltersOnFinalStatuses(t *testing.T) {
	pipeline := finishedPipeline()
	if len(pipeline) != 2 {
		t.Fatalf("pipeline has %d stages", len(pipeline))
	}
	match := pipeline[1][0].Value.(bson.M)
	statuses := match["fullDocument.status"].(bson.M)["$in"].([]models.MatchStatus)
	if len(statuses) != len(models.StatusesInPhase(models.PhaseFinished)) {
		t.Errorf("statuses = %v", statuses)
	}
}
