package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersExposed(t *testing.T) {
	c := New()
	c.PredictionsSaved.WithLabelValues("created").Add(2)
	c.MatchesScored.Inc()
	c.ObserveRequest("/api/v1/groups", "GET", 200, 15*time.Millisecond)

	if got := testutil.ToFloat64(c.PredictionsSaved.WithLabelValues("created")); got != 2 {
		t.Errorf("predictions created = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{"football_matches_scored_total 1", `football_http_requests_total{code="200",method="GET",route="/api/v1/groups"} 1`} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistryGathersUnlabelledCounters(t *testing.T) {
	c := New()
	c.GroupsCreated.Inc()

	n, err := testutil.GatherAndCount(c.Registry(), "football_groups_created_total", "football_predictions_scored_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("series = %d, want 2", n)
	}
}
