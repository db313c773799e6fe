package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"football-app-go/metrics"
	"football-app-go/models"
	"football-app-go/services"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHealth(t *testing.T) {
	rec, env := newTestServer(RouterOptions{}).do(t, http.MethodGet, "/healthz", "", false)
	if rec.Code != http.StatusOK || !env.Success {
		t.Errorf("healthy = %d %+v", rec.Code, env)
	}

	rec, env = newTestServer(RouterOptions{Health: downDB{}}).do(t, http.MethodGet, "/healthz", "", false)
	if rec.Code != http.StatusServiceUnavailable || env.Error == nil || env.Error.Code != "UNAVAILABLE" {
		t.Errorf("database down = %d %+v", rec.Code, env)
	}
}

func TestUnknownRoutes(t *testing.T) {
	s := newTestServer(RouterOptions{})
	for _, path := range []string{"/nope", "/api/groups/not-an-id", "/api/groups/" + strings.Repeat("z", 24)} {
		rec, env := s.do(t, http.MethodGet, path, "", false)
		if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
			t.Errorf("GET %s = %d %+v", path, rec.Code, env)
		}
	}
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	s := newTestServer(RouterOptions{})
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/predictions"},
		{http.MethodPost, "/api/predictions"},
		{http.MethodGet, "/api/groups/mine"},
		{http.MethodGet, "/api/invitations"},
		{http.MethodGet, "/api/profile"},
	} {
		rec, env := s.do(t, route.method, route.path, "", false)
		if rec.Code != http.StatusUnauthorized || env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
			t.Errorf("%s %s = %d %+v", route.method, route.path, rec.Code, env)
		}
	}

	rec, env := s.do(t, http.MethodGet, "/api/auth/me", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("me = %d %+v", rec.Code, env)
	}
	var me models.User
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatal(err)
	}
	if me.Username != "alice" || me.Password != "" {
		t.Errorf("me = %+v", me)
	}
}

func TestSavePredictionStatus(t *testing.T) {
	s := newTestServer(RouterOptions{})
	matchID := primitive.NewObjectID()
	body := fmt.Sprintf(`{"match_id":%q,"home_score":2,"away_score":1}`, matchID.Hex())

	var created bool
	s.predictions.save = func(in models.PredictionInput) (*models.Prediction, bool, error) {
		if in.MatchID != matchID || in.PredictedHome == nil || *in.PredictedHome != 2 {
			t.Errorf("input = %+v", in)
		}
		return &models.Prediction{ID: primitive.NewObjectID(), MatchID: in.MatchID}, created, nil
	}

	created = true
	if rec, _ := s.do(t, http.MethodPost, "/api/predictions", body, true); rec.Code != http.StatusCreated {
		t.Errorf("create = %d, want 201", rec.Code)
	}
	created = false
	if rec, _ := s.do(t, http.MethodPost, "/api/predictions", body, true); rec.Code != http.StatusOK {
		t.Errorf("update = %d, want 200", rec.Code)
	}

	rec, env := s.do(t, http.MethodPost, "/api/predictions", `{"result":"1"}`, true)
	if rec.Code != http.StatusBadRequest || env.Error.Field != "match_id" {
		t.Errorf("missing match = %d %+v", rec.Code, env.Error)
	}
	rec, env = s.do(t, http.MethodPost, "/api/predictions", `{"match_id":`, true)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "BAD_REQUEST" {
		t.Errorf("broken json = %d %+v", rec.Code, env.Error)
	}

	s.predictions.save = func(models.PredictionInput) (*models.Prediction, bool, error) {
		return nil, false, &services.ValidationError{Field: "match", Message: "Prediction deadline has passed for this match."}
	}
	rec, env = s.do(t, http.MethodPost, "/api/predictions", body, true)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "VALIDATION_ERROR" || env.Error.Field != "match" {
		t.Errorf("deadline = %d %+v", rec.Code, env.Error)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Field: "name", Message: "required"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", fmt.Errorf("group %s: %w", "x", services.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", fmt.Errorf("update: %w", services.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"duplicate name", services.ErrDuplicateGroupName, http.StatusConflict, "CONFLICT"},
		{"contract violation", services.ErrContractViolation, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"anything else", errors.New("socket closed"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(RouterOptions{})
			s.groups.err = tt.err
			rec, env := s.do(t, http.MethodGet, "/api/groups/"+primitive.NewObjectID().Hex(), "", false)
			if rec.Code != tt.status || env.Success || env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("got %d %+v, want %d %s", rec.Code, env.Error, tt.status, tt.code)
			}
			if tt.status == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "socket") {
				t.Error("internal error details leaked to the client")
			}
		})
	}
}

func TestGroupDetail(t *testing.T) {
	s := newTestServer(RouterOptions{})
	id := primitive.NewObjectID()
	rec, env := s.do(t, http.MethodGet, "/api/groups/"+id.Hex(), "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var detail GroupDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatal(err)
	}
	if detail.Group.ID != id || detail.Leaderboard == nil {
		t.Errorf("detail = %+v", detail)
	}
}

func TestJoinOutcome(t *testing.T) {
	s := newTestServer(RouterOptions{})
	path := "/api/groups/" + primitive.NewObjectID().Hex() + "/join"

	s.groups.outcome = models.Outcome{OK: true, Message: "You joined Club."}
	rec, env := s.do(t, http.MethodPost, path, "", true)
	if rec.Code != http.StatusOK || !env.Success || env.Message != "You joined Club." {
		t.Errorf("joined = %d %+v", rec.Code, env)
	}

	s.groups.outcome = models.Refused("Group is full")
	rec, env = s.do(t, http.MethodPost, path, "", true)
	if rec.Code != http.StatusConflict || env.Error.Code != "STATE_CONFLICT" || env.Error.Message != "Group is full" {
		t.Errorf("refused = %d %+v", rec.Code, env.Error)
	}
}

func TestPredictionCenterQuery(t *testing.T) {
	s := newTestServer(RouterOptions{})
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	path := fmt.Sprintf("/api/predictions?league=%s,%s&from=2024-08-01&to=2024-08-31&unpredicted=true&limit=5", a.Hex(), b.Hex())
	if rec, _ := s.do(t, http.MethodGet, path, "", true); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	q := s.predictions.center
	if len(q.LeagueIDs) != 2 || q.LeagueIDs[1] != b || !q.OnlyUnpredicted || q.Limit != 5 {
		t.Errorf("query = %+v", q)
	}
	if q.DateFrom == nil || !q.DateFrom.Equal(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)) || q.DateTo == nil {
		t.Errorf("dates = %v, %v", q.DateFrom, q.DateTo)
	}

	for _, tt := range []struct{ query, field string }{
		{"league=zzz", "league"},
		{"season=1", "season"},
		{"from=01/08/2024", "from"},
		{"limit=ten", "limit"},
	} {
		rec, env := s.do(t, http.MethodGet, "/api/predictions?"+tt.query, "", true)
		if rec.Code != http.StatusBadRequest || env.Error.Field != tt.field {
			t.Errorf("?%s = %d %+v", tt.query, rec.Code, env.Error)
		}
	}
}

func TestMyPredictionsStatusFilter(t *testing.T) {
	s := newTestServer(RouterOptions{})
	if rec, _ := s.do(t, http.MethodGet, "/api/predictions/mine?status=finished&status=Live", "", true); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	phases := s.predictions.history.Phases
	if len(phases) != 2 || phases[0] != models.PhaseFinished || phases[1] != models.PhaseInPlay {
		t.Errorf("phases = %v", phases)
	}

	rec, env := s.do(t, http.MethodGet, "/api/predictions/mine?status=halftime", "", true)
	if rec.Code != http.StatusBadRequest || env.Error.Field != "status" {
		t.Errorf("unknown status = %d %+v", rec.Code, env.Error)
	}
}

func TestLoginSetsCookie(t *testing.T) {
	s := newTestServer(RouterOptions{SecureCookie: true, TokenExpiry: time.Hour})
	s.auth.login = func(login, password string) (*models.AuthResponse, error) {
		if password != "secret1" {
			return nil, services.ErrInvalidCredentials
		}
		return &models.AuthResponse{User: s.alice.ToSafeUser(), Token: aliceToken}, nil
	}

	rec, _ := s.do(t, http.MethodPost, "/api/auth/login", `{"login":"alice","password":"secret1"}`, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "auth_token" || cookies[0].Value != aliceToken {
		t.Fatalf("cookies = %v", cookies)
	}
	if !cookies[0].HttpOnly || !cookies[0].Secure || cookies[0].MaxAge != 3600 {
		t.Errorf("cookie = %+v", cookies[0])
	}

	rec, env := s.do(t, http.MethodPost, "/api/auth/login", `{"login":"alice","password":"nope"}`, false)
	if rec.Code != http.StatusUnauthorized || env.Error.Code != "UNAUTHORIZED" {
		t.Errorf("bad password = %d %+v", rec.Code, env.Error)
	}
	rec, env = s.do(t, http.MethodPost, "/api/auth/login", `{"login":"alice"}`, false)
	if rec.Code != http.StatusBadRequest || env.Error.Field != "login" {
		t.Errorf("missing password = %d %+v", rec.Code, env.Error)
	}
}

func TestInvitationByTokenOnlyForInvitee(t *testing.T) {
	s := newTestServer(RouterOptions{})
	s.invitations.byToken["mine"] = &models.Invitation{ID: primitive.NewObjectID(), InviteeID: s.alice.ID}
	s.invitations.byToken["theirs"] = &models.Invitation{ID: primitive.NewObjectID(), InviteeID: primitive.NewObjectID()}

	if rec, _ := s.do(t, http.MethodGet, "/api/invitations/token/mine", "", true); rec.Code != http.StatusOK {
		t.Errorf("own invitation = %d", rec.Code)
	}
	for _, token := range []string{"theirs", "missing"} {
		if rec, _ := s.do(t, http.MethodGet, "/api/invitations/token/"+token, "", true); rec.Code != http.StatusNotFound {
			t.Errorf("%s = %d, want 404", token, rec.Code)
		}
	}
}

func TestRequestMetrics(t *testing.T) {
	collector := metrics.New()
	s := newTestServer(RouterOptions{Metrics: collector, MetricsPath: "/metrics"})

	s.do(t, http.MethodGet, "/healthz", "", false)
	s.do(t, http.MethodGet, "/api/groups/"+primitive.NewObjectID().Hex(), "", false)

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/healthz", "GET", "200")); got != 1 {
		t.Errorf("healthz requests = %v", got)
	}
	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/api/groups/"+idPattern, "GET", "200")); got != 1 {
		t.Errorf("group requests = %v", got)
	}

	rec, _ := s.do(t, http.MethodGet, "/metrics", "", false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "football_http_requests_total") {
		t.Errorf("metrics endpoint = %d", rec.Code)
	}
}

func TestResponsesCarrySecurityHeaders(t *testing.T) {
	rec, _ := newTestServer(RouterOptions{}).do(t, http.MethodGet, "/healthz", "", false)
	for _, header := range []string{"X-Request-ID", "X-Frame-Options", "Content-Security-Policy", "Strict-Transport-Security"} {
		if rec.Header().Get(header) == "" {
			t.Errorf("missing %s", header)
		}
	}
}
