package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"football-app-go/interfaces"
	"football-app-go/models"
	"football-app-go/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fakes embed the service interfaces so each test only implements the
// methods its routes reach.

type fakeAuth struct {
	interfaces.AuthService
	tokens map[string]*models.User
	login  func(login, password string) (*models.AuthResponse, error)
}

func (f *fakeAuth) GetUserFromToken(_ context.Context, token string) (*models.User, error) {
	if user, ok := f.tokens[token]; ok {
		return user, nil
	}
	return nil, errors.New("invalid token")
}

func (f *fakeAuth) Login(_ context.Context, login, password string) (*models.AuthResponse, error) {
	return f.login(login, password)
}

type fakePredictions struct {
	interfaces.PredictionService
	save    func(in models.PredictionInput) (*models.Prediction, bool, error)
	center  services.CenterQuery
	history services.HistoryQuery
}

func (f *fakePredictions) SavePrediction(_ context.Context, _ primitive.ObjectID, in models.PredictionInput) (*models.Prediction, bool, error) {
	return f.save(in)
}

func (f *fakePredictions) PredictionCenter(_ context.Context, _ primitive.ObjectID, query services.CenterQuery) ([]services.CenterEntry, error) {
	f.center = query
	return []services.CenterEntry{}, nil
}

func (f *fakePredictions) MyPredictions(_ context.Context, _ primitive.ObjectID, query services.HistoryQuery) (*services.History, error) {
	f.history = query
	return &services.History{}, nil
}

type fakeGroups struct {
	interfaces.GroupService
	err     error
	outcome models.Outcome
}

func (f *fakeGroups) GetGroup(_ context.Context, id primitive.ObjectID) (*models.Group, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Group{ID: id, Name: "Club"}, nil
}

func (f *fakeGroups) Leaderboard(context.Context, primitive.ObjectID) ([]models.LeaderboardEntry, error) {
	return []models.LeaderboardEntry{}, nil
}

func (f *fakeGroups) Join(context.Context, primitive.ObjectID, primitive.ObjectID) (models.Outcome, error) {
	return f.outcome, f.err
}

type fakeInvitations struct {
	interfaces.InvitationService
	byToken map[string]*models.Invitation
}

func (f *fakeInvitations) GetByToken(_ context.Context, token string) (*models.Invitation, error) {
	if inv, ok := f.byToken[token]; ok {
		return inv, nil
	}
	return nil, services.ErrNotFound
}

type downDB struct{}

func (downDB) TestConnection(context.Context) error { return errors.New("connection refused") }

// envelope mirrors APIResponse with the payload left raw
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

const aliceToken = "alice-token"

type testServer struct {
	handler     http.Handler
	alice       *models.User
	auth        *fakeAuth
	predictions *fakePredictions
	groups      *fakeGroups
	invitations *fakeInvitations
}

func newTestServer(opts RouterOptions) *testServer {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice", Password: "hash"}
	s := &testServer{
		alice:       alice,
		auth:        &fakeAuth{tokens: map[string]*models.User{aliceToken: alice}},
		predictions: &fakePredictions{},
		groups:      &fakeGroups{},
		invitations: &fakeInvitations{byToken: map[string]*models.Invitation{}},
	}
	s.handler = NewRouter(Services{
		Auth:        s.auth,
		Predictions: s.predictions,
		Groups:      s.groups,
		Invitations: s.invitations,
	}, opts)
	return s
}

// do sends a request, authenticated as alice when token is set
func (s *testServer) do(t *testing.T, method, path, body string, token bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token {
		req.Header.Set("Authorization", "Bearer "+aliceToken)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}
