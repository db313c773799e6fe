package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"football-app-go/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func newTestAuth() (*AuthService, *fakeUsers, *clockwork.FakeClock) {
	users := newFakeUsers()
	clock := clockwork.NewFakeClockAt(testNow)
	return NewAuthService(users, testSecret, time.Hour, clock), users, clock
}

func TestRegister(t *testing.T) {
	auth, users, _ := newTestAuth()

	resp, err := auth.Register(context.Background(), models.RegisterRequest{
		Username:  " alice ",
		Email:     " Alice@Example.com",
		Password:  "secret1",
		FirstName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.Token == "" || resp.User.Password != "" {
		t.Errorf("response = %+v", resp)
	}
	stored := users.byID[resp.User.ID]
	if stored.Username != "alice" || stored.Email != "alice@example.com" {
		t.Errorf("stored = %+v", stored)
	}
	if stored.Password == "secret1" || !stored.CheckPassword("secret1") {
		t.Error("password not hashed")
	}
}

func TestRegisterValidation(t *testing.T) {
	valid := models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"}

	tests := []struct {
		name  string
		edit  func(*models.RegisterRequest)
		field string
	}{
		{"empty username", func(r *models.RegisterRequest) { r.Username = " " }, "username"},
		{"long username", func(r *models.RegisterRequest) { r.Username = strings.Repeat("a", 151) }, "username"},
		{"at sign in username", func(r *models.RegisterRequest) { r.Username = "a@b" }, "username"},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *models.RegisterRequest) { r.Password = "12345" }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, users, _ := newTestAuth()
			req := valid
			tt.edit(&req)
			_, err := auth.Register(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("err = %v, want validation error on %s", err, tt.field)
			}
			if len(users.byID) != 0 {
				t.Error("invalid user stored")
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	auth, users, _ := newTestAuth()
	users.add("alice")

	_, err := auth.Register(context.Background(), models.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "secret1"})
	if verr, ok := err.(*ValidationError); !ok || verr.Field != "username" {
		t.Errorf("duplicate username err = %v", err)
	}
	_, err = auth.Register(context.Background(), models.RegisterRequest{Username: "alice2", Email: "ALICE@example.com", Password: "secret1"})
	if verr, ok := err.(*ValidationError); !ok || verr.Field != "email" {
		t.Errorf("duplicate email err = %v", err)
	}
}

func TestLogin(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()
	if _, err := auth.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}

	for _, login := range []string{"alice", "alice@example.com", " Alice@Example.com "} {
		resp, err := auth.Login(ctx, login, "secret1")
		if err != nil || resp.User.Username != "alice" {
			t.Errorf("Login(%q) = %v, %v", login, resp, err)
		}
	}

	for _, tt := range []struct{ login, password string }{
		{"alice", "wrong"},
		{"bob", "secret1"},
		{"", "secret1"},
		{"alice", ""},
	} {
		if _, err := auth.Login(ctx, tt.login, tt.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q) err = %v, want invalid credentials", tt.login, tt.password, err)
		}
	}
}

func TestTokenLifecycle(t *testing.T) {
	auth, users, clock := newTestAuth()
	ctx := context.Background()
	user := users.add("alice")

	token, err := auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != user.ID.Hex() || claims.Issuer != tokenIssuer {
		t.Errorf("claims = %+v", claims)
	}

	got, err := auth.GetUserFromToken(ctx, token)
	if err != nil || got.ID != user.ID {
		t.Errorf("GetUserFromToken = %+v, %v", got, err)
	}

	clock.Advance(time.Hour + time.Second)
	if _, err := auth.ValidateToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expired token err = %v, want %v", err, jwt.ErrTokenExpired)
	}
}

func TestValidateTokenRejectsForeignTokens(t *testing.T) {
	auth, users, clock := newTestAuth()
	user := users.add("alice")

	other := NewAuthService(users, "other-secret", time.Hour, clock)
	foreign, _ := other.GenerateToken(user)
	if _, err := auth.ValidateToken(foreign); err == nil {
		t.Error("token signed with another secret was accepted")
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: user.ID.Hex()})
	raw, _ := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := auth.ValidateToken(raw); err == nil {
		t.Error("unsigned token was accepted")
	}

	if _, err := auth.ValidateToken("garbage"); err == nil {
		t.Error("malformed token was accepted")
	}
}

func TestGetUserFromTokenDeletedUser(t *testing.T) {
	auth, _, _ := newTestAuth()
	token, err := auth.GenerateToken(&models.User{ID: primitive.NewObjectID(), Username: "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.GetUserFromToken(context.Background(), token); !isNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}
