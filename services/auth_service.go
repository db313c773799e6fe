package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"football-app-go/database"
	"football-app-go/logging"
	"football-app-go/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	tokenIssuer       = "football-app-go"
	minPasswordLength = 6
	maxUsernameLength = 150
)

// AuthService handles registration, login and token validation
type AuthService struct {
	userRepo    UserRepository
	jwtSecret   []byte
	tokenExpiry time.Duration
	clock       clockwork.Clock
	logger      *logging.Logger
}

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo UserRepository, jwtSecret string, tokenExpiry time.Duration, clock clockwork.Clock) *AuthService {
	if tokenExpiry <= 0 {
		tokenExpiry = 24 * 30 * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthService{
		userRepo:    userRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
		clock:       clock,
		logger:      logging.WithPrefix("Auth"),
	}
}

// Register creates an account and signs the user in
func (a *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case username == "":
		return nil, invalid("username", "This field is required.")
	case len(username) > maxUsernameLength:
		return nil, invalid("username", "Ensure this value has at most %d characters.", maxUsernameLength)
	case strings.Contains(username, "@"):
		return nil, invalid("username", "Username cannot contain '@'.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "Enter a valid email address.")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalid("password", "Password must be at least %d characters long.", minPasswordLength)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := user.HashPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.userRepo.Create(ctx, user); err != nil {
		switch {
		case database.IsDuplicateOn(err, database.UserUsernameIndex):
			return nil, invalid("username", "A user with that username already exists.")
		case database.IsDuplicateOn(err, database.UserEmailIndex):
			return nil, invalid("email", "A user with that email already exists.")
		}
		return nil, err
	}
	a.logger.Infof("Registered user %s", user.Username)
	return a.respond(user)
}

// Login authenticates by username or email and returns a JWT token
func (a *AuthService) Login(ctx context.Context, login, password string) (*models.AuthResponse, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = a.userRepo.GetByEmail(ctx, login)
	} else {
		user, err = a.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return a.respond(user)
}

func (a *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := a.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.AuthResponse{User: user.ToSafeUser(), Token: token}, nil
}

// GenerateToken creates a new JWT token for the user
func (a *AuthService) GenerateToken(user *models.User) (string, error) {
	now := a.clock.Now()
	claims := JWTClaims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return a.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(a.clock.Now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GetUserFromToken validates token and returns the user
func (a *AuthService) GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	user, err := a.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", claims.UserID)
	}
	return user, nil
}
