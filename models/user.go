package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// User represents a registered player and their global prediction profile
type User struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Username       string              `json:"username" bson:"username"`
	Email          string              `json:"email" bson:"email"`
	Password       string              `json:"-" bson:"password"` // Never serialize password in JSON
	FirstName      string              `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName       string              `json:"last_name,omitempty" bson:"last_name,omitempty"`
	FavoriteTeamID *primitive.ObjectID `json:"favorite_team_id,omitempty" bson:"favorite_team_id,omitempty"`
	Bio            string              `json:"bio,omitempty" bson:"bio,omitempty"`
	Stats          PredictionStats     `json:"stats" bson:"stats"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

// RegisterRequest represents sign-up data
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest represents login data; Login may be a username or an email
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// HashPassword hashes the user's password using bcrypt
func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies the provided password against the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName falls back to the username when no name is set
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}

// ToSafeUser returns a copy of the user without the password hash
func (u *User) ToSafeUser() User {
	safe := *u
	safe.Password = ""
	return safe
}
