package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Common timeout durations for database operations
const (
	// ShortTimeout for single document reads and writes
	ShortTimeout = 5 * time.Second

	// MediumTimeout for queries returning many documents
	MediumTimeout = 10 * time.Second

	// LongTimeout for bulk writes and seeding
	LongTimeout = 30 * time.Second
)

// Collection names
const (
	LeaguesCollection     = "leagues"
	TeamsCollection       = "teams"
	SeasonsCollection     = "seasons"
	MatchesCollection     = "matches"
	PredictionsCollection = "predictions"
	GroupsCollection      = "groups"
	MembershipsCollection = "memberships"
	InvitationsCollection = "invitations"
	UsersCollection       = "users"
)

var (
	// ErrDuplicateKey is returned when a unique index rejects a write
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrPredictionLocked is returned when a prediction write targets a match that is live or finished
	ErrPredictionLocked = errors.New("match no longer accepts predictions")
)

// DuplicateKeyError names the unique index that rejected a write
type DuplicateKeyError struct {
	Index string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key on " + e.Index + ": " + e.Err.Error()
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// IsDuplicateOn reports whether err is a duplicate key error on the named index
func IsDuplicateOn(err error, index string) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup) && dup.Index == index
}

// classifyWriteError turns a driver duplicate key error into a DuplicateKeyError
func classifyWriteError(err error, indexes ...string) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	for _, index := range indexes {
		if strings.Contains(err.Error(), index) {
			return &DuplicateKeyError{Index: index, Err: err}
		}
	}
	return &DuplicateKeyError{Index: "unknown", Err: err}
}

// ContextWithTimeout derives a bounded context from the caller's context
func ContextWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// WithShortTimeout creates a background context with ShortTimeout
func WithShortTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ShortTimeout)
}

// WithLongTimeout creates a background context with LongTimeout
func WithLongTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), LongTimeout)
}

func objectIDsOrEmpty(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
