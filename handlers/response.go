package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"football-app-go/logging"
	"football-app-go/middleware"
	"football-app-go/models"
	"football-app-go/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var logger = logging.WithPrefix("Handlers")

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: status < 400, Data: data}); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, apiErr APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: false, Error: &apiErr}); err != nil {
		logger.Errorf("Failed to encode error response: %v", err)
	}
}

func badRequest(w http.ResponseWriter, field, message string) {
	writeError(w, http.StatusBadRequest, APIError{Code: "BAD_REQUEST", Message: message, Field: field})
}

// Unauthorized is the 401 response used by the auth middleware
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusUnauthorized, APIError{Code: "UNAUTHORIZED", Message: "Authentication required"})
}

// writeOutcome answers a refusable request: 200 with the message when it
// succeeded, 409 otherwise
func writeOutcome(w http.ResponseWriter, outcome models.Outcome, data interface{}) {
	if !outcome.OK {
		writeError(w, http.StatusConflict, APIError{Code: "STATE_CONFLICT", Message: outcome.Message})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: true, Message: outcome.Message, Data: data}); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

// writeServiceError maps service errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, APIError{Code: "VALIDATION_ERROR", Message: validation.Message, Field: validation.Field})
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, APIError{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, APIError{Code: "FORBIDDEN", Message: "You do not have permission to do this"})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, APIError{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, services.ErrDuplicateGroupName):
		writeError(w, http.StatusConflict, APIError{Code: "CONFLICT", Message: "A group with this name already exists.", Field: "name"})
	default:
		logger.With("request_id", middleware.GetRequestID(r.Context())).Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, APIError{Code: "INTERNAL_ERROR", Message: "Internal server error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "", "Invalid JSON body")
		return false
	}
	return true
}

// currentUser returns the authenticated user; routes using it sit behind RequireAuth
func currentUser(r *http.Request) *models.User {
	return middleware.GetUserFromContext(r)
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(muxVar(r, name))
	if err != nil {
		badRequest(w, name, "Invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// queryID parses an optional object id parameter
func queryID(r *http.Request, name string) (*primitive.ObjectID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// queryIDs parses a repeated or comma separated id parameter
func queryIDs(r *http.Request, name string) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, value := range r.URL.Query()[name] {
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
