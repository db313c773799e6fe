package handlers

import (
	"context"
	"net/http"

	"football-app-go/interfaces"
)

// UserHandler serves user listings and profiles
type UserHandler struct {
	users interfaces.UserService
}

func NewUserHandler(users interfaces.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.TopUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profile, err := h.users.Profile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Profile handles GET /api/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Profile(r.Context(), currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// Health handles GET /healthz
func Health(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.TestConnection(r.Context()); err != nil {
				logger.Warnf("Health check failed: %v", err)
				writeError(w, http.StatusServiceUnavailable, APIError{Code: "UNAVAILABLE", Message: "database unreachable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
