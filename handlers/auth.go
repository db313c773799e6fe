package handlers

import (
	"net/http"
	"time"

	"football-app-go/interfaces"
	"football-app-go/models"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	authService  interfaces.AuthService
	secureCookie bool
	tokenExpiry  time.Duration
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService interfaces.AuthService, secureCookie bool, tokenExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
		tokenExpiry:  tokenExpiry,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	authResponse, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setAuthCookie(w, authResponse.Token)
	logger.Infof("User %s registered", authResponse.User.Username)
	writeJSON(w, http.StatusCreated, authResponse)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Login == "" || req.Password == "" {
		badRequest(w, "login", "Login and password are required")
		return
	}

	authResponse, err := h.authService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		logger.Warnf("Login failed for %s: %v", req.Login, err)
		writeServiceError(w, r, err)
		return
	}

	h.setAuthCookie(w, authResponse.Token)
	logger.Infof("User %s logged in", authResponse.User.Username)
	writeJSON(w, http.StatusOK, authResponse)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, nil)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, user.ToSafeUser())
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
