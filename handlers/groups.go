package handlers

import (
	"net/http"
	"strings"

	"football-app-go/interfaces"
	"football-app-go/models"
	"football-app-go/services"
)

// GroupHandler serves groups, memberships and invitations
type GroupHandler struct {
	groups      interfaces.GroupService
	invitations interfaces.InvitationService
}

func NewGroupHandler(groups interfaces.GroupService, invitations interfaces.InvitationService) *GroupHandler {
	return &GroupHandler{groups: groups, invitations: invitations}
}

// GroupDetail is a group with its current leaderboard
type GroupDetail struct {
	Group       *models.Group             `json:"group"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
}

// JoinCodeRequest is the body of a join by code
type JoinCodeRequest struct {
	Code string `json:"code"`
}

// ListPublic handles GET /api/groups
func (h *GroupHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListPublic(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Create handles POST /api/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.GroupInput
	if !decodeJSON(w, r, &in) {
		return
	}
	group, err := h.groups.CreateGroup(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// Mine handles GET /api/groups/mine
func (h *GroupHandler) Mine(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.MyGroups(r.Context(), currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Get handles GET /api/groups/{id}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	group, err := h.groups.GetGroup(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	board, err := h.groups.Leaderboard(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GroupDetail{Group: group, Leaderboard: board})
}

// Leaderboard handles GET /api/groups/{id}/leaderboard
func (h *GroupHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	board, err := h.groups.Leaderboard(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Members handles GET /api/groups/{id}/members
func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	members, err := h.groups.Members(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// Matches handles GET /api/groups/{id}/matches
func (h *GroupHandler) Matches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	matches, err := h.groups.Matches(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// Join handles POST /api/groups/{id}/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	outcome, err := h.groups.Join(r.Context(), id, currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOutcome(w, outcome, nil)
}

// JoinByCode handles POST /api/groups/join
func (h *GroupHandler) JoinByCode(w http.ResponseWriter, r *http.Request) {
	var req JoinCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		badRequest(w, "code", "code is required")
		return
	}
	outcome, err := h.groups.JoinByCode(r.Context(), req.Code, currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOutcome(w, outcome, nil)
}

// Leave handles POST /api/groups/{id}/leave
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	outcome, err := h.groups.Leave(r.Context(), id, currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOutcome(w, outcome, nil)
}

// UpdateSelection handles PUT /api/groups/{id}/selection
func (h *GroupHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var cfg models.SelectionConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}
	group, err := h.groups.UpdateSelection(r.Context(), id, currentUser(r).ID, cfg)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// Invite handles POST /api/groups/{id}/invitations
func (h *GroupHandler) Invite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req services.InviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Invitee) == "" {
		badRequest(w, "username_or_email", "This field is required.")
		return
	}
	invitation, outcome, err := h.invitations.Invite(r.Context(), id, currentUser(r).ID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOutcome(w, outcome, invitation)
}

// PendingInvitations handles GET /api/invitations
func (h *GroupHandler) PendingInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.invitations.ListPending(r.Context(), currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invitations)
}

// InvitationByToken handles GET /api/invitations/token/{token}
func (h *GroupHandler) InvitationByToken(w http.ResponseWriter, r *http.Request) {
	invitation, err := h.invitations.GetByToken(r.Context(), muxVar(r, "token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if invitation.InviteeID != currentUser(r).ID {
		writeError(w, http.StatusNotFound, APIError{Code: "NOT_FOUND", Message: "invitation not found"})
		return
	}
	writeJSON(w, http.StatusOK, invitation)
}

// AcceptInvitation handles POST /api/invitations/{id}/accept
func (h *GroupHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	outcome, err := h.invitations.Accept(r.Context(), id, currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOutcome(w, outcome, nil)
}

// DeclineInvitation handles POST /api/invitations/{id}/decline
func (h *GroupHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	outcome, err := h.invitations.Decline(r.Context(), id, currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOutcome(w, outcome, nil)
}
