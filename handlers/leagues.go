package handlers

import (
	"net/http"

	"football-app-go/interfaces"
)

// LeagueHandler serves seasons, leagues, tables and team pages
type LeagueHandler struct {
	seasons   interfaces.SeasonService
	leagues   interfaces.LeagueService
	standings interfaces.StandingsService
}

func NewLeagueHandler(seasons interfaces.SeasonService, leagues interfaces.LeagueService, standings interfaces.StandingsService) *LeagueHandler {
	return &LeagueHandler{seasons: seasons, leagues: leagues, standings: standings}
}

// ListSeasons handles GET /api/seasons?league=
func (h *LeagueHandler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	leagueID, err := queryID(r, "league")
	if err != nil {
		badRequest(w, "league", "Invalid league id")
		return
	}
	seasons, err := h.seasons.List(r.Context(), leagueID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}

// CurrentSeason handles GET /api/seasons/current?league=
func (h *LeagueHandler) CurrentSeason(w http.ResponseWriter, r *http.Request) {
	leagueID, err := queryID(r, "league")
	if err != nil {
		badRequest(w, "league", "Invalid league id")
		return
	}
	season, err := h.seasons.CurrentSeason(r.Context(), leagueID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if season == nil {
		writeError(w, http.StatusNotFound, APIError{Code: "NOT_FOUND", Message: "No current season"})
		return
	}
	writeJSON(w, http.StatusOK, season)
}

// ListLeagues handles GET /api/leagues
func (h *LeagueHandler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.leagues.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leagues)
}

// GetLeague handles GET /api/leagues/{id}
func (h *LeagueHandler) GetLeague(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	league, err := h.leagues.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, league)
}

// Teams handles GET /api/leagues/{id}/teams
func (h *LeagueHandler) Teams(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	teams, err := h.leagues.Teams(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// Standings handles GET /api/leagues/{id}/standings?season=
func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	seasonID, err := queryID(r, "season")
	if err != nil {
		badRequest(w, "season", "Invalid season id")
		return
	}
	table, err := h.standings.Standings(r.Context(), id, seasonID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// Rounds handles GET /api/leagues/{id}/rounds?season=
func (h *LeagueHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	seasonID, err := queryID(r, "season")
	if err != nil {
		badRequest(w, "season", "Invalid season id")
		return
	}
	schedule, err := h.standings.RoundSchedule(r.Context(), id, seasonID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// Team handles GET /api/teams/{id}?season=
func (h *LeagueHandler) Team(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	seasonID, err := queryID(r, "season")
	if err != nil {
		badRequest(w, "season", "Invalid season id")
		return
	}
	stats, err := h.standings.TeamStats(r.Context(), id, seasonID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
