package handlers

import (
	"net/http"
	"strings"

	"football-app-go/interfaces"
	"football-app-go/models"
	"football-app-go/services"
)

// PredictionHandler serves prediction entry and listings
type PredictionHandler struct {
	predictions interfaces.PredictionService
}

func NewPredictionHandler(predictions interfaces.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictions: predictions}
}

// BulkRequest is the body of a bulk submission
type BulkRequest struct {
	Predictions []models.PredictionInput `json:"predictions"`
}

// BulkResult reports how many predictions a bulk submission wrote
type BulkResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Save handles POST /api/predictions
func (h *PredictionHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in models.PredictionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.MatchID.IsZero() {
		badRequest(w, "match_id", "match_id is required")
		return
	}

	prediction, created, err := h.predictions.SavePrediction(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, prediction)
}

// Bulk handles POST /api/predictions/bulk
func (h *PredictionHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, updated, err := h.predictions.ValidateAndSave(r.Context(), currentUser(r).ID, req.Predictions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkResult{Created: created, Updated: updated})
}

// Center handles GET /api/predictions?season=&league=&from=&to=&unpredicted=&limit=
func (h *PredictionHandler) Center(w http.ResponseWriter, r *http.Request) {
	var (
		query services.CenterQuery
		err   error
	)
	if query.SeasonID, err = queryID(r, "season"); err != nil {
		badRequest(w, "season", "Invalid season id")
		return
	}
	if query.LeagueIDs, err = queryIDs(r, "league"); err != nil {
		badRequest(w, "league", "Invalid league id")
		return
	}
	if query.DateFrom, err = queryDate(r, "from"); err != nil {
		badRequest(w, "from", "Dates must be YYYY-MM-DD")
		return
	}
	if query.DateTo, err = queryDate(r, "to"); err != nil {
		badRequest(w, "to", "Dates must be YYYY-MM-DD")
		return
	}
	if query.Limit, err = queryInt(r, "limit"); err != nil {
		badRequest(w, "limit", "limit must be a number")
		return
	}
	query.OnlyUnpredicted = r.URL.Query().Get("unpredicted") == "true"

	entries, err := h.predictions.PredictionCenter(r.Context(), currentUser(r).ID, query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Mine handles GET /api/predictions/mine?season=&league=&status=&from=&to=
func (h *PredictionHandler) Mine(w http.ResponseWriter, r *http.Request) {
	var (
		query services.HistoryQuery
		err   error
	)
	if query.SeasonID, err = queryID(r, "season"); err != nil {
		badRequest(w, "season", "Invalid season id")
		return
	}
	if query.LeagueIDs, err = queryIDs(r, "league"); err != nil {
		badRequest(w, "league", "Invalid league id")
		return
	}
	if query.DateFrom, err = queryDate(r, "from"); err != nil {
		badRequest(w, "from", "Dates must be YYYY-MM-DD")
		return
	}
	if query.DateTo, err = queryDate(r, "to"); err != nil {
		badRequest(w, "to", "Dates must be YYYY-MM-DD")
		return
	}
	for _, status := range r.URL.Query()["status"] {
		phase, ok := parsePhase(status)
		if !ok {
			badRequest(w, "status", "Unknown status "+status)
			return
		}
		query.Phases = append(query.Phases, phase)
	}

	history, err := h.predictions.MyPredictions(r.Context(), currentUser(r).ID, query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

var phaseNames = map[string]models.MatchPhase{
	"scheduled": models.PhaseScheduled,
	"live":      models.PhaseInPlay,
	"in_play":   models.PhaseInPlay,
	"finished":  models.PhaseFinished,
	"postponed": models.PhasePostponed,
	"cancelled": models.PhaseCancelled,
	"abandoned": models.PhaseAbandoned,
}

func parsePhase(name string) (models.MatchPhase, bool) {
	phase, ok := phaseNames[strings.ToLower(strings.TrimSpace(name))]
	return phase, ok
}
