package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"football-app-go/database"
	"football-app-go/events"
	"football-app-go/logging"
	"football-app-go/metrics"
	"football-app-go/models"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultCenterLimit = 20
	maxCenterLimit     = 50
)

// PredictionService validates and stores user predictions
type PredictionService struct {
	matches     MatchRepository
	predictions PredictionRepository
	groups      GroupRepository
	memberships MembershipRepository
	seasons     *SeasonService
	publisher   events.Publisher
	metrics     *metrics.Collector
	clock       clockwork.Clock
	logger      *logging.Logger
}

func NewPredictionService(
	matches MatchRepository,
	predictions PredictionRepository,
	groups GroupRepository,
	memberships MembershipRepository,
	seasons *SeasonService,
	publisher events.Publisher,
	collector *metrics.Collector,
	clock clockwork.Clock,
) *PredictionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PredictionService{
		matches:     matches,
		predictions: predictions,
		groups:      groups,
		memberships: memberships,
		seasons:     seasons,
		publisher:   publisher,
		metrics:     collector,
		clock:       clock,
		logger:      logging.WithPrefix("Predictions"),
	}
}

// ValidatePrediction checks an input against the match at the given instant and
// returns the prediction to store. When both scores are present the result is
// derived from them, whatever result was selected.
func ValidatePrediction(in models.PredictionInput, match *models.Match, now time.Time) (*models.Prediction, error) {
	if phase := match.Phase(); phase != models.PhaseScheduled {
		return nil, invalid("match", "Cannot make predictions for %s matches.", strings.ToLower(string(phase)))
	}
	if !now.Before(match.Kickoff) {
		return nil, invalid("match", "Prediction deadline has passed for this match.")
	}

	if (in.PredictedHome == nil) != (in.PredictedAway == nil) {
		return nil, invalid("score", "Please provide both home and away scores, or leave both blank.")
	}

	result := in.Result
	if in.PredictedHome != nil {
		if *in.PredictedHome < 0 || *in.PredictedAway < 0 {
			return nil, invalid("score", "Scores cannot be negative.")
		}
		result = models.ResultFromScore(*in.PredictedHome, *in.PredictedAway)
	}
	if result == "" {
		return nil, invalid("result", "Please select a result.")
	}
	if !result.IsValid() {
		return nil, invalid("result", "Result must be one of H, D or A.")
	}

	confidence := in.Confidence
	if confidence == 0 {
		confidence = models.DefaultConfidence
	}
	if confidence < 1 || confidence > 100 {
		return nil, invalid("confidence", "Confidence must be between 1 and 100.")
	}

	return &models.Prediction{
		MatchID:         match.ID,
		LeagueID:        match.LeagueID,
		PredictedResult: result,
		PredictedHome:   in.PredictedHome,
		PredictedAway:   in.PredictedAway,
		Confidence:      confidence,
	}, nil
}

// SavePrediction validates and upserts one prediction. created reports whether
// the user had no prediction for the match before.
func (s *PredictionService) SavePrediction(ctx context.Context, userID primitive.ObjectID, in models.PredictionInput) (*models.Prediction, bool, error) {
	match, err := s.loadMatch(ctx, in.MatchID)
	if err != nil {
		return nil, false, err
	}

	prediction, err := ValidatePrediction(in, match, s.clock.Now())
	if err != nil {
		return nil, false, err
	}
	prediction.UserID = userID

	created, err := s.persist(ctx, prediction)
	if err != nil {
		return nil, false, err
	}
	s.recordSaved(ctx, userID, boolCount(created), boolCount(!created))
	return prediction, created, nil
}

// ValidateAndSave validates every non-empty entry first and writes nothing when
// any entry is invalid. Entries without a result and without scores are skipped.
func (s *PredictionService) ValidateAndSave(ctx context.Context, userID primitive.ObjectID, inputs []models.PredictionInput) (created, updated int, err error) {
	var pending []models.PredictionInput
	ids := make([]primitive.ObjectID, 0, len(inputs))
	for _, in := range inputs {
		if in.IsEmpty() {
			continue
		}
		pending = append(pending, in)
		ids = append(ids, in.MatchID)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	matches, err := s.matches.GetByIDs(ctx, ids)
	if err != nil {
		return 0, 0, err
	}
	byID := make(map[primitive.ObjectID]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	now := s.clock.Now()
	validated := make([]*models.Prediction, 0, len(pending))
	for _, in := range pending {
		match, ok := byID[in.MatchID]
		if !ok {
			return 0, 0, notFound("match", in.MatchID.Hex())
		}
		prediction, err := ValidatePrediction(in, match, now)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Message = fmt.Sprintf("%s (%s)", verr.Message, match)
			}
			return 0, 0, err
		}
		prediction.UserID = userID
		validated = append(validated, prediction)
	}

	for _, prediction := range validated {
		isNew, err := s.persist(ctx, prediction)
		if err != nil {
			return created, updated, err
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}

	s.recordSaved(ctx, userID, created, updated)
	s.logger.Infof("User %s saved %d predictions (%d new, %d updated)", userID.Hex(), created+updated, created, updated)
	return created, updated, nil
}

// persist re-reads the match and hands it to the storage guard, which refuses
// predictions on matches that went live after validation
func (s *PredictionService) persist(ctx context.Context, prediction *models.Prediction) (bool, error) {
	match, err := s.loadMatch(ctx, prediction.MatchID)
	if err != nil {
		return false, err
	}

	created, err := s.predictions.Save(ctx, prediction, match)
	if errors.Is(err, database.ErrPredictionLocked) {
		s.logger.Errorf("Refused prediction write by user %s: %v", prediction.UserID.Hex(), err)
		return false, fmt.Errorf("%w: %v", ErrContractViolation, err)
	}
	if err != nil {
		return false, err
	}
	prediction.Match = match
	return created, nil
}

func (s *PredictionService) recordSaved(ctx context.Context, userID primitive.ObjectID, created, updated int) {
	if s.metrics != nil {
		s.metrics.PredictionsSaved.WithLabelValues("created").Add(float64(created))
		s.metrics.PredictionsSaved.WithLabelValues("updated").Add(float64(updated))
	}
	if err := s.publisher.Publish(ctx, events.SubjectPredictionSaved, map[string]interface{}{
		"user_id": userID.Hex(),
		"created": created,
		"updated": updated,
	}); err != nil {
		s.logger.Warnf("Failed to publish prediction event: %v", err)
	}
}

func (s *PredictionService) loadMatch(ctx context.Context, id primitive.ObjectID) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, notFound("match", id.Hex())
	}
	return match, nil
}

// CenterQuery filters the prediction center listing
type CenterQuery struct {
	SeasonID        *primitive.ObjectID
	LeagueIDs       []primitive.ObjectID
	DateFrom        *time.Time
	DateTo          *time.Time // inclusive day
	OnlyUnpredicted bool
	Limit           int
}

// CenterEntry is one upcoming match with the user's prediction, if any
type CenterEntry struct {
	Match      *models.Match      `json:"match"`
	Prediction *models.Prediction `json:"prediction,omitempty"`
	CanPredict bool               `json:"can_predict"`
}

// PredictionCenter lists upcoming scheduled matches in the leagues of the
// user's groups, or every league when the user has no group
func (s *PredictionService) PredictionCenter(ctx context.Context, userID primitive.ObjectID, query CenterQuery) ([]CenterEntry, error) {
	now := s.clock.Now()

	leagueIDs, err := s.userLeagues(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(query.LeagueIDs) > 0 {
		leagueIDs = intersectOrSelf(leagueIDs, query.LeagueIDs)
	}

	seasonID := query.SeasonID
	if seasonID == nil && s.seasons != nil {
		if seasonID, err = s.seasons.ResolveSeasonID(ctx, nil, nil); err != nil {
			return nil, err
		}
	}

	from := now
	if query.DateFrom != nil && query.DateFrom.After(now) {
		from = *query.DateFrom
	}
	filter := database.MatchFilter{
		LeagueIDs: leagueIDs,
		SeasonID:  seasonID,
		Statuses:  models.StatusesInPhase(models.PhaseScheduled),
		From:      &from,
	}
	if query.DateTo != nil {
		to := query.DateTo.AddDate(0, 0, 1)
		filter.To = &to
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultCenterLimit
	}
	if limit > maxCenterLimit {
		limit = maxCenterLimit
	}
	if !query.OnlyUnpredicted {
		filter.Limit = int64(limit)
	}

	matches, err := s.matches.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	existing, err := s.predictions.ListByUser(ctx, userID, database.PredictionFilter{MatchIDs: ids})
	if err != nil {
		return nil, err
	}
	byMatch := make(map[primitive.ObjectID]*models.Prediction, len(existing))
	for _, p := range existing {
		byMatch[p.MatchID] = p
	}

	entries := make([]CenterEntry, 0, len(matches))
	for _, m := range matches {
		prediction := byMatch[m.ID]
		if query.OnlyUnpredicted && prediction != nil {
			continue
		}
		entries = append(entries, CenterEntry{Match: m, Prediction: prediction, CanPredict: m.AcceptsPredictions(now)})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// userLeagues returns the union of league sets of the user's groups, or nil
// when the user belongs to no group
func (s *PredictionService) userLeagues(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil || len(memberships) == 0 {
		return nil, err
	}
	groupIDs := make([]primitive.ObjectID, len(memberships))
	for i, m := range memberships {
		groupIDs[i] = m.GroupID
	}
	groups, err := s.groups.GetByIDs(ctx, groupIDs)
	if err != nil || len(groups) == 0 {
		return nil, err
	}

	leagues := []primitive.ObjectID{}
	seen := map[primitive.ObjectID]bool{}
	for _, g := range groups {
		for _, id := range g.LeagueIDs {
			if !seen[id] {
				seen[id] = true
				leagues = append(leagues, id)
			}
		}
	}
	return leagues, nil
}

// intersectOrSelf narrows base to the requested ids; a nil base allows every request
func intersectOrSelf(base, requested []primitive.ObjectID) []primitive.ObjectID {
	if base == nil {
		return requested
	}
	allowed := make(map[primitive.ObjectID]bool, len(base))
	for _, id := range base {
		allowed[id] = true
	}
	out := []primitive.ObjectID{}
	for _, id := range requested {
		if allowed[id] {
			out = append(out, id)
		}
	}
	return out
}

// HistoryQuery filters a user's prediction history
type HistoryQuery struct {
	SeasonID  *primitive.ObjectID
	LeagueIDs []primitive.ObjectID
	Phases    []models.MatchPhase
	DateFrom  *time.Time
	DateTo    *time.Time // inclusive day
}

// History is a filtered prediction list with summary totals over finished matches
type History struct {
	Predictions []*models.Prediction `json:"predictions"`
	Total       int                  `json:"total_predictions"`
	Finished    int                  `json:"finished_predictions"`
	Correct     int                  `json:"correct_predictions"`
	Points      int                  `json:"total_points"`
	Accuracy    float64              `json:"accuracy"`
}

// MyPredictions returns the user's predictions for a season, most recent match first
func (s *PredictionService) MyPredictions(ctx context.Context, userID primitive.ObjectID, query HistoryQuery) (*History, error) {
	predictions, err := s.predictions.ListByUser(ctx, userID, database.PredictionFilter{LeagueIDs: nilIfEmpty(query.LeagueIDs)})
	if err != nil {
		return nil, err
	}

	seasonID := query.SeasonID
	if seasonID == nil && s.seasons != nil {
		if seasonID, err = s.seasons.ResolveSeasonID(ctx, nil, nil); err != nil {
			return nil, err
		}
	}

	ids := make([]primitive.ObjectID, len(predictions))
	for i, p := range predictions {
		ids[i] = p.MatchID
	}
	filter := database.MatchFilter{IDs: ids, SeasonID: seasonID}
	for _, phase := range query.Phases {
		filter.Statuses = append(filter.Statuses, models.StatusesInPhase(phase)...)
	}
	filter.From = query.DateFrom
	if query.DateTo != nil {
		to := query.DateTo.AddDate(0, 0, 1)
		filter.To = &to
	}

	matches, err := s.matches.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	history := &History{Predictions: []*models.Prediction{}}
	for _, p := range predictions {
		match, ok := byID[p.MatchID]
		if !ok {
			continue
		}
		p.Match = match
		history.Predictions = append(history.Predictions, p)
		if match.IsFinished() {
			history.Finished++
			history.Points += p.PointsEarned
			if correct, ok := IsCorrect(p, match); ok && correct {
				history.Correct++
			}
		}
	}
	sort.SliceStable(history.Predictions, func(i, j int) bool {
		return history.Predictions[i].Match.Kickoff.After(history.Predictions[j].Match.Kickoff)
	})
	history.Total = len(history.Predictions)
	history.Accuracy = models.PredictionStats{Total: history.Finished, Correct: history.Correct}.AccuracyPercentage()
	return history, nil
}

func nilIfEmpty(ids []primitive.ObjectID) []primitive.ObjectID {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}
