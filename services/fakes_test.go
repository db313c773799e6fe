package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"football-app-go/database"
	"football-app-go/events"
	"football-app-go/metrics"
	"football-app-go/models"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirroring the Mongo implementations closely enough
// for service tests. Reads return copies so services cannot mutate storage.

type fakeLeagues struct {
	byID map[primitive.ObjectID]*models.League
}

func newFakeLeagues() *fakeLeagues {
	return &fakeLeagues{byID: map[primitive.ObjectID]*models.League{}}
}

func (f *fakeLeagues) add(name string, active bool) *models.League {
	l := &models.League{ID: primitive.NewObjectID(), Name: name, Country: "England", IsActive: active}
	f.byID[l.ID] = l
	return l
}

func (f *fakeLeagues) GetByID(_ context.Context, id primitive.ObjectID) (*models.League, error) {
	if l, ok := f.byID[id]; ok {
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (f *fakeLeagues) GetByName(_ context.Context, name string) (*models.League, error) {
	for _, l := range f.byID {
		if l.Name == name {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeLeagues) ListActive(context.Context) ([]*models.League, error) {
	var out []*models.League
	for _, l := range f.byID {
		if l.IsActive {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type fakeTeams struct {
	teams []*models.Team
}

func (f *fakeTeams) add(name string, leagueID primitive.ObjectID) *models.Team {
	t := &models.Team{ID: primitive.NewObjectID(), Name: name, LeagueIDs: []primitive.ObjectID{leagueID}, IsActive: true}
	f.teams = append(f.teams, t)
	return t
}

func (f *fakeTeams) GetByID(_ context.Context, id primitive.ObjectID) (*models.Team, error) {
	for _, t := range f.teams {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeTeams) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Team, error) {
	var out []*models.Team
	for _, t := range f.teams {
		for _, id := range ids {
			if t.ID == id {
				c := *t
				out = append(out, &c)
			}
		}
	}
	return out, nil
}

func (f *fakeTeams) ListByLeague(_ context.Context, leagueID primitive.ObjectID) ([]*models.Team, error) {
	var out []*models.Team
	for _, t := range f.teams {
		for _, id := range t.LeagueIDs {
			if id == leagueID {
				c := *t
				out = append(out, &c)
				break
			}
		}
	}
	return out, nil
}

type fakeSeasons struct {
	seasons []*models.Season
}

func (f *fakeSeasons) add(s *models.Season) *models.Season {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.Name == "" {
		s.Name = models.SeasonName(s.StartYear, s.EndYear)
	}
	s.Scope = s.ScopeKey()
	f.seasons = append(f.seasons, s)
	return s
}

func (f *fakeSeasons) SetCurrent(_ context.Context, seasonID primitive.ObjectID) error {
	var target *models.Season
	for _, s := range f.seasons {
		if s.ID == seasonID {
			target = s
		}
	}
	if target == nil {
		return errors.New("season not found")
	}
	for _, s := range f.seasons {
		if s.Scope == target.Scope {
			s.IsCurrent = s.ID == seasonID
		}
	}
	return nil
}

func (f *fakeSeasons) GetByID(_ context.Context, id primitive.ObjectID) (*models.Season, error) {
	for _, s := range f.seasons {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeSeasons) FindCurrent(_ context.Context, scope string) (*models.Season, error) {
	for _, s := range f.seasons {
		if s.Scope == scope && s.IsCurrent {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeSeasons) FindLatestActive(_ context.Context, leagueID *primitive.ObjectID) (*models.Season, error) {
	var best *models.Season
	scope := models.SeasonScope(leagueID)
	for _, s := range f.seasons {
		if leagueID != nil && s.Scope != scope {
			continue
		}
		if s.IsActive && (best == nil || s.StartYear > best.StartYear) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	c := *best
	return &c, nil
}

func (f *fakeSeasons) FindByName(_ context.Context, name string, leagueID *primitive.ObjectID) (*models.Season, error) {
	scope := models.SeasonScope(leagueID)
	for _, s := range f.seasons {
		if s.Scope == scope && s.Name == name {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeSeasons) List(_ context.Context, leagueID *primitive.ObjectID) ([]*models.Season, error) {
	scope := models.SeasonScope(leagueID)
	var out []*models.Season
	for _, s := range f.seasons {
		if s.Scope == scope {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartYear > out[j].StartYear })
	return out, nil
}

func (f *fakeSeasons) Upsert(_ context.Context, season *models.Season) (bool, error) {
	season.Scope = season.ScopeKey()
	if season.Name == "" {
		season.Name = models.SeasonName(season.StartYear, season.EndYear)
	}
	for _, s := range f.seasons {
		if s.Scope == season.Scope && s.Name == season.Name {
			s.StartYear, s.EndYear = season.StartYear, season.EndYear
			s.StartDate, s.EndDate = season.StartDate, season.EndDate
			s.IsActive = season.IsActive
			return false, nil
		}
	}
	c := *season
	c.ID = primitive.NewObjectID()
	c.IsCurrent = false
	f.seasons = append(f.seasons, &c)
	season.ID = c.ID
	return true, nil
}

type fakeMatches struct {
	byID map[primitive.ObjectID]*models.Match
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{byID: map[primitive.ObjectID]*models.Match{}}
}

func (f *fakeMatches) put(m *models.Match) *models.Match {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	f.byID[m.ID] = m
	return m
}

func (f *fakeMatches) GetByID(_ context.Context, id primitive.ObjectID) (*models.Match, error) {
	if m, ok := f.byID[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (f *fakeMatches) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Match, error) {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return f.Find(ctx, database.MatchFilter{IDs: ids})
}

func (f *fakeMatches) Find(_ context.Context, filter database.MatchFilter) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range f.byID {
		if filter.Matches(m) {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Kickoff.Equal(out[j].Kickoff) {
			if filter.Descending {
				return out[i].Kickoff.After(out[j].Kickoff)
			}
			return out[i].Kickoff.Before(out[j].Kickoff)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type predictionKey struct{ user, match primitive.ObjectID }

type fakePredictions struct {
	mu     sync.Mutex
	rows   map[predictionKey]*models.Prediction
	clock  clockwork.Clock
	writes int
}

func newFakePredictions(clock clockwork.Clock) *fakePredictions {
	return &fakePredictions{rows: map[predictionKey]*models.Prediction{}, clock: clock}
}

func (f *fakePredictions) Save(_ context.Context, p *models.Prediction, match *models.Match) (bool, error) {
	if err := database.CheckWritable(match); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++

	now := f.clock.Now()
	key := predictionKey{p.UserID, p.MatchID}
	p.LeagueID = match.LeagueID
	p.UpdatedAt = now
	if existing, ok := f.rows[key]; ok {
		existing.LeagueID = match.LeagueID
		existing.PredictedResult = p.PredictedResult
		existing.PredictedHome = p.PredictedHome
		existing.PredictedAway = p.PredictedAway
		existing.Confidence = p.Confidence
		existing.UpdatedAt = now
		return false, nil
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	c := *p
	c.Match = nil
	f.rows[key] = &c
	return true, nil
}

func (f *fakePredictions) GetByUserAndMatch(_ context.Context, userID, matchID primitive.ObjectID) (*models.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[predictionKey{userID, matchID}]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (f *fakePredictions) list(keep func(*models.Prediction) bool) []*models.Prediction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Prediction
	for _, p := range f.rows {
		if keep(p) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func (f *fakePredictions) ListByMatch(_ context.Context, matchID primitive.ObjectID) ([]*models.Prediction, error) {
	return f.list(func(p *models.Prediction) bool { return p.MatchID == matchID }), nil
}

func (f *fakePredictions) ListByUser(_ context.Context, userID primitive.ObjectID, filter database.PredictionFilter) ([]*models.Prediction, error) {
	return f.list(func(p *models.Prediction) bool { return p.UserID == userID && filter.Matches(p) }), nil
}

func (f *fakePredictions) UpdatePoints(_ context.Context, points map[primitive.ObjectID]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if value, ok := points[p.ID]; ok {
			p.PointsEarned = value
		}
	}
	return nil
}

type fakeGroups struct {
	byID map[primitive.ObjectID]*models.Group
	// codeCollisions makes the next n creates fail on the join code index
	codeCollisions int
	creates        int
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{byID: map[primitive.ObjectID]*models.Group{}}
}

func (f *fakeGroups) Create(_ context.Context, group *models.Group) error {
	f.creates++
	if f.codeCollisions > 0 {
		f.codeCollisions--
		return &database.DuplicateKeyError{Index: database.GroupJoinCodeIndex, Err: errors.New("E11000")}
	}
	for _, g := range f.byID {
		if g.JoinCode == group.JoinCode {
			return &database.DuplicateKeyError{Index: database.GroupJoinCodeIndex, Err: errors.New("E11000")}
		}
		if g.Name == group.Name {
			return &database.DuplicateKeyError{Index: database.GroupNameIndex, Err: errors.New("E11000")}
		}
	}
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	c := *group
	f.byID[c.ID] = &c
	return nil
}

func (f *fakeGroups) find(keep func(*models.Group) bool) []*models.Group {
	var out []*models.Group
	for _, g := range f.byID {
		if keep(g) {
			c := *g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeGroups) one(keep func(*models.Group) bool) *models.Group {
	if found := f.find(keep); len(found) > 0 {
		return found[0]
	}
	return nil
}

func (f *fakeGroups) GetByID(_ context.Context, id primitive.ObjectID) (*models.Group, error) {
	return f.one(func(g *models.Group) bool { return g.ID == id }), nil
}

func (f *fakeGroups) GetByName(_ context.Context, name string) (*models.Group, error) {
	return f.one(func(g *models.Group) bool { return g.Name == name }), nil
}

func (f *fakeGroups) GetByJoinCode(_ context.Context, code string) (*models.Group, error) {
	return f.one(func(g *models.Group) bool { return g.JoinCode == code && g.IsActive }), nil
}

func (f *fakeGroups) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Group, error) {
	return f.find(func(g *models.Group) bool {
		for _, id := range ids {
			if g.ID == id {
				return g.IsActive
			}
		}
		return false
	}), nil
}

func (f *fakeGroups) ListPublic(context.Context) ([]*models.Group, error) {
	return f.find(func(g *models.Group) bool { return !g.IsPrivate && g.IsActive }), nil
}

func (f *fakeGroups) ListByLeague(_ context.Context, leagueID primitive.ObjectID) ([]*models.Group, error) {
	return f.find(func(g *models.Group) bool {
		for _, id := range g.LeagueIDs {
			if id == leagueID {
				return g.IsActive
			}
		}
		return false
	}), nil
}

func (f *fakeGroups) UpdateSelection(_ context.Context, group *models.Group) error {
	stored, ok := f.byID[group.ID]
	if !ok {
		return errors.New("group not found")
	}
	stored.SelectionType = group.SelectionType
	stored.LeagueIDs = group.LeagueIDs
	stored.DirectLeagues = group.DirectLeagues
	stored.Rounds = group.Rounds
	stored.Dates = group.Dates
	return nil
}

type fakeMemberships struct {
	rows []*models.Membership
}

func (f *fakeMemberships) Activate(_ context.Context, m *models.Membership) error {
	for _, row := range f.rows {
		if row.UserID == m.UserID && row.GroupID == m.GroupID {
			row.Role = m.Role
			row.IsActive = true
			row.JoinedAt = m.JoinedAt
			*m = *row
			return nil
		}
	}
	c := *m
	c.ID = primitive.NewObjectID()
	c.IsActive = true
	c.PredictionStats = models.PredictionStats{}
	f.rows = append(f.rows, &c)
	*m = c
	return nil
}

func (f *fakeMemberships) find(keep func(*models.Membership) bool) []*models.Membership {
	var out []*models.Membership
	for _, row := range f.rows {
		if keep(row) {
			c := *row
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

func (f *fakeMemberships) GetByID(_ context.Context, id primitive.ObjectID) (*models.Membership, error) {
	if found := f.find(func(m *models.Membership) bool { return m.ID == id }); len(found) > 0 {
		return found[0], nil
	}
	return nil, nil
}

func (f *fakeMemberships) Get(_ context.Context, groupID, userID primitive.ObjectID) (*models.Membership, error) {
	if found := f.find(func(m *models.Membership) bool { return m.GroupID == groupID && m.UserID == userID }); len(found) > 0 {
		return found[0], nil
	}
	return nil, nil
}

func (f *fakeMemberships) ListByGroup(_ context.Context, groupID primitive.ObjectID) ([]*models.Membership, error) {
	return f.find(func(m *models.Membership) bool { return m.GroupID == groupID && m.IsActive }), nil
}

func (f *fakeMemberships) ListByUser(_ context.Context, userID primitive.ObjectID) ([]*models.Membership, error) {
	return f.find(func(m *models.Membership) bool { return m.UserID == userID && m.IsActive }), nil
}

func (f *fakeMemberships) CountActive(_ context.Context, groupID primitive.ObjectID) (int, error) {
	return len(f.find(func(m *models.Membership) bool { return m.GroupID == groupID && m.IsActive })), nil
}

func (f *fakeMemberships) UpdateStats(_ context.Context, id primitive.ObjectID, stats models.PredictionStats) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.PredictionStats = stats
		}
	}
	return nil
}

func (f *fakeMemberships) Deactivate(_ context.Context, id primitive.ObjectID) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.IsActive = false
		}
	}
	return nil
}

type fakeInvitations struct {
	rows []*models.Invitation
}

func (f *fakeInvitations) Save(_ context.Context, inv *models.Invitation) error {
	for _, row := range f.rows {
		if row.GroupID == inv.GroupID && row.InviteeID == inv.InviteeID {
			id := row.ID
			*row = *inv
			row.ID = id
			inv.ID = id
			return nil
		}
	}
	c := *inv
	c.ID = primitive.NewObjectID()
	f.rows = append(f.rows, &c)
	inv.ID = c.ID
	return nil
}

func (f *fakeInvitations) one(keep func(*models.Invitation) bool) *models.Invitation {
	for _, row := range f.rows {
		if keep(row) {
			c := *row
			return &c
		}
	}
	return nil
}

func (f *fakeInvitations) GetByID(_ context.Context, id primitive.ObjectID) (*models.Invitation, error) {
	return f.one(func(i *models.Invitation) bool { return i.ID == id }), nil
}

func (f *fakeInvitations) GetByToken(_ context.Context, token string) (*models.Invitation, error) {
	return f.one(func(i *models.Invitation) bool { return i.Token == token }), nil
}

func (f *fakeInvitations) Get(_ context.Context, groupID, inviteeID primitive.ObjectID) (*models.Invitation, error) {
	return f.one(func(i *models.Invitation) bool { return i.GroupID == groupID && i.InviteeID == inviteeID }), nil
}

func (f *fakeInvitations) ListByInvitee(_ context.Context, inviteeID primitive.ObjectID, status models.InvitationStatus) ([]*models.Invitation, error) {
	var out []*models.Invitation
	for _, row := range f.rows {
		if row.InviteeID == inviteeID && row.Status == status {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeInvitations) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.InvitationStatus, respondedAt *time.Time) (bool, error) {
	for _, row := range f.rows {
		if row.ID == id && row.Status == models.InvitationPending {
			row.Status = status
			if respondedAt != nil {
				t := *respondedAt
				row.RespondedAt = &t
			}
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitations) status(id primitive.ObjectID) models.InvitationStatus {
	for _, row := range f.rows {
		if row.ID == id {
			return row.Status
		}
	}
	return ""
}

type fakeUsers struct {
	byID map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) add(username string) *models.User {
	u := &models.User{ID: primitive.NewObjectID(), Username: username, Email: username + "@example.com"}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) one(keep func(*models.User) bool) *models.User {
	for _, u := range f.byID {
		if keep(u) {
			c := *u
			return &c
		}
	}
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.one(func(u *models.User) bool { return u.ID == id }), nil
}

func (f *fakeUsers) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.one(func(u *models.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return f.one(func(u *models.User) bool { return u.Username == username }), nil
}

func (f *fakeUsers) ListTop(_ context.Context, limit int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stats.Points != out[j].Stats.Points {
			return out[i].Stats.Points > out[j].Stats.Points
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	for _, u := range f.byID {
		if u.Username == user.Username {
			return &database.DuplicateKeyError{Index: database.UserUsernameIndex, Err: errors.New("E11000")}
		}
		if strings.EqualFold(u.Email, user.Email) {
			return &database.DuplicateKeyError{Index: database.UserEmailIndex, Err: errors.New("E11000")}
		}
	}
	user.ID = primitive.NewObjectID()
	c := *user
	f.byID[c.ID] = &c
	return nil
}

func (f *fakeUsers) UpdateStats(_ context.Context, id primitive.ObjectID, stats models.PredictionStats) error {
	if u, ok := f.byID[id]; ok {
		u.Stats = stats
	}
	return nil
}

// testEnv wires every service over the fakes with a fake clock
type testEnv struct {
	clock       *clockwork.FakeClock
	recorder    *events.Recorder
	metrics     *metrics.Collector
	leagues     *fakeLeagues
	teams       *fakeTeams
	seasons     *fakeSeasons
	matches     *fakeMatches
	predictions *fakePredictions
	groups      *fakeGroups
	memberships *fakeMemberships
	invitations *fakeInvitations
	users       *fakeUsers

	seasonService     *SeasonService
	scoringService    *ScoringService
	statsService      *StatsService
	selectionService  *SelectionService
	predictionService *PredictionService
	standingsService  *StandingsService
	groupService      *GroupService
	invitationService *InvitationService
	userService       *UserService
	completion        *MatchCompletion
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEnv() *testEnv {
	clock := clockwork.NewFakeClockAt(testNow)
	env := &testEnv{
		clock:       clock,
		recorder:    &events.Recorder{},
		metrics:     metrics.New(),
		leagues:     newFakeLeagues(),
		teams:       &fakeTeams{},
		seasons:     &fakeSeasons{},
		matches:     newFakeMatches(),
		predictions: newFakePredictions(clock),
		groups:      newFakeGroups(),
		memberships: &fakeMemberships{},
		invitations: &fakeInvitations{},
		users:       newFakeUsers(),
	}

	env.seasonService = NewSeasonService(env.seasons, env.leagues, env.recorder)
	env.scoringService = NewScoringService(env.matches, env.predictions, env.metrics)
	env.statsService = NewStatsService(env.predictions, env.matches, env.groups, env.memberships, env.users, env.leagues, env.metrics)
	env.selectionService = NewSelectionService(env.matches, env.leagues)
	env.predictionService = NewPredictionService(env.matches, env.predictions, env.groups, env.memberships, env.seasonService, env.recorder, env.metrics, clock)
	env.standingsService = NewStandingsService(env.teams, env.matches, env.seasonService, clock)
	env.groupService = NewGroupService(env.groups, env.memberships, env.invitations, env.users, env.statsService, env.selectionService, env.recorder, env.metrics, clock, 0)
	env.invitationService = NewInvitationService(env.invitations, env.users, env.memberships, env.groupService, env.metrics, clock)
	env.userService = NewUserService(env.users, env.memberships, env.predictions, env.statsService)
	env.completion = NewMatchCompletion(env.matches, env.predictions, env.scoringService, env.statsService, env.recorder)
	return env
}

// scheduled stores a not-started match kicking off the given time after now
func (e *testEnv) scheduled(leagueID primitive.ObjectID, in time.Duration) *models.Match {
	return e.matches.put(&models.Match{
		LeagueID:   leagueID,
		HomeTeamID: primitive.NewObjectID(),
		AwayTeamID: primitive.NewObjectID(),
		Kickoff:    e.clock.Now().Add(in),
		Status:     models.StatusNotStarted,
	})
}

// finish marks a stored match full time with the given score
func (e *testEnv) finish(m *models.Match, home, away int) {
	stored := e.matches.byID[m.ID]
	stored.Status = models.StatusFullTime
	stored.HomeGoals = models.Goals(home)
	stored.AwayGoals = models.Goals(away)
}

// predict stores a prediction directly, bypassing the deadline checks
func (e *testEnv) predict(userID primitive.ObjectID, m *models.Match, home, away int) {
	p := &models.Prediction{
		UserID:          userID,
		MatchID:         m.ID,
		PredictedResult: models.ResultFromScore(home, away),
		PredictedHome:   models.Goals(home),
		PredictedAway:   models.Goals(away),
		Confidence:      models.DefaultConfidence,
	}
	e.clock.Advance(time.Second)
	if _, err := e.predictions.Save(context.Background(), p, &models.Match{ID: m.ID, LeagueID: m.LeagueID, Status: models.StatusNotStarted}); err != nil {
		panic(err)
	}
}

// leaguesGroup creates a public leagues-mode group owned by the creator
func (e *testEnv) leaguesGroup(name string, creator primitive.ObjectID, leagues ...primitive.ObjectID) *models.Group {
	group, err := e.groupService.CreateGroup(context.Background(), creator, models.GroupInput{
		Name:      name,
		Selection: models.SelectionConfig{Type: models.SelectionLeagues, LeagueIDs: leagues},
	})
	if err != nil {
		panic(err)
	}
	return group
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
