package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
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
	joinCodeAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultJoinCodeAttempts = 5
)

// GenerateJoinCode returns a random code of models.JoinCodeLength characters
// drawn from A-Z and 0-9
func GenerateJoinCode() (string, error) {
	size := big.NewInt(int64(len(joinCodeAlphabet)))
	code := make([]byte, models.JoinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// MemberGroup pairs a group with the caller's membership in it
type MemberGroup struct {
	Group      *models.Group      `json:"group"`
	Membership *models.Membership `json:"membership"`
}

// GroupService manages groups, their members and leaderboards
type GroupService struct {
	groups      GroupRepository
	memberships MembershipRepository
	invitations InvitationRepository
	users       UserRepository
	stats       *StatsService
	selection   *SelectionService
	publisher   events.Publisher
	metrics     *metrics.Collector
	clock       clockwork.Clock
	newCode     func() (string, error)
	attempts    int
	logger      *logging.Logger
}

func NewGroupService(
	groups GroupRepository,
	memberships MembershipRepository,
	invitations InvitationRepository,
	users UserRepository,
	stats *StatsService,
	selection *SelectionService,
	publisher events.Publisher,
	collector *metrics.Collector,
	clock clockwork.Clock,
	joinCodeAttempts int,
) *GroupService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if joinCodeAttempts < 1 {
		joinCodeAttempts = defaultJoinCodeAttempts
	}
	return &GroupService{
		groups:      groups,
		memberships: memberships,
		invitations: invitations,
		users:       users,
		stats:       stats,
		selection:   selection,
		publisher:   publisher,
		metrics:     collector,
		clock:       clock,
		newCode:     GenerateJoinCode,
		attempts:    joinCodeAttempts,
		logger:      logging.WithPrefix("Groups"),
	}
}

// CreateGroup validates the input, stores the group under a fresh join code
// and makes the creator its admin
func (s *GroupService) CreateGroup(ctx context.Context, creatorID primitive.ObjectID, in models.GroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "This field is required.")
	}
	maxMembers := in.MaxMembers
	if maxMembers == 0 {
		maxMembers = models.DefaultMaxMembers
	}
	if maxMembers < models.MinMembers || maxMembers > models.MaxMembers {
		return nil, invalid("max_members", "Maximum members must be between %d and %d.", models.MinMembers, models.MaxMembers)
	}

	existing, err := s.groups.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateGroupName
	}

	selection, err := BuildSelection(in.Selection)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatorID:   creatorID,
		IsPrivate:   in.IsPrivate,
		MaxMembers:  maxMembers,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	selection.Apply(group)

	if err := s.insertWithJoinCode(ctx, group); err != nil {
		return nil, err
	}

	admin := &models.Membership{
		UserID:   creatorID,
		GroupID:  group.ID,
		Role:     models.RoleAdmin,
		JoinedAt: now,
		IsActive: true,
	}
	if err := s.memberships.Activate(ctx, admin); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.GroupsCreated.Inc()
	}
	s.logger.Infof("Group %q created by %s with %d leagues (%s)", group.Name, creatorID.Hex(), len(group.LeagueIDs), group.SelectionType)
	return group, nil
}

func (s *GroupService) insertWithJoinCode(ctx context.Context, group *models.Group) error {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return err
		}
		group.JoinCode = code
		group.ID = primitive.NilObjectID

		err = s.groups.Create(ctx, group)
		switch {
		case err == nil:
			return nil
		case database.IsDuplicateOn(err, database.GroupJoinCodeIndex):
			s.logger.Warnf("Join code collision on attempt %d/%d", attempt, s.attempts)
		case database.IsDuplicateOn(err, database.GroupNameIndex):
			return ErrDuplicateGroupName
		default:
			return err
		}
	}
	return ErrJoinCodeExhausted
}

// GetGroup returns an active group
func (s *GroupService) GetGroup(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil || !group.IsActive {
		return nil, notFound("group", groupID.Hex())
	}
	return group, nil
}

// CanJoin reports whether the user may join. Capacity is checked before membership.
func (s *GroupService) CanJoin(ctx context.Context, group *models.Group, userID primitive.ObjectID) (models.Outcome, error) {
	count, err := s.memberships.CountActive(ctx, group.ID)
	if err != nil {
		return models.Outcome{}, err
	}
	if count >= group.MaxMembers {
		return models.Refused("Group is full"), nil
	}
	membership, err := s.memberships.Get(ctx, group.ID, userID)
	if err != nil {
		return models.Outcome{}, err
	}
	if membership != nil && membership.IsActive {
		return models.Refused("Already a member"), nil
	}
	return models.Accepted("Can join"), nil
}

// Join adds the user to a group. A private group is only joined through the
// user's pending invitation, which is accepted on the way.
func (s *GroupService) Join(ctx context.Context, groupID, userID primitive.ObjectID) (models.Outcome, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return models.Outcome{}, err
	}

	if group.IsPrivate {
		invitation, err := s.invitations.Get(ctx, group.ID, userID)
		if err != nil {
			return models.Outcome{}, err
		}
		if invitation != nil {
			if err := expireIfStale(ctx, s.invitations, invitation, s.clock.Now()); err != nil {
				return models.Outcome{}, err
			}
		}
		if invitation == nil || invitation.Status != models.InvitationPending {
			return models.Refused("This group is private. An invitation is required"), nil
		}
		return s.acceptInvitation(ctx, group, invitation)
	}

	return s.admit(ctx, group, userID, "direct")
}

// JoinByCode joins the group holding the code. The code bypasses the private flag.
func (s *GroupService) JoinByCode(ctx context.Context, code string, userID primitive.ObjectID) (models.Outcome, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	group, err := s.groups.GetByJoinCode(ctx, code)
	if err != nil {
		return models.Outcome{}, err
	}
	if group == nil {
		return models.Outcome{}, notFound("join code", code)
	}
	return s.admit(ctx, group, userID, "code")
}

// acceptInvitation creates the membership first and only then marks the
// invitation accepted, so a refused or failed join leaves it pending
func (s *GroupService) acceptInvitation(ctx context.Context, group *models.Group, invitation *models.Invitation) (models.Outcome, error) {
	membership, outcome, err := s.activate(ctx, group, invitation.InviteeID)
	if err != nil || !outcome.OK {
		return outcome, err
	}

	now := s.clock.Now()
	updated, err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationAccepted, &now)
	if err == nil && !updated {
		outcome = models.Refused("Invitation cannot be accepted")
	}
	if err != nil || !updated {
		if rollbackErr := s.memberships.Deactivate(ctx, membership.ID); rollbackErr != nil {
			s.logger.Errorf("Failed to roll back membership %s: %v", membership.ID.Hex(), rollbackErr)
		}
		return outcome, err
	}
	invitation.Status = models.InvitationAccepted
	invitation.RespondedAt = &now

	s.joined(ctx, group, invitation.InviteeID, "invitation")
	if s.metrics != nil {
		s.metrics.Invitations.WithLabelValues(string(models.InvitationAccepted)).Inc()
	}
	return models.Accepted("Invitation accepted"), nil
}

func (s *GroupService) admit(ctx context.Context, group *models.Group, userID primitive.ObjectID, via string) (models.Outcome, error) {
	_, outcome, err := s.activate(ctx, group, userID)
	if err != nil || !outcome.OK {
		return outcome, err
	}
	s.joined(ctx, group, userID, via)
	return outcome, nil
}

// activate checks CanJoin and upserts the membership. Capacity is checked, not
// reserved: concurrent joins can overshoot MaxMembers by the number of racers.
func (s *GroupService) activate(ctx context.Context, group *models.Group, userID primitive.ObjectID) (*models.Membership, models.Outcome, error) {
	outcome, err := s.CanJoin(ctx, group, userID)
	if err != nil || !outcome.OK {
		return nil, outcome, err
	}

	membership := &models.Membership{
		UserID:   userID,
		GroupID:  group.ID,
		Role:     models.RoleMember,
		JoinedAt: s.clock.Now(),
		IsActive: true,
	}
	if err := s.memberships.Activate(ctx, membership); err != nil {
		return nil, models.Outcome{}, err
	}
	return membership, models.Accepted(fmt.Sprintf("You joined %s.", group.Name)), nil
}

func (s *GroupService) joined(ctx context.Context, group *models.Group, userID primitive.ObjectID, via string) {
	if err := s.publisher.Publish(ctx, events.SubjectMemberJoined, map[string]string{
		"group_id": group.ID.Hex(),
		"user_id":  userID.Hex(),
		"via":      via,
	}); err != nil {
		s.logger.Warnf("Failed to publish member joined event: %v", err)
	}
	s.logger.Infof("User %s joined group %q via %s", userID.Hex(), group.Name, via)
}

// Leave deactivates the user's membership
func (s *GroupService) Leave(ctx context.Context, groupID, userID primitive.ObjectID) (models.Outcome, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return models.Outcome{}, err
	}
	membership, err := s.memberships.Get(ctx, group.ID, userID)
	if err != nil {
		return models.Outcome{}, err
	}
	if membership == nil || !membership.IsActive {
		return models.Refused("You are not a member of this group."), nil
	}
	if err := s.memberships.Deactivate(ctx, membership.ID); err != nil {
		return models.Outcome{}, err
	}
	return models.Accepted(fmt.Sprintf("You left %s.", group.Name)), nil
}

// Leaderboard recomputes the group's statistics and ranks its members by
// points then correct predictions
func (s *GroupService) Leaderboard(ctx context.Context, groupID primitive.ObjectID) ([]models.LeaderboardEntry, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.stats.RecomputeGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	if err := s.attachUsernames(ctx, memberships); err != nil {
		return nil, err
	}

	sort.SliceStable(memberships, func(i, j int) bool {
		a, b := memberships[i], memberships[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.Correct > b.Correct
	})

	board := make([]models.LeaderboardEntry, len(memberships))
	for i, m := range memberships {
		board[i] = models.LeaderboardEntry{
			Rank:         i + 1,
			UserID:       m.UserID,
			Username:     m.Username,
			Role:         m.Role,
			StatsSummary: m.PredictionStats.Summary(),
		}
	}
	return board, nil
}

// Members lists the active members of a group with their usernames
func (s *GroupService) Members(ctx context.Context, groupID primitive.ObjectID) ([]*models.Membership, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.memberships.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	if err := s.attachUsernames(ctx, memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (s *GroupService) ListPublic(ctx context.Context) ([]*models.Group, error) {
	return s.groups.ListPublic(ctx)
}

// MyGroups returns the user's active groups, best points first
func (s *GroupService) MyGroups(ctx context.Context, userID primitive.ObjectID) ([]MemberGroup, error) {
	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []MemberGroup{}, nil
	}

	ids := make([]primitive.ObjectID, len(memberships))
	for i, m := range memberships {
		ids[i] = m.GroupID
	}
	groups, err := s.groups.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	result := make([]MemberGroup, 0, len(memberships))
	for _, m := range memberships {
		if group, ok := byID[m.GroupID]; ok {
			result = append(result, MemberGroup{Group: group, Membership: m})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Membership.Points > result[j].Membership.Points
	})
	return result, nil
}

// UpdateSelection replaces the group's selection. Only admins and moderators
// may change it; member statistics are recomputed for the new league set.
func (s *GroupService) UpdateSelection(ctx context.Context, groupID, userID primitive.ObjectID, cfg models.SelectionConfig) (*models.Group, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	membership, err := s.memberships.Get(ctx, group.ID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil || !membership.IsActive ||
		(membership.Role != models.RoleAdmin && membership.Role != models.RoleModerator) {
		return nil, fmt.Errorf("update selection of group %s: %w", group.ID.Hex(), ErrForbidden)
	}

	selection, err := BuildSelection(cfg)
	if err != nil {
		return nil, err
	}
	selection.Apply(group)
	if err := s.groups.UpdateSelection(ctx, group); err != nil {
		return nil, err
	}

	if s.stats != nil {
		if _, err := s.stats.RecomputeGroup(ctx, group.ID); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warnf("Failed to recompute group %s after selection change: %v", group.Name, err)
		}
	}
	return group, nil
}

// GroupMatches is the resolved selection of a group
type GroupMatches struct {
	LeagueIDs []primitive.ObjectID `json:"league_ids"`
	Matches   []*models.Match      `json:"matches"`
}

// Matches resolves the group's selection into its current match list
func (s *GroupService) Matches(ctx context.Context, groupID primitive.ObjectID) (*GroupMatches, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	leagues, matches, err := s.selection.Resolve(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve matches of group %s: %w", group.ID.Hex(), err)
	}
	return &GroupMatches{LeagueIDs: leagues, Matches: matches}, nil
}

func (s *GroupService) attachUsernames(ctx context.Context, memberships []*models.Membership) error {
	if len(memberships) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, len(memberships))
	for i, m := range memberships {
		ids[i] = m.UserID
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for _, m := range memberships {
		m.Username = names[m.UserID]
	}
	return nil
}

// expireIfStale persists the expired status of a pending invitation whose
// validity window has passed
func expireIfStale(ctx context.Context, repo InvitationRepository, invitation *models.Invitation, now time.Time) error {
	if invitation.Status != models.InvitationPending || !invitation.IsExpired(now) {
		return nil
	}
	if _, err := repo.UpdateStatus(ctx, invitation.ID, models.InvitationExpired, nil); err != nil {
		return err
	}
	invitation.Status = models.InvitationExpired
	return nil
}
