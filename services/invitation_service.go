package services

import (
	"context"
	"strings"

	"football-app-go/logging"
	"football-app-go/metrics"
	"football-app-go/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InviteRequest names the invitee by username or email
type InviteRequest struct {
	Invitee string `json:"username_or_email"`
	Message string `json:"message"`
}

// InvitationService issues invitations to private groups and answers them
type InvitationService struct {
	invitations InvitationRepository
	users       UserRepository
	memberships MembershipRepository
	groups      *GroupService
	metrics     *metrics.Collector
	clock       clockwork.Clock
	logger      *logging.Logger
}

func NewInvitationService(
	invitations InvitationRepository,
	users UserRepository,
	memberships MembershipRepository,
	groups *GroupService,
	collector *metrics.Collector,
	clock clockwork.Clock,
) *InvitationService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &InvitationService{
		invitations: invitations,
		users:       users,
		memberships: memberships,
		groups:      groups,
		metrics:     collector,
		clock:       clock,
		logger:      logging.WithPrefix("Invitations"),
	}
}

// Invite creates a pending invitation. An earlier declined or expired
// invitation for the same user is replaced.
func (s *InvitationService) Invite(ctx context.Context, groupID, inviterID primitive.ObjectID, req InviteRequest) (*models.Invitation, models.Outcome, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, models.Outcome{}, err
	}

	inviter, err := s.memberships.Get(ctx, group.ID, inviterID)
	if err != nil {
		return nil, models.Outcome{}, err
	}
	if inviter == nil || !inviter.IsActive {
		return nil, models.Refused("Only group members can send invitations."), nil
	}

	invitee, err := s.lookupUser(ctx, req.Invitee)
	if err != nil {
		return nil, models.Outcome{}, err
	}
	if invitee == nil {
		return nil, models.Refused("User not found. Please check the username or email."), nil
	}

	membership, err := s.memberships.Get(ctx, group.ID, invitee.ID)
	if err != nil {
		return nil, models.Outcome{}, err
	}
	if membership != nil && membership.IsActive {
		return nil, models.Refused("This user is already a member of the group."), nil
	}

	existing, err := s.invitations.Get(ctx, group.ID, invitee.ID)
	if existing, err = s.load(ctx, existing, err); err != nil {
		return nil, models.Outcome{}, err
	}
	if existing != nil && existing.Status == models.InvitationPending {
		return nil, models.Refused("This user already has a pending invitation to this group."), nil
	}

	invitation := &models.Invitation{
		Token:     uuid.NewString(),
		GroupID:   group.ID,
		InviterID: inviterID,
		InviteeID: invitee.ID,
		Status:    models.InvitationPending,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.clock.Now(),
	}
	if err := s.invitations.Save(ctx, invitation); err != nil {
		return nil, models.Outcome{}, err
	}

	s.count(models.InvitationPending)
	s.logger.Infof("User %s invited %s to group %q", inviterID.Hex(), invitee.Username, group.Name)
	return invitation, models.Accepted("Invitation sent to " + invitee.Username + "."), nil
}

// Accept joins the invitee to the group. Only the invitee may answer.
func (s *InvitationService) Accept(ctx context.Context, invitationID, userID primitive.ObjectID) (models.Outcome, error) {
	invitation, err := s.forInvitee(ctx, invitationID, userID)
	if err != nil {
		return models.Outcome{}, err
	}
	if !invitation.IsActionable(s.clock.Now()) {
		return models.Refused("Invitation cannot be accepted"), nil
	}
	group, err := s.groups.GetGroup(ctx, invitation.GroupID)
	if err != nil {
		return models.Outcome{}, err
	}
	return s.groups.acceptInvitation(ctx, group, invitation)
}

// Decline refuses a pending invitation
func (s *InvitationService) Decline(ctx context.Context, invitationID, userID primitive.ObjectID) (models.Outcome, error) {
	invitation, err := s.forInvitee(ctx, invitationID, userID)
	if err != nil {
		return models.Outcome{}, err
	}
	if invitation.Status != models.InvitationPending {
		return models.Refused("Invitation cannot be declined"), nil
	}

	now := s.clock.Now()
	updated, err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationDeclined, &now)
	if err != nil {
		return models.Outcome{}, err
	}
	if !updated {
		return models.Refused("Invitation cannot be declined"), nil
	}
	invitation.Status = models.InvitationDeclined
	invitation.RespondedAt = &now

	s.count(models.InvitationDeclined)
	return models.Accepted("Invitation declined"), nil
}

// ListPending returns the user's invitations that can still be answered
func (s *InvitationService) ListPending(ctx context.Context, userID primitive.ObjectID) ([]*models.Invitation, error) {
	invitations, err := s.invitations.ListByInvitee(ctx, userID, models.InvitationPending)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	pending := make([]*models.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if err := expireIfStale(ctx, s.invitations, inv, now); err != nil {
			return nil, err
		}
		if inv.Status == models.InvitationPending {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}

// GetByToken resolves an invitation link
func (s *InvitationService) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if invitation, err = s.load(ctx, invitation, err); err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, notFound("invitation", token)
	}
	return invitation, nil
}

func (s *InvitationService) forInvitee(ctx context.Context, invitationID, userID primitive.ObjectID) (*models.Invitation, error) {
	invitation, err := s.invitations.GetByID(ctx, invitationID)
	if invitation, err = s.load(ctx, invitation, err); err != nil {
		return nil, err
	}
	if invitation == nil || invitation.InviteeID != userID {
		return nil, notFound("invitation", invitationID.Hex())
	}
	return invitation, nil
}

// load applies lazy expiry to a freshly read invitation
func (s *InvitationService) load(ctx context.Context, invitation *models.Invitation, err error) (*models.Invitation, error) {
	if err != nil || invitation == nil {
		return invitation, err
	}
	if invitation.Status != models.InvitationPending {
		return invitation, nil
	}
	if err := expireIfStale(ctx, s.invitations, invitation, s.clock.Now()); err != nil {
		return nil, err
	}
	if invitation.Status == models.InvitationExpired {
		s.count(models.InvitationExpired)
	}
	return invitation, nil
}

// lookupUser tries the username first, then the email
func (s *InvitationService) lookupUser(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, nil
	}
	user, err := s.users.GetByUsername(ctx, login)
	if err != nil || user != nil {
		return user, err
	}
	return s.users.GetByEmail(ctx, login)
}

func (s *InvitationService) count(status models.InvitationStatus) {
	if s.metrics != nil {
		s.metrics.Invitations.WithLabelValues(string(status)).Inc()
	}
}
