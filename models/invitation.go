package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvitationTTL is how long a pending invitation stays valid
const InvitationTTL = 30 * 24 * time.Hour

// InvitationStatus is the lifecycle state of an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation asks a user to join a group
type Invitation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token       string             `bson:"token" json:"token"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	InviterID   primitive.ObjectID `bson:"inviter_id" json:"inviter_id"`
	InviteeID   primitive.ObjectID `bson:"invitee_id" json:"invitee_id"`
	Status      InvitationStatus   `bson:"status" json:"status"`
	Message     string             `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	RespondedAt *time.Time         `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
}

// ExpiresAt returns the instant after which a pending invitation is expired
func (i *Invitation) ExpiresAt() time.Time {
	return i.CreatedAt.Add(InvitationTTL)
}

// IsExpired reports whether the invitation's validity window has passed
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt())
}

// IsActionable reports whether the invitation can still be accepted
func (i *Invitation) IsActionable(now time.Time) bool {
	return i.Status == InvitationPending && !i.IsExpired(now)
}
