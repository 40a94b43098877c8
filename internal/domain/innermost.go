package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InnermostStatus type for the relationship-pair lifecycle
type InnermostStatus string

const (
	InnermostPending InnermostStatus = "pending" // Invited, not yet accepted
	InnermostActive  InnermostStatus = "active"  // Both partners joined, weekly cycles run
	InnermostEnded   InnermostStatus = "ended"   // Archived; no further weekly cycles
)

// Innermost is the two-partner unit undergoing weekly exercises.
// The inviter always occupies slot A; the accepting partner occupies slot B.
type Innermost struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	InviterID primitive.ObjectID  `bson:"inviterId" json:"inviterId"`
	PartnerID *primitive.ObjectID `bson:"partnerId,omitempty" json:"partnerId,omitempty"` // Nil until accepted

	// Email the invitation was sent to. Matched against the accepting
	// user's account email; kept after acceptance for audit.
	PartnerEmail string `bson:"partnerEmail" json:"partnerEmail"`

	Status    InnermostStatus `bson:"status" json:"status"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (i *Innermost) IsActive() bool {
	return i.Status == InnermostActive
}

// RoleOf returns which partner slot the given user occupies.
// The second return value is false if the user is not part of this pair.
func (i *Innermost) RoleOf(userID primitive.ObjectID) (PartnerRole, bool) {
	if i.InviterID == userID {
		return RoleA, true
	}
	if i.PartnerID != nil && *i.PartnerID == userID {
		return RoleB, true
	}
	return "", false
}
