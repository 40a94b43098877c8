package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionTier type for the billing capability check
type SubscriptionTier string

// Define constants for tiers
const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// User represents a partner account in the system.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Tier         SubscriptionTier   `bson:"tier" json:"tier"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Object key of the profile photo in S3-compatible storage.
	// Empty until the user confirms an upload.
	PhotoObjectKey string `bson:"photoObjectKey,omitempty" json:"photoObjectKey,omitempty"`
}

func (u *User) IsPremium() bool {
	return u.Tier == TierPremium
}
