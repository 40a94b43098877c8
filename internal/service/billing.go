package service

import (
	"context"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CapabilityGate is the billing collaborator: it answers how many active
// innermosts a user's subscription allows. Only the invite path consults
// it; the Aggregator never does.
type CapabilityGate interface {
	MaxActiveInnermosts(ctx context.Context, userID primitive.ObjectID) (int, error)
}

// Per-tier limits on concurrent active innermosts.
const (
	freeTierInnermostLimit    = 1
	premiumTierInnermostLimit = 3
)

// tierCapabilityGate derives the limit from the user's subscription tier.
type tierCapabilityGate struct {
	userRepo repository.UserRepository
}

// NewTierCapabilityGate creates a CapabilityGate backed by the stored
// subscription tier.
func NewTierCapabilityGate(userRepo repository.UserRepository) CapabilityGate {
	return &tierCapabilityGate{userRepo: userRepo}
}

func (g *tierCapabilityGate) MaxActiveInnermosts(ctx context.Context, userID primitive.ObjectID) (int, error) {
	user, err := g.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user.Tier == domain.TierPremium {
		return premiumTierInnermostLimit, nil
	}
	return freeTierInnermostLimit, nil
}
