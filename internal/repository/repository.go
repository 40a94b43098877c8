package repository

import (
	"context"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound           = RepositoryError("not found")
	ErrDuplicate          = RepositoryError("duplicate record")
	ErrStorageUnavailable = RepositoryError("storage unavailable")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetPhotoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error
	SetTier(ctx context.Context, id primitive.ObjectID, tier domain.SubscriptionTier) error
}

// InnermostRepository defines the interface for interacting with
// relationship-pair data.
type InnermostRepository interface {
	Create(ctx context.Context, innermost *domain.Innermost) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Innermost, error)
	// GetByUser returns every innermost the user is part of: as inviter,
	// as accepted partner, or as the pending invitee matched by email.
	GetByUser(ctx context.Context, userID primitive.ObjectID, email string) ([]domain.Innermost, error)
	CountActiveByUser(ctx context.Context, userID primitive.ObjectID) (int, error)
	// Activate moves a pending innermost to active and records the
	// accepting partner in slot B.
	Activate(ctx context.Context, id, partnerID primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.InnermostStatus) error
}

// WillingBoxRepository defines the interface for interacting with weekly
// exercise documents. Per-partner submissions are persisted with
// field-scoped updates on disjoint keys (wishesA vs wishesB and so on) so
// two concurrent partner writes never conflict; only the re-derivable
// cached phase is last-write-wins.
type WillingBoxRepository interface {
	Create(ctx context.Context, box *domain.WillingBox) (primitive.ObjectID, error)
	GetByInnermostAndWeek(ctx context.Context, innermostID primitive.ObjectID, weekNumber int) (*domain.WillingBox, error)
	GetLatestByInnermost(ctx context.Context, innermostID primitive.ObjectID) (*domain.WillingBox, error)
	GetAllByInnermost(ctx context.Context, innermostID primitive.ObjectID) ([]domain.WillingBox, error)
	SaveWishes(ctx context.Context, id primitive.ObjectID, role domain.PartnerRole, wishes []domain.Wish) error
	SaveWilling(ctx context.Context, id primitive.ObjectID, role domain.PartnerRole, wishIDs []string) error
	SaveGuess(ctx context.Context, id primitive.ObjectID, role domain.PartnerRole, wishIDs []string) error
	UpdatePhase(ctx context.Context, id primitive.ObjectID, phase domain.Phase) error
}

// ScoreRepository defines the interface for interacting with weekly score
// records. Records are insert-only: a unique (innermostId, weekNumber)
// index makes concurrent double-scoring surface as ErrDuplicate.
type ScoreRepository interface {
	Create(ctx context.Context, score *domain.WeeklyScore) (primitive.ObjectID, error)
	GetByInnermostAndWeek(ctx context.Context, innermostID primitive.ObjectID, weekNumber int) (*domain.WeeklyScore, error)
	GetAllByInnermost(ctx context.Context, innermostID primitive.ObjectID) ([]domain.WeeklyScore, error)
}
