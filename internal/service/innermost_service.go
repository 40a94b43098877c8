package service

import (
	"context"
	"errors"
	"strings"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInnermostNotFound     = errors.New("innermost not found")
	ErrInnermostLimitReached = errors.New("active innermost limit reached for this subscription")
	ErrNotInnermostMember    = errors.New("user is not part of this innermost")
	ErrInnermostNotPending   = errors.New("innermost is not awaiting acceptance")
	ErrCannotInviteSelf      = errors.New("cannot invite yourself")
	ErrInviteAlreadyPending  = errors.New("an invitation to this email is already pending")
	ErrNotInvitee            = errors.New("this invitation is addressed to a different email")
)

// InnermostService manages the relationship-pair lifecycle:
// invite -> accept -> (weekly cycles) -> end.
type InnermostService interface {
	Invite(ctx context.Context, inviterID primitive.ObjectID, partnerEmail string) (*domain.Innermost, error)
	Accept(ctx context.Context, userID, innermostID primitive.ObjectID) (*domain.Innermost, error)
	End(ctx context.Context, userID, innermostID primitive.ObjectID) error
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Innermost, error)
}

// --- Service Implementation ---

type innermostService struct {
	innermostRepo repository.InnermostRepository
	boxRepo       repository.WillingBoxRepository
	userRepo      repository.UserRepository
	gate          CapabilityGate
}

// NewInnermostService creates a new instance of innermostService.
func NewInnermostService(
	innermostRepo repository.InnermostRepository,
	boxRepo repository.WillingBoxRepository,
	userRepo repository.UserRepository,
	gate CapabilityGate,
) InnermostService {
	return &innermostService{
		innermostRepo: innermostRepo,
		boxRepo:       boxRepo,
		userRepo:      userRepo,
		gate:          gate,
	}
}

// Invite creates a pending innermost addressed to the partner's email.
// The capability gate is consulted before creation; the invitee does not
// need an account yet.
func (s *innermostService) Invite(ctx context.Context, inviterID primitive.ObjectID, partnerEmail string) (*domain.Innermost, error) {
	// 1. Validate inputs
	partnerEmail = strings.ToLower(strings.TrimSpace(partnerEmail))
	if inviterID == primitive.NilObjectID || partnerEmail == "" {
		return nil, errors.New("inviter ID and partner email are required")
	}

	inviter, err := s.userRepo.GetByID(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(inviter.Email, partnerEmail) {
		return nil, ErrCannotInviteSelf
	}

	// 2. Capability gate: subscription bounds concurrent active innermosts
	maxActive, err := s.gate.MaxActiveInnermosts(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	activeCount, err := s.innermostRepo.CountActiveByUser(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	if activeCount >= maxActive {
		return nil, ErrInnermostLimitReached
	}

	// 3. Reject a duplicate pending invitation to the same email
	existing, err := s.innermostRepo.GetByUser(ctx, inviterID, inviter.Email)
	if err != nil {
		return nil, err
	}
	for _, in := range existing {
		if in.Status == domain.InnermostPending && in.InviterID == inviterID &&
			strings.EqualFold(in.PartnerEmail, partnerEmail) {
			return nil, ErrInviteAlreadyPending
		}
	}

	// 4. Create the pending pair
	innermost := &domain.Innermost{
		InviterID:    inviterID,
		PartnerEmail: partnerEmail,
		Status:       domain.InnermostPending,
	}
	id, err := s.innermostRepo.Create(ctx, innermost)
	if err != nil {
		return nil, err
	}
	innermost.ID = id

	return innermost, nil
}

// Accept activates a pending innermost. The accepting user must own the
// invited email address; acceptance creates the first week's document.
func (s *innermostService) Accept(ctx context.Context, userID, innermostID primitive.ObjectID) (*domain.Innermost, error) {
	innermost, err := s.innermostRepo.GetByID(ctx, innermostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInnermostNotFound
		}
		return nil, err
	}
	if innermost.Status != domain.InnermostPending {
		return nil, ErrInnermostNotPending
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, innermost.PartnerEmail) {
		return nil, ErrNotInvitee
	}

	if err := s.innermostRepo.Activate(ctx, innermostID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Another accept won the race; the pair is already active.
			return nil, ErrInnermostNotPending
		}
		return nil, err
	}
	innermost.PartnerID = &userID
	innermost.Status = domain.InnermostActive

	// Week 1 starts immediately.
	box := &domain.WillingBox{
		InnermostID: innermostID,
		WeekNumber:  1,
		Phase:       domain.PhasePlantingTrees,
	}
	if _, err := s.boxRepo.Create(ctx, box); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}

	return innermost, nil
}

// End archives an innermost. The inviter may withdraw a pending invitation;
// either partner may end an active pair. Ended pairs start no new weeks.
func (s *innermostService) End(ctx context.Context, userID, innermostID primitive.ObjectID) error {
	innermost, err := s.innermostRepo.GetByID(ctx, innermostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInnermostNotFound
		}
		return err
	}
	if _, ok := innermost.RoleOf(userID); !ok {
		return ErrNotInnermostMember
	}
	if innermost.Status == domain.InnermostEnded {
		return nil // Already ended; nothing to do
	}

	return s.innermostRepo.SetStatus(ctx, innermostID, domain.InnermostEnded)
}

// List returns every innermost the user participates in, including pending
// invitations addressed to their email.
func (s *innermostService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Innermost, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.innermostRepo.GetByUser(ctx, userID, user.Email)
}
