package service

import (
	"context"
	"errors"
	"log"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/core"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInnermostNotActive = errors.New("innermost is not active")
	ErrWeekNotFound       = errors.New("no weekly document for this week")
	ErrScoreNotFound      = errors.New("week has not been scored yet")
)

// WishInput is a single wish as submitted by a partner. IDs are assigned
// here; priority defaults to list order when absent.
type WishInput struct {
	Text     string `json:"text"`
	Priority int    `json:"priority"`
}

// WeekService orchestrates the weekly workflow: it authorizes the acting
// partner, applies the mutation through the Phase Engine, persists the
// partner's slot, re-runs the Completion Detector, and triggers the Scoring
// Engine when the final phase completes. All storage failures propagate
// unchanged; retries belong to the storage layer.
type WeekService interface {
	GetBox(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int) (*domain.WillingBox, error)
	GetCurrentBox(ctx context.Context, userID, innermostID primitive.ObjectID) (*domain.WillingBox, error)

	SubmitWishes(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishes []WishInput) (*domain.WillingBox, error)
	ReviseWishes(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishes []WishInput) (*domain.WillingBox, error)
	SubmitWilling(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishIDs []string) (*domain.WillingBox, error)
	ReviseWilling(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishIDs []string) (*domain.WillingBox, error)
	SubmitGuess(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishIDs []string) (*domain.WillingBox, error)

	GetScore(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int) (*domain.WeeklyScore, error)

	// RoleOf resolves which partner slot the user occupies in the pair.
	RoleOf(ctx context.Context, userID, innermostID primitive.ObjectID) (domain.PartnerRole, error)
}

// --- Service Implementation ---

type weekService struct {
	innermostRepo repository.InnermostRepository
	boxRepo       repository.WillingBoxRepository
	scoreRepo     repository.ScoreRepository
	match         core.MatchFunc
}

// NewWeekService creates a new instance of weekService. The match function
// is the pluggable scoring policy; nil falls back to core.MatchByCount.
func NewWeekService(
	innermostRepo repository.InnermostRepository,
	boxRepo repository.WillingBoxRepository,
	scoreRepo repository.ScoreRepository,
	match core.MatchFunc,
) WeekService {
	if match == nil {
		match = core.MatchByCount
	}
	return &weekService{
		innermostRepo: innermostRepo,
		boxRepo:       boxRepo,
		scoreRepo:     scoreRepo,
		match:         match,
	}
}

// === Readers ===

// GetBox retrieves a specific week's document for a member of the pair.
func (s *weekService) GetBox(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int) (*domain.WillingBox, error) {
	if _, _, err := s.authorize(ctx, userID, innermostID, false); err != nil {
		return nil, err
	}
	box, err := s.boxRepo.GetByInnermostAndWeek(ctx, innermostID, weekNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWeekNotFound
		}
		return nil, err
	}
	return box, nil
}

// GetCurrentBox retrieves the latest week's document.
func (s *weekService) GetCurrentBox(ctx context.Context, userID, innermostID primitive.ObjectID) (*domain.WillingBox, error) {
	if _, _, err := s.authorize(ctx, userID, innermostID, false); err != nil {
		return nil, err
	}
	box, err := s.boxRepo.GetLatestByInnermost(ctx, innermostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWeekNotFound
		}
		return nil, err
	}
	return box, nil
}

// GetScore retrieves the finalized score record for a week.
func (s *weekService) GetScore(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int) (*domain.WeeklyScore, error) {
	if _, _, err := s.authorize(ctx, userID, innermostID, false); err != nil {
		return nil, err
	}
	score, err := s.scoreRepo.GetByInnermostAndWeek(ctx, innermostID, weekNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScoreNotFound
		}
		return nil, err
	}
	return score, nil
}

// RoleOf resolves the caller's partner slot within the innermost.
func (s *weekService) RoleOf(ctx context.Context, userID, innermostID primitive.ObjectID) (domain.PartnerRole, error) {
	_, role, err := s.authorize(ctx, userID, innermostID, false)
	return role, err
}

// === Mutations ===

// SubmitWishes plants the partner's tree for the week.
func (s *weekService) SubmitWishes(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishes []WishInput) (*domain.WillingBox, error) {
	return s.mutate(ctx, userID, innermostID, weekNumber, domain.PhasePlantingTrees, buildWishes(wishes), false)
}

// ReviseWishes replaces an already-submitted wish list while the week is
// still in planting_trees. A plain resubmission is rejected by Apply;
// revision is its own explicitly-validated operation.
func (s *weekService) ReviseWishes(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishes []WishInput) (*domain.WillingBox, error) {
	return s.mutate(ctx, userID, innermostID, weekNumber, domain.PhasePlantingTrees, buildWishes(wishes), true)
}

// SubmitWilling records which of the partner's wishes the caller is willing to act on.
func (s *weekService) SubmitWilling(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishIDs []string) (*domain.WillingBox, error) {
	return s.mutate(ctx, userID, innermostID, weekNumber, domain.PhaseSelectingWilling, core.Submission{WishIDs: wishIDs}, false)
}

// ReviseWilling replaces an already-submitted willingness selection while
// the week is still in selecting_willing.
func (s *weekService) ReviseWilling(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishIDs []string) (*domain.WillingBox, error) {
	return s.mutate(ctx, userID, innermostID, weekNumber, domain.PhaseSelectingWilling, core.Submission{WishIDs: wishIDs}, true)
}

// SubmitGuess records the caller's prediction of the partner's selection.
// Guesses cannot be revised: they are the scored commitment.
func (s *weekService) SubmitGuess(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, wishIDs []string) (*domain.WillingBox, error) {
	return s.mutate(ctx, userID, innermostID, weekNumber, domain.PhaseGuessing, core.Submission{WishIDs: wishIDs}, false)
}

// === Internals ===

// authorize loads the innermost and resolves the caller's partner slot.
// Mutations additionally require the pair to be active; readers work on
// ended pairs so history stays visible.
func (s *weekService) authorize(ctx context.Context, userID, innermostID primitive.ObjectID, requireActive bool) (*domain.Innermost, domain.PartnerRole, error) {
	innermost, err := s.innermostRepo.GetByID(ctx, innermostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInnermostNotFound
		}
		return nil, "", err
	}
	role, ok := innermost.RoleOf(userID)
	if !ok {
		return nil, "", ErrNotInnermostMember
	}
	if requireActive && !innermost.IsActive() {
		return nil, "", ErrInnermostNotActive
	}
	return innermost, role, nil
}

// mutate runs one partner action through the full pipeline:
// validate (Phase Engine) -> persist slot -> re-evaluate (Completion
// Detector) -> advance -> score (Scoring Engine) on the final transition.
func (s *weekService) mutate(ctx context.Context, userID, innermostID primitive.ObjectID, weekNumber int, phaseKind domain.Phase, sub core.Submission, revise bool) (*domain.WillingBox, error) {
	_, role, err := s.authorize(ctx, userID, innermostID, true)
	if err != nil {
		return nil, err
	}

	box, err := s.boxRepo.GetByInnermostAndWeek(ctx, innermostID, weekNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWeekNotFound
		}
		return nil, err
	}

	// 1. Pure validation + merge. The engine never advances the phase.
	var updated *domain.WillingBox
	if revise {
		updated, err = core.Revise(box, role, phaseKind, sub)
	} else {
		updated, err = core.Apply(box, role, phaseKind, sub)
	}
	if err != nil {
		return nil, err
	}

	// 2. Persist only the acting partner's slot. The two partners write
	// disjoint keys, so concurrent submissions never collide.
	switch phaseKind {
	case domain.PhasePlantingTrees:
		err = s.boxRepo.SaveWishes(ctx, box.ID, role, updated.Wishes(role))
	case domain.PhaseSelectingWilling:
		err = s.boxRepo.SaveWilling(ctx, box.ID, role, updated.Willing(role))
	case domain.PhaseGuessing:
		err = s.boxRepo.SaveGuess(ctx, box.ID, role, updated.Guess(role))
	}
	if err != nil {
		return nil, err
	}

	// 3. Re-evaluate completion from the union of committed state.
	return s.evaluateAndAdvance(ctx, updated)
}

// evaluateAndAdvance re-derives the phase, persists an advance, and runs
// the Scoring Engine when the week reaches complete. Safe to call
// redundantly: Evaluate and Score are both idempotent.
func (s *weekService) evaluateAndAdvance(ctx context.Context, box *domain.WillingBox) (*domain.WillingBox, error) {
	existing, err := s.scoreRepo.GetByInnermostAndWeek(ctx, box.InnermostID, box.WeekNumber)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	advanced, newPhase := core.Evaluate(box, existing != nil && existing.IsComplete)
	if !advanced {
		return box, nil
	}

	if newPhase == domain.PhaseComplete {
		record, err := core.Score(box, existing, s.match)
		if err != nil {
			// Integrity violation between detector and scorer; surface loudly.
			log.Printf("ERROR: scoring week %d of innermost %s: %v", box.WeekNumber, box.InnermostID.Hex(), err)
			return nil, err
		}
		if record != existing {
			if _, err := s.scoreRepo.Create(ctx, record); err != nil {
				// A concurrent writer scored first; both computed the same
				// result, so the week is finalized either way.
				if !errors.Is(err, repository.ErrDuplicate) {
					return nil, err
				}
			}
		}
	}

	if err := s.boxRepo.UpdatePhase(ctx, box.ID, newPhase); err != nil {
		return nil, err
	}
	box.Phase = newPhase

	if newPhase == domain.PhaseComplete {
		if err := s.startNextWeek(ctx, box); err != nil {
			return nil, err
		}
	}

	return box, nil
}

// startNextWeek opens the following week's document once the current week
// is scored. Weeks beyond the tracked cycle are still created; they simply
// stop counting toward the growth percentage.
func (s *weekService) startNextWeek(ctx context.Context, completed *domain.WillingBox) error {
	next := &domain.WillingBox{
		InnermostID: completed.InnermostID,
		WeekNumber:  completed.WeekNumber + 1,
		Phase:       domain.PhasePlantingTrees,
	}
	if _, err := s.boxRepo.Create(ctx, next); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	return nil
}

// buildWishes assigns IDs and default priorities to raw wish input.
func buildWishes(inputs []WishInput) core.Submission {
	wishes := make([]domain.Wish, 0, len(inputs))
	for i, in := range inputs {
		priority := in.Priority
		if priority == 0 {
			priority = i + 1 // List order is the default priority
		}
		wishes = append(wishes, domain.Wish{
			ID:       uuid.NewString(),
			Text:     in.Text,
			Priority: priority,
		})
	}
	return core.Submission{Wishes: wishes}
}
