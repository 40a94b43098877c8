package core

import (
	"errors"
	"fmt"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
)

// ErrIncompleteScoringInput indicates a data-integrity violation: the phase
// reports guessing complete but a guess or willingness slot is missing.
// Callers must surface this loudly, never swallow it into a partial score.
var ErrIncompleteScoringInput = errors.New("incomplete scoring input: guess or willingness data missing")

// MatchFunc is the pluggable scoring policy. It compares a partner's guess
// against the other partner's actual willingness selection; wishes is the
// wish list both refer to, so policies can weight matches by priority.
type MatchFunc func(guess, actual []string, wishes []domain.Wish) int

// MatchByCount scores one point per correctly guessed selection.
func MatchByCount(guess, actual []string, _ []domain.Wish) int {
	actualSet := make(map[string]struct{}, len(actual))
	for _, id := range actual {
		actualSet[id] = struct{}{}
	}
	score := 0
	for _, id := range guess {
		if _, ok := actualSet[id]; ok {
			score++
		}
	}
	return score
}

// MatchByPriority weights each correct guess by the wish's priority, so
// guessing the most-wanted items right counts for more. A wish with
// priority 1 in a list of n contributes n points, the last contributes 1.
func MatchByPriority(guess, actual []string, wishes []domain.Wish) int {
	weight := make(map[string]int, len(wishes))
	for _, w := range wishes {
		v := len(wishes) - w.Priority + 1
		if v < 1 {
			v = 1
		}
		weight[w.ID] = v
	}
	actualSet := make(map[string]struct{}, len(actual))
	for _, id := range actual {
		actualSet[id] = struct{}{}
	}
	score := 0
	for _, id := range guess {
		if _, ok := actualSet[id]; ok {
			score += weight[id]
		}
	}
	return score
}

// Score computes both partners' scores for a week whose guessing phase has
// completed and returns the finalized record.
//
// It is idempotent: identical input always yields an identical record, and
// if a complete record already exists it is returned unchanged — Score does
// not assume it is the only invoker, so it short-circuits itself rather
// than relying solely on the Completion Detector's guard.
//
// Partner A's score compares A's guess against B's actual willingness
// selection; both reference A's wish list (B selects from A's wishes).
func Score(box *domain.WillingBox, existing *domain.WeeklyScore, match MatchFunc) (*domain.WeeklyScore, error) {
	if existing != nil && existing.IsComplete {
		return existing, nil
	}
	if match == nil {
		match = MatchByCount
	}

	// Both guesses and both willingness selections must be present; anything
	// less means the detector and the scorer have become inconsistent.
	if len(box.WishesA) == 0 || len(box.WishesB) == 0 ||
		len(box.WillingA) == 0 || len(box.WillingB) == 0 ||
		len(box.GuessA) == 0 || len(box.GuessB) == 0 {
		return nil, fmt.Errorf("%w (innermost %s week %d)",
			ErrIncompleteScoringInput, box.InnermostID.Hex(), box.WeekNumber)
	}

	// ID and ScoredAt are assigned by the repository on insert, so the
	// computation itself stays deterministic.
	return &domain.WeeklyScore{
		InnermostID:   box.InnermostID,
		WeekNumber:    box.WeekNumber,
		PartnerAScore: match(box.GuessA, box.WillingB, box.WishesA),
		PartnerBScore: match(box.GuessB, box.WillingA, box.WishesB),
		IsComplete:    true,
	}, nil
}
