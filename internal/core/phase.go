package core

import (
	"errors"
	"fmt"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
)

// --- Error Definitions ---
var (
	ErrPhaseMismatch     = errors.New("submission does not match the document's current phase")
	ErrAlreadySubmitted  = errors.New("partner already submitted for this phase")
	ErrDocumentClosed    = errors.New("weekly document is complete and closed to mutation")
	ErrNothingToRevise   = errors.New("no prior submission to revise for this phase")
	ErrInvalidSubmission = errors.New("invalid submission payload")
)

// Submission carries a partner's input for exactly one phase.
// Wishes is used in planting_trees; WishIDs in selecting_willing and guessing.
type Submission struct {
	Wishes  []domain.Wish
	WishIDs []string
}

// Apply validates that the submission is legal for the document's current
// phase and merges it into the partner's slot. It NEVER advances the phase;
// advancement is the Completion Detector's job (Evaluate), so the mutation
// and the transition stay independently testable and idempotent under retries.
//
// The input box is not modified; the merged copy is returned.
func Apply(box *domain.WillingBox, role domain.PartnerRole, phaseKind domain.Phase, sub Submission) (*domain.WillingBox, error) {
	if err := checkMutable(box, role, phaseKind); err != nil {
		return nil, err
	}
	if box.HasSubmitted(role, phaseKind) {
		return nil, ErrAlreadySubmitted
	}
	return merge(box, role, phaseKind, sub)
}

// Revise replaces a partner's existing submission for the current phase.
// It is the explicit counterpart of Apply: it requires a prior non-empty
// submission and is only valid while the document is still in that phase
// (once the Completion Detector has advanced past it, the input is locked in).
func Revise(box *domain.WillingBox, role domain.PartnerRole, phaseKind domain.Phase, sub Submission) (*domain.WillingBox, error) {
	if err := checkMutable(box, role, phaseKind); err != nil {
		return nil, err
	}
	if !box.HasSubmitted(role, phaseKind) {
		return nil, ErrNothingToRevise
	}
	return merge(box, role, phaseKind, sub)
}

// checkMutable enforces the guards shared by Apply and Revise.
func checkMutable(box *domain.WillingBox, role domain.PartnerRole, phaseKind domain.Phase) error {
	if box.Phase == domain.PhaseComplete {
		return ErrDocumentClosed
	}
	if !role.IsValid() {
		return fmt.Errorf("%w: unknown partner role %q", ErrInvalidSubmission, role)
	}
	if !phaseKind.IsValid() || phaseKind == domain.PhaseComplete {
		return fmt.Errorf("%w: %q is not a submittable phase", ErrInvalidSubmission, phaseKind)
	}
	if phaseKind != box.Phase {
		return fmt.Errorf("%w: document is in %q, submission targets %q", ErrPhaseMismatch, box.Phase, phaseKind)
	}
	return nil
}

// merge validates the payload against the phase it targets and writes it
// into the partner's slot on a copy of the document.
func merge(box *domain.WillingBox, role domain.PartnerRole, phaseKind domain.Phase, sub Submission) (*domain.WillingBox, error) {
	updated := box.Clone()

	switch phaseKind {
	case domain.PhasePlantingTrees:
		if err := validateWishes(sub.Wishes); err != nil {
			return nil, err
		}
		wishes := append([]domain.Wish(nil), sub.Wishes...)
		if role == domain.RoleA {
			updated.WishesA = wishes
		} else {
			updated.WishesB = wishes
		}

	case domain.PhaseSelectingWilling:
		// A partner selects from the OTHER partner's wish list.
		if err := validateSelection(sub.WishIDs, box.Wishes(role.Other())); err != nil {
			return nil, err
		}
		ids := append([]string(nil), sub.WishIDs...)
		if role == domain.RoleA {
			updated.WillingA = ids
		} else {
			updated.WillingB = ids
		}

	case domain.PhaseGuessing:
		// A partner guesses which of their OWN wishes the other selected.
		if err := validateSelection(sub.WishIDs, box.Wishes(role)); err != nil {
			return nil, err
		}
		ids := append([]string(nil), sub.WishIDs...)
		if role == domain.RoleA {
			updated.GuessA = ids
		} else {
			updated.GuessB = ids
		}
	}

	return updated, nil
}

// validateWishes rejects empty lists, blank items, and duplicate wish IDs.
func validateWishes(wishes []domain.Wish) error {
	if len(wishes) == 0 {
		return fmt.Errorf("%w: wish list is empty", ErrInvalidSubmission)
	}
	seen := make(map[string]struct{}, len(wishes))
	for _, w := range wishes {
		if w.ID == "" || w.Text == "" {
			return fmt.Errorf("%w: wish requires an id and text", ErrInvalidSubmission)
		}
		if w.Priority < 0 {
			return fmt.Errorf("%w: wish priority must be non-negative", ErrInvalidSubmission)
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("%w: duplicate wish id %q", ErrInvalidSubmission, w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	return nil
}

// validateSelection rejects empty selections, duplicates, and references to
// wish IDs that do not exist in the list being selected from.
func validateSelection(ids []string, from []domain.Wish) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: selection is empty", ErrInvalidSubmission)
	}
	known := make(map[string]struct{}, len(from))
	for _, w := range from {
		known[w.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: unknown wish id %q", ErrInvalidSubmission, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate wish id %q in selection", ErrInvalidSubmission, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
