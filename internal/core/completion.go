package core

import (
	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
)

// Evaluate determines whether the document's phase should advance, purely
// from the union of committed per-partner state. It depends only on which
// sub-records are present, never on arrival order, so two unsynchronized
// writers re-checking completion always reach the same answer.
//
// scoreExists guards the guessing -> complete transition: once a score
// record exists for the week, Evaluate reports no advancement so scoring is
// never re-triggered by redundant re-evaluation.
//
// Evaluate is idempotent: calling it on an already-advanced or complete
// document is a no-op.
func Evaluate(box *domain.WillingBox, scoreExists bool) (advanced bool, newPhase domain.Phase) {
	derived := box.DerivedPhase()
	if !box.Phase.Before(derived) {
		return false, box.Phase
	}
	if derived == domain.PhaseComplete && scoreExists {
		// Both guesses are in but the week is already scored; the phase
		// cache is finalized by whoever persisted the score.
		return false, box.Phase
	}
	return true, derived
}
