package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Phase type for the weekly exercise lifecycle.
// The ordering is fixed and total: planting_trees -> selecting_willing -> guessing -> complete.
type Phase string

const (
	PhasePlantingTrees    Phase = "planting_trees"    // Both partners submit wish lists
	PhaseSelectingWilling Phase = "selecting_willing" // Both partners select what they are willing to do
	PhaseGuessing         Phase = "guessing"          // Both partners guess the other's selection
	PhaseComplete         Phase = "complete"          // Scored; immutable
)

// phaseOrder maps each phase to its position in the fixed sequence.
var phaseOrder = map[Phase]int{
	PhasePlantingTrees:    0,
	PhaseSelectingWilling: 1,
	PhaseGuessing:         2,
	PhaseComplete:         3,
}

// Before reports whether p comes strictly earlier than other in the phase sequence.
func (p Phase) Before(other Phase) bool {
	return phaseOrder[p] < phaseOrder[other]
}

// IsValid reports whether p is one of the four defined phases.
func (p Phase) IsValid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// PartnerRole identifies which slot of the pair a submission belongs to.
type PartnerRole string

const (
	RoleA PartnerRole = "A" // The inviter
	RoleB PartnerRole = "B" // The accepting partner
)

// Other returns the opposite partner slot.
func (r PartnerRole) Other() PartnerRole {
	if r == RoleA {
		return RoleB
	}
	return RoleA
}

func (r PartnerRole) IsValid() bool {
	return r == RoleA || r == RoleB
}

// Wish is a single item on a partner's wish list for the week.
type Wish struct {
	ID       string `bson:"id" json:"id"`
	Text     string `bson:"text" json:"text"`
	Priority int    `bson:"priority" json:"priority"` // 1 = most wanted
}

// WillingBox is the weekly exercise document: one per (innermost, week).
//
// Each partner writes only their own slots (WishesA vs WishesB and so on),
// so the two writers never conflict at the field level. The Phase field is a
// cache of DerivedPhase() and must never disagree with it; it exists so
// queries and mutation guards do not have to recompute the derivation.
//
// Selection semantics: WillingA selects from WishesB (what A is willing to
// do for B), and GuessA predicts WillingB (which of A's own wishes B picked).
type WillingBox struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InnermostID primitive.ObjectID `bson:"innermostId" json:"innermostId"`
	WeekNumber  int                `bson:"weekNumber" json:"weekNumber"`
	Phase       Phase              `bson:"phase" json:"phase"`

	WishesA []Wish `bson:"wishesA,omitempty" json:"wishesA,omitempty"`
	WishesB []Wish `bson:"wishesB,omitempty" json:"wishesB,omitempty"`

	WillingA []string `bson:"willingA,omitempty" json:"willingA,omitempty"` // Wish IDs from WishesB
	WillingB []string `bson:"willingB,omitempty" json:"willingB,omitempty"` // Wish IDs from WishesA

	GuessA []string `bson:"guessA,omitempty" json:"guessA,omitempty"` // A's prediction of WillingB
	GuessB []string `bson:"guessB,omitempty" json:"guessB,omitempty"` // B's prediction of WillingA

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DerivedPhase computes the phase purely from which per-partner sub-records
// are present. The stored Phase field caches this value.
func (b *WillingBox) DerivedPhase() Phase {
	if len(b.WishesA) == 0 || len(b.WishesB) == 0 {
		return PhasePlantingTrees
	}
	if len(b.WillingA) == 0 || len(b.WillingB) == 0 {
		return PhaseSelectingWilling
	}
	if len(b.GuessA) == 0 || len(b.GuessB) == 0 {
		return PhaseGuessing
	}
	return PhaseComplete
}

// Wishes returns the wish list submitted by the given partner.
func (b *WillingBox) Wishes(role PartnerRole) []Wish {
	if role == RoleA {
		return b.WishesA
	}
	return b.WishesB
}

// Willing returns the willingness selection submitted by the given partner.
func (b *WillingBox) Willing(role PartnerRole) []string {
	if role == RoleA {
		return b.WillingA
	}
	return b.WillingB
}

// Guess returns the guess submitted by the given partner.
func (b *WillingBox) Guess(role PartnerRole) []string {
	if role == RoleA {
		return b.GuessA
	}
	return b.GuessB
}

// HasSubmitted reports whether the given partner already has non-empty
// input for the given phase.
func (b *WillingBox) HasSubmitted(role PartnerRole, phase Phase) bool {
	switch phase {
	case PhasePlantingTrees:
		return len(b.Wishes(role)) > 0
	case PhaseSelectingWilling:
		return len(b.Willing(role)) > 0
	case PhaseGuessing:
		return len(b.Guess(role)) > 0
	}
	return false
}

// Clone returns a deep copy of the box. Mutation helpers operate on copies
// so callers keep an unmodified view of the loaded document.
func (b *WillingBox) Clone() *WillingBox {
	c := *b
	c.WishesA = append([]Wish(nil), b.WishesA...)
	c.WishesB = append([]Wish(nil), b.WishesB...)
	c.WillingA = append([]string(nil), b.WillingA...)
	c.WillingB = append([]string(nil), b.WillingB...)
	c.GuessA = append([]string(nil), b.GuessA...)
	c.GuessB = append([]string(nil), b.GuessB...)
	return &c
}
