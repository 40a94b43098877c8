package core

import (
	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxTrackedWeeks is the nominal cycle length: the number of weeks that
// count toward an innermost's growth percentage. Additional weeks may still
// be played; they simply stop moving the percentage.
const MaxTrackedWeeks = 12

// Stats is the relationship-level summary derived from current state.
type Stats struct {
	PendingInnermosts int `json:"pendingInnermosts"`
	ActiveInnermosts  int `json:"activeInnermosts"`
	EndedInnermosts   int `json:"endedInnermosts"`

	// CompletedWeeks counts scored weeks across active innermosts.
	CompletedWeeks int `json:"completedWeeks"`

	// TotalScore is the cumulative sum of both partners' scores across
	// completed weeks of active innermosts.
	TotalScore int `json:"totalScore"`

	// GrowthPercent = CompletedWeeks / (active count * MaxTrackedWeeks),
	// rounded to the nearest integer and clamped to 100.
	GrowthPercent int `json:"growthPercent"`

	// NeedsAction counts active innermosts whose current week is waiting on
	// at least one partner.
	NeedsAction int `json:"needsAction"`
}

// Summarize folds over all of a user's innermosts, weekly documents, and
// score records and derives the summary statistics. It is a pure function
// with no side effects: recomputing it from current state is always safe
// and cheap, so the stats are never incrementally mutated anywhere.
func Summarize(innermosts []domain.Innermost, boxes []domain.WillingBox, scores []domain.WeeklyScore) Stats {
	var stats Stats

	active := make(map[primitive.ObjectID]bool, len(innermosts))
	for _, in := range innermosts {
		switch in.Status {
		case domain.InnermostPending:
			stats.PendingInnermosts++
		case domain.InnermostActive:
			stats.ActiveInnermosts++
			active[in.ID] = true
		case domain.InnermostEnded:
			stats.EndedInnermosts++
		}
	}

	scored := make(map[primitive.ObjectID]map[int]bool)
	for _, s := range scores {
		if !s.IsComplete || !active[s.InnermostID] {
			continue
		}
		stats.CompletedWeeks++
		stats.TotalScore += s.PartnerAScore + s.PartnerBScore
		if scored[s.InnermostID] == nil {
			scored[s.InnermostID] = make(map[int]bool)
		}
		scored[s.InnermostID][s.WeekNumber] = true
	}

	// Latest week per active innermost determines whether it needs action.
	latest := make(map[primitive.ObjectID]*domain.WillingBox, len(boxes))
	for i := range boxes {
		b := &boxes[i]
		if !active[b.InnermostID] {
			continue
		}
		if cur, ok := latest[b.InnermostID]; !ok || b.WeekNumber > cur.WeekNumber {
			latest[b.InnermostID] = b
		}
	}
	for id, b := range latest {
		if boxNeedsAction(b, scored[id][b.WeekNumber]) {
			stats.NeedsAction++
		}
	}

	stats.GrowthPercent = growthPercent(stats.CompletedWeeks, stats.ActiveInnermosts)
	return stats
}

// boxNeedsAction applies the per-phase rules: a week needs action while any
// partner still owes input for its current phase.
func boxNeedsAction(b *domain.WillingBox, weekScored bool) bool {
	switch b.Phase {
	case domain.PhasePlantingTrees:
		return len(b.WishesA) == 0 || len(b.WishesB) == 0
	case domain.PhaseSelectingWilling:
		return len(b.WillingA) == 0 || len(b.WillingB) == 0
	case domain.PhaseGuessing:
		return !weekScored
	}
	// Complete weeks never need action.
	return false
}

// growthPercent rounds to the nearest integer and clamps at 100 once more
// weeks are completed than the nominal cycle length. Zero active innermosts
// yields 0, never a division error.
func growthPercent(completedWeeks, activeCount int) int {
	if activeCount == 0 {
		return 0
	}
	denom := activeCount * MaxTrackedWeeks
	pct := (completedWeeks*100 + denom/2) / denom
	if pct > 100 {
		pct = 100
	}
	return pct
}
