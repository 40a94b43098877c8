package core

import (
	"testing"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
)

func TestEvaluate_PerPhaseCompletion(t *testing.T) {
	tests := []struct {
		name         string
		box          *domain.WillingBox
		scoreExists  bool
		wantAdvanced bool
		wantPhase    domain.Phase
	}{
		{
			name:         "planting incomplete with one list",
			box:          &domain.WillingBox{Phase: domain.PhasePlantingTrees, WishesA: wishes("a1")},
			wantAdvanced: false,
			wantPhase:    domain.PhasePlantingTrees,
		},
		{
			name: "planting completes with both lists",
			box: &domain.WillingBox{
				Phase:   domain.PhasePlantingTrees,
				WishesA: wishes("a1"),
				WishesB: wishes("b1"),
			},
			wantAdvanced: true,
			wantPhase:    domain.PhaseSelectingWilling,
		},
		{
			name: "selecting completes with both selections",
			box: &domain.WillingBox{
				Phase:    domain.PhaseSelectingWilling,
				WishesA:  wishes("a1"),
				WishesB:  wishes("b1"),
				WillingA: []string{"b1"},
				WillingB: []string{"a1"},
			},
			wantAdvanced: true,
			wantPhase:    domain.PhaseGuessing,
		},
		{
			name: "guessing completes without a score record",
			box: &domain.WillingBox{
				Phase:    domain.PhaseGuessing,
				WishesA:  wishes("a1"),
				WishesB:  wishes("b1"),
				WillingA: []string{"b1"},
				WillingB: []string{"a1"},
				GuessA:   []string{"a1"},
				GuessB:   []string{"b1"},
			},
			wantAdvanced: true,
			wantPhase:    domain.PhaseComplete,
		},
		{
			name: "guessing blocked by existing score record",
			box: &domain.WillingBox{
				Phase:    domain.PhaseGuessing,
				WishesA:  wishes("a1"),
				WishesB:  wishes("b1"),
				WillingA: []string{"b1"},
				WillingB: []string{"a1"},
				GuessA:   []string{"a1"},
				GuessB:   []string{"b1"},
			},
			scoreExists:  true,
			wantAdvanced: false,
			wantPhase:    domain.PhaseGuessing,
		},
		{
			name:         "complete document is a no-op",
			box:          &domain.WillingBox{Phase: domain.PhaseComplete},
			wantAdvanced: false,
			wantPhase:    domain.PhaseComplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advanced, newPhase := Evaluate(tt.box, tt.scoreExists)
			if advanced != tt.wantAdvanced || newPhase != tt.wantPhase {
				t.Errorf("Evaluate() = (%v, %q), want (%v, %q)", advanced, newPhase, tt.wantAdvanced, tt.wantPhase)
			}
		})
	}
}

// Evaluate must yield identical results on repeated invocation; completion
// is re-checked redundantly by independent writers.
func TestEvaluate_Idempotent(t *testing.T) {
	box := &domain.WillingBox{
		Phase:   domain.PhasePlantingTrees,
		WishesA: wishes("a1"),
		WishesB: wishes("b1"),
	}

	a1, p1 := Evaluate(box, false)
	a2, p2 := Evaluate(box, false)
	if a1 != a2 || p1 != p2 {
		t.Errorf("Evaluate() not idempotent: (%v,%q) then (%v,%q)", a1, p1, a2, p2)
	}
}

// The detector depends only on the union of committed state, never on
// which partner's submission was observed last.
func TestEvaluate_OrderIndependent(t *testing.T) {
	base := func() *domain.WillingBox {
		return &domain.WillingBox{Phase: domain.PhasePlantingTrees}
	}

	// A then B
	first := base()
	var err error
	first, err = Apply(first, domain.RoleA, domain.PhasePlantingTrees, Submission{Wishes: wishes("a1")})
	if err != nil {
		t.Fatal(err)
	}
	if advanced, _ := Evaluate(first, false); advanced {
		t.Fatal("advanced with only one wish list")
	}
	first, err = Apply(first, domain.RoleB, domain.PhasePlantingTrees, Submission{Wishes: wishes("b1")})
	if err != nil {
		t.Fatal(err)
	}
	_, phaseAB := Evaluate(first, false)

	// B then A
	second := base()
	second, err = Apply(second, domain.RoleB, domain.PhasePlantingTrees, Submission{Wishes: wishes("b1")})
	if err != nil {
		t.Fatal(err)
	}
	second, err = Apply(second, domain.RoleA, domain.PhasePlantingTrees, Submission{Wishes: wishes("a1")})
	if err != nil {
		t.Fatal(err)
	}
	_, phaseBA := Evaluate(second, false)

	if phaseAB != phaseBA {
		t.Errorf("order-dependent result: A-then-B = %q, B-then-A = %q", phaseAB, phaseBA)
	}
}
