package service

import (
	"context"
	"testing"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
)

func TestStatsService_Summary(t *testing.T) {
	ctx := context.Background()

	userRepo := newFakeUserRepo()
	innermostRepo := newFakeInnermostRepo()
	boxRepo := newFakeBoxRepo()
	scoreRepo := newFakeScoreRepo()

	userID, err := userRepo.Create(ctx, &domain.User{Name: "Alex", Email: "alex@example.com", Tier: domain.TierFree})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	partnerID, err := userRepo.Create(ctx, &domain.User{Name: "Blair", Email: "blair@example.com", Tier: domain.TierFree})
	if err != nil {
		t.Fatalf("creating partner: %v", err)
	}

	innermostID, err := innermostRepo.Create(ctx, &domain.Innermost{
		InviterID:    userID,
		PartnerID:    &partnerID,
		PartnerEmail: "blair@example.com",
		Status:       domain.InnermostActive,
	})
	if err != nil {
		t.Fatalf("creating innermost: %v", err)
	}

	// Week 1 scored, week 2 in flight.
	if _, err := boxRepo.Create(ctx, &domain.WillingBox{
		InnermostID: innermostID, WeekNumber: 1, Phase: domain.PhaseComplete,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := boxRepo.Create(ctx, &domain.WillingBox{
		InnermostID: innermostID, WeekNumber: 2, Phase: domain.PhasePlantingTrees,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := scoreRepo.Create(ctx, &domain.WeeklyScore{
		InnermostID: innermostID, WeekNumber: 1, PartnerAScore: 2, PartnerBScore: 3, IsComplete: true,
	}); err != nil {
		t.Fatal(err)
	}

	svc := NewStatsService(userRepo, innermostRepo, boxRepo, scoreRepo)
	stats, err := svc.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if stats.ActiveInnermosts != 1 {
		t.Errorf("ActiveInnermosts = %d, want 1", stats.ActiveInnermosts)
	}
	if stats.CompletedWeeks != 1 {
		t.Errorf("CompletedWeeks = %d, want 1", stats.CompletedWeeks)
	}
	if stats.TotalScore != 5 {
		t.Errorf("TotalScore = %d, want 5", stats.TotalScore)
	}
	if stats.GrowthPercent != 8 { // 1/12 rounded
		t.Errorf("GrowthPercent = %d, want 8", stats.GrowthPercent)
	}
	if stats.NeedsAction != 1 {
		t.Errorf("NeedsAction = %d, want 1", stats.NeedsAction)
	}
}
