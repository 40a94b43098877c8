package service

import (
	"context"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/core"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsService derives relationship-level summary statistics. Stats are
// always recomputed from current state by the pure Aggregator fold, never
// incrementally mutated, so they can never drift.
type StatsService interface {
	Summary(ctx context.Context, userID primitive.ObjectID) (core.Stats, error)
}

// --- Service Implementation ---

type statsService struct {
	userRepo      repository.UserRepository
	innermostRepo repository.InnermostRepository
	boxRepo       repository.WillingBoxRepository
	scoreRepo     repository.ScoreRepository
}

// NewStatsService creates a new instance of statsService.
func NewStatsService(
	userRepo repository.UserRepository,
	innermostRepo repository.InnermostRepository,
	boxRepo repository.WillingBoxRepository,
	scoreRepo repository.ScoreRepository,
) StatsService {
	return &statsService{
		userRepo:      userRepo,
		innermostRepo: innermostRepo,
		boxRepo:       boxRepo,
		scoreRepo:     scoreRepo,
	}
}

// Summary loads all of the user's innermosts with their weekly documents
// and score records and folds them into Stats.
func (s *statsService) Summary(ctx context.Context, userID primitive.ObjectID) (core.Stats, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return core.Stats{}, err
	}

	innermosts, err := s.innermostRepo.GetByUser(ctx, userID, user.Email)
	if err != nil {
		return core.Stats{}, err
	}

	var boxes []domain.WillingBox
	var scores []domain.WeeklyScore
	for _, in := range innermosts {
		b, err := s.boxRepo.GetAllByInnermost(ctx, in.ID)
		if err != nil {
			return core.Stats{}, err
		}
		boxes = append(boxes, b...)

		sc, err := s.scoreRepo.GetAllByInnermost(ctx, in.ID)
		if err != nil {
			return core.Stats{}, err
		}
		scores = append(scores, sc...)
	}

	return core.Summarize(innermosts, boxes, scores), nil
}
