package service

import (
	"context"
	"time"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the storage layer's contract,
// including the unique-index behavior: duplicate (innermostId, weekNumber)
// inserts fail with repository.ErrDuplicate, and Activate only matches a
// still-pending document.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	u := *user
	u.ID = id
	r.users[id] = &u
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) SetPhotoObjectKey(_ context.Context, id primitive.ObjectID, objectKey string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PhotoObjectKey = objectKey
	return nil
}

func (r *fakeUserRepo) SetTier(_ context.Context, id primitive.ObjectID, tier domain.SubscriptionTier) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Tier = tier
	return nil
}

type fakeInnermostRepo struct {
	innermosts map[primitive.ObjectID]*domain.Innermost
}

func newFakeInnermostRepo() *fakeInnermostRepo {
	return &fakeInnermostRepo{innermosts: make(map[primitive.ObjectID]*domain.Innermost)}
}

func (r *fakeInnermostRepo) Create(_ context.Context, innermost *domain.Innermost) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	in := *innermost
	in.ID = id
	r.innermosts[id] = &in
	return id, nil
}

func (r *fakeInnermostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Innermost, error) {
	in, ok := r.innermosts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return in, nil
}

func (r *fakeInnermostRepo) GetByUser(_ context.Context, userID primitive.ObjectID, email string) ([]domain.Innermost, error) {
	var out []domain.Innermost
	for _, in := range r.innermosts {
		member := in.InviterID == userID ||
			(in.PartnerID != nil && *in.PartnerID == userID) ||
			(in.Status == domain.InnermostPending && in.PartnerEmail == email)
		if member {
			out = append(out, *in)
		}
	}
	return out, nil
}

func (r *fakeInnermostRepo) CountActiveByUser(_ context.Context, userID primitive.ObjectID) (int, error) {
	count := 0
	for _, in := range r.innermosts {
		if in.Status != domain.InnermostActive {
			continue
		}
		if in.InviterID == userID || (in.PartnerID != nil && *in.PartnerID == userID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeInnermostRepo) Activate(_ context.Context, id, partnerID primitive.ObjectID) error {
	in, ok := r.innermosts[id]
	if !ok || in.Status != domain.InnermostPending {
		return repository.ErrNotFound
	}
	pid := partnerID
	in.PartnerID = &pid
	in.Status = domain.InnermostActive
	return nil
}

func (r *fakeInnermostRepo) SetStatus(_ context.Context, id primitive.ObjectID, status domain.InnermostStatus) error {
	in, ok := r.innermosts[id]
	if !ok {
		return repository.ErrNotFound
	}
	in.Status = status
	return nil
}

type fakeBoxRepo struct {
	boxes map[primitive.ObjectID]*domain.WillingBox
}

func newFakeBoxRepo() *fakeBoxRepo {
	return &fakeBoxRepo{boxes: make(map[primitive.ObjectID]*domain.WillingBox)}
}

func (r *fakeBoxRepo) Create(_ context.Context, box *domain.WillingBox) (primitive.ObjectID, error) {
	for _, b := range r.boxes {
		if b.InnermostID == box.InnermostID && b.WeekNumber == box.WeekNumber {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	b := *box.Clone()
	b.ID = id
	r.boxes[id] = &b
	return id, nil
}

func (r *fakeBoxRepo) GetByInnermostAndWeek(_ context.Context, innermostID primitive.ObjectID, weekNumber int) (*domain.WillingBox, error) {
	for _, b := range r.boxes {
		if b.InnermostID == innermostID && b.WeekNumber == weekNumber {
			return b.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBoxRepo) GetLatestByInnermost(_ context.Context, innermostID primitive.ObjectID) (*domain.WillingBox, error) {
	var latest *domain.WillingBox
	for _, b := range r.boxes {
		if b.InnermostID != innermostID {
			continue
		}
		if latest == nil || b.WeekNumber > latest.WeekNumber {
			latest = b
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest.Clone(), nil
}

func (r *fakeBoxRepo) GetAllByInnermost(_ context.Context, innermostID primitive.ObjectID) ([]domain.WillingBox, error) {
	var out []domain.WillingBox
	for _, b := range r.boxes {
		if b.InnermostID == innermostID {
			out = append(out, *b.Clone())
		}
	}
	return out, nil
}

func (r *fakeBoxRepo) SaveWishes(_ context.Context, id primitive.ObjectID, role domain.PartnerRole, wishes []domain.Wish) error {
	b, ok := r.boxes[id]
	if !ok {
		return repository.ErrNotFound
	}
	if role == domain.RoleA {
		b.WishesA = wishes
	} else {
		b.WishesB = wishes
	}
	return nil
}

func (r *fakeBoxRepo) SaveWilling(_ context.Context, id primitive.ObjectID, role domain.PartnerRole, wishIDs []string) error {
	b, ok := r.boxes[id]
	if !ok {
		return repository.ErrNotFound
	}
	if role == domain.RoleA {
		b.WillingA = wishIDs
	} else {
		b.WillingB = wishIDs
	}
	return nil
}

func (r *fakeBoxRepo) SaveGuess(_ context.Context, id primitive.ObjectID, role domain.PartnerRole, wishIDs []string) error {
	b, ok := r.boxes[id]
	if !ok {
		return repository.ErrNotFound
	}
	if role == domain.RoleA {
		b.GuessA = wishIDs
	} else {
		b.GuessB = wishIDs
	}
	return nil
}

func (r *fakeBoxRepo) UpdatePhase(_ context.Context, id primitive.ObjectID, phase domain.Phase) error {
	b, ok := r.boxes[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Phase = phase
	return nil
}

type fakeScoreRepo struct {
	scores map[primitive.ObjectID]*domain.WeeklyScore
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{scores: make(map[primitive.ObjectID]*domain.WeeklyScore)}
}

func (r *fakeScoreRepo) Create(_ context.Context, score *domain.WeeklyScore) (primitive.ObjectID, error) {
	for _, s := range r.scores {
		if s.InnermostID == score.InnermostID && s.WeekNumber == score.WeekNumber {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	s := *score
	s.ID = id
	s.ScoredAt = time.Now().UTC()
	r.scores[id] = &s
	return id, nil
}

func (r *fakeScoreRepo) GetByInnermostAndWeek(_ context.Context, innermostID primitive.ObjectID, weekNumber int) (*domain.WeeklyScore, error) {
	for _, s := range r.scores {
		if s.InnermostID == innermostID && s.WeekNumber == weekNumber {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeScoreRepo) GetAllByInnermost(_ context.Context, innermostID primitive.ObjectID) ([]domain.WeeklyScore, error) {
	var out []domain.WeeklyScore
	for _, s := range r.scores {
		if s.InnermostID == innermostID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// fixedGate returns a constant limit regardless of the user's tier.
type fixedGate int

func (g fixedGate) MaxActiveInnermosts(context.Context, primitive.ObjectID) (int, error) {
	return int(g), nil
}
