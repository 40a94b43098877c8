package service

import (
	"context"
	"errors"
	"testing"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type innermostFixture struct {
	svc        InnermostService
	users      *fakeUserRepo
	innermosts *fakeInnermostRepo
	boxes      *fakeBoxRepo
	inviter    primitive.ObjectID
	invitee    primitive.ObjectID
}

// newInnermostFixture wires an InnermostService over fakes with two
// registered users and a gate allowing one active innermost.
func newInnermostFixture(t *testing.T, gate CapabilityGate) *innermostFixture {
	t.Helper()
	ctx := context.Background()

	userRepo := newFakeUserRepo()
	innermostRepo := newFakeInnermostRepo()
	boxRepo := newFakeBoxRepo()

	inviter, err := userRepo.Create(ctx, &domain.User{Name: "Alex", Email: "alex@example.com", Tier: domain.TierFree})
	if err != nil {
		t.Fatalf("creating inviter: %v", err)
	}
	invitee, err := userRepo.Create(ctx, &domain.User{Name: "Blair", Email: "blair@example.com", Tier: domain.TierFree})
	if err != nil {
		t.Fatalf("creating invitee: %v", err)
	}

	if gate == nil {
		gate = fixedGate(1)
	}
	return &innermostFixture{
		svc:        NewInnermostService(innermostRepo, boxRepo, userRepo, gate),
		users:      userRepo,
		innermosts: innermostRepo,
		boxes:      boxRepo,
		inviter:    inviter,
		invitee:    invitee,
	}
}

func TestInnermostService_InviteAndAccept(t *testing.T) {
	f := newInnermostFixture(t, nil)
	ctx := context.Background()

	in, err := f.svc.Invite(ctx, f.inviter, "Blair@Example.com")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if in.Status != domain.InnermostPending {
		t.Errorf("status = %q, want pending", in.Status)
	}
	if in.PartnerEmail != "blair@example.com" {
		t.Errorf("partner email not normalized: %q", in.PartnerEmail)
	}

	accepted, err := f.svc.Accept(ctx, f.invitee, in.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if accepted.Status != domain.InnermostActive {
		t.Errorf("status after accept = %q, want active", accepted.Status)
	}
	if accepted.PartnerID == nil || *accepted.PartnerID != f.invitee {
		t.Error("accepting partner not recorded in slot B")
	}

	// Acceptance opens week 1 immediately.
	box, err := f.boxes.GetByInnermostAndWeek(ctx, in.ID, 1)
	if err != nil {
		t.Fatalf("week 1 not created: %v", err)
	}
	if box.Phase != domain.PhasePlantingTrees {
		t.Errorf("week 1 phase = %q, want planting_trees", box.Phase)
	}
}

func TestInnermostService_InviteRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("self invite", func(t *testing.T) {
		f := newInnermostFixture(t, nil)
		_, err := f.svc.Invite(ctx, f.inviter, "alex@example.com")
		if !errors.Is(err, ErrCannotInviteSelf) {
			t.Errorf("error = %v, want ErrCannotInviteSelf", err)
		}
	})

	t.Run("duplicate pending invitation", func(t *testing.T) {
		f := newInnermostFixture(t, nil)
		if _, err := f.svc.Invite(ctx, f.inviter, "blair@example.com"); err != nil {
			t.Fatalf("first Invite: %v", err)
		}
		_, err := f.svc.Invite(ctx, f.inviter, "blair@example.com")
		if !errors.Is(err, ErrInviteAlreadyPending) {
			t.Errorf("error = %v, want ErrInviteAlreadyPending", err)
		}
	})

	t.Run("active limit reached", func(t *testing.T) {
		f := newInnermostFixture(t, fixedGate(1))
		in, err := f.svc.Invite(ctx, f.inviter, "blair@example.com")
		if err != nil {
			t.Fatalf("Invite: %v", err)
		}
		if _, err := f.svc.Accept(ctx, f.invitee, in.ID); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		_, err = f.svc.Invite(ctx, f.inviter, "someone-else@example.com")
		if !errors.Is(err, ErrInnermostLimitReached) {
			t.Errorf("error = %v, want ErrInnermostLimitReached", err)
		}
	})

	t.Run("higher limit allows another invite", func(t *testing.T) {
		f := newInnermostFixture(t, fixedGate(3))
		in, err := f.svc.Invite(ctx, f.inviter, "blair@example.com")
		if err != nil {
			t.Fatalf("Invite: %v", err)
		}
		if _, err := f.svc.Accept(ctx, f.invitee, in.ID); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if _, err := f.svc.Invite(ctx, f.inviter, "someone-else@example.com"); err != nil {
			t.Errorf("second invite under premium limit failed: %v", err)
		}
	})
}

func TestInnermostService_AcceptRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong invitee email", func(t *testing.T) {
		f := newInnermostFixture(t, nil)
		in, err := f.svc.Invite(ctx, f.inviter, "someone-else@example.com")
		if err != nil {
			t.Fatalf("Invite: %v", err)
		}
		_, err = f.svc.Accept(ctx, f.invitee, in.ID)
		if !errors.Is(err, ErrNotInvitee) {
			t.Errorf("error = %v, want ErrNotInvitee", err)
		}
	})

	t.Run("already active", func(t *testing.T) {
		f := newInnermostFixture(t, nil)
		in, err := f.svc.Invite(ctx, f.inviter, "blair@example.com")
		if err != nil {
			t.Fatalf("Invite: %v", err)
		}
		if _, err := f.svc.Accept(ctx, f.invitee, in.ID); err != nil {
			t.Fatalf("first Accept: %v", err)
		}
		_, err = f.svc.Accept(ctx, f.invitee, in.ID)
		if !errors.Is(err, ErrInnermostNotPending) {
			t.Errorf("error = %v, want ErrInnermostNotPending", err)
		}
	})

	t.Run("unknown innermost", func(t *testing.T) {
		f := newInnermostFixture(t, nil)
		_, err := f.svc.Accept(ctx, f.invitee, primitive.NewObjectID())
		if !errors.Is(err, ErrInnermostNotFound) {
			t.Errorf("error = %v, want ErrInnermostNotFound", err)
		}
	})
}

func TestInnermostService_End(t *testing.T) {
	f := newInnermostFixture(t, nil)
	ctx := context.Background()

	in, err := f.svc.Invite(ctx, f.inviter, "blair@example.com")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if _, err := f.svc.Accept(ctx, f.invitee, in.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := f.svc.End(ctx, primitive.NewObjectID(), in.ID); !errors.Is(err, ErrNotInnermostMember) {
		t.Errorf("stranger End error = %v, want ErrNotInnermostMember", err)
	}

	if err := f.svc.End(ctx, f.invitee, in.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	// Ending twice is a no-op.
	if err := f.svc.End(ctx, f.invitee, in.ID); err != nil {
		t.Errorf("second End: %v", err)
	}

	ended, err := f.innermosts.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ended.Status != domain.InnermostEnded {
		t.Errorf("status = %q, want ended", ended.Status)
	}
}

func TestInnermostService_List(t *testing.T) {
	f := newInnermostFixture(t, nil)
	ctx := context.Background()

	in, err := f.svc.Invite(ctx, f.inviter, "blair@example.com")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	// The pending invitation is visible to the invitee by email even though
	// no partner ID is recorded yet.
	list, err := f.svc.List(ctx, f.invitee)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != in.ID {
		t.Errorf("invitee list = %+v, want the pending invitation", list)
	}
}
