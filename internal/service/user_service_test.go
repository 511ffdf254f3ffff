package service

import (
	"context"
	"errors"
	"testing"
)

func TestJoinPublicWG(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	joiner := env.registerUser(t, "rick")
	wgID := env.createWG(t, creator, "Sunshine")

	if err := env.users.JoinWG(ctx, joiner, wgID); err != nil {
		t.Fatalf("JoinWG failed: %v", err)
	}
	if err := env.users.JoinWG(ctx, joiner, wgID); !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict on double join, got %v", err)
	}
	if err := env.users.JoinWG(ctx, joiner, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found for unknown WG, got %v", err)
	}
}

func TestJoinPrivateWGRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	joiner := env.registerUser(t, "rick")
	isPublic := false
	wg, err := env.groups.Create(ctx, creator, CreateGroupRequest{
		Title: "Hidden", Address: "Secret alley 5", Floor: "1", IsPublic: &isPublic,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := env.users.JoinWG(ctx, joiner, wg.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict for private WG join, got %v", err)
	}
	// An invite still works for private WGs.
	if err := env.groups.Invite(ctx, creator, wg.ID, "rick"); err != nil {
		t.Errorf("invite into private WG failed: %v", err)
	}
}

func TestLeaveWG(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)

	// The creator must transfer before leaving.
	if err := env.users.LeaveWG(ctx, creator, wgID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for creator leave, got %v", err)
	}

	if err := env.users.LeaveWG(ctx, member, wgID); err != nil {
		t.Fatalf("LeaveWG failed: %v", err)
	}
	if err := env.users.LeaveWG(ctx, member, wgID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for non-member leave, got %v", err)
	}
}

func TestLeaveClearsHomeWG(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)

	if _, err := env.users.Update(ctx, member, UpdateProfileRequest{HomeWGID: &wgID}); err != nil {
		t.Fatalf("setting home WG failed: %v", err)
	}
	profile, err := env.users.Get(ctx, member)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if profile.HomeWGID == nil || *profile.HomeWGID != wgID {
		t.Fatalf("home WG = %v, want %d", profile.HomeWGID, wgID)
	}

	if err := env.users.LeaveWG(ctx, member, wgID); err != nil {
		t.Fatalf("LeaveWG failed: %v", err)
	}
	profile, err = env.users.Get(ctx, member)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if profile.HomeWGID != nil {
		t.Errorf("home WG = %v after leaving, want nil", profile.HomeWGID)
	}
}

func TestSetHomeWGRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	outsider := env.registerUser(t, "rick")
	wgID := env.createWG(t, creator, "Sunshine")

	if _, err := env.users.Update(ctx, outsider, UpdateProfileRequest{HomeWGID: &wgID}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for non-member home WG, got %v", err)
	}
}

func TestUpdateProfileReissuesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerUser(t, "mona")

	name := "mona2"
	resp, err := env.users.Update(ctx, userID, UpdateProfileRequest{Username: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if resp.User.Username != "mona2" {
		t.Errorf("username = %s, want mona2", resp.User.Username)
	}
	if resp.Token == "" {
		t.Error("expected a re-issued token")
	}

	// Old name is free again, new name is taken.
	env.registerUser(t, "mona")
	taken := "mona"
	if _, err := env.users.Update(ctx, userID, UpdateProfileRequest{Username: &taken}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict for taken username, got %v", err)
	}
}

func TestDeleteAccountBlockedByCreatedWGs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)

	if err := env.users.Delete(ctx, creator); !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict while still a WG creator, got %v", err)
	}

	if err := env.groups.TransferCreator(ctx, creator, wgID, "rick"); err != nil {
		t.Fatalf("TransferCreator failed: %v", err)
	}
	if err := env.users.Delete(ctx, creator); err != nil {
		t.Fatalf("Delete failed after transfer: %v", err)
	}

	// The departed account is gone from the member list.
	wg, err := env.groups.Get(ctx, member, wgID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for _, u := range wg.Users {
		if u.ID == creator {
			t.Error("deleted user still listed as WG member")
		}
	}
}
