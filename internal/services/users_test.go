package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"kasirpos/internal/amqp"
	"kasirpos/internal/core"
	"kasirpos/internal/memstore"
	"kasirpos/internal/store"
)

type fakePublisher struct {
	mu      sync.Mutex
	resets  []amqp.PasswordResetMessage
	backups []amqp.BackupCreatedMessage
	fail    error
}

func (f *fakePublisher) PublishPasswordReset(ctx context.Context, msg amqp.PasswordResetMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.resets = append(f.resets, msg)
	return nil
}

func (f *fakePublisher) PublishBackupCreated(ctx context.Context, msg amqp.BackupCreatedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.backups = append(f.backups, msg)
	return nil
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New(), nil)

	u, err := svc.Create(ctx, CreateUserInput{Name: "Budi", Email: "budi@example.com", Role: core.RoleKasir, Password: "rahasia1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "rahasia1" {
		t.Fatal("password not hashed")
	}

	// Login is case-insensitive on the name.
	got, err := svc.Authenticate(ctx, "BUDI", "rahasia1")
	if err != nil || got.ID != u.ID {
		t.Fatalf("authenticate: %v %+v", err, got)
	}

	if _, err := svc.Authenticate(ctx, "Budi", "salah"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "rahasia1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}

	if _, err := svc.Create(ctx, CreateUserInput{Name: "budi", Email: "x@example.com", Role: core.RoleKasir, Password: "rahasia1"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate name: %v", err)
	}
	if _, err := svc.Create(ctx, CreateUserInput{Name: "Ani", Email: "ani@example.com", Role: core.RoleKasir, Password: "123"}); err == nil {
		t.Fatal("short password accepted")
	}
	if _, err := svc.Create(ctx, CreateUserInput{Name: "Ani", Email: "ani@example.com", Role: "owner", Password: "rahasia1"}); !errors.Is(err, core.ErrInvalidRole) {
		t.Fatalf("invalid role: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New(), nil)

	u, err := svc.Create(ctx, CreateUserInput{Name: "Budi", Email: "budi@example.com", Role: core.RoleKasir, Password: "rahasia1"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "salah", "barubanget"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong current password: %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "rahasia1", "barubanget"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "Budi", "barubanget"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "Budi", "rahasia1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewUserService(memstore.New(), pub)

	u, err := svc.Create(ctx, CreateUserInput{Name: "Budi", Email: "budi@example.com", Role: core.RoleKasir, Password: "rahasia1"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ResetPassword(ctx, "budi"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(pub.resets) != 1 {
		t.Fatalf("resets published = %d", len(pub.resets))
	}
	msg := pub.resets[0]
	if msg.UserID != u.ID || msg.Email != "budi@example.com" || msg.TempPassword == "" {
		t.Fatalf("message = %+v", msg)
	}

	// The temporary password is live and the old one is not.
	if _, err := svc.Authenticate(ctx, "Budi", msg.TempPassword); err != nil {
		t.Fatalf("temp password rejected: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "Budi", "rahasia1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password survived reset: %v", err)
	}

	// Unknown accounts succeed silently and publish nothing.
	if err := svc.ResetPassword(ctx, "ghost"); err != nil {
		t.Fatalf("unknown account reset: %v", err)
	}
	if len(pub.resets) != 1 {
		t.Fatal("reset published for unknown account")
	}
}

func TestSeedDemoUsers(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New(), nil)

	if err := svc.SeedDemoUsers(ctx, "adminpass", "kasirpass"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	admin, err := svc.Authenticate(ctx, "admin", "adminpass")
	if err != nil || admin.Role != core.RoleAdmin {
		t.Fatalf("admin seed: %v %+v", err, admin)
	}
	kasir, err := svc.Authenticate(ctx, "kasir", "kasirpass")
	if err != nil || kasir.Role != core.RoleKasir {
		t.Fatalf("kasir seed: %v %+v", err, kasir)
	}

	// Re-seeding leaves existing accounts alone.
	if err := svc.SeedDemoUsers(ctx, "other", "other1"); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "admin", "adminpass"); err != nil {
		t.Fatal("re-seed overwrote the admin password")
	}

	if err := svc.SeedDemoUsers(ctx, "", ""); err == nil {
		t.Fatal("empty seed passwords accepted")
	}
}
