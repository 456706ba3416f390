package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kasirpos/internal/amqp"
	"kasirpos/internal/core"
	"kasirpos/internal/store"
)

// UserService manages accounts and credentials.
type UserService struct {
	store     store.UserStore
	publisher NotificationPublisher
	now       func() time.Time
}

func NewUserService(s store.UserStore, publisher NotificationPublisher) *UserService {
	return &UserService{store: s, publisher: publisher, now: time.Now}
}

type CreateUserInput struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     core.Role `json:"role"`
	Password string    `json:"password"`
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (core.User, error) {
	if len(in.Password) < 6 {
		return core.User{}, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := core.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User created",
		"user_id", u.ID,
		"user_name", u.Name,
		"role", string(u.Role))

	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (core.User, error) {
	return s.store.GetUser(ctx, id)
}

type UpdateUserInput struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  core.Role `json:"role"`
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (core.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}

	u.Name = in.Name
	u.Email = in.Email
	u.Role = in.Role
	u.UpdatedAt = s.now().UTC()
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}

// Authenticate resolves a name and password to the account. Lookup is
// case-insensitive; the error never says which part was wrong.
func (s *UserService) Authenticate(ctx context.Context, name, password string) (core.User, error) {
	u, err := s.store.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return core.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword verifies the current password before storing a new one.
func (s *UserService) ChangePassword(ctx context.Context, id, current, newPassword string) error {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.SetPassword(ctx, id, string(hash))
}

// ResetPassword stores a temporary password for the named account and
// queues a mail with it. An unknown name is treated as success so the
// endpoint cannot be used to probe for accounts.
func (s *UserService) ResetPassword(ctx context.Context, name string) error {
	u, err := s.store.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "Password reset requested for unknown account")
			return nil
		}
		return err
	}

	temp, err := tempPassword()
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.SetPassword(ctx, u.ID, string(hash)); err != nil {
		return err
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "No publisher configured, reset mail not queued", "user_id", u.ID)
		return nil
	}
	err = s.publisher.PublishPasswordReset(ctx, amqp.PasswordResetMessage{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		TempPassword: temp,
	})
	if err != nil {
		// The new password is already active; the user just won't get
		// the mail. Surface the failure to the caller.
		return fmt.Errorf("queue reset mail: %w", err)
	}

	slog.InfoContext(ctx, "Password reset queued", "user_id", u.ID)
	return nil
}

// SeedDemoUsers creates the demo admin and kasir accounts when they do
// not exist yet. Existing accounts are left untouched.
func (s *UserService) SeedDemoUsers(ctx context.Context, adminPassword, kasirPassword string) error {
	seeds := []struct {
		name     string
		email    string
		role     core.Role
		password string
	}{
		{"admin", "admin@kasirpos.local", core.RoleAdmin, adminPassword},
		{"kasir", "kasir@kasirpos.local", core.RoleKasir, kasirPassword},
	}

	for _, seed := range seeds {
		if seed.password == "" {
			return fmt.Errorf("no seed password configured for %s", seed.name)
		}
		if _, err := s.store.GetUserByName(ctx, seed.name); err == nil {
			slog.InfoContext(ctx, "Seed account already exists", "user_name", seed.name)
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if _, err := s.Create(ctx, CreateUserInput{
			Name:     seed.name,
			Email:    seed.email,
			Role:     seed.role,
			Password: seed.password,
		}); err != nil {
			return fmt.Errorf("seed %s: %w", seed.name, err)
		}
	}
	return nil
}

func tempPassword() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
