package users

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/palengke-app/palengke/internal/audit"
)

// Service coordinates account management. Authentication itself lives in the
// upstream gateway; this service only manages account records.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
}

// NewService returns a user service.
func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers an account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, actorID int64) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, User{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Phone:    req.Phone,
		IsActive: true,
	}, string(hash))
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "user.create", id)
	return s.repo.Get(ctx, id)
}

// Update applies a partial account update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest, actorID int64) (*User, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "user.update", id)
	return s.repo.Get(ctx, id)
}

// ResetPassword replaces the stored hash with one for the given password.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string, actorID int64) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.SetPasswordHash(ctx, id, string(hash)); err != nil {
		return err
	}
	s.record(ctx, actorID, "user.reset_password", id)
	return nil
}

// SetActive flips account availability for the given ids.
func (s *Service) SetActive(ctx context.Context, ids []int64, active bool, actorID int64) error {
	for _, id := range ids {
		if err := s.repo.Update(ctx, id, map[string]any{"is_active": active}); err != nil {
			return fmt.Errorf("set user %d active=%t: %w", id, active, err)
		}
		s.record(ctx, actorID, "user.set_active", id)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(id, 10),
	})
}
