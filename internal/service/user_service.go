package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles the minimal patient/doctor registry the scheduling
// core needs. Profile management beyond this lives elsewhere.
type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Register creates a doctor or patient account.
func (s *UserService) Register(ctx context.Context, role model.Role, fullName, email, specialty string) (*model.User, error) {
	if !role.Valid() {
		return nil, model.NewValidationError("role", "must be doctor or patient")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, model.NewValidationError("full_name", "is required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, model.NewValidationError("email", "is required")
	}
	if role == model.RolePatient && specialty != "" {
		return nil, model.NewValidationError("specialty", "only doctors have a specialty")
	}

	user := &model.User{
		Role:      role,
		FullName:  strings.TrimSpace(fullName),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Specialty: specialty,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
	)

	return user, nil
}

// GetByID returns a user or model.ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrNotFound
	}
	return user, nil
}

// ListDoctors returns all registered doctors.
func (s *UserService) ListDoctors(ctx context.Context) ([]*model.User, error) {
	return s.users.ListDoctors(ctx)
}
