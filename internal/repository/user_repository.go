package repository

import (
	"context"
	"fmt"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/carebook/telemed-api/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
		INSERT INTO users (id, role, full_name, email, specialty)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.ID,
		user.Role,
		user.FullName,
		user.Email,
		user.Specialty,
	).Scan(&user.CreatedAt)

	if err != nil {
		if base.IsConstraintViolation(err) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID returns a user by id, or nil when none exists.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, role, full_name, email, specialty, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Role,
		&user.FullName,
		&user.Email,
		&user.Specialty,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// ListDoctors returns all doctors ordered by name.
func (r *UserRepository) ListDoctors(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, role, full_name, email, specialty, created_at
		FROM users
		WHERE role = $1
		ORDER BY full_name
	`

	rows, err := r.Query(ctx, query, model.RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.ID,
			&user.Role,
			&user.FullName,
			&user.Email,
			&user.Specialty,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		doctors = append(doctors, &user)
	}

	return doctors, nil
}
