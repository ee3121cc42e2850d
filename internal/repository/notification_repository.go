package repository

import (
	"context"
	"fmt"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/carebook/telemed-api/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	*base.Repository
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	query := `
		INSERT INTO notifications (id, user_id, appointment_id, kind, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		n.ID,
		n.UserID,
		n.AppointmentID,
		n.Kind,
		n.Message,
	).Scan(&n.CreatedAt)

	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// CreateOnce inserts a notification unless one with the same appointment and
// kind already exists for the user. Returns whether a row was inserted; the
// reminder worker relies on this to emit each reminder exactly once.
func (r *NotificationRepository) CreateOnce(ctx context.Context, n *model.Notification) (bool, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	query := `
		INSERT INTO notifications (id, user_id, appointment_id, kind, message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, appointment_id, kind) DO NOTHING
	`

	affected, err := r.ExecAffected(ctx, query, n.ID, n.UserID, n.AppointmentID, n.Kind, n.Message)
	if err != nil {
		return false, fmt.Errorf("create notification once: %w", err)
	}

	return affected > 0, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	query := `
		SELECT id, user_id, appointment_id, kind, message, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		  AND ($2 = false OR read_at IS NULL)
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.AppointmentID,
			&n.Kind,
			&n.Message,
			&n.ReadAt,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, nil
}

// MarkRead marks a user's notification as read. Returns false when the
// notification does not exist or belongs to someone else.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE notifications
		SET read_at = now()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}

	return affected > 0, nil
}
