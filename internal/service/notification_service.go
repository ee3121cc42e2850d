package service

import (
	"context"
	"fmt"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService exposes a user's notification feed. Creation happens
// inside the booking flow and the reminder worker.
type NotificationService struct {
	store  NotificationStore
	logger *zap.Logger
}

func NewNotificationService(store NotificationStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger}
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	return s.store.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !ok {
		return model.ErrNotFound
	}
	return nil
}
