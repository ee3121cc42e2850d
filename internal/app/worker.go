package app

import (
	"context"
	"fmt"
	"time"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/carebook/telemed-api/internal/service"
	"go.uber.org/zap"
)

const reminderWindow = 24 * time.Hour

// ReminderWorker periodically emits a reminder notification to the patient
// of every appointment starting within the next day. CreateOnce keeps each
// reminder to a single emission across sweeps.
type ReminderWorker struct {
	ledger        service.AppointmentLedger
	notifications service.NotificationStore
	interval      time.Duration
	logger        *zap.Logger
	stopChan      chan struct{}
}

func NewReminderWorker(ledger service.AppointmentLedger, notifications service.NotificationStore, interval time.Duration, logger *zap.Logger) *ReminderWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderWorker{
		ledger:        ledger,
		notifications: notifications,
		interval:      interval,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.Info("Starting reminder worker", zap.Duration("interval", w.interval))
	go w.run(ctx)
}

// Stop stops the background loop.
func (w *ReminderWorker) Stop() {
	w.logger.Info("Stopping reminder worker")
	close(w.stopChan)
}

func (w *ReminderWorker) run(ctx context.Context) {
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.stopChan:
			w.logger.Info("Reminder worker stopped")
			return
		case <-ctx.Done():
			w.logger.Info("Reminder worker cancelled")
			return
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	now := time.Now()
	appts, err := w.ledger.ListUpcoming(ctx, now, now.Add(reminderWindow))
	if err != nil {
		w.logger.Error("Failed to list upcoming appointments", zap.Error(err))
		return
	}

	sent := 0
	for _, appt := range appts {
		created, err := w.notifications.CreateOnce(ctx, &model.Notification{
			UserID:        appt.PatientID,
			AppointmentID: appt.ID,
			Kind:          model.NotificationReminder,
			Message:       fmt.Sprintf("Reminder: your appointment starts %s", appt.ScheduledAt.Format("Mon, 02 Jan 2006 at 15:04")),
		})
		if err != nil {
			w.logger.Warn("Failed to create reminder",
				zap.Error(err),
				zap.String("appointment_id", appt.ID.String()),
			)
			continue
		}
		if created {
			sent++
		}
	}

	if sent > 0 {
		w.logger.Info("Reminder sweep completed",
			zap.Int("upcoming", len(appts)),
			zap.Int("reminders_sent", sent),
		)
	}
}
