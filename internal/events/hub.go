// Package events fans appointment changes out to in-process subscribers.
// The booking UI re-resolves slot availability whenever an event for the
// viewed doctor arrives; the transport (SSE, polling) is the controller's
// concern, not the hub's.
package events

import (
	"sync"
	"time"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Type string

const (
	AppointmentCreated       Type = "appointment_created"
	AppointmentStatusChanged Type = "appointment_status_changed"
)

// AppointmentEvent describes one change to a doctor's booking ledger.
type AppointmentEvent struct {
	Type          Type                    `json:"type"`
	AppointmentID uuid.UUID               `json:"appointment_id"`
	DoctorID      uuid.UUID               `json:"doctor_id"`
	Date          string                  `json:"date"` // YYYY-MM-DD of the affected slot
	Status        model.AppointmentStatus `json:"status"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

const subscriberBuffer = 8

// Hub is a per-doctor publish/subscribe registry.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[chan AppointmentEvent]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]map[chan AppointmentEvent]struct{}),
		logger: logger,
	}
}

// Subscribe registers interest in one doctor's appointment changes. The
// returned cancel func must be called to release the subscription.
func (h *Hub) Subscribe(doctorID uuid.UUID) (<-chan AppointmentEvent, func()) {
	ch := make(chan AppointmentEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subs[doctorID] == nil {
		h.subs[doctorID] = make(map[chan AppointmentEvent]struct{})
	}
	h.subs[doctorID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[doctorID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, doctorID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the event's doctor.
// Delivery never blocks: a subscriber that has fallen behind misses the
// event and is expected to re-fetch on its next one.
func (h *Hub) Publish(ev AppointmentEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[ev.DoctorID] {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("Dropping appointment event for slow subscriber",
				zap.String("doctor_id", ev.DoctorID.String()),
				zap.String("type", string(ev.Type)),
			)
		}
	}
}

// SubscriberCount reports how many subscribers a doctor currently has.
func (h *Hub) SubscriberCount(doctorID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[doctorID])
}
