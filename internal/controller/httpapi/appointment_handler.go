package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type bookAppointmentInput struct {
	DoctorID    string    `json:"doctor_id" binding:"required,uuid"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Reason      string    `json:"reason"`
}

// bookAppointment handles POST /appointments. A lost booking race returns
// 409 with code slot_taken; the client re-fetches the slot list and asks the
// patient to pick again.
func (h *handlers) bookAppointment(c *gin.Context) {
	var input bookAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doctorID, err := uuid.Parse(input.DoctorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
		return
	}

	appt, err := h.booking.Book(c.Request.Context(), doctorID, actorID(c), input.ScheduledAt, input.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, appt)
}

// getAppointment handles GET /appointments/:id.
func (h *handlers) getAppointment(c *gin.Context) {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	appt, err := h.booking.GetByID(c.Request.Context(), apptID, actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

type updateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// updateAppointmentStatus handles PATCH /appointments/:id/status. Disallowed
// transitions return 422 and leave the record untouched.
func (h *handlers) updateAppointmentStatus(c *gin.Context) {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	var input updateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.booking.UpdateStatus(c.Request.Context(), apptID, actorID(c), model.AppointmentStatus(input.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// listDoctorAppointments handles GET /doctors/:id/appointments?from=&to=.
func (h *handlers) listDoctorAppointments(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
		return
	}

	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appts, err := h.booking.ListForDoctor(c.Request.Context(), doctorID, from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// listPatientAppointments handles GET /patients/:id/appointments. Patients
// may only see their own.
func (h *handlers) listPatientAppointments(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}
	if patientID != actorID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": model.ErrForbidden.Error()})
		return
	}

	appts, err := h.booking.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// daySlots handles GET /doctors/:id/slots?date=YYYY-MM-DD, the slot list a
// patient picks from. Safe to poll; the resolver never writes.
func (h *handlers) daySlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
		return
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	slots, err := h.slots.DaySlots(c.Request.Context(), doctorID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date.Format("2006-01-02"), "slots": slots})
}

// bookableDays handles GET /doctors/:id/days?from=&weeks=. Fully booked days
// are reported as not bookable.
func (h *handlers) bookableDays(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
		return
	}

	from := time.Now()
	if raw := c.Query("from"); raw != "" {
		from, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
	}

	weeks := 4
	if raw := c.Query("weeks"); raw != "" {
		weeks, err = strconv.Atoi(raw)
		if err != nil || weeks < 1 || weeks > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weeks must be between 1 and 12"})
			return
		}
	}

	days, err := h.slots.BookableDays(c.Request.Context(), doctorID, from, weeks)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

// watchDoctor handles GET /doctors/:id/watch: an SSE stream of appointment
// changes for one doctor, so booking screens can re-fetch slots live instead
// of polling blind.
func (h *handlers) watchDoctor(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
		return
	}

	ch, cancel := h.hub.Subscribe(doctorID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		case <-clientGone:
			return false
		}
	})
}

func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 7)

	var err error
	if fromRaw != "" {
		from, err = time.ParseInLocation("2006-01-02", fromRaw, time.Local)
		if err != nil {
			return from, to, model.NewValidationError("from", "must be YYYY-MM-DD")
		}
		to = from.AddDate(0, 0, 7)
	}
	if toRaw != "" {
		to, err = time.ParseInLocation("2006-01-02", toRaw, time.Local)
		if err != nil {
			return from, to, model.NewValidationError("to", "must be YYYY-MM-DD")
		}
		// The range is half-open, make "to" inclusive of the named day.
		to = to.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return from, to, model.NewValidationError("to", "must be after from")
	}
	return from, to, nil
}
