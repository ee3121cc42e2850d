package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createAvailabilityInput struct {
	Weekday   *int   `json:"weekday" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// createAvailability handles POST /availability. The acting doctor adds a
// recurring weekly interval; overlaps come back as 409.
func (h *handlers) createAvailability(c *gin.Context) {
	var input createAvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.availability.AddEntry(c.Request.Context(), actorID(c), *input.Weekday, input.StartTime, input.EndTime)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// listAvailability handles GET /doctors/:id/availability?weekday=N.
func (h *handlers) listAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
		return
	}

	weekday := -1
	if raw := c.Query("weekday"); raw != "" {
		weekday, err = strconv.Atoi(raw)
		if err != nil || weekday < 0 || weekday > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be between 0 and 6"})
			return
		}
	}

	entries, err := h.availability.ListEntries(c.Request.Context(), doctorID, weekday)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// deleteAvailability handles DELETE /availability/:id for the owning doctor.
func (h *handlers) deleteAvailability(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	if err := h.availability.RemoveEntry(c.Request.Context(), actorID(c), entryID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
