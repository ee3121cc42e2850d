package httpapi

import (
	"net/http"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type registerUserInput struct {
	Role      string `json:"role" binding:"required"`
	FullName  string `json:"full_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Specialty string `json:"specialty"`
}

// registerUser handles POST /users.
func (h *handlers) registerUser(c *gin.Context) {
	var input registerUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), model.Role(input.Role), input.FullName, input.Email, input.Specialty)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// listDoctors handles GET /doctors.
func (h *handlers) listDoctors(c *gin.Context) {
	doctors, err := h.users.ListDoctors(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

// listNotifications handles GET /users/:id/notifications?unread=true.
func (h *handlers) listNotifications(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if userID != actorID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": model.ErrForbidden.Error()})
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), userID, c.Query("unread") == "true")
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// markNotificationRead handles POST /notifications/:id/read.
func (h *handlers) markNotificationRead(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), notificationID, actorID(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
