package httpapi

import (
	"errors"
	"net/http"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Conflicts
// get a dedicated code so clients can distinguish "slot just became
// unavailable" from a generic failure and immediately re-fetch availability.
func (h *handlers) respondError(c *gin.Context, err error) {
	var ve *model.ValidationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, model.ErrSlotTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "slot_taken"})
	case errors.Is(err, model.ErrOverlap):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "overlap"})
	case errors.Is(err, model.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "email_taken"})
	case errors.Is(err, model.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "invalid_transition"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
