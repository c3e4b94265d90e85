package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps the domain error taxonomy onto HTTP statuses. Seat
// conflicts get the structured body the seat-picker re-prompts from.
func writeError(c *gin.Context, err error) {
	if conflict, ok := domain.AsConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"success":           false,
			"conflicting_seats": conflict.SeatIDs,
		})
		return
	}

	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		var ie *domain.IntegrityError
		if errors.As(err, &ie) {
			c.JSON(http.StatusConflict, gin.H{"error": ie.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
