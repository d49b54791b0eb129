package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/dronedelivery/internal/repository"
	"github.com/Domenick1991/dronedelivery/internal/service/availability"
	"github.com/Domenick1991/dronedelivery/internal/service/booking"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, availability.ErrNoDroneAvailable), errors.Is(err, booking.ErrNotReschedulable):
		return http.StatusConflict
	case errors.Is(err, booking.ErrInvalidInput), errors.Is(err, booking.ErrPickupTooSoon):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
