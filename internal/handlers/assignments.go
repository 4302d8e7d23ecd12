package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"github.com/chauffeurdeluxe/booking-backend/internal/services"
	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/chauffeurdeluxe/booking-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// AssignJob attaches a driver to a pending booking and computes the payout.
// The store-level status guard means two concurrent assignments of the same
// booking cannot both succeed.
func AssignJob(s store.JobStore, outbox store.OutboxStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			BookingID   string `json:"bookingId" binding:"required"`
			DriverEmail string `json:"driverEmail" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Missing driverEmail or bookingId"})
			return
		}

		email := strings.TrimSpace(strings.ToLower(input.DriverEmail))
		if email == "" {
			c.JSON(400, gin.H{"error": "Missing driverEmail or bookingId"})
			return
		}

		job, err := s.Get(c.Request.Context(), input.BookingID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(404, gin.H{"error": "Booking not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to assign job"})
			return
		}

		if !models.ValidTransition(job.Status, models.JobStatusAssigned) {
			c.JSON(400, gin.H{"error": "Booking is no longer pending"})
			return
		}

		payout := utils.CalculateDriverPayout(job.Fare)
		now := time.Now().UTC()

		updated, err := s.UpdateStatus(c.Request.Context(), job.ID,
			models.JobStatusPending, models.JobStatusAssigned, "",
			store.StatusUpdate{
				AssignedTo:   email,
				DriverPayout: payout,
				AssignedAt:   &now,
			})
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				c.JSON(404, gin.H{"error": "Booking not found"})
			case errors.Is(err, store.ErrInvalidState):
				c.JSON(400, gin.H{"error": "Booking is no longer pending"})
			default:
				c.JSON(500, gin.H{"error": "Failed to assign job"})
			}
			return
		}

		services.EnqueueJobEvent(c.Request.Context(), outbox, models.EventJobAssigned, email, services.JobEventPayload{
			JobID:         updated.ID,
			Pickup:        updated.Pickup,
			Dropoff:       updated.Dropoff,
			PickupTime:    updated.PickupTime,
			VehicleType:   updated.VehicleType,
			CustomerName:  updated.CustomerName,
			CustomerPhone: updated.CustomerPhone,
			DriverEmail:   email,
			DriverPay:     payout,
		})

		c.JSON(200, gin.H{
			"success": true,
			"jobId":   updated.ID,
			"message": fmt.Sprintf("Job assigned to %s", email),
		})
	}
}
