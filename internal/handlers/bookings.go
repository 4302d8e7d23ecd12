package handlers

import (
	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/gin-gonic/gin"
)

// GetPendingBookings lists bookings awaiting assignment, oldest first.
func GetPendingBookings(s store.JobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs, err := s.ListByStatus(c.Request.Context(), models.JobStatusPending, store.OrderByCreatedAt)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch pending bookings"})
			return
		}

		c.JSON(200, jobs)
	}
}

// GetCompletedJobs lists the completed store, most recent first.
func GetCompletedJobs(s store.JobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs, err := s.ListCompleted(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch completed jobs"})
			return
		}

		c.JSON(200, jobs)
	}
}
