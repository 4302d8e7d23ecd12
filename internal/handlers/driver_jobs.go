package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"github.com/chauffeurdeluxe/booking-backend/internal/services"
	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/chauffeurdeluxe/booking-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// driverEmailMatches guards driver routes: when the request carries an
// authenticated driver identity it must match the driver the call acts for.
func driverEmailMatches(c *gin.Context, email string) bool {
	tokenEmail := c.GetString("driverEmail")
	return tokenEmail == "" || tokenEmail == email
}

// UpdateJob handles a driver's response to an assignment: confirm, refuse,
// or complete. The driver portal sends either the boolean form
// {confirmed: true|false} or the legacy status form {status: "confirmed"}.
func UpdateJob(s store.JobStore, outbox store.OutboxStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			JobID       string `json:"jobId" binding:"required"`
			DriverEmail string `json:"driverEmail" binding:"required"`
			Confirmed   *bool  `json:"confirmed"`
			Status      string `json:"status"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Missing parameters"})
			return
		}

		email := strings.TrimSpace(strings.ToLower(input.DriverEmail))
		if !driverEmailMatches(c, email) {
			c.JSON(403, gin.H{"error": "Token does not match driver email"})
			return
		}

		action := input.Status
		if input.Confirmed != nil {
			if *input.Confirmed {
				action = "confirmed"
			} else {
				action = "refused"
			}
		}

		switch action {
		case "confirmed":
			confirmJob(c, s, outbox, input.JobID, email)
		case "refused":
			refuseJob(c, s, outbox, input.JobID, email)
		case "completed":
			completeJob(c, s, outbox, input.JobID, email)
		default:
			c.JSON(400, gin.H{"error": "Invalid status"})
		}
	}
}

// CompleteJob moves an assigned or confirmed job into the completed store.
func CompleteJob(s store.JobStore, outbox store.OutboxStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			JobID       string `json:"jobId" binding:"required"`
			DriverEmail string `json:"driverEmail" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Missing jobId or driverEmail"})
			return
		}

		email := strings.TrimSpace(strings.ToLower(input.DriverEmail))
		if !driverEmailMatches(c, email) {
			c.JSON(403, gin.H{"error": "Token does not match driver email"})
			return
		}

		completeJob(c, s, outbox, input.JobID, email)
	}
}

// RefuseJob returns an assigned job to the pending queue so it can be
// reassigned.
func RefuseJob(s store.JobStore, outbox store.OutboxStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			JobID       string `json:"jobId" binding:"required"`
			DriverEmail string `json:"driverEmail" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Missing jobId"})
			return
		}

		email := strings.TrimSpace(strings.ToLower(input.DriverEmail))
		if !driverEmailMatches(c, email) {
			c.JSON(403, gin.H{"error": "Token does not match driver email"})
			return
		}

		refuseJob(c, s, outbox, input.JobID, email)
	}
}

func confirmJob(c *gin.Context, s store.JobStore, outbox store.OutboxStore, jobID, email string) {
	now := time.Now().UTC()
	updated, err := s.UpdateStatus(c.Request.Context(), jobID,
		models.JobStatusAssigned, models.JobStatusConfirmed, email,
		store.StatusUpdate{ResponseAt: &now})
	if err != nil {
		respondTransitionError(c, err, "Job is not awaiting confirmation")
		return
	}

	services.EnqueueJobEvent(c.Request.Context(), outbox, models.EventDriverResponse, "", services.JobEventPayload{
		JobID:       updated.ID,
		DriverEmail: email,
		Confirmed:   true,
	})

	c.JSON(200, gin.H{"success": true, "jobId": updated.ID, "status": updated.Status})
}

func refuseJob(c *gin.Context, s store.JobStore, outbox store.OutboxStore, jobID, email string) {
	updated, err := s.UpdateStatus(c.Request.Context(), jobID,
		models.JobStatusAssigned, models.JobStatusPending, email,
		store.StatusUpdate{ClearAssignment: true})
	if err != nil {
		respondTransitionError(c, err, "Job is not assigned")
		return
	}

	services.EnqueueJobEvent(c.Request.Context(), outbox, models.EventDriverResponse, "", services.JobEventPayload{
		JobID:       updated.ID,
		DriverEmail: email,
		Confirmed:   false,
	})

	c.JSON(200, gin.H{"success": true, "message": "Job refused, back to pending"})
}

func completeJob(c *gin.Context, s store.JobStore, outbox store.OutboxStore, jobID, email string) {
	job, err := s.Get(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Server error completing job"})
		return
	}

	// Payout was fixed at assignment time; recompute only for rows that
	// predate the stored payout column.
	payout := utils.CalculateDriverPayout(job.Fare)
	if job.DriverPayout != nil {
		payout = *job.DriverPayout
	}

	completed, err := s.MoveToCompleted(c.Request.Context(), jobID, email, payout)
	if err != nil {
		respondTransitionError(c, err, "Job cannot be completed from its current status")
		return
	}

	services.EnqueueJobEvent(c.Request.Context(), outbox, models.EventJobCompleted, "", services.JobEventPayload{
		JobID:       completed.ID,
		DriverEmail: email,
		DriverPay:   completed.DriverPay,
	})

	c.JSON(200, gin.H{"success": true, "message": "Job completed", "completedJobId": completed.ID})
}

func respondTransitionError(c *gin.Context, err error, conflictMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(404, gin.H{"error": "Job not found"})
	case errors.Is(err, store.ErrWrongDriver):
		c.JSON(403, gin.H{"error": "Job is not assigned to this driver"})
	case errors.Is(err, store.ErrInvalidState):
		c.JSON(400, gin.H{"error": conflictMsg})
	default:
		c.JSON(500, gin.H{"error": "Failed to update job"})
	}
}

// GetDriverJobs returns a driver's active assignments and completed history.
func GetDriverJobs(s store.JobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(strings.ToLower(c.Query("email")))
		if email == "" {
			c.JSON(400, gin.H{"error": "Driver email is required"})
			return
		}

		if !driverEmailMatches(c, email) {
			c.JSON(403, gin.H{"error": "Token does not match driver email"})
			return
		}

		assigned, err := s.ListByDriver(c.Request.Context(), email)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch assigned jobs"})
			return
		}

		completed, err := s.ListCompletedByDriver(c.Request.Context(), email)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch completed jobs"})
			return
		}

		c.JSON(200, gin.H{
			"assignedJobs":  assigned,
			"completedJobs": completed,
		})
	}
}
