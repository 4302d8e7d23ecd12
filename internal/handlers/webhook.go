package handlers

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"github.com/chauffeurdeluxe/booking-backend/internal/services"
	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/chauffeurdeluxe/booking-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76/webhook"
)

// checkoutSession is the slice of the Stripe event object the intake needs:
// the booking fields travel in the checkout session metadata.
type checkoutSession struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// StripeWebhook receives completed-payment notifications and creates the
// pending booking. The response is an ack to the payment provider: email
// failures never surface here, but a failed insert returns 500 so the
// provider retries instead of silently losing a paid booking.
func StripeWebhook(s store.JobStore, outbox store.OutboxStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			c.JSON(400, gin.H{"error": "Unable to read request body"})
			return
		}

		// The endpoint's pinned API version is a dashboard setting; acceptance
		// must not be coupled to the SDK's own version pin.
		event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), os.Getenv("STRIPE_WEBHOOK_SECRET"),
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			log.Printf("Webhook signature verification failed: %v", err)
			c.JSON(400, gin.H{"error": "Webhook signature verification failed"})
			return
		}

		if event.Type != "checkout.session.completed" {
			c.JSON(200, gin.H{"received": true})
			return
		}

		// Replayed events are acked without reprocessing.
		if services.RedisClient != nil {
			first, err := services.MarkEventProcessed(c.Request.Context(), event.ID)
			if err != nil {
				log.Printf("Webhook dedupe check failed for event %s: %v", event.ID, err)
			} else if !first {
				c.JSON(200, gin.H{"received": true})
				return
			}
		}

		var session checkoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(400, gin.H{"error": "Malformed checkout session"})
			return
		}

		meta := session.Metadata
		fare, _ := strconv.ParseFloat(meta["totalFare"], 64)
		if meta["email"] == "" || fare < utils.MinimumFare {
			c.JSON(400, gin.H{"error": "Invalid booking data"})
			return
		}

		pickupTime, err := parsePickupTime(meta["datetime"])
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid pickup time"})
			return
		}

		distanceKm, _ := strconv.ParseFloat(meta["distanceKm"], 64)
		durationMin, _ := strconv.ParseFloat(meta["durationMin"], 64)

		job := &models.Job{
			ID:            models.NewJobID(),
			CustomerName:  meta["name"],
			CustomerEmail: strings.TrimSpace(strings.ToLower(meta["email"])),
			CustomerPhone: meta["phone"],
			Pickup:        meta["pickup"],
			Dropoff:       meta["dropoff"],
			PickupTime:    pickupTime,
			VehicleType:   meta["vehicleType"],
			Fare:          fare,
			DistanceKm:    distanceKm,
			DurationMin:   durationMin,
			Notes:         meta["notes"],
			Status:        models.JobStatusPending,
			CreatedAt:     time.Now().UTC(),
		}

		if err := s.Insert(c.Request.Context(), job); err != nil {
			// A colliding ID is a different paid booking, not a replay; genuine
			// replays never reach the insert because the event-ID dedupe screens
			// them. Any insert failure must leave the event retryable, so the
			// dedupe key is released before the provider is told to retry.
			log.Printf("Failed to insert booking from event %s: %v", event.ID, err)
			if services.RedisClient != nil {
				if delErr := services.ClearEventProcessed(c.Request.Context(), event.ID); delErr != nil {
					log.Printf("Failed to release dedupe key for event %s: %v", event.ID, delErr)
				}
			}
			c.JSON(500, gin.H{"error": "Failed to store booking"})
			return
		}

		log.Printf("Booking %s created from checkout session %s", job.ID, session.ID)

		services.EnqueueJobEvent(c.Request.Context(), outbox, models.EventBookingReceived, "", services.JobEventPayload{
			JobID:         job.ID,
			Pickup:        job.Pickup,
			Dropoff:       job.Dropoff,
			PickupTime:    job.PickupTime,
			VehicleType:   job.VehicleType,
			CustomerName:  job.CustomerName,
			CustomerEmail: job.CustomerEmail,
			CustomerPhone: job.CustomerPhone,
			Fare:          job.Fare,
			DistanceKm:    job.DistanceKm,
			DurationMin:   job.DurationMin,
			Notes:         job.Notes,
		})

		c.JSON(200, gin.H{"received": true})
	}
}

// parsePickupTime accepts the formats the booking form has sent over time.
func parsePickupTime(raw string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	var lastErr error
	for _, format := range formats {
		t, err := time.Parse(format, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
