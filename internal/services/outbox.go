package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/chauffeurdeluxe/booking-backend/pkg/utils"
	"github.com/google/uuid"
)

// JobEventPayload is the JSON body of an outbox event. One shape covers all
// kinds; unused fields stay zero.
type JobEventPayload struct {
	JobID         string    `json:"jobId"`
	Pickup        string    `json:"pickup"`
	Dropoff       string    `json:"dropoff"`
	PickupTime    time.Time `json:"pickupTime"`
	VehicleType   string    `json:"vehicleType"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerPhone string    `json:"customerPhone"`
	Fare          float64   `json:"fare"`
	DistanceKm    float64   `json:"distanceKm"`
	DurationMin   float64   `json:"durationMin"`
	Notes         string    `json:"notes"`
	DriverEmail   string    `json:"driverEmail"`
	DriverPay     float64   `json:"driverPay"`
	Confirmed     bool      `json:"confirmed"`
}

// EnqueueJobEvent queues a lifecycle notification. Enqueue happens after the
// primary state transition has committed; a failure here costs at most a
// notification, never the booking operation, so it is logged and swallowed.
func EnqueueJobEvent(ctx context.Context, outbox store.OutboxStore, kind, recipient string, payload JobEventPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event for job %s: %v", kind, payload.JobID, err)
		return
	}

	event := &models.OutboxEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		JobID:     payload.JobID,
		Recipient: recipient,
		Payload:   string(body),
		Status:    models.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := outbox.Enqueue(ctx, event); err != nil {
		log.Printf("Failed to enqueue %s event for job %s: %v", kind, payload.JobID, err)
	}
}

// Dispatcher drains the outbox: sends the email for each pending event,
// pushes the update to Redis pub/sub and the dashboard hub, and marks the
// event sent or failed. Failed sends are retried on later passes until the
// attempt cap parks them.
type Dispatcher struct {
	Outbox   store.OutboxStore
	Hub      *Hub
	Interval time.Duration
	Batch    int

	// Send delivers one event's email. Swappable in tests.
	Send func(kind string, recipient string, p JobEventPayload) error
}

func NewDispatcher(outbox store.OutboxStore, hub *Hub) *Dispatcher {
	return &Dispatcher{
		Outbox:   outbox,
		Hub:      hub,
		Interval: 15 * time.Second,
		Batch:    20,
		Send:     sendJobEventEmail,
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchPending(ctx)
		}
	}
}

// DispatchPending processes one batch of pending events.
func (d *Dispatcher) DispatchPending(ctx context.Context) {
	events, err := d.Outbox.FetchPending(ctx, d.Batch)
	if err != nil {
		log.Printf("Outbox fetch error: %v", err)
		return
	}

	for _, event := range events {
		var payload JobEventPayload
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			// Unparseable payloads can never succeed; park immediately.
			if markErr := d.Outbox.MarkFailed(ctx, event.ID, event.Attempts+1, fmt.Sprintf("bad payload: %v", err)); markErr != nil {
				log.Printf("Outbox mark-failed error for event %s: %v", event.ID, markErr)
			}
			continue
		}

		if err := d.Send(event.Kind, event.Recipient, payload); err != nil {
			log.Printf("Outbox send failed for %s event %s: %v", event.Kind, event.ID, err)
			if markErr := d.Outbox.MarkFailed(ctx, event.ID, event.Attempts+1, err.Error()); markErr != nil {
				log.Printf("Outbox mark-failed error for event %s: %v", event.ID, markErr)
			}
			continue
		}

		if err := d.Outbox.MarkSent(ctx, event.ID); err != nil {
			log.Printf("Outbox mark-sent error for event %s: %v", event.ID, err)
		}

		// Live feeds are best effort on top of the durable email path.
		if RedisClient != nil {
			if err := PublishJobUpdate(ctx, payload.JobID, event.Kind, map[string]interface{}{
				"driverEmail": payload.DriverEmail,
			}); err != nil {
				log.Printf("Failed to publish job update for %s: %v", payload.JobID, err)
			}
		}
		if d.Hub != nil {
			d.Hub.BroadcastJobUpdate(event.Kind, payload)
		}
	}
}

func sendJobEventEmail(kind, recipient string, p JobEventPayload) error {
	switch kind {
	case models.EventBookingReceived:
		return utils.SendBookingReceivedEmail(p.CustomerName, p.CustomerEmail, p.CustomerPhone,
			p.Pickup, p.Dropoff, p.PickupTime, p.VehicleType, p.Fare, p.DistanceKm, p.DurationMin, p.Notes)
	case models.EventJobAssigned:
		return utils.SendJobAssignedEmail(recipient, p.Pickup, p.Dropoff, p.PickupTime,
			p.CustomerName, p.CustomerPhone, p.DriverPay)
	case models.EventDriverResponse:
		return utils.SendDriverResponseEmail(p.JobID, p.DriverEmail, p.Confirmed)
	case models.EventJobCompleted:
		return utils.SendJobCompletedEmail(p.JobID, p.DriverEmail, p.DriverPay)
	default:
		return fmt.Errorf("unknown outbox event kind %q", kind)
	}
}
