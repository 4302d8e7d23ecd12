package models

import "time"

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

// Outbox event kinds, one per lifecycle notification.
const (
	EventBookingReceived = "booking.received"
	EventJobAssigned     = "job.assigned"
	EventDriverResponse  = "driver.response"
	EventJobCompleted    = "job.completed"
)

// OutboxEvent is a queued notification. Handlers enqueue events after a
// state transition commits; the dispatcher sends them out of band so a
// failed email never fails the booking operation that produced it.
type OutboxEvent struct {
	ID        string       `json:"id" gorm:"primaryKey;column:id"`
	Kind      string       `json:"kind" gorm:"column:kind;not null"`
	JobID     string       `json:"jobId" gorm:"column:job_id;not null"`
	Recipient string       `json:"recipient" gorm:"column:recipient"`
	Payload   string       `json:"payload" gorm:"column:payload;type:text"`
	Status    OutboxStatus `json:"status" gorm:"column:status;not null;default:'pending'"`
	Attempts  int          `json:"attempts" gorm:"column:attempts;not null;default:0"`
	LastError string       `json:"lastError" gorm:"column:last_error"`
	CreatedAt time.Time    `json:"createdAt" gorm:"column:created_at"`
	SentAt    *time.Time   `json:"sentAt" gorm:"column:sent_at"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
