package store

import (
	"context"
	"errors"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
)

var (
	// ErrNotFound means no booking with the given ID exists in the partition
	// the operation targets.
	ErrNotFound = errors.New("job not found")

	// ErrDuplicateKey means a booking with the given ID already exists.
	ErrDuplicateKey = errors.New("job already exists")

	// ErrInvalidState means the booking is not in the status the transition
	// requires. Two racing updates resolve here: only one sees the expected
	// status, the other gets ErrInvalidState.
	ErrInvalidState = errors.New("job is not in the required status")

	// ErrWrongDriver means the booking is assigned to a different driver.
	ErrWrongDriver = errors.New("job is not assigned to this driver")
)

// Ordering for list operations.
const (
	OrderByCreatedAt  = "createdat ASC"
	OrderByPickupTime = "pickuptime ASC"
)

// StatusUpdate carries the assignment fields written alongside a status
// transition. ClearAssignment resets the driver fields, used when a refused
// job goes back to pending.
type StatusUpdate struct {
	AssignedTo      string
	DriverPayout    float64
	AssignedAt      *time.Time
	ResponseAt      *time.Time
	ClearAssignment bool
}

// JobStore is durable keyed storage for booking records, partitioned into
// active (pending_jobs) and completed (completed_jobs). A booking lives in
// exactly one partition at a time.
//
// UpdateStatus is the single transition primitive: it moves a job from one
// status to another only if the job is currently in the expected status
// (and, when expectDriver is non-empty, assigned to that driver). Transition
// legality is the caller's concern, checked through models.ValidTransition.
type JobStore interface {
	Insert(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	UpdateStatus(ctx context.Context, id string, from, to models.JobStatus, expectDriver string, upd StatusUpdate) (*models.Job, error)
	ListByStatus(ctx context.Context, status models.JobStatus, orderBy string) ([]models.Job, error)
	ListByDriver(ctx context.Context, driverEmail string) ([]models.Job, error)
	MoveToCompleted(ctx context.Context, id, driverEmail string, payout float64) (*models.CompletedJob, error)
	ListCompleted(ctx context.Context) ([]models.CompletedJob, error)
	ListCompletedByDriver(ctx context.Context, driverEmail string) ([]models.CompletedJob, error)
}

// DriverStore holds driver portal accounts.
type DriverStore interface {
	GetDriverByEmail(ctx context.Context, email string) (*models.Driver, error)
	SaveDriver(ctx context.Context, driver *models.Driver) error
}

// OutboxStore queues lifecycle notifications for the dispatcher.
type OutboxStore interface {
	Enqueue(ctx context.Context, event *models.OutboxEvent) error
	FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastError string) error
}
