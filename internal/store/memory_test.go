package store

import (
	"context"
	"testing"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(id string, status models.JobStatus) *models.Job {
	return &models.Job{
		ID:            id,
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Pickup:        "Crown Casino",
		Dropoff:       "Melbourne Airport",
		PickupTime:    time.Date(2026, 9, 5, 10, 30, 0, 0, time.UTC),
		VehicleType:   "sedan",
		Fare:          150.50,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()

	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))

	err := s.Insert(ctx, newJob("1001", models.JobStatusPending))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsertRejectsIDAlreadyCompleted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()

	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))
	assignJob(t, s, "1001", "driver@example.com")
	_, err := s.MoveToCompleted(ctx, "1001", "driver@example.com", 103.79)
	require.NoError(t, err)

	err = s.Insert(ctx, newJob("1001", models.JobStatusPending))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestGetNotFound(t *testing.T) {
	s := NewMemoryJobStore()

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func assignJob(t *testing.T, s JobStore, id, email string) *models.Job {
	t.Helper()
	now := time.Now().UTC()
	job, err := s.UpdateStatus(context.Background(), id,
		models.JobStatusPending, models.JobStatusAssigned, "",
		StatusUpdate{AssignedTo: email, DriverPayout: 103.79, AssignedAt: &now})
	require.NoError(t, err)
	return job
}

func TestUpdateStatusAssign(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()
	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))

	job := assignJob(t, s, "1001", "driver@example.com")

	assert.Equal(t, models.JobStatusAssigned, job.Status)
	require.NotNil(t, job.AssignedTo)
	assert.Equal(t, "driver@example.com", *job.AssignedTo)
	require.NotNil(t, job.DriverPayout)
	assert.Equal(t, 103.79, *job.DriverPayout)
	assert.NotNil(t, job.AssignedAt)
}

func TestUpdateStatusSecondAssignLoses(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()
	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))

	assignJob(t, s, "1001", "first@example.com")

	_, err := s.UpdateStatus(ctx, "1001",
		models.JobStatusPending, models.JobStatusAssigned, "",
		StatusUpdate{AssignedTo: "second@example.com", DriverPayout: 103.79})
	assert.ErrorIs(t, err, ErrInvalidState)

	job, err := s.Get(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", *job.AssignedTo)
}

func TestUpdateStatusWrongDriver(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()
	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))
	assignJob(t, s, "1001", "driver@example.com")

	now := time.Now().UTC()
	_, err := s.UpdateStatus(ctx, "1001",
		models.JobStatusAssigned, models.JobStatusConfirmed, "other@example.com",
		StatusUpdate{ResponseAt: &now})
	assert.ErrorIs(t, err, ErrWrongDriver)
}

func TestRefusalClearsAssignment(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()
	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))
	assignJob(t, s, "1001", "driver@example.com")

	job, err := s.UpdateStatus(ctx, "1001",
		models.JobStatusAssigned, models.JobStatusPending, "driver@example.com",
		StatusUpdate{ClearAssignment: true})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Nil(t, job.AssignedTo)
	assert.Nil(t, job.DriverPayout)
	assert.Nil(t, job.AssignedAt)
	assert.Nil(t, job.ResponseAt)

	// A refused job can be picked up by another driver.
	reassigned := assignJob(t, s, "1001", "second@example.com")
	assert.Equal(t, "second@example.com", *reassigned.AssignedTo)
}

func TestMoveToCompleted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()
	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))
	assignJob(t, s, "1001", "driver@example.com")

	completed, err := s.MoveToCompleted(ctx, "1001", "driver@example.com", 103.79)
	require.NoError(t, err)

	assert.Equal(t, "1001", completed.ID)
	assert.Equal(t, models.JobStatusCompleted, completed.Status)
	assert.Equal(t, "driver@example.com", completed.DriverEmail)
	assert.Equal(t, 103.79, completed.DriverPay)
	assert.False(t, completed.CompletedAt.IsZero())

	// The job must leave the active partition.
	_, err = s.Get(ctx, "1001")
	assert.ErrorIs(t, err, ErrNotFound)

	// Completing again is not found, not a double completion.
	_, err = s.MoveToCompleted(ctx, "1001", "driver@example.com", 103.79)
	assert.ErrorIs(t, err, ErrNotFound)

	history, err := s.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "1001", history[0].ID)
}

func TestMoveToCompletedGuards(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()
	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))

	// Pending jobs cannot be completed.
	_, err := s.MoveToCompleted(ctx, "1001", "driver@example.com", 103.79)
	assert.ErrorIs(t, err, ErrInvalidState)

	assignJob(t, s, "1001", "driver@example.com")

	_, err = s.MoveToCompleted(ctx, "1001", "other@example.com", 103.79)
	assert.ErrorIs(t, err, ErrWrongDriver)
}

func TestListByStatusOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()

	older := newJob("1001", models.JobStatusPending)
	older.CreatedAt = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	newer := newJob("1002", models.JobStatusPending)
	newer.CreatedAt = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, newer))
	require.NoError(t, s.Insert(ctx, older))

	jobs, err := s.ListByStatus(ctx, models.JobStatusPending, OrderByCreatedAt)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "1001", jobs[0].ID)
	assert.Equal(t, "1002", jobs[1].ID)
}

func TestListByDriver(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()

	mine := newJob("1001", models.JobStatusPending)
	require.NoError(t, s.Insert(ctx, mine))
	assignJob(t, s, "1001", "driver@example.com")

	other := newJob("1002", models.JobStatusPending)
	require.NoError(t, s.Insert(ctx, other))
	assignJob(t, s, "1002", "other@example.com")

	unassigned := newJob("1003", models.JobStatusPending)
	require.NoError(t, s.Insert(ctx, unassigned))

	jobs, err := s.ListByDriver(ctx, "driver@example.com")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "1001", jobs[0].ID)
}

func TestListCompletedByDriver(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()

	require.NoError(t, s.Insert(ctx, newJob("1001", models.JobStatusPending)))
	assignJob(t, s, "1001", "driver@example.com")
	_, err := s.MoveToCompleted(ctx, "1001", "driver@example.com", 103.79)
	require.NoError(t, err)

	require.NoError(t, s.Insert(ctx, newJob("1002", models.JobStatusPending)))
	assignJob(t, s, "1002", "other@example.com")
	_, err = s.MoveToCompleted(ctx, "1002", "other@example.com", 50)
	require.NoError(t, err)

	history, err := s.ListCompletedByDriver(ctx, "driver@example.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "1001", history[0].ID)
}

func TestOutboxLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()

	require.NoError(t, s.Enqueue(ctx, &models.OutboxEvent{
		ID:     "ev-1",
		Kind:   models.EventJobAssigned,
		JobID:  "1001",
		Status: models.OutboxStatusPending,
	}))

	pending, err := s.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, s.MarkSent(ctx, "ev-1"))

	pending, err = s.FetchPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRetriesUntilCap(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()

	require.NoError(t, s.Enqueue(ctx, &models.OutboxEvent{
		ID:     "ev-1",
		Kind:   models.EventJobAssigned,
		JobID:  "1001",
		Status: models.OutboxStatusPending,
	}))

	// Failed sends stay pending until the attempt cap parks them.
	for attempt := 1; attempt < maxOutboxAttempts; attempt++ {
		require.NoError(t, s.MarkFailed(ctx, "ev-1", attempt, "smtp timeout"))
		pending, err := s.FetchPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1, "attempt %d should still be retryable", attempt)
	}

	require.NoError(t, s.MarkFailed(ctx, "ev-1", maxOutboxAttempts, "smtp timeout"))
	pending, err := s.FetchPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDriverStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()

	_, err := s.GetDriverByEmail(ctx, "marco@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	driver := &models.Driver{Name: "Marco", Email: "marco@example.com"}
	require.NoError(t, s.SaveDriver(ctx, driver))
	assert.NotZero(t, driver.ID)

	got, err := s.GetDriverByEmail(ctx, "marco@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Marco", got.Name)
}
