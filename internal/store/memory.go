package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
)

// MemoryJobStore implements JobStore and OutboxStore with in-memory maps.
// Used by the test suite; semantics mirror the GORM store.
type MemoryJobStore struct {
	mu        sync.Mutex
	jobs      map[string]*models.Job
	completed map[string]*models.CompletedJob
	drivers   map[string]*models.Driver
	events    map[string]*models.OutboxEvent
	nextID    uint
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs:      make(map[string]*models.Job),
		completed: make(map[string]*models.CompletedJob),
		drivers:   make(map[string]*models.Driver),
		events:    make(map[string]*models.OutboxEvent),
	}
}

func (m *MemoryJobStore) Insert(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.ID]; exists {
		return ErrDuplicateKey
	}
	if _, exists := m.completed[job.ID]; exists {
		return ErrDuplicateKey
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *MemoryJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *MemoryJobStore) UpdateStatus(ctx context.Context, id string, from, to models.JobStatus, expectDriver string, upd StatusUpdate) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[id]
	if !exists {
		return nil, ErrNotFound
	}
	if job.Status != from {
		return nil, ErrInvalidState
	}
	if expectDriver != "" && (job.AssignedTo == nil || *job.AssignedTo != expectDriver) {
		return nil, ErrWrongDriver
	}

	job.Status = to
	job.Version++
	if upd.ClearAssignment {
		job.AssignedTo = nil
		job.DriverPayout = nil
		job.AssignedAt = nil
		job.ResponseAt = nil
	}
	if upd.AssignedTo != "" {
		assignedTo := upd.AssignedTo
		payout := upd.DriverPayout
		job.AssignedTo = &assignedTo
		job.DriverPayout = &payout
	}
	if upd.AssignedAt != nil {
		t := *upd.AssignedAt
		job.AssignedAt = &t
	}
	if upd.ResponseAt != nil {
		t := *upd.ResponseAt
		job.ResponseAt = &t
	}

	cp := *job
	return &cp, nil
}

func (m *MemoryJobStore) ListByStatus(ctx context.Context, status models.JobStatus, orderBy string) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Job
	for _, job := range m.jobs {
		if job.Status == status {
			out = append(out, *job)
		}
	}
	sortJobs(out, orderBy)
	return out, nil
}

func (m *MemoryJobStore) ListByDriver(ctx context.Context, driverEmail string) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Job
	for _, job := range m.jobs {
		if job.AssignedTo == nil || *job.AssignedTo != driverEmail {
			continue
		}
		if job.Status == models.JobStatusAssigned || job.Status == models.JobStatusConfirmed {
			out = append(out, *job)
		}
	}
	sortJobs(out, OrderByPickupTime)
	return out, nil
}

func (m *MemoryJobStore) MoveToCompleted(ctx context.Context, id, driverEmail string, payout float64) (*models.CompletedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[id]
	if !exists {
		return nil, ErrNotFound
	}
	if job.Status != models.JobStatusAssigned && job.Status != models.JobStatusConfirmed {
		return nil, ErrInvalidState
	}
	if job.AssignedTo == nil || *job.AssignedTo != driverEmail {
		return nil, ErrWrongDriver
	}

	completed := models.CompletedJob{
		ID:            job.ID,
		CustomerName:  job.CustomerName,
		CustomerEmail: job.CustomerEmail,
		CustomerPhone: job.CustomerPhone,
		Pickup:        job.Pickup,
		Dropoff:       job.Dropoff,
		PickupTime:    job.PickupTime,
		VehicleType:   job.VehicleType,
		Fare:          job.Fare,
		DistanceKm:    job.DistanceKm,
		DurationMin:   job.DurationMin,
		Notes:         job.Notes,
		Status:        models.JobStatusCompleted,
		DriverEmail:   driverEmail,
		DriverPay:     payout,
		CreatedAt:     job.CreatedAt,
		CompletedAt:   time.Now().UTC(),
	}

	m.completed[id] = &completed
	delete(m.jobs, id)

	cp := completed
	return &cp, nil
}

func (m *MemoryJobStore) ListCompleted(ctx context.Context) ([]models.CompletedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.CompletedJob
	for _, job := range m.completed {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (m *MemoryJobStore) ListCompletedByDriver(ctx context.Context, driverEmail string) ([]models.CompletedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.CompletedJob
	for _, job := range m.completed {
		if job.DriverEmail == driverEmail {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (m *MemoryJobStore) GetDriverByEmail(ctx context.Context, email string) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	driver, exists := m.drivers[email]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *driver
	return &cp, nil
}

func (m *MemoryJobStore) SaveDriver(ctx context.Context, driver *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if driver.ID == 0 {
		m.nextID++
		driver.ID = m.nextID
	}
	cp := *driver
	m.drivers[driver.Email] = &cp
	return nil
}

func (m *MemoryJobStore) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *MemoryJobStore) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.OutboxEvent
	for _, ev := range m.events {
		if ev.Status == models.OutboxStatusPending {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryJobStore) MarkSent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, exists := m.events[id]
	if !exists {
		return ErrNotFound
	}
	now := time.Now().UTC()
	ev.Status = models.OutboxStatusSent
	ev.SentAt = &now
	return nil
}

func (m *MemoryJobStore) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, exists := m.events[id]
	if !exists {
		return ErrNotFound
	}
	ev.Attempts = attempts
	ev.LastError = lastError
	if attempts >= maxOutboxAttempts {
		ev.Status = models.OutboxStatusFailed
	}
	return nil
}

func sortJobs(jobs []models.Job, orderBy string) {
	switch orderBy {
	case OrderByCreatedAt:
		sort.Slice(jobs, func(i, j int) bool {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		})
	default:
		sort.Slice(jobs, func(i, j int) bool {
			return jobs[i].PickupTime.Before(jobs[j].PickupTime)
		})
	}
}
