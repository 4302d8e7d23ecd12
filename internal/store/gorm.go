package store

import (
	"context"
	"errors"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobStore implements JobStore and OutboxStore on top of a GORM
// Postgres connection.
type GormJobStore struct {
	db *gorm.DB
}

func NewGormJobStore(db *gorm.DB) *GormJobStore {
	return &GormJobStore{db: db}
}

func (s *GormJobStore) Insert(ctx context.Context, job *models.Job) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (s *GormJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// UpdateStatus moves a job between statuses with a row lock plus a version
// check, so two racing transitions on the same booking cannot both succeed.
func (s *GormJobStore) UpdateStatus(ctx context.Context, id string, from, to models.JobStatus, expectDriver string, upd StatusUpdate) (*models.Job, error) {
	var updated models.Job

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var job models.Job
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&job).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if job.Status != from {
		tx.Rollback()
		return nil, ErrInvalidState
	}
	if expectDriver != "" && (job.AssignedTo == nil || *job.AssignedTo != expectDriver) {
		tx.Rollback()
		return nil, ErrWrongDriver
	}

	updates := map[string]interface{}{
		"status":  to,
		"version": gorm.Expr("version + 1"),
	}
	if upd.ClearAssignment {
		updates["assignedto"] = nil
		updates["driverpayout"] = nil
		updates["assignedat"] = nil
		updates["responseat"] = nil
	}
	if upd.AssignedTo != "" {
		updates["assignedto"] = upd.AssignedTo
		updates["driverpayout"] = upd.DriverPayout
	}
	if upd.AssignedAt != nil {
		updates["assignedat"] = *upd.AssignedAt
	}
	if upd.ResponseAt != nil {
		updates["responseat"] = *upd.ResponseAt
	}

	res := tx.Model(&models.Job{}).
		Where("id = ? AND status = ? AND version = ?", id, from, job.Version).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race to a concurrent transition.
		tx.Rollback()
		return nil, ErrInvalidState
	}

	if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *GormJobStore) ListByStatus(ctx context.Context, status models.JobStatus, orderBy string) ([]models.Job, error) {
	if orderBy == "" {
		orderBy = OrderByPickupTime
	}
	var jobs []models.Job
	if err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order(orderBy).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *GormJobStore) ListByDriver(ctx context.Context, driverEmail string) ([]models.Job, error) {
	var jobs []models.Job
	if err := s.db.WithContext(ctx).
		Where("assignedto = ? AND status IN (?)", driverEmail, []models.JobStatus{
			models.JobStatusAssigned,
			models.JobStatusConfirmed,
		}).
		Order(OrderByPickupTime).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// MoveToCompleted inserts the booking into completed_jobs and removes it
// from pending_jobs in one transaction, so the record is never in both
// partitions and never in neither.
func (s *GormJobStore) MoveToCompleted(ctx context.Context, id, driverEmail string, payout float64) (*models.CompletedJob, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var job models.Job
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&job).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if job.Status != models.JobStatusAssigned && job.Status != models.JobStatusConfirmed {
		tx.Rollback()
		return nil, ErrInvalidState
	}
	if job.AssignedTo == nil || *job.AssignedTo != driverEmail {
		tx.Rollback()
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

	if err := tx.Create(&completed).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	if err := tx.Where("id = ?", id).Delete(&models.Job{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &completed, nil
}

func (s *GormJobStore) ListCompleted(ctx context.Context) ([]models.CompletedJob, error) {
	var jobs []models.CompletedJob
	if err := s.db.WithContext(ctx).
		Order("completedat DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *GormJobStore) ListCompletedByDriver(ctx context.Context, driverEmail string) ([]models.CompletedJob, error) {
	var jobs []models.CompletedJob
	if err := s.db.WithContext(ctx).
		Where("driveremail = ?", driverEmail).
		Order("completedat DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Driver accounts.

func (s *GormJobStore) GetDriverByEmail(ctx context.Context, email string) (*models.Driver, error) {
	var driver models.Driver
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

func (s *GormJobStore) SaveDriver(ctx context.Context, driver *models.Driver) error {
	return s.db.WithContext(ctx).Save(driver).Error
}

// Outbox operations.

func (s *GormJobStore) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *GormJobStore) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *GormJobStore) MarkSent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  models.OutboxStatusSent,
			"sent_at": now,
		}).Error
}

func (s *GormJobStore) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	status := models.OutboxStatusPending
	if attempts >= maxOutboxAttempts {
		status = models.OutboxStatusFailed
	}
	return s.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   attempts,
			"last_error": lastError,
		}).Error
}

// maxOutboxAttempts bounds notification retries before an event is parked
// as failed for manual inspection.
const maxOutboxAttempts = 5
