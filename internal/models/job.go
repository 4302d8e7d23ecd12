package models

import (
	"strconv"
	"time"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusAssigned  JobStatus = "assigned"
	JobStatusConfirmed JobStatus = "confirmed"
	JobStatusCompleted JobStatus = "completed"
)

// legalTransitions encodes the booking lifecycle. Refusal is the only
// backwards edge: an assigned job drops back to pending for reassignment.
// Completed is terminal.
var legalTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:   {JobStatusAssigned},
	JobStatusAssigned:  {JobStatusConfirmed, JobStatusCompleted, JobStatusPending},
	JobStatusConfirmed: {JobStatusCompleted},
}

// ValidTransition reports whether moving a job from one status to another
// is legal. Every handler goes through this check.
func ValidTransition(from, to JobStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Job is an active booking living in the pending_jobs table. Once completed
// it is moved to completed_jobs and never comes back.
type Job struct {
	ID            string     `json:"id" gorm:"primaryKey;column:id"`
	CustomerName  string     `json:"customerName" gorm:"column:customername;not null"`
	CustomerEmail string     `json:"customerEmail" gorm:"column:customeremail;not null"`
	CustomerPhone string     `json:"customerPhone" gorm:"column:customerphone"`
	Pickup        string     `json:"pickup" gorm:"column:pickup;not null"`
	Dropoff       string     `json:"dropoff" gorm:"column:dropoff;not null"`
	PickupTime    time.Time  `json:"pickupTime" gorm:"column:pickuptime;not null"`
	VehicleType   string     `json:"vehicleType" gorm:"column:vehicletype"`
	Fare          float64    `json:"fare" gorm:"column:fare;not null"`
	DistanceKm    float64    `json:"distanceKm" gorm:"column:distance_km"`
	DurationMin   float64    `json:"durationMin" gorm:"column:duration_min"`
	Notes         string     `json:"notes" gorm:"column:notes"`
	Status        JobStatus  `json:"status" gorm:"column:status;not null;default:'pending'"`
	AssignedTo    *string    `json:"assignedTo" gorm:"column:assignedto"`
	DriverPayout  *float64   `json:"driverPayout" gorm:"column:driverpayout"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"column:createdat"`
	AssignedAt    *time.Time `json:"assignedAt" gorm:"column:assignedat"`
	ResponseAt    *time.Time `json:"responseAt" gorm:"column:responseat"`
	Version       int        `json:"-" gorm:"column:version;not null;default:0"`
}

func (Job) TableName() string {
	return "pending_jobs"
}

// NewJobID derives a booking ID from the current time, matching the IDs
// handed out to customers in their payment confirmation.
func NewJobID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
