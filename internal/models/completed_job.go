package models

import "time"

// CompletedJob is the long-term record of a finished booking. Rows here are
// written exactly once, when the job leaves pending_jobs, and never mutated.
type CompletedJob struct {
	ID            string    `json:"id" gorm:"primaryKey;column:id"`
	CustomerName  string    `json:"customerName" gorm:"column:customername"`
	CustomerEmail string    `json:"customerEmail" gorm:"column:customeremail"`
	CustomerPhone string    `json:"customerPhone" gorm:"column:customerphone"`
	Pickup        string    `json:"pickup" gorm:"column:pickup"`
	Dropoff       string    `json:"dropoff" gorm:"column:dropoff"`
	PickupTime    time.Time `json:"pickupTime" gorm:"column:pickuptime"`
	VehicleType   string    `json:"vehicleType" gorm:"column:vehicletype"`
	Fare          float64   `json:"fare" gorm:"column:fare"`
	DistanceKm    float64   `json:"distanceKm" gorm:"column:distance_km"`
	DurationMin   float64   `json:"durationMin" gorm:"column:duration_min"`
	Notes         string    `json:"notes" gorm:"column:notes"`
	Status        JobStatus `json:"status" gorm:"column:status;not null;default:'completed'"`
	DriverEmail   string    `json:"driverEmail" gorm:"column:driveremail;not null"`
	DriverPay     float64   `json:"driverPay" gorm:"column:driverpay;not null"`
	CreatedAt     time.Time `json:"createdAt" gorm:"column:createdat"`
	CompletedAt   time.Time `json:"completedAt" gorm:"column:completedat;not null"`
}

func (CompletedJob) TableName() string {
	return "completed_jobs"
}
