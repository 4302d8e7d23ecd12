package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Driver struct {
	gorm.Model
	Name         string     `json:"name" gorm:"column:name"`
	Email        string     `json:"email" gorm:"column:email;unique;not null"`
	Password     string     `json:"-" gorm:"-:migration"` // Temporary field for password handling
	PasswordHash string     `json:"-" gorm:"column:password_hash"`
	LastLogin    *time.Time `json:"lastLogin" gorm:"column:last_login"`
}

// TableName specifies the table name
func (Driver) TableName() string {
	return "drivers"
}

func (d *Driver) HashPassword() error {
	if d.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	d.PasswordHash = string(hashedPassword)
	return nil
}

func (d *Driver) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password))
}

// NeedsPassword reports whether the driver account has not set a portal
// password yet.
func (d *Driver) NeedsPassword() bool {
	return d.PasswordHash == ""
}
