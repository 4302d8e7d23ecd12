package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/chauffeurdeluxe/booking-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// CheckDriver tells the portal whether a driver account still needs its
// first password.
func CheckDriver(ds store.DriverStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email string `json:"email" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Email required"})
			return
		}

		email := strings.TrimSpace(strings.ToLower(input.Email))
		driver, err := ds.GetDriverByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(200, gin.H{"needsPassword": false})
				return
			}
			c.JSON(500, gin.H{"error": "Server error"})
			return
		}

		c.JSON(200, gin.H{"needsPassword": driver.NeedsPassword()})
	}
}

// DriverSetPassword sets the portal password for a provisioned driver account.
func DriverSetPassword(ds store.DriverStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email       string `json:"email" binding:"required"`
			NewPassword string `json:"newPassword" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Email and password required"})
			return
		}

		email := strings.TrimSpace(strings.ToLower(input.Email))
		driver, err := ds.GetDriverByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(404, gin.H{"error": "Email not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Server error"})
			return
		}

		driver.Password = input.NewPassword
		if err := driver.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Failed to set password"})
			return
		}

		if err := ds.SaveDriver(c.Request.Context(), driver); err != nil {
			c.JSON(500, gin.H{"error": "Failed to set password"})
			return
		}

		c.JSON(200, gin.H{"success": true, "message": "Password set successfully"})
	}
}

// DriverLogin checks credentials and issues a portal token.
func DriverLogin(ds store.DriverStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Email and password required"})
			return
		}

		email := strings.TrimSpace(strings.ToLower(input.Email))
		driver, err := ds.GetDriverByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid email or password"})
			return
		}

		if err := driver.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid email or password"})
			return
		}

		now := time.Now().UTC()
		driver.LastLogin = &now
		if err := ds.SaveDriver(c.Request.Context(), driver); err != nil {
			log.Printf("Failed to record last login for %s: %v", email, err)
		}

		token, err := utils.GenerateDriverToken(driver)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"success": true,
			"token":   token,
			"driver": gin.H{
				"id":    driver.ID,
				"name":  driver.Name,
				"email": driver.Email,
			},
		})
	}
}
