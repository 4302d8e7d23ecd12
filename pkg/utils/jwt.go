package utils

import (
	"os"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func GenerateDriverToken(driver *models.Driver) (string, error) {
	claims := jwt.MapClaims{
		"id":    driver.ID,
		"email": driver.Email,
		"name":  driver.Name,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
}
