package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriverPassword(t *testing.T) {
	driver := &Driver{Name: "Marco", Email: "marco@chauffeurdeluxe.com.au"}
	assert.True(t, driver.NeedsPassword())

	driver.Password = "hunter22"
	assert.NoError(t, driver.HashPassword())
	assert.False(t, driver.NeedsPassword())
	assert.NotEqual(t, "hunter22", driver.PasswordHash)

	assert.NoError(t, driver.CheckPassword("hunter22"))
	assert.Error(t, driver.CheckPassword("hunter23"))
}

func TestHashPasswordEmptyIsNoop(t *testing.T) {
	driver := &Driver{Email: "new@chauffeurdeluxe.com.au"}
	assert.NoError(t, driver.HashPassword())
	assert.True(t, driver.NeedsPassword())
}
