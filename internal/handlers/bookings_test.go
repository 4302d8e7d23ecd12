package handlers

import (
	"encoding/json"
	"testing"

	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPendingBookings(t *testing.T) {
	s := store.NewMemoryJobStore()
	r := newTestRouter(s)

	seedPendingJob(t, s, "1001")
	seedPendingJob(t, s, "1002")

	// Assigned jobs do not show on the pending board.
	seedPendingJob(t, s, "1003")
	assignViaAPI(t, r, "1003", "marco@example.com")

	w := getPath(r, "/pending-bookings")
	assert.Equal(t, 200, w.Code)

	var bookings []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	require.Len(t, bookings, 2)
	assert.Equal(t, "pending", bookings[0]["status"])
}

func TestGetCompletedJobs(t *testing.T) {
	s := store.NewMemoryJobStore()
	r := newTestRouter(s)

	seedPendingJob(t, s, "1001")
	assignViaAPI(t, r, "1001", "marco@example.com")
	w := postJSON(r, "/complete-job", gin.H{"jobId": "1001", "driverEmail": "marco@example.com"})
	require.Equal(t, 200, w.Code)

	w = getPath(r, "/completed-jobs")
	assert.Equal(t, 200, w.Code)

	var jobs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "1001", jobs[0]["id"])
	assert.Equal(t, "marco@example.com", jobs[0]["driverEmail"])
}
