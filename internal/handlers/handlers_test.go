package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/models"
	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires every handler against the in-memory store. Auth
// middleware is exercised separately; here the routes run open so tests can
// act for any driver.
func newTestRouter(s *store.MemoryJobStore) *gin.Engine {
	r := gin.New()

	r.POST("/webhook", StripeWebhook(s, s))
	r.POST("/assign-job", AssignJob(s, s))
	r.GET("/pending-bookings", GetPendingBookings(s))
	r.GET("/completed-jobs", GetCompletedJobs(s))
	r.GET("/driver-jobs", GetDriverJobs(s))
	r.POST("/update-job", UpdateJob(s, s))
	r.POST("/complete-job", CompleteJob(s, s))
	r.POST("/refuse-job", RefuseJob(s, s))
	r.POST("/check-driver", CheckDriver(s))
	r.POST("/driver-set-password", DriverSetPassword(s))
	r.POST("/driver-login", DriverLogin(s))

	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPath(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seedPendingJob(t *testing.T, s *store.MemoryJobStore, id string) *models.Job {
	t.Helper()
	job := &models.Job{
		ID:            id,
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		CustomerPhone: "+61400000000",
		Pickup:        "Crown Casino",
		Dropoff:       "Melbourne Airport",
		PickupTime:    time.Date(2026, 9, 5, 10, 30, 0, 0, time.UTC),
		VehicleType:   "sedan",
		Fare:          150.50,
		Status:        models.JobStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.Insert(context.Background(), job))
	return job
}
