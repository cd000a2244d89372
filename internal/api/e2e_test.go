package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nazotronic/Tourify/internal/api"
	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/utils"
)

func e2eConfig() *config.Config {
	return &config.Config{
		JwtSecret:               "e2e-test-secret",
		JwtTTL:                  time.Hour,
		AdminEmail:              "admin@tourify.example.com",
		PasswordRegexp:          "^.{8,}$",
		RecentBookingsLimit:     5,
		CatalogCacheTTL:         time.Minute,
		RateLimitSoftBucketSize: 1000,
		RateLimitSoftRefillRate: 1000,
		RateLimitHardBucketSize: 1000,
		RateLimitHardRefillRate: 1000,
	}
}

type e2eClient struct {
	t      *testing.T
	router *gin.Engine
}

func (c *e2eClient) do(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

// TestEndToEndBookingFlow walks the whole happy path over the real router
// and a real MongoDB: register, catalog, booking, admin decision, dashboard.
func TestEndToEndBookingFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := e2eConfig()

	dbName := fmt.Sprintf("testdb_e2e_%d", time.Now().UnixNano())
	database := utils.SetupTestDB(t, dbName, "users", "tours", "bookings", "support_messages")
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = database.Client().Disconnect(context.Background())
	})
	require.NoError(t, api.EnsureIndexes(context.Background(), database))

	client := &e2eClient{t: t, router: api.SetupRouter(cfg, database, nil, nil)}

	type authResp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}

	// Customer registers
	w := client.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "password123", "fullName": "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var alice authResp
	decodeInto(t, w, &alice)
	require.NotEmpty(t, alice.Token)

	// The admin account starts as a normal registration and gets the role
	// granted out of band, then signs in through admin-login
	w = client.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email": cfg.AdminEmail, "password": "admin-pass-1", "fullName": "The Boss",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	_, err := database.Collection("users").UpdateOne(context.Background(),
		bson.M{"email": cfg.AdminEmail},
		bson.M{"$set": bson.M{"role": models.RoleAdmin}})
	require.NoError(t, err)

	w = client.do("POST", "/api/v1/auth/admin-login", "", map[string]string{"password": "admin-pass-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var admin authResp
	decodeInto(t, w, &admin)
	require.NotEmpty(t, admin.Token)

	// The dashboard is open to any signed-in caller; with no bookings yet
	// Alice sees an empty summary. Guests are turned away.
	w = client.do("GET", "/api/v1/dashboard", alice.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = client.do("GET", "/api/v1/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Admin publishes a tour
	w = client.do("POST", "/api/v1/tours", admin.Token, map[string]interface{}{
		"title":        "Amalfi Coast Escape",
		"country":      "Italy",
		"durationDays": 7,
		"priceFrom":    1200.0,
		"difficulty":   "relax",
		"type":         "sea",
		"tags":         []string{"beach", "food"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tour models.Tour
	decodeInto(t, w, &tour)
	require.False(t, tour.ID.IsZero())

	// The public catalog serves and filters it
	w = client.do("GET", "/api/v1/tours?type=sea", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Tour
	decodeInto(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Amalfi Coast Escape", listed[0].Title)

	w = client.do("GET", "/api/v1/tours?type=mountain", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, w, &listed)
	assert.Empty(t, listed)

	// Alice favourites and books the tour
	w = client.do("POST", "/api/v1/favourites/toggle", alice.Token, map[string]string{
		"tourId": tour.ID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = client.do("POST", "/api/v1/bookings", alice.Token, map[string]interface{}{
		"tourId":    tour.ID.String(),
		"startDate": "2026-09-10",
		"people":    2,
		"contact":   map[string]string{"fullName": "Alice", "email": "alice@example.com"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booking models.Booking
	decodeInto(t, w, &booking)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, alice.User.ID, booking.UserID)
	assert.Equal(t, "Amalfi Coast Escape", booking.TourTitle)

	// Admin sees the booking and confirms it
	w = client.do("GET", "/api/v1/bookings", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bookings []models.Booking
	decodeInto(t, w, &bookings)
	require.Len(t, bookings, 1)

	w = client.do("PUT", "/api/v1/bookings/"+booking.ID.String(), admin.Token,
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var decided models.Booking
	decodeInto(t, w, &decided)
	assert.Equal(t, models.BookingStatusConfirmed, decided.Status)

	// The decision is terminal
	w = client.do("PUT", "/api/v1/bookings/"+booking.ID.String(), admin.Token,
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Dashboard reflects one confirmed booking with its revenue, for the
	// admin over the whole store and for Alice over her own bookings
	type summaryResp struct {
		Total        int     `json:"total"`
		Confirmed    int     `json:"confirmed"`
		TotalRevenue float64 `json:"totalRevenue"`
		ByCountry    []struct {
			Key   string `json:"key"`
			Count int    `json:"count"`
		} `json:"byCountry"`
	}
	for _, token := range []string{admin.Token, alice.Token} {
		w = client.do("GET", "/api/v1/dashboard", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var summary summaryResp
		decodeInto(t, w, &summary)
		assert.Equal(t, 1, summary.Total)
		assert.Equal(t, 1, summary.Confirmed)
		assert.Equal(t, 2400.0, summary.TotalRevenue)
		require.Len(t, summary.ByCountry, 1)
		assert.Equal(t, "Italy", summary.ByCountry[0].Key)
	}

	// Alice's account shows the favourite
	w = client.do("GET", "/api/v1/users/"+alice.User.ID.String(), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var account models.User
	decodeInto(t, w, &account)
	require.Len(t, account.Favourites, 1)
	assert.Equal(t, tour.ID, account.Favourites[0])
}
