package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nazotronic/Tourify/internal/auth"
	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		JwtSecret:           "test-secret",
		JwtTTL:              time.Hour,
		AdminEmail:          "admin@tourify.example.com",
		PasswordRegexp:      "^.{8,}$",
		RecentBookingsLimit: 5,
	}
}

// setupServiceTest connects to a uniquely named test database and returns a
// cleanup that drops it.
func setupServiceTest(t *testing.T, prefix string) (*mongo.Database, func()) {
	t.Helper()
	dbName := fmt.Sprintf("testdb_%s_%d", prefix, time.Now().UnixNano())
	db := utils.SetupTestDB(t, dbName, "users", "tours", "bookings", "support_messages")

	cleanup := func() {
		client := db.Client()
		if err := db.Drop(context.Background()); err != nil {
			t.Logf("Failed to drop database %s: %v", dbName, err)
		}
		if err := client.Disconnect(context.Background()); err != nil {
			t.Logf("Failed to disconnect MongoDB client: %v", err)
		}
	}
	return db, cleanup
}

// insertTestUser creates a user directly in the store and returns it with a
// matching session.
func insertTestUser(t *testing.T, db *mongo.Database, email string, role models.Role) (*models.User, session.Session) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &models.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
		Role:         role,
		Favourites:   []utils.SixID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user.GenID()
	_, err = db.Collection(usersCollection).InsertOne(context.Background(), user)
	require.NoError(t, err)

	return user, session.ForUser(user.ID, role)
}

// insertTestTour creates a valid tour directly in the store.
func insertTestTour(t *testing.T, db *mongo.Database, title string, price float64) *models.Tour {
	t.Helper()
	now := time.Now().UTC()
	tour := &models.Tour{
		Title:        title,
		Country:      "Italy",
		DurationDays: 7,
		PriceFrom:    price,
		Difficulty:   models.DifficultyRelax,
		Type:         models.TourTypeSea,
		Tags:         []string{"beach"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tour.GenID()
	_, err := db.Collection(toursCollection).InsertOne(context.Background(), tour)
	require.NoError(t, err)
	return tour
}
