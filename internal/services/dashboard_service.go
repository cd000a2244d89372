package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nazotronic/Tourify/internal/analytics"
	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/session"
)

// IDashboardService defines the interface for the analytics dashboard.
type IDashboardService interface {
	Summary(ctx context.Context, sess session.Session) (analytics.Summary, error)
}

type dashboardService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(database *mongo.Database, cfg *config.Config) IDashboardService {
	return &dashboardService{db: database, cfg: cfg}
}

// Summary loads bookings and tours and folds them into the dashboard
// payload. Regular users get analytics over their own bookings; admins get
// the whole store.
func (s *dashboardService) Summary(ctx context.Context, sess session.Session) (analytics.Summary, error) {
	if !sess.CanViewDashboard() {
		return analytics.Summary{}, db.PermissionDenied("sign in to view the dashboard")
	}

	filter := bson.M{"user_id": *sess.UserID}
	if sess.IsAdmin() {
		if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
			return analytics.Summary{}, err
		}
		filter = bson.M{}
	}

	bookings := []models.Booking{}
	cursor, err := s.db.Collection(bookingsCollection).Find(ctx, filter)
	if err != nil {
		return analytics.Summary{}, db.Unavailable("failed to load bookings for dashboard", err)
	}
	if err := cursor.All(ctx, &bookings); err != nil {
		return analytics.Summary{}, db.Unavailable("failed to decode bookings for dashboard", err)
	}

	tours := []models.Tour{}
	cursor, err = s.db.Collection(toursCollection).Find(ctx, bson.M{})
	if err != nil {
		return analytics.Summary{}, db.Unavailable("failed to load tours for dashboard", err)
	}
	if err := cursor.All(ctx, &tours); err != nil {
		return analytics.Summary{}, db.Unavailable("failed to decode tours for dashboard", err)
	}

	return analytics.Summarize(bookings, tours, s.cfg.RecentBookingsLimit), nil
}
