package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

// TypeBookingEmail is the asynq task type for booking notification emails.
// Declared here rather than in tasks to avoid an import cycle; the tasks
// package registers the handler.
const TypeBookingEmail = "booking:email"

// BookingEmailPayload is the asynq payload for booking notifications.
type BookingEmailPayload struct {
	BookingID string `json:"booking_id"`
	Event     string `json:"event"` // "created" or "decided"
}

// CreateBookingInput carries the booking request fields.
type CreateBookingInput struct {
	TourID    utils.SixID
	StartDate string
	People    int
	Contact   models.BookingContact
	Comment   string
}

// IBookingService defines the interface for booking lifecycle operations.
type IBookingService interface {
	Create(ctx context.Context, sess session.Session, input CreateBookingInput) (*models.Booking, error)
	List(ctx context.Context, sess session.Session) ([]models.Booking, error)
	FindByID(ctx context.Context, sess session.Session, bookingID utils.SixID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, sess session.Session, bookingID utils.SixID, status models.BookingStatus) (*models.Booking, error)
}

type bookingService struct {
	db         *mongo.Database
	cfg        *config.Config
	taskClient *asynq.Client
}

// NewBookingService creates a new BookingService. The task client may be nil
// when no background worker runs; notifications are then skipped.
func NewBookingService(database *mongo.Database, cfg *config.Config, taskClient *asynq.Client) IBookingService {
	return &bookingService{db: database, cfg: cfg, taskClient: taskClient}
}

// Create records a new pending booking. The tour title and contact details
// are snapshotted so later edits to the tour or profile do not rewrite
// history. Seats are informational only; no availability check happens here.
func (s *bookingService) Create(ctx context.Context, sess session.Session, input CreateBookingInput) (*models.Booking, error) {
	if !sess.CanCreateBooking() {
		return nil, db.PermissionDenied("sign in with a customer account to book a tour")
	}
	if err := validateBookingInput(input); err != nil {
		return nil, err
	}

	var tour models.Tour
	err := s.db.Collection(toursCollection).FindOne(ctx, bson.M{"_id": input.TourID}).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NotFound(fmt.Sprintf("tour %s not found", input.TourID.String()))
		}
		return nil, db.Unavailable(fmt.Sprintf("error finding tour %s", input.TourID.String()), err)
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		UserID:    *sess.UserID,
		TourID:    tour.ID,
		TourTitle: tour.Title,
		StartDate: input.StartDate,
		People:    input.People,
		Contact:   input.Contact,
		Comment:   strings.TrimSpace(input.Comment),
		Status:    models.BookingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc, err := db.InsertOne(ctx, s.db.Collection(bookingsCollection), booking)
	if err != nil {
		return nil, db.Unavailable("failed to insert new booking", err)
	}
	booking = doc.(*models.Booking)

	s.enqueueEmail(ctx, booking.ID, "created")
	return booking, nil
}

// List returns bookings scoped by role: users get their own, admins get all.
func (s *bookingService) List(ctx context.Context, sess session.Session) ([]models.Booking, error) {
	if !sess.IsAuthenticated() {
		return nil, db.PermissionDenied("sign in to view bookings")
	}

	filter := bson.M{"user_id": *sess.UserID}
	if sess.IsAdmin() {
		if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
			return nil, err
		}
		filter = bson.M{}
	}

	cursor, err := s.db.Collection(bookingsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, db.Unavailable("failed to list bookings", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, db.Unavailable("failed to decode bookings", err)
	}
	return bookings, nil
}

// FindByID returns a booking visible to the caller: its owner or an admin.
func (s *bookingService) FindByID(ctx context.Context, sess session.Session, bookingID utils.SixID) (*models.Booking, error) {
	if !sess.IsAuthenticated() {
		return nil, db.PermissionDenied("sign in to view bookings")
	}

	booking, err := s.findByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !sess.IsSelf(booking.UserID) {
		if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
			return nil, err
		}
	}
	return booking, nil
}

// UpdateStatus moves a pending booking to confirmed or cancelled. Admin
// only. Both target statuses are terminal: a decided booking stays decided.
func (s *bookingService) UpdateStatus(ctx context.Context, sess session.Session, bookingID utils.SixID, status models.BookingStatus) (*models.Booking, error) {
	if !sess.CanDecideBooking() {
		return nil, db.PermissionDenied("only admins can decide bookings")
	}
	if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
		return nil, err
	}
	if status != models.BookingStatusConfirmed && status != models.BookingStatusCancelled {
		return nil, db.InvalidArgument(fmt.Sprintf("cannot move a booking to status %q", status))
	}

	// The pending filter makes the terminal guard atomic: a booking decided
	// by a concurrent request will simply not match.
	var updated models.Booking
	err := s.db.Collection(bookingsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": bookingID, "status": models.BookingStatusPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish a missing booking from an already decided one
			existing, findErr := s.findByID(ctx, bookingID)
			if findErr != nil {
				return nil, findErr
			}
			return nil, db.InvalidArgument(fmt.Sprintf("booking %s is already %s", bookingID.String(), existing.Status))
		}
		return nil, db.Unavailable(fmt.Sprintf("failed to update status of booking %s", bookingID.String()), err)
	}

	s.enqueueEmail(ctx, updated.ID, "decided")
	return &updated, nil
}

func (s *bookingService) findByID(ctx context.Context, bookingID utils.SixID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Collection(bookingsCollection).FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NotFound(fmt.Sprintf("booking %s not found", bookingID.String()))
		}
		return nil, db.Unavailable(fmt.Sprintf("error finding booking %s", bookingID.String()), err)
	}
	return &booking, nil
}

func (s *bookingService) enqueueEmail(ctx context.Context, bookingID utils.SixID, event string) {
	if s.taskClient == nil {
		return
	}
	payload, err := json.Marshal(BookingEmailPayload{BookingID: bookingID.String(), Event: event})
	if err != nil {
		return
	}
	task := asynq.NewTask(TypeBookingEmail, payload)
	if _, err := s.taskClient.EnqueueContext(ctx, task); err != nil {
		// Notifications are best-effort; the booking itself is committed
		log.Printf("Failed to enqueue booking email task for %s: %v", bookingID.String(), err)
	}
}

func validateBookingInput(input CreateBookingInput) error {
	if input.TourID.IsZero() {
		return db.InvalidArgument("tourId is required")
	}
	if strings.TrimSpace(input.StartDate) == "" {
		return db.InvalidArgument("startDate is required")
	}
	if input.People < 1 {
		return db.InvalidArgument("people must be at least 1")
	}
	if strings.TrimSpace(input.Contact.FullName) == "" {
		return db.InvalidArgument("contact full name is required")
	}
	if !strings.Contains(input.Contact.Email, "@") {
		return db.InvalidArgument("a valid contact email is required")
	}
	return nil
}
