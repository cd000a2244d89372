package models

import (
	"time"

	"github.com/nazotronic/Tourify/internal/utils"
)

// BookingStatus tracks a booking through its lifecycle. A booking starts
// pending and is moved by an admin to confirmed or cancelled, both terminal.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus reports whether s is one of the known statuses.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled
}

// BookingContact is the contact snapshot captured at booking time. It is
// intentionally not a reference to the user profile: the booking keeps
// whatever the traveller entered, even if the profile changes later.
type BookingContact struct {
	FullName string `bson:"full_name" json:"fullName"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Booking represents a tour booking request.
type Booking struct {
	Base      `bson:",inline"`
	UserID    utils.SixID    `bson:"user_id" json:"userId"`
	TourID    utils.SixID    `bson:"tour_id" json:"tourId"`
	TourTitle string         `bson:"tour_title" json:"tourTitle"` // Denormalized from Tour at creation
	StartDate string         `bson:"start_date" json:"startDate"` // As entered, e.g. "2026-07-14"
	People    int            `bson:"people" json:"people"`
	Contact   BookingContact `bson:"contact" json:"contact"`
	Comment   string         `bson:"comment,omitempty" json:"comment,omitempty"`
	Status    BookingStatus  `bson:"status" json:"status"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updatedAt"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
}
