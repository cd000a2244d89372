// Package session defines the caller identity passed explicitly into every
// service operation, plus the permission checks services run against it.
// A nil-user session is a guest; there is no hidden global state.
package session

import (
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/utils"
)

// Session identifies the caller of a service operation. The Role comes from
// the transport (JWT claim) and is treated as a claim only: operations that
// grant privileges verify it against the stored user record.
type Session struct {
	UserID *utils.SixID
	Role   models.Role
}

// Guest returns the anonymous session.
func Guest() Session {
	return Session{}
}

// ForUser returns a session for an authenticated user.
func ForUser(userID utils.SixID, role models.Role) Session {
	return Session{UserID: &userID, Role: role}
}

// IsAuthenticated reports whether the session belongs to a logged-in user.
func (s Session) IsAuthenticated() bool {
	return s.UserID != nil
}

// IsAdmin reports whether the session claims the admin role.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == models.RoleAdmin
}

// IsSelf reports whether the session belongs to the given user.
func (s Session) IsSelf(userID utils.SixID) bool {
	return s.UserID != nil && *s.UserID == userID
}

// CanManageTours covers tour create, update, delete and catalog seeding.
func (s Session) CanManageTours() bool {
	return s.IsAdmin()
}

// CanCreateBooking covers booking creation for the session's own account.
// Booking is a customer action; admin accounts do not book.
func (s Session) CanCreateBooking() bool {
	return s.IsAuthenticated() && !s.IsAdmin()
}

// CanDecideBooking covers confirming or cancelling a pending booking.
func (s Session) CanDecideBooking() bool {
	return s.IsAdmin()
}

// CanToggleFavourite covers (un)starring tours on the session's own account,
// a customer action.
func (s Session) CanToggleFavourite() bool {
	return s.IsAuthenticated() && !s.IsAdmin()
}

// CanUpdateProfile covers profile edits. A profile is mutated by its owning
// customer only; admin accounts carry no traveller profile to edit.
func (s Session) CanUpdateProfile(target utils.SixID) bool {
	return s.IsSelf(target) && !s.IsAdmin()
}

// CanChangePassword covers password changes, which are strictly self-service.
func (s Session) CanChangePassword(target utils.SixID) bool {
	return s.IsSelf(target)
}

// CanSendSupportMessage covers posting a message to support. Admins answer
// messages; they do not open them.
func (s Session) CanSendSupportMessage() bool {
	return s.IsAuthenticated() && !s.IsAdmin()
}

// CanMarkMessageRead covers support message read-state updates.
func (s Session) CanMarkMessageRead() bool {
	return s.IsAdmin()
}

// CanListUsers covers the user directory.
func (s Session) CanListUsers() bool {
	return s.IsAdmin()
}

// CanDeleteUser covers account removal.
func (s Session) CanDeleteUser() bool {
	return s.IsAdmin()
}

// CanViewDashboard covers the analytics summary. Any signed-in caller may
// view it; the service scopes regular users to their own bookings.
func (s Session) CanViewDashboard() bool {
	return s.IsAuthenticated()
}
