package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/utils"
)

func TestGuestSession(t *testing.T) {
	guest := Guest()

	assert.False(t, guest.IsAuthenticated())
	assert.False(t, guest.IsAdmin())
	assert.False(t, guest.IsSelf(utils.NewSixID()))

	assert.False(t, guest.CanManageTours())
	assert.False(t, guest.CanCreateBooking())
	assert.False(t, guest.CanDecideBooking())
	assert.False(t, guest.CanToggleFavourite())
	assert.False(t, guest.CanUpdateProfile(utils.NewSixID()))
	assert.False(t, guest.CanChangePassword(utils.NewSixID()))
	assert.False(t, guest.CanSendSupportMessage())
	assert.False(t, guest.CanMarkMessageRead())
	assert.False(t, guest.CanListUsers())
	assert.False(t, guest.CanDeleteUser())
	assert.False(t, guest.CanViewDashboard())
}

func TestUserSession(t *testing.T) {
	self := utils.NewSixID()
	other := utils.NewSixID()
	sess := ForUser(self, models.RoleUser)

	assert.True(t, sess.IsAuthenticated())
	assert.False(t, sess.IsAdmin())
	assert.True(t, sess.IsSelf(self))
	assert.False(t, sess.IsSelf(other))

	assert.True(t, sess.CanCreateBooking())
	assert.True(t, sess.CanToggleFavourite())
	assert.True(t, sess.CanSendSupportMessage())

	assert.True(t, sess.CanUpdateProfile(self))
	assert.False(t, sess.CanUpdateProfile(other))
	assert.True(t, sess.CanChangePassword(self))
	assert.False(t, sess.CanChangePassword(other))

	// The dashboard is open to any signed-in caller; the service scopes it
	assert.True(t, sess.CanViewDashboard())

	assert.False(t, sess.CanManageTours())
	assert.False(t, sess.CanDecideBooking())
	assert.False(t, sess.CanMarkMessageRead())
	assert.False(t, sess.CanListUsers())
	assert.False(t, sess.CanDeleteUser())
}

func TestAdminSession(t *testing.T) {
	adminID := utils.NewSixID()
	other := utils.NewSixID()
	sess := ForUser(adminID, models.RoleAdmin)

	assert.True(t, sess.IsAuthenticated())
	assert.True(t, sess.IsAdmin())

	assert.True(t, sess.CanManageTours())
	assert.True(t, sess.CanDecideBooking())
	assert.True(t, sess.CanMarkMessageRead())
	assert.True(t, sess.CanListUsers())
	assert.True(t, sess.CanDeleteUser())
	assert.True(t, sess.CanViewDashboard())

	// Booking, favourites, support messages and profile edits are customer
	// actions; admin accounts are shut out of all four.
	assert.False(t, sess.CanCreateBooking())
	assert.False(t, sess.CanToggleFavourite())
	assert.False(t, sess.CanSendSupportMessage())
	assert.False(t, sess.CanUpdateProfile(adminID))
	assert.False(t, sess.CanUpdateProfile(other))

	assert.True(t, sess.CanChangePassword(adminID))
	assert.False(t, sess.CanChangePassword(other))
}

func TestAdminRoleClaimRequiresUser(t *testing.T) {
	// A role claim without an authenticated user grants nothing.
	sess := Session{Role: models.RoleAdmin}

	assert.False(t, sess.IsAdmin())
	assert.False(t, sess.CanManageTours())
	assert.False(t, sess.CanViewDashboard())
}
