package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nazotronic/Tourify/internal/auth"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	database, cleanup := setupServiceTest(t, "auth_register")
	defer cleanup()
	cfg := testConfig()
	svc, err := NewAuthService(database, cfg)
	require.NoError(t, err)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "  Traveller@Example.COM ", "password123", "Olena K")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, token)

	// Email is normalized, role is never client-assignable
	assert.Equal(t, "traveller@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.ID.IsZero())

	// Profile is seeded from the account fields
	require.NotNil(t, user.Profile)
	assert.Equal(t, "Olena K", user.Profile.FullName)
	assert.Equal(t, "traveller@example.com", user.Profile.Email)

	// The token carries the user's identity
	claims, err := auth.ValidateJWT(token, cfg.JwtSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	// Duplicate email
	_, _, err = svc.Register(ctx, "traveller@example.com", "password123", "Someone Else")
	assert.True(t, db.IsKind(err, db.KindAlreadyExists))

	// Login round trip
	logged, token2, err := svc.Login(ctx, "TRAVELLER@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token2)

	// Wrong password and unknown email look the same
	_, _, err = svc.Login(ctx, "traveller@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	database, cleanup := setupServiceTest(t, "auth_validation")
	defer cleanup()
	svc, err := NewAuthService(database, testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = svc.Register(ctx, "not-an-email", "password123", "Name")
	assert.True(t, db.IsKind(err, db.KindInvalidArgument))

	_, _, err = svc.Register(ctx, "ok@example.com", "password123", "   ")
	assert.True(t, db.IsKind(err, db.KindInvalidArgument))

	_, _, err = svc.Register(ctx, "ok@example.com", "short", "Name")
	assert.True(t, db.IsKind(err, db.KindInvalidArgument))
}

func TestAuthService_AdminLogin(t *testing.T) {
	database, cleanup := setupServiceTest(t, "auth_admin_login")
	defer cleanup()
	cfg := testConfig()
	svc, err := NewAuthService(database, cfg)
	require.NoError(t, err)
	ctx := context.Background()

	// No admin account yet
	_, _, err = svc.AdminLogin(ctx, "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// The designated account exists but holds no admin role: fails closed
	admin, _ := insertTestUser(t, database, cfg.AdminEmail, models.RoleUser)
	_, _, err = svc.AdminLogin(ctx, "password123")
	assert.ErrorIs(t, err, ErrNotAnAdmin)

	// Grant the role in the store
	_, err = database.Collection(usersCollection).UpdateByID(ctx, admin.ID,
		bson.M{"$set": bson.M{"role": models.RoleAdmin}})
	require.NoError(t, err)

	_, _, err = svc.AdminLogin(ctx, "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, token, err := svc.AdminLogin(ctx, "password123")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, logged.ID)

	claims, err := auth.ValidateJWT(token, cfg.JwtSecret)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthService_ChangePassword(t *testing.T) {
	database, cleanup := setupServiceTest(t, "auth_change_password")
	defer cleanup()
	svc, err := NewAuthService(database, testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	user, sess := insertTestUser(t, database, "owner@example.com", models.RoleUser)
	other, _ := insertTestUser(t, database, "other@example.com", models.RoleUser)

	// Password changes are strictly self-service, even for admins
	err = svc.ChangePassword(ctx, sess, other.ID, "newpassword1")
	assert.True(t, db.IsKind(err, db.KindPermissionDenied))

	_, adminSess := insertTestUser(t, database, "boss@example.com", models.RoleAdmin)
	err = svc.ChangePassword(ctx, adminSess, user.ID, "newpassword1")
	assert.True(t, db.IsKind(err, db.KindPermissionDenied))

	err = svc.ChangePassword(ctx, sess, user.ID, "short")
	assert.True(t, db.IsKind(err, db.KindInvalidArgument))

	err = svc.ChangePassword(ctx, sess, user.ID, "newpassword1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, user.Email, "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, user.Email, "newpassword1")
	assert.NoError(t, err)

	// Self session for a deleted account
	ghostID := utils.NewSixID()
	err = svc.ChangePassword(ctx, session.ForUser(ghostID, models.RoleUser), ghostID, "newpassword1")
	assert.True(t, db.IsKind(err, db.KindNotFound))
}

func TestAuthService_EnsureAdminAccount(t *testing.T) {
	database, cleanup := setupServiceTest(t, "auth_ensure_admin")
	defer cleanup()
	cfg := testConfig()
	svc, err := NewAuthService(database, cfg)
	require.NoError(t, err)
	ctx := context.Background()

	// Missing account is not an error
	require.NoError(t, svc.EnsureAdminAccount(ctx))

	// A downgraded designated account gets its role back
	admin, _ := insertTestUser(t, database, cfg.AdminEmail, models.RoleUser)
	require.NoError(t, svc.EnsureAdminAccount(ctx))

	var stored models.User
	require.NoError(t, database.Collection(usersCollection).
		FindOne(ctx, bson.M{"_id": admin.ID}).Decode(&stored))
	assert.Equal(t, models.RoleAdmin, stored.Role)
}
