package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nazotronic/Tourify/internal/auth"
	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

// ErrInvalidCredentials is returned on any failed login attempt. It is
// deliberately the same for a wrong password and an unknown email.
var ErrInvalidCredentials = db.PermissionDenied("invalid email or password")

// ErrNotAnAdmin is returned by admin login when the designated account does
// not hold the admin role. It fails closed rather than elevating.
var ErrNotAnAdmin = db.PermissionDenied("account does not hold the admin role")

// IAuthService defines the interface for authentication operations.
type IAuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	AdminLogin(ctx context.Context, password string) (*models.User, string, error)
	ChangePassword(ctx context.Context, sess session.Session, userID utils.SixID, newPassword string) error
	EnsureAdminAccount(ctx context.Context) error
}

type authService struct {
	db         *mongo.Database
	cfg        *config.Config
	passwordRe *regexp.Regexp
}

// NewAuthService creates a new AuthService.
func NewAuthService(database *mongo.Database, cfg *config.Config) (IAuthService, error) {
	re, err := regexp.Compile(cfg.PasswordRegexp)
	if err != nil {
		return nil, fmt.Errorf("invalid PASSWORD_REGEXP: %w", err)
	}
	return &authService{db: database, cfg: cfg, passwordRe: re}, nil
}

// Register creates a new account. Every registration produces a regular
// user; the admin role is never client-assignable.
func (s *authService) Register(ctx context.Context, email, password, fullName string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", db.InvalidArgument("a valid email is required")
	}
	if fullName = strings.TrimSpace(fullName); fullName == "" {
		return nil, "", db.InvalidArgument("full name is required")
	}
	if !s.passwordRe.MatchString(password) {
		return nil, "", db.InvalidArgument("password does not meet the requirements")
	}

	collection := s.db.Collection(usersCollection)
	count, err := collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, "", db.Unavailable("failed to check email uniqueness", err)
	}
	if count > 0 {
		return nil, "", db.AlreadyExists(fmt.Sprintf("user with email %s already exists", email))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", db.Unavailable("failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Profile: &models.Profile{
			FullName: fullName,
			Email:    email,
		},
		Favourites: []utils.SixID{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	doc, err := db.InsertOne(ctx, collection, user)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, "", db.AlreadyExists(fmt.Sprintf("user with email %s already exists", email))
		}
		return nil, "", db.Unavailable("failed to insert new user", err)
	}
	user = doc.(*models.User)

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a user by email and password.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if db.IsKind(err, db.KindNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// AdminLogin authenticates against the designated admin account. The stored
// role is checked even for the designated account, so a downgraded account
// cannot regain admin access through this door.
func (s *authService) AdminLogin(ctx context.Context, password string) (*models.User, string, error) {
	user, err := s.findByEmail(ctx, s.cfg.AdminEmail)
	if err != nil {
		if db.IsKind(err, db.KindNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsAdmin() {
		return nil, "", ErrNotAnAdmin
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword sets a new password. Strictly self-service; admins change
// only their own.
func (s *authService) ChangePassword(ctx context.Context, sess session.Session, userID utils.SixID, newPassword string) error {
	if !sess.CanChangePassword(userID) {
		return db.PermissionDenied("password can only be changed by the account owner")
	}
	if !s.passwordRe.MatchString(newPassword) {
		return db.InvalidArgument("password does not meet the requirements")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return db.Unavailable("failed to hash password", err)
	}

	result, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": hash, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return db.Unavailable(fmt.Sprintf("failed to update password for user %s", userID.String()), err)
	}
	if result.MatchedCount == 0 {
		return db.NotFound(fmt.Sprintf("user %s not found", userID.String()))
	}
	return nil
}

// EnsureAdminAccount restores the admin role on the designated admin account
// at startup. Missing account is logged, not fatal: the operator may not
// have created it yet.
func (s *authService) EnsureAdminAccount(ctx context.Context) error {
	collection := s.db.Collection(usersCollection)
	result, err := collection.UpdateOne(ctx,
		bson.M{"email": s.cfg.AdminEmail},
		bson.M{"$set": bson.M{"role": models.RoleAdmin, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return db.Unavailable("failed to restore admin role", err)
	}
	if result.MatchedCount == 0 {
		log.Printf("Admin account %s not found, skipping role restoration", s.cfg.AdminEmail)
		return nil
	}
	if result.ModifiedCount > 0 {
		log.Printf("Restored admin role on %s", s.cfg.AdminEmail)
	}
	return nil
}

func (s *authService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NotFound(fmt.Sprintf("user with email %s not found", email))
		}
		return nil, db.Unavailable(fmt.Sprintf("error finding user by email %s", email), err)
	}
	return &user, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	token, err := auth.GenerateJWT(user.ID, user.Role, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return "", db.Unavailable("failed to issue token", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
