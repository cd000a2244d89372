package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

// IUserService defines the interface for user account operations.
type IUserService interface {
	FindByID(ctx context.Context, sess session.Session, userID utils.SixID) (*models.User, error)
	UpdateProfile(ctx context.Context, sess session.Session, userID utils.SixID, profile *models.Profile) (*models.User, error)
	ToggleFavourite(ctx context.Context, sess session.Session, tourID utils.SixID) ([]utils.SixID, error)
	ListUsers(ctx context.Context, sess session.Session) ([]models.User, error)
	DeleteUser(ctx context.Context, sess session.Session, userID utils.SixID) error
}

type userService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(database *mongo.Database, cfg *config.Config) IUserService {
	return &userService{db: database, cfg: cfg}
}

// FindByID returns a user record. Users see themselves; admins see anyone.
func (s *userService) FindByID(ctx context.Context, sess session.Session, userID utils.SixID) (*models.User, error) {
	if !sess.IsSelf(userID) {
		if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
			return nil, err
		}
	}
	return s.findByID(ctx, userID)
}

// UpdateProfile replaces the user's profile subdocument. The account-level
// full name mirrors the profile so directory listings stay in sync. Email
// is an account credential and is not editable through the profile.
func (s *userService) UpdateProfile(ctx context.Context, sess session.Session, userID utils.SixID, profile *models.Profile) (*models.User, error) {
	if !sess.CanUpdateProfile(userID) {
		return nil, db.PermissionDenied("profile can only be edited by its owner")
	}
	if profile == nil {
		return nil, db.InvalidArgument("profile is required")
	}
	if err := validatePreferences(profile.Preferences); err != nil {
		return nil, err
	}

	current, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Email in the profile is display-only and must match the account
	profile.Email = current.Email

	update := bson.M{
		"profile":    profile,
		"updated_at": time.Now().UTC(),
	}
	if profile.FullName != "" {
		update["full_name"] = profile.FullName
	}

	var updated models.User
	err = s.db.Collection(usersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NotFound(fmt.Sprintf("user %s not found", userID.String()))
		}
		return nil, db.Unavailable(fmt.Sprintf("failed to update profile for user %s", userID.String()), err)
	}
	return &updated, nil
}

// ToggleFavourite adds the tour to the caller's favourites, or removes it if
// already present. Returns the resulting favourites list.
func (s *userService) ToggleFavourite(ctx context.Context, sess session.Session, tourID utils.SixID) ([]utils.SixID, error) {
	if !sess.CanToggleFavourite() {
		return nil, db.PermissionDenied("sign in with a customer account to save favourites")
	}
	userID := *sess.UserID

	count, err := s.db.Collection(toursCollection).CountDocuments(ctx, bson.M{"_id": tourID})
	if err != nil {
		return nil, db.Unavailable(fmt.Sprintf("failed to look up tour %s", tourID.String()), err)
	}
	if count == 0 {
		return nil, db.NotFound(fmt.Sprintf("tour %s not found", tourID.String()))
	}

	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	op := bson.M{"$addToSet": bson.M{"favourites": tourID}}
	for _, fav := range user.Favourites {
		if fav == tourID {
			op = bson.M{"$pull": bson.M{"favourites": tourID}}
			break
		}
	}

	var updated models.User
	err = s.db.Collection(usersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		op,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, db.Unavailable(fmt.Sprintf("failed to toggle favourite for user %s", userID.String()), err)
	}
	if updated.Favourites == nil {
		return []utils.SixID{}, nil
	}
	return updated.Favourites, nil
}

// ListUsers returns the full user directory. Admin only.
func (s *userService) ListUsers(ctx context.Context, sess session.Session) ([]models.User, error) {
	if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
		return nil, err
	}

	cursor, err := s.db.Collection(usersCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, db.Unavailable("failed to list users", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, db.Unavailable("failed to decode users", err)
	}
	return users, nil
}

// DeleteUser removes an account and its bookings and support messages.
// Admin only, and admins cannot delete themselves.
func (s *userService) DeleteUser(ctx context.Context, sess session.Session, userID utils.SixID) error {
	if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
		return err
	}
	if sess.IsSelf(userID) {
		return db.InvalidArgument("admins cannot delete their own account")
	}

	result, err := s.db.Collection(usersCollection).DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return db.Unavailable(fmt.Sprintf("failed to delete user %s", userID.String()), err)
	}
	if result.DeletedCount == 0 {
		return db.NotFound(fmt.Sprintf("user %s not found", userID.String()))
	}

	if _, err := s.db.Collection(bookingsCollection).DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return db.Unavailable(fmt.Sprintf("failed to delete bookings of user %s", userID.String()), err)
	}
	if _, err := s.db.Collection(messagesCollection).DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return db.Unavailable(fmt.Sprintf("failed to delete support messages of user %s", userID.String()), err)
	}
	return nil
}

func (s *userService) findByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NotFound(fmt.Sprintf("user %s not found", userID.String()))
		}
		return nil, db.Unavailable(fmt.Sprintf("error finding user %s", userID.String()), err)
	}
	return &user, nil
}

func validatePreferences(p *models.Preferences) error {
	if p == nil {
		return nil
	}
	for _, t := range p.Type {
		if !models.ValidTourType(t) {
			return db.InvalidArgument(fmt.Sprintf("unknown tour type %q in preferences", t))
		}
	}
	for _, d := range p.Difficulty {
		if !models.ValidDifficulty(d) {
			return db.InvalidArgument(fmt.Sprintf("unknown difficulty %q in preferences", d))
		}
	}
	if p.BudgetFrom != nil && *p.BudgetFrom < 0 {
		return db.InvalidArgument("budgetFrom must not be negative")
	}
	if p.BudgetTo != nil && *p.BudgetTo < 0 {
		return db.InvalidArgument("budgetTo must not be negative")
	}
	return nil
}
