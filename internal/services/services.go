// Package services holds the business operations. Every operation takes the
// caller's session explicitly and enforces the permission rules itself, so
// no transport can reach privileged behavior by accident.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/session"
)

const (
	usersCollection    = "users"
	toursCollection    = "tours"
	bookingsCollection = "bookings"
	messagesCollection = "support_messages"
)

// requireStoredAdmin verifies the session's admin claim against the stored
// user record. The JWT role is only a hint; privilege comes from the store.
func requireStoredAdmin(ctx context.Context, database *mongo.Database, sess session.Session) error {
	if !sess.IsAdmin() {
		return db.PermissionDenied("admin role required")
	}
	var user models.User
	err := database.Collection(usersCollection).FindOne(ctx, bson.M{"_id": *sess.UserID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return db.PermissionDenied("admin role required")
		}
		return db.Unavailable(fmt.Sprintf("failed to verify role for user %s", sess.UserID.String()), err)
	}
	if !user.IsAdmin() {
		return db.PermissionDenied("admin role required")
	}
	return nil
}
