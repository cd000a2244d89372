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

// TypeSupportEmail is the asynq task type for the new-message notification
// sent to the support inbox. Declared here for the same import-cycle reason
// as TypeBookingEmail.
const TypeSupportEmail = "support:email"

// SupportEmailPayload is the asynq payload for support notifications. It is
// self-contained so the worker does not need to re-read the message.
type SupportEmailPayload struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

// ISupportService defines the interface for support messaging operations.
type ISupportService interface {
	Send(ctx context.Context, sess session.Session, message string) (*models.SupportMessage, error)
	List(ctx context.Context, sess session.Session) ([]models.SupportMessage, error)
	Update(ctx context.Context, sess session.Session, messageID utils.SixID, read bool, answer *string) (*models.SupportMessage, error)
}

type supportService struct {
	db         *mongo.Database
	cfg        *config.Config
	taskClient *asynq.Client
}

// NewSupportService creates a new SupportService. The task client may be nil
// when no background worker runs; notifications are then skipped.
func NewSupportService(database *mongo.Database, cfg *config.Config, taskClient *asynq.Client) ISupportService {
	return &supportService{db: database, cfg: cfg, taskClient: taskClient}
}

// Send records a new unread support message from the caller.
func (s *supportService) Send(ctx context.Context, sess session.Session, message string) (*models.SupportMessage, error) {
	if !sess.CanSendSupportMessage() {
		return nil, db.PermissionDenied("sign in with a customer account to contact support")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, db.InvalidArgument("message is required")
	}

	now := time.Now().UTC()
	msg := &models.SupportMessage{
		UserID:    *sess.UserID,
		Message:   message,
		Read:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc, err := db.InsertOne(ctx, s.db.Collection(messagesCollection), msg)
	if err != nil {
		return nil, db.Unavailable("failed to insert support message", err)
	}
	msg = doc.(*models.SupportMessage)

	s.enqueueEmail(ctx, msg)
	return msg, nil
}

// List returns support messages scoped by role: users get their own thread,
// admins get the full inbox.
func (s *supportService) List(ctx context.Context, sess session.Session) ([]models.SupportMessage, error) {
	if !sess.IsAuthenticated() {
		return nil, db.PermissionDenied("sign in to view support messages")
	}

	filter := bson.M{"user_id": *sess.UserID}
	if sess.IsAdmin() {
		if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
			return nil, err
		}
		filter = bson.M{}
	}

	cursor, err := s.db.Collection(messagesCollection).Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, db.Unavailable("failed to list support messages", err)
	}
	defer cursor.Close(ctx)

	messages := []models.SupportMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, db.Unavailable("failed to decode support messages", err)
	}
	return messages, nil
}

// Update sets the read flag and, when an answer is given, stores it on the
// message. Admin only. A nil or blank answer leaves any stored answer alone.
func (s *supportService) Update(ctx context.Context, sess session.Session, messageID utils.SixID, read bool, answer *string) (*models.SupportMessage, error) {
	if !sess.CanMarkMessageRead() {
		return nil, db.PermissionDenied("only admins can update support messages")
	}
	if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
		return nil, err
	}

	set := bson.M{"read": read, "updated_at": time.Now().UTC()}
	if answer != nil {
		if trimmed := strings.TrimSpace(*answer); trimmed != "" {
			set["answer"] = trimmed
		}
	}

	var updated models.SupportMessage
	err := s.db.Collection(messagesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": messageID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NotFound(fmt.Sprintf("support message %s not found", messageID.String()))
		}
		return nil, db.Unavailable(fmt.Sprintf("failed to update support message %s", messageID.String()), err)
	}
	return &updated, nil
}

func (s *supportService) enqueueEmail(ctx context.Context, msg *models.SupportMessage) {
	if s.taskClient == nil {
		return
	}
	payload, err := json.Marshal(SupportEmailPayload{
		MessageID: msg.ID.String(),
		UserID:    msg.UserID.String(),
		Message:   msg.Message,
	})
	if err != nil {
		return
	}
	task := asynq.NewTask(TypeSupportEmail, payload, asynq.Queue("low"))
	if _, err := s.taskClient.EnqueueContext(ctx, task); err != nil {
		// Notifications are best-effort; the message itself is committed
		log.Printf("Failed to enqueue support email task for %s: %v", msg.ID.String(), err)
	}
}
