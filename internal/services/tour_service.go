package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nazotronic/Tourify/internal/cache"
	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/utils"
)

// ITourService defines the interface for catalog operations.
type ITourService interface {
	List(ctx context.Context) ([]models.Tour, error)
	FindByID(ctx context.Context, tourID utils.SixID) (*models.Tour, error)
	Create(ctx context.Context, sess session.Session, tour *models.Tour) (*models.Tour, error)
	Update(ctx context.Context, sess session.Session, tourID utils.SixID, updates map[string]interface{}) (*models.Tour, error)
	Delete(ctx context.Context, sess session.Session, tourID utils.SixID) error
	Seed(ctx context.Context, sess session.Session, tours []models.Tour) (int, error)
	SetImage(ctx context.Context, tourID utils.SixID, imageKey string) error
}

type tourService struct {
	db           *mongo.Database
	cfg          *config.Config
	catalogCache *cache.CatalogCache
}

// NewTourService creates a new TourService. The catalog cache may be nil.
func NewTourService(database *mongo.Database, cfg *config.Config, catalogCache *cache.CatalogCache) ITourService {
	return &tourService{db: database, cfg: cfg, catalogCache: catalogCache}
}

// List returns all tours in insertion order. The catalog is public: guests
// browse the same list as logged-in users.
func (s *tourService) List(ctx context.Context) ([]models.Tour, error) {
	if tours, ok := s.catalogCache.Get(ctx); ok {
		return tours, nil
	}

	cursor, err := s.db.Collection(toursCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, db.Unavailable("failed to list tours", err)
	}
	defer cursor.Close(ctx)

	tours := []models.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, db.Unavailable("failed to decode tours", err)
	}

	s.catalogCache.Set(ctx, tours)
	return tours, nil
}

// FindByID returns a single tour.
func (s *tourService) FindByID(ctx context.Context, tourID utils.SixID) (*models.Tour, error) {
	var tour models.Tour
	err := s.db.Collection(toursCollection).FindOne(ctx, bson.M{"_id": tourID}).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NotFound(fmt.Sprintf("tour %s not found", tourID.String()))
		}
		return nil, db.Unavailable(fmt.Sprintf("error finding tour %s", tourID.String()), err)
	}
	return &tour, nil
}

// Create inserts a new tour. Admin only.
func (s *tourService) Create(ctx context.Context, sess session.Session, tour *models.Tour) (*models.Tour, error) {
	if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
		return nil, err
	}
	if err := validateTour(tour); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tour.CreatedAt = now
	tour.UpdatedAt = now
	if tour.Tags == nil {
		tour.Tags = []string{}
	}
	if tour.Highlights == nil {
		tour.Highlights = []string{}
	}

	doc, err := db.InsertOne(ctx, s.db.Collection(toursCollection), tour)
	if err != nil {
		return nil, db.Unavailable("failed to insert new tour", err)
	}

	s.catalogCache.Invalidate(ctx)
	return doc.(*models.Tour), nil
}

// Update applies a partial update to a tour. Admin only. Unknown fields are
// rejected rather than silently dropped.
func (s *tourService) Update(ctx context.Context, sess session.Session, tourID utils.SixID, updates map[string]interface{}) (*models.Tour, error) {
	if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
		return nil, err
	}

	set, err := buildTourUpdate(updates)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = time.Now().UTC()

	var updated models.Tour
	err = s.db.Collection(toursCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": tourID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.NotFound(fmt.Sprintf("tour %s not found", tourID.String()))
		}
		return nil, db.Unavailable(fmt.Sprintf("failed to update tour %s", tourID.String()), err)
	}

	s.catalogCache.Invalidate(ctx)
	return &updated, nil
}

// Delete removes a tour and pulls it from every user's favourites. Existing
// bookings keep their title snapshot and are not touched.
func (s *tourService) Delete(ctx context.Context, sess session.Session, tourID utils.SixID) error {
	if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
		return err
	}

	result, err := s.db.Collection(toursCollection).DeleteOne(ctx, bson.M{"_id": tourID})
	if err != nil {
		return db.Unavailable(fmt.Sprintf("failed to delete tour %s", tourID.String()), err)
	}
	if result.DeletedCount == 0 {
		return db.NotFound(fmt.Sprintf("tour %s not found", tourID.String()))
	}

	_, err = s.db.Collection(usersCollection).UpdateMany(ctx,
		bson.M{"favourites": tourID},
		bson.M{"$pull": bson.M{"favourites": tourID}},
	)
	if err != nil {
		return db.Unavailable(fmt.Sprintf("failed to remove tour %s from favourites", tourID.String()), err)
	}

	s.catalogCache.Invalidate(ctx)
	return nil
}

// Seed inserts the given tours only when the catalog is empty, so rerunning
// the init endpoint is harmless. Returns the number of tours inserted.
func (s *tourService) Seed(ctx context.Context, sess session.Session, tours []models.Tour) (int, error) {
	if err := requireStoredAdmin(ctx, s.db, sess); err != nil {
		return 0, err
	}

	collection := s.db.Collection(toursCollection)
	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, db.Unavailable("failed to count tours", err)
	}
	if count > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(tours))
	for i := range tours {
		tour := tours[i]
		if err := validateTour(&tour); err != nil {
			return 0, err
		}
		tour.GenIDIfEmpty()
		tour.CreatedAt = now
		tour.UpdatedAt = now
		docs = append(docs, tour)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return 0, db.Unavailable("failed to seed tours", err)
	}

	s.catalogCache.Invalidate(ctx)
	return len(docs), nil
}

// SetImage records the processed image key on a tour. Called by the image
// worker, which runs with no user session.
func (s *tourService) SetImage(ctx context.Context, tourID utils.SixID, imageKey string) error {
	result, err := s.db.Collection(toursCollection).UpdateOne(ctx,
		bson.M{"_id": tourID},
		bson.M{"$set": bson.M{"image": imageKey, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return db.Unavailable(fmt.Sprintf("failed to set image on tour %s", tourID.String()), err)
	}
	if result.MatchedCount == 0 {
		return db.NotFound(fmt.Sprintf("tour %s not found", tourID.String()))
	}

	s.catalogCache.Invalidate(ctx)
	return nil
}

func validateTour(t *models.Tour) error {
	if t == nil {
		return db.InvalidArgument("tour is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return db.InvalidArgument("title is required")
	}
	if strings.TrimSpace(t.Country) == "" {
		return db.InvalidArgument("country is required")
	}
	if t.DurationDays < 1 {
		return db.InvalidArgument("durationDays must be at least 1")
	}
	if t.PriceFrom < 0 {
		return db.InvalidArgument("priceFrom must not be negative")
	}
	if !models.ValidDifficulty(t.Difficulty) {
		return db.InvalidArgument(fmt.Sprintf("unknown difficulty %q", t.Difficulty))
	}
	if !models.ValidTourType(t.Type) {
		return db.InvalidArgument(fmt.Sprintf("unknown tour type %q", t.Type))
	}
	if t.SeatsLeft != nil && *t.SeatsLeft < 0 {
		return db.InvalidArgument("seatsLeft must not be negative")
	}
	return nil
}

// buildTourUpdate maps API field names to BSON updates, validating values.
func buildTourUpdate(updates map[string]interface{}) (bson.M, error) {
	if len(updates) == 0 {
		return nil, db.InvalidArgument("no fields to update")
	}

	allowed := map[string]string{
		"title":        "title",
		"country":      "country",
		"durationDays": "duration_days",
		"priceFrom":    "price_from",
		"rating":       "rating",
		"reviewsCount": "reviews_count",
		"difficulty":   "difficulty",
		"type":         "type",
		"tags":         "tags",
		"description":  "description",
		"highlights":   "highlights",
		"nextStart":    "next_start",
		"image":        "image",
		"seatsLeft":    "seats_left",
	}

	set := bson.M{}
	for field, value := range updates {
		bsonField, ok := allowed[field]
		if !ok {
			return nil, db.InvalidArgument(fmt.Sprintf("unknown field %q", field))
		}
		switch field {
		case "difficulty":
			str, _ := value.(string)
			if !models.ValidDifficulty(models.Difficulty(str)) {
				return nil, db.InvalidArgument(fmt.Sprintf("unknown difficulty %q", str))
			}
		case "type":
			str, _ := value.(string)
			if !models.ValidTourType(models.TourType(str)) {
				return nil, db.InvalidArgument(fmt.Sprintf("unknown tour type %q", str))
			}
		}
		set[bsonField] = value
	}
	return set, nil
}
