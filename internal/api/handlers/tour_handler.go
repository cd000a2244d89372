package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/nazotronic/Tourify/internal/api/middleware"
	"github.com/nazotronic/Tourify/internal/catalog"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/session"
	"github.com/nazotronic/Tourify/internal/storage"
	"github.com/nazotronic/Tourify/internal/tasks"
	"github.com/nazotronic/Tourify/internal/utils"
)

// TourHandler handles catalog endpoints.
type TourHandler struct {
	tourService services.ITourService
	userService services.IUserService
	storage     storage.IS3Storage
	taskClient  *asynq.Client
}

// NewTourHandler creates a new TourHandler. Storage and task client may be
// nil when the image pipeline is not configured.
func NewTourHandler(tourService services.ITourService, userService services.IUserService, s3 storage.IS3Storage, taskClient *asynq.Client) *TourHandler {
	return &TourHandler{tourService: tourService, userService: userService, storage: s3, taskClient: taskClient}
}

type initToursRequest struct {
	Tours []models.Tour `json:"tours" binding:"required"`
}

type uploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type attachImageRequest struct {
	Key string `json:"key" binding:"required"`
}

// ListTours handles GET /tours. Filter dimensions arrive as query
// parameters; a preset replaces the type, difficulty and tag selection.
// A signed-in caller with no explicit filter gets criteria seeded from
// their saved preferences.
func (h *TourHandler) ListTours(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.SessionFromContext(c)
	if criteria.IsZero() && sess.IsAuthenticated() && h.userService != nil {
		criteria = h.preferenceCriteria(c, sess)
	}

	tours, svcErr := h.tourService.List(c.Request.Context())
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, catalog.Filter(tours, criteria))
}

// preferenceCriteria seeds filter criteria from the caller's saved
// preferences. Explicit query parameters always win; a failed lookup falls
// back to the unfiltered catalog.
func (h *TourHandler) preferenceCriteria(c *gin.Context, sess session.Session) catalog.Criteria {
	user, err := h.userService.FindByID(c.Request.Context(), sess, *sess.UserID)
	if err != nil {
		log.Printf("Failed to load preferences for user %s: %v", sess.UserID.String(), err)
		return catalog.Criteria{}
	}
	if user.Profile == nil {
		return catalog.Criteria{}
	}
	return catalog.FromPreferences(user.Profile.Preferences)
}

// ListPresets handles GET /tours/presets.
func (h *TourHandler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Presets)
}

// GetTour handles GET /tours/:id.
func (h *TourHandler) GetTour(c *gin.Context) {
	tourID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tour ID format"})
		return
	}

	tour, err := h.tourService.FindByID(c.Request.Context(), tourID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tour)
}

// CreateTour handles POST /tours. Admin only.
func (h *TourHandler) CreateTour(c *gin.Context) {
	var tour models.Tour
	if err := c.ShouldBindJSON(&tour); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tour payload"})
		return
	}

	sess := middleware.SessionFromContext(c)
	created, err := h.tourService.Create(c.Request.Context(), sess, &tour)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateTour handles PUT /tours/:id. Admin only.
func (h *TourHandler) UpdateTour(c *gin.Context) {
	tourID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tour ID format"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update payload"})
		return
	}

	sess := middleware.SessionFromContext(c)
	updated, err := h.tourService.Update(c.Request.Context(), sess, tourID, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTour handles DELETE /tours/:id. Admin only.
func (h *TourHandler) DeleteTour(c *gin.Context) {
	tourID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tour ID format"})
		return
	}

	sess := middleware.SessionFromContext(c)
	if err := h.tourService.Delete(c.Request.Context(), sess, tourID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// InitTours handles POST /tours/init. Seeds the catalog when empty.
func (h *TourHandler) InitTours(c *gin.Context) {
	var req initToursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tours array is required"})
		return
	}

	sess := middleware.SessionFromContext(c)
	inserted, err := h.tourService.Seed(c.Request.Context(), sess, req.Tours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

// UploadURL handles POST /tours/:id/upload-url. Returns a presigned S3 PUT
// URL so the browser uploads the image directly. Admin only.
func (h *TourHandler) UploadURL(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	tourID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tour ID format"})
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and contentType are required"})
		return
	}

	// Verify the tour exists before handing out an upload slot
	if _, err := h.tourService.FindByID(c.Request.Context(), tourID); err != nil {
		respondError(c, err)
		return
	}

	url, key, err := h.storage.GenerateTourImagePutURL(c.Request.Context(), tourID.String(), req.Filename, req.ContentType)
	if err != nil {
		log.Printf("Failed to presign upload for tour %s: %v", tourID.String(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
}

// AttachImage handles POST /tours/:id/image. The client calls this after the
// presigned upload completes; processing happens in the background. Admin only.
func (h *TourHandler) AttachImage(c *gin.Context) {
	if h.taskClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image processing is not configured"})
		return
	}

	tourID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tour ID format"})
		return
	}

	var req attachImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if _, err := h.tourService.FindByID(c.Request.Context(), tourID); err != nil {
		respondError(c, err)
		return
	}

	if err := tasks.EnqueueImageProcess(c.Request.Context(), h.taskClient, tourID, req.Key); err != nil {
		log.Printf("Failed to enqueue image processing for tour %s: %v", tourID.String(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule image processing"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "processing"})
}

// criteriaFromQuery builds filter criteria from query parameters. A preset
// parameter is applied last and replaces type, difficulty and tags.
func criteriaFromQuery(c *gin.Context) (catalog.Criteria, error) {
	criteria := catalog.Criteria{
		Query: c.Query("query"),
	}

	for _, raw := range splitMulti(c.QueryArray("type")) {
		t := models.TourType(raw)
		if !models.ValidTourType(t) {
			return catalog.Criteria{}, &queryError{"unknown tour type " + strconv.Quote(raw)}
		}
		criteria.Types = append(criteria.Types, t)
	}
	for _, raw := range splitMulti(c.QueryArray("difficulty")) {
		d := models.Difficulty(raw)
		if !models.ValidDifficulty(d) {
			return catalog.Criteria{}, &queryError{"unknown difficulty " + strconv.Quote(raw)}
		}
		criteria.Difficulties = append(criteria.Difficulties, d)
	}
	criteria.Tags = splitMulti(c.QueryArray("tags"))

	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return catalog.Criteria{}, &queryError{"minPrice must be a number"}
		}
		criteria.MinPrice = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return catalog.Criteria{}, &queryError{"maxPrice must be a number"}
		}
		criteria.MaxPrice = &v
	}

	if presetID := c.Query("preset"); presetID != "" {
		preset, ok := catalog.PresetByID(presetID)
		if !ok {
			return catalog.Criteria{}, &queryError{"unknown preset " + strconv.Quote(presetID)}
		}
		criteria = catalog.ApplyPreset(criteria, preset)
	}

	return criteria, nil
}

type queryError struct {
	msg string
}

func (e *queryError) Error() string { return e.msg }

// splitMulti accepts both repeated parameters and comma-separated values.
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
