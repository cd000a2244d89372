package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazotronic/Tourify/internal/api/middleware"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/utils"
)

// UserHandler handles user account endpoints.
type UserHandler struct {
	userService services.IUserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.IUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type updateUserRequest struct {
	Profile *models.Profile `json:"profile" binding:"required"`
}

type toggleFavouriteRequest struct {
	TourID string `json:"tourId" binding:"required"`
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	sess := middleware.SessionFromContext(c)
	user, err := h.userService.FindByID(c.Request.Context(), sess, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /users/:id. Only the profile is editable.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile is required"})
		return
	}

	sess := middleware.SessionFromContext(c)
	user, err := h.userService.UpdateProfile(c.Request.Context(), sess, userID, req.Profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /users. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	users, err := h.userService.ListUsers(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// DeleteUser handles DELETE /users/:id. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	sess := middleware.SessionFromContext(c)
	if err := h.userService.DeleteUser(c.Request.Context(), sess, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleFavourite handles POST /favourites/toggle. The affected account is
// always the caller's own.
func (h *UserHandler) ToggleFavourite(c *gin.Context) {
	var req toggleFavouriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tourId is required"})
		return
	}
	tourID, err := utils.ParseSixID(req.TourID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tour ID format"})
		return
	}

	sess := middleware.SessionFromContext(c)
	favourites, err := h.userService.ToggleFavourite(c.Request.Context(), sess, tourID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favourites": favourites})
}
