package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazotronic/Tourify/internal/api/middleware"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/utils"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService services.IAuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and fullName are required"})
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{User: user, Token: token})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// AdminLogin handles POST /auth/admin-login. Only the designated admin
// account can sign in here, and only while it holds the admin role.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	user, token, err := h.authService.AdminLogin(c.Request.Context(), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// Logout handles POST /auth/logout. Tokens are stateless, so logout is a
// client-side concern; the endpoint exists for symmetry.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ChangePassword handles PUT /users/:id/password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	sess := middleware.SessionFromContext(c)
	if err := h.authService.ChangePassword(c.Request.Context(), sess, userID, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
