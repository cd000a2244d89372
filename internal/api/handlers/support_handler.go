package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazotronic/Tourify/internal/api/middleware"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/utils"
)

// SupportHandler handles support messaging endpoints.
type SupportHandler struct {
	supportService services.ISupportService
}

// NewSupportHandler creates a new SupportHandler.
func NewSupportHandler(supportService services.ISupportService) *SupportHandler {
	return &SupportHandler{supportService: supportService}
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type updateMessageRequest struct {
	Read   *bool   `json:"read" binding:"required"`
	Answer *string `json:"answer"`
}

// ListMessages handles GET /support. Users get their own thread, admins the
// full inbox.
func (h *SupportHandler) ListMessages(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	messages, err := h.supportService.List(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage handles POST /support.
func (h *SupportHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	sess := middleware.SessionFromContext(c)
	msg, err := h.supportService.Send(c.Request.Context(), sess, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// UpdateMessage handles PUT /support/:id. The read flag is required; an
// answer may be attached in the same request.
func (h *SupportHandler) UpdateMessage(c *gin.Context) {
	messageID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID format"})
		return
	}

	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Read == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read flag is required"})
		return
	}

	sess := middleware.SessionFromContext(c)
	msg, err := h.supportService.Update(c.Request.Context(), sess, messageID, *req.Read, req.Answer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
