package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazotronic/Tourify/internal/api/middleware"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/utils"
)

// BookingHandler handles booking endpoints.
type BookingHandler struct {
	bookingService services.IBookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService services.IBookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

type createBookingRequest struct {
	TourID    string                `json:"tourId" binding:"required"`
	StartDate string                `json:"startDate" binding:"required"`
	People    int                   `json:"people" binding:"required"`
	Contact   models.BookingContact `json:"contact" binding:"required"`
	Comment   string                `json:"comment"`
}

type updateBookingRequest struct {
	Status models.BookingStatus `json:"status" binding:"required"`
}

// ListBookings handles GET /bookings. Scope comes from the session: users
// get their own bookings, admins get all of them.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	bookings, err := h.bookingService.List(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	sess := middleware.SessionFromContext(c)
	booking, err := h.bookingService.FindByID(c.Request.Context(), sess, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CreateBooking handles POST /bookings. The booking is always created for
// the calling user; any client-sent user id is ignored.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tourId, startDate, people and contact are required"})
		return
	}
	tourID, err := utils.ParseSixID(req.TourID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tour ID format"})
		return
	}

	sess := middleware.SessionFromContext(c)
	booking, err := h.bookingService.Create(c.Request.Context(), sess, services.CreateBookingInput{
		TourID:    tourID,
		StartDate: req.StartDate,
		People:    req.People,
		Contact:   req.Contact,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// UpdateBooking handles PUT /bookings/:id. The only mutable field is the
// status, and only admins may change it.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	sess := middleware.SessionFromContext(c)
	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), sess, bookingID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
