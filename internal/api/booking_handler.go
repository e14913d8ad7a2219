package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/models"
)

// BookingHandler handles resident bookings and the admin booking list.
type BookingHandler struct {
	bookings core.BookingService
	logger   *zap.Logger
}

func NewBookingHandler(bs core.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bs, logger: logger}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.Book(c.Request.Context(), actor.UserID, req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// ListMyBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	view, ok := bindView(c)
	if !ok {
		return
	}
	res, err := h.bookings.ListMine(c.Request.Context(), actor.UserID, view)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetBooking handles GET /api/v1/bookings/:bookingId, the confirmation view.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	booking, err := h.bookings.Get(c.Request.Context(), actor, c.Param("bookingId"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelBooking handles DELETE /api/v1/bookings/:bookingId and
// DELETE /api/v1/admin/bookings/:bookingId.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	if err := h.bookings.Cancel(c.Request.Context(), actor, c.Param("bookingId")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAllBookings handles GET /api/v1/admin/bookings.
func (h *BookingHandler) ListAllBookings(c *gin.Context) {
	view, ok := bindView(c)
	if !ok {
		return
	}
	res, err := h.bookings.ListAll(c.Request.Context(), view)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
