package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/models"
)

// SlotHandler exposes slot generation, availability and admin slot management.
type SlotHandler struct {
	slots  core.SlotService
	logger *zap.Logger
}

func NewSlotHandler(ss core.SlotService, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{slots: ss, logger: logger}
}

// Candidates handles GET /api/v1/slots/candidates.
func (h *SlotHandler) Candidates(c *gin.Context) {
	c.JSON(http.StatusOK, CandidatesResponse{Slots: h.slots.Candidates()})
}

func bindDay(c *gin.Context) (models.AvailabilityQuery, bool) {
	var q models.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return models.AvailabilityQuery{}, false
	}
	return q, true
}

// Available handles GET /api/v1/slots/available?serviceId=&date=.
func (h *SlotHandler) Available(c *gin.Context) {
	q, ok := bindDay(c)
	if !ok {
		return
	}
	slots, err := h.slots.Available(c.Request.Context(), q)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, AvailableSlotsResponse{ServiceID: q.ServiceID, Date: q.Date, Slots: slots})
}

// ListSlots handles GET /api/v1/admin/slots?serviceId=&date= with list view
// parameters.
func (h *SlotHandler) ListSlots(c *gin.Context) {
	q, ok := bindDay(c)
	if !ok {
		return
	}
	view, ok := bindView(c)
	if !ok {
		return
	}
	res, err := h.slots.ListForDay(c.Request.Context(), q, view)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreateSlot handles POST /api/v1/admin/slots.
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	var req models.CreateSlotRequest
	if !bindJSON(c, &req) {
		return
	}
	slot, err := h.slots.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// GenerateSlots handles POST /api/v1/admin/slots/generate.
func (h *SlotHandler) GenerateSlots(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	var req models.GenerateSlotsRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.slots.GenerateDay(c.Request.Context(), actor.UserID, req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// DeleteSlot handles DELETE /api/v1/admin/slots/:slotId.
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	if err := h.slots.Delete(c.Request.Context(), actor.UserID, c.Param("slotId")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
