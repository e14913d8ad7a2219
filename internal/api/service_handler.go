package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/models"
)

// ServiceHandler exposes the service catalog.
type ServiceHandler struct {
	catalog core.CatalogService
	logger  *zap.Logger
}

func NewServiceHandler(cs core.CatalogService, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{catalog: cs, logger: logger}
}

// ListServices handles GET /api/v1/services.
func (h *ServiceHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.List(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ServiceListResponse{Services: services})
}

// GetService handles GET /api/v1/services/:serviceId.
func (h *ServiceHandler) GetService(c *gin.Context) {
	svc, err := h.catalog.Get(c.Request.Context(), c.Param("serviceId"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateService handles POST /api/v1/admin/services.
func (h *ServiceHandler) CreateService(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	var req models.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalog.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// DeleteService handles DELETE /api/v1/admin/services/:serviceId.
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	actor, ok := requireActor(c, h.logger)
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), actor.UserID, c.Param("serviceId")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
