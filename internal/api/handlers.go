package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/middleware"
	"residentbook-backend-go/internal/models"
)

// bindJSON decodes the request body into dst, answering 400 on failure.
// Field rules are checked later by the services.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return false
	}
	return true
}

// bindView reads the search, sort, order and page query parameters.
func bindView(c *gin.Context) (listview.View, bool) {
	var view listview.View
	if err := c.ShouldBindQuery(&view); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid list parameters", Details: err.Error()})
		return listview.View{}, false
	}
	return view, true
}

// requireActor returns the caller set by the auth middleware.
func requireActor(c *gin.Context, logger *zap.Logger) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		logger.Error("Authenticated route reached without a user in context", zap.String("path", c.FullPath()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return models.Actor{}, false
	}
	return actor, true
}
