package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/middleware"
	"residentbook-backend-go/internal/models"
)

// Services bundles the core services the routes are served by.
type Services struct {
	Users    core.UserService
	Catalog  core.CatalogService
	Slots    core.SlotService
	Bookings core.BookingService
}

// SetupRoutes configures all application routes. Global middleware (request
// ID, logging, recovery, CORS) is expected on router already.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
	svc Services,
) {
	authHandler := NewAuthHandler(svc.Users, logger)
	userHandler := NewUserHandler(svc.Users, logger)
	serviceHandler := NewServiceHandler(svc.Catalog, logger)
	slotHandler := NewSlotHandler(svc.Slots, logger)
	bookingHandler := NewBookingHandler(svc.Bookings, logger)

	adminOnly := authMW.RequireRole(models.RoleAdmin)
	residentOnly := authMW.RequireRole(models.RoleResident)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authLimiter.Middleware(), authHandler.Signup)
			authGroup.POST("/login", authLimiter.Middleware(), authHandler.Login)
			authGroup.POST("/logout", authMW.VerifyToken(), authHandler.Logout)
		}

		protected := apiV1.Group("", authMW.VerifyToken())
		{
			protected.GET("/users/me", userHandler.GetCurrentUserProfile)

			protected.GET("/services", serviceHandler.ListServices)
			protected.GET("/services/:serviceId", serviceHandler.GetService)

			protected.GET("/slots/candidates", slotHandler.Candidates)
			protected.GET("/slots/available", slotHandler.Available)

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", residentOnly, bookingHandler.CreateBooking)
				bookings.GET("", bookingHandler.ListMyBookings)
				bookings.GET("/:bookingId", bookingHandler.GetBooking)
				bookings.DELETE("/:bookingId", bookingHandler.CancelBooking)
			}

			admin := protected.Group("/admin", adminOnly)
			{
				admin.POST("/services", serviceHandler.CreateService)
				admin.DELETE("/services/:serviceId", serviceHandler.DeleteService)

				admin.GET("/slots", slotHandler.ListSlots)
				admin.POST("/slots", slotHandler.CreateSlot)
				admin.POST("/slots/generate", slotHandler.GenerateSlots)
				admin.DELETE("/slots/:slotId", slotHandler.DeleteSlot)

				admin.GET("/bookings", bookingHandler.ListAllBookings)
				admin.DELETE("/bookings/:bookingId", bookingHandler.CancelBooking)
			}
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "ResidentBook backend is healthy."})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
