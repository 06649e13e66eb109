package routes

import (
	"net/http"
	"time"

	"domostay/handlers"
	"domostay/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the booking engine's boundary operations.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	api := r.Group("/api")
	{
		api.GET("/units", h.ListUnitsHandler)
		api.GET("/availability", h.GetAvailabilityHandler)
		api.POST("/pricing/quote", h.QuotePriceHandler)
		api.POST("/reservations", h.CreateReservationHandler)
		api.GET("/reservations", h.ListReservationsHandler)
		api.GET("/reservations/stats", h.ReservationStatsHandler)
		api.PATCH("/reservations/:id", h.UpdateReservationHandler)
		api.DELETE("/reservations/:id", h.CancelReservationHandler)
	}
}

// RegisterSessionRoutes registers the dialogue session store endpoints.
func RegisterSessionRoutes(r *gin.Engine, h *handlers.SessionHandler) {
	sessions := r.Group("/api/sessions")
	{
		sessions.POST("", h.CreateSessionHandler)
		sessions.GET("/:sessionID", h.GetSessionHandler)
		sessions.PUT("/:sessionID", h.UpdateSessionHandler)
		sessions.DELETE("/:sessionID", h.DeleteSessionHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, bookingHandler *handlers.BookingHandler, sessionHandler *handlers.SessionHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, bookingHandler)
	RegisterSessionRoutes(r, sessionHandler)
}
