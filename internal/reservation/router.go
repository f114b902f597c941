package reservation

import (
	"movitex/internal/shared/config"
	"movitex/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReservationRoutes configures the per-tab reservation session routes
func SetupReservationRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	reservation := rg.Group("/reservation")
	reservation.Use(middleware.RequireTabID(), middleware.OptionalAuth(cfg))
	{
		// Session lifecycle
		reservation.POST("/session", controller.BeginSession)   // POST   /api/v1/reservation/session
		reservation.GET("/session", controller.GetSession)      // GET    /api/v1/reservation/session
		reservation.DELETE("/session", controller.ClearSession) // DELETE /api/v1/reservation/session

		// Form edits
		reservation.PATCH("/contact", controller.UpdateContact)
		reservation.PATCH("/checkout", controller.UpdateCheckout)
		reservation.PATCH("/passengers/:index", controller.UpdatePassenger)
		reservation.PUT("/passengers/:index/document", controller.SetDocumentNumber)

		// Payment
		reservation.POST("/submit", controller.Submit)
		reservation.GET("/confirmation", controller.GetConfirmation)
	}
}

// Route definitions for reference:
//
// Every route requires X-Tab-ID; Authorization is optional and switches
// submission to the authenticated booking procedure.
//
// POST   /reservation/session                  - Start a hold (replaces any current one)
// Request body: { "tripId": "T1", "seats": [{"seatId": 12, "seatNumber": "14", "price": 45}], "startHold": true }
// GET    /reservation/session                  - Resume; 404 redirect when empty (unless ?allow_empty=true), 410 once after expiry
// PUT    /reservation/passengers/:index/document - Debounced national-id lookup
// POST   /reservation/submit                   - Book the session
// GET    /reservation/confirmation             - Last successful reservation of the tab
