// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"movitex/internal/booking"
	"movitex/internal/doclookup"
	"movitex/internal/profile"
	"movitex/internal/reservation"
	"movitex/internal/shared/config"
	"movitex/internal/shared/database"
	"movitex/internal/tickets"
	"movitex/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	events reservation.EventPublisher

	bookingBackend booking.Backend // shared by reservations and tickets
	reservations   *reservation.Manager
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, events reservation.EventPublisher) *Router {
	return &Router{
		config: cfg,
		db:     db,
		events: events,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	r.bookingBackend = booking.NewRepository(r.db.GetPostgreSQL())

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupReservationRoutes(api)
		r.setupTicketRoutes(api)
	}
}

// Start launches background work owned by the routes
func (r *Router) Start(ctx context.Context) {
	if r.reservations != nil {
		r.reservations.Start(ctx)
	}
}

// Stop halts background work owned by the routes
func (r *Router) Stop() {
	if r.reservations != nil {
		r.reservations.Stop()
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "movitex-reservations",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "movitex-reservations",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		active := 0
		if r.reservations != nil {
			active = r.reservations.Active()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":              "operational",
			"api_version":         r.config.APIVersion,
			"active_reservations": active,
			"timestamp":           time.Now(),
		})
	})
}

// setupReservationRoutes configures the per-tab session engine routes
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	cacheService := cache.NewService(r.db.GetRedis())

	profileRepo := profile.NewRepository(r.db.GetPostgreSQL())
	profileSource := profile.NewService(profileRepo, cacheService, r.config.Redis.ProfileCacheTTL)

	lookupClient := doclookup.NewClient(r.config.DocumentLookup, cacheService, r.config.Redis.LookupCacheTTL)

	r.reservations = reservation.NewManager(reservation.ManagerDeps{
		Cache:    cacheService,
		Profiles: profileSource,
		Lookup:   lookupClient,
		Backend:  r.bookingBackend,
		Events:   r.events,
	}, r.config.Reservation, r.config.Redis.SessionTTL)

	reservationController := reservation.NewController(r.reservations, r.config.Reservation.HoldDuration)

	// Setup reservation routes
	reservation.SetupReservationRoutes(rg, reservationController, r.config)
}

// setupTicketRoutes configures boleta retrieval routes
func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	ticketService := tickets.NewService(r.bookingBackend)
	ticketController := tickets.NewController(ticketService)

	tickets.SetupTicketRoutes(rg, ticketController)
}
