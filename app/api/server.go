package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// API endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/apartments", handler.ListApartments)
			api.POST("/apartments", handler.CreateApartment)
			api.GET("/apartments/:id", handler.GetApartment)
			api.PUT("/apartments/:id", handler.UpdateApartment)
			api.DELETE("/apartments/:id", handler.DeleteApartment)

			api.GET("/apartments/:id/feeds", handler.ListFeeds)
			api.PUT("/apartments/:id/feeds", handler.UpsertFeed)
			api.DELETE("/apartments/:id/feeds/:source", handler.DeleteFeed)

			api.POST("/ical/validate", handler.ValidateCalendarURL)
			api.POST("/sync", handler.RunSync)
			api.POST("/apartments/:id/sync", handler.SyncApartment)
			api.GET("/sync-logs", handler.ListSyncLogs)

			api.GET("/reservations", handler.ListReservations)
			api.POST("/reservations", handler.CreateReservation)
			api.GET("/reservations/:id", handler.GetReservation)
			api.PUT("/reservations/:id", handler.UpdateReservation)
			api.POST("/reservations/:id/cancel", handler.CancelReservation)
			api.DELETE("/reservations/:id", handler.DeleteReservation)

			api.GET("/cleaning-sessions", handler.ListCleaningSessions)
			api.POST("/cleaning-sessions", handler.CreateCleaningSession)
			api.PUT("/cleaning-sessions/:id", handler.UpdateCleaningSession)
			api.DELETE("/cleaning-sessions/:id", handler.DeleteCleaningSession)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Warn("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health": "/health",
			"stats":  "/stats",
		}

		// Add API endpoints if authentication is enabled
		if apiAccessKey != "" {
			endpoints["apartments"] = "/api/apartments (requires X-API-Key header)"
			endpoints["reservations"] = "/api/reservations (requires X-API-Key header)"
			endpoints["cleaning"] = "/api/cleaning-sessions (requires X-API-Key header)"
			endpoints["sync"] = "/api/sync (POST, requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "StaySync",
			"description": "Apartment rental management with calendar feed synchronization",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
