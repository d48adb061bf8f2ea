package api

import (
	"fmt"
	"log"
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

	// Routes
	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Public feed and download endpoints
	r.GET("/feeds/:id", handler.GetFeedByID)
	r.GET("/download/:id/:episode_id", handler.DownloadEpisode)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Mutating endpoints, authenticated when an access key is configured
	mutating := r.Group("/")
	if apiAccessKey != "" {
		mutating.Use(authMiddleware(apiAccessKey))
		log.Printf("Feed provisioning endpoints enabled with authentication")
	} else {
		log.Printf("Feed provisioning endpoints enabled without authentication (API_ACCESS_KEY not set)")
	}
	mutating.POST("/feeds", handler.CreateFeed)
	mutating.DELETE("/feeds/:id", handler.DeleteFeedByID)

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "PodMirror",
			"description": "Mirrors YouTube and Vimeo channels, users and playlists as podcast-style episode feeds",
			"endpoints": map[string]string{
				"create":   "/feeds (POST)",
				"feed":     "/feeds/<id>",
				"delete":   "/feeds/<id> (DELETE)",
				"download": "/download/<feed id>/<episode id>",
				"health":   "/health",
				"stats":    "/stats",
			},
			"api_status": map[string]interface{}{
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

// authMiddleware creates authentication middleware for mutating endpoints
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

		// Check if API key is provided and matches
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

		// Continue to next middleware/handler
		c.Next()
	}
}
