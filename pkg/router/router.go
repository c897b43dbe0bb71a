package router

import (
	"net/http"
	"os"
	"strings"
	"time"

	"brainexa/backend/internal/api"
	"brainexa/backend/pkg/config"
	"brainexa/backend/pkg/errors"
	"brainexa/backend/pkg/jwt"
	"brainexa/backend/pkg/logger"
	"brainexa/backend/pkg/middleware"
	"brainexa/backend/pkg/observability"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Track server start time for uptime reporting
var startTime = time.Now()

// Router is the main router for the application
type Router struct {
	Engine *gin.Engine
	Logger *logger.Logger
	Config *config.Config

	jwtService *jwt.Service
}

// New creates a router with the full middleware stack installed.
func New(cfg *config.Config, log *logger.Logger, jwtService *jwt.Service) *Router {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Logger first so every request gets a request-scoped logger
	engine.Use(middleware.RequestID())
	engine.Use(logger.Middleware(log))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(observability.Middleware())
	engine.Use(middleware.BodyLimit(cfg.Security.MaxBodySize))

	rateLimiter := middleware.NewRateLimiter(log, middleware.RateLimiterOptions{
		Limit:          rate.Limit(cfg.Security.RateLimit),
		Burst:          cfg.Security.RateLimitBurst,
		ExpiryDuration: time.Hour,
		KeyFunc:        func(c *gin.Context) string { return c.ClientIP() },
	})
	engine.Use(rateLimiter.Middleware())

	engine.Use(corsMiddleware())

	return &Router{
		Engine:     engine,
		Logger:     log,
		Config:     cfg,
		jwtService: jwtService,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes(authHandler *api.AuthHandler, chatHandler *api.ChatHandler, adminHandler *api.AdminHandler) {
	jwtAuth := middleware.JWTAuth(r.jwtService, r.Logger)

	r.Engine.GET("/health", r.healthHandler())
	r.Engine.GET("/metrics", observability.MetricsHandler())

	apiRoutes := r.Engine.Group("/api")

	// Public routes (no auth required)
	authRoutes := apiRoutes.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Chat routes (require authentication)
	chatRoutes := apiRoutes.Group("/chat")
	chatRoutes.Use(jwtAuth)
	{
		chatRoutes.POST("", chatHandler.Send)
		chatRoutes.GET("/list", chatHandler.List)
		chatRoutes.GET("/:id", chatHandler.Get)
		chatRoutes.DELETE("/:id", chatHandler.Delete)
		chatRoutes.DELETE("", chatHandler.DeleteAll)
	}

	// Admin routes (require authentication + admin role)
	adminRoutes := apiRoutes.Group("/admin")
	adminRoutes.Use(jwtAuth, middleware.RequireRole(jwt.RoleAdmin))
	{
		adminRoutes.GET("/users", adminHandler.Users)
		adminRoutes.GET("/stats", adminHandler.Stats)
	}

	r.setupClient()
}

// setupClient serves the browser client when its directory is present.
// Non-API paths fall back to index.html for client-side routing.
func (r *Router) setupClient() {
	const clientDir = "./client"
	if _, err := os.Stat(clientDir); err != nil {
		return
	}

	r.Engine.Static("/client", clientDir)
	r.Engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(clientDir + "/index.html")
	})
}

func (r *Router) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		})
	}
}

// corsMiddleware allows the browser client to call the API from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
