package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// viewerKey is the gin context key holding the caller's models.Viewer
const viewerKey = "viewer"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(viewerMiddleware(cfg.Blog.AdminToken))
	router.Use(viewMiddleware(services.Views, cfg.Blog.ViewRecordTimeout))

	// Handlers
	public := NewPublicHandler(services, log)
	admin := NewAdminHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)

	posts := router.Group("/posts")
	{
		posts.GET("", public.Home)
		posts.GET("/:slug", public.GetPost)
		posts.GET("/:slug/comments", public.GetComments)
		posts.POST("/:slug/comments",
			commentRateLimit(cfg.Blog.CommentRateLimit, cfg.Blog.CommentRateBurst),
			public.CreateComment,
		)
	}
	router.GET("/categories/:slug/posts", public.ListByCategory)
	router.GET("/tags/:slug/posts", public.ListByTag)
	router.GET("/archive", public.Archive)
	router.GET("/archive/:month", public.ArchiveMonth)

	adminGroup := router.Group(cfg.Blog.AdminPathPrefix, requireAdmin())
	{
		adminGroup.GET("/dashboard", admin.Dashboard)

		adminGroup.GET("/posts", admin.ListPosts)
		adminGroup.POST("/posts", admin.CreatePost)
		adminGroup.GET("/posts/:id", admin.GetPost)
		adminGroup.PUT("/posts/:id", admin.UpdatePost)
		adminGroup.DELETE("/posts/:id", admin.DeletePost)

		adminGroup.GET("/categories", admin.ListCategories)
		adminGroup.POST("/categories", admin.CreateCategory)
		adminGroup.DELETE("/categories/:id", admin.DeleteCategory)
		adminGroup.POST("/categories/:id/reassign", admin.ReassignCategory)

		adminGroup.GET("/tags", admin.ListTags)
		adminGroup.POST("/tags", admin.CreateTag)
		adminGroup.DELETE("/tags/:id", admin.DeleteTag)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "blog-publishing-api",
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// viewerMiddleware resolves the caller's capability from a bearer token.
// An empty configured token disables admin access entirely.
func viewerMiddleware(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := models.Public
		if adminToken != "" {
			token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) == 1 {
				viewer = models.Admin
			}
		}
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// requireAdmin rejects non-admin callers
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !viewerFrom(c).Admin {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin token required"})
			return
		}
		c.Next()
	}
}

func viewerFrom(c *gin.Context) models.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(models.Viewer); ok {
			return viewer
		}
	}
	return models.Public
}

// viewMiddleware records the visit once the response is written. Recording
// runs detached from the request so it can neither delay nor fail it.
func viewMiddleware(recorder service.ViewRecorder, timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(c *gin.Context) {
		c.Next()

		path, ip := c.Request.URL.Path, c.ClientIP()
		ctx := context.WithoutCancel(c.Request.Context())
		go func() {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			recorder.Record(ctx, path, ip)
		}()
	}
}

// commentRateLimit throttles comment creation per client IP. A limit of
// zero disables throttling.
func commentRateLimit(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many comments, slow down"})
			return
		}
		c.Next()
	}
}
