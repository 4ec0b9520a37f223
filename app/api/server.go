package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP surface with all routes configured
func NewServer(handler *Handler, dashboardDir string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestLogger())
	r.Use(gin.Recovery())

	// The capture extension posts from a browser origin
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, dashboardDir)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, dashboardDir string) {
	r.POST("/tabs", handler.SaveTabs)
	r.GET("/tabs", handler.ListTabs)
	r.GET("/tabs/:id", handler.GetTab)
	r.DELETE("/tabs/:id", handler.DeleteTab)

	r.POST("/digests/generate", handler.GenerateDigest)
	r.GET("/digests", handler.ListDigests)
	r.GET("/digests/:id", handler.GetDigest)
	r.DELETE("/digests/:id", handler.DeleteDigest)

	r.GET("/health", handler.GetHealth)

	if dashboardDir != "" {
		r.Static("/dashboard", dashboardDir)
		r.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/dashboard")
		})
	}

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP())
	}
}
