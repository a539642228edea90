package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"equi-cloud.backend/pkg/redis"
)

const (
	serviceName    = "equicloud-backend"
	serviceVersion = "0.3.0"
)

// applyCORSMiddleware installs CORS headers. With no configured origins
// every origin is echoed back; otherwise only listed origins are allowed.
func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && originAllowed(origin, allowedOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, HEAD, PUT, POST, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, If-None-Match")
			c.Header("Access-Control-Expose-Headers", "ETag, X-Version")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if !redis.Healthy(c.Request.Context()) {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

// registerRootRoute serves the API root: a redirect when one is configured,
// otherwise a service info document.
func registerRootRoute(r *gin.Engine, redirectURL string) {
	r.GET("/", func(c *gin.Context) {
		if redirectURL != "" && (strings.HasPrefix(redirectURL, "http://") || strings.HasPrefix(redirectURL, "https://")) {
			c.Redirect(http.StatusMovedPermanently, redirectURL)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"service":   serviceName,
			"version":   serviceVersion,
			"timestamp": time.Now().UnixMilli(),
			"endpoints": []string{
				"/health",
				"/v1",
				"/v1/settings",
				"/v1/oauth/settings",
				"/v2/data/*key",
				"/v2/manifest",
				"/v2/sync",
			},
		})
	})
}
