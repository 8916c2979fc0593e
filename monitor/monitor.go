package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"records-portal-api/config"

	"github.com/gin-gonic/gin"
)

var errNoDatabase = errors.New("database not initialised")

// RegisterHealthRoutes adds /health (process liveness) and /ready (database
// reachable) to the router.
func RegisterHealthRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Records Portal API is running",
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		if err := pingDatabase(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}

func pingDatabase(ctx context.Context) error {
	if config.DB == nil {
		return errNoDatabase
	}
	sqlDB, err := config.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
