package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/models"
	"github.com/use-agent/pagegrab/scraper"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// A running server without a cache is still usable, so it reports
// "degraded" rather than failing the probe.
func Health(sc *scraper.Scraper, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, cacheState := "healthy", "enabled"
		if !sc.CacheEnabled() {
			status, cacheState = "degraded", "disabled"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Cache:   cacheState,
			Version: Version,
		})
	}
}
