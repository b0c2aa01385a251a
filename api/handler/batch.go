package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/models"
	"github.com/use-agent/pagegrab/scraper"
)

// Batch returns a handler for POST /api/v1/batch/scrape.
// It scrapes up to models.MaxBatchURLs URLs with at most concurrency in
// flight and responds once all of them are done, in request order.
func Batch(sc *scraper.Scraper, concurrency int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		start := time.Now()
		results := sc.ScrapeAll(c.Request.Context(), req.URLs, concurrency)

		failed := 0
		for _, r := range results {
			if r.Failed() {
				failed++
			}
		}
		slog.Info("batch finished",
			"total", len(results),
			"failed", failed,
			"ms", time.Since(start).Milliseconds(),
		)

		c.JSON(http.StatusOK, models.BatchScrapeResponse{Results: results})
	}
}
