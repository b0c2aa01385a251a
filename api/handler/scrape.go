package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/models"
	"github.com/use-agent/pagegrab/scraper"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// The body carries either a url or a free-text message; for a message the
// first URL found in it is scraped. The response is always the
// ScrapedContent for that URL, whose error field is set when every tier
// failed.
func Scrape(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		target := req.URL
		if target == "" {
			found, ok := scraper.FirstURL(req.Message)
			if !ok {
				badRequest(c, "no URL found: provide url or a message containing one")
				return
			}
			target = found
		}

		c.JSON(http.StatusOK, sc.Scrape(c.Request.Context(), target))
	}
}

// badRequest writes a 400 with an INVALID_INPUT error body.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: msg,
		},
	})
}
