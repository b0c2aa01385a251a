package engine

import (
	"context"
	"errors"

	"github.com/use-agent/pagegrab/models"
)

// Engine is the interface that both extraction tiers implement.
//
// Extract returns a fully packaged ScrapedContent on success. It never
// returns a failure-shaped result: any fetch, launch, navigation or parse
// problem is reported through the error.
type Engine interface {
	// Name returns the engine identifier ("http" or "rod").
	Name() string

	// Extract fetches url and harvests its content regions.
	Extract(ctx context.Context, url string) (*models.ScrapedContent, error)
}

// categorizeError wraps raw errors into typed ScrapeErrors, keeping timeouts
// distinguishable from other failures in logs.
func categorizeError(err error, code, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(code, msg, err)
	}
}
