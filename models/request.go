package models

// MaxBatchURLs caps the number of URLs accepted by one batch request.
const MaxBatchURLs = 20

// ScrapeRequest is the payload for POST /api/v1/scrape.
//
// Exactly one of URL or Message is expected. When only Message is set, the
// first URL found in it is scraped.
type ScrapeRequest struct {
	URL     string `json:"url,omitempty" binding:"omitempty,url"`
	Message string `json:"message,omitempty"`
}

// BatchScrapeRequest is the payload for POST /api/v1/batch/scrape.
type BatchScrapeRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,max=20,dive,url"`
}
