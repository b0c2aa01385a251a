package models

// ErrorResponse is returned for requests rejected before scraping starts.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// BatchScrapeResponse is the response for POST /api/v1/batch/scrape.
// Results are in the same order as the requested URLs.
type BatchScrapeResponse struct {
	Results []ScrapedContent `json:"results"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy" or "degraded"
	Uptime  string `json:"uptime"`
	Cache   string `json:"cache"` // "enabled" or "disabled"
	Version string `json:"version"`
}
