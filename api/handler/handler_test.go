package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/models"
	"github.com/use-agent/pagegrab/scraper"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubEngine succeeds for every URL except those listed in fail, and records
// what it was asked for.
type stubEngine struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Extract(_ context.Context, url string) (*models.ScrapedContent, error) {
	s.mu.Lock()
	s.seen = append(s.seen, url)
	s.mu.Unlock()
	if s.fail[url] {
		return nil, errors.New("unreachable")
	}
	c := cleaner.Regions{Title: "T", Paragraphs: "body of " + url}.Build(url)
	return &c, nil
}

func newTestEngine(static *stubEngine) *gin.Engine {
	sc := scraper.New(static, nil, nil)
	r := gin.New()
	r.POST("/scrape", Scrape(sc))
	r.POST("/batch", Batch(sc, 2))
	r.GET("/health", Health(sc, time.Now()))
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScrape_URL(t *testing.T) {
	r := newTestEngine(&stubEngine{})

	w := post(r, "/scrape", `{"url":"https://example.com/a"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.ScrapedContent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "https://example.com/a", got.URL)
	assert.Equal(t, "T body of https://example.com/a", got.Content)
	assert.Nil(t, got.Error)
	assert.Contains(t, w.Body.String(), `"error":null`)
}

func TestScrape_Message(t *testing.T) {
	eng := &stubEngine{}
	r := newTestEngine(eng)

	w := post(r, "/scrape", `{"message":"what does www.example.org/about say?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"https://www.example.org/about"}, eng.seen)
}

func TestScrape_Failure(t *testing.T) {
	r := newTestEngine(&stubEngine{fail: map[string]bool{"https://down.example": true}})

	w := post(r, "/scrape", `{"url":"https://down.example"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.ScrapedContent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.FailedToScrape, got.ErrorString())
	assert.Empty(t, got.Content)
}

func TestScrape_BadInput(t *testing.T) {
	r := newTestEngine(&stubEngine{})

	for _, body := range []string{`{}`, `{"message":"no links"}`, `{"url":"not a url"}`, `not json`} {
		w := post(r, "/scrape", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		var got models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), body)
		assert.Equal(t, models.ErrCodeInvalidInput, got.Error.Code, body)
	}
}

func TestBatch(t *testing.T) {
	r := newTestEngine(&stubEngine{fail: map[string]bool{"https://b.example": true}})

	w := post(r, "/batch", `{"urls":["https://a.example","https://b.example","https://c.example"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.BatchScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Results, 3)
	assert.Equal(t, "https://a.example", got.Results[0].URL)
	assert.True(t, got.Results[1].Failed())
	assert.Equal(t, "https://c.example", got.Results[2].URL)
	assert.False(t, got.Results[2].Failed())
}

func TestBatch_Limits(t *testing.T) {
	r := newTestEngine(&stubEngine{})

	assert.Equal(t, http.StatusBadRequest, post(r, "/batch", `{"urls":[]}`).Code)

	urls := make([]string, models.MaxBatchURLs+1)
	for i := range urls {
		urls[i] = `"https://example.com"`
	}
	body := `{"urls":[` + strings.Join(urls, ",") + `]}`
	assert.Equal(t, http.StatusBadRequest, post(r, "/batch", body).Code)
}

func TestHealth(t *testing.T) {
	r := newTestEngine(&stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "disabled", got.Cache)
	assert.Equal(t, "degraded", got.Status)
	assert.Equal(t, Version, got.Version)
}
