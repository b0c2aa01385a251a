// Package scraper turns a URL into a ScrapedContent: cache first, then a plain
// HTTP extraction, then a headless-browser render, and finally a structured
// failure result. Scrape never returns an error and never panics.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/use-agent/pagegrab/cache"
	"github.com/use-agent/pagegrab/engine"
	"github.com/use-agent/pagegrab/models"
)

// Scraper coordinates the cache and the two extraction tiers.
// It is safe for concurrent use.
type Scraper struct {
	static  engine.Engine
	dynamic engine.Engine
	cache   *cache.Store

	dedupe bool
	flight singleflight.Group
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithDedupe makes concurrent cache misses for the same URL share a single
// pipeline run. The shared run keeps the first caller's values but not its
// cancellation, so one caller giving up does not fail the others; the engine
// timeouts still bound it.
func WithDedupe(enabled bool) Option {
	return func(s *Scraper) { s.dedupe = enabled }
}

// New creates a Scraper. store may be nil or disabled, in which case every
// lookup misses and nothing is written.
func New(static, dynamic engine.Engine, store *cache.Store, opts ...Option) *Scraper {
	if store == nil {
		store = cache.New(nil)
	}
	s := &Scraper{
		static:  static,
		dynamic: dynamic,
		cache:   store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheEnabled reports whether results are being cached.
func (s *Scraper) CacheEnabled() bool {
	return s.cache.Enabled()
}

// Scrape returns the content for url.
//
// State flow:
//
//	CacheLookup ─hit─▶ done (no fetch, no write)
//	     │miss
//	StaticAttempt ─ok─▶ write-through ─▶ done
//	     │err
//	DynamicAttempt ─ok─▶ write-through ─▶ done
//	     │err
//	Failed: NewFailedContent(url), nothing cached
//
// At most one cache write happens per call.
func (s *Scraper) Scrape(ctx context.Context, url string) models.ScrapedContent {
	if cached, hit := s.cache.Get(ctx, url); hit {
		slog.Debug("scraper: cache hit", "url", url)
		return cached
	}

	if !s.dedupe {
		return s.extract(ctx, url)
	}
	runCtx := context.WithoutCancel(ctx)
	v, _, shared := s.flight.Do(url, func() (any, error) {
		return s.extract(runCtx, url), nil
	})
	if shared {
		slog.Debug("scraper: shared in-flight result", "url", url)
	}
	return v.(models.ScrapedContent)
}

// ScrapeAll scrapes every URL with at most concurrency calls in flight
// (unbounded when concurrency <= 0). Results are in input order.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string, concurrency int) []models.ScrapedContent {
	results := make([]models.ScrapedContent, len(urls))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, u := range urls {
		g.Go(func() error {
			results[i] = s.Scrape(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// extract runs the static tier, then the dynamic tier, and writes the first
// success through to the cache.
func (s *Scraper) extract(ctx context.Context, url string) models.ScrapedContent {
	start := time.Now()

	content, err := runStage(ctx, s.static, url)
	if err == nil {
		slog.Info("scraper: extracted", "url", url, "engine", s.static.Name(),
			"ms", time.Since(start).Milliseconds())
		return s.writeThrough(ctx, url, content)
	}
	slog.Info("scraper: static extraction failed, falling back to browser",
		"url", url, "error", err)

	content, err = runStage(ctx, s.dynamic, url)
	if err == nil {
		slog.Info("scraper: extracted", "url", url, "engine", s.dynamic.Name(),
			"ms", time.Since(start).Milliseconds())
		return s.writeThrough(ctx, url, content)
	}
	slog.Warn("scraper: all engines failed", "url", url, "error", err,
		"ms", time.Since(start).Milliseconds())

	return models.NewFailedContent(url)
}

// writeThrough caches content and returns what the caller should see: the
// stamped copy when written, the original otherwise.
func (s *Scraper) writeThrough(ctx context.Context, url string, content models.ScrapedContent) models.ScrapedContent {
	stamped, ok := s.cache.Put(ctx, url, content)
	if !ok {
		return content
	}
	return stamped
}

// errNoEngine is returned for a tier that was not configured.
var errNoEngine = errors.New("engine not configured")

// runStage runs one engine and turns every way it can go wrong (error, nil
// result, panic) into an error.
func runStage(ctx context.Context, e engine.Engine, url string) (content models.ScrapedContent, err error) {
	if e == nil {
		return models.ScrapedContent{}, errNoEngine
	}
	defer func() {
		if r := recover(); r != nil {
			err = models.NewScrapeError(models.ErrCodeInternal,
				fmt.Sprintf("%s engine panicked", e.Name()), fmt.Errorf("%v", r))
		}
	}()

	out, err := e.Extract(ctx, url)
	if err != nil {
		return models.ScrapedContent{}, err
	}
	if out == nil {
		return models.ScrapedContent{}, fmt.Errorf("%s engine returned no content", e.Name())
	}
	return *out, nil
}
