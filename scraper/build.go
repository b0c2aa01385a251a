package scraper

import (
	"log/slog"

	"github.com/use-agent/pagegrab/cache"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/engine"
)

// NewFromConfig wires the cache backend and both extraction tiers from cfg.
// A cache that is not configured, or whose URL cannot be parsed, leaves the
// scraper running uncached. Call Close on shutdown.
func NewFromConfig(cfg *config.Config) *Scraper {
	return New(
		newStaticEngine(cfg.Scraper),
		engine.NewRodEngine(engine.RodOptions{
			ChromePath:           cfg.Browser.ChromePath,
			Timeout:              cfg.Scraper.DynamicTimeout,
			Stealth:              cfg.Browser.Stealth,
			BlockedResourceTypes: cfg.Browser.BlockedResourceTypes,
			BlockTrackers:        cfg.Browser.BlockTrackers,
		}),
		newStore(cfg.Cache),
		WithDedupe(cfg.Scraper.Dedupe),
	)
}

func newStaticEngine(cfg config.ScraperConfig) *engine.HTTPEngine {
	opts := []engine.HTTPOption{engine.WithHTTPTimeout(cfg.StaticTimeout)}
	if cfg.TLSFingerprint {
		opts = append(opts, engine.WithChromeFingerprint())
	}
	return engine.NewHTTPEngine(opts...)
}

func newStore(cfg config.CacheConfig) *cache.Store {
	if !cfg.Enabled() {
		slog.Info("cache disabled: endpoint or token not set")
		return cache.New(nil)
	}
	backend, err := cache.NewRedisBackend(cfg.URL, cfg.Token)
	if err != nil {
		slog.Warn("cache disabled: bad endpoint", "error", err)
		return cache.New(nil)
	}
	return cache.New(backend, cache.WithOpTimeout(cfg.OpTimeout))
}

// Close releases the cache connection.
func (s *Scraper) Close() error {
	return s.cache.Close()
}
