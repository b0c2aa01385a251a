package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// CacheConfig controls the remote scrape cache. The cache is disabled unless
// both URL and Token are set.
type CacheConfig struct {
	// URL is a redis:// or rediss:// address, or an Upstash-style https
	// REST URL whose host is reached over TLS on the Redis port.
	URL string

	// Token is the store credential.
	Token string

	// OpTimeout bounds every single cache call. 0 means only the caller's
	// context applies.
	OpTimeout time.Duration // default: 2s
}

// Enabled reports whether both the endpoint and the credential are present.
func (c CacheConfig) Enabled() bool {
	return c.URL != "" && c.Token != ""
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the headless browser used for the dynamic tier.
type BrowserConfig struct {
	// ChromePath is a local Chrome/Chromium executable. When empty the
	// browser managed by rod's launcher is downloaded and used.
	ChromePath string

	// Stealth patches common headless fingerprints on every page.
	Stealth bool // default: false

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockTrackers drops requests to known ad and analytics hosts.
	BlockTrackers bool // default: true
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// StaticTimeout bounds the plain HTTP tier. 0 disables the bound.
	StaticTimeout time.Duration // default: 15s

	// DynamicTimeout bounds browser launch, navigation and evaluation.
	DynamicTimeout time.Duration // default: 45s

	// TLSFingerprint sends a Chrome ClientHello on the static tier.
	TLSFingerprint bool // default: false

	// Dedupe shares one pipeline run between concurrent misses for a URL.
	Dedupe bool // default: false

	// BatchConcurrency caps in-flight scrapes per batch request.
	BatchConcurrency int // default: 4
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PAGEGRAB_HOST", "0.0.0.0"),
			Port: envIntOr("PAGEGRAB_PORT", 8080),
			Mode: envOr("PAGEGRAB_MODE", "release"),
		},
		Browser: BrowserConfig{
			ChromePath: firstEnv("PAGEGRAB_CHROME_PATH", "CHROME_EXECUTABLE_PATH"),
			Stealth:    envBoolOr("PAGEGRAB_STEALTH", false),
			BlockedResourceTypes: envSliceOr("PAGEGRAB_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			BlockTrackers: envBoolOr("PAGEGRAB_BLOCK_TRACKERS", true),
		},
		Scraper: ScraperConfig{
			StaticTimeout:    envDurationOr("PAGEGRAB_STATIC_TIMEOUT", 15*time.Second),
			DynamicTimeout:   envDurationOr("PAGEGRAB_DYNAMIC_TIMEOUT", 45*time.Second),
			TLSFingerprint:   envBoolOr("PAGEGRAB_TLS_FINGERPRINT", false),
			Dedupe:           envBoolOr("PAGEGRAB_DEDUPE", false),
			BatchConcurrency: envIntOr("PAGEGRAB_BATCH_CONCURRENCY", 4),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PAGEGRAB_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PAGEGRAB_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PAGEGRAB_RATE_RPS", 5.0),
			Burst:             envIntOr("PAGEGRAB_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			URL:       firstEnv("PAGEGRAB_CACHE_URL", "UPSTASH_REDIS_REST_URL"),
			Token:     firstEnv("PAGEGRAB_CACHE_TOKEN", "UPSTASH_REDIS_REST_TOKEN"),
			OpTimeout: envDurationOr("PAGEGRAB_CACHE_TIMEOUT", 2*time.Second),
		},
		Log: LogConfig{
			Level:  envOr("PAGEGRAB_LOG_LEVEL", "info"),
			Format: envOr("PAGEGRAB_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
