package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf16"

	"github.com/use-agent/pagegrab/models"
)

const (
	// KeyPrefix namespaces every scrape entry in the shared store.
	KeyPrefix = "scrape:"

	// MaxKeyURLLength is the number of UTF-16 code units of the URL kept in a
	// key.
	MaxKeyURLLength = 200

	// TTL is applied to every write.
	TTL = 7 * 24 * time.Hour

	// MaxEntryBytes is the largest serialized entry that will be stored.
	MaxEntryBytes = 1024000
)

// Backend is the minimal key/value surface the Store needs. Get returns
// (nil, nil) on a miss. The returned value is either an encoded payload
// (string or []byte) or an already-decoded JSON value such as map[string]any;
// the Store validates either form.
type Backend interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// Store is a best-effort, validating cache of ScrapedContent values.
// Every backend failure is absorbed: Get reports a miss and Put reports a
// skip. A Store with a nil backend is disabled. It is safe for concurrent use.
type Store struct {
	backend   Backend
	opTimeout time.Duration
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithOpTimeout bounds each backend round-trip. Zero means no extra bound.
func WithOpTimeout(d time.Duration) Option {
	return func(s *Store) { s.opTimeout = d }
}

// WithClock overrides the time source used for cachedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over backend. Pass a nil backend to get a disabled
// store.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether the store has a backend.
func (s *Store) Enabled() bool {
	return s != nil && s.backend != nil
}

// Key returns the cache key for url. The URL is cut after MaxKeyURLLength
// UTF-16 code units so keys line up with writers that measure strings that
// way. A surrogate pair straddling the cut is dropped whole.
func Key(url string) string {
	units := 0
	for i, r := range url {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > MaxKeyURLLength {
			return KeyPrefix + url[:i]
		}
		units += n
	}
	return KeyPrefix + url
}

// Get returns the cached content for url. Payloads that fail to decode or
// validate are deleted and reported as a miss.
func (s *Store) Get(ctx context.Context, url string) (models.ScrapedContent, bool) {
	if !s.Enabled() {
		return models.ScrapedContent{}, false
	}
	key := Key(url)

	opCtx, cancel := s.opContext(ctx)
	raw, err := s.backend.Get(opCtx, key)
	cancel()
	if err != nil {
		slog.Warn("cache: get failed, treating as miss", "key", key, "error", err)
		return models.ScrapedContent{}, false
	}
	if raw == nil {
		return models.ScrapedContent{}, false
	}

	content, err := Decode(raw)
	if err != nil {
		slog.Warn("cache: invalid entry, evicting", "key", key, "error", err)
		s.evict(ctx, key)
		return models.ScrapedContent{}, false
	}
	return content, true
}

// Put stamps content with the current time and writes it under url's key.
// It returns the stamped copy and true when the entry was written, or the
// original value and false when the write was skipped (invalid record, over
// MaxEntryBytes, disabled store, or backend error).
func (s *Store) Put(ctx context.Context, url string, content models.ScrapedContent) (models.ScrapedContent, bool) {
	if !s.Enabled() {
		return content, false
	}
	key := Key(url)
	stamped := content.WithCachedAt(s.now())

	payload, err := Encode(stamped)
	if err != nil {
		slog.Warn("cache: refusing to store entry", "key", key, "error", err)
		return content, false
	}
	if len(payload) > MaxEntryBytes {
		slog.Debug("cache: entry exceeds size ceiling, not cached",
			"key", key, "bytes", len(payload), "max", MaxEntryBytes)
		return content, false
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.backend.Set(opCtx, key, string(payload), TTL); err != nil {
		slog.Warn("cache: set failed", "key", key, "error", err)
		return content, false
	}
	return stamped, true
}

// Close releases the backend connection.
func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) evict(ctx context.Context, key string) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.backend.Del(opCtx, key); err != nil {
		slog.Warn("cache: evict failed", "key", key, "error", err)
	}
}

// opContext bounds a backend call when an op timeout is configured.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Encode validates content and returns its wire form.
func Encode(content models.ScrapedContent) ([]byte, error) {
	payload, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	// Round-trip through the schema so a value that would be rejected on
	// read is never written.
	var generic any
	if err := json.Unmarshal(payload, &generic); err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	if err := Validate(generic); err != nil {
		return nil, err
	}
	return payload, nil
}

// Decode turns a raw backend value into a validated ScrapedContent. raw may
// be a string, a []byte, or an already-decoded JSON value.
func Decode(raw any) (models.ScrapedContent, error) {
	var generic any
	switch v := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &generic); err != nil {
			return models.ScrapedContent{}, fmt.Errorf("decode entry: %w", err)
		}
	case []byte:
		if err := json.Unmarshal(v, &generic); err != nil {
			return models.ScrapedContent{}, fmt.Errorf("decode entry: %w", err)
		}
	default:
		generic = v
	}

	if err := Validate(generic); err != nil {
		return models.ScrapedContent{}, err
	}
	return fromGeneric(generic.(map[string]any)), nil
}

// ErrInvalidEntry is returned (wrapped) for every schema violation.
var ErrInvalidEntry = errors.New("invalid cache entry")
