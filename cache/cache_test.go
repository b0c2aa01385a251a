package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/pagegrab/models"
)

// memBackend is an in-memory Backend. Values are stored as given so tests can
// seed either encoded strings or pre-decoded maps.
type memBackend struct {
	mu      sync.Mutex
	data    map[string]any
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	deleted []string
	sets    int
}

func newMemBackend() *memBackend {
	return &memBackend{data: map[string]any{}, ttls: map[string]time.Duration{}}
}

func (m *memBackend) Get(_ context.Context, key string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *memBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memBackend) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memBackend) Close() error { return nil }

func sampleContent(url string) models.ScrapedContent {
	return models.ScrapedContent{
		URL:             url,
		Title:           "Title",
		Headings:        models.Headings{H1: "Heading one", H2: "Heading two"},
		MetaDescription: "Description",
		Content:         "Title Description Heading one Heading two body",
	}
}

var fixedNow = time.UnixMilli(1700000000123)

func newTestStore(b Backend) *Store {
	return New(b, WithClock(func() time.Time { return fixedNow }))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "scrape:https://example.com", Key("https://example.com"))

	long := "https://example.com/" + strings.Repeat("a", 300)
	k := Key(long)
	assert.Equal(t, KeyPrefix+long[:MaxKeyURLLength], k)
}

func TestKey_CountsUTF16Units(t *testing.T) {
	// U+00E9 is one unit, U+1F600 is a surrogate pair.
	bmp := strings.Repeat("é", 250)
	assert.Equal(t, KeyPrefix+strings.Repeat("é", 200), Key(bmp))

	fits := strings.Repeat("a", 198) + "😀" + "tail"
	assert.Equal(t, KeyPrefix+strings.Repeat("a", 198)+"😀", Key(fits))

	straddles := strings.Repeat("a", 199) + "😀" + "tail"
	assert.Equal(t, KeyPrefix+strings.Repeat("a", 199), Key(straddles))
}

func TestStore_PutThenGet(t *testing.T) {
	b := newMemBackend()
	s := newTestStore(b)
	ctx := context.Background()

	in := sampleContent("https://example.com")
	stamped, ok := s.Put(ctx, in.URL, in)
	require.True(t, ok)
	assert.Equal(t, fixedNow.UnixMilli(), stamped.CachedAt)
	assert.Zero(t, in.CachedAt, "input must not be modified")
	assert.Equal(t, TTL, b.ttls[Key(in.URL)])

	got, hit := s.Get(ctx, in.URL)
	require.True(t, hit)
	assert.Equal(t, stamped, got)
}

func TestStore_GetMiss(t *testing.T) {
	s := newTestStore(newMemBackend())
	_, hit := s.Get(context.Background(), "https://nothing.example")
	assert.False(t, hit)
}

func TestStore_GetPreDecodedValue(t *testing.T) {
	b := newMemBackend()
	b.data[Key("u")] = map[string]any{
		"url":             "u",
		"title":           "t",
		"headings":        map[string]any{"h1": "a", "h2": "b"},
		"metaDescription": "",
		"content":         "t a b",
		"error":           nil,
		"cachedAt":        float64(42),
	}
	s := newTestStore(b)

	got, hit := s.Get(context.Background(), "u")
	require.True(t, hit)
	assert.Equal(t, "t a b", got.Content)
	assert.Equal(t, "a", got.Headings.H1)
	assert.Equal(t, int64(42), got.CachedAt)
	assert.Nil(t, got.Error)
}

func TestStore_GetCorruptedPayloadEvicts(t *testing.T) {
	b := newMemBackend()
	s := newTestStore(b)
	ctx := context.Background()

	stamped, ok := s.Put(ctx, "u", sampleContent("u"))
	require.True(t, ok)
	payload, err := Encode(stamped)
	require.NoError(t, err)

	// Truncated JSON.
	b.data[Key("u")] = string(payload[:len(payload)/2])

	_, hit := s.Get(ctx, "u")
	assert.False(t, hit)
	assert.Contains(t, b.deleted, Key("u"))
	_, present := b.data[Key("u")]
	assert.False(t, present)
}

func TestStore_GetInvalidShapeEvicts(t *testing.T) {
	cases := map[string]any{
		"not an object":      `"just a string"`,
		"missing headings":   `{"url":"u","title":"","metaDescription":"","content":"","error":null}`,
		"headings not obj":   `{"url":"u","title":"","headings":"x","metaDescription":"","content":"","error":null}`,
		"h2 wrong type":      `{"url":"u","title":"","headings":{"h1":"","h2":3},"metaDescription":"","content":"","error":null}`,
		"error wrong type":   `{"url":"u","title":"","headings":{"h1":"","h2":""},"metaDescription":"","content":"","error":5}`,
		"error missing":      `{"url":"u","title":"","headings":{"h1":"","h2":""},"metaDescription":"","content":""}`,
		"content wrong type": `{"url":"u","title":"","headings":{"h1":"","h2":""},"metaDescription":"","content":null,"error":null}`,
		"negative cachedAt":  `{"url":"u","title":"","headings":{"h1":"","h2":""},"metaDescription":"","content":"","error":null,"cachedAt":-1}`,
		"foreign map":        map[string]any{"hello": "world"},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			b := newMemBackend()
			b.data[Key("u")] = payload
			s := newTestStore(b)

			_, hit := s.Get(context.Background(), "u")
			assert.False(t, hit)
			assert.Equal(t, []string{Key("u")}, b.deleted)
		})
	}
}

func TestStore_PutSkipsOversizedEntry(t *testing.T) {
	b := newMemBackend()
	s := newTestStore(b)

	big := sampleContent("u")
	big.Content = strings.Repeat("x", MaxEntryBytes)

	got, ok := s.Put(context.Background(), "u", big)
	assert.False(t, ok)
	assert.Zero(t, got.CachedAt)
	assert.Equal(t, big.Content, got.Content)
	assert.Zero(t, b.sets)
}

func TestStore_BackendErrorsAreAbsorbed(t *testing.T) {
	b := newMemBackend()
	b.getErr = errors.New("connection reset")
	b.setErr = errors.New("connection reset")
	s := newTestStore(b)
	ctx := context.Background()

	_, hit := s.Get(ctx, "u")
	assert.False(t, hit)

	in := sampleContent("u")
	got, ok := s.Put(ctx, "u", in)
	assert.False(t, ok)
	assert.Equal(t, in, got)
}

func TestStore_Disabled(t *testing.T) {
	s := New(nil)
	assert.False(t, s.Enabled())

	_, ok := s.Put(context.Background(), "u", sampleContent("u"))
	assert.False(t, ok)
	_, hit := s.Get(context.Background(), "u")
	assert.False(t, hit)
	assert.NoError(t, s.Close())
}

func TestStore_FailedContentRoundTrip(t *testing.T) {
	s := newTestStore(newMemBackend())
	ctx := context.Background()

	_, ok := s.Put(ctx, "u", models.NewFailedContent("u"))
	require.True(t, ok)

	got, hit := s.Get(ctx, "u")
	require.True(t, hit)
	assert.Equal(t, models.FailedToScrape, got.ErrorString())
}

func TestValidate_AcceptsEncodedContent(t *testing.T) {
	payload, err := Encode(sampleContent("u"))
	require.NoError(t, err)

	got, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, sampleContent("u"), got)
}

func TestValidate_ErrorsWrapSentinel(t *testing.T) {
	err := Validate([]any{1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}
