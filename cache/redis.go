package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// upstashRedisPort is the TLS Redis port exposed next to an Upstash REST
// endpoint.
const upstashRedisPort = "6379"

// RedisBackend is a Backend over a Redis-compatible service. The client is
// long-lived and safe for concurrent use.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to endpoint using token as the password.
//
// endpoint may be a redis:// or rediss:// URL, or an https:// REST URL of the
// kind Upstash issues, which is mapped to rediss://<host>:6379. The
// connection is established lazily by the client on first use.
func NewRedisBackend(endpoint, token string) (*RedisBackend, error) {
	opts, err := redisOptions(endpoint, token)
	if err != nil {
		return nil, err
	}
	return &RedisBackend{client: redis.NewClient(opts)}, nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func redisOptions(endpoint, token string) (*redis.Options, error) {
	if endpoint == "" {
		return nil, errors.New("cache: empty endpoint")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("cache: parse endpoint: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		// REST endpoint: same host, TLS Redis port.
		endpoint = "rediss://default@" + u.Hostname() + ":" + upstashRedisPort
	case "redis", "rediss":
	default:
		return nil, fmt.Errorf("cache: unsupported endpoint scheme %q", u.Scheme)
	}

	opts, err := redis.ParseURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("cache: parse endpoint: %w", err)
	}
	if token != "" {
		opts.Password = token
	}
	return opts, nil
}

// Ping checks connectivity.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Get(ctx context.Context, key string) (any, error) {
	val, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBackend) Del(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
