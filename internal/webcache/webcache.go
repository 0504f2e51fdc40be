// Package webcache caches website verdicts in Redis so repeated runs do not
// re-score the same domain.
package webcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/model"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // default "leadingest:"
	TTL      time.Duration // default 24h
}

// Cache stores WebsiteCheck values keyed by normalized domain.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a Cache. The connection is established lazily.
func New(opts Options) *Cache {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "leadingest:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *Cache) key(domain string) string {
	return c.prefix + "website:" + domain
}

// Get returns the cached verdict for domain, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, domain string) (*model.WebsiteCheck, error) {
	data, err := c.client.Get(ctx, c.key(domain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "webcache: get %s", domain)
	}
	var check model.WebsiteCheck
	if err := json.Unmarshal(data, &check); err != nil {
		return nil, eris.Wrapf(err, "webcache: decode %s", domain)
	}
	return &check, nil
}

// Set stores the verdict for domain with the configured TTL.
func (c *Cache) Set(ctx context.Context, domain string, check *model.WebsiteCheck) error {
	data, err := json.Marshal(check)
	if err != nil {
		return eris.Wrap(err, "webcache: encode")
	}
	return eris.Wrapf(c.client.Set(ctx, c.key(domain), data, c.ttl).Err(), "webcache: set %s", domain)
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return eris.Wrap(c.client.Ping(ctx).Err(), "webcache: ping")
}

// Close releases the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
