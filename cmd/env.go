package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/config"
	"github.com/sells-group/lead-ingest/internal/fetcher"
	"github.com/sells-group/lead-ingest/internal/monitoring"
	"github.com/sells-group/lead-ingest/internal/notify"
	"github.com/sells-group/lead-ingest/internal/pipeline"
	"github.com/sells-group/lead-ingest/internal/store"
	"github.com/sells-group/lead-ingest/internal/validate"
	"github.com/sells-group/lead-ingest/internal/webcache"
)

// ingestEnv holds everything the ingest and serve commands need. Callers
// should defer env.Close().
type ingestEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Alerter  *monitoring.Alerter
	cache    *webcache.Cache
}

// Close releases the store and cache connections.
func (e *ingestEnv) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context, c config.StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "sqlite":
		return store.NewSQLite(c.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, c.DatabaseURL, &store.PoolConfig{
			MaxConns: c.MaxConns,
			MinConns: c.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Driver)
	}
}

// initCache connects the optional verdict cache. A cache that cannot be
// reached is logged and skipped.
func initCache(ctx context.Context, c *config.Config) *webcache.Cache {
	if c.Redis.Addr == "" {
		return nil
	}
	cache := webcache.New(webcache.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Prefix:   c.Redis.Prefix,
		TTL:      time.Duration(c.Validation.CacheTTLHours) * time.Hour,
	})
	if err := cache.Ping(ctx); err != nil {
		zap.L().Warn("website cache unavailable, continuing without it",
			zap.String("addr", c.Redis.Addr),
			zap.Error(err),
		)
		_ = cache.Close()
		return nil
	}
	return cache
}

// newWebsiteChecker builds the reachability checker with its own fetcher so
// website checks do not share the payload fetcher's limits.
func newWebsiteChecker(c *config.Config, cache *webcache.Cache) *validate.WebsiteChecker {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         c.Fetch.UserAgent,
		Timeout:           time.Duration(c.Validation.WebsiteTimeoutSecs) * time.Second,
		MaxRetries:        1,
		RequestsPerSecond: c.Fetch.RequestsPerSecond,
		MaxBodyBytes:      c.Validation.MaxBodyKB * 1024,
	})
	opts := []validate.WebsiteOption{validate.WithMinScore(c.Validation.WebsiteMinScore)}
	if cache != nil {
		opts = append(opts, validate.WithCache(cache))
	}
	return validate.NewWebsiteChecker(f, opts...)
}

func newSink(c config.NotifyConfig) notify.NotificationSink {
	if c.WebhookURL == "" {
		zap.L().Info("notify.webhook_url not set, notifications disabled")
		return notify.NopSink{}
	}
	return notify.NewWebhookSink(c.WebhookURL, time.Duration(c.TimeoutSecs)*time.Second)
}

// initEnv validates config for mode, opens and migrates the store, and
// builds the pipeline.
func initEnv(ctx context.Context, mode string) (*ingestEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	cache := initCache(ctx, cfg)
	payloads := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Fetch.MaxRetries,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
	})

	p := pipeline.New(pipeline.Deps{
		Fetcher: payloads,
		Store:   st,
		Checker: newWebsiteChecker(cfg, cache),
		Sink:    newSink(cfg.Notify),
	}, pipeline.Options{
		BatchSize:       cfg.Pipeline.BatchSize,
		BatchDelay:      cfg.Pipeline.BatchDelay(),
		RunTimeout:      cfg.Pipeline.RunTimeout(),
		SourceType:      cfg.Pipeline.SourceType,
		ClientID:        cfg.Notify.ClientID,
		NotifyBatchSize: cfg.Notify.BatchSize,
	})

	return &ingestEnv{
		Store:    st,
		Pipeline: p,
		Alerter:  monitoring.NewAlerter(cfg.Monitoring),
		cache:    cache,
	}, nil
}
