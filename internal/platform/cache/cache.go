// Package cache is the read-through cache for catalog reads that change only on writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

// Key families. Every committed write invalidates all of them by bumping the
// generation, so entries are stored under Versioned(family, gen).
const (
	KeyStatistics = "statistics"
	KeyCategories = "categories"
	KeyTags       = "tags"
	KeyFeatured   = "featured"
)

// Versioned is the storage key of a family at generation gen. A reader that
// loaded its row before a write stores under the old generation, which no
// later reader looks up.
func Versioned(family string, gen int64) string {
	return fmt.Sprintf("%s@%d", family, gen)
}

type Cache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// Generation must be read before the source of a value that will be Set.
	Generation(ctx context.Context) (int64, error)
	// Invalidate advances the generation, orphaning every stored entry.
	Invalidate(ctx context.Context) error
	Close() error
}

type redisCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

func NewRedisCache(log *logger.Logger, cfg RedisConfig) (Cache, *goredis.Client, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing redis addr")
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "catalog"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{
		log:    log.With("service", "RedisCache"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}, rdb, nil
}

func (c *redisCache) key(k string) string { return c.prefix + ":" + k }

// genKey has no TTL. Losing it would reset the counter and revive old entries.
func (c *redisCache) genKey() string { return c.prefix + ":gen" }

func (c *redisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A payload from an older shape is treated as a miss and dropped.
		c.log.Warn("bad cache payload", "key", key, "error", err)
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		return false, nil
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), raw, c.ttl).Err()
}

func (c *redisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}

func (c *redisCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

type noop struct{}

// NewNoop returns a cache that never hits.
func NewNoop() Cache { return noop{} }

func (noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noop) Set(context.Context, string, interface{}) error          { return nil }
func (noop) Generation(context.Context) (int64, error)                { return 0, nil }
func (noop) Invalidate(context.Context) error                        { return nil }
func (noop) Close() error                                            { return nil }

// Memory keeps JSON payloads in process. Used by tests and single-node dev runs.
type Memory struct {
	mu    sync.Mutex
	gen   int64
	items map[string][]byte
}

func NewMemory() *Memory { return &Memory{items: map[string][]byte{}} }

func (m *Memory) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	m.mu.Lock()
	raw, ok := m.items[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *Memory) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Generation(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

// Invalidate also drops the orphaned entries since nothing expires them here.
func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	m.gen++
	m.items = map[string][]byte{}
	m.mu.Unlock()
	return nil
}

// Has reports whether family is cached at the current generation.
func (m *Memory) Has(family string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[Versioned(family, m.gen)]
	return ok
}

func (m *Memory) Close() error { return nil }
