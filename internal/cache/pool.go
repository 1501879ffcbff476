// Package cache keeps the active job pool between matching requests.
//
// The pool is cached in two tiers: L1 in process memory and, when a Redis URL
// is configured, L2 in Redis so that restarts and sibling replicas can reuse
// it. Entries are keyed by the store's pool version, so any job write makes
// the cached pool unreachable.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/models"
)

// Source is the uncached job store.
type Source interface {
	ActiveJobs(ctx context.Context) ([]models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	PoolVersion(ctx context.Context) (string, error)
}

// Options tune a PoolCache.
type Options struct {
	TTL      time.Duration
	RedisURL string        // empty disables L2
	Redis    *redis.Client // takes precedence over RedisURL
	Logger   *logger.Logger
}

// Stats are the cache counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Redis  bool  `json:"redis"`
}

// PoolCache decorates a Source with a TTL-bound cache of ActiveJobs.
type PoolCache struct {
	src Source
	rdb *redis.Client // nil if Redis unavailable
	ttl time.Duration
	log *logger.Logger
	now func() time.Time

	mu     sync.Mutex
	entry  *poolEntry
	l2Key  string
	hits   atomic.Int64
	misses atomic.Int64
}

type poolEntry struct {
	version   string
	jobs      []models.Job
	expiresAt time.Time
}

// New creates a pool cache in front of src. An unreachable Redis disables
// L2 with a warning rather than failing.
func New(src Source, opts Options) *PoolCache {
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	c := &PoolCache{
		src: src,
		ttl: opts.TTL,
		log: opts.Logger.WithComponent("cache"),
		now: time.Now,
		rdb: opts.Redis,
	}
	if c.rdb == nil && opts.RedisURL != "" {
		c.rdb = connect(opts.RedisURL, c.log)
	}
	c.log.Info("pool cache initialized", "ttl", c.ttl.String(), "redis", c.rdb != nil)
	return c
}

func connect(url string, log *logger.Logger) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("invalid redis URL, L2 disabled", "error", err)
		return nil
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, L2 disabled", "error", err)
		rdb.Close()
		return nil
	}
	log.Info("L2 redis connected", "addr", opts.Addr)
	return rdb
}

// poolKey builds the Redis key of a pool version.
func poolKey(version string) string {
	hash := sha256.Sum256([]byte(version))
	return fmt.Sprintf("agentjobs:pool:%x", hash[:12])
}

// ActiveJobs returns the active job pool, from cache when the stored pool
// version is unchanged and the entry has not expired.
func (c *PoolCache) ActiveJobs(ctx context.Context) ([]models.Job, error) {
	version, err := c.src.PoolVersion(ctx)
	if err != nil {
		c.log.Warn("pool version unavailable, bypassing cache", "error", err)
		c.misses.Add(1)
		return c.src.ActiveJobs(ctx)
	}

	// L1
	c.mu.Lock()
	if e := c.entry; e != nil && e.version == version && c.now().Before(e.expiresAt) {
		jobs := append([]models.Job(nil), e.jobs...)
		c.mu.Unlock()
		c.hits.Add(1)
		return jobs, nil
	}
	c.mu.Unlock()

	// L2
	key := poolKey(version)
	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var jobs []models.Job
			if json.Unmarshal(data, &jobs) == nil {
				c.hits.Add(1)
				c.store(version, key, jobs)
				return append([]models.Job(nil), jobs...), nil
			}
		} else if err != redis.Nil {
			c.log.Debug("L2 get failed", "error", err)
		}
	}

	c.misses.Add(1)
	jobs, err := c.src.ActiveJobs(ctx)
	if err != nil {
		return nil, err
	}
	c.store(version, key, jobs)

	if c.rdb != nil {
		if data, err := json.Marshal(jobs); err == nil {
			if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.log.Debug("L2 set failed", "error", err)
			}
		}
	}
	return append([]models.Job(nil), jobs...), nil
}

func (c *PoolCache) store(version, key string, jobs []models.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &poolEntry{version: version, jobs: jobs, expiresAt: c.now().Add(c.ttl)}
	c.l2Key = key
}

// GetJob is never cached.
func (c *PoolCache) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return c.src.GetJob(ctx, id)
}

// PoolVersion passes through to the source.
func (c *PoolCache) PoolVersion(ctx context.Context) (string, error) {
	return c.src.PoolVersion(ctx)
}

// Invalidate drops the cached pool from both tiers.
func (c *PoolCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	key := c.l2Key
	c.entry = nil
	c.l2Key = ""
	c.mu.Unlock()

	if c.rdb != nil && key != "" {
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			c.log.Debug("L2 delete failed", "error", err)
		}
	}
}

// Stats returns the hit and miss counters.
func (c *PoolCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Redis: c.rdb != nil}
}

// Close releases the Redis connection, if any.
func (c *PoolCache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
