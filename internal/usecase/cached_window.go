package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"VoltWatch/internal/domain/models"
	domrepo "VoltWatch/internal/domain/repository"
	pkgcache "VoltWatch/pkg/cache"
	applogger "VoltWatch/pkg/logger"
)

const windowKeyPrefix = "window"

// CachedWindowFetcher memoizes successful window fetches per collection.
// A per-collection mutex guarantees at most one in-flight source query
// per collection; concurrent callers wait and reuse the fresh memo.
type CachedWindowFetcher struct {
	fetcher *WindowFetcher
	cache   pkgcache.Service
	metrics domrepo.Metrics
	ttl     time.Duration
	l       *applogger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCachedWindowFetcher(fetcher *WindowFetcher, cache pkgcache.Service, metrics domrepo.Metrics, ttl time.Duration, l *applogger.Logger) *CachedWindowFetcher {
	return &CachedWindowFetcher{
		fetcher: fetcher,
		cache:   cache,
		metrics: metrics,
		ttl:     ttl,
		l:       l,
		locks:   make(map[string]*sync.Mutex),
	}
}

// FetchWindow returns the memoized window when fresh, otherwise queries
// the source and stores the result. Fetch errors are never cached.
func (c *CachedWindowFetcher) FetchWindow(ctx context.Context, collection string) (models.ReadingWindow, error) {
	key := pkgcache.GenerateKey(windowKeyPrefix, collection)

	var w models.ReadingWindow
	if ok := c.lookup(ctx, key, &w); ok {
		c.metrics.RecordCacheLookup(collection, true)
		return w, nil
	}

	lock := c.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have filled the memo while we waited.
	if ok := c.lookup(ctx, key, &w); ok {
		c.metrics.RecordCacheLookup(collection, true)
		return w, nil
	}
	c.metrics.RecordCacheLookup(collection, false)

	w, err := c.fetcher.FetchWindow(ctx, collection)
	if err != nil {
		return models.ReadingWindow{}, err
	}

	if err := c.cache.Set(ctx, key, w, c.ttl); err != nil && c.l != nil {
		c.l.Warn("window memo store failed",
			applogger.String("collection", collection),
			applogger.Error(err),
		)
	}
	return w, nil
}

// Invalidate drops all memoized windows; the next fetch re-queries the
// source regardless of memo age.
func (c *CachedWindowFetcher) Invalidate(ctx context.Context) error {
	return c.cache.DeleteByPattern(ctx, pkgcache.BuildPattern(windowKeyPrefix+":"))
}

func (c *CachedWindowFetcher) lookup(ctx context.Context, key string, dest *models.ReadingWindow) bool {
	err := c.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) && c.l != nil {
		c.l.Warn("window memo lookup failed", applogger.Error(err))
	}
	return false
}

func (c *CachedWindowFetcher) lockFor(collection string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[collection] = lock
	}
	return lock
}
