package store

import (
	"context"
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dshills/inkwell/internal/logging"
)

const (
	// DefaultExpiration is how long a loaded snapshot stays cached.
	DefaultExpiration = 10 * time.Minute
	// DefaultCleanupInterval is how often expired entries are purged.
	DefaultCleanupInterval = 30 * time.Minute
)

// CachedStore is a read-through cache in front of another store. Saves and
// deletes go through to the backing store first. Close stops the purge
// loop.
type CachedStore struct {
	next  DocumentStore
	cache *gocache.Cache
	log   *logging.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewCachedStore wraps next. Non-positive durations take the defaults.
func NewCachedStore(next DocumentStore, expiration, cleanup time.Duration, log *logging.Logger) *CachedStore {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	c := &CachedStore{
		next: next,
		// go-cache's own janitor cannot be stopped, so purging runs here.
		cache: gocache.New(expiration, 0),
		log:   logging.OrNop(log).WithComponent("store.cache"),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go c.purge(cleanup)
	return c
}

func (c *CachedStore) purge(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cache.DeleteExpired()
		case <-c.stop:
			return
		}
	}
}

// Close stops purging expired entries and empties the cache. The store
// keeps reading through afterwards. Close is safe to call more than once.
func (c *CachedStore) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
		<-c.done
		c.cache.Flush()
	})
}

// Save implements DocumentStore.
func (c *CachedStore) Save(ctx context.Context, s Snapshot) error {
	if err := c.next.Save(ctx, s); err != nil {
		c.cache.Delete(s.ID)
		return err
	}
	c.cache.SetDefault(s.ID, s.clone())
	return nil
}

// Load implements DocumentStore.
func (c *CachedStore) Load(ctx context.Context, id string) (Snapshot, error) {
	if v, ok := c.cache.Get(id); ok {
		if s, ok := v.(Snapshot); ok {
			c.log.Debug("cache hit %s", id)
			return s.clone(), nil
		}
		c.log.Error("wrong type cached for %s", id)
	}
	s, err := c.next.Load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	c.cache.SetDefault(id, s.clone())
	return s, nil
}

// Delete implements DocumentStore.
func (c *CachedStore) Delete(ctx context.Context, id string) error {
	c.cache.Delete(id)
	err := c.next.Delete(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		c.log.WithError(err).Warn("delete %s failed", id)
	}
	return err
}

// List implements DocumentStore. It always asks the backing store.
func (c *CachedStore) List(ctx context.Context) ([]string, error) {
	return c.next.List(ctx)
}

// Flush empties the cache.
func (c *CachedStore) Flush() {
	c.cache.Flush()
}
