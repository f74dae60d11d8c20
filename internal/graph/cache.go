package graph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Cache holds the current Snapshot behind an atomic pointer. Readers always
// get a complete, immutable view; writers (the watcher, or anything that
// knows the store changed) only mark the cache stale. The next query that
// calls EnsureFresh rebuilds the snapshot synchronously before executing,
// so search never runs against a view it knows to be out of date.
type Cache struct {
	store *Store

	current atomic.Pointer[Snapshot]
	stale   atomic.Bool

	reloadMu sync.Mutex
	onReload func()

	// loadHook, when set, runs between clearing the stale flag and the
	// store load. Tests use it to interleave staleness signals with a
	// rebuild in flight.
	loadHook func()
}

// NewCache builds the initial snapshot and returns a ready cache.
// onReload, if non-nil, is invoked after every successful rebuild.
func NewCache(store *Store, onReload func()) (*Cache, error) {
	c := &Cache{store: store, onReload: onReload}
	snap, err := store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("graph: initial load: %w", err)
	}
	c.current.Store(snap)
	return c, nil
}

// Snapshot returns the current snapshot without freshness checks. Use
// EnsureFresh on query paths that must not observe a stale view.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// MarkStale flags the snapshot as out of date. Cheap and safe to call from
// any goroutine.
func (c *Cache) MarkStale() {
	c.stale.Store(true)
}

// Stale reports whether a rebuild is pending.
func (c *Cache) Stale() bool {
	return c.stale.Load()
}

// EnsureFresh returns a snapshot that reflects all changes signalled before
// the call. When the cache is stale the rebuild happens synchronously under
// a mutex; concurrent callers wait for one rebuild rather than racing.
func (c *Cache) EnsureFresh(ctx context.Context) (*Snapshot, error) {
	if !c.stale.Load() {
		return c.current.Load(), nil
	}

	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Another caller may have rebuilt while we waited for the lock.
	if !c.stale.Load() {
		return c.current.Load(), nil
	}

	// Clear the flag before loading: a signal that arrives while the load
	// is in flight must leave the cache marked stale for the next caller,
	// since the snapshot being built may predate the write behind it.
	c.stale.Store(false)
	if c.loadHook != nil {
		c.loadHook()
	}
	snap, err := c.store.LoadSnapshot()
	if err != nil {
		c.stale.Store(true)
		return nil, fmt.Errorf("graph: reload: %w", err)
	}
	c.current.Store(snap)
	if c.onReload != nil {
		c.onReload()
	}
	return snap, nil
}
