package scenario

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/pkg/logger"
)

// Key identifies one cached scenario matrix: (slate_id, n_scenarios[,
// spec_hash]) per spec.md §4.4.2.
type Key struct {
	SlateID    string
	NScenarios int
	SpecHash   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%d|%s", k.SlateID, k.NScenarios, k.SpecHash)
}

type entry struct {
	matrix  *Matrix
	idx     DriverIndexMap
	expires time.Time
	pinned  int
	elem    *list.Element
}

// Cache is a read-mostly shared map of scenario matrices. Concurrent
// readers are lock-free after publication in the sense that Get never
// blocks on another goroutine's Sample call except through the
// singleflight group for the exact same key (spec.md §5). Writes are
// serialized; eviction is LRU with a configurable entry budget and pinned
// entries for in-flight requests.
type Cache struct {
	mu         sync.Mutex
	entries    map[Key]*entry
	order      *list.List // front = most recently used
	maxEntries int
	ttl        time.Duration
	group      singleflight.Group
}

// NewCache builds an empty scenario cache.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 32
	}
	return &Cache{
		entries:    make(map[Key]*entry),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// GetOrCreate returns the cached matrix for key, populating it via sample
// on miss. Concurrent callers for the same key are coalesced into exactly
// one sample call (spec.md §5, §4.4.2's "exactly once" guarantee). The
// returned entry is not pinned; callers that need it kept from eviction
// call Pin and later Release.
func (c *Cache) GetOrCreate(ctx context.Context, key Key, sample func(ctx context.Context) (*Matrix, DriverIndexMap, error)) (*Matrix, DriverIndexMap, error) {
	if m, idx, ok := c.get(key); ok {
		return m, idx, nil
	}

	type result struct {
		m   *Matrix
		idx DriverIndexMap
	}
	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		// Re-check under the singleflight guard: another goroutine may have
		// populated the entry while we were waiting to be scheduled.
		if m, idx, ok := c.get(key); ok {
			return result{m, idx}, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, idx, err := sample(ctx)
		if err != nil {
			return nil, err
		}
		c.put(key, m, idx)
		return result{m, idx}, nil
	})
	if err != nil {
		return nil, DriverIndexMap{}, err
	}
	r := v.(result)
	return r.m, r.idx, nil
}

func (c *Cache) get(key Key) (*Matrix, DriverIndexMap, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, DriverIndexMap{}, false
	}
	if c.ttl > 0 && time.Now().After(e.expires) {
		return nil, DriverIndexMap{}, false
	}
	c.order.MoveToFront(e.elem)
	return e.matrix, e.idx, true
}

func (c *Cache) put(key Key, m *Matrix, idx DriverIndexMap) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.order.Remove(old.elem)
	}
	e := &entry{matrix: m, idx: idx, expires: time.Now().Add(c.ttl)}
	e.elem = c.order.PushFront(key)
	c.entries[key] = e

	c.evictLocked()
}

func (c *Cache) evictLocked() {
	for len(c.entries) > c.maxEntries {
		back := c.order.Back()
		if back == nil {
			return
		}
		key := back.Value.(Key)
		e := c.entries[key]
		if e.pinned > 0 {
			// Pinned entries (in-flight requests) are never evicted; move on
			// to the next LRU candidate instead of spinning.
			prev := back.Prev()
			if prev == nil {
				return
			}
			key = prev.Value.(Key)
			e = c.entries[key]
			if e.pinned > 0 {
				return
			}
		}
		c.order.Remove(e.elem)
		delete(c.entries, key)
		logger.WithComponent("scenario-cache").WithField("key", key.String()).Debug("evicted scenario matrix")
	}
}

// Pin marks key's entry as in-flight, preventing eviction until Release.
func (c *Cache) Pin(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.pinned++
	}
}

// Release undoes one Pin call.
func (c *Cache) Release(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.pinned > 0 {
		e.pinned--
	}
}

// Len reports the current number of cached entries (test/metrics use).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
