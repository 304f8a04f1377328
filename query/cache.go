////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package query caches the results of backend requests by key. Concurrent
// fetches of one key share a single call, observers are told about every
// completed fetch, and mounted queries refetch when invalidated, when an input
// they depend on changes, or on a fixed interval. Failed fetches are recorded
// and never retried.
package query

import (
	"context"
	"sync"
	"time"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/netTime"
	"golang.org/x/sync/singleflight"
)

// Params configures a Cache.
type Params struct {
	// StaleTime is how long a successful result is served by Read without
	// fetching again. Zero makes every Read fetch.
	StaleTime time.Duration
}

// DefaultParams returns the default cache parameters.
func DefaultParams() Params {
	return Params{StaleTime: 0}
}

// Listener is called after a fetch of the key completes and after the key is
// invalidated.
type Listener func(key Key)

// Snapshot is the cached state of one key.
type Snapshot struct {
	Value       interface{}
	HasData     bool
	Err         error
	Fetching    bool
	Invalidated bool
	UpdatedAt   time.Time
}

type entry struct {
	value       interface{}
	hasData     bool
	err         error
	updatedAt   time.Time
	invalidated bool
	fetching    int
}

// mounted is a query mounted by an Observer.
type mounted struct {
	key       Key
	dependsOn []string
	kick      func()
}

// Cache holds the last result of every key. It is safe for concurrent use.
type Cache struct {
	params Params

	entries   map[Key]*entry
	listeners map[Key]map[uint64]Listener
	mounted   map[uint64]*mounted
	nextID    uint64

	group singleflight.Group
	mux   sync.Mutex
}

// NewCache returns an empty Cache.
func NewCache(params Params) *Cache {
	return &Cache{
		params:    params,
		entries:   make(map[Key]*entry),
		listeners: make(map[Key]map[uint64]Listener),
		mounted:   make(map[uint64]*mounted),
	}
}

// Get returns the cached state of the key.
func (c *Cache) Get(key Key) Snapshot {
	c.mux.Lock()
	defer c.mux.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Value:       e.value,
		HasData:     e.hasData,
		Err:         e.err,
		Fetching:    e.fetching > 0,
		Invalidated: e.invalidated,
		UpdatedAt:   e.updatedAt,
	}
}

// fresh returns the cached value if it may be served without fetching.
func (c *Cache) fresh(key Key) (interface{}, bool) {
	c.mux.Lock()
	defer c.mux.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.hasData || e.invalidated || c.params.StaleTime <= 0 {
		return nil, false
	}
	if netTime.Now().Sub(e.updatedAt) >= c.params.StaleTime {
		return nil, false
	}
	return e.value, true
}

// Fetch calls fn and stores its result under the key. Callers fetching the
// same key at the same time share one call of fn and receive its result. The
// shared call runs with the context of the caller that started it.
func (c *Cache) Fetch(ctx context.Context, key Key,
	fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	leader := false
	v, err, shared := c.group.Do(key.String(), func() (interface{}, error) {
		leader = true
		c.startFetch(key)
		value, err := fn(ctx)
		c.finishFetch(key, value, err)
		return value, err
	})

	// Listeners may fetch again, so they run after the call is released
	if leader {
		c.notify(key)
	} else if shared {
		jww.TRACE.Printf("[QUERY] Fetch of %s shared with an in-flight call",
			key)
	}
	return v, err
}

func (c *Cache) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) startFetch(key Key) {
	c.mux.Lock()
	c.entry(key).fetching++
	c.mux.Unlock()
}

func (c *Cache) finishFetch(key Key, value interface{}, err error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	e := c.entry(key)
	e.fetching--
	e.err = err
	if err != nil {
		jww.DEBUG.Printf("[QUERY] Fetch of %s failed: %+v", key, err)
		return
	}
	e.value = value
	e.hasData = true
	e.invalidated = false
	e.updatedAt = netTime.Now()
}

// Subscribe registers the listener for the key and returns a function that
// removes it.
func (c *Cache) Subscribe(key Key, l Listener) (unsubscribe func()) {
	c.mux.Lock()
	defer c.mux.Unlock()

	id := c.nextID
	c.nextID++
	if c.listeners[key] == nil {
		c.listeners[key] = make(map[uint64]Listener)
	}
	c.listeners[key][id] = l

	return func() {
		c.mux.Lock()
		defer c.mux.Unlock()
		delete(c.listeners[key], id)
		if len(c.listeners[key]) == 0 {
			delete(c.listeners, key)
		}
	}
}

// notify calls every listener of the key. Listeners run on the calling
// goroutine, outside the cache lock.
func (c *Cache) notify(key Key) {
	c.mux.Lock()
	ls := make([]Listener, 0, len(c.listeners[key]))
	for _, l := range c.listeners[key] {
		ls = append(ls, l)
	}
	c.mux.Unlock()

	for _, l := range ls {
		l(key)
	}
}

// Invalidate marks the keys stale so the next Read fetches them, and asks
// every mounted query on those keys to refetch.
func (c *Cache) Invalidate(keys ...Key) {
	for _, key := range keys {
		c.mux.Lock()
		if e, ok := c.entries[key]; ok {
			e.invalidated = true
		}
		kicks := c.mountedWhere(func(m *mounted) bool { return m.key == key })
		c.mux.Unlock()

		jww.DEBUG.Printf("[QUERY] Invalidated %s, refetching %d mounted "+
			"queries", key, len(kicks))
		for _, kick := range kicks {
			kick()
		}
		c.notify(key)
	}
}

// InvalidateOp invalidates every cached key whose first segment is op.
func (c *Cache) InvalidateOp(op string) {
	c.mux.Lock()
	keys := make([]Key, 0)
	for key := range c.entries {
		if key.Op() == op {
			keys = append(keys, key)
		}
	}
	c.mux.Unlock()

	c.Invalidate(keys...)
}

// Revalidate asks every mounted query that depends on the input to refetch.
func (c *Cache) Revalidate(dependency string) {
	c.mux.Lock()
	kicks := c.mountedWhere(func(m *mounted) bool {
		for _, d := range m.dependsOn {
			if d == dependency {
				return true
			}
		}
		return false
	})
	c.mux.Unlock()

	jww.DEBUG.Printf("[QUERY] %s changed, refetching %d mounted queries",
		dependency, len(kicks))
	for _, kick := range kicks {
		kick()
	}
}

// mountedWhere returns the refetch triggers of the matching mounted queries.
// The cache lock must be held.
func (c *Cache) mountedWhere(match func(m *mounted) bool) []func() {
	kicks := make([]func(), 0)
	for _, m := range c.mounted {
		if match(m) {
			kicks = append(kicks, m.kick)
		}
	}
	return kicks
}

func (c *Cache) mount(m *mounted) uint64 {
	c.mux.Lock()
	defer c.mux.Unlock()
	id := c.nextID
	c.nextID++
	c.mounted[id] = m
	return id
}

func (c *Cache) unmount(id uint64) {
	c.mux.Lock()
	defer c.mux.Unlock()
	delete(c.mounted, id)
}
