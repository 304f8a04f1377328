////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package query

import (
	"context"
	"fmt"
	"time"

	"github.com/caffeinepub/vibechat/stoppable"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// ErrDisabled is returned when reading a query whose Enabled option is false.
// No fetch is made.
var ErrDisabled = errors.New("query is disabled")

// unmountTimeout bounds how long Unmount waits for the poll goroutine to exit.
const unmountTimeout = 5 * time.Second

// Fetcher loads the value of a query from the backend.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Options configures a Query.
type Options struct {
	// Enabled gates fetching. A nil Enabled is always enabled.
	Enabled func() bool

	// DependsOn names the inputs the query depends on. Cache.Revalidate with
	// any of them refetches the query while it is mounted.
	DependsOn []string

	// RefetchInterval, when positive, refetches a mounted query after every
	// interval until it is unmounted.
	RefetchInterval time.Duration
}

// State is what a view renders for a query.
type State[T any] struct {
	Data    T
	HasData bool

	// Loading is true while the first fetch is in flight and nothing is
	// cached yet.
	Loading bool

	// Fetching is true while any fetch is in flight.
	Fetching bool

	Err     error
	IsError bool

	UpdatedAt time.Time
}

// Query is a typed, cached request.
type Query[T any] struct {
	cache *Cache
	key   Key
	fetch Fetcher[T]
	opts  Options
}

// New returns a query for the key on the cache.
func New[T any](cache *Cache, key Key, fetch Fetcher[T], opts Options) *Query[T] {
	return &Query[T]{
		cache: cache,
		key:   key,
		fetch: fetch,
		opts:  opts,
	}
}

// Key returns the cache key of the query.
func (q *Query[T]) Key() Key {
	return q.key
}

// Enabled reports whether the query may fetch.
func (q *Query[T]) Enabled() bool {
	return q.opts.Enabled == nil || q.opts.Enabled()
}

// State returns the cached state of the query without fetching.
func (q *Query[T]) State() State[T] {
	snap := q.cache.Get(q.key)

	s := State[T]{
		HasData:   snap.HasData,
		Loading:   snap.Fetching && !snap.HasData,
		Fetching:  snap.Fetching,
		Err:       snap.Err,
		IsError:   snap.Err != nil,
		UpdatedAt: snap.UpdatedAt,
	}
	if snap.HasData {
		if v, ok := snap.Value.(T); ok {
			s.Data = v
		}
	}
	return s
}

// Read returns the cached value when it is still fresh, and fetches it
// otherwise.
func (q *Query[T]) Read(ctx context.Context) (T, error) {
	if !q.Enabled() {
		var zero T
		return zero, ErrDisabled
	}
	if v, ok := q.cache.fresh(q.key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	return q.Refetch(ctx)
}

// Refetch fetches the value regardless of what is cached. A failed fetch is
// recorded and returned, never retried.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	var zero T
	if !q.Enabled() {
		return zero, ErrDisabled
	}

	v, err := q.cache.Fetch(ctx, q.key,
		func(ctx context.Context) (interface{}, error) {
			return q.fetch(ctx)
		})
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok && v != nil {
		return zero, errors.Errorf("query %s: cached value is %T, not %T",
			q.key, v, zero)
	}
	return typed, nil
}

// Observer is a mounted query. It keeps the query fresh until Unmount.
type Observer[T any] struct {
	query   *Query[T]
	id      uint64
	stop    *stoppable.Single
	cancel  context.CancelFunc
	refetch chan struct{}
}

// Mount fetches the query in the background, registers it so that
// invalidation and revalidation refetch it, and starts polling when
// RefetchInterval is set. Fetches stop once Unmount returns.
func (q *Query[T]) Mount(ctx context.Context) *Observer[T] {
	ctx, cancel := context.WithCancel(ctx)
	o := &Observer[T]{
		query:   q,
		cancel:  cancel,
		refetch: make(chan struct{}, 1),
	}

	o.id = q.cache.mount(&mounted{
		key:       q.key,
		dependsOn: q.opts.DependsOn,
		kick:      o.kick,
	})

	o.stop = stoppable.Go(fmt.Sprintf("Query(%s)", q.key),
		func(quit <-chan struct{}) { o.run(ctx, quit) })
	jww.DEBUG.Printf("[QUERY] Mounted %s", o.stop.Name())
	return o
}

// State returns the cached state of the observed query.
func (o *Observer[T]) State() State[T] {
	return o.query.State()
}

// Unmount stops the observer. No fetch starts after it returns.
func (o *Observer[T]) Unmount() {
	o.query.cache.unmount(o.id)
	if err := o.stop.Close(); err != nil {
		jww.WARN.Printf("[QUERY] %s: %+v", o.stop.Name(), err)
	}
	o.cancel()
	if !o.stop.Wait(unmountTimeout) {
		jww.ERROR.Printf("[QUERY] %s did not stop within %s",
			o.stop.Name(), unmountTimeout)
		return
	}
	jww.DEBUG.Printf("[QUERY] Unmounted %s", o.stop.Name())
}

// kick requests a refetch without blocking. Requests made while one is
// already queued are merged.
func (o *Observer[T]) kick() {
	select {
	case o.refetch <- struct{}{}:
	default:
	}
}

// run fetches at mount and then on every refetch request or interval tick
// until the observer stops.
func (o *Observer[T]) run(ctx context.Context, quit <-chan struct{}) {
	var tick <-chan time.Time
	if o.query.opts.RefetchInterval > 0 {
		ticker := time.NewTicker(o.query.opts.RefetchInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	o.fetch(ctx, quit)
	for {
		select {
		case <-quit:
			return
		case <-tick:
			o.fetch(ctx, quit)
		case <-o.refetch:
			o.fetch(ctx, quit)
		}
	}
}

func (o *Observer[T]) fetch(ctx context.Context, quit <-chan struct{}) {
	// A stop request may race with a tick; stop wins.
	select {
	case <-quit:
		return
	default:
	}

	if !o.query.Enabled() {
		return
	}
	if _, err := o.query.Refetch(ctx); err != nil &&
		!errors.Is(err, context.Canceled) {
		jww.DEBUG.Printf("[QUERY] %s fetch failed: %+v", o.query.key, err)
	}
}
