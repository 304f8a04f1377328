////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package query

import (
	"context"
	"sync/atomic"

	"github.com/caffeinepub/vibechat/userError"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// ErrPending is returned by Mutation.Do while a previous call is in flight.
var ErrPending = errors.New("a previous request is still pending")

// MutateFunc performs a write against the backend.
type MutateFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// MutationOptions configures a Mutation.
type MutationOptions[In, Out any] struct {
	// Name identifies the mutation in logs.
	Name string

	// Invalidates returns the keys made stale by a successful call.
	Invalidates func(in In, out Out) []Key

	// Messages remaps failures to user-facing errors.
	Messages userError.Messages
}

// Mutation is a write that invalidates cached keys on success. The cache is
// never updated with the result directly; readers see the change on their
// next fetch.
type Mutation[In, Out any] struct {
	cache   *Cache
	mutate  MutateFunc[In, Out]
	opts    MutationOptions[In, Out]
	pending uint32
}

// NewMutation returns a mutation on the cache.
func NewMutation[In, Out any](cache *Cache, mutate MutateFunc[In, Out],
	opts MutationOptions[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{
		cache:  cache,
		mutate: mutate,
		opts:   opts,
	}
}

// Pending reports whether a call is in flight.
func (m *Mutation[In, Out]) Pending() bool {
	return atomic.LoadUint32(&m.pending) == 1
}

// Do performs the mutation. Only one call runs at a time; a call made while
// another is pending returns ErrPending without touching the backend. Errors
// from the backend are returned remapped to user-facing messages.
func (m *Mutation[In, Out]) Do(ctx context.Context, in In) (Out, error) {
	var zero Out
	if !atomic.CompareAndSwapUint32(&m.pending, 0, 1) {
		return zero, ErrPending
	}
	defer atomic.StoreUint32(&m.pending, 0)

	out, err := m.mutate(ctx, in)
	if err != nil {
		jww.WARN.Printf("[QUERY] Mutation %s failed: %+v", m.opts.Name, err)
		return zero, m.opts.Messages.Remap(err)
	}

	if m.opts.Invalidates != nil {
		m.cache.Invalidate(m.opts.Invalidates(in, out)...)
	}
	jww.DEBUG.Printf("[QUERY] Mutation %s succeeded", m.opts.Name)
	return out, nil
}
