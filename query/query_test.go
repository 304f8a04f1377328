////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package query

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// counter is a fetcher that counts its calls and returns the count.
type counter struct {
	calls int32
	err   error
	gate  chan struct{}
}

func (c *counter) fetch(ctx context.Context) (int, error) {
	n := atomic.AddInt32(&c.calls, 1)
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if c.err != nil {
		return 0, c.err
	}
	return int(n), nil
}

func (c *counter) count() int {
	return int(atomic.LoadInt32(&c.calls))
}

// Tests that NewKey joins and escapes parameters.
func TestNewKey(t *testing.T) {
	require.Equal(t, "getUserConversations", UserConversationsKey().String())
	require.Equal(t, "getMessages/abc", MessagesKey("abc").String())
	require.Equal(t, "getUserProfile/a%2Fb", UserProfileKey("a/b").String())
	require.Equal(t, OpMessages, MessagesKey("abc").Op())
}

// Tests that with a zero stale time every Read fetches, and that results are
// served from cache within the stale time.
func TestQuery_Read_StaleTime(t *testing.T) {
	c := &counter{}
	q := New[int](NewCache(DefaultParams()), NewKey("op"), c.fetch, Options{})

	v, err := q.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, v)
	v, err = q.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, v)

	c = &counter{}
	cache := NewCache(Params{StaleTime: time.Hour})
	q = New[int](cache, NewKey("op"), c.fetch, Options{})
	_, err = q.Read(context.Background())
	require.NoError(t, err)
	v, err = q.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.Equal(t, 1, c.count())

	cache.Invalidate(NewKey("op"))
	v, err = q.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

// Tests that a disabled query never calls its fetcher.
func TestQuery_Disabled(t *testing.T) {
	c := &counter{}
	ready := false
	q := New[int](NewCache(DefaultParams()), NewKey("op"), c.fetch, Options{
		Enabled: func() bool { return ready },
	})

	_, err := q.Read(context.Background())
	require.ErrorIs(t, err, ErrDisabled)
	require.Equal(t, 0, c.count())

	ready = true
	_, err = q.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, c.count())
}

// Tests that concurrent fetches of one key share a single call.
func TestCache_Fetch_Dedupe(t *testing.T) {
	c := &counter{gate: make(chan struct{})}
	cache := NewCache(DefaultParams())
	q := New[int](cache, NewKey("op"), c.fetch, Options{})

	const readers = 5
	var wg sync.WaitGroup
	results := make([]int, readers)
	errs := make([]error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = q.Refetch(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return c.count() == 1 },
		time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return q.State().Fetching },
		time.Second, time.Millisecond)
	require.True(t, q.State().Loading)

	// Let the readers pile up on the in-flight call before releasing it
	time.Sleep(20 * time.Millisecond)
	close(c.gate)
	wg.Wait()

	require.Equal(t, 1, c.count())
	for i, r := range results {
		require.NoError(t, errs[i])
		require.Equal(t, 1, r)
	}
	require.Equal(t, 1, q.State().Data)
	require.False(t, q.State().Loading)
}

// Tests that a failed fetch is recorded and not retried, and that the
// previous data is kept.
func TestQuery_ErrorNotRetried(t *testing.T) {
	c := &counter{}
	cache := NewCache(DefaultParams())
	q := New[int](cache, NewKey("op"), c.fetch, Options{})

	_, err := q.Refetch(context.Background())
	require.NoError(t, err)

	c.err = errors.New("Unauthorized")
	_, err = q.Refetch(context.Background())
	require.Error(t, err)
	require.Equal(t, 2, c.count())

	s := q.State()
	require.True(t, s.IsError)
	require.True(t, s.HasData)
	require.Equal(t, 1, s.Data)
}

// Tests that a mounted query fetches at mount and after every interval, and
// that no fetch happens after Unmount.
func TestQuery_Mount_Polling(t *testing.T) {
	c := &counter{}
	cache := NewCache(DefaultParams())
	q := New[int](cache, NewKey("op"), c.fetch, Options{
		RefetchInterval: 20 * time.Millisecond,
	})

	o := q.Mount(context.Background())
	require.Eventually(t, func() bool { return c.count() >= 1 },
		time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return c.count() >= 4 },
		time.Second, 5*time.Millisecond)

	o.Unmount()
	require.True(t, o.stop.IsStopped())
	require.Equal(t, `Query(op)`, o.stop.Name())
	stopped := c.count()
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, stopped, c.count())
	require.True(t, o.State().HasData)
}

// Tests that listeners are told about fetches and that invalidation and
// revalidation refetch mounted queries only.
func TestCache_InvalidateRevalidate(t *testing.T) {
	c := &counter{}
	cache := NewCache(DefaultParams())
	key := NewKey("op", "x")
	q := New[int](cache, key, c.fetch, Options{DependsOn: []string{"remote"}})

	var notified int32
	unsubscribe := cache.Subscribe(key, func(Key) {
		atomic.AddInt32(&notified, 1)
	})
	defer unsubscribe()

	// Not mounted: invalidation only marks the key
	_, err := q.Refetch(context.Background())
	require.NoError(t, err)
	cache.Invalidate(key)
	require.Equal(t, 1, c.count())
	require.True(t, cache.Get(key).Invalidated)

	o := q.Mount(context.Background())
	require.Eventually(t, func() bool {
		return c.count() == 2 && !cache.Get(key).Invalidated
	}, time.Second, time.Millisecond)

	cache.Invalidate(key)
	require.Eventually(t, func() bool { return c.count() == 3 },
		time.Second, time.Millisecond)

	cache.Revalidate("remote")
	require.Eventually(t, func() bool { return c.count() == 4 },
		time.Second, time.Millisecond)

	cache.InvalidateOp("op")
	require.Eventually(t, func() bool { return c.count() == 5 },
		time.Second, time.Millisecond)

	o.Unmount()
	cache.Revalidate("remote")
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 5, c.count())
	require.GreaterOrEqual(t, atomic.LoadInt32(&notified), int32(5))
}
