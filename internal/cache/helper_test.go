package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMiniredis swaps the package client for a miniredis-backed one for
// the duration of the test.
func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type fragment struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestGetSetJSON_RoundTrip(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	found, err := GetJSON(ctx, "missing", &fragment{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "frag", fragment{Title: "hello", Count: 3}, time.Minute))

	var got fragment
	found, err = GetJSON(ctx, "frag", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, 3, got.Count)
}

func TestGetSetJSON_NilClientIsNoOp(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "frag", fragment{Title: "hello"}, time.Minute))

	var got fragment
	found, err := GetJSON(ctx, "frag", &got)
	require.NoError(t, err)
	assert.False(t, found, "without Redis every lookup is a miss")
}

func TestCacheAside(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *fragment) func() error {
		return func() error {
			fetches++
			*dest = fragment{Title: "fresh", Count: fetches}
			return nil
		}
	}

	var got fragment
	hit, err := CacheAside(ctx, "frag", &got, time.Minute, fetch(&got))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, fetches)

	got = fragment{}
	hit, err = CacheAside(ctx, "frag", &got, time.Minute, fetch(&got))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, fetches, "second read serves the cached fragment")
	assert.Equal(t, "fresh", got.Title)

	// After the TTL passes the fragment is recomputed.
	mr.FastForward(2 * time.Minute)
	got = fragment{}
	hit, err = CacheAside(ctx, "frag", &got, time.Minute, fetch(&got))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, fetches)
}

func TestCacheAside_FetchErrorIsNotCached(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	boom := errors.New("store down")
	var got fragment
	hit, err := CacheAside(ctx, "frag", &got, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, hit)

	found, err := GetJSON(ctx, "frag", &got)
	require.NoError(t, err)
	assert.False(t, found, "failures never populate the cache")
}

func TestInvalidate(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, IndexPageKey(1), fragment{Title: "page one"}, IndexFragmentTTL))
	InvalidateIndexPage(ctx, 1)

	var got fragment
	found, err := GetJSON(ctx, IndexPageKey(1), &got)
	require.NoError(t, err)
	assert.False(t, found)

	// Safe with no client at all.
	SetClient(nil)
	Invalidate(ctx, "anything")
}

func TestIndexPageKey(t *testing.T) {
	assert.Equal(t, "index:page:1", IndexPageKey(1))
	assert.Equal(t, "index:page:7", IndexPageKey(7))
}
