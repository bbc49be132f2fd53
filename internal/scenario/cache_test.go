package scenario

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOnce(calls *int32) func(ctx context.Context) (*Matrix, DriverIndexMap, error) {
	return func(ctx context.Context) (*Matrix, DriverIndexMap, error) {
		atomic.AddInt32(calls, 1)
		return NewMatrix([][]float64{{1, 2}, {3, 4}}), NewDriverIndexMap([]string{"a", "b"}), nil
	}
}

func TestCache_GetOrCreate_PopulatesOnMiss(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls int32
	key := Key{SlateID: "s1", NScenarios: 100}

	m, idx, err := c.GetOrCreate(context.Background(), key, sampleOnce(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, m.S())
	assert.Equal(t, 0, idx.ToIndex["a"])
	assert.EqualValues(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestCache_GetOrCreate_HitsOnSecondCall(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls int32
	key := Key{SlateID: "s1", NScenarios: 100}

	_, _, err := c.GetOrCreate(context.Background(), key, sampleOnce(&calls))
	require.NoError(t, err)
	_, _, err = c.GetOrCreate(context.Background(), key, sampleOnce(&calls))
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls, "second call must hit the cache, not re-sample")
}

func TestCache_GetOrCreate_CoalescesConcurrentMisses(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls int32
	key := Key{SlateID: "s1", NScenarios: 100}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.GetOrCreate(context.Background(), key, sampleOnce(&calls))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls, "concurrent misses for the same key must coalesce into one sample call")
}

func TestCache_EvictsLeastRecentlyUsedBeyondCapacity(t *testing.T) {
	c := NewCache(2, time.Minute)
	var calls int32

	for i := 0; i < 3; i++ {
		key := Key{SlateID: "s", NScenarios: i}
		_, _, err := c.GetOrCreate(context.Background(), key, sampleOnce(&calls))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Len())
}

func TestCache_PinPreventsEviction(t *testing.T) {
	c := NewCache(1, time.Minute)
	var calls int32

	pinned := Key{SlateID: "pinned", NScenarios: 0}
	_, _, err := c.GetOrCreate(context.Background(), pinned, sampleOnce(&calls))
	require.NoError(t, err)
	c.Pin(pinned)

	other := Key{SlateID: "other", NScenarios: 1}
	_, _, err = c.GetOrCreate(context.Background(), other, sampleOnce(&calls))
	require.NoError(t, err)

	_, _, stillCached := c.get(pinned)
	assert.True(t, stillCached, "a pinned entry must survive eviction pressure")

	c.Release(pinned)
}

func TestCache_ExpiresEntriesPastTTL(t *testing.T) {
	c := NewCache(8, time.Millisecond)
	var calls int32
	key := Key{SlateID: "s1", NScenarios: 100}

	_, _, err := c.GetOrCreate(context.Background(), key, sampleOnce(&calls))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, _, err = c.GetOrCreate(context.Background(), key, sampleOnce(&calls))
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls, "expired entry must be resampled")
}
