package tps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePageAndGetPageRoundtrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	page := &Page{ID: 1, Data: []byte("hello tiered page store")}
	require.NoError(t, s.StorePage(ctx, page))

	got, err := s.GetPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, page.Data, got.Data)
}

func TestGetPageNotFound(t *testing.T) {
	s := New()
	_, err := s.GetPage(context.Background(), 999)
	assert.Error(t, err)
}

func TestStorePageIsTierExclusive(t *testing.T) {
	s := New()
	ctx := context.Background()
	page := &Page{ID: 1, Data: []byte("data")}
	require.NoError(t, s.StorePage(ctx, page))

	s.mu.RLock()
	_, inHot := s.hot[1]
	_, inWarm := s.warm[1]
	_, inCold := s.cold[1]
	s.mu.RUnlock()

	found := 0
	for _, ok := range []bool{inHot, inWarm, inCold} {
		if ok {
			found++
		}
	}
	assert.Equal(t, 1, found, "a page must reside in exactly one tier at a time")
}

func TestUpdatePageInvalidatesReadCache(t *testing.T) {
	s := New()
	ctx := context.Background()
	page := &Page{ID: 1, Data: []byte("v1")}
	require.NoError(t, s.StorePage(ctx, page))

	got, err := s.GetPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got.Data)

	require.NoError(t, s.UpdatePage(ctx, &Page{ID: 1, Data: []byte("v2")}))

	got, err = s.GetPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got.Data)
}

func TestConsiderPromotionEnqueuesOnTierMismatch(t *testing.T) {
	s := New()

	tp := &tieredPage{tier: Cold, compressed: []byte("x"), originalSize: 1}
	s.mu.Lock()
	s.cold[42] = tp
	s.mu.Unlock()

	// Force the predictor to classify this page as Hot on its next read by
	// recording a burst of very recent accesses.
	pattern := s.patternFor(42)
	for i := 0; i < 10; i++ {
		pattern.recordAccess(false)
	}

	s.considerPromotion(42, Cold)
	assert.Equal(t, 1, s.queue.len())
}

func TestMaintenanceDrainsQueuedMigrations(t *testing.T) {
	s := New()
	ctx := context.Background()
	page := &Page{ID: 7, Data: []byte("migrate me")}
	require.NoError(t, s.StorePage(ctx, page))

	s.mu.RLock()
	_, tier, ok := s.lookup(7)
	s.mu.RUnlock()
	require.True(t, ok)

	s.queue.push(newMigrationTask(7, tier, Cold))
	require.NoError(t, s.Maintenance(ctx))

	s.mu.RLock()
	_, inCold := s.cold[7]
	s.mu.RUnlock()
	assert.True(t, inCold)
}

func TestMigratePageToColdEvictsInMemoryBytes(t *testing.T) {
	s := New()
	ctx := context.Background()
	page := &Page{ID: 3, Data: []byte("cold bound data")}
	require.NoError(t, s.StorePage(ctx, page))

	require.NoError(t, s.migratePage(newMigrationTask(3, Hot, Cold)))

	s.mu.RLock()
	tp, ok := s.cold[3]
	s.mu.RUnlock()
	require.True(t, ok)
	assert.Nil(t, tp.compressed, "cold-tier page bytes should be evicted from memory once the backend holds them")
	assert.Greater(t, tp.size(), 0)

	got, err := s.GetPage(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, page.Data, got.Data)
}

func TestStatsReflectsTierOccupancy(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.StorePage(ctx, &Page{ID: 1, Data: []byte("a")}))
	require.NoError(t, s.migratePage(newMigrationTask(1, Hot, Warm)))

	stats := s.Stats()
	assert.Equal(t, 1, stats.WarmPages)
	assert.Equal(t, uint64(1), stats.TotalMigrations)
	assert.Equal(t, uint64(1), stats.HotToWarm)
}

func TestCloseReleasesColdBackend(t *testing.T) {
	s := New()
	assert.NoError(t, s.Close())
}
