package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/dbcore/pkg/catalog"
	"github.com/cuemby/dbcore/pkg/engineconfig"
	"github.com/cuemby/dbcore/pkg/tps"
)

func testConfig(t *testing.T) engineconfig.Config {
	t.Helper()
	cfg := engineconfig.Default()
	cfg.CatalogDataDir = t.TempDir()
	cfg.MaintenanceInterval = "20ms"
	cfg.LogJSON = true
	return cfg
}

func TestNewWiresAllComponents(t *testing.T) {
	e, err := New(testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, e.Index)
	require.NotNil(t, e.Pages)
	require.NotNil(t, e.Catalog)
}

func TestEngineEndToEndIndexAndPages(t *testing.T) {
	e, err := New(testConfig(t))
	require.NoError(t, err)

	ctx := context.Background()
	page := &tps.Page{ID: 1, Data: []byte("row data")}
	require.NoError(t, e.Pages.StorePage(ctx, page))
	assert.True(t, e.Index.Insert(uint64(42), page.ID))

	located, ok := e.Index.Find(42)
	require.True(t, ok)
	assert.Equal(t, page.ID, located)

	got, err := e.Pages.GetPage(ctx, located)
	require.NoError(t, err)
	assert.Equal(t, page.Data, got.Data)
}

func TestEngineStartStopRunsMaintenance(t *testing.T) {
	e, err := New(testConfig(t))
	require.NoError(t, err)

	e.Start()
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, e.Stop())
}

func TestEngineInvalidMaintenanceInterval(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaintenanceInterval = "not-a-duration"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestEngineWithBoltColdBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.ColdStoragePath = filepath.Join(t.TempDir(), "cold.db")

	e, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Stop())
}

// TestEngineFullBackupAndRecoveryFlow exercises all three components
// together: pages are written through the index and page store, a backup
// set describing them is registered with the catalog, and the catalog's
// recovery path computation is checked against that same data.
func TestEngineFullBackupAndRecoveryFlow(t *testing.T) {
	e, err := New(testConfig(t))
	require.NoError(t, err)
	ctx := context.Background()

	const databaseID = "orders-db"
	require.NoError(t, e.Catalog.RegisterDatabase(databaseID, "Orders", "1.0", "linux"))

	for key := uint64(0); key < 5; key++ {
		page := &tps.Page{ID: tps.PageID(key + 1), Data: []byte{byte(key)}}
		require.NoError(t, e.Pages.StorePage(ctx, page))
		assert.True(t, e.Index.Insert(key, page.ID))
	}

	start := time.Now().Add(-time.Hour)
	require.NoError(t, e.Catalog.RegisterBackupSet(catalog.BackupSet{
		SetID:          "set-1",
		DatabaseID:     databaseID,
		BackupType:     catalog.BackupFull,
		StartTime:      start,
		CompletionTime: &start,
		SCNStart:       0,
		SCNEnd:         100,
		TotalSizeBytes: 5 * 4096,
	}))

	path, err := e.Catalog.FindRecoveryPath(databaseID, 100)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "set-1", path[0].SetID)

	for key := uint64(0); key < 5; key++ {
		pageID, ok := e.Index.Find(key)
		require.True(t, ok)
		got, err := e.Pages.GetPage(ctx, pageID)
		require.NoError(t, err)
		assert.Equal(t, byte(key), got.Data[0])
	}
}
