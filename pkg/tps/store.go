package tps

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/cuemby/dbcore/pkg/dberr"
	"github.com/cuemby/dbcore/pkg/log"
	"github.com/cuemby/dbcore/pkg/metrics"
)

const (
	defaultMigrationQueueCapacity = 1024
	defaultMaintenanceBatch       = 10
	defaultReadCacheSize          = 4096
)

// tieredPage is the in-memory index entry for a page. For Hot and Warm
// pages, compressed holds the actual bytes. For Cold pages, whichever
// ColdBackend is configured, compressed is left nil (the backend is the
// only copy) and compressedLen records its size for stats purposes.
type tieredPage struct {
	tier             Tier
	compressed       []byte
	compressedLen    int
	compressionLevel CompressionLevel
	originalSize     int
}

func (tp *tieredPage) size() int {
	if tp.compressed != nil {
		return len(tp.compressed)
	}
	return tp.compressedLen
}

// Store is the Tiered Page Store: it classifies pages into Hot, Warm, and
// Cold tiers, compresses them per-tier, and migrates them as their access
// pattern changes.
type Store struct {
	mu   sync.RWMutex
	hot  map[PageID]*tieredPage
	warm map[PageID]*tieredPage
	cold map[PageID]*tieredPage

	coldBackend ColdBackend

	patternsMu sync.RWMutex
	patterns   map[PageID]*accessPattern

	predictor *tierPredictor
	queue     *migrationQueue

	zstd *zstdCodec

	readCache *lru.Cache[PageID, []byte]
	loadGroup singleflight.Group

	statsMu sync.RWMutex
	stats   TierStats
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithColdBackend replaces the default in-memory Cold tier storage with a
// caller-supplied backend, e.g. a BoltColdBackend for disk-backed Cold data.
func WithColdBackend(backend ColdBackend) Option {
	return func(s *Store) { s.coldBackend = backend }
}

// WithMigrationQueueCapacity bounds the number of pending migration tasks.
func WithMigrationQueueCapacity(capacity int) Option {
	return func(s *Store) { s.queue = newMigrationQueue(capacity) }
}

// WithReadCacheSize bounds the number of decompressed pages kept in the
// read-through cache.
func WithReadCacheSize(size int) Option {
	return func(s *Store) {
		cache, err := lru.New[PageID, []byte](size)
		if err == nil {
			s.readCache = cache
		}
	}
}

// New creates a Store with the given options applied over sane defaults.
func New(opts ...Option) *Store {
	s := &Store{
		hot:         make(map[PageID]*tieredPage),
		warm:        make(map[PageID]*tieredPage),
		cold:        make(map[PageID]*tieredPage),
		coldBackend: newMemColdBackend(),
		patterns:    make(map[PageID]*accessPattern),
		predictor:   newTierPredictor(),
		queue:       newMigrationQueue(defaultMigrationQueueCapacity),
		zstd:        newZstdCodec(),
	}
	cache, _ := lru.New[PageID, []byte](defaultReadCacheSize)
	s.readCache = cache

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) patternFor(id PageID) *accessPattern {
	s.patternsMu.Lock()
	defer s.patternsMu.Unlock()

	p, ok := s.patterns[id]
	if !ok {
		p = newAccessPattern(id)
		s.patterns[id] = p
	}
	return p
}

func (s *Store) compress(level CompressionLevel, data []byte) ([]byte, error) {
	return codecFor(level, s.zstd).compress(data)
}

func (s *Store) decompress(level CompressionLevel, data []byte) ([]byte, error) {
	return codecFor(level, s.zstd).decompress(data)
}

// StorePage places page in the tier its access pattern currently predicts.
func (s *Store) StorePage(ctx context.Context, page *Page) error {
	pattern := s.patternFor(page.ID)
	tier := s.predictor.predict(pattern)
	return s.storeInTier(page, tier)
}

func (s *Store) storeInTier(page *Page, tier Tier) error {
	level := tier.compressionLevel()
	compressed, err := s.compress(level, page.Data)
	if err != nil {
		return dberr.Wrap("StorePage", err)
	}

	tp := &tieredPage{
		tier:             tier,
		compressed:       compressed,
		compressedLen:    len(compressed),
		compressionLevel: level,
		originalSize:     len(page.Data),
	}

	s.mu.Lock()
	if tier != Hot {
		delete(s.hot, page.ID)
	}
	if tier != Warm {
		delete(s.warm, page.ID)
	}
	if tier != Cold {
		if _, wasCold := s.cold[page.ID]; wasCold {
			_ = s.coldBackend.Delete(page.ID)
		}
		delete(s.cold, page.ID)
	}

	switch tier {
	case Hot:
		s.hot[page.ID] = tp
	case Warm:
		s.warm[page.ID] = tp
	case Cold:
		if err := s.coldBackend.Put(page.ID, compressed); err != nil {
			s.mu.Unlock()
			return dberr.Wrap("StorePage", err)
		}
		tp.compressed = nil // backend is now the sole copy
		s.cold[page.ID] = tp
	}
	s.mu.Unlock()

	if s.readCache != nil {
		s.readCache.Add(page.ID, page.Data)
	}

	s.updateStats()
	return nil
}

// GetPage returns a page's current bytes from whichever tier holds it,
// decompressing as needed. Reads from Warm or Cold always reconsider the
// page's tier and enqueue a migration if the prediction has changed.
// Concurrent misses for the same page are coalesced into a single
// decompression via singleflight.
func (s *Store) GetPage(ctx context.Context, id PageID) (*Page, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.TPSGetDuration)

	s.patternFor(id).recordAccess(false)

	if s.readCache != nil {
		if data, ok := s.readCache.Get(id); ok {
			metrics.TPSCacheHitsTotal.WithLabelValues("hit").Inc()
			s.mu.RLock()
			_, tier, found := s.lookup(id)
			s.mu.RUnlock()
			if found && tier != Hot {
				s.considerPromotion(id, tier)
			}
			return &Page{ID: id, Data: data}, nil
		}
	}
	metrics.TPSCacheHitsTotal.WithLabelValues("miss").Inc()

	v, err, _ := s.loadGroup.Do(fmt.Sprintf("%d", id), func() (interface{}, error) {
		return s.loadPage(id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Page), nil
}

func (s *Store) loadPage(id PageID) (*Page, error) {
	s.mu.RLock()
	tp, tier, ok := s.lookup(id)
	s.mu.RUnlock()

	if !ok {
		return nil, dberr.NotFoundf("GetPage", "page %d not found in any tier", id)
	}

	compressed := tp.compressed
	if tier == Cold {
		fromBackend, found, err := s.coldBackend.Get(id)
		if err != nil {
			return nil, dberr.Wrap("GetPage", err)
		}
		if found {
			compressed = fromBackend
		}
	}

	data, err := s.decompress(tp.compressionLevel, compressed)
	if err != nil {
		return nil, dberr.New(dberr.DataCorruption, "GetPage", fmt.Sprintf("failed to decompress page %d: %v", id, err))
	}

	if s.readCache != nil {
		s.readCache.Add(id, data)
	}

	if tier != Hot {
		s.considerPromotion(id, tier)
	}

	return &Page{ID: id, Data: data}, nil
}

func (s *Store) lookup(id PageID) (*tieredPage, Tier, bool) {
	if tp, ok := s.hot[id]; ok {
		return tp, Hot, true
	}
	if tp, ok := s.warm[id]; ok {
		return tp, Warm, true
	}
	if tp, ok := s.cold[id]; ok {
		return tp, Cold, true
	}
	return nil, "", false
}

// UpdatePage records a write access and re-stores the page, which may
// reclassify its tier.
func (s *Store) UpdatePage(ctx context.Context, page *Page) error {
	s.patternFor(page.ID).recordAccess(true)
	if s.readCache != nil {
		s.readCache.Remove(page.ID)
	}
	return s.StorePage(ctx, page)
}

func (s *Store) considerPromotion(id PageID, currentTier Tier) {
	pattern := s.patternFor(id)
	predicted := s.predictor.predict(pattern)
	if predicted != currentTier {
		s.queue.push(newMigrationTask(id, currentTier, predicted))
	}
}

// Maintenance updates the predictor's adaptive thresholds, scans all
// tracked pages for tier reclassification, and drains a bounded number of
// queued migrations.
func (s *Store) Maintenance(ctx context.Context) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.TPSMaintenanceDuration)

	s.patternsMu.RLock()
	snapshot := make(map[PageID]*accessPattern, len(s.patterns))
	for id, p := range s.patterns {
		snapshot[id] = p
	}
	s.patternsMu.RUnlock()

	s.predictor.updateThresholds(snapshot)

	for id, pattern := range snapshot {
		predicted := s.predictor.predict(pattern)

		s.mu.RLock()
		_, currentTier, ok := s.lookup(id)
		s.mu.RUnlock()

		if ok && predicted != currentTier {
			s.queue.push(newMigrationTask(id, currentTier, predicted))
		}
	}

	if _, err := s.processMigrations(defaultMaintenanceBatch); err != nil {
		return err
	}

	s.updateStats()
	return nil
}

// processMigrations dequeues up to maxMigrations tasks and applies them.
// A migration whose source page has since disappeared is silently
// skipped, matching the original tiering engine's best-effort semantics.
func (s *Store) processMigrations(maxMigrations int) (int, error) {
	migrated := 0
	for i := 0; i < maxMigrations; i++ {
		task, ok := s.queue.pop()
		if !ok {
			break
		}
		if err := s.migratePage(task); err != nil {
			log.WithPageID(uint64(task.pageID)).Error().Err(err).
				Str("from_tier", string(task.fromTier)).
				Str("to_tier", string(task.toTier)).
				Msg("page migration failed")
			continue
		}
		migrated++
	}
	return migrated, nil
}

func (s *Store) migratePage(task migrationTask) error {
	s.mu.Lock()
	var tp *tieredPage
	var sourceMap map[PageID]*tieredPage
	switch task.fromTier {
	case Hot:
		sourceMap = s.hot
	case Warm:
		sourceMap = s.warm
	case Cold:
		sourceMap = s.cold
	}
	tp, ok := sourceMap[task.pageID]
	if !ok {
		s.mu.Unlock()
		return nil // page no longer exists; nothing to migrate
	}
	source := tp.compressed
	if task.fromTier == Cold {
		fromBackend, found, err := s.coldBackend.Get(task.pageID)
		if err != nil {
			s.mu.Unlock()
			return dberr.Wrap("migratePage", err)
		}
		if found {
			source = fromBackend
		}
	}
	delete(sourceMap, task.pageID)
	if task.fromTier == Cold {
		_ = s.coldBackend.Delete(task.pageID)
	}
	s.mu.Unlock()

	data, err := s.decompress(tp.compressionLevel, source)
	if err != nil {
		return dberr.New(dberr.DataCorruption, "migratePage", fmt.Sprintf("page %d: %v", task.pageID, err))
	}

	newLevel := task.toTier.compressionLevel()
	compressed, err := s.compress(newLevel, data)
	if err != nil {
		return dberr.Wrap("migratePage", err)
	}

	newPage := &tieredPage{
		tier:             task.toTier,
		compressed:       compressed,
		compressionLevel: newLevel,
		originalSize:     tp.originalSize,
	}

	s.mu.Lock()
	switch task.toTier {
	case Hot:
		s.hot[task.pageID] = newPage
	case Warm:
		s.warm[task.pageID] = newPage
	case Cold:
		if err := s.coldBackend.Put(task.pageID, compressed); err != nil {
			s.mu.Unlock()
			return dberr.Wrap("migratePage", err)
		}
		newPage.compressedLen = len(newPage.compressed)
		newPage.compressed = nil // backend is now the sole copy
		s.cold[task.pageID] = newPage
	}
	s.mu.Unlock()

	s.statsMu.Lock()
	s.stats.TotalMigrations++
	switch {
	case task.fromTier == Hot && task.toTier == Warm:
		s.stats.HotToWarm++
	case task.fromTier == Warm && task.toTier == Cold:
		s.stats.WarmToCold++
	case task.fromTier == Cold && task.toTier == Hot:
		s.stats.ColdToHot++
	}
	s.statsMu.Unlock()

	metrics.TPSMigrationsTotal.WithLabelValues(string(task.fromTier), string(task.toTier)).Inc()

	s.updateStats()
	return nil
}

func (s *Store) updateStats() {
	s.mu.RLock()
	hotN, warmN, coldN := len(s.hot), len(s.warm), len(s.cold)

	var totalRatio float64
	var totalSaved uint64
	var count int
	for _, maps := range []map[PageID]*tieredPage{s.hot, s.warm, s.cold} {
		for _, tp := range maps {
			size := tp.size()
			ratio := 1.0
			if tp.originalSize > 0 {
				ratio = float64(size) / float64(tp.originalSize)
			}
			totalRatio += ratio
			if tp.originalSize > size {
				totalSaved += uint64(tp.originalSize - size)
			}
			count++
		}
	}
	s.mu.RUnlock()

	s.statsMu.Lock()
	s.stats.HotPages = hotN
	s.stats.WarmPages = warmN
	s.stats.ColdPages = coldN
	if count > 0 {
		s.stats.AvgCompressionRatio = totalRatio / float64(count)
	}
	s.stats.TotalBytesSaved = totalSaved
	stats := s.stats
	s.statsMu.Unlock()

	metrics.TPSPagesByTier.WithLabelValues("hot").Set(float64(hotN))
	metrics.TPSPagesByTier.WithLabelValues("warm").Set(float64(warmN))
	metrics.TPSPagesByTier.WithLabelValues("cold").Set(float64(coldN))
	metrics.TPSCompressionRatio.Set(stats.AvgCompressionRatio)
}

// Stats returns a snapshot of tier occupancy and migration activity.
func (s *Store) Stats() TierStats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}

// Close releases the Cold tier backend, if it holds any resources (e.g. a
// bbolt database file).
func (s *Store) Close() error {
	return s.coldBackend.Close()
}
