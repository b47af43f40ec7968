package tps

import (
	"sync"
	"time"
)

// PageID identifies a page across tiers.
type PageID uint64

// Tier classifies where a page currently lives.
type Tier string

const (
	Hot  Tier = "hot"
	Warm Tier = "warm"
	Cold Tier = "cold"
)

// CompressionLevel is the codec applied to a page's bytes for a given tier.
type CompressionLevel string

const (
	CompressionNone CompressionLevel = "none"
	CompressionFast CompressionLevel = "fast" // snappy
	CompressionBest CompressionLevel = "best" // zstd
)

// compressionLevel returns the tier's fixed compression policy.
func (t Tier) compressionLevel() CompressionLevel {
	switch t {
	case Hot:
		return CompressionNone
	case Warm:
		return CompressionFast
	case Cold:
		return CompressionBest
	default:
		return CompressionNone
	}
}

// Page is a unit of storage managed by the tiered page store.
type Page struct {
	ID   PageID
	Data []byte
}

// TierStats is a point-in-time snapshot of the store's tier occupancy,
// migration activity, and compression effectiveness.
type TierStats struct {
	HotPages            int
	WarmPages           int
	ColdPages           int
	TotalMigrations     uint64
	HotToWarm           uint64
	WarmToCold          uint64
	ColdToHot           uint64
	AvgCompressionRatio float64
	TotalBytesSaved     uint64
}

// accessPattern tracks recent reads/writes for one page to feed the tier
// predictor. historyCap bounds memory use for long-lived pages.
const historyCap = 100

// accessPattern is shared between the request path (recordAccess on every
// GetPage/UpdatePage) and the maintenance path (accessFrequency/snapshot
// read from predict and updateThresholds), so every field access below
// goes through mu rather than relying on patternsMu, which only protects
// the lookup map and is released before the caller touches the pattern.
type accessPattern struct {
	mu sync.Mutex

	pageID            PageID
	accessCount       uint64
	readCount         uint64
	writeCount        uint64
	lastAccess        time.Time
	history           []time.Time
	avgAccessInterval time.Duration
}

func newAccessPattern(id PageID) *accessPattern {
	return &accessPattern{
		pageID:            id,
		lastAccess:        time.Now(),
		history:           make([]time.Time, 0, historyCap),
		avgAccessInterval: time.Hour,
	}
}

func (p *accessPattern) recordAccess(isWrite bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()

	if p.accessCount > 0 {
		interval := now.Sub(p.lastAccess)
		p.avgAccessInterval = (p.avgAccessInterval + interval) / 2
	}

	p.lastAccess = now
	p.accessCount++
	if isWrite {
		p.writeCount++
	} else {
		p.readCount++
	}

	if len(p.history) >= historyCap {
		p.history = p.history[1:]
	}
	p.history = append(p.history, now)
}

// accessFrequency returns accesses-per-minute over the last hour.
func (p *accessPattern) accessFrequency() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessFrequencyLocked()
}

func (p *accessPattern) accessFrequencyLocked() float64 {
	if p.accessCount == 0 {
		return 0
	}

	now := time.Now()
	window := time.Hour
	recent := 0
	for _, t := range p.history {
		if now.Sub(t) < window {
			recent++
		}
	}
	return float64(recent) / 60.0
}

// snapshot returns the recency and frequency predict needs, taken under
// a single lock so the two values describe the same instant.
func (p *accessPattern) snapshot() (recency time.Duration, frequency float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Since(p.lastAccess), p.accessFrequencyLocked()
}
