package tps

import (
	"sync"
	"time"
)

// predictorThresholds bound the heuristic tier classifier. hotAccessFreq
// adapts to the observed workload on each Maintenance pass; hotRecency and
// warmRecency keep their default values.
type predictorThresholds struct {
	hotAccessFreq float64       // accesses/minute that qualify a page as Hot
	hotRecency    time.Duration // max time-since-access that still qualifies as Hot
	warmRecency   time.Duration // max time-since-access that still qualifies as Warm
}

func defaultThresholds() predictorThresholds {
	return predictorThresholds{
		hotAccessFreq: 1.0,
		hotRecency:    time.Hour,
		warmRecency:   24 * time.Hour,
	}
}

// tierPredictor classifies pages into tiers from their access pattern
// using adaptive thresholds rather than a trained model.
type tierPredictor struct {
	mu         sync.Mutex
	thresholds predictorThresholds
}

func newTierPredictor() *tierPredictor {
	return &tierPredictor{thresholds: defaultThresholds()}
}

func (p *tierPredictor) predict(pattern *accessPattern) Tier {
	p.mu.Lock()
	t := p.thresholds
	p.mu.Unlock()

	recency, freq := pattern.snapshot()

	switch {
	case freq >= t.hotAccessFreq || recency <= t.hotRecency:
		return Hot
	case recency <= t.warmRecency:
		return Warm
	default:
		return Cold
	}
}

// updateThresholds adapts hotAccessFreq to twice the workload's average
// access frequency, so a uniformly busier or quieter workload shifts what
// counts as "hot" instead of thrashing pages against a fixed threshold.
func (p *tierPredictor) updateThresholds(patterns map[PageID]*accessPattern) {
	if len(patterns) == 0 {
		return
	}

	var total float64
	for _, pattern := range patterns {
		total += pattern.accessFrequency()
	}
	avg := total / float64(len(patterns))

	p.mu.Lock()
	p.thresholds.hotAccessFreq = avg * 2.0
	p.mu.Unlock()
}
