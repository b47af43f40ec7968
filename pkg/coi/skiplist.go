package coi

import (
	"cmp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	absoluteMaxHeight = 32
	minHeight         = 4
	pFactor           = 4

	sizeThresholdSmall  = 1_000
	sizeThresholdMedium = 10_000
	sizeThresholdLarge  = 100_000
)

type node[K cmp.Ordered, V any] struct {
	key         K
	value       atomic.Pointer[V]
	height      int
	next        []atomic.Pointer[node[K, V]]
	marked      atomic.Bool
	fullyLinked atomic.Bool
}

// Stats reports point-in-time counters for a SkipList.
type Stats struct {
	Size              int
	Height            int
	MaxHeight         int
	Inserts           uint64
	Deletes           uint64
	Searches          uint64
	FastPathSearches  uint64
	HeightAdaptations uint64
}

// SkipList is a lock-free, multi-level ordered index keyed by K.
//
// Reads never block writers and writers never block readers; concurrent
// writers resolve contention with a mark-then-unlink delete protocol and
// bounded-exponential-backoff retries on failed level links.
type SkipList[K cmp.Ordered, V any] struct {
	head *node[K, V]

	size      atomic.Int64
	height    atomic.Int64
	maxHeight atomic.Int64

	insertCount       atomic.Uint64
	deleteCount       atomic.Uint64
	searchCount       atomic.Uint64
	fastPathCount     atomic.Uint64
	heightAdaptations atomic.Uint64

	rngPool sync.Pool
}

// New creates an empty SkipList.
func New[K cmp.Ordered, V any]() *SkipList[K, V] {
	head := &node[K, V]{
		height: absoluteMaxHeight,
		next:   make([]atomic.Pointer[node[K, V]], absoluteMaxHeight),
	}

	sl := &SkipList[K, V]{head: head}
	sl.height.Store(1)
	sl.maxHeight.Store(minHeight)
	sl.rngPool.New = func() any { return newXorshiftRNG() }
	return sl
}

// Find returns the value for key and whether it was present and live.
func (sl *SkipList[K, V]) Find(key K) (V, bool) {
	sl.searchCount.Add(1)

	if int(sl.height.Load()) <= 2 {
		sl.fastPathCount.Add(1)
		return sl.findFastPath(key)
	}
	return sl.findStandard(key)
}

// findFastPath walks only level 0, which is cheaper than the full
// multi-level search and correct whenever the list's observed height is
// small enough that level 0 alone is close to a linear scan anyway.
func (sl *SkipList[K, V]) findFastPath(key K) (V, bool) {
	curr := sl.head.next[0].Load()
	for curr != nil {
		if curr.marked.Load() {
			curr = curr.next[0].Load()
			continue
		}
		switch {
		case curr.key == key:
			if curr.fullyLinked.Load() {
				return *curr.value.Load(), true
			}
			var zero V
			return zero, false
		case curr.key > key:
			var zero V
			return zero, false
		default:
			curr = curr.next[0].Load()
		}
	}
	var zero V
	return zero, false
}

func (sl *SkipList[K, V]) findStandard(key K) (V, bool) {
	_, found := sl.findNode(key)
	if found == nil || found.marked.Load() || !found.fullyLinked.Load() {
		var zero V
		return zero, false
	}
	return *found.value.Load(), true
}

// findNode locates key's predecessors at every level and, if present, the
// node itself. It helps along any marked-but-not-yet-unlinked nodes it
// passes through, and restarts the whole search if a helping CAS loses a
// race rather than leaving preds/succs in an inconsistent state.
func (sl *SkipList[K, V]) findNode(key K) ([absoluteMaxHeight]*node[K, V], *node[K, V]) {
	for {
		var preds, succs [absoluteMaxHeight]*node[K, V]
		pred := sl.head
		currentHeight := int(sl.height.Load())
		restart := false

		for level := currentHeight; level < absoluteMaxHeight; level++ {
			preds[level] = sl.head
		}

		for level := currentHeight - 1; level >= 0; level-- {
			curr := pred.next[level].Load()
			for curr != nil {
				next := curr.next[level].Load()
				if curr.marked.Load() {
					if !pred.next[level].CompareAndSwap(curr, next) {
						restart = true
						break
					}
					curr = next
					continue
				}
				if curr.key == key || curr.key > key {
					break
				}
				pred = curr
				curr = next
			}
			if restart {
				break
			}
			preds[level] = pred
			succs[level] = curr
		}

		if restart {
			continue
		}

		var found *node[K, V]
		if succs[0] != nil && succs[0].key == key {
			found = succs[0]
		}
		return preds, found
	}
}

// Insert adds key/value, reporting false if key is already present and live.
func (sl *SkipList[K, V]) Insert(key K, value V) bool {
	height := sl.adaptiveRandomHeight()
	bo := newWriterBackoff()

	for {
		preds, found := sl.findNode(key)
		if found != nil {
			if found.fullyLinked.Load() && !found.marked.Load() {
				return false
			}
			sleepBackoff(bo)
			continue
		}

		newNode := &node[K, V]{key: key, height: height, next: make([]atomic.Pointer[node[K, V]], height)}
		newNode.value.Store(&value)

		linked := true
		for level := 0; level < height; level++ {
			pred := preds[level]
			succ := pred.next[level].Load()
			newNode.next[level].Store(succ)
			if !pred.next[level].CompareAndSwap(succ, newNode) {
				linked = false
				break
			}
		}

		if !linked {
			sleepBackoff(bo)
			continue
		}

		newNode.fullyLinked.Store(true)

		newSize := sl.size.Add(1)
		sl.insertCount.Add(1)

		for {
			currentHeight := sl.height.Load()
			if int64(height) <= currentHeight {
				break
			}
			if sl.height.CompareAndSwap(currentHeight, int64(height)) {
				break
			}
		}

		sl.maybeAdjustMaxHeight(newSize)
		return true
	}
}

// Delete logically marks key deleted, then unlinks it at every level it
// appears on. Returns false if key is absent or already marked.
func (sl *SkipList[K, V]) Delete(key K) bool {
	preds, found := sl.findNode(key)
	if found == nil {
		return false
	}
	if !found.marked.CompareAndSwap(false, true) {
		return false
	}

	for level := found.height - 1; level >= 0; level-- {
		succ := found.next[level].Load()
		preds[level].next[level].CompareAndSwap(found, succ)
	}

	sl.size.Add(-1)
	sl.deleteCount.Add(1)
	return true
}

// Len returns the approximate number of live entries.
func (sl *SkipList[K, V]) Len() int { return int(sl.size.Load()) }

// Height returns the skip list's current observed height.
func (sl *SkipList[K, V]) Height() int { return int(sl.height.Load()) }

// MaxHeight returns the current adaptive ceiling on tower height.
func (sl *SkipList[K, V]) MaxHeight() int { return int(sl.maxHeight.Load()) }

// Stats snapshots the skip list's counters.
func (sl *SkipList[K, V]) Stats() Stats {
	return Stats{
		Size:              sl.Len(),
		Height:            sl.Height(),
		MaxHeight:         sl.MaxHeight(),
		Inserts:           sl.insertCount.Load(),
		Deletes:           sl.deleteCount.Load(),
		Searches:          sl.searchCount.Load(),
		FastPathSearches:  sl.fastPathCount.Load(),
		HeightAdaptations: sl.heightAdaptations.Load(),
	}
}

func (sl *SkipList[K, V]) adaptiveRandomHeight() int {
	maxH := int(sl.maxHeight.Load())

	rng := sl.rngPool.Get().(*xorshiftRNG)
	defer sl.rngPool.Put(rng)

	height := 1
	for height < maxH && rng.next()%pFactor == 0 {
		height++
	}
	return height
}

func (sl *SkipList[K, V]) maybeAdjustMaxHeight(size int64) {
	current := sl.maxHeight.Load()

	var ideal int64
	switch {
	case size < sizeThresholdSmall:
		ideal = minHeight
	case size < sizeThresholdMedium:
		ideal = 8
	case size < sizeThresholdLarge:
		ideal = 16
	default:
		ideal = absoluteMaxHeight
	}

	if ideal != current && sl.maxHeight.CompareAndSwap(current, ideal) {
		sl.heightAdaptations.Add(1)
	}
}

// newWriterBackoff bounds writer contention retries the way the dolt
// storage backend bounds its connection retries: exponential growth capped
// at a small interval, with no elapsed-time ceiling since contention on a
// single key is expected to clear in well under a millisecond.
func newWriterBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Microsecond
	bo.MaxInterval = time.Millisecond
	bo.MaxElapsedTime = 0
	return bo
}

func sleepBackoff(bo *backoff.ExponentialBackOff) {
	d := bo.NextBackOff()
	if d == backoff.Stop {
		d = bo.MaxInterval
	}
	time.Sleep(d)
}

// xorshiftRNG is a cheap, non-cryptographic generator for tower-height
// coin flips. Pooled per SkipList rather than stored per-goroutine, since
// Go has no thread-local storage; sync.Pool gives each P its own instance
// in practice without pinning callers to a goroutine.
type xorshiftRNG struct {
	state uint64
}

func newXorshiftRNG() *xorshiftRNG {
	seed := uint64(time.Now().UnixNano()) ^ 0x123456789abcdef0
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &xorshiftRNG{state: seed}
}

func (r *xorshiftRNG) next() uint32 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return uint32(r.state >> 32)
}
