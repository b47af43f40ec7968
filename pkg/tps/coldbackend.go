package tps

import (
	"encoding/binary"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/cuemby/dbcore/pkg/dberr"
)

// ColdBackend stores and retrieves the already-compressed bytes of Cold
// tier pages. The default implementation keeps them in process memory;
// WithColdBackend can swap in a disk-backed implementation so genuinely
// cold pages can be evicted from memory entirely.
type ColdBackend interface {
	Put(id PageID, compressed []byte) error
	Get(id PageID) ([]byte, bool, error)
	Delete(id PageID) error
	Close() error
}

// memColdBackend is the default in-memory ColdBackend.
type memColdBackend struct {
	mu   sync.RWMutex
	data map[PageID][]byte
}

func newMemColdBackend() *memColdBackend {
	return &memColdBackend{data: make(map[PageID][]byte)}
}

func (m *memColdBackend) Put(id PageID, compressed []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(compressed))
	copy(cp, compressed)
	m.data[id] = cp
	return nil
}

func (m *memColdBackend) Get(id PageID) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[id]
	return v, ok, nil
}

func (m *memColdBackend) Delete(id PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memColdBackend) Close() error { return nil }

var coldBucket = []byte("cold_pages")

// BoltColdBackend persists Cold tier bytes to a bbolt database file, one
// bucket keyed by the page's big-endian id, so cold pages can be evicted
// from process memory between reads.
type BoltColdBackend struct {
	db *bbolt.DB
}

// NewBoltColdBackend opens (creating if needed) a bbolt database at path
// for use as a ColdBackend.
func NewBoltColdBackend(path string) (*BoltColdBackend, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, dberr.Wrap("NewBoltColdBackend", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(coldBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, dberr.Wrap("NewBoltColdBackend", err)
	}

	return &BoltColdBackend{db: db}, nil
}

func pageKey(id PageID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func (b *BoltColdBackend) Put(id PageID, compressed []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(coldBucket).Put(pageKey(id), compressed)
	})
}

func (b *BoltColdBackend) Get(id PageID) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(coldBucket).Get(pageKey(id))
		if v != nil {
			out = make([]byte, len(v))
			copy(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, dberr.Wrap("BoltColdBackend.Get", err)
	}
	return out, out != nil, nil
}

func (b *BoltColdBackend) Delete(id PageID) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(coldBucket).Delete(pageKey(id))
	})
}

func (b *BoltColdBackend) Close() error {
	return b.db.Close()
}
