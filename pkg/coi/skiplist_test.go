package coi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertFind(t *testing.T) {
	list := New[int, string]()

	assert.True(t, list.Insert(1, "one"))
	assert.True(t, list.Insert(2, "two"))
	assert.True(t, list.Insert(3, "three"))

	v, ok := list.Find(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	v, ok = list.Find(2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	_, ok = list.Find(4)
	assert.False(t, ok)
}

func TestInsertDuplicateKeyFails(t *testing.T) {
	list := New[int, string]()

	assert.True(t, list.Insert(1, "one"))
	assert.False(t, list.Insert(1, "uno"))

	v, _ := list.Find(1)
	assert.Equal(t, "one", v)
}

func TestDelete(t *testing.T) {
	list := New[int, string]()

	list.Insert(1, "one")
	list.Insert(2, "two")
	list.Insert(3, "three")

	assert.True(t, list.Delete(2))

	_, ok := list.Find(2)
	assert.False(t, ok)

	v, ok := list.Find(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	v, ok = list.Find(3)
	assert.True(t, ok)
	assert.Equal(t, "three", v)

	assert.False(t, list.Delete(2), "deleting an already-deleted key should fail")
}

func TestDeleteAbsentKey(t *testing.T) {
	list := New[int, string]()
	list.Insert(1, "one")

	assert.False(t, list.Delete(99))
}

func TestLenTracksInsertsAndDeletes(t *testing.T) {
	list := New[int, int]()

	for i := 0; i < 50; i++ {
		assert.True(t, list.Insert(i, i*2))
	}
	assert.Equal(t, 50, list.Len())

	for i := 0; i < 10; i++ {
		assert.True(t, list.Delete(i))
	}
	assert.Equal(t, 40, list.Len())
}

func TestAdaptiveMaxHeightGrowsWithSize(t *testing.T) {
	list := New[int, int]()
	assert.Equal(t, minHeight, list.MaxHeight())

	for i := 0; i < sizeThresholdSmall+100; i++ {
		list.Insert(i, i)
	}

	assert.Greater(t, list.MaxHeight(), minHeight)

	stats := list.Stats()
	assert.Greater(t, stats.HeightAdaptations, uint64(0))
	assert.Equal(t, sizeThresholdSmall+100, stats.Size)
}

func TestFastPathUsedForShortLists(t *testing.T) {
	list := New[int, string]()
	list.Insert(1, "one")
	list.Insert(2, "two")

	v, ok := list.Find(2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	stats := list.Stats()
	if stats.Height <= 2 {
		assert.Greater(t, stats.FastPathSearches, uint64(0))
	}
}

func TestConcurrentInsertsAllSucceed(t *testing.T) {
	list := New[int, int]()

	const goroutines = 10
	const perGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(base int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				list.Insert(base*perGoroutine+j, j)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, list.Len())
}

func TestConcurrentInsertAndDeleteSameKeySet(t *testing.T) {
	list := New[int, int]()
	for i := 0; i < 100; i++ {
		list.Insert(i, i)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			list.Delete(i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 100; i < 150; i++ {
			list.Insert(i, i)
		}
	}()
	wg.Wait()

	assert.Equal(t, 100, list.Len())
	for i := 0; i < 50; i++ {
		_, ok := list.Find(i)
		assert.False(t, ok)
	}
	for i := 50; i < 150; i++ {
		_, ok := list.Find(i)
		assert.True(t, ok)
	}
}

func TestEpochPin(t *testing.T) {
	var e Epoch
	assert.Equal(t, uint64(0), e.Current())
	assert.Equal(t, uint64(1), e.Pin())
	assert.Equal(t, uint64(2), e.Pin())
	assert.Equal(t, uint64(2), e.Current())
}
