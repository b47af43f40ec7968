package tps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationPriorityOrdering(t *testing.T) {
	assert.Equal(t, uint8(3), migrationPriority(Cold, Hot))
	assert.Equal(t, uint8(2), migrationPriority(Warm, Hot))
	assert.Equal(t, uint8(0), migrationPriority(Hot, Cold))
	assert.Equal(t, uint8(1), migrationPriority(Hot, Warm))
}

func TestMigrationQueuePopsHighestPriorityFirst(t *testing.T) {
	q := newMigrationQueue(10)
	q.push(newMigrationTask(1, Hot, Cold))   // priority 0
	q.push(newMigrationTask(2, Cold, Hot))   // priority 3
	q.push(newMigrationTask(3, Hot, Warm))   // priority 1

	first, ok := q.pop()
	assert.True(t, ok)
	assert.Equal(t, PageID(2), first.pageID)

	second, ok := q.pop()
	assert.True(t, ok)
	assert.Equal(t, PageID(3), second.pageID)

	third, ok := q.pop()
	assert.True(t, ok)
	assert.Equal(t, PageID(1), third.pageID)
}

func TestMigrationQueueTiesBrokenByArrivalOrder(t *testing.T) {
	q := newMigrationQueue(10)
	q.push(newMigrationTask(1, Hot, Warm))
	q.push(newMigrationTask(2, Hot, Warm))

	first, _ := q.pop()
	assert.Equal(t, PageID(1), first.pageID)
}

func TestMigrationQueueDropsLowestPriorityTailOnOverflow(t *testing.T) {
	q := newMigrationQueue(2)
	q.push(newMigrationTask(1, Cold, Hot)) // priority 3
	q.push(newMigrationTask(2, Warm, Hot)) // priority 2
	q.push(newMigrationTask(3, Hot, Cold)) // priority 0, should be dropped

	assert.Equal(t, 2, q.len())

	first, _ := q.pop()
	assert.Equal(t, PageID(1), first.pageID)
	second, _ := q.pop()
	assert.Equal(t, PageID(2), second.pageID)
}

func TestMigrationQueuePopEmpty(t *testing.T) {
	q := newMigrationQueue(4)
	_, ok := q.pop()
	assert.False(t, ok)
}
