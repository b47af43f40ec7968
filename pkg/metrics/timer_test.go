package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewTimerStartsImmediately(t *testing.T) {
	timer := NewTimer()
	assert.False(t, timer.start.IsZero())
	assert.Less(t, timer.Duration(), time.Second)
}

func TestTimerDurationGrowsMonotonically(t *testing.T) {
	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)
	first := timer.Duration()
	time.Sleep(10 * time.Millisecond)
	second := timer.Duration()

	assert.Greater(t, second, first)
}

func TestTimerObserveDurationRecordsToTPSGetDuration(t *testing.T) {
	before := testutil.CollectAndCount(TPSGetDuration)

	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDuration(TPSGetDuration)

	after := testutil.CollectAndCount(TPSGetDuration)
	assert.Equal(t, before+1, after)
}

func TestTimerObserveDurationRecordsToCatalogRecoveryPathDuration(t *testing.T) {
	before := testutil.CollectAndCount(CatalogRecoveryPathDuration)

	timer := NewTimer()
	timer.ObserveDuration(CatalogRecoveryPathDuration)

	after := testutil.CollectAndCount(CatalogRecoveryPathDuration)
	assert.Equal(t, before+1, after)
}
