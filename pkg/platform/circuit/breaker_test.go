package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_InitialState(t *testing.T) {
	b := New("region-source")
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "region-source", b.Name())
	assert.Equal(t, "closed", b.State().String())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New("region-source", WithFailureThreshold(3))

	for i := 0; i < 2; i++ {
		useFallback, change := b.RecordFailure()
		assert.False(t, useFallback)
		assert.False(t, change.Opened)
	}

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
	assert.Equal(t, "open", b.State().String())

	// Already open: no further transition.
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}

func TestBreaker_ClosesAfterSuccessThreshold(t *testing.T) {
	b := New("region-source", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreaker_CountersReset(t *testing.T) {
	t.Run("success clears failures", func(t *testing.T) {
		b := New("region-source", WithFailureThreshold(3))
		b.RecordFailure()
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		b.RecordFailure()
		assert.False(t, b.IsOpen())
		b.RecordFailure()
		assert.True(t, b.IsOpen())
	})

	t.Run("failure clears successes while open", func(t *testing.T) {
		b := New("region-source", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		b.RecordSuccess()
		assert.True(t, b.IsOpen())
		b.RecordSuccess()
		assert.False(t, b.IsOpen())
	})

	t.Run("reset", func(t *testing.T) {
		b := New("region-source", WithFailureThreshold(1))
		b.RecordFailure()
		b.Reset()
		assert.Equal(t, StateClosed, b.State())
	})
}

func TestBreaker_IgnoresNonPositiveThresholds(t *testing.T) {
	b := New("region-source", WithFailureThreshold(0), WithSuccessThreshold(-1))
	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())
	b.RecordSuccess()
	assert.False(t, b.IsOpen())
}

func TestBreaker_ConcurrentUse(t *testing.T) {
	b := New("region-source", WithFailureThreshold(50))
	var wg sync.WaitGroup
	opened := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				opened <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(opened)
	assert.Len(t, opened, 1)
	assert.True(t, b.IsOpen())
}
