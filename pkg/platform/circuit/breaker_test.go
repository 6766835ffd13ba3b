package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fail(b *Breaker, n int) (opened bool) {
	for range n {
		_, change := b.RecordFailure()
		opened = opened || change.Opened
	}
	return opened
}

func succeed(b *Breaker, n int) (closed bool) {
	for range n {
		_, change := b.RecordSuccess()
		closed = closed || change.Closed
	}
	return closed
}

func TestNewBreakerIsClosed(t *testing.T) {
	b := New("redis")
	assert.Equal(t, "redis", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		run      func(b *Breaker)
		wantOpen bool
	}{
		{
			name:     "below failure threshold stays closed",
			opts:     []Option{WithFailureThreshold(3)},
			run:      func(b *Breaker) { fail(b, 2) },
			wantOpen: false,
		},
		{
			name:     "reaching failure threshold opens",
			opts:     []Option{WithFailureThreshold(3)},
			run:      func(b *Breaker) { require.True(t, fail(b, 3)) },
			wantOpen: true,
		},
		{
			name: "a success while closed restarts the failure count",
			opts: []Option{WithFailureThreshold(3)},
			run: func(b *Breaker) {
				fail(b, 2)
				succeed(b, 1)
				fail(b, 2)
			},
			wantOpen: false,
		},
		{
			name: "one success is not enough to close",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			run: func(b *Breaker) {
				fail(b, 1)
				assert.False(t, succeed(b, 1))
			},
			wantOpen: true,
		},
		{
			name: "success threshold closes",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			run: func(b *Breaker) {
				fail(b, 1)
				assert.True(t, succeed(b, 2))
			},
			wantOpen: false,
		},
		{
			name: "a failed probe restarts the success count",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(3)},
			run: func(b *Breaker) {
				fail(b, 1)
				succeed(b, 2)
				assert.False(t, fail(b, 1), "already open, no new transition")
				succeed(b, 2)
			},
			wantOpen: true,
		},
		{
			name: "reset closes",
			opts: []Option{WithFailureThreshold(1)},
			run: func(b *Breaker) {
				fail(b, 1)
				b.Reset()
			},
			wantOpen: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("smtp", tt.opts...)
			tt.run(b)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
		})
	}
}

func TestRecordFailureReportsFallback(t *testing.T) {
	b := New("redis", WithFailureThreshold(2))

	useFallback, _ := b.RecordFailure()
	assert.False(t, useFallback, "primary still trusted below threshold")

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}

func TestAllowProbesAfterCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("smtp",
		WithFailureThreshold(1),
		WithCooldown(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	b.RecordFailure()
	assert.False(t, b.Allow(), "refuses during cooldown")

	now = now.Add(59 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "lets a probe through once cooldown elapsed")

	b.RecordFailure()
	assert.False(t, b.Allow(), "a failed probe restarts the cooldown")
}

func TestBreakerConcurrentUse(t *testing.T) {
	b := New("redis", WithFailureThreshold(50))
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Allow()
			b.RecordFailure()
		}()
	}
	wg.Wait()
	assert.True(t, b.IsOpen())
}
