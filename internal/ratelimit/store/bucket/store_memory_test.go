package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 5
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	clock time.Time
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.store = NewInMemoryBucketStore()
	s.clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.store.now = func() time.Time { return s.clock }
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) advance(d time.Duration) {
	s.clock = s.clock.Add(d)
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "allow:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.clock.Add(testWindow), result.ResetAt)
	})

	s.Run("request over limit denied with retry after", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "allow:over", testLimit, testWindow)
			require.NoError(s.T(), err)
		}
		s.advance(15 * time.Second)
		result, err := s.store.Allow(s.ctx, "allow:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Equal(45, result.RetryAfter)
	})

	s.Run("window slides instead of resetting", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "allow:slide", testLimit, testWindow)
			require.NoError(s.T(), err)
			s.advance(10 * time.Second)
		}
		// oldest request is now 50s old; 11s later it falls out
		result, err := s.store.Allow(s.ctx, "allow:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)

		s.advance(11 * time.Second)
		result, err = s.store.Allow(s.ctx, "allow:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(0, result.Remaining)
	})

	s.Run("keys are independent", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "allow:a", testLimit, testWindow)
			require.NoError(s.T(), err)
		}
		result, err := s.store.Allow(s.ctx, "allow:b", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})
}

func (s *InMemoryBucketStoreSuite) TestResetAndCount() {
	for range 3 {
		_, err := s.store.Allow(s.ctx, "count", testLimit, testWindow)
		s.Require().NoError(err)
	}
	count, err := s.store.GetCurrentCount(s.ctx, "count")
	s.Require().NoError(err)
	s.Equal(3, count)

	s.Require().NoError(s.store.Reset(s.ctx, "count"))
	count, err = s.store.GetCurrentCount(s.ctx, "count")
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *InMemoryBucketStoreSuite) TestSweepDropsIdleBuckets() {
	_, err := s.store.Allow(s.ctx, "idle", testLimit, testWindow)
	s.Require().NoError(err)
	s.advance(30 * time.Second)
	_, err = s.store.Allow(s.ctx, "busy", testLimit, testWindow)
	s.Require().NoError(err)

	s.advance(31 * time.Second)
	s.Equal(1, s.store.Sweep())
	s.Len(s.store.buckets, 1)
	s.Contains(s.store.buckets, "busy")
}

func (s *InMemoryBucketStoreSuite) TestConcurrentAllowNeverExceedsLimit() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.ctx, "concurrent", testLimit, testWindow)
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}
