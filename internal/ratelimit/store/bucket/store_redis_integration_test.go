//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"landing/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
	clock time.Time
}

func TestRedisBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.clock = time.Now().Truncate(time.Millisecond)
	s.store = NewRedisBucketStore(s.redis.Client)
	s.store.now = func() time.Time { return s.clock }
}

func (s *RedisBucketStoreSuite) TestLimitEnforcedAcrossCalls() {
	ctx := context.Background()
	for i := range 3 {
		result, err := s.store.Allow(ctx, "rl:leads:10.0.0.1", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(2-i, result.Remaining)
	}

	s.clock = s.clock.Add(20 * time.Second)
	result, err := s.store.Allow(ctx, "rl:leads:10.0.0.1", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(40, result.RetryAfter)
}

func (s *RedisBucketStoreSuite) TestWindowSlides() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "rl:leads:10.0.0.2", 1, time.Minute)
	s.Require().NoError(err)

	s.clock = s.clock.Add(time.Minute + time.Millisecond)
	result, err := s.store.Allow(ctx, "rl:leads:10.0.0.2", 1, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisBucketStoreSuite) TestKeyExpires() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "rl:leads:10.0.0.3", 1, time.Minute)
	s.Require().NoError(err)

	ttl, err := s.redis.Client.PTTL(ctx, "rl:leads:10.0.0.3").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}
