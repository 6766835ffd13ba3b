//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"landing/internal/project/cache"
	"landing/internal/project/models"
	"landing/internal/project/store"
	"landing/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestListSurvivesAcrossInstances() {
	ctx := context.Background()
	backend := store.NewInMemory()
	p, err := models.NewProject("Marina", "Herzliya", 4100000, "", []string{"https://img/m.jpg"}, "", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(backend.Create(ctx, p))

	first := cache.New(backend, s.redis.Client, time.Minute)
	list, err := first.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)

	// A second instance with an empty backend sees the shared cache entry.
	second := cache.New(store.NewInMemory(), s.redis.Client, time.Minute)
	cached, err := second.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(cached, 1)
	s.Equal(p.ID, cached[0].ID)

	second.Invalidate(ctx)
	empty, err := second.List(ctx)
	s.Require().NoError(err)
	s.Empty(empty)

	// The first instance follows the shared generation and reads the entry
	// the second one filled.
	refreshed, err := first.List(ctx)
	s.Require().NoError(err)
	s.Empty(refreshed)
	gen, err := s.redis.Client.Get(ctx, "landing:projects:gen:v1").Int64()
	s.Require().NoError(err)
	s.Equal(int64(1), gen)
}

func (s *RedisCacheSuite) TestEntryExpires() {
	ctx := context.Background()
	backend := store.NewInMemory()
	c := cache.New(backend, s.redis.Client, time.Second)

	_, err := c.List(ctx)
	s.Require().NoError(err)
	ttl, err := s.redis.Client.TTL(ctx, "landing:projects:list:v1:0").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Second)
}
