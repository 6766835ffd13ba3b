// Package cache puts a Redis cache-aside layer in front of a project store.
//
// Only the full listing is cached. Entries are keyed by a generation counter
// kept in Redis; Invalidate bumps it so every replica moves to a fresh key and
// a fill that raced an invalidation lands on a key nobody reads. Concurrent
// misses collapse into one backend read, and any Redis failure falls through
// to the backend so the cache can never take the listing down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"landing/internal/project/metrics"
	"landing/internal/project/models"
)

const (
	listKey       = "landing:projects:list:v1"
	generationKey = "landing:projects:gen:v1"
)

func listKeyFor(gen int64) string {
	return listKey + ":" + strconv.FormatInt(gen, 10)
}

// Backend is the project store being cached.
type Backend interface {
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
}

// Store implements Backend with a cached List.
type Store struct {
	next        Backend
	rdb         redis.Cmdable
	ttl         time.Duration
	readTimeout time.Duration
	group       singleflight.Group
	// local counts invalidations seen by this process.
	local   atomic.Int64
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithReadTimeout bounds the shared backend read. The read is detached from
// the caller that started it, so one caller going away cannot fail the rest.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

func New(next Backend, rdb redis.Cmdable, ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = time.Minute
	}
	s := &Store{next: next, rdb: rdb, ttl: ttl, readTimeout: 10 * time.Second, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) List(ctx context.Context) ([]*models.Project, error) {
	gen, cacheable := s.generation(ctx)
	key := listKeyFor(gen)
	if cacheable {
		if cached, ok := s.lookup(ctx, key); ok {
			return cached, nil
		}
	}

	local := s.local.Load()
	flight := key + "/" + strconv.FormatInt(local, 10)
	ch := s.group.DoChan(flight, func() (any, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.readTimeout)
		defer cancel()
		projects, err := s.next.List(readCtx)
		if err != nil {
			return nil, err
		}
		if cacheable && s.local.Load() == local {
			s.fill(readCtx, key, projects)
		}
		return projects, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*models.Project), nil
	}
}

func (s *Store) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.next.Get(ctx, id)
}

// Create writes through and drops the cached listing.
func (s *Store) Create(ctx context.Context, p *models.Project) error {
	if err := s.next.Create(ctx, p); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate moves every replica to a new generation. Failures are logged;
// the old entry still expires after the TTL.
func (s *Store) Invalidate(ctx context.Context) {
	s.local.Add(1)
	if err := s.rdb.Incr(ctx, generationKey).Err(); err != nil {
		s.logger.WarnContext(ctx, "project cache invalidate failed", "error", err)
	}
}

// generation reports the current shared generation. A missing counter is
// generation zero; a Redis failure disables caching for this call.
func (s *Store) generation(ctx context.Context) (int64, bool) {
	gen, err := s.rdb.Get(ctx, generationKey).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		s.count("error")
		s.logger.WarnContext(ctx, "project cache read failed", "error", err)
		return 0, false
	}
}

func (s *Store) lookup(ctx context.Context, key string) ([]*models.Project, bool) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.count("miss")
		} else {
			s.count("error")
			s.logger.WarnContext(ctx, "project cache read failed", "error", err)
		}
		return nil, false
	}
	var projects []*models.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		s.count("error")
		s.logger.WarnContext(ctx, "project cache entry corrupt", "error", err)
		return nil, false
	}
	s.count("hit")
	return projects, true
}

func (s *Store) fill(ctx context.Context, key string, projects []*models.Project) {
	raw, err := json.Marshal(projects)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "project cache write failed", "error", err)
	}
}

func (s *Store) count(result string) {
	if s.metrics != nil {
		s.metrics.IncrementCacheLookup(result)
	}
}
