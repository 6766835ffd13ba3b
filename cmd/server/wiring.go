package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"landing/internal/lead/events"
	leadHandler "landing/internal/lead/handler"
	leadMetrics "landing/internal/lead/metrics"
	"landing/internal/lead/notifier"
	leadService "landing/internal/lead/service"
	leadStore "landing/internal/lead/store"
	"landing/internal/platform/adminauth"
	"landing/internal/platform/config"
	"landing/internal/platform/kafka"
	httpMetrics "landing/internal/platform/metrics"
	"landing/internal/platform/middleware"
	"landing/internal/platform/mongo"
	"landing/internal/platform/postgres"
	"landing/internal/platform/redis"
	"landing/internal/project/cache"
	projectHandler "landing/internal/project/handler"
	projectMetrics "landing/internal/project/metrics"
	"landing/internal/project/seed"
	projectService "landing/internal/project/service"
	projectStore "landing/internal/project/store"
	rlMetrics "landing/internal/ratelimit/metrics"
	rlMiddleware "landing/internal/ratelimit/middleware"
	"landing/internal/ratelimit/store/bucket"
	httptransport "landing/internal/transport/http"
	"landing/internal/web"
	"landing/pkg/platform/circuit"
	pstrings "landing/pkg/platform/strings"
)

const sweepInterval = time.Minute

type application struct {
	router      http.Handler
	workers     []func(ctx context.Context) error
	workerCtx   context.Context
	stopWorkers context.CancelFunc
	closers     []func(ctx context.Context) error
}

func (a *application) close(log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Warn("failed to close resource", "error", err)
		}
	}
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer) (_ *application, err error) {
	app := &application{}
	app.workerCtx, app.stopWorkers = context.WithCancel(context.Background())
	defer func() {
		if err != nil {
			app.stopWorkers()
			app.close(log)
		}
	}()
	var readiness []httptransport.ReadinessCheck

	// Leads.
	leads, check, closer, err := buildLeadStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	if check != nil {
		readiness = append(readiness, httptransport.ReadinessCheck{Name: string(cfg.Leads.Store), Check: check})
	}

	lm := leadMetrics.New(reg)
	leadOpts := []leadService.Option{
		leadService.WithLogger(log),
		leadService.WithMetrics(lm),
	}
	if cfg.Leads.NotifyMode != config.NotifyOff {
		n, err := buildNotifier(cfg, log)
		if err != nil {
			return nil, err
		}
		switch cfg.Leads.NotifyMode {
		case config.NotifySync:
			leadOpts = append(leadOpts, leadService.WithSyncNotifier(n))
		case config.NotifyAsync:
			d := notifier.NewDispatcher(n, cfg.Leads.QueueSize, log,
				notifier.WithDrainWindow(cfg.Leads.DrainWindow),
				notifier.WithResultHook(func(err error) {
					if err != nil {
						lm.IncrementNotificationFailed()
						return
					}
					lm.IncrementNotificationSent()
				}),
				notifier.WithDropHook(lm.IncrementNotificationDropped),
			)
			leadOpts = append(leadOpts, leadService.WithQueue(d))
			app.workers = append(app.workers, d.Run)
		}
	}

	kafkaClient, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if kafkaClient != nil {
		if err := kafka.EnsureTopic(ctx, kafkaClient, cfg.Kafka.LeadTopic, 1, 1); err != nil {
			log.Warn("could not ensure lead topic, publishing anyway", "topic", cfg.Kafka.LeadTopic, "error", err)
		}
		leadOpts = append(leadOpts, leadService.WithEventPublisher(events.NewKafkaPublisher(kafkaClient, cfg.Kafka.LeadTopic,
			events.WithPublishTimeout(cfg.Kafka.PublishTimeout),
		)))
		readiness = append(readiness, httptransport.ReadinessCheck{Name: "kafka", Check: func(ctx context.Context) error {
			return kafka.Health(ctx, kafkaClient)
		}})
		app.closers = append(app.closers, func(ctx context.Context) error {
			if err := kafkaClient.Flush(ctx); err != nil {
				kafkaClient.Close()
				return err
			}
			kafkaClient.Close()
			return nil
		})
	}
	leadSvc := leadService.New(leads, leadOpts...)

	// Shared Redis: project cache and rate limiting.
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		readiness = append(readiness, httptransport.ReadinessCheck{Name: "redis", Check: rdb.Health})
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
	}

	// Projects.
	pm := projectMetrics.New(reg)
	projects, err := buildProjectStore(ctx, cfg, log, pm, rdb, app, &readiness)
	if err != nil {
		return nil, err
	}
	projectSvc := projectService.New(projects,
		projectService.WithLogger(log),
		projectService.WithMetrics(pm),
	)
	if cfg.Projects.SeedFile != "" {
		file, err := seed.LoadFile(cfg.Projects.SeedFile)
		if err != nil {
			return nil, err
		}
		res, err := seed.Apply(ctx, projectSvc, file)
		if err != nil {
			return nil, fmt.Errorf("seed projects: %w", err)
		}
		log.Info("project seed applied", "created", res.Created, "skipped", res.Skipped)
	}

	// Rate limiting.
	memBuckets := bucket.NewInMemoryBucketStore()
	app.workers = append(app.workers, func(ctx context.Context) error {
		return memBuckets.RunSweeper(ctx, sweepInterval)
	})
	var limiter *rlMiddleware.Limiter
	if rdb != nil {
		limiter = rlMiddleware.NewLimiter(bucket.NewRedisBucketStore(rdb.Client),
			rlMiddleware.WithFallback(memBuckets, circuit.New("ratelimit-redis")),
			rlMiddleware.WithLimiterLogger(log),
		)
	} else {
		limiter = rlMiddleware.NewLimiter(memBuckets, rlMiddleware.WithLimiterLogger(log))
	}
	rl := rlMiddleware.New(limiter, log,
		rlMiddleware.WithMetrics(rlMetrics.New(reg)),
		rlMiddleware.WithDisabled(cfg.RateLimit.LeadsPerWindow == 0),
	)
	leadLimit := rl.Limit("leads", cfg.RateLimit.LeadsPerWindow, cfg.RateLimit.Window)

	// Admin.
	var requireAdmin func(http.Handler) http.Handler
	admin := adminauth.New(cfg.Admin.JWTSecret, cfg.Admin.Issuer, adminauth.WithAPIKeyHash(cfg.Admin.APIKeyHash))
	if admin.Enabled() {
		requireAdmin = middleware.RequireAdmin(admin, log)
	} else {
		log.Info("admin routes disabled: no ADMIN_JWT_SECRET or ADMIN_API_KEY_HASH")
	}

	app.router = httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        httpMetrics.New(reg),
		Gatherer:       gathererOf(reg),
		ClientOrigins:  splitOrigins(cfg.ClientOrigin),
		RequestTimeout: cfg.RequestTimeout,
		TrustedProxies: cfg.TrustedProxies,
		Readiness:      readiness,
		Handlers: []httptransport.Registrar{
			leadHandler.New(leadSvc, log, leadHandler.WithRateLimit(leadLimit)),
			projectHandler.New(projectSvc, log, requireAdmin),
			web.New(leadSvc, projectSvc, log,
				web.WithRateLimit(leadLimit),
				web.WithSecureCookies(cfg.IsProduction()),
				web.WithBrand(cfg.Mail.FromName),
			),
		},
	})
	return app, nil
}

func buildLeadStore(ctx context.Context, cfg config.Server) (leadService.LeadStore, func(context.Context) error, func(context.Context) error, error) {
	switch cfg.Leads.Store {
	case config.LeadStoreMemory:
		return leadStore.NewInMemory(), nil, nil, nil
	case config.LeadStoreSQLite:
		s, err := leadStore.OpenSQLite(ctx, cfg.Leads.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, func(context.Context) error { return s.Close() }, nil
	case config.LeadStorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := leadStore.Migrate(ctx, db, leadStore.DialectPostgres); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return leadStore.NewPostgres(db), db.PingContext, func(context.Context) error { return db.Close() }, nil
	default:
		return leadStore.NewFile(cfg.Leads.File), nil, nil, nil
	}
}

// buildNotifier returns the owner notifier behind a circuit breaker. Without
// SMTP credentials leads are only logged.
func buildNotifier(cfg config.Server, log *slog.Logger) (notifier.Notifier, error) {
	var n notifier.Notifier
	if cfg.Mail.Enabled() {
		smtp, err := notifier.NewSMTP(cfg.Mail)
		if err != nil {
			return nil, err
		}
		n = smtp
	} else {
		log.Warn("SMTP credentials not set, new leads will only be logged")
		n = notifier.NewLogNotifier(log)
	}
	return notifier.NewBreaker(n, circuit.New("smtp", circuit.WithCooldown(time.Minute)), log), nil
}

func buildProjectStore(
	ctx context.Context,
	cfg config.Server,
	log *slog.Logger,
	pm *projectMetrics.Metrics,
	rdb *redis.Client,
	app *application,
	readiness *[]httptransport.ReadinessCheck,
) (projectService.ProjectStore, error) {
	var store projectService.ProjectStore
	client, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	if client != nil {
		ms := projectStore.NewMongo(client.Collection(cfg.Mongo.Collection))
		if err := ms.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		store = ms
		*readiness = append(*readiness, httptransport.ReadinessCheck{Name: "mongo", Check: client.Health})
		app.closers = append(app.closers, client.Close)
	} else {
		log.Warn("MONGO_URI not set, projects are kept in memory")
		store = projectStore.NewInMemory()
	}

	if rdb != nil && cfg.Projects.CacheTTL > 0 {
		store = cache.New(store, rdb.Client, cfg.Projects.CacheTTL,
			cache.WithLogger(log),
			cache.WithMetrics(pm),
			cache.WithReadTimeout(cfg.RequestTimeout),
		)
	}
	return store, nil
}

func gathererOf(reg prometheus.Registerer) prometheus.Gatherer {
	if g, ok := reg.(prometheus.Gatherer); ok {
		return g
	}
	return prometheus.DefaultGatherer
}

func splitOrigins(raw string) []string {
	return pstrings.DedupeAndTrim(strings.Split(raw, ","))
}
