package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	adminhandler "lifeline/internal/admin/handler"
	adminservice "lifeline/internal/admin/service"
	authhandler "lifeline/internal/auth/handler"
	"lifeline/internal/auth/lockout"
	authmetrics "lifeline/internal/auth/metrics"
	authservice "lifeline/internal/auth/service"
	lockoutstore "lifeline/internal/auth/store/lockout"
	"lifeline/internal/auth/store/revocation"
	brhandler "lifeline/internal/bloodrequest/handler"
	brservice "lifeline/internal/bloodrequest/service"
	donationhandler "lifeline/internal/donation/handler"
	donationmetrics "lifeline/internal/donation/metrics"
	donationservice "lifeline/internal/donation/service"
	donorhandler "lifeline/internal/donor/handler"
	donorservice "lifeline/internal/donor/service"
	hospitalhandler "lifeline/internal/hospital/handler"
	hospitalservice "lifeline/internal/hospital/service"
	httpapi "lifeline/internal/http"
	jwttoken "lifeline/internal/jwt_token"
	lbcache "lifeline/internal/leaderboard/cache"
	lbhandler "lifeline/internal/leaderboard/handler"
	lbmetrics "lifeline/internal/leaderboard/metrics"
	lbservice "lifeline/internal/leaderboard/service"
	"lifeline/internal/platform/config"
	"lifeline/internal/platform/httpserver"
	"lifeline/internal/platform/kafka"
	"lifeline/internal/platform/logger"
	"lifeline/internal/platform/metrics"
	"lifeline/internal/platform/postgres"
	platformredis "lifeline/internal/platform/redis"
	"lifeline/internal/storage"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/audit/publisher"
	auditmemory "lifeline/pkg/platform/audit/store/memory"
	auditpostgres "lifeline/pkg/platform/audit/store/postgres"
	"lifeline/pkg/platform/audit/worker"
)

// backend is every store the services need. storage.Memory and
// storage.Postgres both satisfy it.
type backend interface {
	authservice.UserStore
	authservice.DonorCreator
	donorservice.UserStore
	donorservice.DonorStore
	donorservice.ScheduleReader
	hospitalservice.Store
	donationservice.ScheduleStore
	donationservice.RecordStore
	donationservice.DonorStore
	donationservice.DonorCounters
	donationservice.HospitalStore
	donationservice.HospitalCounters
	donationservice.UserStore
	brservice.Store
	adminservice.Store
	lbservice.RowStore
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	health := map[string]httpapi.HealthCheck{}

	var (
		store        backend
		auditStore   audit.Store
		outbox       *auditpostgres.Store
		failedLogins lockout.Store
	)
	if cfg.Database.URL != "" {
		db, err := openDatabase(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()
		store = storage.NewPostgres(db)
		outbox = auditpostgres.New(db)
		auditStore = outbox
		failedLogins = lockoutstore.NewPostgres(db)
		health["database"] = db.PingContext
		log.Info("using postgres storage")
	} else {
		store = storage.NewMemory()
		auditStore = auditmemory.NewInMemoryStore()
		failedLogins = lockoutstore.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var trl authservice.TokenRevocationList = revocation.NewInMemoryTRL(nil)
	var leaderboardCache lbservice.Cache
	if redisClient != nil {
		defer redisClient.Close()
		trl = revocation.NewRedisTRL(redisClient.Client)
		leaderboardCache = lbcache.NewRedisCache(redisClient.Client, cfg.Leaderboard.CacheTTL)
		health["redis"] = redisClient.Health
		log.Info("redis enabled for token revocation and leaderboard cache")
	}

	var relay *worker.Worker
	if outbox != nil && len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		health["kafka"] = producer.Ping
		relay = worker.NewWorker(outbox, producer, log, cfg.Kafka.RelayInterval)
		log.Info("audit outbox relay enabled", "topic", cfg.Kafka.AuditTopic)
	}

	platformMetrics := metrics.New()
	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	auditPublisher := publisher.New(auditStore, publisher.WithLogger(log))

	loginGuard, err := lockout.New(failedLogins,
		lockout.WithLogger(log),
		lockout.WithConfig(lockout.Config{
			MaxAttempts:  cfg.Auth.LoginMaxAttempts,
			Window:       cfg.Auth.LoginLockoutWindow,
			LockDuration: cfg.Auth.LoginLockoutDuration,
		}),
	)
	if err != nil {
		return err
	}

	authSvc := authservice.New(store, store, store, tokens, trl, authservice.Config{
		AccessTokenTTL:   cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL:  cfg.Auth.RefreshTokenTTL,
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
	},
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditPublisher),
		authservice.WithLoginGuard(loginGuard),
		authservice.WithMetrics(authmetrics.New()),
		authservice.WithPlatformMetrics(platformMetrics),
	)
	if err := bootstrapAdmin(ctx, authSvc, cfg.Bootstrap, log); err != nil {
		return err
	}

	donorSvc := donorservice.New(store, store, store, donorservice.WithLogger(log))
	hospitalSvc := hospitalservice.New(store, store,
		hospitalservice.WithLogger(log),
		hospitalservice.WithAuditPublisher(auditPublisher),
	)

	lbOpts := []lbservice.Option{lbservice.WithLogger(log), lbservice.WithMetrics(lbmetrics.New())}
	if leaderboardCache != nil {
		lbOpts = append(lbOpts, lbservice.WithCache(leaderboardCache))
	}
	leaderboardSvc := lbservice.New(store, lbOpts...)

	donationSvc := donationservice.New(donationservice.Stores{
		Schedules:        store,
		Records:          store,
		Donors:           store,
		DonorCounters:    store,
		Hospitals:        store,
		HospitalCounters: store,
		Users:            store,
		Tx:               store,
	}, donorSvc,
		donationservice.WithLogger(log),
		donationservice.WithAuditPublisher(auditPublisher),
		donationservice.WithLeaderboard(leaderboardSvc),
		donationservice.WithMetrics(donationmetrics.New()),
	)
	bloodRequestSvc := brservice.New(store, store,
		brservice.WithLogger(log),
		brservice.WithAuditPublisher(auditPublisher),
	)
	adminSvc := adminservice.New(store, auditPublisher)

	authH := authhandler.New(authSvc, log)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:      log,
		Metrics:     platformMetrics,
		Verifier:    tokens,
		Revocations: trl,
		Health:      health,
	},
		[]httpapi.PublicModule{authH},
		[]httpapi.Module{
			authH,
			donorhandler.New(donorSvc, log),
			hospitalhandler.New(hospitalSvc, log),
			donationhandler.New(donationSvc, log),
			lbhandler.New(leaderboardSvc, log),
			brhandler.New(bloodRequestSvc, log),
			adminhandler.New(adminSvc, log),
		},
	)

	srv := httpserver.New(cfg.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting lifeline", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	db, err := postgres.Open(ctx, postgres.Config{
		URL:             cfg.URL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}
	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(applied) > 0 {
		log.Info("database migrations applied", "versions", applied)
	}
	return db, nil
}

func bootstrapAdmin(ctx context.Context, auth *authservice.Service, cfg config.BootstrapAdmin, log *slog.Logger) error {
	if cfg.Username == "" || cfg.Password == "" {
		return nil
	}
	created, err := auth.EnsureAdmin(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return err
	}
	if created {
		log.Info("bootstrap admin created", "username", cfg.Username)
	}
	return nil
}
