package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bloodlink/internal/escalation"
	escalationmetrics "bloodlink/internal/escalation/metrics"
	jwttoken "bloodlink/internal/jwt_token"
	"bloodlink/internal/matching"
	matchingmetrics "bloodlink/internal/matching/metrics"
	"bloodlink/internal/notify"
	"bloodlink/internal/platform/config"
	"bloodlink/internal/platform/httpserver"
	"bloodlink/internal/platform/kafka"
	"bloodlink/internal/platform/logger"
	"bloodlink/internal/platform/metrics"
	"bloodlink/internal/platform/postgres"
	"bloodlink/internal/platform/redis"
	"bloodlink/internal/ports"
	"bloodlink/internal/scheduler"
	"bloodlink/internal/storage"
	"bloodlink/internal/storage/generation"
	storagepg "bloodlink/internal/storage/postgres"
	httptransport "bloodlink/internal/transport/http"
	"bloodlink/pkg/platform/circuit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bloodlink: %v\n", err)
		os.Exit(1)
	}
}

// run wires the process: store, generation counter, dispatcher, matching
// engine, escalation monitor and the ops HTTP surface. It returns when the
// process is signalled or one of its loops fails.
func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var readiness []httptransport.Option

	store, closeStore, err := openStore(ctx, cfg.Postgres, log)
	if err != nil {
		return err
	}
	defer closeStore()
	if p, ok := store.(httptransport.Pinger); ok {
		readiness = append(readiness, httptransport.WithReadinessCheck("store", p))
	}

	generations, closeGenerations, err := openGenerations(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeGenerations()
	if p, ok := generations.(httptransport.Pinger); ok {
		readiness = append(readiness, httptransport.WithReadinessCheck("redis", p))
	}

	dispatcher, kafkaPinger, closeDispatcher, err := openDispatcher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDispatcher()
	if kafkaPinger != nil {
		readiness = append(readiness, httptransport.WithReadinessCheck("kafka", kafkaPinger))
	}

	matcher := matching.New(store, generations,
		matching.WithLogger(log),
		matching.WithMetrics(matchingmetrics.New()),
	)

	followUps := scheduler.New(ctx, scheduler.WithLogger(log))
	defer followUps.Stop()

	monitor := escalation.New(store, matcher, dispatcher, followUps,
		escalation.WithLogger(log),
		escalation.WithMetrics(escalationmetrics.New()),
		escalation.WithConfig(escalation.ConfigFrom(cfg.Escalation)),
	)
	matcher.SetOnResolved(monitor.CancelFollowUp)

	opts := append(readiness, httptransport.WithHTTPMetrics(metrics.New()))
	if cfg.Admin.JWTSecret != "" {
		opts = append(opts, httptransport.WithOperatorAuth(jwttoken.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.Issuer)))
	} else {
		log.WarnContext(ctx, "ADMIN_JWT_SECRET not set; admin endpoints disabled")
	}
	router := httptransport.NewRouter(httptransport.NewHandler(monitor, matcher, log, opts...))
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		log.InfoContext(gctx, "starting bloodlink",
			"addr", cfg.Server.Addr,
			"environment", cfg.Server.Environment,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.InfoContext(shutdownCtx, "http server stopped")
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.PostgresConfig, log *slog.Logger) (ports.DataStore, func(), error) {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		log.WarnContext(ctx, "DATABASE_URL not set; using in-memory store")
		return storage.NewInMemoryStore(), func() {}, nil
	}
	if cfg.RunMigrations {
		if err := storagepg.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return storagepg.New(db), func() { _ = db.Close() }, nil
}

func openGenerations(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (ports.GenerationCounter, func(), error) {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.WarnContext(ctx, "REDIS_URL not set; match generations are process-local")
		return generation.NewMemoryCounter(), func() {}, nil
	}
	return redisGenerations{RedisCounter: generation.NewRedisCounter(client.Client), client: client},
		func() { _ = client.Close() }, nil
}

// redisGenerations exposes the redis client's Ping next to the counter.
type redisGenerations struct {
	*generation.RedisCounter
	client *redis.Client
}

func (r redisGenerations) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func openDispatcher(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.Dispatcher, httptransport.Pinger, func(), error) {
	breaker := circuit.New("dispatch",
		circuit.WithFailureThreshold(cfg.Dispatch.BreakerThreshold),
		circuit.WithCooldown(cfg.Dispatch.BreakerCooldown),
	)

	client, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		return nil, nil, nil, err
	}
	if client == nil {
		log.WarnContext(ctx, "KAFKA_BROKERS not set; notifications are logged only")
		guarded := notify.NewGuarded(notify.NewLogDispatcher(log), breaker, notify.WithGuardLogger(log))
		return guarded, nil, func() {}, nil
	}
	if cfg.Kafka.CreateTopics {
		if err := kafka.EnsureTopics(ctx, client, cfg.Kafka); err != nil {
			client.Close()
			return nil, nil, nil, err
		}
	}
	producer := notify.NewKafkaDispatcher(client, cfg.Kafka.DonorTopic, cfg.Kafka.AuthoritiesTopic)
	guarded := notify.NewGuarded(producer, breaker, notify.WithGuardLogger(log))
	return guarded, kafka.Pinger{Client: client}, client.Close, nil
}
