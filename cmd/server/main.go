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

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TiberiusB/Nondominium/internal/directory/handler"
	"github.com/TiberiusB/Nondominium/internal/directory/roles"
	"github.com/TiberiusB/Nondominium/internal/directory/service"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	jwttoken "github.com/TiberiusB/Nondominium/internal/jwt_token"
	"github.com/TiberiusB/Nondominium/internal/platform/config"
	"github.com/TiberiusB/Nondominium/internal/platform/httpserver"
	"github.com/TiberiusB/Nondominium/internal/platform/logger"
	"github.com/TiberiusB/Nondominium/internal/platform/metrics"
	"github.com/TiberiusB/Nondominium/internal/platform/middleware"
	platformredis "github.com/TiberiusB/Nondominium/internal/platform/redis"
	ratelimitmw "github.com/TiberiusB/Nondominium/internal/ratelimit/middleware"
	"github.com/TiberiusB/Nondominium/internal/ratelimit/store/bucket"
	"github.com/TiberiusB/Nondominium/internal/replication"
)

// main wires the replica: record store, role index, directory service,
// HTTP transport, and the optional Kafka replication peer. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	records, cleanup, err := openRecordStore(ctx, cfg, log)
	if err != nil {
		log.Error("record store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	index := roles.NewIndex(records)
	if err := index.Rebuild(ctx, records); err != nil {
		log.Error("role index rebuild failed", "error", err)
		os.Exit(1)
	}

	svc := service.New(records, index,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithOracle(service.NewCapabilityOracle(index)),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "nondominium-directory", "directory")

	limiter, closeLimiter, err := buildLimiter(cfg, log)
	if err != nil {
		log.Error("rate limiter init failed", "error", err)
		os.Exit(1)
	}
	defer closeLimiter()

	router := buildRouter(svc, jwtService, limiter, log, m)

	if len(cfg.Kafka.Brokers) > 0 {
		peer, err := replication.NewKafkaPeer(ctx, records, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group, log, m)
		if err != nil {
			log.Error("replication init failed", "error", err)
			os.Exit(1)
		}
		defer peer.Close()
		go func() {
			if err := peer.Run(ctx); err != nil {
				log.Error("replication stopped", "error", err)
			}
		}()
		log.Info("replication enabled", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	} else {
		log.Info("replication disabled, running single-replica")
	}

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("directory replica listening", "addr", cfg.Addr, "agent_id", cfg.AgentID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// openRecordStore picks Postgres when a DSN is configured and falls
// back to the in-memory log otherwise.
func openRecordStore(ctx context.Context, cfg config.Server, log *slog.Logger) (store.RecordStore, func(), error) {
	if cfg.PostgresDSN == "" {
		log.Info("record store: in-memory")
		return store.NewInMemory(), func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	pg := store.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("record store: postgres")
	return pg, func() { _ = db.Close() }, nil
}

// buildLimiter uses the shared Redis window when Redis is configured so
// replicas behind one load balancer share a budget.
func buildLimiter(cfg config.Server, log *slog.Logger) (*ratelimitmw.Middleware, func(), error) {
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if redisClient == nil {
		log.Info("rate limiter: in-memory")
		return ratelimitmw.New(bucket.NewInMemoryBucketStore(), log), func() {}, nil
	}
	log.Info("rate limiter: redis")
	return ratelimitmw.New(bucket.NewRedis(redisClient.Client), log), func() { _ = redisClient.Close() }, nil
}

func buildRouter(svc *service.Service, jwtService *jwttoken.JWTService, limiter *ratelimitmw.Middleware, log *slog.Logger, m *metrics.Metrics) http.Handler {
	h := handler.New(svc, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(jwtService, log))
		authed.Use(middleware.ContentTypeJSON)

		h.RegisterReads(authed)
		authed.Group(func(writes chi.Router) {
			writes.Use(limiter.LimitWrites)
			h.RegisterWrites(writes)
		})
	})

	return r
}
