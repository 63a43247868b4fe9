package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tictac_arena/internal/config"
	"tictac_arena/internal/db"
	"tictac_arena/internal/game"
	httpServer "tictac_arena/internal/http"
	"tictac_arena/internal/http/middleware"
	"tictac_arena/internal/logger"
	"tictac_arena/internal/migrations"
	"tictac_arena/internal/outcome"
	"tictac_arena/internal/repository"
	"tictac_arena/internal/service"
	"tictac_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jwts, err := service.NewJWTService(cfg.JWTSecret, service.DefaultTokenTTL)
	if err != nil {
		logger.Fatal("jwt", "error", err)
	}

	var sinks outcome.Multi

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		m, err := migrations.New(cfg.DatabaseURL, logger.With("component", "migrate"))
		if err != nil {
			logger.Fatal("migrations", "error", err)
		}
		if err := m.Up(); err != nil {
			logger.Fatal("migrate up", "error", err)
		}
		_ = m.Close()

		pool = db.MustConnect(ctx, cfg.DatabaseURL)
		defer pool.Close()
		sinks = append(sinks, outcome.NewStore(repository.NewMatchRepository(pool), logger.With("component", "outcome-store")))
	} else {
		logger.Warn("DATABASE_URL not set; accounts, stats and match history are disabled")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = middleware.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable; rate limits are per instance", "error", err)
		} else {
			defer rdb.Close()
		}
	}

	if cfg.NATSURL != "" {
		nc, err := outcome.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn("nats unavailable; outcomes are not published", "error", err)
		} else {
			defer nc.Drain()
			sinks = append(sinks, outcome.NewPublisher(nc, cfg.NATSOutcomeSubject))
			logger.Info("publishing outcomes", "subject", cfg.NATSOutcomeSubject, "server", nc.ConnectedUrlRedacted())
		}
	}

	var sink outcome.Sink = outcome.Discard
	var async *outcome.Async
	if len(sinks) > 0 {
		async = outcome.NewAsync(sinks, 1024, 5*time.Second, logger.With("component", "outcomes"))
		sink = async
	}

	hub := ws.NewHub(
		ws.WithSink(sink),
		ws.WithLinger(cfg.SessionLinger),
		ws.WithLogger(logger.With("component", "hub")),
	)
	hub.StartCleanup(ctx, cfg.CleanupInterval)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigin))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:  cfg,
		DB:      pool,
		Redis:   rdb,
		Hub:     hub,
		JWT:     jwts,
		Bots:    game.NewFactory(nil),
		Version: version,
		Logger:  logger.Get(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if async != nil {
		if err := async.Close(shutdownCtx); err != nil {
			logger.Error("flush outcomes", "error", err)
		}
	}

	logger.Info("server exited")
}
