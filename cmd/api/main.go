// Command api runs the CarMarket HTTP server.
//
// This is the composition root: it loads configuration, connects
// infrastructure, wires the domain modules together and starts the
// server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"carmarket_backend/internal/auth"
	"carmarket_backend/internal/bookmarks"
	"carmarket_backend/internal/email"
	appevents "carmarket_backend/internal/events"
	apphttp "carmarket_backend/internal/http"
	"carmarket_backend/internal/http/router"
	"carmarket_backend/internal/listings"
	"carmarket_backend/internal/messages"
	"carmarket_backend/internal/notification"
	"carmarket_backend/internal/scheduler"
	"carmarket_backend/internal/storage"
	"carmarket_backend/platform/config"
	"carmarket_backend/platform/db"
	"carmarket_backend/platform/logger"
	"carmarket_backend/platform/ratelimit"
)

const migrationsDir = "migrations"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Env)
	log.Info("starting api", "env", cfg.Env, "addr", cfg.HTTPAddr)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := connectWithRetry(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations applied")

	var storageSvc storage.Service
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		if err := minioSvc.EnsureBucketExists(ctx, cfg.MinioBucketCarImages); err != nil {
			return fmt.Errorf("ensure bucket %q: %w", cfg.MinioBucketCarImages, err)
		}
		storageSvc = minioSvc
		log.Info("object storage ready", "bucket", cfg.MinioBucketCarImages)
	} else {
		log.Warn("object storage disabled, image uploads unavailable")
	}

	limiter, redisClient, err := newLimiter(cfg)
	if err != nil {
		return fmt.Errorf("init rate limiter: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var taskQueue notification.Queue
	if cfg.RedisURL != "" {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("init task queue: %w", err)
		}
		defer client.Close()
		taskQueue = client
		log.Info("task queue ready", "queue", cfg.AsynqQueueName)
	} else {
		log.Warn("redis not configured, notifications sent inline")
	}

	mail := newMailSender(cfg, log)

	bus := appevents.NewInMemoryBus(log)
	notification.NewModule(taskQueue, mail, log).RegisterHandlers(bus)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: bus,
		Limiter:  limiter,
		Modules: []apphttp.Module{
			auth.NewModule(pool, cfg, bus, log),
			listings.NewModule(pool, storageSvc, cfg.MinioBucketCarImages, bus, log),
			bookmarks.NewModule(pool),
			messages.NewModule(pool, bus),
		},
	}

	engine := router.New(app)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("api listening", "addr", cfg.HTTPAddr)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// connectWithRetry pings the database a few times before giving up, so
// the api survives a database that is still coming up.
func connectWithRetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pgxpool.Pool, error) {
	const attempts = 5

	var lastErr error
	for i := 1; i <= attempts; i++ {
		pool, err := db.NewPool(ctx, cfg)
		if err == nil {
			return pool, nil
		}
		lastErr = err
		log.Warn("database not ready", "attempt", i, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i) * time.Second):
		}
	}
	return nil, lastErr
}

// newLimiter picks Redis-backed rate limiting when Redis is configured,
// so counts are shared across replicas, and falls back to an in-process
// fixed window otherwise.
func newLimiter(cfg *config.Config) (ratelimit.Limiter, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemory(cfg.RateLimitRequests, cfg.RateLimitWindow), nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	if opt.TLSConfig != nil && cfg.RedisTLSInsecure {
		opt.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opt)
	return ratelimit.NewRedis(client, cfg.RateLimitRequests, cfg.RateLimitWindow), client, nil
}

func newMailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.EmailEnabled {
		log.Warn("email disabled, outgoing mail is dropped")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
}
