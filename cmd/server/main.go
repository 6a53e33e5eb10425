// @title                       Jobs API
// @version                     1.0
// @description                 Track job applications. Every job belongs to the user who created it.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/jobs/api/internal/config"
	"github.com/forgo/jobs/api/internal/database"
	"github.com/forgo/jobs/api/internal/middleware"
	"github.com/forgo/jobs/api/internal/repository"
	"github.com/forgo/jobs/api/internal/server"
	"github.com/forgo/jobs/api/internal/service"
	"github.com/forgo/jobs/api/pkg/jwt"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file; environment variables still apply")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	jwtService, err := jwt.NewService(jwt.Config{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Lifetime,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)

	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
	})
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})
	jobService := service.NewJobService(service.JobServiceConfig{
		JobRepo: jobRepo,
	})

	limiter, stopLimiter := newLimiter(cfg)
	defer stopLimiter()

	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL: cfg.Idempotency.TTL,
	})
	defer idempotencyStore.Stop()

	handler := server.New(server.Options{
		Auth:           authService,
		Jobs:           jobService,
		DB:             db,
		Limiter:        limiter,
		Idempotency:    idempotencyStore,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustProxy:     cfg.Server.TrustProxy,
		IsDevelopment:  cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

// newLimiter shares counters through Redis when REDIS_URL is set and keeps
// them in process otherwise.
func newLimiter(cfg *config.Config) (middleware.Limiter, func()) {
	rlCfg := middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.Error("invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			slog.Warn("redis unreachable, requests are let through until it recovers", slog.String("error", err.Error()))
		} else {
			slog.Info("rate limiting through redis", slog.String("addr", opts.Addr))
		}
		return middleware.NewRedisRateLimiter(client, rlCfg), func() { _ = client.Close() }
	}

	rl := middleware.NewRateLimiter(rlCfg)
	return rl, rl.Stop
}
