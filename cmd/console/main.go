// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/edition-console/internal/admin"
	"github.com/carterperez-dev/templates/edition-console/internal/auth"
	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/config"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
	"github.com/carterperez-dev/templates/edition-console/internal/dashboard"
	"github.com/carterperez-dev/templates/edition-console/internal/edition"
	"github.com/carterperez-dev/templates/edition-console/internal/health"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
	"github.com/carterperez-dev/templates/edition-console/internal/server"
	"github.com/carterperez-dev/templates/edition-console/internal/session"
	"github.com/carterperez-dev/templates/edition-console/internal/user"
	"github.com/carterperez-dev/templates/edition-console/internal/view"
)

const (
	drainDelay     = 5 * time.Second
	janitorEvery   = 10 * time.Minute
	templateError  = "error.html"
	superAdminRole = string(user.RoleSuperAdmin)
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	envPath := flag.String("env", ".env", "path to dotenv file")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read env file", "path", *envPath, "error", err)
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// sessionDeps is everything the chosen session store brought up.
type sessionDeps struct {
	store      session.Store
	redis      *core.Redis
	db         *core.Database
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
}

func (d *sessionDeps) close(logger *slog.Logger) {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"backend", cfg.Backend.BaseURL,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	deps, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	var (
		metrics          *core.Metrics
		loginObserver    auth.LoginObserver
		mutationObserver edition.MutationObserver
		clientOpts       []backend.Option
	)
	if cfg.Metrics.Enabled {
		metrics = core.NewMetrics()
		loginObserver = metrics
		mutationObserver = metrics
		clientOpts = append(clientOpts, backend.WithObserver(metrics))
	}

	client, err := backend.NewClient(cfg.Backend, clientOpts...)
	if err != nil {
		return err
	}

	signer, err := auth.NewCookieSigner(cfg.Session)
	if err != nil {
		return err
	}

	sessions := session.NewManager(deps.store, signer, cfg.Session)
	go sessions.RunJanitor(ctx, janitorEvery)

	renderer, err := view.New(cfg.App.Name, view.WithFlashSource(sessions.PopFlashes))
	if err != nil {
		return err
	}

	authHandler := auth.NewHandler(auth.NewService(client, sessions, loginObserver), renderer)
	userHandler := user.NewHandler(user.NewService(client), renderer)
	editionHandler := edition.NewHandler(
		edition.NewService(client, mutationObserver),
		renderer,
		sessions,
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		SessionStore: deps.store,
		Backend:      client,
		DBStats:      deps.dbStats,
		RedisStats:   deps.redisStats,
	})
	dashboardHandler := dashboard.NewHandler(renderer, adminHandler)
	healthHandler := health.NewHandler(deps.store, client)

	var redisClient *redis.Client
	if deps.redis != nil {
		redisClient = deps.redis.Client
	}
	clientIP, err := middleware.NewClientIP(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	loginLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		KeyFunc:   clientIP.KeyByIPAndPath,
		FailOpen:  true,
		OnLimited: authHandler.RateLimited,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.LoadSession(sessions))

	healthHandler.RegisterRoutes(router)

	if metrics != nil {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	superAdmin := middleware.RequireRole(superAdminRole)

	authHandler.RegisterRoutes(router, loginLimiter.Handler)
	dashboardHandler.RegisterRoutes(router)
	editionHandler.RegisterRoutes(router, superAdmin)
	userHandler.RegisterRoutes(router, superAdmin)
	adminHandler.RegisterRoutes(router, superAdmin)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if middleware.WantsJSON(r) {
			core.NotFound(w, "page")
			return
		}
		renderer.Render(w, r, http.StatusNotFound, templateError, "Not found",
			map[string]string{"Message": "The page you requested does not exist."})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

// openSessionStore connects the configured store. Redis is also dialed when
// only the login limiter needs it.
func openSessionStore(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*sessionDeps, error) {
	deps := &sessionDeps{}

	if cfg.Redis.URL != "" {
		rdb, err := core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		deps.redis = rdb
		deps.redisStats = rdb.Client.PoolStats
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	}

	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		deps.store = session.NewRedisStore(deps.redis.Client)

	case config.SessionStorePostgres:
		db, err := core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			deps.close(logger)
			return nil, err
		}
		deps.db = db
		deps.dbStats = db.DB.Stats
		logger.Info("database connected",
			"max_open_conns", cfg.Database.MaxOpenConns,
			"max_idle_conns", cfg.Database.MaxIdleConns,
		)

		store := session.NewPostgresStore(db.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			deps.close(logger)
			return nil, err
		}
		deps.store = store

	default:
		deps.store = session.NewMemoryStore()
	}

	logger.Info("session store ready", "kind", deps.store.Kind())
	return deps, nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
