// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/edition-console/internal/core"
)

type StoreChecker interface {
	Ping(ctx context.Context) error
	Kind() string
}

type BackendChecker interface {
	Ping(ctx context.Context) error
	BaseURL() string
}

type Handler struct {
	store      StoreChecker
	backend    BackendChecker
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
}

// HandlerConfig wires the optional pool statistics of whichever session
// store is in use; nil funcs are reported as absent.
type HandlerConfig struct {
	SessionStore StoreChecker
	Backend      BackendChecker
	DBStats      func() sql.DBStats
	RedisStats   func() *redis.PoolStats
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		store:      cfg.SessionStore,
		backend:    cfg.Backend,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Get("/stats/session", h.GetSessionStats)
	})
}

// Snapshot reports the console's own state. It never calls the backend.
func (h *Handler) Snapshot(ctx context.Context) *SystemStats {
	return &SystemStats{
		SessionStore: h.sessionStatus(ctx),
		Runtime:      readRuntimeStats(),
	}
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats := h.Snapshot(r.Context())
	stats.Backend = h.backendStatus(r.Context())

	core.OK(w, stats)
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntimeStats())
}

func (h *Handler) GetSessionStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.sessionStatus(r.Context()))
}

func (h *Handler) sessionStatus(ctx context.Context) SessionStoreStatus {
	status := SessionStoreStatus{
		Database: h.getDBStats(),
		Redis:    h.getRedisStats(),
	}

	if h.store == nil {
		return status
	}

	status.Kind = h.store.Kind()
	status.Healthy = h.store.Ping(ctx) == nil

	return status
}

func (h *Handler) backendStatus(ctx context.Context) *BackendStatus {
	if h.backend == nil {
		return nil
	}

	start := time.Now()
	err := h.backend.Ping(ctx)

	return &BackendStatus{
		URL:       h.backend.BaseURL(),
		Reachable: err == nil,
		Latency:   time.Since(start).String(),
	}
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}
