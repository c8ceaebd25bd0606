package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/haugen-io/outbind/internal/config"
	"github.com/haugen-io/outbind/internal/database"
	"github.com/haugen-io/outbind/internal/http/handler"
	"github.com/haugen-io/outbind/internal/http/middleware"
	"github.com/haugen-io/outbind/internal/queue"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/haugen-io/outbind/docs" // generated swagger docs
)

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	sink           queue.Sink
	auth           *middleware.FunctionKeyAuth
	rateLimiter    *middleware.RateLimiter
	triggerHandler *handler.TriggerHandler
	todoHandler    *handler.TodoHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	sink queue.Sink,
	auth *middleware.FunctionKeyAuth,
	rateLimiter *middleware.RateLimiter,
	triggerHandler *handler.TriggerHandler,
	todoHandler *handler.TodoHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		sink:           sink,
		auth:           auth,
		rateLimiter:    rateLimiter,
		triggerHandler: triggerHandler,
		todoHandler:    todoHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database readiness probe with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Aggregate readiness: database and queue
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}

		if err := rt.sink.HealthCheck(r.Context()); err != nil {
			rt.logger.Error("Queue health check failed", zap.Error(err))
			checks["queue"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
		} else {
			checks["queue"] = map[string]interface{}{"status": "healthy"}
		}

		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Function routes keep the /api prefix of the Functions host
	r.Route("/api", func(r chi.Router) {
		r.Use(rt.auth.Authenticate)

		// HTTP triggers accept both GET and POST
		r.Get("/hello", rt.triggerHandler.Hello)
		r.Post("/hello", rt.triggerHandler.Hello)
		r.Get("/HttpExample", rt.triggerHandler.HttpExample)
		r.Post("/HttpExample", rt.triggerHandler.HttpExample)

		// ToDo rows written by the SQL binding
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", rt.todoHandler.List)
			r.Post("/", rt.todoHandler.Create)
			r.Get("/{id}", rt.todoHandler.GetByID)
			r.Patch("/{id}", rt.todoHandler.Update)
			r.Delete("/{id}", rt.todoHandler.Delete)
		})
	})

	return r
}
