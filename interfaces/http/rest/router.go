package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/application/aggregation"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/infrastructure/config"
	"github.com/rob-hayward/ProjectZer0-sub005/interfaces/http/rest/handlers"
	"github.com/rob-hayward/ProjectZer0-sub005/interfaces/http/rest/middleware"
	"github.com/rob-hayward/ProjectZer0-sub005/repository"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	aggregator *aggregation.Aggregator
	repos      map[content.NodeType]*repository.ContentRepository
	userState  *repository.UserStateStore
	registry   *prometheus.Registry
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	aggregator *aggregation.Aggregator,
	repos map[content.NodeType]*repository.ContentRepository,
	userState *repository.UserStateStore,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		aggregator: aggregator,
		repos:      repos,
		userState:  userState,
		registry:   registry,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	if rt.cfg.EnableMetrics && rt.registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(rt.cfg.JWTSecret, rt.cfg.JWTIssuer, rt.logger))

		contentHandler := handlers.NewContentHandler(rt.repos, rt.userState, rt.logger)
		r.Route("/nodes/{nodeType}", func(r chi.Router) {
			r.Post("/", contentHandler.Create)
			r.Get("/{id}", contentHandler.Get)
			r.Put("/{id}", contentHandler.Update)
			r.Delete("/{id}", contentHandler.Delete)
			r.Post("/{id}/votes/{kind}", contentHandler.Vote)
			r.Delete("/{id}/votes/{kind}", contentHandler.RemoveVote)
			r.Put("/{id}/visibility", contentHandler.SetVisibility)
		})

		graphHandler := handlers.NewGraphHandler(rt.aggregator, rt.logger)
		r.Post("/graph", graphHandler.Aggregate)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
