package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/jmoellers/insightdeck/internal/api/handlers"
	appMiddleware "github.com/jmoellers/insightdeck/internal/api/middlewares"
	"github.com/jmoellers/insightdeck/internal/config"
	"github.com/jmoellers/insightdeck/internal/core"
	"github.com/jmoellers/insightdeck/internal/guide"
	"github.com/jmoellers/insightdeck/internal/history"
	"github.com/jmoellers/insightdeck/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *logrus.Logger
}

type serverDeps struct {
	db        core.DbClient
	cache     *history.Cache
	auth      *services.AuthService
	queries   *services.QueryService
	mcp       *services.MCPService
	solutions *guide.Generator
	log       *logrus.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, deps serverDeps) *Server {
	log := deps.log.WithField("component", "api")

	authHandler := handlers.NewAuthHandler(deps.auth, log)
	queryHandler := handlers.NewQueryHandler(deps.queries, deps.mcp, log)
	solutionHandler := handlers.NewSolutionHandler(deps.solutions, log)
	historyHandler := handlers.NewHistoryHandler(deps.cache, log)
	transactionsHandler := handlers.NewTransactionsHandler(deps.db, cfg.DefaultMerchantID, log)
	merchantsHandler := handlers.NewMerchantsHandler(deps.db, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(deps.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/auth/magic-link", authHandler.RequestMagicLink)
		api.Get("/auth/callback", authHandler.Callback)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(cfg.JWTSecret))

			protected.Get("/auth/me", authHandler.Me)
			protected.Get("/merchants", merchantsHandler.List)

			protected.Post("/generate-query", queryHandler.GenerateQuery)
			protected.Post("/prompt-to-query", queryHandler.GenerateQuery)
			protected.Post("/execute-query", queryHandler.ExecuteQuery)
			protected.Post("/mcp-query", queryHandler.MCPQuery)
			protected.Post("/generate-solution", solutionHandler.GenerateSolution)

			protected.Get("/history", historyHandler.List)
			protected.Post("/history", historyHandler.Create)
			protected.Delete("/history", historyHandler.Clear)
			protected.Get("/history/stats", historyHandler.Stats)
			protected.Patch("/history/{id}", historyHandler.Update)
			protected.Delete("/history/{id}", historyHandler.Delete)

			protected.Get("/transactions", transactionsHandler.List)
			protected.Get("/transactions/{id}/resolution", transactionsHandler.Resolution)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: deps.log}
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("HTTP server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs one line per request with method, path, status and
// duration.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request completed")
		})
	}
}
