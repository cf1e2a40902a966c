// Package server binds the evaluation engine to HTTP. Handlers stay thin:
// decode, call the engine, encode. Engine outputs are returned unmodified.
package server

import (
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/strollerlabs/stroller-truth/internal/config"
	"github.com/strollerlabs/stroller-truth/internal/engine"
	"github.com/strollerlabs/stroller-truth/internal/policy"
	"github.com/strollerlabs/stroller-truth/internal/store"
)

// Server wires the record store and evaluator behind the HTTP API.
type Server struct {
	cfg   config.ServerConfig
	mem   *store.Memory
	eval  *engine.Evaluator
	rules policy.Rules
}

// New creates a Server.
func New(cfg config.ServerConfig, mem *store.Memory, eval *engine.Evaluator, rules policy.Rules) *Server {
	return &Server{cfg: cfg, mem: mem, eval: eval, rules: rules}
}

// Router builds the chi router with middleware and all v1 routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	if s.cfg.RateLimitRPS > 0 {
		r.Use(rateLimiter(rate.Limit(s.cfg.RateLimitRPS), s.cfg.RateLimitBurst))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/datasets/strollers", s.handleListRecords)
		r.Get("/strollers/{productID}", s.handleGetRecord)
		r.Post("/eligible-products", s.handleEligibleProducts)
		r.Post("/compare", s.handleCompare)
	})

	return r
}

// requestLogger logs each request with the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// rateLimiter applies a per-client token bucket keyed by remote IP.
func rateLimiter(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	if burst <= 0 {
		burst = 1
	}
	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}
	get := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(limit, burst)
			limiters[key] = l
		}
		return l
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(key); err == nil {
				key = host
			}
			if !get(key).Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
