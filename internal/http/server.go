// Package http exposes the household ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	applog "housebudget/internal/log"
	"housebudget/internal/middleware/ratelimit"
	"housebudget/internal/middleware/security"
	"housebudget/internal/middleware/trace"
	"housebudget/internal/services"
)

const readyTimeout = 2 * time.Second

// Server wraps http.Server with the ledger routes and their middleware.
type Server struct {
	http.Server
	svc      *services.LedgerService
	logger   *applog.Logger
	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	rateConfig ratelimit.Config
}

type Option func(*Server)

func WithLogger(l *applog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.WithComponent(applog.ComponentHTTP)
		}
	}
}

// WithRateLimit overrides the limit applied to mutating routes.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) { s.rateConfig = cfg }
}

// WithDetector replaces the request screener, e.g. to trust extra proxies.
func WithDetector(d *security.Detector) Option {
	return func(s *Server) {
		if d != nil {
			s.detector = d
		}
	}
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// Call Shutdown to stop it and release the rate limiter.
func NewServer(addr string, svc *services.LedgerService, opts ...Option) *Server {
	s := &Server{
		svc:        svc,
		logger:     applog.FromContext(context.Background()).WithComponent(applog.ComponentHTTP),
		rateConfig: ratelimit.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.detector == nil {
		// The built-in proxy ranges always parse.
		s.detector, _ = security.NewDetector()
	}
	s.limiter = ratelimit.NewLimiter(s.rateConfig)
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Synchronous extraction waits on the assistant.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(s.onSuspicious))
	r.Use(applog.Middleware(s.logger))
	r.Use(applog.RequestIDMiddleware(trace.RequestIDFrom))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "No such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/debug/stats", s.handleStats)

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.With(limited).Post("/", s.handleCreateTransaction)
			r.With(limited).Delete("/{id}", s.handleDeleteTransaction)
		})
		r.Get("/months", s.handleMonths)
		r.Get("/summaries", s.handleSummaries)
		r.Get("/summary", s.handleSummary)
		r.Get("/breakdown", s.handleBreakdown)
		r.With(limited).Post("/imports", s.handleImport)
		r.Route("/statements", func(r chi.Router) {
			r.Use(limited)
			r.Post("/", s.handleSubmitStatement)
			r.Post("/extract", s.handleExtractStatement)
		})
	})

	return r
}

// Shutdown gracefully stops the server and the limiter's cleanup loop,
// then logs the request counters.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	err := s.Server.Shutdown(ctx)
	st := s.Stats()
	s.logger.Info("HTTP server stopped",
		"requests", st.Requests,
		"server_errors", st.ServerErrors,
		"avg_response_us", st.AvgResponseMicros,
		"rate_limited", st.RateLimited,
		"blocked", st.Blocked)
	return err
}

// Stats is a point-in-time view of the middleware counters.
type Stats struct {
	Requests          int64 `json:"requests"`
	ServerErrors      int64 `json:"server_errors"`
	AvgResponseMicros int64 `json:"avg_response_us"`
	RateLimited       int64 `json:"rate_limited"`
	RateLimitClients  int64 `json:"rate_limit_clients"`
	Suspicious        int64 `json:"suspicious"`
	Blocked           int64 `json:"blocked"`
}

func (s *Server) Stats() Stats {
	tm := s.tracer.GetMetrics()
	rm := s.limiter.GetMetrics()
	dm := s.detector.GetMetrics()
	return Stats{
		Requests:          tm.TotalRequests,
		ServerErrors:      tm.ServerErrors,
		AvgResponseMicros: tm.AverageResponseTime,
		RateLimited:       rm.Rejected,
		RateLimitClients:  rm.ClientCount,
		Suspicious:        dm.SuspiciousRequests,
		Blocked:           dm.BlockedRequests,
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Stats())
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Please try again later.")
}

func (s *Server) onSuspicious(r *http.Request, reason string) {
	s.logger.WarnContext(r.Context(), "Suspicious request blocked",
		"reason", reason,
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldUserAgent, r.Header.Get("User-Agent"))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the store answers a listing.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if _, _, err := s.svc.Months(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"queue":  s.svc.QueueEnabled(),
	})
}
