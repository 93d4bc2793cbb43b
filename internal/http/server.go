package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

const defaultRequestTimeout = 10 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Transactions *services.TransactionService
	Stats        *services.StatsService
	Users        *services.UserService
	Tokens       *auth.TokenManager
	Repository   Pinger
	// CacheStats is optional; when set its counters appear on /metrics.
	CacheStats func() cache.Stats
}

// Options tune the transport. Zero values select defaults.
type Options struct {
	Addr               string
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	TrustedProxies     []string
}

type appMetrics struct {
	started            time.Time
	transactionsByOp   [3]int64 // create, update, delete
	savingsGoalUpdates int64
	authFailures       int64
}

type Server struct {
	http.Server
	deps           Deps
	logger         *log.Logger
	structured     *log.StructuredLogger
	requestTimeout time.Duration

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	metrics     appMetrics

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. Call Shutdown to release the rate
// limiter even if the server never started listening.
func NewServer(opts Options, deps Deps, logger *log.Logger) (*Server, error) {
	if deps.Transactions == nil || deps.Stats == nil || deps.Users == nil || deps.Tokens == nil {
		return nil, errors.New("http server: transactions, stats, users and tokens are required")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("http server: %w", err)
	}

	s := &Server{
		deps:           deps,
		logger:         logger,
		structured:     log.NewStructuredLogger(logger),
		requestTimeout: opts.RequestTimeout,
		detector:       detector,
		tracer:         trace.NewMiddleware(detector.ExtractClientIP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		metrics: appMetrics{started: time.Now()},
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("GET /api/analytics", s.authenticated(s.handleAnalytics))
	mux.Handle("GET /api/stats", s.authenticated(s.handleStats))
	mux.Handle("GET /api/categories", s.authenticated(s.handleCategories))

	mux.Handle("GET /api/transactions", s.authenticated(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.authenticated(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/{id}", s.authenticated(s.handleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.authenticated(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.authenticated(s.handleDeleteTransaction))

	mux.Handle("GET /api/users/savings-goal", s.authenticated(s.handleGetSavingsGoal))
	mux.Handle("PUT /api/users/savings-goal", s.authenticated(s.handleUpdateSavingsGoal))

	var h http.Handler = mux
	h = s.limitMutations(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = detector.Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestID)(h)
	h = log.Middleware(logger)(h)
	h = trace.Recover(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// userHandler serves an authenticated request on behalf of userID.
type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// authenticated resolves the bearer token and bounds the request with the
// configured timeout before calling next.
func (s *Server) authenticated(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.deps.Tokens.Resolve(r)
		if err != nil {
			atomic.AddInt64(&s.metrics.authFailures, 1)
			s.logger.WarnContext(r.Context(), "Authentication failed",
				log.FieldComponent, log.ComponentAuth,
				log.FieldPath, r.URL.Path,
				log.FieldError, err)
			s.fail(w, r, err, "")
			return
		}

		ctx, cancel := context.WithTimeout(auth.WithUserID(r.Context(), userID), s.requestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx), userID)
	})
}

// limitMutations applies the rate limiter to writes only.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldComponent, log.ComponentRateLimit,
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// fail maps err onto the JSON error contract. notFound overrides the 404
// message when non-empty.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var ve *core.ValidationError
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		UnauthorizedError().Write(w)
	case errors.As(err, &ve):
		BadRequestError(ve.Field, ve.Err.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		NotFoundError(notFound).Write(w)
	default:
		s.structured.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.URL.Path,
			log.NewFields().
				WithRequestID(trace.RequestID(r)).
				WithUser(auth.UserIDFromContext(r.Context())).
				WithErrorType(errorType(err)))
		InternalServerError().Write(w)
	}
}

func errorType(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return log.ErrorTypeTimeout
	}
	return log.ErrorTypeInternal
}

// Shutdown stops background work and gracefully drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(s.rateLimiter.Stop)
	return s.Server.Shutdown(ctx)
}
