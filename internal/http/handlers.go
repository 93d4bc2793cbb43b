package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that the repository answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"repository": "ok"}
	switch {
	case s.deps.Repository == nil:
		checks["repository"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.deps.Repository.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
			checks["repository"] = "unavailable"
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n\n", name, help, name, name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_server_errors_total", "Responses with a 5xx status", traceMetrics.ServerErrors)
	gauge("http_average_response_microseconds", "Mean response time", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP transactions_mutations_total Successful transaction writes\n")
	fmt.Fprintf(w, "# TYPE transactions_mutations_total counter\n")
	for i, op := range []string{"create", "update", "delete"} {
		fmt.Fprintf(w, "transactions_mutations_total{op=%q} %d\n", op, atomic.LoadInt64(&s.metrics.transactionsByOp[i]))
	}
	fmt.Fprintln(w)

	counter("savings_goal_updates_total", "Savings goal changes", atomic.LoadInt64(&s.metrics.savingsGoalUpdates))
	counter("auth_failures_total", "Rejected bearer tokens", atomic.LoadInt64(&s.metrics.authFailures))

	if s.deps.CacheStats != nil {
		cs := s.deps.CacheStats()
		counter("cache_hits_total", "Total cache hits", int64(cs.Hits))
		counter("cache_misses_total", "Total cache misses", int64(cs.Misses))
		gauge("cache_entries", "Current cache entries", int64(cs.Size))
	}

	counter("rate_limit_hits_total", "Total rate limit hits", rateLimitMetrics.TotalHits)
	gauge("active_rate_limit_clients", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	counter("suspicious_requests_total", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.metrics.started).Seconds())
}
