package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// handleAnalytics serves the twelve-month series for ?year= (default current year).
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request, userID string) {
	series, err := s.deps.Stats.MonthlySeries(r.Context(), userID, parseYear(r.URL.Query()))
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.logger.DebugContext(r.Context(), "Monthly series served",
		log.FieldUserID, userID,
		log.FieldYear, series.Year,
		log.FieldOperation, log.OpAggregate)
	NewJSONResponse().Body(newAnalyticsView(series)).Write(w)
}

// handleStats serves the financial snapshot of the current month.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, userID string) {
	snap, err := s.deps.Stats.Snapshot(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	NewJSONResponse().Body(newSnapshotView(snap)).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request, _ string) {
	NewJSONResponse().Body(map[string][]string{
		"income":  core.CategoriesFor(core.Income),
		"expense": core.CategoriesFor(core.Expense),
	}).Write(w)
}
