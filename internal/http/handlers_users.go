package http

import (
	"net/http"
	"sync/atomic"

	"fintrack/internal/log"
)

const userNotFound = "User not found"

func (s *Server) handleGetSavingsGoal(w http.ResponseWriter, r *http.Request, userID string) {
	pct, err := s.deps.Users.GetSavingsGoal(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err, userNotFound)
		return
	}
	NewJSONResponse().Body(map[string]any{"savingsGoalPercentage": number(pct)}).Write(w)
}

func (s *Server) handleUpdateSavingsGoal(w http.ResponseWriter, r *http.Request, userID string) {
	var req savingsGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "")
		return
	}
	pct, err := req.percentage()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	pct, err = s.deps.Users.UpdateSavingsGoal(r.Context(), userID, pct)
	if err != nil {
		s.fail(w, r, err, userNotFound)
		return
	}
	atomic.AddInt64(&s.metrics.savingsGoalUpdates, 1)
	s.logger.InfoContext(r.Context(), "Savings goal updated",
		log.FieldUserID, userID,
		log.FieldComponent, log.ComponentUser,
		log.FieldOperation, log.OpUpdate,
		"savings_goal_percentage", pct.String())
	NewJSONResponse().Body(map[string]any{"savingsGoalPercentage": number(pct)}).Write(w)
}
