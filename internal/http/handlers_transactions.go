package http

import (
	"net/http"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const transactionNotFound = "Transaction not found"

const (
	opIndexCreate = iota
	opIndexUpdate
	opIndexDelete
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := parseFilter(r.URL.Query(), s.deps.Stats.Location())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	txs, err := s.deps.Transactions.List(r.Context(), userID, f)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, newTransactionView(t))
	}
	NewJSONResponse().Body(map[string]any{"transactions": views}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	t, err := s.deps.Transactions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, transactionNotFound)
		return
	}
	NewJSONResponse().Body(map[string]any{"transaction": newTransactionView(t)}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "")
		return
	}
	t, err := req.toTransaction(s.deps.Stats.Location())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	created, err := s.deps.Transactions.Create(r.Context(), userID, t)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.recordMutation(r, opIndexCreate, log.OpCreate, created)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+created.ID).
		Body(map[string]any{"transaction": newTransactionView(created)}).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "")
		return
	}
	p, err := req.toPatch(s.deps.Stats.Location())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	updated, err := s.deps.Transactions.Update(r.Context(), userID, r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err, transactionNotFound)
		return
	}
	if !p.IsEmpty() {
		s.recordMutation(r, opIndexUpdate, log.OpUpdate, updated)
	}
	NewJSONResponse().Body(map[string]any{"transaction": newTransactionView(updated)}).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if err := s.deps.Transactions.Delete(r.Context(), userID, id); err != nil {
		s.fail(w, r, err, transactionNotFound)
		return
	}
	s.recordMutation(r, opIndexDelete, log.OpDelete, core.Transaction{ID: id, UserID: userID})
	NewJSONResponse().Body(map[string]string{"message": "Transaction deleted successfully"}).Write(w)
}

func (s *Server) recordMutation(r *http.Request, idx int, op string, t core.Transaction) {
	atomic.AddInt64(&s.metrics.transactionsByOp[idx], 1)
	amount := ""
	if !t.Amount.IsZero() {
		amount = t.Amount.String()
	}
	s.structured.LogTransactionMutation(r.Context(), op, t.UserID, t.ID, string(t.Type), amount, t.Category)
}
