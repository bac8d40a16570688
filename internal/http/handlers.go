package http

import (
	"context"
	"net/http"
	"time"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.List(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, r, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := ParseTransactionInput(w, r)
	if err != nil {
		writeError(w, r, applog.OpValidate, err)
		return
	}

	tx, err := s.ledger.Append(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpAppend, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogTransactionCreated(r.Context(), tx.ID, tx.Description, tx.Amount.String(), tx.Category)
	writeJSON(w, r, http.StatusCreated, tx)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.ledger.GlobalSummary(r.Context())
	if err != nil {
		writeError(w, r, applog.OpSummarize, err)
		return
	}
	writeJSON(w, r, http.StatusOK, totals)
}

func (s *Server) handleSummaryByCategory(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.CategorySummary(r.Context())
	if err != nil {
		writeError(w, r, applog.OpSummarize, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.ledger.CategoryCatalog(r.Context())
	if err != nil {
		writeError(w, r, applog.OpCatalog, err)
		return
	}
	writeJSON(w, r, http.StatusOK, catalog)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether the ledger backend answers a read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.ledger.List(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeHTTPError(w, r, http.StatusNotFound)
}
