package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"spendlens/internal/core"
)

// transactionAmountPlaces is the precision kept for submitted amounts.
const transactionAmountPlaces = 2

func (s *Server) handleQueryTransactions(w http.ResponseWriter, r *http.Request) {
	spec := ParseFilterSpec(r.URL.Query())
	view, err := s.ledger.Query(r.Context(), spec, r.URL.Query().Get("group"))
	if err != nil {
		writeError(w, r, "query", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, r, "create_transaction", err)
		return
	}
	t.Amount = t.Amount.Round(transactionAmountPlaces)

	created, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		writeError(w, r, "create_transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, r, "update_transaction", err)
		return
	}
	t.Amount = t.Amount.Round(transactionAmountPlaces)

	updated, err := s.ledger.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), t)
	if err != nil {
		writeError(w, r, "update_transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete_transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, "bulk_delete", err)
		return
	}
	n, err := s.ledger.DeleteTransactions(r.Context(), body.IDs)
	if err != nil {
		writeError(w, r, "bulk_delete", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Categories())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.ledger.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
