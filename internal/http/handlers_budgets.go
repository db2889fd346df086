package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"spendlens/internal/budget"
	"spendlens/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledger.Budgets(r.Context(), parseFlag(r.URL.Query().Get("all")))
	if err != nil {
		writeError(w, r, "list_budgets", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, "create_budget", err)
		return
	}
	created, err := s.ledger.CreateBudget(r.Context(), b)
	if err != nil {
		writeError(w, r, "create_budget", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, "update_budget", err)
		return
	}
	updated, err := s.ledger.UpdateBudget(r.Context(), chi.URLParam(r, "id"), b)
	if err != nil {
		writeError(w, r, "update_budget", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBudget(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete_budget", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.ledger.Alerts(r.Context())
	if err != nil {
		writeError(w, r, "alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Dismiss(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "dismiss", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdjustBudgets(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode  string          `json:"mode"`
		Value decimal.Decimal `json:"value"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, "adjust", err)
		return
	}
	adjusted, err := s.ledger.Adjust(r.Context(), budget.AdjustmentSpec{
		Mode:  budget.AdjustmentMode(body.Mode),
		Value: body.Value,
	})
	if err != nil {
		writeError(w, r, "adjust", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": adjusted})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.ledger.Templates()
	if err != nil {
		writeError(w, r, "templates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// handleApplyTemplate accepts an optional {"period": "..."} body.
func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Period string `json:"period"`
	}
	if err := decodeJSON(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, "apply_template", err)
		return
	}
	created, err := s.ledger.ApplyTemplate(r.Context(), chi.URLParam(r, "id"), body.Period)
	if err != nil {
		writeError(w, r, "apply_template", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"budgets": created})
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ExportReport(r.Context()); err != nil {
		writeError(w, r, "export", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
