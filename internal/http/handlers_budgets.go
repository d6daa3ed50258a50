package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"cantiere/internal/core"
	"cantiere/internal/storage"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	p, ok := s.ownedProject(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	budgets, err := s.store.BudgetsByProject(r.Context(), p.ID)
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, nonNil(budgets))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := s.ownedProject(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var req struct {
		Name            string           `json:"name"`
		Description     *string          `json:"description"`
		EstimatedAmount *decimal.Decimal `json:"estimated_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.EstimatedAmount == nil {
		respondWithError(w, r, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	b := &core.Budget{
		ProjectID:       p.ID,
		Name:            req.Name,
		Description:     req.Description,
		EstimatedAmount: *req.EstimatedAmount,
	}
	if err := s.store.CreateBudget(r.Context(), b); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, b)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.Budget(r.Context(), r.PathValue("budgetId"), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Budget not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := s.ownedProject(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var req struct {
		Name            *string          `json:"name"`
		Description     *string          `json:"description"`
		EstimatedAmount *decimal.Decimal `json:"estimated_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b, err := s.store.UpdateBudget(r.Context(), r.PathValue("budgetId"), p.ID, storage.BudgetUpdate{
		Name:            req.Name,
		Description:     req.Description,
		EstimatedAmount: req.EstimatedAmount,
	})
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Budget not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := s.ownedProject(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	err := s.store.DeleteBudget(r.Context(), r.PathValue("budgetId"), p.ID)
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Budget not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
