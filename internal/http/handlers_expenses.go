package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"cantiere/internal/core"
	"cantiere/internal/storage"
)

func (s *Server) handleListProjectExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ProjectExpenses(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, nonNil(expenses))
}

func (s *Server) handleCreateProjectExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		ExpenseDate string          `json:"expense_date"`
		Status      core.Status     `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	e := &core.ProjectExpense{
		UserID:      userID(r),
		ProjectID:   r.PathValue("id"),
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		ExpenseDate: req.ExpenseDate,
		Status:      req.Status,
	}
	if e.Status == "" {
		e.Status = core.StatusPaid
	}
	if err := e.Validate(); err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.store.CreateProjectExpense(r.Context(), e); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusCreated, e)
}

// Updates and deletes carry the record ID in the body rather than the
// path; the collection URL stays the only expense endpoint per project.
func (s *Server) handleUpdateProjectExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpenseID   string           `json:"expenseId"`
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Amount      *decimal.Decimal `json:"amount"`
		ExpenseDate *string          `json:"expense_date"`
		Status      *core.Status     `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ExpenseID == "" {
		respondWithError(w, r, http.StatusBadRequest, "Missing expenseId", nil)
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		respondWithError(w, r, http.StatusBadRequest, "Invalid status value", nil)
		return
	}

	err := s.store.UpdateProjectExpense(r.Context(), req.ExpenseID, userID(r), storage.ProjectExpenseUpdate{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		ExpenseDate: req.ExpenseDate,
		Status:      req.Status,
	})
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDeleteProjectExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpenseID string `json:"expenseId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ExpenseID == "" {
		respondWithError(w, r, http.StatusBadRequest, "Missing expenseId", nil)
		return
	}

	if err := s.store.DeleteProjectExpense(r.Context(), req.ExpenseID, userID(r)); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, successResponse{Success: true})
}
