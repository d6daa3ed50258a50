package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cantiere/internal/blob"
	"cantiere/internal/core"
	"cantiere/internal/services"
	"cantiere/internal/storage"
)

func (s *Server) handleListBudgetExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ExpensesByBudget(r.Context(), r.PathValue("budgetId"))
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, nonNil(expenses))
}

func (s *Server) handleCreateBudgetExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Status      core.Status     `json:"status"`
		ExpenseDate string          `json:"expense_date"`
		FilePath    *string         `json:"file_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	e := &core.BudgetExpense{
		BudgetID:    r.PathValue("budgetId"),
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		Status:      req.Status,
		ExpenseDate: req.ExpenseDate,
		FilePath:    req.FilePath,
	}
	if e.Status == "" {
		e.Status = core.StatusPending
	}
	if err := e.Validate(); err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.store.CreateBudgetExpense(r.Context(), e); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusCreated, e)
}

func (s *Server) handleUpdateBudgetExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Amount      *decimal.Decimal `json:"amount"`
		Status      *core.Status     `json:"status"`
		ExpenseDate *string          `json:"expense_date"`
		FilePath    *string          `json:"file_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		respondWithError(w, r, http.StatusBadRequest, "Invalid status value", nil)
		return
	}

	err := s.store.UpdateBudgetExpense(r.Context(), r.PathValue("expenseId"), storage.BudgetExpenseUpdate{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		Status:      req.Status,
		ExpenseDate: req.ExpenseDate,
		FilePath:    req.FilePath,
	})
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDeleteBudgetExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBudgetExpense(r.Context(), r.PathValue("expenseId")); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, successResponse{Success: true})
}

// handleUploadReceipt stores a receipt image and hands back the opaque
// key the client attaches to the expense as file_path.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, "No file provided", nil)
		return
	}
	defer file.Close()

	ext := strings.TrimPrefix(path.Ext(header.Filename), ".")
	filename := fmt.Sprintf("%s-%s-%s.%s",
		r.PathValue("id"), r.PathValue("budgetId"), uuid.NewString(), ext)

	if err := s.blobs.Put(r.Context(), filename, file); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}

	respondWithJSON(w, r, http.StatusOK, map[string]string{"filename": filename})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	rc, err := s.blobs.Get(r.Context(), r.PathValue("filename"))
	if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
		respondWithError(w, r, http.StatusNotFound, "Object Not Found", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, rc)
}

func (s *Server) handleAggregateExpenses(w http.ResponseWriter, r *http.Request) {
	res, err := s.aggregator.Aggregate(r.Context(), r.PathValue("id"), parseAggregateQuery(r))

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		respondWithError(w, r, http.StatusBadRequest, verr.Error(), nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, res)
}
