package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"cantiere/internal/core"
	"cantiere/internal/storage"
)

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.ProjectPayments(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, nonNil(payments))
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentDate string          `json:"payment_date"`
		Amount      decimal.Decimal `json:"amount"`
		Status      core.Status     `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p := &core.ProjectPayment{
		UserID:      userID(r),
		ProjectID:   r.PathValue("id"),
		PaymentDate: req.PaymentDate,
		Amount:      req.Amount,
		Status:      req.Status,
	}
	if p.Status == "" {
		p.Status = core.StatusPending
	}
	if err := p.Validate(); err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.store.CreateProjectPayment(r.Context(), p); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusCreated, p)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID   string           `json:"paymentId"`
		PaymentDate *string          `json:"payment_date"`
		Amount      *decimal.Decimal `json:"amount"`
		Status      *core.Status     `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PaymentID == "" {
		respondWithError(w, r, http.StatusBadRequest, "Missing paymentId", nil)
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		respondWithError(w, r, http.StatusBadRequest, "Invalid status value", nil)
		return
	}

	err := s.store.UpdateProjectPayment(r.Context(), req.PaymentID, userID(r), storage.ProjectPaymentUpdate{
		PaymentDate: req.PaymentDate,
		Amount:      req.Amount,
		Status:      req.Status,
	})
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID string `json:"paymentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PaymentID == "" {
		respondWithError(w, r, http.StatusBadRequest, "Missing paymentId", nil)
		return
	}

	if err := s.store.DeleteProjectPayment(r.Context(), req.PaymentID, userID(r)); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, successResponse{Success: true})
}
