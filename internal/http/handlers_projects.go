package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"cantiere/internal/core"
	"cantiere/internal/storage"
)

type projectRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	ExpenseEstimation decimal.Decimal `json:"expense_estimation"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ProjectsByUser(r.Context(), userID(r))
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, nonNil(projects))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Description == "" {
		respondWithError(w, r, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	p := &core.Project{
		UserID:            userID(r),
		Name:              req.Name,
		Description:       req.Description,
		ExpenseEstimation: req.ExpenseEstimation,
	}
	if err := s.store.CreateProject(r.Context(), p); err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.ownedProject(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	respondWithJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Description == "" {
		respondWithError(w, r, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	p, err := s.store.UpdateProject(r.Context(), r.PathValue("id"), userID(r), storage.ProjectUpdate{
		Name:              req.Name,
		Description:       req.Description,
		ExpenseEstimation: req.ExpenseEstimation,
	})
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Project not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteProject(r.Context(), r.PathValue("id"), userID(r))
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Project not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
