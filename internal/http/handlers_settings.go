package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cantiere/internal/core"
	"cantiere/internal/storage"
)

type settingResponse struct {
	Success bool          `json:"success"`
	Data    *core.Setting `json:"data"`
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.SettingsByUser(r.Context(), userID(r))
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, nonNil(settings))
}

func (s *Server) handleCreateSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Key == "" || req.Value == "" {
		respondWithError(w, r, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	st := &core.Setting{
		UserID: userID(r),
		Key:    req.Key,
		Value:  req.Value,
	}
	err := s.store.CreateSetting(r.Context(), st)
	if errors.Is(err, storage.ErrDuplicateKey) {
		respondWithError(w, r, http.StatusBadRequest, "Key already exists", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, settingResponse{Success: true, Data: st})
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Value == "" {
		respondWithError(w, r, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	st, err := s.store.UpdateSetting(r.Context(), r.PathValue("id"), userID(r), req.Value)
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Setting not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, settingResponse{Success: true, Data: st})
}

func (s *Server) handleDeleteSetting(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteSetting(r.Context(), r.PathValue("id"), userID(r))
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Setting not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, successResponse{Success: true})
}
