package http

import (
	"encoding/json"
	"net/http"

	"cantiere/internal/log"
)

func respondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	dat, err := json.Marshal(payload)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Could not marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(dat)
}

func respondWithError(w http.ResponseWriter, r *http.Request, code int, msg string, err error) {
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), msg, "error", err, "status", code)
	}

	type errorResponse struct {
		Error string `json:"error"`
	}
	respondWithJSON(w, r, code, errorResponse{Error: msg})
}

type successResponse struct {
	Success bool `json:"success"`
}

// nonNil keeps empty collections serializing as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
