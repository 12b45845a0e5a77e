package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"outreach-engine/internal/domain"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrLeadNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	case domain.IsConflict(err):
		WriteError(w, r, http.StatusConflict, "conflict", err.Error())
	case domain.IsValidation(err):
		WriteError(w, r, http.StatusUnprocessableEntity, "validation", err.Error())
	case domain.IsPermanent(err):
		WriteError(w, r, http.StatusBadRequest, "rejected", err.Error())
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
