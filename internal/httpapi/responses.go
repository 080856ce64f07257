package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"campuslink/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid request")
	case errors.Is(err, domain.ErrSelfConnection):
		WriteError(w, http.StatusBadRequest, "self_connection", "cannot connect with yourself")
	case errors.Is(err, domain.ErrAlreadyConnected):
		WriteError(w, http.StatusBadRequest, "already_connected", "already connected")
	case errors.Is(err, domain.ErrRequestAlreadyPending):
		WriteError(w, http.StatusBadRequest, "request_already_pending", "a request for this pair is already pending")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrAuthInvalid):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrNotAuthorized):
		WriteError(w, http.StatusForbidden, "not_participant", "not a participant of this connection")
	case errors.Is(err, domain.ErrConnectionNotActive):
		WriteError(w, http.StatusForbidden, "connection_not_active", "connection is not active")
	case errors.Is(err, domain.ErrMessageCapReached):
		WriteError(w, http.StatusForbidden, "message_cap_reached", "message limit reached for a pending connection")
	case errors.Is(err, domain.ErrInvalidState):
		WriteError(w, http.StatusNotFound, "not_pending", "no pending request to respond to")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
