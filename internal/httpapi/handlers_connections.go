package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"campuslink/internal/domain"
)

type connectionRequestRequest struct {
	ReceiverID string `json:"receiver_id"`
}

func (a *api) handleConnectionsRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := CurrentIdentity(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req connectionRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	conn, err := a.connectionSvc.Request(r.Context(), id.UserID, req.ReceiverID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, conn)
}

type connectionRespondRequest struct {
	ConnectionID string `json:"connection_id"`
	Response     string `json:"response"`
}

func (a *api) handleConnectionsRespond(w http.ResponseWriter, r *http.Request) {
	id, ok := CurrentIdentity(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req connectionRespondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	conn, err := a.connectionSvc.Respond(r.Context(), id.UserID, req.ConnectionID, req.Response)
	if err != nil {
		// Responding to someone else's request and responding to a
		// settled request look identical from outside: both say there
		// is no pending request here for this caller.
		if errors.Is(err, domain.ErrNotAuthorized) || errors.Is(err, domain.ErrInvalidState) {
			WriteError(w, http.StatusNotFound, "not_pending_or_not_receiver", "no pending request to respond to")
			return
		}
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, conn)
}

func (a *api) handleConnectionsRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := CurrentIdentity(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	connectionID := strings.TrimSpace(r.PathValue("id"))
	if connectionID == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"id": "required"}))
		return
	}

	if err := a.connectionSvc.Remove(r.Context(), id.UserID, connectionID); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
