package httpapi

import (
	"net/http"
	"strings"

	"campuslink/internal/domain"
)

func (a *api) handleChatConversations(w http.ResponseWriter, r *http.Request) {
	id, ok := CurrentIdentity(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.connectionSvc.ListConversations(r.Context(), id.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.ConversationSummary{}
	}
	WriteJSON(w, http.StatusOK, out)
}

type chatHistoryResponse struct {
	Connection domain.Connection `json:"connection"`
	Messages   []domain.Message  `json:"messages"`
}

func (a *api) handleChatHistory(w http.ResponseWriter, r *http.Request) {
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

	conn, messages, err := a.chatSvc.History(r.Context(), id.UserID, connectionID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	WriteJSON(w, http.StatusOK, chatHistoryResponse{Connection: conn, Messages: messages})
}

type chatSendRequest struct {
	ConnectionID  string `json:"connection_id"`
	Body          string `json:"body"`
	AttachmentURL string `json:"attachment_url"`
}

func (a *api) handleChatSend(w http.ResponseWriter, r *http.Request) {
	id, ok := CurrentIdentity(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req chatSendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	msg, err := a.chatSvc.Send(r.Context(), id.UserID, req.ConnectionID, req.Body, req.AttachmentURL)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

func (a *api) handleChatUnread(w http.ResponseWriter, r *http.Request) {
	id, ok := CurrentIdentity(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	count, err := a.chatSvc.UnreadBadge(r.Context(), id.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"unread_conversations": count})
}
