package handler

import (
	"context"
	"net/http"

	"github.com/go-identity-api/internal/domain"
	"github.com/go-identity-api/internal/transport/http/middleware"
)

// NotificationLogReader is the read side of the delivery audit log.
type NotificationLogReader interface {
	ListByDestination(ctx context.Context, destination string, limit int32) ([]domain.NotificationLog, error)
}

// NotificationHandler exposes the caller's recent delivery attempts.
type NotificationHandler struct {
	logs NotificationLogReader
}

func NewNotificationHandler(logs NotificationLogReader) *NotificationHandler {
	return &NotificationHandler{logs: logs}
}

func (h *NotificationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if claims.Phone == "" {
		writeError(w, http.StatusBadRequest, "no phone on session")
		return
	}
	logs, err := h.logs.ListByDestination(r.Context(), claims.Phone, 20)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": logs})
}
