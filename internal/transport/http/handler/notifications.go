package handler

import (
	"encoding/json"
	"net/http"

	"github.com/libraria-api/internal/application/notification"
)

// NotificationHandler serves the notification history feed and its
// administrative visibility toggle.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// ListActive returns visible history records, newest first.
func (h *NotificationHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.ListActive(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

type visibilityRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

// Deactivate hides the given records from the feed. Re-deactivating is a
// no-op, so retrying a partially failed request is safe.
func (h *NotificationHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeVisibility(w, r)
	if !ok {
		return
	}
	count, err := h.svc.Deactivate(r.Context(), ids)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DeactivateEnvelope{Deactivated: count, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, DeactivateEnvelope{Deactivated: count})
}

// Activate re-shows previously hidden records. Like Deactivate it is safe
// to retry.
func (h *NotificationHandler) Activate(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeVisibility(w, r)
	if !ok {
		return
	}
	count, err := h.svc.Activate(r.Context(), ids)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ActivateEnvelope{Activated: count, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ActivateEnvelope{Activated: count})
}

func decodeVisibility(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if len(req.NotificationIDs) == 0 {
		writeError(w, http.StatusBadRequest, "notification_ids is required")
		return nil, false
	}
	return req.NotificationIDs, true
}
