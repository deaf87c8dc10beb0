package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/familypulse/internal/auth"
	"github.com/dukerupert/familypulse/internal/model"
	"github.com/dukerupert/familypulse/internal/push"
	"github.com/dukerupert/familypulse/internal/store"
)

type PushHandler struct {
	registry *push.Registry
	service  *push.Service
	notifier Notifier
	prefs    *store.PreferenceStore
	logger   *slog.Logger
}

func NewPushHandler(registry *push.Registry, svc *push.Service, notifier Notifier, prefs *store.PreferenceStore, logger *slog.Logger) *PushHandler {
	return &PushHandler{registry: registry, service: svc, notifier: notifier, prefs: prefs, logger: logger}
}

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
	UserAgent string `json:"userAgent"`
}

// Subscribe handles POST /push/subscribe. The body mirrors the browser's
// PushSubscription.toJSON() shape.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	sub := req.Subscription
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh, and auth are required")
		return
	}

	if _, err := h.registry.Subscribe(userID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, req.UserAgent); err != nil {
		h.logger.Error("subscribe", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe handles POST /push/unsubscribe.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.registry.Unsubscribe(userID, req.Endpoint); err != nil {
		h.logger.Error("unsubscribe", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetVAPIDKey handles GET /push/vapid-key.
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

// GetPreferences handles GET /push/preferences, lazily provisioning the row
// so the settings page always has something to render.
func (h *PushHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	prefs, err := h.prefs.EnsureDefaults(userID, false)
	if err != nil {
		h.logger.Error("get preferences", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /push/preferences with the full settings
// object.
func (h *PushHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req model.NotificationPreferences
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.UserID = userID

	if _, err := h.prefs.EnsureDefaults(userID, req.PushEnabled); err != nil {
		h.logger.Error("provision preferences", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}
	if err := h.prefs.Update(&req); err != nil {
		h.logger.Error("update preferences", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}

	prefs, err := h.prefs.Get(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// TestNotification handles POST /notifications/test. It goes through the
// full dispatcher pipeline as a your_turn notification, so the user sees
// exactly what a real one would do, gates included.
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if h.notifier == nil {
		writeError(w, http.StatusServiceUnavailable, "push notifications are not configured")
		return
	}

	res := h.notifier.Send(push.Request{
		UserID:   userID,
		Category: model.CategoryYourTurn,
		Title:    "Test Notification",
		Body:     "Push notifications are working!",
		URL:      "/settings",
	})
	writeJSON(w, resultStatus(res), res)
}
