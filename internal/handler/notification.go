package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/familypulse/internal/auth"
	"github.com/dukerupert/familypulse/internal/model"
	"github.com/dukerupert/familypulse/internal/push"
	"github.com/dukerupert/familypulse/internal/store"
)

type NotificationHandler struct {
	notifier Notifier
	log      *store.NotificationLogStore
	logger   *slog.Logger
}

func NewNotificationHandler(notifier Notifier, logStore *store.NotificationLogStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, log: logStore, logger: logger}
}

type sendRequest struct {
	UserID           string `json:"userId"`
	NotificationType string `json:"notificationType"`
	Title            string `json:"title"`
	BodyText         string `json:"bodyText"`
	URL              string `json:"url"`
	QuestionID       string `json:"questionId"`
	ActivityID       string `json:"activityId"`
}

// Send handles POST /notifications/send, the internal entry point other
// services use to push to a user. The bearer guard sits in front of it. The
// status mirrors the dispatcher's outcome: 200 when at least one device got
// the notification, 400 when every gate or device refused.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == "" || req.Title == "" || req.BodyText == "" {
		writeError(w, http.StatusBadRequest, "userId, title, and bodyText are required")
		return
	}

	if h.notifier == nil {
		writeJSON(w, http.StatusBadRequest, push.Result{Success: false, Error: "push notifications are not configured"})
		return
	}

	res := h.notifier.Send(push.Request{
		UserID:     req.UserID,
		Category:   model.Category(req.NotificationType),
		Title:      req.Title,
		Body:       req.BodyText,
		URL:        req.URL,
		QuestionID: req.QuestionID,
		ActivityID: req.ActivityID,
	})
	writeJSON(w, resultStatus(res), res)
}

// Click handles POST /notifications/{id}/click, stamping clicked_at on the
// caller's own log row.
func (h *NotificationHandler) Click(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.log.RecordClick(id, userID); err != nil {
		h.logger.Error("record click", "id", id, "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record click")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// History handles GET /notifications, the user's recent notification log.
func (h *NotificationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.log.ListByUser(userID, limit)
	if err != nil {
		h.logger.Error("list notifications", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if entries == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
