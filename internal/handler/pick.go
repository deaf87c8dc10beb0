package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/familypulse/internal/auth"
	"github.com/dukerupert/familypulse/internal/model"
	"github.com/dukerupert/familypulse/internal/push"
	"github.com/dukerupert/familypulse/internal/store"
	"github.com/dukerupert/familypulse/internal/websocket"
)

// PickHandler serves each member's current picks (favorite meal, show, song
// and so on) with full change history.
type PickHandler struct {
	picks    *store.PickStore
	families *store.FamilyStore
	notifier Notifier
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewPickHandler(picks *store.PickStore, families *store.FamilyStore, notifier Notifier, hub *websocket.Hub, logger *slog.Logger) *PickHandler {
	return &PickHandler{picks: picks, families: families, notifier: notifier, hub: hub, logger: logger}
}

// List handles GET /picks. With ?userId= it returns another family member's
// picks; by default the caller's own.
func (h *PickHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	familyID := auth.FamilyID(r.Context())

	target := r.URL.Query().Get("userId")
	if target == "" {
		target = userID
	}
	if target != userID {
		u, err := h.families.GetUser(target)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load picks")
			return
		}
		if u == nil || u.FamilyID != familyID {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
	}

	picks, err := h.picks.CurrentByUser(target)
	if err != nil {
		h.logger.Error("list picks", "user_id", target, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load picks")
		return
	}
	if picks == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

type updatePickRequest struct {
	Category    string `json:"category"`
	Value       string `json:"value"`
	InterestTag string `json:"interestTag"`
}

// Update handles PUT /picks, versioning the previous value into history.
func (h *PickHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	familyID := auth.FamilyID(r.Context())

	var req updatePickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Category == "" || req.Value == "" {
		writeError(w, http.StatusBadRequest, "category and value are required")
		return
	}

	pick, err := h.picks.Set(userID, req.Category, req.Value, req.InterestTag)
	if err != nil {
		h.logger.Error("set pick", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save pick")
		return
	}

	h.hub.BroadcastFamily(familyID, websocket.NewMessage("pick", "updated", pick.ID, map[string]any{
		"user_id":  userID,
		"category": pick.Category,
	}))
	h.notifyPickChange(familyID, userID, pick)

	writeJSON(w, http.StatusOK, pick)
}

func (h *PickHandler) notifyPickChange(familyID, actorID string, pick *model.Pick) {
	if h.notifier == nil {
		return
	}
	actor, _ := h.families.GetUser(actorID)
	actorName := actorID
	if actor != nil {
		actorName = actor.Name
	}
	members, err := h.families.ListMembers(familyID)
	if err != nil {
		h.logger.Error("list members for pick notification", "family_id", familyID, "error", err)
		return
	}
	for _, m := range members {
		if m.ID == actorID {
			continue
		}
		h.notifier.Send(push.Request{
			UserID:   m.ID,
			Category: model.CategoryNewPick,
			Title:    fmt.Sprintf("%s has a new %s pick", actorName, pick.Category),
			Body:     pick.Value,
			URL:      "/picks",
		})
	}
}

// History handles GET /picks/history?category=.
func (h *PickHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	picks, err := h.picks.History(userID, category)
	if err != nil {
		h.logger.Error("pick history", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if picks == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, picks)
}
