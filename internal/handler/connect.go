package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/familypulse/internal/auth"
	"github.com/dukerupert/familypulse/internal/email"
	"github.com/dukerupert/familypulse/internal/model"
	"github.com/dukerupert/familypulse/internal/push"
	"github.com/dukerupert/familypulse/internal/question"
	"github.com/dukerupert/familypulse/internal/rotation"
	"github.com/dukerupert/familypulse/internal/store"
	"github.com/dukerupert/familypulse/internal/websocket"
)

// ConnectHandler serves the weekly question feature: rotation triggers, the
// current question, activation, and answers.
type ConnectHandler struct {
	rotator   *rotation.Rotator
	lifecycle *question.Service
	questions *store.QuestionStore
	answers   *store.AnswerStore
	families  *store.FamilyStore
	prefs     *store.PreferenceStore
	mailer    *email.Client
	notifier  Notifier
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewConnectHandler(
	rotator *rotation.Rotator,
	lifecycle *question.Service,
	questions *store.QuestionStore,
	answers *store.AnswerStore,
	families *store.FamilyStore,
	prefs *store.PreferenceStore,
	mailer *email.Client,
	notifier Notifier,
	hub *websocket.Hub,
	logger *slog.Logger,
) *ConnectHandler {
	return &ConnectHandler{
		rotator:   rotator,
		lifecycle: lifecycle,
		questions: questions,
		answers:   answers,
		families:  families,
		prefs:     prefs,
		mailer:    mailer,
		notifier:  notifier,
		hub:       hub,
		logger:    logger,
	}
}

// RotateQuestions handles GET /cron/rotate-questions, the scheduled weekly
// rotation over every family. Safe to re-trigger: already-rotated families
// come back as skipped.
func (h *ConnectHandler) RotateQuestions(w http.ResponseWriter, r *http.Request) {
	run, err := h.rotator.RotateAll()
	if err != nil {
		h.logger.Error("rotation run", "error", err)
		writeError(w, http.StatusInternalServerError, "rotation failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Initialize handles POST /connect/initialize, creating the current week's
// question for the caller's family on first use.
func (h *ConnectHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == "" {
		writeError(w, http.StatusForbidden, "family membership required")
		return
	}

	res := h.rotator.InitializeFamily(familyID)
	if res.Status == "failed" {
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type currentResponse struct {
	Question *model.WeeklyQuestion  `json:"question"`
	Answers  []model.QuestionAnswer `json:"answers"`
}

// Current handles GET /connect/current. A family with no question yet gets a
// null question rather than an error.
func (h *ConnectHandler) Current(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == "" {
		writeError(w, http.StatusForbidden, "family membership required")
		return
	}

	q, err := h.questions.Current(familyID)
	if err != nil {
		h.logger.Error("load current question", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load current question")
		return
	}

	resp := currentResponse{Question: q, Answers: []model.QuestionAnswer{}}
	if q != nil {
		answers, err := h.answers.CurrentByQuestion(q.ID)
		if err != nil {
			h.logger.Error("load answers", "question_id", q.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load answers")
			return
		}
		if answers != nil {
			resp.Answers = answers
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type activateRequest struct {
	QuestionText string `json:"questionText"`
}

// Activate handles POST /connect/questions/{id}/activate.
func (h *ConnectHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	familyID := auth.FamilyID(r.Context())
	questionID := r.PathValue("id")

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	q, err := h.lifecycle.Activate(questionID, userID, req.QuestionText)
	switch {
	case errors.Is(err, question.ErrNotFound):
		writeError(w, http.StatusNotFound, "question not found")
		return
	case errors.Is(err, question.ErrNotAssigned):
		writeError(w, http.StatusForbidden, "only this week's asker can activate the question")
		return
	case errors.Is(err, question.ErrEmptyText):
		writeError(w, http.StatusBadRequest, "question text is required")
		return
	case errors.Is(err, store.ErrNotPending):
		writeError(w, http.StatusConflict, "question has already been activated")
		return
	case err != nil:
		h.logger.Error("activate question", "question_id", questionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to activate question")
		return
	}

	h.hub.BroadcastFamily(familyID, websocket.NewMessage("question", "activated", q.ID, nil))
	h.notifyFamily(familyID, userID, push.Request{
		Category:   model.CategoryNewActivity,
		Title:      "This week's question is ready",
		Body:       q.QuestionText,
		URL:        "/connect",
		QuestionID: q.ID,
	})

	writeJSON(w, http.StatusOK, q)
}

type answerRequest struct {
	AnswerText string `json:"answerText"`
}

// SubmitAnswer handles POST /connect/questions/{id}/answers.
func (h *ConnectHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	familyID := auth.FamilyID(r.Context())
	questionID := r.PathValue("id")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.AnswerText == "" {
		writeError(w, http.StatusBadRequest, "answerText is required")
		return
	}

	q, err := h.questions.GetByID(questionID)
	if err != nil {
		h.logger.Error("load question", "question_id", questionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load question")
		return
	}
	if q == nil || q.FamilyID != familyID {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	if q.Status != model.QuestionActive {
		writeError(w, http.StatusConflict, "question is not open for answers")
		return
	}

	answer, err := h.answers.Submit(questionID, userID, req.AnswerText)
	if err != nil {
		h.logger.Error("submit answer", "question_id", questionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit answer")
		return
	}

	h.hub.BroadcastFamily(familyID, websocket.NewMessage("answer", "submitted", answer.ID, map[string]any{
		"question_id": questionID,
	}))

	actor, _ := h.families.GetUser(userID)
	actorName := userID
	if actor != nil {
		actorName = actor.Name
	}
	h.notifyFamily(familyID, userID, push.Request{
		Category:   model.CategoryNewAnswer,
		Title:      fmt.Sprintf("%s answered this week's question", actorName),
		Body:       q.QuestionText,
		URL:        "/connect",
		QuestionID: questionID,
	})
	h.nudgeLastToAnswer(familyID, questionID, q)

	writeJSON(w, http.StatusCreated, answer)
}

// nudgeLastToAnswer sends the last unanswered member a reminder once everyone
// else has answered.
func (h *ConnectHandler) nudgeLastToAnswer(familyID, questionID string, q *model.WeeklyQuestion) {
	if h.notifier == nil {
		return
	}
	members, err := h.families.ListMembers(familyID)
	if err != nil {
		h.logger.Error("list members for nudge", "family_id", familyID, "error", err)
		return
	}
	answers, err := h.answers.CurrentByQuestion(questionID)
	if err != nil {
		h.logger.Error("list answers for nudge", "question_id", questionID, "error", err)
		return
	}

	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		answered[a.UserID] = true
	}
	var remaining []string
	for _, m := range members {
		if !answered[m.ID] {
			remaining = append(remaining, m.ID)
		}
	}
	if len(remaining) != 1 {
		return
	}

	h.notifier.Send(push.Request{
		UserID:     remaining[0],
		Category:   model.CategoryLastToAnswer,
		Title:      "You're the last one!",
		Body:       fmt.Sprintf("Everyone else has answered: %s", q.QuestionText),
		URL:        "/connect",
		QuestionID: questionID,
	})
}

// History handles GET /connect/history.
func (h *ConnectHandler) History(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == "" {
		writeError(w, http.StatusForbidden, "family membership required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	questions, err := h.questions.History(familyID, limit)
	if err != nil {
		h.logger.Error("load question history", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if questions == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// WeeklyDigest handles POST /cron/weekly-digest, mailing each opted-in member
// a summary of their family's current question and answers.
func (h *ConnectHandler) WeeklyDigest(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil || !h.mailer.Configured() {
		writeJSON(w, http.StatusOK, map[string]int{"sent": 0})
		return
	}

	familyIDs, err := h.families.ListFamilyIDs()
	if err != nil {
		h.logger.Error("list families for digest", "error", err)
		writeError(w, http.StatusInternalServerError, "digest failed")
		return
	}

	sent := 0
	for _, familyID := range familyIDs {
		sent += h.digestFamily(r, familyID)
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

func (h *ConnectHandler) digestFamily(r *http.Request, familyID string) int {
	q, err := h.questions.Current(familyID)
	if err != nil || q == nil || q.Status != model.QuestionActive {
		return 0
	}
	family, err := h.families.GetFamily(familyID)
	if err != nil || family == nil {
		return 0
	}
	members, err := h.families.ListMembers(familyID)
	if err != nil {
		return 0
	}
	answers, err := h.answers.CurrentByQuestion(q.ID)
	if err != nil {
		return 0
	}

	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	digest := make([]email.DigestAnswer, 0, len(answers))
	for _, a := range answers {
		digest = append(digest, email.DigestAnswer{Name: names[a.UserID], Answer: a.AnswerText})
	}

	sent := 0
	for _, m := range members {
		if m.Email == "" {
			continue
		}
		prefs, err := h.prefs.Get(m.ID)
		if err != nil || prefs == nil || !prefs.EmailEnabled || !prefs.NotifyWeeklyDigest {
			continue
		}
		if err := h.mailer.SendWeeklyDigest(r.Context(), m.Email, family.Name, q.QuestionText, digest); err != nil {
			h.logger.Error("send digest email", "user_id", m.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// notifyFamily pushes to every family member except the actor. Refusals are
// per-user decisions and only logged.
func (h *ConnectHandler) notifyFamily(familyID, actorID string, req push.Request) {
	if h.notifier == nil {
		return
	}
	members, err := h.families.ListMembers(familyID)
	if err != nil {
		h.logger.Error("list members for notification", "family_id", familyID, "error", err)
		return
	}
	for _, m := range members {
		if m.ID == actorID {
			continue
		}
		req := req
		req.UserID = m.ID
		if res := h.notifier.Send(req); !res.Success {
			h.logger.Debug("family notification not delivered",
				"user_id", m.ID, "category", req.Category, "reason", res.Error)
		}
	}
}
