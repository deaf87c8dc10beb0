package question

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/familypulse/internal/model"
	"github.com/dukerupert/familypulse/internal/store"
)

var (
	// ErrNotFound is returned when the question does not exist.
	ErrNotFound = errors.New("question not found")
	// ErrNotAssigned is returned when someone other than the week's asker
	// tries to activate the question.
	ErrNotAssigned = errors.New("question is not assigned to this user")
	// ErrEmptyText is returned when there is no text to activate with: the
	// caller sent nothing and the question carries no suggestion.
	ErrEmptyText = errors.New("question text is empty")
)

// Service owns the weekly question lifecycle. The only transition is pending
// to active, performed once by the assigned asker.
type Service struct {
	questions *store.QuestionStore
	logger    *slog.Logger
}

func NewService(questions *store.QuestionStore, logger *slog.Logger) *Service {
	return &Service{questions: questions, logger: logger}
}

// Activate publishes the week's question with the asker's chosen text. An
// empty customText accepts the rotation's suggestion; text matching the
// suggestion verbatim also counts as accepting it, so is_preset stays honest
// either way.
func (s *Service) Activate(questionID, userID, customText string) (*model.WeeklyQuestion, error) {
	q, err := s.questions.GetByID(questionID)
	if err != nil {
		return nil, fmt.Errorf("activate question: %w", err)
	}
	if q == nil {
		return nil, ErrNotFound
	}
	if q.AssignedUserID != userID {
		return nil, ErrNotAssigned
	}

	text := strings.TrimSpace(customText)
	isPreset := false
	if text == "" || text == q.SuggestedQuestionText {
		text = q.SuggestedQuestionText
		isPreset = true
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	if err := s.questions.Activate(q.ID, text, isPreset); err != nil {
		return nil, err
	}

	s.logger.Info("question activated",
		"question_id", q.ID, "family_id", q.FamilyID, "user_id", userID, "is_preset", isPreset)

	return s.questions.GetByID(q.ID)
}
