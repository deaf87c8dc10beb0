package model

import "time"

// QuestionStatus is the weekly question lifecycle state. A question starts
// pending and moves to active exactly once; a new week always gets a fresh
// pending row rather than reopening an old one.
type QuestionStatus string

const (
	QuestionPending QuestionStatus = "pending"
	QuestionActive  QuestionStatus = "active"
)

// WeeklyQuestion is one family's question for one week. week_number is the
// YYYYWW integer computed by the rotation package; (family_id, week_number)
// is unique at the store level.
type WeeklyQuestion struct {
	ID                    string         `json:"id"`
	FamilyID              string         `json:"family_id"`
	WeekStartDate         string         `json:"week_start_date"`
	WeekNumber            int            `json:"week_number"`
	AssignedUserID        string         `json:"assigned_user_id"`
	QuestionText          string         `json:"question_text"`
	SuggestedQuestionText string         `json:"suggested_question_text"`
	IsPreset              bool           `json:"is_preset"`
	IsCurrent             bool           `json:"is_current"`
	Status                QuestionStatus `json:"status"`
	ArchivedAt            *time.Time     `json:"archived_at,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
}

// QuestionAnswer is versioned with history: editing an answer archives the
// old row and inserts a new current one.
type QuestionAnswer struct {
	ID         string     `json:"id"`
	QuestionID string     `json:"question_id"`
	UserID     string     `json:"user_id"`
	AnswerText string     `json:"answer_text"`
	IsCurrent  bool       `json:"is_current"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PresetQuestion is one entry in the shared suggestion pool the rotation
// scheduler draws from.
type PresetQuestion struct {
	ID           int64  `json:"id"`
	QuestionText string `json:"question_text"`
}
