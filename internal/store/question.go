package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dukerupert/familypulse/internal/model"
)

// ErrNotPending is returned when an activation targets a question that has
// already left the pending state. The transition is irreversible, so a second
// activation is always a conflict.
var ErrNotPending = errors.New("question is not pending")

type QuestionStore struct {
	db *sql.DB
}

func NewQuestionStore(db *sql.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

const questionColumns = `id, family_id, week_start_date, week_number, assigned_user_id,
	question_text, suggested_question_text, is_preset, is_current, status, archived_at, created_at`

func (s *QuestionStore) GetByID(id string) (*model.WeeklyQuestion, error) {
	row := s.db.QueryRow(`SELECT `+questionColumns+` FROM weekly_questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weekly question: %w", err)
	}
	return q, nil
}

// GetByFamilyWeek is the rotation scheduler's idempotency check.
func (s *QuestionStore) GetByFamilyWeek(familyID string, weekNumber int) (*model.WeeklyQuestion, error) {
	row := s.db.QueryRow(
		`SELECT `+questionColumns+` FROM weekly_questions WHERE family_id = ? AND week_number = ?`,
		familyID, weekNumber,
	)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weekly question by week: %w", err)
	}
	return q, nil
}

// LatestByFamily returns the question with the highest week number, used to
// find the previous asker for the round-robin.
func (s *QuestionStore) LatestByFamily(familyID string) (*model.WeeklyQuestion, error) {
	row := s.db.QueryRow(
		`SELECT `+questionColumns+` FROM weekly_questions
		 WHERE family_id = ? ORDER BY week_number DESC LIMIT 1`,
		familyID,
	)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest weekly question: %w", err)
	}
	return q, nil
}

// Current returns the family's live question, if any.
func (s *QuestionStore) Current(familyID string) (*model.WeeklyQuestion, error) {
	row := s.db.QueryRow(
		`SELECT `+questionColumns+` FROM weekly_questions
		 WHERE family_id = ? AND is_current = 1 ORDER BY week_number DESC LIMIT 1`,
		familyID,
	)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current weekly question: %w", err)
	}
	return q, nil
}

// Insert creates the week's question and makes it current, archiving any
// previous current question for the family. The UNIQUE(family_id, week_number)
// constraint absorbs concurrent rotation triggers: the loser's insert affects
// zero rows and Insert reports inserted=false.
func (s *QuestionStore) Insert(q *model.WeeklyQuestion) (inserted bool, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("insert weekly question: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO weekly_questions
		   (id, family_id, week_start_date, week_number, assigned_user_id,
		    question_text, suggested_question_text, is_preset, is_current, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT(family_id, week_number) DO NOTHING`,
		q.ID, q.FamilyID, q.WeekStartDate, q.WeekNumber, q.AssignedUserID,
		q.QuestionText, q.SuggestedQuestionText, b2i(q.IsPreset), string(q.Status),
	)
	if err != nil {
		return false, fmt.Errorf("insert weekly question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert weekly question: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.Exec(
		`UPDATE weekly_questions SET is_current = 0, archived_at = CURRENT_TIMESTAMP
		 WHERE family_id = ? AND is_current = 1 AND id != ?`,
		q.FamilyID, q.ID,
	)
	if err != nil {
		return false, fmt.Errorf("archive previous weekly question: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("insert weekly question: %w", err)
	}
	return true, nil
}

// Activate performs the single legal lifecycle transition: pending to active,
// setting the chosen text. The guarded WHERE keeps it irreversible; a second
// call gets ErrNotPending.
func (s *QuestionStore) Activate(id, questionText string, isPreset bool) error {
	res, err := s.db.Exec(
		`UPDATE weekly_questions SET question_text = ?, status = ?, is_preset = ?
		 WHERE id = ? AND status = ?`,
		questionText, string(model.QuestionActive), b2i(isPreset), id, string(model.QuestionPending),
	)
	if err != nil {
		return fmt.Errorf("activate weekly question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate weekly question: %w", err)
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}

// History lists past and current questions, newest week first.
func (s *QuestionStore) History(familyID string, limit int) ([]model.WeeklyQuestion, error) {
	if limit <= 0 {
		limit = 52
	}
	rows, err := s.db.Query(
		`SELECT `+questionColumns+` FROM weekly_questions
		 WHERE family_id = ? ORDER BY week_number DESC LIMIT ?`,
		familyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list weekly question history: %w", err)
	}
	defer rows.Close()

	var questions []model.WeeklyQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func scanQuestion(row rowScanner) (*model.WeeklyQuestion, error) {
	var q model.WeeklyQuestion
	var isPreset, isCurrent int
	var status string
	var archived sql.NullTime
	err := row.Scan(&q.ID, &q.FamilyID, &q.WeekStartDate, &q.WeekNumber, &q.AssignedUserID,
		&q.QuestionText, &q.SuggestedQuestionText, &isPreset, &isCurrent, &status, &archived, &q.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan weekly question: %w", err)
	}
	q.IsPreset = isPreset != 0
	q.IsCurrent = isCurrent != 0
	q.Status = model.QuestionStatus(status)
	if archived.Valid {
		t := archived.Time
		q.ArchivedAt = &t
	}
	return &q, nil
}
