package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/familypulse/internal/model"
	"github.com/google/uuid"
)

type AnswerStore struct {
	db *sql.DB
}

func NewAnswerStore(db *sql.DB) *AnswerStore {
	return &AnswerStore{db: db}
}

// Submit records a user's answer. A re-submission never overwrites: the
// previous current row is archived and a fresh current row inserted, both in
// one transaction.
func (s *AnswerStore) Submit(questionID, userID, answerText string) (*model.QuestionAnswer, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE question_answers SET is_current = 0, archived_at = CURRENT_TIMESTAMP
		 WHERE question_id = ? AND user_id = ? AND is_current = 1`,
		questionID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("archive previous answer: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.Exec(
		`INSERT INTO question_answers (id, question_id, user_id, answer_text, is_current)
		 VALUES (?, ?, ?, ?, 1)`,
		id, questionID, userID, answerText,
	)
	if err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}
	return s.getByID(id)
}

// CurrentByQuestion lists the live answer of each member who has answered.
func (s *AnswerStore) CurrentByQuestion(questionID string) ([]model.QuestionAnswer, error) {
	rows, err := s.db.Query(
		`SELECT id, question_id, user_id, answer_text, is_current, archived_at, created_at
		 FROM question_answers WHERE question_id = ? AND is_current = 1 ORDER BY created_at`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list current answers: %w", err)
	}
	defer rows.Close()
	return scanAnswers(rows)
}

// HistoryByUser returns every version of a user's answer to a question,
// newest first.
func (s *AnswerStore) HistoryByUser(questionID, userID string) ([]model.QuestionAnswer, error) {
	rows, err := s.db.Query(
		`SELECT id, question_id, user_id, answer_text, is_current, archived_at, created_at
		 FROM question_answers WHERE question_id = ? AND user_id = ? ORDER BY created_at DESC`,
		questionID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list answer history: %w", err)
	}
	defer rows.Close()
	return scanAnswers(rows)
}

func (s *AnswerStore) getByID(id string) (*model.QuestionAnswer, error) {
	row := s.db.QueryRow(
		`SELECT id, question_id, user_id, answer_text, is_current, archived_at, created_at
		 FROM question_answers WHERE id = ?`, id,
	)
	a, err := scanAnswer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return a, nil
}

func scanAnswers(rows *sql.Rows) ([]model.QuestionAnswer, error) {
	var answers []model.QuestionAnswer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

func scanAnswer(row rowScanner) (*model.QuestionAnswer, error) {
	var a model.QuestionAnswer
	var isCurrent int
	var archived sql.NullTime
	err := row.Scan(&a.ID, &a.QuestionID, &a.UserID, &a.AnswerText, &isCurrent, &archived, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan answer: %w", err)
	}
	a.IsCurrent = isCurrent != 0
	if archived.Valid {
		t := archived.Time
		a.ArchivedAt = &t
	}
	return &a, nil
}
