package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/familypulse/internal/model"
)

type PresetStore struct {
	db *sql.DB
}

func NewPresetStore(db *sql.DB) *PresetStore {
	return &PresetStore{db: db}
}

// Random picks one suggestion uniformly from the shared pool, or nil when the
// pool is empty.
func (s *PresetStore) Random() (*model.PresetQuestion, error) {
	var p model.PresetQuestion
	err := s.db.QueryRow(
		`SELECT id, question_text FROM preset_questions ORDER BY RANDOM() LIMIT 1`,
	).Scan(&p.ID, &p.QuestionText)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("random preset question: %w", err)
	}
	return &p, nil
}

func (s *PresetStore) List() ([]model.PresetQuestion, error) {
	rows, err := s.db.Query(`SELECT id, question_text FROM preset_questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list preset questions: %w", err)
	}
	defer rows.Close()

	var presets []model.PresetQuestion
	for rows.Next() {
		var p model.PresetQuestion
		if err := rows.Scan(&p.ID, &p.QuestionText); err != nil {
			return nil, fmt.Errorf("scan preset question: %w", err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}
