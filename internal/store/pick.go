package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/familypulse/internal/model"
	"github.com/google/uuid"
)

type PickStore struct {
	db *sql.DB
}

func NewPickStore(db *sql.DB) *PickStore {
	return &PickStore{db: db}
}

// Set updates a user's pick in a category following the archive-then-insert
// protocol: the old value stays as a history row with archived_at stamped and
// the new value becomes the single current row.
func (s *PickStore) Set(userID, category, value, interestTag string) (*model.Pick, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("set pick: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE picks SET is_current = 0, archived_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND category = ? AND is_current = 1`,
		userID, category,
	)
	if err != nil {
		return nil, fmt.Errorf("archive previous pick: %w", err)
	}

	var tag any
	if interestTag != "" {
		tag = interestTag
	}
	id := uuid.NewString()
	_, err = tx.Exec(
		`INSERT INTO picks (id, user_id, category, value, interest_tag, is_current)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		id, userID, category, value, tag,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pick: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("set pick: %w", err)
	}
	return s.getByID(id)
}

// CurrentByUser returns the user's live pick in each category.
func (s *PickStore) CurrentByUser(userID string) ([]model.Pick, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, category, value, interest_tag, is_current, archived_at, created_at, updated_at
		 FROM picks WHERE user_id = ? AND is_current = 1 ORDER BY category`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list current picks: %w", err)
	}
	defer rows.Close()
	return scanPicks(rows)
}

// History returns every version of a user's pick in a category, newest first.
func (s *PickStore) History(userID, category string) ([]model.Pick, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, category, value, interest_tag, is_current, archived_at, created_at, updated_at
		 FROM picks WHERE user_id = ? AND category = ? ORDER BY created_at DESC`,
		userID, category,
	)
	if err != nil {
		return nil, fmt.Errorf("list pick history: %w", err)
	}
	defer rows.Close()
	return scanPicks(rows)
}

func (s *PickStore) getByID(id string) (*model.Pick, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, category, value, interest_tag, is_current, archived_at, created_at, updated_at
		 FROM picks WHERE id = ?`, id,
	)
	p, err := scanPick(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pick: %w", err)
	}
	return p, nil
}

func scanPicks(rows *sql.Rows) ([]model.Pick, error) {
	var picks []model.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, *p)
	}
	return picks, rows.Err()
}

func scanPick(row rowScanner) (*model.Pick, error) {
	var p model.Pick
	var tag sql.NullString
	var isCurrent int
	var archived sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.Category, &p.Value, &tag, &isCurrent, &archived, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan pick: %w", err)
	}
	p.InterestTag = tag.String
	p.IsCurrent = isCurrent != 0
	if archived.Valid {
		t := archived.Time
		p.ArchivedAt = &t
	}
	return &p, nil
}
