package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/familypulse/internal/model"
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

// ListFamilyIDs returns the IDs of every family. The rotation run iterates
// this list.
func (s *FamilyStore) ListFamilyIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM families ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list family ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan family id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListMembers returns a family's members sorted by ID. The rotation's
// round-robin depends on this ordering being stable.
func (s *FamilyStore) ListMembers(familyID string) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT id, name, email, avatar_url, family_id, created_at
		 FROM users WHERE family_id = ? ORDER BY id`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *FamilyStore) GetUser(id string) (*model.User, error) {
	row := s.db.QueryRow(
		`SELECT id, name, email, avatar_url, family_id, created_at
		 FROM users WHERE id = ?`, id,
	)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *FamilyStore) GetFamily(id string) (*model.Family, error) {
	var f model.Family
	err := s.db.QueryRow(
		`SELECT id, name, invite_code, created_at FROM families WHERE id = ?`, id,
	).Scan(&f.ID, &f.Name, &f.InviteCode, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return &f, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var email, avatarURL, familyID sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &email, &avatarURL, &familyID, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Email = email.String
	u.AvatarURL = avatarURL.String
	u.FamilyID = familyID.String
	return &u, nil
}
