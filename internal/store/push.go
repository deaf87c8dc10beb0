package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/familypulse/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

// Upsert inserts or refreshes the subscription row for an endpoint. The
// endpoint is globally unique: re-registering updates keys and user agent in
// place and reactivates the row rather than duplicating it.
func (s *PushStore) Upsert(userID, endpoint, p256dh, auth, userAgent string) (*model.PushSubscription, error) {
	var ua any
	if userAgent != "" {
		ua = userAgent
	}
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, user_agent, is_active, last_used_at)
		 VALUES (?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT(endpoint) DO UPDATE SET
		   p256dh = excluded.p256dh,
		   auth = excluded.auth,
		   user_agent = excluded.user_agent,
		   is_active = 1,
		   last_used_at = CURRENT_TIMESTAMP`,
		userID, endpoint, p256dh, auth, ua,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}
	return s.GetByEndpoint(endpoint)
}

func (s *PushStore) GetByEndpoint(endpoint string) (*model.PushSubscription, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, endpoint, p256dh, auth, user_agent, is_active, last_used_at, created_at
		 FROM push_subscriptions WHERE endpoint = ?`, endpoint,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription by endpoint: %w", err)
	}
	return sub, nil
}

// ListActiveByUser returns the user's active subscriptions, one per device.
func (s *PushStore) ListActiveByUser(userID string) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, endpoint, p256dh, auth, user_agent, is_active, last_used_at, created_at
		 FROM push_subscriptions WHERE user_id = ? AND is_active = 1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// Deactivate marks the user's subscription for an endpoint inactive. Rows are
// kept for history; nothing is deleted.
func (s *PushStore) Deactivate(userID, endpoint string) error {
	_, err := s.db.Exec(
		`UPDATE push_subscriptions SET is_active = 0 WHERE user_id = ? AND endpoint = ?`,
		userID, endpoint,
	)
	if err != nil {
		return fmt.Errorf("deactivate push subscription: %w", err)
	}
	return nil
}

// DeactivateByID marks a subscription inactive after the push service reports
// the endpoint gone.
func (s *PushStore) DeactivateByID(id int64) error {
	_, err := s.db.Exec(`UPDATE push_subscriptions SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate push subscription by id: %w", err)
	}
	return nil
}

// TouchLastUsed records a successful delivery on a subscription.
func (s *PushStore) TouchLastUsed(id int64) error {
	_, err := s.db.Exec(
		`UPDATE push_subscriptions SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("touch push subscription: %w", err)
	}
	return nil
}

func (s *PushStore) CountActiveByUser(userID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM push_subscriptions WHERE user_id = ? AND is_active = 1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active push subscriptions: %w", err)
	}
	return n, nil
}

func scanSubscription(row rowScanner) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	var userAgent sql.NullString
	var isActive int
	var lastUsed sql.NullTime
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey,
		&userAgent, &isActive, &lastUsed, &sub.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan push subscription: %w", err)
	}
	sub.UserAgent = userAgent.String
	sub.IsActive = isActive != 0
	if lastUsed.Valid {
		t := lastUsed.Time
		sub.LastUsedAt = &t
	}
	return &sub, nil
}
