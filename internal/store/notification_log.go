package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/familypulse/internal/model"
)

type NotificationLogStore struct {
	db *sql.DB
}

func NewNotificationLogStore(db *sql.DB) *NotificationLogStore {
	return &NotificationLogStore{db: db}
}

// Append writes one audit row for a delivered notification batch.
func (s *NotificationLogStore) Append(entry model.NotificationLog) (int64, error) {
	var questionID, activityID any
	if entry.RelatedQuestionID != "" {
		questionID = entry.RelatedQuestionID
	}
	if entry.RelatedActivityID != "" {
		activityID = entry.RelatedActivityID
	}
	method := entry.DeliveryMethod
	if method == "" {
		method = "push"
	}
	res, err := s.db.Exec(
		`INSERT INTO notification_log
		   (user_id, notification_type, title, body, related_question_id, related_activity_id, delivery_method)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, string(entry.NotificationType), entry.Title, entry.Body,
		questionID, activityID, method,
	)
	if err != nil {
		return 0, fmt.Errorf("append notification log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append notification log: %w", err)
	}
	return id, nil
}

// RecordClick stamps clicked_at on the user's log row. This is the only
// update the log ever sees, and it only happens once per row.
func (s *NotificationLogStore) RecordClick(id int64, userID string) error {
	_, err := s.db.Exec(
		`UPDATE notification_log SET clicked_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND clicked_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("record notification click: %w", err)
	}
	return nil
}

func (s *NotificationLogStore) ListByUser(userID string, limit int) ([]model.NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, user_id, notification_type, title, body, related_question_id, related_activity_id,
		        delivery_method, delivered_at, clicked_at
		 FROM notification_log WHERE user_id = ? ORDER BY delivered_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notification log: %w", err)
	}
	defer rows.Close()

	var entries []model.NotificationLog
	for rows.Next() {
		var e model.NotificationLog
		var notifType string
		var questionID, activityID sql.NullString
		var clicked sql.NullTime
		if err := rows.Scan(&e.ID, &e.UserID, &notifType, &e.Title, &e.Body,
			&questionID, &activityID, &e.DeliveryMethod, &e.DeliveredAt, &clicked); err != nil {
			return nil, fmt.Errorf("scan notification log: %w", err)
		}
		e.NotificationType = model.Category(notifType)
		e.RelatedQuestionID = questionID.String
		e.RelatedActivityID = activityID.String
		if clicked.Valid {
			t := clicked.Time
			e.ClickedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
