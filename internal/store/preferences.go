package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/familypulse/internal/model"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

const preferenceColumns = `id, user_id,
	notify_your_turn, notify_pending_reminder, notify_last_to_answer, notify_weekly_digest,
	notify_activities, notify_answers, notify_picks,
	quiet_hours_enabled, quiet_hours_start, quiet_hours_end, timezone,
	push_enabled, email_enabled, sms_enabled, created_at, updated_at`

// Get returns the user's preference row, or nil if none has been provisioned
// yet.
func (s *PreferenceStore) Get(userID string) (*model.NotificationPreferences, error) {
	row := s.db.QueryRow(
		`SELECT `+preferenceColumns+` FROM notification_preferences WHERE user_id = ?`, userID,
	)
	p, err := scanPreferences(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification preferences: %w", err)
	}
	return p, nil
}

// EnsureDefaults lazily provisions the 1:1 preference row with schema
// defaults. pushEnabled only applies when the row is created; an existing row
// is left untouched.
func (s *PreferenceStore) EnsureDefaults(userID string, pushEnabled bool) (*model.NotificationPreferences, error) {
	enabled := 0
	if pushEnabled {
		enabled = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO notification_preferences (user_id, push_enabled) VALUES (?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, enabled,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure notification preferences: %w", err)
	}
	return s.Get(userID)
}

// SetPushEnabled flips the push channel toggle. The subscription registry
// calls this to keep the channel tracking device reality.
func (s *PreferenceStore) SetPushEnabled(userID string, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	_, err := s.db.Exec(
		`UPDATE notification_preferences SET push_enabled = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`,
		v, userID,
	)
	if err != nil {
		return fmt.Errorf("set push enabled: %w", err)
	}
	return nil
}

// Update writes every user-editable field of the preference row.
func (s *PreferenceStore) Update(p *model.NotificationPreferences) error {
	res, err := s.db.Exec(
		`UPDATE notification_preferences SET
		   notify_your_turn = ?, notify_pending_reminder = ?, notify_last_to_answer = ?,
		   notify_weekly_digest = ?, notify_activities = ?, notify_answers = ?, notify_picks = ?,
		   quiet_hours_enabled = ?, quiet_hours_start = ?, quiet_hours_end = ?, timezone = ?,
		   push_enabled = ?, email_enabled = ?, sms_enabled = ?,
		   updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`,
		b2i(p.NotifyYourTurn), b2i(p.NotifyPendingReminder), b2i(p.NotifyLastToAnswer),
		b2i(p.NotifyWeeklyDigest), b2i(p.NotifyActivities), b2i(p.NotifyAnswers), b2i(p.NotifyPicks),
		b2i(p.QuietHoursEnabled), p.QuietHoursStart, p.QuietHoursEnd, p.Timezone,
		b2i(p.PushEnabled), b2i(p.EmailEnabled), b2i(p.SMSEnabled),
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update notification preferences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notification preferences: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update notification preferences: no row for user %s", p.UserID)
	}
	return nil
}

func scanPreferences(row rowScanner) (*model.NotificationPreferences, error) {
	var p model.NotificationPreferences
	var yourTurn, pendingReminder, lastToAnswer, weeklyDigest, activities, answers, picks int
	var quietEnabled, pushEnabled, emailEnabled, smsEnabled int
	err := row.Scan(&p.ID, &p.UserID,
		&yourTurn, &pendingReminder, &lastToAnswer, &weeklyDigest,
		&activities, &answers, &picks,
		&quietEnabled, &p.QuietHoursStart, &p.QuietHoursEnd, &p.Timezone,
		&pushEnabled, &emailEnabled, &smsEnabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan notification preferences: %w", err)
	}
	p.NotifyYourTurn = yourTurn != 0
	p.NotifyPendingReminder = pendingReminder != 0
	p.NotifyLastToAnswer = lastToAnswer != 0
	p.NotifyWeeklyDigest = weeklyDigest != 0
	p.NotifyActivities = activities != 0
	p.NotifyAnswers = answers != 0
	p.NotifyPicks = picks != 0
	p.QuietHoursEnabled = quietEnabled != 0
	p.PushEnabled = pushEnabled != 0
	p.EmailEnabled = emailEnabled != 0
	p.SMSEnabled = smsEnabled != 0
	return &p, nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
