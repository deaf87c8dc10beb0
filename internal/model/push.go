package model

import "time"

// Category identifies a kind of push notification. The set is closed: the
// dispatcher maps every category to its preference toggle in a single switch,
// so a new category has to be added there too.
type Category string

const (
	CategoryYourTurn        Category = "your_turn"
	CategoryPendingReminder Category = "pending_reminder"
	CategoryLastToAnswer    Category = "last_to_answer"
	CategoryWeeklyDigest    Category = "weekly_digest"
	CategoryNewActivity     Category = "new_activity"
	CategoryNewAnswer       Category = "new_answer"
	CategoryNewPick         Category = "new_pick"
)

// PushSubscription is one device's registered push endpoint. Rows are never
// hard-deleted; opt-out and dead endpoints flip is_active off so the history
// stays around for debugging.
type PushSubscription struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	Endpoint   string     `json:"endpoint"`
	P256dhKey  string     `json:"p256dh"`
	AuthKey    string     `json:"auth"`
	UserAgent  string     `json:"user_agent,omitempty"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NotificationPreferences is the single per-user settings row consulted by
// the dispatcher before any delivery attempt.
type NotificationPreferences struct {
	ID                    int64     `json:"id"`
	UserID                string    `json:"user_id"`
	NotifyYourTurn        bool      `json:"notify_your_turn"`
	NotifyPendingReminder bool      `json:"notify_pending_reminder"`
	NotifyLastToAnswer    bool      `json:"notify_last_to_answer"`
	NotifyWeeklyDigest    bool      `json:"notify_weekly_digest"`
	NotifyActivities      bool      `json:"notify_activities"`
	NotifyAnswers         bool      `json:"notify_answers"`
	NotifyPicks           bool      `json:"notify_picks"`
	QuietHoursEnabled     bool      `json:"quiet_hours_enabled"`
	QuietHoursStart       string    `json:"quiet_hours_start"`
	QuietHoursEnd         string    `json:"quiet_hours_end"`
	Timezone              string    `json:"timezone"`
	PushEnabled           bool      `json:"push_enabled"`
	EmailEnabled          bool      `json:"email_enabled"`
	SMSEnabled            bool      `json:"sms_enabled"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NotificationLog is an append-only audit row for a delivered notification.
// The only permitted update is stamping clicked_at.
type NotificationLog struct {
	ID                int64      `json:"id"`
	UserID            string     `json:"user_id"`
	NotificationType  Category   `json:"notification_type"`
	Title             string     `json:"title"`
	Body              string     `json:"body"`
	RelatedQuestionID string     `json:"related_question_id,omitempty"`
	RelatedActivityID string     `json:"related_activity_id,omitempty"`
	DeliveryMethod    string     `json:"delivery_method"`
	DeliveredAt       time.Time  `json:"delivered_at"`
	ClickedAt         *time.Time `json:"clicked_at,omitempty"`
}
