package model

import "time"

// Pick is a user's current favorite in a category. Like answers, picks keep
// full history: changing a value archives the old row and inserts a new one.
type Pick struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Category    string     `json:"category"`
	Value       string     `json:"value"`
	InterestTag string     `json:"interest_tag,omitempty"`
	IsCurrent   bool       `json:"is_current"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
