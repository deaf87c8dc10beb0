package push

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/familypulse/internal/model"
	"github.com/dukerupert/familypulse/internal/store"
)

// Sender delivers a payload to a single subscription. *Service implements it;
// tests substitute fakes.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// Request describes one notification to one user. The dispatcher fans it out
// to all of the user's active devices.
type Request struct {
	UserID     string
	Category   model.Category
	Title      string
	Body       string
	URL        string
	QuestionID string
	ActivityID string
}

// Result is the dispatcher's structured outcome. Gate refusals and transport
// failures are reported here, never as errors propagating to the caller.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher runs the delivery pipeline: preference load, channel gate,
// quiet-hours gate, category gate, then fan-out to every active subscription.
type Dispatcher struct {
	sender Sender
	subs   *store.PushStore
	prefs  *store.PreferenceStore
	log    *store.NotificationLogStore
	logger *slog.Logger
	now    func() time.Time
}

func NewDispatcher(sender Sender, subs *store.PushStore, prefs *store.PreferenceStore, logStore *store.NotificationLogStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		subs:   subs,
		prefs:  prefs,
		log:    logStore,
		logger: logger,
		now:    time.Now,
	}
}

// Send runs each gate in order; the first refusal stops the pipeline. Each
// subscription is attempted independently so one dead endpoint never blocks
// a user's other devices. There is no retry: a failed send is recorded and
// dropped.
func (d *Dispatcher) Send(req Request) Result {
	prefs, err := d.prefs.Get(req.UserID)
	if err != nil {
		d.logger.Error("load notification preferences", "user_id", req.UserID, "error", err)
		return Result{Success: false, Error: "user preferences not found"}
	}
	if prefs == nil {
		// The subscribe flow provisions preferences; a missing row is a
		// caller-side provisioning gap.
		return Result{Success: false, Error: "user preferences not found"}
	}

	if !prefs.PushEnabled {
		return Result{Success: false, Error: "push notifications disabled for user"}
	}

	// Quiet hours run before the category gate so a muted window silences
	// every category uniformly.
	if prefs.QuietHoursEnabled && IsQuietHours(prefs.QuietHoursStart, prefs.QuietHoursEnd, prefs.Timezone, d.now()) {
		d.logger.Info("skipping notification, quiet hours active", "user_id", req.UserID)
		return Result{Success: false, Error: "quiet hours active"}
	}

	if allowed, known := categoryAllowed(req.Category, prefs); known && !allowed {
		return Result{Success: false, Error: fmt.Sprintf("user disabled %s notifications", req.Category)}
	}

	subs, err := d.subs.ListActiveByUser(req.UserID)
	if err != nil {
		d.logger.Error("list active subscriptions", "user_id", req.UserID, "error", err)
		return Result{Success: false, Error: "no active subscriptions found"}
	}
	if len(subs) == 0 {
		return Result{Success: false, Error: "no active subscriptions found"}
	}

	url := req.URL
	if url == "" {
		url = "/connect"
	}
	payload := Payload{
		Title:      req.Title,
		Body:       req.Body,
		URL:        url,
		QuestionID: req.QuestionID,
		ActivityID: req.ActivityID,
	}

	var successCount, failureCount int
	for i := range subs {
		sub := &subs[i]
		if err := d.sender.Send(sub, payload); err != nil {
			failureCount++
			if errors.Is(err, ErrExpired) {
				if derr := d.subs.DeactivateByID(sub.ID); derr != nil {
					d.logger.Error("deactivate expired subscription", "endpoint", sub.Endpoint, "error", derr)
				} else {
					d.logger.Info("deactivated expired push subscription", "endpoint", sub.Endpoint)
				}
			} else {
				d.logger.Error("push delivery failed", "endpoint", sub.Endpoint, "error", err)
			}
			continue
		}
		successCount++
		if terr := d.subs.TouchLastUsed(sub.ID); terr != nil {
			d.logger.Error("update last_used_at", "endpoint", sub.Endpoint, "error", terr)
		}
	}

	// One audit row per notification, not per device.
	if successCount > 0 {
		_, lerr := d.log.Append(model.NotificationLog{
			UserID:            req.UserID,
			NotificationType:  req.Category,
			Title:             req.Title,
			Body:              req.Body,
			RelatedQuestionID: req.QuestionID,
			RelatedActivityID: req.ActivityID,
			DeliveryMethod:    "push",
		})
		if lerr != nil {
			d.logger.Error("append notification log", "user_id", req.UserID, "error", lerr)
		}
	}

	d.logger.Debug("push notification dispatched",
		"user_id", req.UserID, "category", req.Category,
		"delivered", successCount, "failed", failureCount)

	res := Result{Success: successCount > 0}
	if failureCount > 0 {
		res.Error = fmt.Sprintf("failed to deliver to %d of %d subscriptions", failureCount, len(subs))
	}
	return res
}

// categoryAllowed maps a category to its preference toggle. known=false means
// the category carries no toggle and passes the gate untouched.
func categoryAllowed(c model.Category, p *model.NotificationPreferences) (allowed, known bool) {
	switch c {
	case model.CategoryYourTurn:
		return p.NotifyYourTurn, true
	case model.CategoryPendingReminder:
		return p.NotifyPendingReminder, true
	case model.CategoryLastToAnswer:
		return p.NotifyLastToAnswer, true
	case model.CategoryWeeklyDigest:
		return p.NotifyWeeklyDigest, true
	case model.CategoryNewActivity:
		return p.NotifyActivities, true
	case model.CategoryNewAnswer:
		return p.NotifyAnswers, true
	case model.CategoryNewPick:
		return p.NotifyPicks, true
	default:
		return true, false
	}
}
