package push

import (
	"log/slog"

	"github.com/dukerupert/familypulse/internal/model"
	"github.com/dukerupert/familypulse/internal/store"
)

// Registry keeps subscription rows and the push channel toggle in sync:
// subscribing always re-enables the channel, and losing the last active
// device disables it. The toggle tracks device reality, not just explicit
// user intent.
type Registry struct {
	subs   *store.PushStore
	prefs  *store.PreferenceStore
	logger *slog.Logger
}

func NewRegistry(subs *store.PushStore, prefs *store.PreferenceStore, logger *slog.Logger) *Registry {
	return &Registry{subs: subs, prefs: prefs, logger: logger}
}

// Subscribe upserts the device's subscription and provisions preferences on
// first contact. Preference bookkeeping failures are logged, not surfaced;
// the subscription itself is what the caller needs to succeed.
func (r *Registry) Subscribe(userID, endpoint, p256dh, auth, userAgent string) (*model.PushSubscription, error) {
	sub, err := r.subs.Upsert(userID, endpoint, p256dh, auth, userAgent)
	if err != nil {
		return nil, err
	}

	if _, err := r.prefs.EnsureDefaults(userID, true); err != nil {
		r.logger.Error("provision notification preferences", "user_id", userID, "error", err)
		return sub, nil
	}
	if err := r.prefs.SetPushEnabled(userID, true); err != nil {
		r.logger.Error("re-enable push channel", "user_id", userID, "error", err)
	}
	return sub, nil
}

// Unsubscribe deactivates the device's subscription, and turns the push
// channel off when it was the user's last active device.
func (r *Registry) Unsubscribe(userID, endpoint string) error {
	if err := r.subs.Deactivate(userID, endpoint); err != nil {
		return err
	}

	n, err := r.subs.CountActiveByUser(userID)
	if err != nil {
		r.logger.Error("count active subscriptions", "user_id", userID, "error", err)
		return nil
	}
	if n == 0 {
		if err := r.prefs.SetPushEnabled(userID, false); err != nil {
			r.logger.Error("disable push channel", "user_id", userID, "error", err)
		}
	}
	return nil
}
