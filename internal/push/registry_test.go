package push

import (
	"log/slog"
	"testing"
)

func TestRegistrySubscribeProvisionsPreferences(t *testing.T) {
	env := setupDispatcherTest(t)
	reg := NewRegistry(env.subs, env.prefs, slog.Default())

	sub, err := reg.Subscribe(env.userID, "https://push.example.com/1", "p256dh", "auth", "Chrome")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub == nil || !sub.IsActive {
		t.Fatalf("sub = %+v, want active subscription", sub)
	}

	p, err := env.prefs.Get(env.userID)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if p == nil {
		t.Fatal("expected preferences row after subscribe")
	}
	if !p.PushEnabled {
		t.Error("expected push_enabled after subscribe")
	}
}

func TestRegistrySubscribeReenablesPush(t *testing.T) {
	env := setupDispatcherTest(t)
	reg := NewRegistry(env.subs, env.prefs, slog.Default())

	if _, err := env.prefs.EnsureDefaults(env.userID, false); err != nil {
		t.Fatalf("provision preferences: %v", err)
	}

	if _, err := reg.Subscribe(env.userID, "https://push.example.com/1", "k", "a", ""); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	p, _ := env.prefs.Get(env.userID)
	if !p.PushEnabled {
		t.Error("expected subscribe to re-enable the push channel")
	}
}

func TestRegistryUnsubscribeLastDevice(t *testing.T) {
	env := setupDispatcherTest(t)
	reg := NewRegistry(env.subs, env.prefs, slog.Default())

	reg.Subscribe(env.userID, "https://push.example.com/1", "k", "a", "")
	reg.Subscribe(env.userID, "https://push.example.com/2", "k", "a", "")

	if err := reg.Unsubscribe(env.userID, "https://push.example.com/1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	p, _ := env.prefs.Get(env.userID)
	if !p.PushEnabled {
		t.Error("push should stay enabled while another device is active")
	}

	if err := reg.Unsubscribe(env.userID, "https://push.example.com/2"); err != nil {
		t.Fatalf("unsubscribe last: %v", err)
	}
	p, _ = env.prefs.Get(env.userID)
	if p.PushEnabled {
		t.Error("push should be disabled after the last device unsubscribes")
	}

	n, _ := env.subs.CountActiveByUser(env.userID)
	if n != 0 {
		t.Errorf("active subscriptions = %d, want 0", n)
	}
}
