package store

import "testing"

func TestUpsertSubscription(t *testing.T) {
	ps := NewPushStore(testDB(t))

	sub, err := ps.Upsert("user-a", "https://push.example.com/1", "key1", "auth1", "Chrome Desktop")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if !sub.IsActive {
		t.Error("expected new subscription to be active")
	}
	if sub.UserAgent != "Chrome Desktop" {
		t.Errorf("user_agent = %q, want %q", sub.UserAgent, "Chrome Desktop")
	}
	if sub.LastUsedAt == nil {
		t.Error("expected last_used_at to be set")
	}
}

func TestUpsertRefreshesExistingEndpoint(t *testing.T) {
	ps := NewPushStore(testDB(t))

	sub1, _ := ps.Upsert("user-a", "https://push.example.com/1", "key1", "auth1", "Device A")
	sub2, err := ps.Upsert("user-a", "https://push.example.com/1", "key2", "auth2", "Device B")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if sub2.ID != sub1.ID {
		t.Errorf("expected same ID on upsert, got %d != %d", sub2.ID, sub1.ID)
	}
	if sub2.P256dhKey != "key2" {
		t.Errorf("p256dh = %q, want %q", sub2.P256dhKey, "key2")
	}

	subs, _ := ps.ListActiveByUser("user-a")
	if len(subs) != 1 {
		t.Fatalf("active subs = %d, want 1", len(subs))
	}
}

func TestUpsertReactivatesDeadEndpoint(t *testing.T) {
	ps := NewPushStore(testDB(t))

	sub, _ := ps.Upsert("user-a", "https://push.example.com/1", "k", "a", "")
	if err := ps.DeactivateByID(sub.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if n, _ := ps.CountActiveByUser("user-a"); n != 0 {
		t.Fatalf("active = %d, want 0 after deactivate", n)
	}

	// Browser re-registers the same endpoint later.
	again, err := ps.Upsert("user-a", "https://push.example.com/1", "k", "a", "")
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if !again.IsActive {
		t.Error("expected reactivation on re-subscribe")
	}
	if again.ID != sub.ID {
		t.Errorf("expected same row, got %d != %d", again.ID, sub.ID)
	}
}

func TestDeactivateKeepsRow(t *testing.T) {
	ps := NewPushStore(testDB(t))

	ps.Upsert("user-a", "https://push.example.com/1", "k", "a", "")
	if err := ps.Deactivate("user-a", "https://push.example.com/1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// Row survives for history; it just stops being active.
	sub, err := ps.GetByEndpoint("https://push.example.com/1")
	if err != nil {
		t.Fatalf("get by endpoint: %v", err)
	}
	if sub == nil {
		t.Fatal("expected row to survive deactivation")
	}
	if sub.IsActive {
		t.Error("expected inactive subscription")
	}

	subs, _ := ps.ListActiveByUser("user-a")
	if len(subs) != 0 {
		t.Errorf("active subs = %d, want 0", len(subs))
	}
}

func TestDeactivateScopedToUser(t *testing.T) {
	ps := NewPushStore(testDB(t))

	ps.Upsert("user-a", "https://push.example.com/1", "k", "a", "")

	// Another user cannot deactivate an endpoint they do not own.
	if err := ps.Deactivate("user-b", "https://push.example.com/1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if n, _ := ps.CountActiveByUser("user-a"); n != 1 {
		t.Errorf("active = %d, want 1", n)
	}
}

func TestCountActiveByUser(t *testing.T) {
	ps := NewPushStore(testDB(t))

	ps.Upsert("user-a", "https://push.example.com/1", "k", "a", "")
	ps.Upsert("user-a", "https://push.example.com/2", "k", "a", "")
	ps.Upsert("user-b", "https://push.example.com/3", "k", "a", "")

	if n, _ := ps.CountActiveByUser("user-a"); n != 2 {
		t.Errorf("user-a active = %d, want 2", n)
	}
	if n, _ := ps.CountActiveByUser("user-b"); n != 1 {
		t.Errorf("user-b active = %d, want 1", n)
	}
}
