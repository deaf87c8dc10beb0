package store

import "testing"

func TestPreferencesGetAbsent(t *testing.T) {
	ps := NewPreferenceStore(testDB(t))

	p, err := ps.Get("user-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for unprovisioned user, got %+v", p)
	}
}

func TestEnsureDefaults(t *testing.T) {
	ps := NewPreferenceStore(testDB(t))

	p, err := ps.EnsureDefaults("user-a", true)
	if err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}

	// Schema defaults: all categories on, quiet hours off with 22:00-08:00.
	if !p.NotifyYourTurn || !p.NotifyPendingReminder || !p.NotifyLastToAnswer ||
		!p.NotifyWeeklyDigest || !p.NotifyActivities || !p.NotifyAnswers || !p.NotifyPicks {
		t.Errorf("expected all category toggles on by default, got %+v", p)
	}
	if p.QuietHoursEnabled {
		t.Error("expected quiet hours off by default")
	}
	if p.QuietHoursStart != "22:00" || p.QuietHoursEnd != "08:00" {
		t.Errorf("quiet window = %s-%s, want 22:00-08:00", p.QuietHoursStart, p.QuietHoursEnd)
	}
	if p.Timezone != "America/New_York" {
		t.Errorf("timezone = %q, want America/New_York", p.Timezone)
	}
	if !p.PushEnabled {
		t.Error("expected push enabled as requested")
	}
	if p.EmailEnabled || p.SMSEnabled {
		t.Error("expected email and sms channels off by default")
	}
}

func TestEnsureDefaultsLeavesExistingRow(t *testing.T) {
	ps := NewPreferenceStore(testDB(t))

	first, _ := ps.EnsureDefaults("user-a", false)
	first.NotifyPicks = false
	first.QuietHoursEnabled = true
	if err := ps.Update(first); err != nil {
		t.Fatalf("update: %v", err)
	}

	// A second provision call with different pushEnabled must not reset
	// anything.
	again, err := ps.EnsureDefaults("user-a", true)
	if err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	if again.PushEnabled {
		t.Error("expected existing push_enabled=false to survive")
	}
	if again.NotifyPicks {
		t.Error("expected existing toggle to survive")
	}
	if !again.QuietHoursEnabled {
		t.Error("expected existing quiet hours to survive")
	}
}

func TestSetPushEnabled(t *testing.T) {
	ps := NewPreferenceStore(testDB(t))

	ps.EnsureDefaults("user-a", true)
	if err := ps.SetPushEnabled("user-a", false); err != nil {
		t.Fatalf("set push enabled: %v", err)
	}
	p, _ := ps.Get("user-a")
	if p.PushEnabled {
		t.Error("expected push disabled")
	}
}

func TestUpdateAllFields(t *testing.T) {
	ps := NewPreferenceStore(testDB(t))

	p, _ := ps.EnsureDefaults("user-a", true)
	p.NotifyYourTurn = false
	p.NotifyWeeklyDigest = false
	p.QuietHoursEnabled = true
	p.QuietHoursStart = "21:30"
	p.QuietHoursEnd = "07:15"
	p.Timezone = "Europe/Berlin"
	p.EmailEnabled = true
	if err := ps.Update(p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := ps.Get("user-a")
	if got.NotifyYourTurn || got.NotifyWeeklyDigest {
		t.Error("expected disabled toggles to persist")
	}
	if !got.QuietHoursEnabled || got.QuietHoursStart != "21:30" || got.QuietHoursEnd != "07:15" {
		t.Errorf("quiet hours = %+v, want enabled 21:30-07:15", got)
	}
	if got.Timezone != "Europe/Berlin" {
		t.Errorf("timezone = %q, want Europe/Berlin", got.Timezone)
	}
	if !got.EmailEnabled {
		t.Error("expected email channel on")
	}
}

func TestUpdateMissingRow(t *testing.T) {
	ps := NewPreferenceStore(testDB(t))

	p, _ := ps.EnsureDefaults("user-a", true)
	p.UserID = "user-b"
	if err := ps.Update(p); err == nil {
		t.Error("expected error updating a row that does not exist")
	}
}
