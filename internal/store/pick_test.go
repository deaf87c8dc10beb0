package store

import "testing"

func TestSetPick(t *testing.T) {
	ps := NewPickStore(testDB(t))

	p, err := ps.Set("user-a", "meal", "Pizza", "italian")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if p.ID == "" || !p.IsCurrent {
		t.Errorf("pick = %+v, want current with generated id", p)
	}
	if p.InterestTag != "italian" {
		t.Errorf("interest_tag = %q, want italian", p.InterestTag)
	}
}

func TestSetPickVersionsHistory(t *testing.T) {
	ps := NewPickStore(testDB(t))

	first, _ := ps.Set("user-a", "meal", "Pizza", "")
	second, err := ps.Set("user-a", "meal", "Sushi", "")
	if err != nil {
		t.Fatalf("set again: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a fresh row, not an update")
	}

	current, _ := ps.CurrentByUser("user-a")
	if len(current) != 1 || current[0].Value != "Sushi" {
		t.Fatalf("current = %+v, want only Sushi", current)
	}

	history, err := ps.History("user-a", "meal")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	old := history[1]
	if old.Value != "Pizza" || old.IsCurrent || old.ArchivedAt == nil {
		t.Errorf("old pick = %+v, want archived Pizza", old)
	}
}

func TestPicksIndependentPerCategory(t *testing.T) {
	ps := NewPickStore(testDB(t))

	ps.Set("user-a", "meal", "Pizza", "")
	ps.Set("user-a", "show", "Severance", "")

	current, err := ps.CurrentByUser("user-a")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(current) != 2 {
		t.Fatalf("current = %d, want one per category", len(current))
	}

	// Changing one category leaves the other alone.
	ps.Set("user-a", "meal", "Tacos", "")
	current, _ = ps.CurrentByUser("user-a")
	if len(current) != 2 {
		t.Fatalf("current = %d, want 2", len(current))
	}
	for _, p := range current {
		if p.Category == "show" && p.Value != "Severance" {
			t.Errorf("show pick = %q, want untouched", p.Value)
		}
	}
}
