package store

import (
	"testing"

	"github.com/dukerupert/familypulse/internal/model"
)

func TestAppendAndList(t *testing.T) {
	ls := NewNotificationLogStore(testDB(t))

	id, err := ls.Append(model.NotificationLog{
		UserID:            "user-a",
		NotificationType:  model.CategoryYourTurn,
		Title:             "Your turn",
		Body:              "Pick a question",
		RelatedQuestionID: "q-1",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}

	entries, err := ls.ListByUser("user-a", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.NotificationType != model.CategoryYourTurn || e.RelatedQuestionID != "q-1" {
		t.Errorf("entry = %+v", e)
	}
	if e.DeliveryMethod != "push" {
		t.Errorf("delivery_method = %q, want push default", e.DeliveryMethod)
	}
	if e.ClickedAt != nil {
		t.Error("expected clicked_at unset")
	}
}

func TestRecordClickOnce(t *testing.T) {
	ls := NewNotificationLogStore(testDB(t))

	id, _ := ls.Append(model.NotificationLog{
		UserID: "user-a", NotificationType: model.CategoryNewAnswer, Title: "T", Body: "B",
	})

	if err := ls.RecordClick(id, "user-a"); err != nil {
		t.Fatalf("record click: %v", err)
	}
	entries, _ := ls.ListByUser("user-a", 10)
	if entries[0].ClickedAt == nil {
		t.Fatal("expected clicked_at stamped")
	}
	first := *entries[0].ClickedAt

	// A second click does not move the timestamp.
	if err := ls.RecordClick(id, "user-a"); err != nil {
		t.Fatalf("second click: %v", err)
	}
	entries, _ = ls.ListByUser("user-a", 10)
	if !entries[0].ClickedAt.Equal(first) {
		t.Error("expected clicked_at to be immutable after first click")
	}
}

func TestRecordClickWrongUser(t *testing.T) {
	ls := NewNotificationLogStore(testDB(t))

	id, _ := ls.Append(model.NotificationLog{
		UserID: "user-a", NotificationType: model.CategoryNewPick, Title: "T", Body: "B",
	})

	// Another user's click is a no-op.
	if err := ls.RecordClick(id, "user-b"); err != nil {
		t.Fatalf("click: %v", err)
	}
	entries, _ := ls.ListByUser("user-a", 10)
	if entries[0].ClickedAt != nil {
		t.Error("expected no clicked_at for another user's click")
	}
}
