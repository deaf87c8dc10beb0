package store

import (
	"testing"

	"github.com/dukerupert/familypulse/internal/model"
)

func seedActiveQuestion(t *testing.T, qs *QuestionStore) string {
	t.Helper()
	q := &model.WeeklyQuestion{
		ID:             "q-1",
		FamilyID:       "fam-1",
		WeekStartDate:  "2025-01-05",
		WeekNumber:     202502,
		AssignedUserID: "user-a",
		Status:         model.QuestionPending,
	}
	if _, err := qs.Insert(q); err != nil {
		t.Fatalf("insert question: %v", err)
	}
	if err := qs.Activate(q.ID, "What made you laugh?", true); err != nil {
		t.Fatalf("activate question: %v", err)
	}
	return q.ID
}

func TestSubmitAnswer(t *testing.T) {
	db := testDB(t)
	qid := seedActiveQuestion(t, NewQuestionStore(db))
	as := NewAnswerStore(db)

	a, err := as.Submit(qid, "user-a", "The cat fell off the couch")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.ID == "" || !a.IsCurrent {
		t.Errorf("answer = %+v, want current with generated id", a)
	}

	answers, _ := as.CurrentByQuestion(qid)
	if len(answers) != 1 {
		t.Fatalf("current answers = %d, want 1", len(answers))
	}
}

func TestResubmitArchivesPrevious(t *testing.T) {
	db := testDB(t)
	qid := seedActiveQuestion(t, NewQuestionStore(db))
	as := NewAnswerStore(db)

	first, _ := as.Submit(qid, "user-a", "First thought")
	second, err := as.Submit(qid, "user-a", "Better answer")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a fresh row, not an update")
	}

	// Only the new row is current; the old one is archived history.
	answers, _ := as.CurrentByQuestion(qid)
	if len(answers) != 1 || answers[0].AnswerText != "Better answer" {
		t.Fatalf("current = %+v, want only the new answer", answers)
	}

	history, err := as.HistoryByUser(qid, "user-a")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	if history[0].AnswerText != "Better answer" {
		t.Errorf("history[0] = %q, want newest first", history[0].AnswerText)
	}
	old := history[1]
	if old.IsCurrent || old.ArchivedAt == nil {
		t.Errorf("old answer = %+v, want archived", old)
	}
}

func TestCurrentByQuestionMultipleUsers(t *testing.T) {
	db := testDB(t)
	qid := seedActiveQuestion(t, NewQuestionStore(db))
	as := NewAnswerStore(db)

	as.Submit(qid, "user-a", "Answer A")
	as.Submit(qid, "user-b", "Answer B")

	answers, err := as.CurrentByQuestion(qid)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("current = %d, want one per user", len(answers))
	}
}
