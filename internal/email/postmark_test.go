package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendWeeklyDigest(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))

	err := client.SendWeeklyDigest(context.Background(), "alice@example.com", "The Smiths",
		"What made you laugh this week?",
		[]DigestAnswer{{Name: "Alice", Answer: "The cat"}, {Name: "Bob", Answer: "A pun"}})
	if err != nil {
		t.Fatalf("send digest: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.Subject != "The Smiths's week in answers" {
		t.Errorf("Subject = %q", received.Subject)
	}
	if !strings.Contains(received.TextBody, "What made you laugh this week?") {
		t.Errorf("text body missing question: %q", received.TextBody)
	}
	if !strings.Contains(received.TextBody, "Bob: A pun") {
		t.Errorf("text body missing answer: %q", received.TextBody)
	}
	if !strings.Contains(received.HtmlBody, "<strong>Alice</strong>") {
		t.Errorf("html body missing answer: %q", received.HtmlBody)
	}
}

func TestSendWeeklyDigestRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))
	err := client.SendWeeklyDigest(context.Background(), "a@example.com", "Fam", "Q?", nil)
	if err != nil {
		t.Fatalf("send digest: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (two retries)", calls)
	}
}

func TestSendWeeklyDigestClientErrorIsPermanent(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))
	err := client.SendWeeklyDigest(context.Background(), "a@example.com", "Fam", "Q?", nil)
	if err == nil {
		t.Fatal("expected error for API failure")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}

func TestSendWeeklyDigestNotConfigured(t *testing.T) {
	client := NewClient("", "noreply@example.com")
	err := client.SendWeeklyDigest(context.Background(), "a@example.com", "Fam", "Q?", nil)
	if err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestConfigured(t *testing.T) {
	if !NewClient("token", "from@test.com").Configured() {
		t.Error("expected Configured() = true")
	}
	if NewClient("", "from@test.com").Configured() {
		t.Error("expected Configured() = false")
	}
}
