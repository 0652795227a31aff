package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type capturedEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func newEmailServer(t *testing.T, got *capturedEmail) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test_key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode email body failed: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSendReminderRequestShape(t *testing.T) {
	var got capturedEmail
	server := newEmailServer(t, &got)
	defer server.Close()

	client := NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "re_test_key",
		From:    "Journal <reminders@resend.dev>",
		SiteURL: "https://journal.example",
	})

	if err := client.SendReminder(context.Background(), "ada@example.com", "Ada"); err != nil {
		t.Fatalf("send reminder failed: %v", err)
	}
	if got.From != "Journal <reminders@resend.dev>" || got.To != "ada@example.com" {
		t.Fatalf("envelope = %+v", got)
	}
	if got.Subject != "A Moment for Reflection" {
		t.Fatalf("subject = %q", got.Subject)
	}
	if !strings.Contains(got.HTML, "Ada") || !strings.Contains(got.HTML, "https://journal.example") {
		t.Fatalf("html missing name or link: %q", got.HTML)
	}
}

func TestSendWelcomeRequestShape(t *testing.T) {
	var got capturedEmail
	server := newEmailServer(t, &got)
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "re_test_key", SiteURL: "https://journal.example"})

	if err := client.SendWelcome(context.Background(), "ada@example.com", "Ada"); err != nil {
		t.Fatalf("send welcome failed: %v", err)
	}
	if got.Subject != "Welcome to Your Subconscious Journey" {
		t.Fatalf("subject = %q", got.Subject)
	}
}

func TestSendWithoutAPIKey(t *testing.T) {
	client := NewClient(Config{})

	if client.Configured() {
		t.Fatal("empty client reports configured")
	}
	if err := client.SendReminder(context.Background(), "ada@example.com", "Ada"); err == nil {
		t.Fatal("send without api key succeeded")
	}
}

func TestSendSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid from address"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "re_test_key"})
	err := client.SendReminder(context.Background(), "ada@example.com", "Ada")
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Fatalf("send err = %v, want status 422 error", err)
	}
}
