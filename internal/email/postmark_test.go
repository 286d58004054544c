package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendGroupInviteFamily(t *testing.T) {
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

	client := NewClient("test-token", "noreply@example.com", "https://voravia.test", WithAPIURL(server.URL))

	err := client.SendGroupInvite("aunt@example.com", "tok123", "family", "The Parks")
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "aunt@example.com" {
		t.Errorf("To = %q, want %q", received.To, "aunt@example.com")
	}
	if received.From != "noreply@example.com" {
		t.Errorf("From = %q, want %q", received.From, "noreply@example.com")
	}
	if received.Subject != "You've been invited to The Parks's family on Voravia" {
		t.Errorf("Subject = %q, want family invite subject", received.Subject)
	}
	if !strings.Contains(received.TextBody, "https://voravia.test/invites/accept?token=tok123") {
		t.Errorf("TextBody missing accept link: %q", received.TextBody)
	}
}

func TestSendGroupInviteWorkplace(t *testing.T) {
	var received postmarkEmail

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", "https://voravia.test", WithAPIURL(server.URL))

	err := client.SendGroupInvite("bob@example.com", "tok456", "workplace", "Acme Wellness")
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}

	if received.Subject != "You've been invited to join Acme Wellness on Voravia" {
		t.Errorf("Subject = %q, want workplace invite subject", received.Subject)
	}
}

func TestSendGroupInviteNotConfigured(t *testing.T) {
	client := NewClient("", "noreply@example.com", "https://voravia.test")

	err := client.SendGroupInvite("aunt@example.com", "tok123", "family", "Home")
	if err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendGroupInviteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", "https://voravia.test", WithAPIURL(server.URL))

	err := client.SendGroupInvite("aunt@example.com", "tok123", "family", "Home")
	if err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestConfigured(t *testing.T) {
	c1 := NewClient("token", "from@test.com", "https://test.com")
	if !c1.Configured() {
		t.Error("expected Configured() = true")
	}

	c2 := NewClient("", "from@test.com", "https://test.com")
	if c2.Configured() {
		t.Error("expected Configured() = false")
	}
}
