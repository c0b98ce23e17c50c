package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	if sender := NewSendGridSender(SendGridConfig{FromEmail: "test@example.com"}, nil); sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "test@example.com"}, nil)
	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Agenda TRG" {
		t.Errorf("expected default from name, got %q", sender.fromName)
	}
}

func TestSendGridSender_Send_NilSender(t *testing.T) {
	var sender *SendGridSender
	if err := sender.Send(context.Background(), EmailMessage{To: "a@example.com"}); err == nil {
		t.Fatal("expected error for nil sender")
	}
}

func TestSendGridSender_Send(t *testing.T) {
	var gotPath, gotAuth string
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.key", FromEmail: "agenda@example.com", Host: srv.URL}, nil)
	err := sender.Send(context.Background(), EmailMessage{To: "owner@example.com", Subject: "Oi", Body: "corpo"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/v3/mail/send" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer SG.key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if payload["subject"] != "Oi" {
		t.Fatalf("unexpected subject %#v", payload["subject"])
	}
}

func TestSendGridSender_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.bad", FromEmail: "agenda@example.com", Host: srv.URL}, nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "owner@example.com", Subject: "x", Body: "y"}); err == nil {
		t.Fatal("expected error status to surface")
	}
}
