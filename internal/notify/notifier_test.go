package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/driveline/driveline-go/internal/models"
)

func TestBuildMessage(t *testing.T) {
	req := models.HandoverRequest{
		LeadID:         "lead:abc",
		DealershipID:   "dealership:main",
		ConversationID: "conv-42",
		Reason:         "customer requested human agent",
		CustomerName:   "Pat",
		LastMessage:    "I want to talk to a person",
	}

	subject, body, err := BuildMessage(req, "ho-123")
	if err != nil {
		t.Fatalf("BuildMessage() error = %v", err)
	}
	if !strings.Contains(subject, "customer requested human agent") {
		t.Errorf("subject missing reason: %q", subject)
	}
	for _, want := range []string{"Pat", "conv-42", "I want to talk to a person", "ho-123"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestBuildMessageOmitsEmptyFields(t *testing.T) {
	req := models.HandoverRequest{Reason: "urgency detected"}
	_, body, err := BuildMessage(req, "ho-456")
	if err != nil {
		t.Fatalf("BuildMessage() error = %v", err)
	}
	if strings.Contains(body, "Customer:") || strings.Contains(body, "Last message:") {
		t.Errorf("body should omit empty optional fields:\n%s", body)
	}
}

func TestWebhookNotifierSend(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, nil)
	err := n.Send(context.Background(), []string{"sales@example.com"}, "subject", "body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(got.Recipients) != 1 || got.Recipients[0] != "sales@example.com" {
		t.Errorf("recipients = %v", got.Recipients)
	}
}

func TestWebhookNotifierSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, nil)
	if err := n.Send(context.Background(), []string{"a@b.c"}, "s", "b"); err == nil {
		t.Fatal("Send() expected error on 500 response")
	}
}
