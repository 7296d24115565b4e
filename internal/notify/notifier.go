// Package notify delivers handover notifications to dealership staff.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/driveline/driveline-go/internal/models"
)

// Notifier sends a notification to one or more recipients. Implementations
// must not panic; failures are returned as errors.
type Notifier interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

var messageTemplate = template.Must(template.New("handover").Parse(
	`A customer conversation needs human attention.

Reason: {{.Reason}}
{{- if .CustomerName}}
Customer: {{.CustomerName}}
{{- end}}
{{- if .ConversationID}}
Conversation: {{.ConversationID}}
{{- end}}
{{- if .LastMessage}}
Last message: "{{.LastMessage}}"
{{- end}}

Handover ID: {{.HandoverID}}
`))

// BuildMessage renders the handover notification subject and body.
func BuildMessage(req models.HandoverRequest, handoverID string) (subject, body string, err error) {
	subject = fmt.Sprintf("Handover requested: %s", req.Reason)

	data := struct {
		models.HandoverRequest
		HandoverID string
	}{req, handoverID}

	var buf bytes.Buffer
	if err := messageTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render notification: %w", err)
	}
	return subject, buf.String(), nil
}

// LogNotifier writes notifications to the structured log. It is the default
// channel when no webhook is configured, and doubles as a development sink.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, recipients []string, subject, body string) error {
	n.logger.Info("handover notification",
		"recipients", strings.Join(recipients, ", "),
		"subject", subject,
		"body", body)
	return nil
}

// WebhookNotifier POSTs notifications as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhookNotifier(url string, logger *slog.Logger) *WebhookNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type webhookPayload struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

func (n *WebhookNotifier) Send(ctx context.Context, recipients []string, subject, body string) error {
	payload, err := json.Marshal(webhookPayload{
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send notification: webhook returned %d", resp.StatusCode)
	}

	n.logger.Debug("notification delivered", "url", n.url, "recipients", len(recipients))
	return nil
}
