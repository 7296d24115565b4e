package models

import "time"

// AnalyticsRecord is the append-only per-request routing record. Exactly
// one is persisted per routed request, escalated or not, regardless of
// the envelope's success flag.
type AnalyticsRecord struct {
	DealershipID     string      `json:"dealership_id"`
	ConversationID   string      `json:"conversation_id"`
	MessageID        string      `json:"message_id,omitempty"`
	SelectedHandler  HandlerName `json:"selected_handler"`
	Confidence       float64     `json:"confidence"`
	ResponseTimeMs   int64       `json:"response_time_ms"`
	Escalated        bool        `json:"escalated"`
	EscalationReason string      `json:"escalation_reason,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
