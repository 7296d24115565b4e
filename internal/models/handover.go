package models

import "time"

// Lead status values for handover tracking.
const (
	LeadStatusOpen              = "open"
	LeadStatusHandoverInitiated = "handover_initiated"
	LeadStatusHandoverCompleted = "handover_completed"
	LeadStatusHandoverFailed    = "handover_failed"
)

// Lead is the datastore record a handover attaches to.
type Lead struct {
	ID           string    `json:"id"`
	DealershipID string    `json:"dealership_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	ContactInfo  string    `json:"contact_info,omitempty"`
	Status       string    `json:"status"`
	LastMessage  string    `json:"last_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HandoverRequest carries everything needed to hand a conversation to a human.
type HandoverRequest struct {
	LeadID         string `json:"lead_id"`
	DealershipID   string `json:"dealership_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Reason         string `json:"reason"`
	CustomerName   string `json:"customer_name,omitempty"`
	LastMessage    string `json:"last_message,omitempty"`
}

// HandoverResult is the structured outcome of a handover attempt.
// HandoverID is generated once per trigger call and is stable across
// internal retries.
type HandoverResult struct {
	HandoverID       string   `json:"handover_id"`
	Success          bool     `json:"success"`
	NotificationSent bool     `json:"notification_sent"`
	Recipients       []string `json:"recipients,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// HandoverVerdict is the outcome of a rule-based handover check.
type HandoverVerdict struct {
	ShouldHandover bool   `json:"should_handover"`
	Reason         string `json:"reason,omitempty"`
}
