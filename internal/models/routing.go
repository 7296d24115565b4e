package models

// Priority ranks how quickly a routed message needs attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// RoutingDecision is the Routing Analyzer's verdict for one message.
// Escalation and normal-handler routing are mutually exclusive outcomes.
type RoutingDecision struct {
	RecommendedHandler string   `json:"recommended_handler"`
	Confidence         float64  `json:"confidence"`
	Reasoning          string   `json:"reasoning,omitempty"`
	ShouldEscalate     bool     `json:"should_escalate"`
	EscalationReason   string   `json:"escalation_reason,omitempty"`
	Priority           Priority `json:"priority"`
}

// SentimentAnalysis pairs 1:1 with a RoutingDecision for the same request.
type SentimentAnalysis struct {
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
	Urgency string  `json:"urgency"`
}

// TimingMetrics records where a request spent its time.
type TimingMetrics struct {
	PrimaryMs  int64 `json:"primary_ms"`
	FallbackMs int64 `json:"fallback_ms"`
	TotalMs    int64 `json:"total_ms"`
	Attempts   int   `json:"attempts"`
}

// ResponseEnvelope is the uniform result of a route-and-respond call.
// Always non-nil; Success=false still carries a user-displayable message.
type ResponseEnvelope struct {
	Success         bool          `json:"success"`
	Content         string        `json:"content"`
	SelectedHandler string        `json:"selected_handler,omitempty"`
	Confidence      float64       `json:"confidence"`
	UsedFallback    bool          `json:"used_fallback"`
	Escalated       bool          `json:"escalated"`
	FallbackReason  string        `json:"fallback_reason,omitempty"`
	Timing          TimingMetrics `json:"timing"`
	Errors          []string      `json:"errors,omitempty"`
}
