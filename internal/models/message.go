// Package models defines data structures for the Driveline routing core.
package models

import "time"

// Message is one inbound customer turn. Immutable once created; this core
// does not persist it.
type Message struct {
	Text           string    `json:"text"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	DealershipID   string    `json:"dealership_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// DocumentType classifies the source of a retrieved document.
type DocumentType string

const (
	DocTypeVehicle         DocumentType = "vehicle"
	DocTypeDealership      DocumentType = "dealership"
	DocTypePersona         DocumentType = "persona"
	DocTypeCustomerHistory DocumentType = "customer_history"
	DocTypeService         DocumentType = "service"
	DocTypeFinance         DocumentType = "finance"
	DocTypeTrade           DocumentType = "trade"
	DocTypeKnowledge       DocumentType = "knowledge"
)

// RetrievedDocument is one scored grounding snippet. Ephemeral, generated
// per request, unique by ID within a single retrieval result.
type RetrievedDocument struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
	Type     DocumentType      `json:"type"`
}

// ConversationContext carries externally-owned conversation state into a
// route call. All fields are optional.
type ConversationContext struct {
	DealershipID    string            `json:"dealership_id"`
	ConversationID  string            `json:"conversation_id,omitempty"`
	PreviousHandler string            `json:"previous_handler,omitempty"`
	JourneyStage    string            `json:"journey_stage,omitempty"`
	CustomerType    string            `json:"customer_type,omitempty"`
	Urgency         string            `json:"urgency,omitempty"`
	RecentSearches  []string          `json:"recent_searches,omitempty"`
	Preferences     map[string]string `json:"preferences,omitempty"`
	PriceRange      *PriceRange       `json:"price_range,omitempty"`
	YearRange       *YearRange        `json:"year_range,omitempty"`
	History         []HistoryTurn     `json:"history,omitempty"`
}

// HistoryTurn is one prior exchange in the conversation.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PriceRange bounds a vehicle price filter in whole dollars.
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// YearRange bounds a model-year filter.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}
