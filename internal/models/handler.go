package models

// HandlerName identifies one of the closed set of response handlers.
type HandlerName string

const (
	HandlerGeneral   HandlerName = "general"
	HandlerInventory HandlerName = "inventory"
	HandlerFinance   HandlerName = "finance"
	HandlerService   HandlerName = "service"
	HandlerTradeIn   HandlerName = "trade-in"
	HandlerSales     HandlerName = "sales"

	// HandlerEscalation is a pseudo-handler recorded in analytics when a
	// message is routed to a human instead of any automated handler.
	HandlerEscalation HandlerName = "human-escalation"
)

// AllHandlers lists every dispatchable handler, in registry order.
var AllHandlers = []HandlerName{
	HandlerGeneral,
	HandlerInventory,
	HandlerFinance,
	HandlerService,
	HandlerTradeIn,
	HandlerSales,
}

// OperationSpec declares a callable operation exposed by a handler.
type OperationSpec struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Arguments   map[string]string `yaml:"arguments" json:"arguments"`
}

// HandlerDescriptor is the static profile of one handler. Loaded once,
// shared read-only across requests.
type HandlerDescriptor struct {
	Name         HandlerName     `yaml:"name" json:"name"`
	Description  string          `yaml:"description" json:"description"`
	Instructions string          `yaml:"instructions" json:"instructions"`
	Keywords     []string        `yaml:"keywords" json:"keywords,omitempty"`
	Operations   []OperationSpec `yaml:"operations" json:"operations,omitempty"`
}

// OperationResult is the structured outcome of a handler operation call.
// Failures are values, not errors, so the generation layer can narrate
// them to the customer.
type OperationResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}
