package retrieval

import (
	"strings"

	"github.com/driveline/driveline-go/internal/models"
)

// Intent tags derived from a message and its conversation context.
const (
	IntentVehicle    = "vehicle"
	IntentService    = "service"
	IntentFinance    = "finance"
	IntentLease      = "lease"
	IntentLoan       = "loan"
	IntentTrade      = "trade"
	IntentDealership = "dealership"
	IntentGreeting   = "greeting"
	IntentTestDrive  = "test_drive"
	IntentGeneral    = "general"
)

var intentKeywords = map[string][]string{
	IntentVehicle: {"car", "vehicle", "suv", "sedan", "truck", "coupe", "van", "minivan",
		"hatchback", "inventory", "stock", "available", "availability", "looking",
		"mileage", "color", "awd", "4wd", "electric", "hybrid", "used", "new", "certified", "cpo"},
	IntentService: {"service", "oil", "tires", "tire", "brakes", "brake", "battery",
		"alignment", "recall", "maintenance", "inspection", "repair", "appointment", "fix"},
	IntentFinance: {"finance", "financing", "apr", "credit", "payment", "payments",
		"down", "rate", "rates", "monthly", "pre-approved", "preapproved"},
	IntentLease:      {"lease", "leasing"},
	IntentLoan:       {"loan", "borrow"},
	IntentTrade:      {"trade", "trade-in", "tradein", "valuation", "appraisal", "worth", "kbb"},
	IntentDealership: {"hours", "location", "address", "directions", "open", "closed", "phone", "dealership"},
	IntentGreeting:   {"hello", "hey", "morning", "afternoon", "evening", "thanks", "thank"},
	IntentTestDrive:  {"test", "drive", "test-drive", "testdrive", "buy", "purchase", "offer", "deal"},
}

var intentPhrases = map[string][]string{
	IntentTestDrive:  {"test drive", "come in and see", "take it for a spin"},
	IntentTrade:      {"trade in", "what is my car worth", "what's my car worth"},
	IntentGreeting:   {"good morning", "good afternoon", "good evening", "hi there"},
	IntentDealership: {"where are you", "what time do you", "are you open"},
	IntentFinance:    {"monthly payment", "down payment", "interest rate"},
}

// DetectIntents derives intent tags from keywords, raw text, and conversation
// context. Always returns at least one tag; defaults to general.
func DetectIntents(keywords []string, text string, convCtx *models.ConversationContext) []string {
	lower := strings.ToLower(text)
	kwSet := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		kwSet[k] = true
	}

	found := make(map[string]bool)
	for intent, words := range intentKeywords {
		for _, w := range words {
			if kwSet[w] {
				found[intent] = true
				break
			}
		}
	}
	// A make, model, or model-year token is a vehicle question even when the
	// message never says "car".
	for _, k := range keywords {
		if knownMakes[k] || knownModels[k] || isModelYear(k) {
			found[IntentVehicle] = true
			break
		}
	}

	for intent, phrases := range intentPhrases {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				found[intent] = true
				break
			}
		}
	}

	// Lease/loan are finance sub-tags.
	if found[IntentLease] || found[IntentLoan] {
		found[IntentFinance] = true
	}

	// A bare greeting means persona territory; a greeting plus substance does not.
	if found[IntentGreeting] && len(found) > 1 {
		delete(found, IntentGreeting)
	}

	// Context-derived tags.
	if convCtx != nil {
		switch convCtx.PreviousHandler {
		case string(models.HandlerInventory):
			found[IntentVehicle] = true
		case string(models.HandlerFinance):
			found[IntentFinance] = true
		case string(models.HandlerService):
			found[IntentService] = true
		case string(models.HandlerTradeIn):
			found[IntentTrade] = true
		}
		if len(convCtx.RecentSearches) > 0 {
			found[IntentVehicle] = true
		}
		if convCtx.JourneyStage == "purchase" || convCtx.JourneyStage == "negotiation" {
			found[IntentTestDrive] = true
		}
	}

	if len(found) == 0 {
		return []string{IntentGeneral}
	}

	// Stable order for deterministic downstream behavior.
	order := []string{
		IntentVehicle, IntentService, IntentFinance, IntentLease, IntentLoan,
		IntentTrade, IntentDealership, IntentGreeting, IntentTestDrive,
	}
	intents := make([]string, 0, len(found))
	for _, tag := range order {
		if found[tag] {
			intents = append(intents, tag)
		}
	}
	return intents
}

func hasIntent(intents []string, tag string) bool {
	for _, t := range intents {
		if t == tag {
			return true
		}
	}
	return false
}
