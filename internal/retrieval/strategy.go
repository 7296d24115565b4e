package retrieval

import (
	"strings"

	"github.com/driveline/driveline-go/internal/models"
)

// strategy decides which sub-fetches to run and how to weight their results.
type strategy struct {
	FetchDealership bool
	FetchVehicles   bool
	FetchPersona    bool
	FetchService    bool
	FetchFinance    bool
	FetchHistory    bool

	PerFetchLimit int
	ContextWeight float64
}

// buildStrategy maps detected intents and contextual signals onto a fetch plan.
// High urgency narrows results; returning customers weight history higher.
func buildStrategy(intents []string, convCtx *models.ConversationContext, dealershipInfoEnabled bool) strategy {
	s := strategy{
		FetchDealership: dealershipInfoEnabled,
		PerFetchLimit:   6,
		ContextWeight:   1.0,
	}

	general := hasIntent(intents, IntentGeneral)

	s.FetchVehicles = hasIntent(intents, IntentVehicle) || hasIntent(intents, IntentTestDrive) ||
		hasIntent(intents, IntentTrade) || general
	s.FetchPersona = hasIntent(intents, IntentGreeting) || general
	s.FetchService = hasIntent(intents, IntentService)
	s.FetchFinance = hasIntent(intents, IntentFinance)

	if convCtx != nil {
		if convCtx.ConversationID != "" || len(convCtx.History) > 0 {
			s.FetchHistory = true
		}
		if strings.EqualFold(convCtx.Urgency, "high") {
			s.PerFetchLimit = 3
		}
		if strings.EqualFold(convCtx.CustomerType, "returning") {
			s.ContextWeight = 1.25
		}
		if convCtx.JourneyStage == "purchase" || convCtx.JourneyStage == "negotiation" {
			s.FetchVehicles = true
		}
	}

	return s
}
