package handover

import (
	"strings"

	"github.com/driveline/driveline-go/internal/models"
)

// Intent tags that warrant a human handover, checked before any keyword rule.
const (
	IntentHumanRequest       = "human-request"
	IntentTestDrive          = "test-drive"
	IntentFinancing          = "financing"
	IntentTradeIn            = "trade-in"
	IntentPricingNegotiation = "pricing-negotiation"
)

// handoverRule is one entry in the ordered rule list. The first match wins.
type handoverRule struct {
	intent   string
	keywords []string
	reason   string
}

var handoverRules = []handoverRule{
	{
		intent:   IntentHumanRequest,
		keywords: []string{"speak to a human", "talk to a person", "real person", "human agent", "speak with someone"},
		reason:   "customer requested a human",
	},
	{
		intent:   IntentTestDrive,
		keywords: []string{"test drive", "schedule a drive", "come in and drive"},
		reason:   "test drive scheduling",
	},
	{
		intent:   IntentFinancing,
		keywords: []string{"apply for financing", "credit application", "pre-approval", "preapproval"},
		reason:   "financing application",
	},
	{
		intent:   IntentTradeIn,
		keywords: []string{"trade in my", "trade-in value", "appraise my", "what's my car worth"},
		reason:   "trade-in appraisal",
	},
	{
		intent:   IntentPricingNegotiation,
		keywords: []string{"best price", "out the door price", "negotiate", "make a deal", "lowest you can go"},
		reason:   "pricing negotiation",
	},
}

// ShouldHandover evaluates the ordered handover rules: intent tags first,
// then keyword matches in the raw text. No match means no handover.
func ShouldHandover(content string, intents []string) models.HandoverVerdict {
	tagged := make(map[string]bool, len(intents))
	for _, it := range intents {
		tagged[it] = true
	}
	for _, rule := range handoverRules {
		if tagged[rule.intent] {
			return models.HandoverVerdict{ShouldHandover: true, Reason: rule.reason}
		}
	}

	lower := strings.ToLower(content)
	for _, rule := range handoverRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return models.HandoverVerdict{ShouldHandover: true, Reason: rule.reason}
			}
		}
	}
	return models.HandoverVerdict{}
}
