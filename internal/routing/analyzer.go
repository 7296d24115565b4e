// Package routing classifies inbound messages and decides on escalation.
package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/driveline/driveline-go/internal/llm"
	"github.com/driveline/driveline-go/internal/metrics"
	"github.com/driveline/driveline-go/internal/models"
	"github.com/driveline/driveline-go/internal/retrieval"
)

// negativeSentimentThreshold: at or below this score the message escalates.
const negativeSentimentThreshold = -0.5

// Classifier is the LLM capability the analyzer consumes.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string, examples []llm.ClassExample) (llm.Classification, error)
}

// Analyzer classifies a message's intent, sentiment, and urgency and
// proposes a handler, a confidence, and an escalation verdict.
type Analyzer struct {
	classifier Classifier
	collector  *metrics.Collector
	logger     *slog.Logger
}

// NewAnalyzer creates an Analyzer. classifier may be nil; keyword rules
// then carry the classification alone.
func NewAnalyzer(classifier Classifier, collector *metrics.Collector, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{classifier: classifier, collector: collector, logger: logger}
}

var classifyLabels = []string{
	string(models.HandlerGeneral),
	string(models.HandlerInventory),
	string(models.HandlerFinance),
	string(models.HandlerService),
	string(models.HandlerTradeIn),
	string(models.HandlerSales),
}

var classifyExamples = []llm.ClassExample{
	{Text: "do you have any 2023 civics in stock", Label: string(models.HandlerInventory)},
	{Text: "what would my monthly payment be", Label: string(models.HandlerFinance)},
	{Text: "my check engine light is on", Label: string(models.HandlerService)},
	{Text: "how much is my 2019 accord worth", Label: string(models.HandlerTradeIn)},
	{Text: "can I come in for a test drive today", Label: string(models.HandlerSales)},
	{Text: "what are your hours", Label: string(models.HandlerGeneral)},
}

// Analyze produces a routing decision and sentiment for one message.
// Classification failure degrades to a keyword-derived or general routing;
// it never fails the request.
func (a *Analyzer) Analyze(ctx context.Context, message, dealershipID, userID string, convCtx *models.ConversationContext) (models.RoutingDecision, models.SentimentAnalysis) {
	start := time.Now()
	defer func() {
		if a.collector != nil {
			a.collector.RecordTiming(metrics.OpAnalyze, time.Since(start))
		}
	}()

	sentiment := analyzeSentiment(message, convCtx)

	// Escalation checks first: they override handler dispatch entirely.
	if reason, ok := escalationReason(message, sentiment); ok {
		return models.RoutingDecision{
			RecommendedHandler: string(models.HandlerEscalation),
			Confidence:         1.0,
			Reasoning:          reason,
			ShouldEscalate:     true,
			EscalationReason:   reason,
			Priority:           models.PriorityUrgent,
		}, sentiment
	}

	decision := a.classify(ctx, message, convCtx)
	decision.Priority = priorityFor(sentiment)

	a.logger.Debug("routing decision",
		"dealership", dealershipID,
		"user", userID,
		"handler", decision.RecommendedHandler,
		"confidence", decision.Confidence,
		"urgency", sentiment.Urgency)

	return decision, sentiment
}

func (a *Analyzer) classify(ctx context.Context, message string, convCtx *models.ConversationContext) models.RoutingDecision {
	if a.classifier != nil {
		result, err := a.classifier.Classify(ctx, message, classifyLabels, classifyExamples)
		if err == nil {
			return models.RoutingDecision{
				RecommendedHandler: result.Label,
				Confidence:         result.Confidence,
				Reasoning:          "model classification",
			}
		}
		a.logger.Warn("classification failed, using keyword rules", "error", err)
	}

	// Keyword fallback via the retrieval package's intent detection.
	keywords := retrieval.ExtractKeywords(message)
	intents := retrieval.DetectIntents(keywords, message, convCtx)

	handler, confidence := handlerForIntents(intents)
	return models.RoutingDecision{
		RecommendedHandler: string(handler),
		Confidence:         confidence,
		Reasoning:          "keyword rules",
	}
}

// handlerForIntents maps the first recognized intent tag to a handler.
func handlerForIntents(intents []string) (models.HandlerName, float64) {
	for _, tag := range intents {
		switch tag {
		case retrieval.IntentVehicle:
			return models.HandlerInventory, 0.6
		case retrieval.IntentService:
			return models.HandlerService, 0.6
		case retrieval.IntentFinance, retrieval.IntentLease, retrieval.IntentLoan:
			return models.HandlerFinance, 0.6
		case retrieval.IntentTrade:
			return models.HandlerTradeIn, 0.6
		case retrieval.IntentTestDrive:
			return models.HandlerSales, 0.55
		case retrieval.IntentDealership, retrieval.IntentGreeting:
			return models.HandlerGeneral, 0.5
		}
	}
	return models.HandlerGeneral, 0.3
}

func priorityFor(sentiment models.SentimentAnalysis) models.Priority {
	switch sentiment.Urgency {
	case "high":
		return models.PriorityHigh
	case "low":
		return models.PriorityLow
	default:
		return models.PriorityNormal
	}
}
