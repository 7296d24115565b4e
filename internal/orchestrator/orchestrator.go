// Package orchestrator composes retrieval, routing, dispatch, and response
// generation into a single route-and-respond call.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driveline/driveline-go/internal/fallback"
	"github.com/driveline/driveline-go/internal/handlers"
	"github.com/driveline/driveline-go/internal/metrics"
	"github.com/driveline/driveline-go/internal/models"
	"github.com/driveline/driveline-go/internal/retrieval"
)

// EscalationMessage is the reply sent when a conversation is routed to a
// human instead of any automated handler.
const EscalationMessage = "I'm connecting you with a member of our team who can help you directly. " +
	"Someone will be with you shortly."

// Analyzer is the routing capability the orchestrator consumes.
type Analyzer interface {
	Analyze(ctx context.Context, message, dealershipID, userID string, convCtx *models.ConversationContext) (models.RoutingDecision, models.SentimentAnalysis)
}

// Responder generates the actual reply text. The fallback controller
// satisfies this.
type Responder interface {
	GenerateResponse(ctx context.Context, req fallback.Request) models.ResponseEnvelope
}

// HandoverTrigger hands a conversation to staff when routing escalates.
type HandoverTrigger interface {
	TriggerHandover(ctx context.Context, req models.HandoverRequest) models.HandoverResult
}

// AnalyticsStore persists per-request routing records.
type AnalyticsStore interface {
	QueryInsertAnalytics(ctx context.Context, rec models.AnalyticsRecord) error
}

// Options configures the orchestrator.
type Options struct {
	// AdvancedRoutingEnabled gates the Routing Analyzer; when off, only
	// the registry's keyword classifier selects the handler.
	AdvancedRoutingEnabled bool
	// RoutingOverrideThreshold: above this analyzer confidence, the
	// analyzer's handler choice overrides the registry classifier.
	RoutingOverrideThreshold float64
	// MaxRetrievedDocuments caps each retrieval result.
	MaxRetrievedDocuments int
	// DealershipInfoEnabled controls the always-on dealership sub-fetch.
	DealershipInfoEnabled bool
}

// Deps are the orchestrator's collaborators. Analyzer and Handover may be
// nil; the corresponding steps are then skipped.
type Deps struct {
	Analyzer   Analyzer
	Registry   *handlers.Registry
	Responder  Responder
	Handover   HandoverTrigger
	Store      retrieval.Store
	Summarizer retrieval.Summarizer
	Analytics  AnalyticsStore
	Collector  *metrics.Collector
	Logger     *slog.Logger
}

// Orchestrator routes one message end to end. Stateless across requests
// except for the per-dealership retriever cache.
type Orchestrator struct {
	deps Deps
	opts Options

	mu         sync.Mutex
	retrievers map[string]*retrieval.Retriever
}

func New(deps Deps, opts Options) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.RoutingOverrideThreshold <= 0 {
		opts.RoutingOverrideThreshold = 0.7
	}
	if opts.MaxRetrievedDocuments <= 0 {
		opts.MaxRetrievedDocuments = 10
	}
	return &Orchestrator{
		deps:       deps,
		opts:       opts,
		retrievers: make(map[string]*retrieval.Retriever),
	}
}

// Route handles one inbound customer turn and always returns a usable
// envelope; errors and panics inside the pipeline are folded into it.
func (o *Orchestrator) Route(ctx context.Context, text, userID, sessionID string, convCtx *models.ConversationContext) (env models.ResponseEnvelope) {
	start := time.Now()
	messageID := uuid.NewString()

	dealershipID := ""
	if convCtx != nil {
		dealershipID = convCtx.DealershipID
	}
	msg := models.Message{
		Text:           text,
		ConversationID: sessionID,
		UserID:         userID,
		DealershipID:   dealershipID,
		Timestamp:      start,
	}

	escalationReason := ""
	defer func() {
		if rec := recover(); rec != nil {
			o.deps.Logger.Error("routing panicked", "message_id", messageID, "panic", rec)
			env = models.ResponseEnvelope{
				Success: false,
				Content: fallback.SafeDefaultMessage,
				Errors:  []string{fmt.Sprintf("panic: %v", rec)},
			}
		}
		if env.Timing.TotalMs == 0 {
			env.Timing.TotalMs = time.Since(start).Milliseconds()
		}
		o.emitAnalytics(ctx, models.AnalyticsRecord{
			DealershipID:     dealershipID,
			ConversationID:   sessionID,
			MessageID:        messageID,
			SelectedHandler:  models.HandlerName(env.SelectedHandler),
			Confidence:       env.Confidence,
			ResponseTimeMs:   env.Timing.TotalMs,
			Escalated:        env.Escalated,
			EscalationReason: escalationReason,
			CreatedAt:        time.Now().UTC(),
		})
	}()

	docs := o.retrieverFor(msg.DealershipID).Retrieve(ctx, msg.Text, convCtx)

	var decision models.RoutingDecision
	var sentiment models.SentimentAnalysis
	if o.opts.AdvancedRoutingEnabled && o.deps.Analyzer != nil {
		decision, sentiment = o.deps.Analyzer.Analyze(ctx, msg.Text, msg.DealershipID, msg.UserID, convCtx)
		if decision.ShouldEscalate {
			escalationReason = decision.EscalationReason
			return o.escalate(ctx, msg, decision)
		}
	}

	handler, confidence := o.reconcile(msg.Text, decision)
	o.deps.Logger.Info("message routed",
		"message_id", messageID,
		"dealership", dealershipID,
		"handler", handler,
		"confidence", confidence,
		"documents", len(docs))
	if o.deps.Collector != nil {
		o.deps.Collector.Increment(metrics.CounterRouted, map[string]string{"handler": string(handler)})
	}

	descriptor := o.deps.Registry.Get(handler)
	env = o.deps.Responder.GenerateResponse(ctx, fallback.Request{
		Message:      msg.Text,
		SystemPrompt: buildSystemPrompt(descriptor, docs, sentiment),
		UserPrompt:   msg.Text,
	})
	env.SelectedHandler = string(handler)
	env.Confidence = confidence
	return env
}

// reconcile merges the analyzer's recommendation with the registry
// classifier: above the override threshold the analyzer wins outright,
// and the final confidence is the max of the two.
func (o *Orchestrator) reconcile(text string, decision models.RoutingDecision) (models.HandlerName, float64) {
	registryHandler, registryConf := o.deps.Registry.Classify(text)

	if decision.RecommendedHandler == "" {
		return registryHandler, registryConf
	}

	confidence := decision.Confidence
	if registryConf > confidence {
		confidence = registryConf
	}
	if decision.Confidence > o.opts.RoutingOverrideThreshold {
		return models.HandlerName(decision.RecommendedHandler), confidence
	}
	return registryHandler, confidence
}

// escalate ends the turn without invoking any handler and hands the
// conversation to staff when a handover trigger is wired.
func (o *Orchestrator) escalate(ctx context.Context, msg models.Message, decision models.RoutingDecision) models.ResponseEnvelope {
	if o.deps.Collector != nil {
		o.deps.Collector.Increment(metrics.CounterEscalated, map[string]string{"reason": decision.EscalationReason})
	}
	o.deps.Logger.Info("message escalated",
		"dealership", msg.DealershipID,
		"reason", decision.EscalationReason)

	if o.deps.Handover != nil {
		result := o.deps.Handover.TriggerHandover(ctx, models.HandoverRequest{
			DealershipID:   msg.DealershipID,
			ConversationID: msg.ConversationID,
			Reason:         decision.EscalationReason,
			LastMessage:    msg.Text,
		})
		if !result.Success {
			o.deps.Logger.Warn("escalation handover failed",
				"handover_id", result.HandoverID,
				"error", result.Error)
		}
	}

	return models.ResponseEnvelope{
		Success:         true,
		Content:         EscalationMessage,
		SelectedHandler: string(models.HandlerEscalation),
		Confidence:      decision.Confidence,
		Escalated:       true,
	}
}

// retrieverFor returns the dealership-scoped retriever, constructing it on
// first use. Write-once, read-many.
func (o *Orchestrator) retrieverFor(dealershipID string) *retrieval.Retriever {
	o.mu.Lock()
	defer o.mu.Unlock()

	if r, ok := o.retrievers[dealershipID]; ok {
		return r
	}
	r := retrieval.New(o.deps.Store, o.deps.Summarizer, o.deps.Collector, o.deps.Logger, retrieval.Options{
		DealershipID:          dealershipID,
		MaxResults:            o.opts.MaxRetrievedDocuments,
		DealershipInfoEnabled: o.opts.DealershipInfoEnabled,
	})
	o.retrievers[dealershipID] = r
	return r
}

// emitAnalytics persists exactly one record per routed request. Failures
// are logged and swallowed; analytics must never affect the caller. The
// write survives caller cancellation.
func (o *Orchestrator) emitAnalytics(ctx context.Context, rec models.AnalyticsRecord) {
	if o.deps.Analytics == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.deps.Analytics.QueryInsertAnalytics(writeCtx, rec); err != nil {
		o.deps.Logger.Error("analytics write failed",
			"dealership", rec.DealershipID,
			"handler", rec.SelectedHandler,
			"error", err)
	}
}

const maxPromptDocLen = 400

// buildSystemPrompt combines the handler's instructions with the retrieved
// grounding context.
func buildSystemPrompt(descriptor models.HandlerDescriptor, docs []models.RetrievedDocument, sentiment models.SentimentAnalysis) string {
	var b strings.Builder
	b.WriteString(descriptor.Instructions)

	if len(docs) > 0 {
		b.WriteString("\n\nRelevant context:\n")
		for _, doc := range docs {
			content := doc.Content
			if len(content) > maxPromptDocLen {
				content = retrieval.TruncateUTF8(content, maxPromptDocLen) + "..."
			}
			fmt.Fprintf(&b, "- [%s] %s\n", doc.Type, content)
		}
	}

	if sentiment.Emotion != "" && sentiment.Emotion != "neutral" {
		fmt.Fprintf(&b, "\nThe customer seems %s. Acknowledge that in your tone.\n", sentiment.Emotion)
	}
	return b.String()
}
