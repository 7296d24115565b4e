// Package handover escalates conversations to dealership staff and keeps the
// underlying lead records consistent with what was actually sent.
package handover

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/driveline/driveline-go/internal/metrics"
	"github.com/driveline/driveline-go/internal/models"
	"github.com/driveline/driveline-go/internal/notify"
)

// LeadStore is the datastore slice the controller needs.
type LeadStore interface {
	QueryUpdateLeadStatus(ctx context.Context, id, status string) error
	QueryLeadsByStatus(ctx context.Context, status string, limit int) ([]models.Lead, error)
	QueryGetDealership(ctx context.Context, id string) (*models.Dealership, error)
}

// Controller executes handovers. TriggerHandover never returns an error;
// every failure mode is folded into the HandoverResult.
type Controller struct {
	store     LeadStore
	notifier  notify.Notifier
	secondary notify.Notifier // optional second channel, best-effort
	collector *metrics.Collector
	logger    *slog.Logger

	defaultRecipients []string
}

func NewController(store LeadStore, notifier notify.Notifier, collector *metrics.Collector, logger *slog.Logger, defaultRecipients []string) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:             store,
		notifier:          notifier,
		collector:         collector,
		logger:            logger,
		defaultRecipients: defaultRecipients,
	}
}

// WithSecondaryChannel sets an optional second notification channel. Delivery
// on it is best-effort and never affects the handover outcome.
func (c *Controller) WithSecondaryChannel(n notify.Notifier) *Controller {
	c.secondary = n
	return c
}

// TriggerHandover hands a conversation to staff: marks the lead, resolves
// recipients, sends the notification, and records the outcome. The returned
// HandoverID is generated once and is stable across internal retries.
func (c *Controller) TriggerHandover(ctx context.Context, req models.HandoverRequest) (result models.HandoverResult) {
	handoverID := uuid.NewString()
	result = models.HandoverResult{HandoverID: handoverID}

	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("handover panicked", "handover_id", handoverID, "panic", rec)
			result = c.failed(ctx, req.LeadID, handoverID, fmt.Sprintf("panic: %v", rec))
		}
	}()

	c.increment(metrics.CounterHandoverInitiated, req.DealershipID)
	c.logger.Info("handover initiated",
		"handover_id", handoverID,
		"lead_id", req.LeadID,
		"dealership_id", req.DealershipID,
		"reason", req.Reason)

	if req.LeadID != "" {
		if err := c.store.QueryUpdateLeadStatus(ctx, req.LeadID, models.LeadStatusHandoverInitiated); err != nil {
			return c.failed(ctx, "", handoverID, fmt.Sprintf("mark lead initiated: %v", err))
		}
	}

	recipients := c.resolveRecipients(ctx, req.DealershipID)
	if len(recipients) == 0 {
		return c.failed(ctx, req.LeadID, handoverID, "no handover recipients configured")
	}

	subject, body, err := notify.BuildMessage(req, handoverID)
	if err != nil {
		return c.failed(ctx, req.LeadID, handoverID, err.Error())
	}

	if err := c.notifier.Send(ctx, recipients, subject, body); err != nil {
		return c.failed(ctx, req.LeadID, handoverID, fmt.Sprintf("send notification: %v", err))
	}

	if c.secondary != nil {
		if err := c.secondary.Send(ctx, recipients, subject, body); err != nil {
			c.logger.Warn("secondary notification channel failed", "handover_id", handoverID, "error", err)
		}
	}

	if req.LeadID != "" {
		if err := c.store.QueryUpdateLeadStatus(ctx, req.LeadID, models.LeadStatusHandoverCompleted); err != nil {
			// Notification already went out; report success but log the
			// inconsistent lead so the reconcile sweep can pick it up.
			c.logger.Error("mark lead completed failed", "handover_id", handoverID, "lead_id", req.LeadID, "error", err)
		}
	}

	c.increment(metrics.CounterHandoverCompleted, req.DealershipID)
	result.Success = true
	result.NotificationSent = true
	result.Recipients = recipients
	return result
}

// resolveRecipients prefers the dealership's own list over the global default.
func (c *Controller) resolveRecipients(ctx context.Context, dealershipID string) []string {
	if dealershipID != "" {
		dealership, err := c.store.QueryGetDealership(ctx, dealershipID)
		if err != nil {
			c.logger.Warn("dealership lookup failed, using default recipients",
				"dealership_id", dealershipID, "error", err)
		} else if dealership != nil && len(dealership.HandoverRecipients) > 0 {
			return dealership.HandoverRecipients
		}
	}
	return c.defaultRecipients
}

func (c *Controller) failed(ctx context.Context, leadID, handoverID, reason string) models.HandoverResult {
	c.logger.Error("handover failed", "handover_id", handoverID, "lead_id", leadID, "reason", reason)
	if leadID != "" {
		if err := c.store.QueryUpdateLeadStatus(ctx, leadID, models.LeadStatusHandoverFailed); err != nil {
			c.logger.Error("mark lead failed errored", "lead_id", leadID, "error", err)
		}
	}
	c.increment(metrics.CounterHandoverFailed, "")
	return models.HandoverResult{HandoverID: handoverID, Error: reason}
}

func (c *Controller) increment(name, dealershipID string) {
	if c.collector == nil {
		return
	}
	var labels map[string]string
	if dealershipID != "" {
		labels = map[string]string{"dealership": dealershipID}
	}
	c.collector.Increment(name, labels)
}

// ReconcileReport summarizes one reconciliation sweep.
type ReconcileReport struct {
	Scanned   int `json:"scanned"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// ReconcileStuck re-attempts every lead stuck in handover_initiated, up to
// batchSize per sweep. Per-lead failures are isolated; the sweep is
// idempotent over completed leads because the query filters them out.
func (c *Controller) ReconcileStuck(ctx context.Context, batchSize int) (ReconcileReport, error) {
	if batchSize <= 0 {
		batchSize = 25
	}

	leads, err := c.store.QueryLeadsByStatus(ctx, models.LeadStatusHandoverInitiated, batchSize)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("query stuck leads: %w", err)
	}

	report := ReconcileReport{Scanned: len(leads)}
	for _, lead := range leads {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		result := c.TriggerHandover(ctx, models.HandoverRequest{
			LeadID:       lead.ID,
			DealershipID: lead.DealershipID,
			Reason:       "reconciliation of stuck handover",
			CustomerName: lead.CustomerName,
			LastMessage:  lead.LastMessage,
		})
		if result.Success {
			report.Completed++
		} else {
			report.Failed++
		}
	}

	if report.Scanned > 0 {
		c.logger.Info("handover reconciliation sweep finished",
			"scanned", report.Scanned,
			"completed", report.Completed,
			"failed", report.Failed)
	}
	return report, nil
}
