// Package health reports whether the routing core's collaborators are usable.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Status is the overall health verdict.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Report is the outcome of one health check.
type Report struct {
	Status Status   `json:"status"`
	Errors []string `json:"errors,omitempty"`
}

// Pinger is the datastore reachability probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Generator is the LLM readiness probe.
type Generator interface {
	Ready() bool
}

// Registry is the handler-profile readiness probe.
type Registry interface {
	Ready() bool
}

const checkTimeout = 5 * time.Second

// Checker probes the registry, the datastore, and the LLM.
type Checker struct {
	registry Registry
	db       Pinger
	llm      Generator
	logger   *slog.Logger
}

func NewChecker(registry Registry, db Pinger, llm Generator, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{registry: registry, db: db, llm: llm, logger: logger}
}

// Check probes every collaborator. Any single failure degrades the status;
// the datastore and the LLM both failing makes it unhealthy, because no
// customer-facing path can work then.
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var errs []string
	dbDown := false
	llmDown := false

	if c.registry == nil || !c.registry.Ready() {
		errs = append(errs, "handler registry: profiles not loaded")
	}
	if c.db == nil {
		dbDown = true
		errs = append(errs, "datastore: not configured")
	} else if err := c.db.Ping(ctx); err != nil {
		dbDown = true
		errs = append(errs, fmt.Sprintf("datastore: %v", err))
	}
	if c.llm == nil || !c.llm.Ready() {
		llmDown = true
		errs = append(errs, "llm: not configured")
	}

	status := StatusHealthy
	switch {
	case dbDown && llmDown:
		status = StatusUnhealthy
	case len(errs) > 0:
		status = StatusDegraded
	}

	if status != StatusHealthy {
		c.logger.Warn("health check", "status", status, "errors", errs)
	}
	return Report{Status: status, Errors: errs}
}
