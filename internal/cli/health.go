package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driveline/driveline-go/internal/handlers"
	"github.com/driveline/driveline-go/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check registry, datastore, and LLM readiness",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	registry, err := handlers.NewRegistry()
	if err != nil {
		registry = nil
	}

	var llmProbe health.Generator
	if _, secondary, err := getModels(); err == nil {
		llmProbe = secondary
	}

	report := health.NewChecker(registry, dbClient, llmProbe, logger).Check(ctx)

	fmt.Printf("status: %s\n", report.Status)
	for _, e := range report.Errors {
		fmt.Printf("  - %s\n", e)
	}

	snapshot := collector.Snapshot()
	if len(snapshot.Counters) > 0 {
		fmt.Println("counters:")
		for name, count := range snapshot.Counters {
			fmt.Printf("  %s = %d\n", name, count)
		}
	}

	if report.Status == health.StatusUnhealthy {
		return fmt.Errorf("unhealthy: %d check(s) failing", len(report.Errors))
	}
	return nil
}
