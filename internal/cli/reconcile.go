package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileBatch int

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-attempt handovers stuck in handover_initiated",
	Long: `Run one reconciliation sweep: re-attempt every lead stuck in the
handover_initiated state, up to the batch size. Safe to run repeatedly;
completed leads are not picked up again.

Examples:
  driveline reconcile
  driveline reconcile --batch 50`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().IntVar(&reconcileBatch, "batch", 0, "max leads per sweep (default from config)")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	batch := reconcileBatch
	if batch <= 0 {
		batch = cfg.ReconcileBatchSize
	}

	report, err := getHandoverController().ReconcileStuck(ctx, batch)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	if report.Scanned == 0 {
		fmt.Println("No stuck handovers found")
		return nil
	}
	fmt.Printf("scanned:    %d\n", report.Scanned)
	fmt.Printf("completed:  %d\n", report.Completed)
	fmt.Printf("failed:     %d\n", report.Failed)
	return nil
}
