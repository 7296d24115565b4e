package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driveline/driveline-go/internal/models"
)

var (
	handoverLead       string
	handoverDealership string
	handoverReason     string
	handoverCustomer   string
	handoverMessage    string
)

var handoverCmd = &cobra.Command{
	Use:   "handover",
	Short: "Hand a conversation to dealership staff",
	Long: `Trigger a handover: mark the lead, resolve recipients, and send the
staff notification.

Examples:
  driveline handover -d dealership:main --reason "customer requested a human"
  driveline handover -d dealership:main -l lead:42 --reason "test drive scheduling" --customer "Sam"`,
	RunE: runHandover,
}

func init() {
	handoverCmd.Flags().StringVarP(&handoverLead, "lead", "l", "", "lead record id")
	handoverCmd.Flags().StringVarP(&handoverDealership, "dealership", "d", "", "dealership record id")
	handoverCmd.Flags().StringVar(&handoverReason, "reason", "", "handover reason")
	handoverCmd.Flags().StringVar(&handoverCustomer, "customer", "", "customer name")
	handoverCmd.Flags().StringVar(&handoverMessage, "message", "", "customer's last message")
	handoverCmd.MarkFlagRequired("dealership")
	handoverCmd.MarkFlagRequired("reason")
}

func runHandover(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result := getHandoverController().TriggerHandover(ctx, models.HandoverRequest{
		LeadID:       handoverLead,
		DealershipID: handoverDealership,
		Reason:       handoverReason,
		CustomerName: handoverCustomer,
		LastMessage:  handoverMessage,
	})

	fmt.Printf("handover:   %s\n", result.HandoverID)
	if result.Success {
		fmt.Printf("status:     completed, notified %d recipient(s)\n", len(result.Recipients))
		for _, r := range result.Recipients {
			fmt.Printf("  - %s\n", r)
		}
		return nil
	}
	return fmt.Errorf("handover failed: %s", result.Error)
}
