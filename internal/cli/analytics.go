package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	analyticsDealership string
	analyticsLimit      int
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show recent routing records for a dealership",
	Long: `List the most recent routing analytics records for one dealership:
which handler answered, with what confidence, and whether the turn escalated.

Examples:
  driveline analytics -d dealership:main
  driveline analytics -d dealership:main -n 50`,
	RunE: runAnalytics,
}

func init() {
	analyticsCmd.Flags().StringVarP(&analyticsDealership, "dealership", "d", "", "dealership record id")
	analyticsCmd.Flags().IntVarP(&analyticsLimit, "limit", "n", 20, "max records")
	analyticsCmd.MarkFlagRequired("dealership")
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	records, err := dbClient.QueryRecentAnalytics(ctx, analyticsDealership, analyticsLimit)
	if err != nil {
		return fmt.Errorf("query analytics: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No analytics records found")
		return nil
	}

	fmt.Printf("%-20s %-18s %-10s %-6s %-9s %s\n", "TIME", "HANDLER", "CONFIDENCE", "MS", "ESCALATED", "CONVERSATION")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, rec := range records {
		escalated := ""
		if rec.Escalated {
			escalated = "yes"
		}
		fmt.Printf("%-20s %-18s %-10.2f %-6d %-9s %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.SelectedHandler,
			rec.Confidence,
			rec.ResponseTimeMs,
			escalated,
			rec.ConversationID)
	}
	return nil
}
