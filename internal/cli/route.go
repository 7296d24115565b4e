package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driveline/driveline-go/internal/models"
)

var (
	routeDealership string
	routeUser       string
	routeSession    string
	routeJSON       bool
)

var routeCmd = &cobra.Command{
	Use:   "route <message>",
	Short: "Route a customer message through the full pipeline",
	Long: `Route a single customer message: retrieve grounding context, classify
intent and sentiment, dispatch to the selected handler, and print the
response envelope.

Examples:
  driveline route "do you have a 2023 Honda Civic under $28000" -d dealership:main
  driveline route "I want to speak to a human right now" -d dealership:main
  driveline route "what are your hours" -d dealership:main --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVarP(&routeDealership, "dealership", "d", "", "dealership record id")
	routeCmd.Flags().StringVarP(&routeUser, "user", "u", "cli-user", "user id")
	routeCmd.Flags().StringVarP(&routeSession, "session", "s", "", "conversation/session id")
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "print the raw response envelope as JSON")
	routeCmd.MarkFlagRequired("dealership")
}

func runRoute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	o, err := getOrchestrator()
	if err != nil {
		return err
	}

	convCtx := &models.ConversationContext{
		DealershipID:   routeDealership,
		ConversationID: routeSession,
	}
	env := o.Route(ctx, args[0], routeUser, routeSession, convCtx)

	if routeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	}

	fmt.Println(env.Content)
	fmt.Println()
	fmt.Printf("handler:    %s (confidence %.2f)\n", env.SelectedHandler, env.Confidence)
	if env.Escalated {
		fmt.Println("escalated:  yes")
	}
	if env.UsedFallback {
		fmt.Printf("fallback:   %s\n", env.FallbackReason)
	}
	fmt.Printf("timing:     %dms total (%d primary attempts)\n", env.Timing.TotalMs, env.Timing.Attempts)
	if !env.Success {
		fmt.Printf("errors:     %v\n", env.Errors)
	}
	return nil
}
