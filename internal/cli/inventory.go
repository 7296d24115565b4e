package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driveline/driveline-go/internal/handlers"
)

var (
	inventoryDealership string
	inventoryArgs       []string
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory <operation>",
	Short: "Run an inventory handler operation",
	Long: `Run one of the inventory handler's declared operations directly:
search_inventory, get_vehicle_details, or get_inventory_summary.

Arguments are passed as key=value pairs matching the operation's schema.

Examples:
  driveline inventory search_inventory -d dealership:main -a make=Honda -a price_max=28000
  driveline inventory get_vehicle_details -d dealership:main -a vehicle_id=civic
  driveline inventory get_inventory_summary -d dealership:main`,
	Args: cobra.ExactArgs(1),
	RunE: runInventory,
}

func init() {
	inventoryCmd.Flags().StringVarP(&inventoryDealership, "dealership", "d", "", "dealership record id")
	inventoryCmd.Flags().StringArrayVarP(&inventoryArgs, "arg", "a", nil, "operation argument as key=value")
	inventoryCmd.MarkFlagRequired("dealership")
	rootCmd.AddCommand(inventoryCmd)
}

func runInventory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	opArgs := make(map[string]string, len(inventoryArgs))
	for _, kv := range inventoryArgs {
		k, v, ok := splitArg(kv)
		if !ok {
			return fmt.Errorf("invalid argument %q, expected key=value", kv)
		}
		opArgs[k] = v
	}

	ops := handlers.NewOperations(dbClient, logger)
	result := ops.Execute(ctx, inventoryDealership, args[0], opArgs)

	if !result.Success {
		return fmt.Errorf("%s: %s", args[0], result.Error)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Data)
}

func splitArg(kv string) (key, value string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], i > 0
		}
	}
	return "", "", false
}
