package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/driveline/driveline-go/internal/models"
)

// InventoryStore is the datastore slice handler operations consume.
type InventoryStore interface {
	QuerySearchVehicles(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, error)
	QueryGetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	QueryInventorySummary(ctx context.Context, dealershipID string) (*models.InventorySummary, error)
}

// Operations executes handler-declared operations against the datastore.
// Failures come back as OperationResult values so the generation layer can
// narrate them to the customer; no error escapes.
type Operations struct {
	store  InventoryStore
	logger *slog.Logger
}

// NewOperations creates the operation executor.
func NewOperations(store InventoryStore, logger *slog.Logger) *Operations {
	if logger == nil {
		logger = slog.Default()
	}
	return &Operations{store: store, logger: logger}
}

// Execute runs a named operation with string arguments. Unknown operations
// and argument problems are structured failures, not errors.
func (o *Operations) Execute(ctx context.Context, dealershipID, operation string, args map[string]string) models.OperationResult {
	switch operation {
	case "search_inventory":
		return o.searchInventory(ctx, dealershipID, args)
	case "get_vehicle_details":
		return o.getVehicleDetails(ctx, args)
	case "get_inventory_summary":
		return o.getInventorySummary(ctx, dealershipID)
	default:
		return models.OperationResult{Success: false, Error: fmt.Sprintf("unknown operation %q", operation)}
	}
}

func (o *Operations) searchInventory(ctx context.Context, dealershipID string, args map[string]string) models.OperationResult {
	filter := models.VehicleFilter{DealershipID: dealershipID, Limit: 10}

	if v := args["make"]; v != "" {
		filter.Makes = []string{v}
	}
	if v := args["model"]; v != "" {
		filter.Models = []string{v}
	}
	if v := args["year_min"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return models.OperationResult{Success: false, Error: fmt.Sprintf("invalid year_min %q", v)}
		}
		filter.YearMin = n
	}
	if v := args["year_max"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return models.OperationResult{Success: false, Error: fmt.Sprintf("invalid year_max %q", v)}
		}
		filter.YearMax = n
	}
	if v := args["price_max"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return models.OperationResult{Success: false, Error: fmt.Sprintf("invalid price_max %q", v)}
		}
		filter.PriceMax = f
	}

	vehicles, err := o.store.QuerySearchVehicles(ctx, filter)
	if err != nil {
		o.logger.Warn("search_inventory failed", "dealership", dealershipID, "error", err)
		return models.OperationResult{Success: false, Error: "inventory search is temporarily unavailable"}
	}

	return models.OperationResult{Success: true, Data: vehicles}
}

func (o *Operations) getVehicleDetails(ctx context.Context, args map[string]string) models.OperationResult {
	id := args["vehicle_id"]
	if id == "" {
		return models.OperationResult{Success: false, Error: "vehicle_id is required"}
	}

	vehicle, err := o.store.QueryGetVehicle(ctx, id)
	if err != nil {
		o.logger.Warn("get_vehicle_details failed", "vehicle_id", id, "error", err)
		return models.OperationResult{Success: false, Error: fmt.Sprintf("vehicle %s could not be found", id)}
	}

	return models.OperationResult{Success: true, Data: vehicle}
}

func (o *Operations) getInventorySummary(ctx context.Context, dealershipID string) models.OperationResult {
	summary, err := o.store.QueryInventorySummary(ctx, dealershipID)
	if err != nil {
		o.logger.Warn("get_inventory_summary failed", "dealership", dealershipID, "error", err)
		return models.OperationResult{Success: false, Error: "inventory summary is temporarily unavailable"}
	}

	return models.OperationResult{Success: true, Data: summary}
}
