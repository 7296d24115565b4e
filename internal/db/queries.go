// Package db provides SurrealDB query functions for dealership operations.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/driveline/driveline-go/internal/models"
)

// vehicleFields selects vehicle columns with the record id flattened to a string.
const vehicleFields = `record::id(id) AS id, dealership_id, make, model, year, price,
	mileage, body_style, fuel_type, drivetrain, color, certified, description`

// QuerySearchVehicles searches inventory with a dynamic filter.
// Zero-valued filter fields are omitted from the WHERE clause.
func (c *Client) QuerySearchVehicles(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, error) {
	clauses := []string{"dealership_id = $dealership"}
	vars := map[string]any{"dealership": filter.DealershipID}

	if len(filter.Makes) > 0 {
		clauses = append(clauses, "string::lowercase(make) IN $makes")
		vars["makes"] = lowercaseAll(filter.Makes)
	}
	if len(filter.Models) > 0 {
		clauses = append(clauses, "string::lowercase(model) IN $models")
		vars["models"] = lowercaseAll(filter.Models)
	}
	if filter.YearMin > 0 {
		clauses = append(clauses, "year >= $year_min")
		vars["year_min"] = filter.YearMin
	}
	if filter.YearMax > 0 {
		clauses = append(clauses, "year <= $year_max")
		vars["year_max"] = filter.YearMax
	}
	if filter.PriceMin > 0 {
		clauses = append(clauses, "price >= $price_min")
		vars["price_min"] = filter.PriceMin
	}
	if filter.PriceMax > 0 {
		clauses = append(clauses, "price <= $price_max")
		vars["price_max"] = filter.PriceMax
	}
	if filter.MileageMax > 0 {
		clauses = append(clauses, "mileage <= $mileage_max")
		vars["mileage_max"] = filter.MileageMax
	}
	if filter.BodyStyle != "" {
		clauses = append(clauses, "string::lowercase(body_style) = $body_style")
		vars["body_style"] = strings.ToLower(filter.BodyStyle)
	}
	if filter.FuelType != "" {
		clauses = append(clauses, "string::lowercase(fuel_type) = $fuel_type")
		vars["fuel_type"] = strings.ToLower(filter.FuelType)
	}
	if filter.Drivetrain != "" {
		clauses = append(clauses, "string::lowercase(drivetrain) = $drivetrain")
		vars["drivetrain"] = strings.ToLower(filter.Drivetrain)
	}
	if filter.Color != "" {
		clauses = append(clauses, "string::lowercase(color) = $color")
		vars["color"] = strings.ToLower(filter.Color)
	}
	if filter.Certified != nil {
		clauses = append(clauses, "certified = $certified")
		vars["certified"] = *filter.Certified
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	vars["limit"] = limit

	sql := fmt.Sprintf(`
		SELECT %s FROM vehicle
		WHERE %s
		ORDER BY price ASC
		LIMIT $limit
	`, vehicleFields, strings.Join(clauses, " AND "))

	results, err := surrealdb.Query[[]models.Vehicle](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("search vehicles: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Vehicle{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryGetVehicle retrieves a vehicle by ID. Returns ErrNotFound if missing.
func (c *Client) QueryGetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	sql := fmt.Sprintf(`SELECT %s FROM type::record("vehicle", $id)`, vehicleFields)
	results, err := surrealdb.Query[[]models.Vehicle](ctx, c.db, sql, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryInventorySummary returns stock counts and price spread for a dealership.
func (c *Client) QueryInventorySummary(ctx context.Context, dealershipID string) (*models.InventorySummary, error) {
	results, err := surrealdb.Query[[]models.InventorySummary](ctx, c.db, `
		SELECT count() AS total,
		       math::mean(price) AS avg_price,
		       math::min(price) AS min_price,
		       math::max(price) AS max_price
		FROM vehicle WHERE dealership_id = $dealership GROUP ALL
	`, map[string]any{"dealership": dealershipID})
	if err != nil {
		return nil, fmt.Errorf("inventory summary: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return &models.InventorySummary{}, nil
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetDealership retrieves a dealership by ID. Returns ErrNotFound if missing.
func (c *Client) QueryGetDealership(ctx context.Context, id string) (*models.Dealership, error) {
	results, err := surrealdb.Query[[]models.Dealership](ctx, c.db, `
		SELECT record::id(id) AS id, name, address, phone, hours, website, handover_recipients
		FROM type::record("dealership", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get dealership: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("dealership %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetPersona retrieves the persona configured for a dealership.
// Returns ErrNotFound when none is configured.
func (c *Client) QueryGetPersona(ctx context.Context, dealershipID string) (*models.Persona, error) {
	results, err := surrealdb.Query[[]models.Persona](ctx, c.db, `
		SELECT record::id(id) AS id, dealership_id, name, tone, greeting, instructions
		FROM persona WHERE dealership_id = $dealership LIMIT 1
	`, map[string]any{"dealership": dealershipID})
	if err != nil {
		return nil, fmt.Errorf("get persona: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("persona for %s: %w", dealershipID, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetLead retrieves a lead by ID. Returns ErrNotFound if missing.
func (c *Client) QueryGetLead(ctx context.Context, id string) (*models.Lead, error) {
	results, err := surrealdb.Query[[]models.Lead](ctx, c.db, `
		SELECT record::id(id) AS id, dealership_id, customer_name, contact_info,
		       status, last_message, updated_at
		FROM type::record("lead", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("lead %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryUpdateLeadStatus transitions a lead's handover status.
func (c *Client) QueryUpdateLeadStatus(ctx context.Context, id, status string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("lead", $id) SET
			status = $status,
			updated_at = time::now()
	`, map[string]any{"id": id, "status": status})
	if err != nil {
		return fmt.Errorf("update lead status: %w", wrapQueryError(err))
	}
	return nil
}

// QueryLeadsByStatus returns leads in a given status, oldest first, bounded
// by limit. Used by the handover reconciliation sweep.
func (c *Client) QueryLeadsByStatus(ctx context.Context, status string, limit int) ([]models.Lead, error) {
	if limit <= 0 {
		limit = 25
	}
	results, err := surrealdb.Query[[]models.Lead](ctx, c.db, `
		SELECT record::id(id) AS id, dealership_id, customer_name, contact_info,
		       status, last_message, updated_at
		FROM lead WHERE status = $status
		ORDER BY updated_at ASC
		LIMIT $limit
	`, map[string]any{"status": status, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("leads by status: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Lead{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryInsertAnalytics appends one routing analytics record.
func (c *Client) QueryInsertAnalytics(ctx context.Context, rec models.AnalyticsRecord) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE analytics SET
			dealership_id = $dealership_id,
			conversation_id = $conversation_id,
			message_id = $message_id,
			selected_handler = $selected_handler,
			confidence = $confidence,
			response_time_ms = $response_time_ms,
			escalated = $escalated,
			escalation_reason = $escalation_reason
	`, map[string]any{
		"dealership_id":     rec.DealershipID,
		"conversation_id":   rec.ConversationID,
		"message_id":        rec.MessageID,
		"selected_handler":  string(rec.SelectedHandler),
		"confidence":        rec.Confidence,
		"response_time_ms":  rec.ResponseTimeMs,
		"escalated":         rec.Escalated,
		"escalation_reason": rec.EscalationReason,
	})
	if err != nil {
		return fmt.Errorf("insert analytics: %w", wrapQueryError(err))
	}
	return nil
}

// QueryRecentAnalytics returns the latest routing records for a dealership.
func (c *Client) QueryRecentAnalytics(ctx context.Context, dealershipID string, limit int) ([]models.AnalyticsRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := surrealdb.Query[[]models.AnalyticsRecord](ctx, c.db, `
		SELECT dealership_id, conversation_id, message_id, selected_handler,
		       confidence, response_time_ms, escalated, escalation_reason, created_at
		FROM analytics WHERE dealership_id = $dealership
		ORDER BY created_at DESC
		LIMIT $limit
	`, map[string]any{"dealership": dealershipID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("recent analytics: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.AnalyticsRecord{}, nil
	}
	return (*results)[0].Result, nil
}

func lowercaseAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
