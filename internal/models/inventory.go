package models

import "fmt"

// Vehicle is one inventory record in the datastore.
type Vehicle struct {
	ID           string  `json:"id"`
	DealershipID string  `json:"dealership_id"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Price        float64 `json:"price"`
	Mileage      int     `json:"mileage"`
	BodyStyle    string  `json:"body_style,omitempty"`
	FuelType     string  `json:"fuel_type,omitempty"`
	Drivetrain   string  `json:"drivetrain,omitempty"`
	Color        string  `json:"color,omitempty"`
	Certified    bool    `json:"certified"`
	Description  string  `json:"description,omitempty"`
}

// Summary renders a one-line customer-facing description of the vehicle.
func (v Vehicle) Summary() string {
	s := fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
	if v.Price > 0 {
		s += fmt.Sprintf(" at $%.0f", v.Price)
	}
	if v.Mileage > 0 {
		s += fmt.Sprintf(" with %d miles", v.Mileage)
	}
	if v.Certified {
		s += " (certified pre-owned)"
	}
	return s
}

// VehicleFilter holds the dynamic search criteria for inventory queries.
// Zero values mean "not filtered".
type VehicleFilter struct {
	DealershipID string   `json:"dealership_id"`
	Makes        []string `json:"makes,omitempty"`
	Models       []string `json:"models,omitempty"`
	YearMin      int      `json:"year_min,omitempty"`
	YearMax      int      `json:"year_max,omitempty"`
	PriceMin     float64  `json:"price_min,omitempty"`
	PriceMax     float64  `json:"price_max,omitempty"`
	MileageMax   int      `json:"mileage_max,omitempty"`
	BodyStyle    string   `json:"body_style,omitempty"`
	FuelType     string   `json:"fuel_type,omitempty"`
	Drivetrain   string   `json:"drivetrain,omitempty"`
	Color        string   `json:"color,omitempty"`
	Certified    *bool    `json:"certified,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// InventorySummary aggregates a dealership's stock.
type InventorySummary struct {
	Total    int     `json:"total"`
	AvgPrice float64 `json:"avg_price"`
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
}

// Dealership is one dealership record in the datastore.
type Dealership struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Address            string   `json:"address,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	Hours              string   `json:"hours,omitempty"`
	Website            string   `json:"website,omitempty"`
	HandoverRecipients []string `json:"handover_recipients,omitempty"`
}

// Persona configures the assistant's voice for one dealership.
type Persona struct {
	ID           string `json:"id"`
	DealershipID string `json:"dealership_id"`
	Name         string `json:"name"`
	Tone         string `json:"tone,omitempty"`
	Greeting     string `json:"greeting,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}
