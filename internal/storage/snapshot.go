package storage

import "time"

// AggregationSnapshot holds the immutable totals written once at finalization.
// Breakdown columns hold the JSON-serialized activity and expense lines as
// they were at that moment.
type AggregationSnapshot struct {
	ID              int64     `json:"id"`
	WorkOrderID     int64     `json:"work_order_id"`
	TotalHours      float64   `json:"total_hours"`
	CostTotal       float64   `json:"cost_total"`
	BillTotal       float64   `json:"bill_total"`
	MaterialTotal   float64   `json:"material_total"`
	AdjustmentTotal float64   `json:"adjustment_total"`
	FinalAmount     float64   `json:"final_amount"`
	ActivitiesJSON  string    `json:"activities_json"`
	ExpensesJSON    string    `json:"expenses_json"`
	AggregatedBy    string    `json:"aggregated_by"`
	AggregatedAt    time.Time `json:"aggregated_at"`
}
