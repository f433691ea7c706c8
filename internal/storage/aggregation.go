package storage

import (
	"time"

	"billing-backend/internal/constants"
)

// ActivityLine is one aggregated row of the billing view: all records of one
// activity, summed and priced.
type ActivityLine struct {
	Activity     constants.Activity `json:"activity"`
	ActivityName string             `json:"activity_name"`
	Hours        float64            `json:"hours"`
	CostRate     float64            `json:"cost_rate"`
	BillRate     float64            `json:"bill_rate"`
	CostAmount   float64            `json:"cost_amount"`
	BillAmount   float64            `json:"bill_amount"`
	Adjustment   float64            `json:"adjustment"`
}

// AggregationDetail is the full read model of one work order's billing state.
type AggregationDetail struct {
	WorkOrderID         int64          `json:"work_order_id"`
	OrderNum            string         `json:"order_num"`
	CustomerName        string         `json:"customer_name"`
	ProjectName         string         `json:"project_name"`
	Term                string         `json:"term"`
	Status              string         `json:"status"`
	TotalHours          float64        `json:"total_hours"`
	Activities          []ActivityLine `json:"activities"`
	Adjustments         []Adjustment   `json:"adjustments"`
	Expenses            []ExpenseItem  `json:"expenses"`
	EstimateAmount      *float64       `json:"estimate_amount"`
	FinalDecisionAmount *float64       `json:"final_decision_amount"`
	DeliveryDate        *string        `json:"delivery_date"`
}

// RateAdjustmentInput is one pending bill-rate override from the edit session.
type RateAdjustmentInput struct {
	BillRate float64 `json:"bill_rate"`
	Memo     string  `json:"memo"`
}

// AggregationUpdate is the save payload. Every section is optional; Status may
// only ever carry "aggregated" to request finalization.
type AggregationUpdate struct {
	BillRateAdjustments map[constants.Activity]RateAdjustmentInput `json:"bill_rate_adjustments,omitempty"`
	Expenses            []ExpenseItem                              `json:"expenses,omitempty"`
	HasExpenses         bool                                       `json:"has_expenses"`
	EstimateAmount      *float64                                   `json:"estimate_amount,omitempty"`
	FinalDecisionAmount *float64                                   `json:"final_decision_amount,omitempty"`
	DeliveryDate        *string                                    `json:"delivery_date,omitempty"`
	Status              string                                     `json:"status,omitempty"`
}

// PreparedUpdate carries everything the save transaction writes, computed up front
// by the aggregate service so the storage layer only executes it atomically.
type PreparedUpdate struct {
	WorkOrderID         int64
	RateChanges         []RateChange
	Adjustments         []Adjustment
	Expenses            []ExpenseItem
	ReplaceExpenses     bool
	EstimateAmount      *float64
	FinalDecisionAmount *float64
	DeliveryDate        *string
	Status              string // "" when unchanged
	UpdatedAt           time.Time
}
