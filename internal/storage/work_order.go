package storage

import (
	"errors"
	"time"
)

// Work order statuses. The only transitions are delivered -> aggregating
// (first saved edit) and aggregating -> aggregated (finalization, one-way).
const (
	StatusDelivered   = "delivered"
	StatusAggregating = "aggregating"
	StatusAggregated  = "aggregated"
)

var (
	ErrWorkOrderNotFound  = errors.New("work order not found")
	ErrWorkOrderLocked    = errors.New("work order already aggregated")
	ErrAdjustmentNotFound = errors.New("adjustment not found")
)

type WorkOrder struct {
	ID                  int64      `json:"id"`
	OrderNum            string     `json:"order_num"`
	CustomerName        string     `json:"customer_name"`
	ProjectName         string     `json:"project_name"`
	Term                string     `json:"term"`
	Status              string     `json:"status"`
	EstimateAmount      *float64   `json:"estimate_amount"`
	FinalDecisionAmount *float64   `json:"final_decision_amount"`
	DeliveryDate        *string    `json:"delivery_date"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CanTransition reports whether the status change is one the state machine
// allows. Same-status "transitions" are not transitions.
func CanTransition(from, to string) bool {
	switch {
	case from == StatusDelivered && to == StatusAggregating:
		return true
	case from == StatusAggregating && to == StatusAggregated:
		return true
	}
	return false
}
