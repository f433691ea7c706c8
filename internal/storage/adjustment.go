package storage

import "time"

// Adjustment types. rate_adjustment rows are append-only and never edited;
// final_decision_change rows are operator comments and may be edited or
// soft-deleted by their author or an admin.
const (
	AdjustmentRate          = "rate_adjustment"
	AdjustmentFinalDecision = "final_decision_change"
)

type Adjustment struct {
	ID          int64     `json:"id"`
	WorkOrderID int64     `json:"work_order_id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Reason      string    `json:"reason"`
	Memo        *string   `json:"memo"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	IsDeleted   bool      `json:"is_deleted"`
}
