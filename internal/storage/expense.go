package storage

// ExpenseItem is one non-labor expense line. CostTotal is always
// unitPrice*quantity; bill fields are derived from the category markup unless
// ManualBill is set, in which case they hold operator input verbatim.
type ExpenseItem struct {
	ID            int64    `json:"id"`
	WorkOrderID   int64    `json:"work_order_id"`
	Category      string   `json:"category"`
	CostUnitPrice float64  `json:"cost_unit_price"`
	CostQuantity  float64  `json:"cost_quantity"`
	CostTotal     float64  `json:"cost_total"`
	BillUnitPrice float64  `json:"bill_unit_price"`
	BillQuantity  float64  `json:"bill_quantity"`
	BillTotal     float64  `json:"bill_total"`
	ManualBill    bool     `json:"manual_bill"`
	FileEstimate  *float64 `json:"file_estimate"`
	Memo          *string  `json:"memo"`
}
