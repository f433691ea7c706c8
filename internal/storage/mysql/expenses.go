package mysql

import (
	"context"
	"fmt"

	"billing-backend/internal/storage"
)

func (s *Storage) GetExpenses(ctx context.Context, workOrderID int64) ([]storage.ExpenseItem, error) {
	const op = "storage.mysql.GetExpenses"

	stmt := `SELECT id, work_order_id, category, cost_unit_price, cost_quantity, cost_total,
		bill_unit_price, bill_quantity, bill_total, manual_bill, file_estimate, memo
		FROM expense_items WHERE work_order_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, stmt, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []storage.ExpenseItem
	for rows.Next() {
		var e storage.ExpenseItem
		err = rows.Scan(&e.ID, &e.WorkOrderID, &e.Category, &e.CostUnitPrice, &e.CostQuantity,
			&e.CostTotal, &e.BillUnitPrice, &e.BillQuantity, &e.BillTotal, &e.ManualBill,
			&e.FileEstimate, &e.Memo)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, e)
	}

	return items, rows.Err()
}
