package mysql

import (
	"context"
	"fmt"

	"billing-backend/internal/storage"
)

// SaveAdjustment inserts one standalone comment row. Rate adjustments never
// go through here; they ride the save transaction.
func (s *Storage) SaveAdjustment(ctx context.Context, a storage.Adjustment) (int64, error) {
	const op = "storage.mysql.SaveAdjustment"

	stmt := `INSERT INTO adjustments (work_order_id, type, amount, reason, memo, created_by, created_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, FALSE)`

	res, err := s.db.ExecContext(ctx, stmt, a.WorkOrderID, a.Type, a.Amount, a.Reason, a.Memo, a.CreatedBy, a.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.LastInsertId()
}
