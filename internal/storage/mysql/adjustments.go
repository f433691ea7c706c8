package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"billing-backend/internal/storage"
)

func (s *Storage) GetAdjustments(ctx context.Context, workOrderID int64) ([]storage.Adjustment, error) {
	const op = "storage.mysql.GetAdjustments"

	stmt := `SELECT id, work_order_id, type, amount, reason, memo, created_by, created_at, is_deleted
		FROM adjustments WHERE work_order_id = ? AND is_deleted = FALSE ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, stmt, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var adjustments []storage.Adjustment
	for rows.Next() {
		var a storage.Adjustment
		err = rows.Scan(&a.ID, &a.WorkOrderID, &a.Type, &a.Amount, &a.Reason,
			&a.Memo, &a.CreatedBy, &a.CreatedAt, &a.IsDeleted)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		adjustments = append(adjustments, a)
	}

	return adjustments, rows.Err()
}

func (s *Storage) GetAdjustment(ctx context.Context, id int64) (*storage.Adjustment, error) {
	const op = "storage.mysql.GetAdjustment"

	stmt := `SELECT id, work_order_id, type, amount, reason, memo, created_by, created_at, is_deleted
		FROM adjustments WHERE id = ?`

	var a storage.Adjustment
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(&a.ID, &a.WorkOrderID, &a.Type,
		&a.Amount, &a.Reason, &a.Memo, &a.CreatedBy, &a.CreatedAt, &a.IsDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrAdjustmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &a, nil
}

// UpdateAdjustmentMemo rewrites the memo of a comment-type adjustment.
// rate_adjustment rows are never touched; the caller checks the type.
func (s *Storage) UpdateAdjustmentMemo(ctx context.Context, id int64, memo string) error {
	const op = "storage.mysql.UpdateAdjustmentMemo"

	stmt := `UPDATE adjustments SET memo = ? WHERE id = ? AND type = ? AND is_deleted = FALSE`

	res, err := s.db.ExecContext(ctx, stmt, memo, id, storage.AdjustmentFinalDecision)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrAdjustmentNotFound
	}

	return nil
}

func (s *Storage) SoftDeleteAdjustment(ctx context.Context, id int64) error {
	const op = "storage.mysql.SoftDeleteAdjustment"

	stmt := `UPDATE adjustments SET is_deleted = TRUE WHERE id = ? AND type = ?`

	res, err := s.db.ExecContext(ctx, stmt, id, storage.AdjustmentFinalDecision)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrAdjustmentNotFound
	}

	return nil
}
