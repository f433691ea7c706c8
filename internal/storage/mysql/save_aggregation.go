package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"billing-backend/internal/storage"
)

// CommitAggregationUpdate applies one prepared save in a single transaction:
// rate interval close/open pairs, their paired adjustment rows, the expense
// replace-all and the work-order field updates. A partial write here would
// corrupt the audit trail, so everything rides on one tx.
func (s *Storage) CommitAggregationUpdate(ctx context.Context, upd storage.PreparedUpdate) error {
	const op = "storage.mysql.CommitAggregationUpdate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	// Lock the order row and re-check the status inside the tx.
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM work_orders WHERE id = ? FOR UPDATE`, upd.WorkOrderID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrWorkOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: lock work order: %w", op, err)
	}
	if status == storage.StatusAggregated {
		return storage.ErrWorkOrderLocked
	}

	for _, rc := range upd.RateChanges {
		if rc.OldRateID != 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE activity_rates SET effective_to = ? WHERE id = ? AND effective_to IS NULL`,
				rc.ChangedAt, rc.OldRateID)
			if err != nil {
				return fmt.Errorf("%s: close rate interval: %w", op, err)
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO activity_rates (activity, effective_from, effective_to, cost_rate, bill_rate)
			VALUES (?, ?, NULL, ?, ?)`,
			rc.Activity, rc.ChangedAt, rc.CostRate, rc.NewBillRate)
		if err != nil {
			return fmt.Errorf("%s: open rate interval: %w", op, err)
		}
	}

	for _, a := range upd.Adjustments {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO adjustments (work_order_id, type, amount, reason, memo, created_by, created_at, is_deleted)
			VALUES (?, ?, ?, ?, ?, ?, ?, FALSE)`,
			a.WorkOrderID, a.Type, a.Amount, a.Reason, a.Memo, a.CreatedBy, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("%s: insert adjustment: %w", op, err)
		}
	}

	if upd.ReplaceExpenses {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM expense_items WHERE work_order_id = ?`, upd.WorkOrderID)
		if err != nil {
			return fmt.Errorf("%s: clear expenses: %w", op, err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO expense_items (work_order_id, category, cost_unit_price, cost_quantity, cost_total,
			bill_unit_price, bill_quantity, bill_total, manual_bill, file_estimate, memo)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("%s: prepare expense insert: %w", op, err)
		}

		for _, e := range upd.Expenses {
			_, err = stmt.ExecContext(ctx, upd.WorkOrderID, e.Category, e.CostUnitPrice, e.CostQuantity,
				e.CostTotal, e.BillUnitPrice, e.BillQuantity, e.BillTotal, e.ManualBill, e.FileEstimate, e.Memo)
			if err != nil {
				return fmt.Errorf("%s: insert expense: %w", op, err)
			}
		}
	}

	if upd.EstimateAmount != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE work_orders SET estimate_amount = ? WHERE id = ?`, *upd.EstimateAmount, upd.WorkOrderID)
		if err != nil {
			return fmt.Errorf("%s: update estimate amount: %w", op, err)
		}
	}
	if upd.FinalDecisionAmount != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE work_orders SET final_decision_amount = ? WHERE id = ?`, *upd.FinalDecisionAmount, upd.WorkOrderID)
		if err != nil {
			return fmt.Errorf("%s: update final decision amount: %w", op, err)
		}
	}
	if upd.DeliveryDate != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE work_orders SET delivery_date = ? WHERE id = ?`, *upd.DeliveryDate, upd.WorkOrderID)
		if err != nil {
			return fmt.Errorf("%s: update delivery date: %w", op, err)
		}
	}

	if upd.Status != "" {
		_, err = tx.ExecContext(ctx,
			`UPDATE work_orders SET status = ? WHERE id = ?`, upd.Status, upd.WorkOrderID)
		if err != nil {
			return fmt.Errorf("%s: update status: %w", op, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE work_orders SET updated_at = ? WHERE id = ?`, upd.UpdatedAt, upd.WorkOrderID)
	if err != nil {
		return fmt.Errorf("%s: touch work order: %w", op, err)
	}

	return tx.Commit()
}

// SaveSnapshot writes the finalization snapshot and flips the order to
// aggregated in one transaction. The status guard makes re-finalizing an
// already aggregated order a no-write refusal.
func (s *Storage) SaveSnapshot(ctx context.Context, snap storage.AggregationSnapshot) error {
	const op = "storage.mysql.SaveSnapshot"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE work_orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		storage.StatusAggregated, snap.AggregatedAt, snap.WorkOrderID, storage.StatusAggregating)
	if err != nil {
		return fmt.Errorf("%s: update status: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrWorkOrderLocked
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO aggregation_snapshots (work_order_id, total_hours, cost_total, bill_total,
		material_total, adjustment_total, final_amount, activities_json, expenses_json,
		aggregated_by, aggregated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.WorkOrderID, snap.TotalHours, snap.CostTotal, snap.BillTotal,
		snap.MaterialTotal, snap.AdjustmentTotal, snap.FinalAmount,
		snap.ActivitiesJSON, snap.ExpensesJSON, snap.AggregatedBy, snap.AggregatedAt)
	if err != nil {
		return fmt.Errorf("%s: insert snapshot: %w", op, err)
	}

	return tx.Commit()
}
