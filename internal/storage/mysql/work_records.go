package mysql

import (
	"context"
	"fmt"

	"billing-backend/internal/storage"
)

// GetWorkRecords returns all recorded spans of one work order. The record
// store is a read-only collaborator here; names come denormalized.
func (s *Storage) GetWorkRecords(ctx context.Context, workOrderID int64) ([]storage.WorkRecord, error) {
	const op = "storage.mysql.GetWorkRecords"

	stmt := `SELECT id, work_order_id, worker_name, machine_name, description,
		remarks, started_at, ended_at
		FROM work_records WHERE work_order_id = ? ORDER BY started_at`

	rows, err := s.db.QueryContext(ctx, stmt, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var records []storage.WorkRecord
	for rows.Next() {
		var r storage.WorkRecord
		err = rows.Scan(&r.ID, &r.WorkOrderID, &r.WorkerName, &r.MachineName,
			&r.Description, &r.Remarks, &r.StartedAt, &r.EndedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
