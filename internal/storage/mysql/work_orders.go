package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"billing-backend/internal/storage"
)

func (s *Storage) GetWorkOrder(ctx context.Context, id int64) (*storage.WorkOrder, error) {
	const op = "storage.mysql.GetWorkOrder"

	stmt := `SELECT id, order_num, customer_name, project_name, term, status,
		estimate_amount, final_decision_amount, delivery_date, created_at, updated_at
		FROM work_orders WHERE id = ?`

	var wo storage.WorkOrder
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(
		&wo.ID, &wo.OrderNum, &wo.CustomerName, &wo.ProjectName, &wo.Term, &wo.Status,
		&wo.EstimateAmount, &wo.FinalDecisionAmount, &wo.DeliveryDate, &wo.CreatedAt, &wo.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrWorkOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &wo, nil
}

// WorkOrderFilter holds optional list filters; empty values are skipped.
type WorkOrderFilter struct {
	Status   string
	Customer string
	OrderNum string
}

func (s *Storage) GetWorkOrders(ctx context.Context, filter WorkOrderFilter) ([]storage.WorkOrder, error) {
	const op = "storage.mysql.GetWorkOrders"

	stmt := `SELECT id, order_num, customer_name, project_name, term, status,
		estimate_amount, final_decision_amount, delivery_date, created_at, updated_at
		FROM work_orders`

	var conds []string
	var args []interface{}

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Customer != "" {
		conds = append(conds, "customer_name LIKE ?")
		args = append(args, "%"+filter.Customer+"%")
	}
	if filter.OrderNum != "" {
		conds = append(conds, "order_num = ?")
		args = append(args, filter.OrderNum)
	}
	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
	}
	stmt += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var orders []storage.WorkOrder
	for rows.Next() {
		var wo storage.WorkOrder
		err = rows.Scan(
			&wo.ID, &wo.OrderNum, &wo.CustomerName, &wo.ProjectName, &wo.Term, &wo.Status,
			&wo.EstimateAmount, &wo.FinalDecisionAmount, &wo.DeliveryDate, &wo.CreatedAt, &wo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, wo)
	}

	return orders, rows.Err()
}
