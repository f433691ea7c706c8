package mysql

import (
	"context"
	"fmt"

	"billing-backend/internal/constants"
	"billing-backend/internal/storage"
)

// GetRates returns the full rate history of every activity, newest first.
// Resolution against an instant happens in the rates service.
func (s *Storage) GetRates(ctx context.Context) ([]storage.Rate, error) {
	const op = "storage.mysql.GetRates"

	stmt := `SELECT id, activity, effective_from, effective_to, cost_rate, bill_rate
		FROM activity_rates ORDER BY activity, effective_from DESC`

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var rates []storage.Rate
	for rows.Next() {
		var r storage.Rate
		err = rows.Scan(&r.ID, &r.Activity, &r.EffectiveFrom, &r.EffectiveTo, &r.CostRate, &r.BillRate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rates = append(rates, r)
	}

	return rates, rows.Err()
}

func (s *Storage) GetRateHistory(ctx context.Context, activity constants.Activity) ([]storage.Rate, error) {
	const op = "storage.mysql.GetRateHistory"

	stmt := `SELECT id, activity, effective_from, effective_to, cost_rate, bill_rate
		FROM activity_rates WHERE activity = ? ORDER BY effective_from DESC`

	rows, err := s.db.QueryContext(ctx, stmt, activity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var rates []storage.Rate
	for rows.Next() {
		var r storage.Rate
		err = rows.Scan(&r.ID, &r.Activity, &r.EffectiveFrom, &r.EffectiveTo, &r.CostRate, &r.BillRate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rates = append(rates, r)
	}

	return rates, rows.Err()
}
