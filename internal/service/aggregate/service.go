package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"billing-backend/internal/service/classify"
	"billing-backend/internal/service/expense"
	"billing-backend/internal/service/rates"
	"billing-backend/internal/storage"
)

var (
	// ErrOrderLocked is returned when the work order is aggregated and all edits are refused.
	ErrOrderLocked = storage.ErrWorkOrderLocked
	// ErrNothingToSave is returned when the payload carries no section at all.
	ErrNothingToSave = errors.New("nothing to save")
	// ErrInvalidStatus is returned when the payload asks for a transition the state machine
	// does not have.
	ErrInvalidStatus = errors.New("invalid status transition")
)

type Storage interface {
	GetWorkOrder(ctx context.Context, id int64) (*storage.WorkOrder, error)
	GetWorkRecords(ctx context.Context, workOrderID int64) ([]storage.WorkRecord, error)
	GetRates(ctx context.Context) ([]storage.Rate, error)
	GetAdjustments(ctx context.Context, workOrderID int64) ([]storage.Adjustment, error)
	GetExpenses(ctx context.Context, workOrderID int64) ([]storage.ExpenseItem, error)
	CommitAggregationUpdate(ctx context.Context, upd storage.PreparedUpdate) error
	SaveSnapshot(ctx context.Context, snap storage.AggregationSnapshot) error
}

// Service assembles the billing view of a work order and applies operator
// saves. Concurrent saves from two operators are last-write-wins; there is no
// version check, only the aggregated-status lock.
type Service struct {
	storage    Storage
	classifier *classify.Classifier
	calculator *expense.Calculator

	defaultCostRate float64
	defaultBillRate float64

	now func() time.Time
}

func New(st Storage, calculator *expense.Calculator, defaultCostRate, defaultBillRate float64) *Service {
	return &Service{
		storage:         st,
		classifier:      classify.New(),
		calculator:      calculator,
		defaultCostRate: defaultCostRate,
		defaultBillRate: defaultBillRate,
		now:             time.Now,
	}
}

// GetDetail builds the full aggregation read model. Reads take no locks and
// may race with an in-flight save from another session.
func (s *Service) GetDetail(ctx context.Context, workOrderID int64) (*storage.AggregationDetail, error) {
	const op = "service.aggregate.GetDetail"

	var (
		wo          *storage.WorkOrder
		records     []storage.WorkRecord
		rateRows    []storage.Rate
		adjustments []storage.Adjustment
		expenses    []storage.ExpenseItem
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wo, err = s.storage.GetWorkOrder(gCtx, workOrderID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.storage.GetWorkRecords(gCtx, workOrderID)
		if err != nil {
			return fmt.Errorf("records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rateRows, err = s.storage.GetRates(gCtx)
		if err != nil {
			return fmt.Errorf("rates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		adjustments, err = s.storage.GetAdjustments(gCtx, workOrderID)
		if err != nil {
			return fmt.Errorf("adjustments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.storage.GetExpenses(gCtx, workOrderID)
		if err != nil {
			return fmt.Errorf("expenses: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, storage.ErrWorkOrderNotFound) {
			return nil, storage.ErrWorkOrderNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resolver := rates.New(rateRows, s.defaultCostRate, s.defaultBillRate)
	lines, totalHours := BuildActivityLines(records, s.classifier, resolver, s.now())

	return &storage.AggregationDetail{
		WorkOrderID:         wo.ID,
		OrderNum:            wo.OrderNum,
		CustomerName:        wo.CustomerName,
		ProjectName:         wo.ProjectName,
		Term:                wo.Term,
		Status:              wo.Status,
		TotalHours:          totalHours,
		Activities:          lines,
		Adjustments:         adjustments,
		Expenses:            expenses,
		EstimateAmount:      wo.EstimateAmount,
		FinalDecisionAmount: wo.FinalDecisionAmount,
		DeliveryDate:        wo.DeliveryDate,
	}, nil
}

// Save applies one edit payload: versions changed rates and writes their
// audit rows, replaces the expense set and updates the scalar fields in one
// transaction, then finalizes when the payload asks for it.
func (s *Service) Save(ctx context.Context, workOrderID int64, upd storage.AggregationUpdate, user string) error {
	const op = "service.aggregate.Save"

	if isEmptyUpdate(upd) {
		return ErrNothingToSave
	}

	wo, err := s.storage.GetWorkOrder(ctx, workOrderID)
	if err != nil {
		return err
	}
	if wo.Status == storage.StatusAggregated {
		return ErrOrderLocked
	}

	finalize := false
	switch upd.Status {
	case "":
	case storage.StatusAggregated:
		finalize = true
	default:
		return ErrInvalidStatus
	}

	var (
		records  []storage.WorkRecord
		rateRows []storage.Rate
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.storage.GetWorkRecords(gCtx, workOrderID)
		if err != nil {
			return fmt.Errorf("records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rateRows, err = s.storage.GetRates(gCtx)
		if err != nil {
			return fmt.Errorf("rates: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	resolver := rates.New(rateRows, s.defaultCostRate, s.defaultBillRate)
	lines, _ := BuildActivityLines(records, s.classifier, resolver, now)

	// Hours are re-derived from the live records at save time, never cached.
	changes, adjustments := buildRateChanges(
		upd.BillRateAdjustments, resolver, HoursByActivity(lines), workOrderID, user, now)

	// A changed final decision amount leaves its own ledger trace.
	if a := finalDecisionDelta(wo, upd.FinalDecisionAmount, user, now); a != nil {
		adjustments = append(adjustments, *a)
	}

	prepared := storage.PreparedUpdate{
		WorkOrderID:         workOrderID,
		RateChanges:         changes,
		Adjustments:         adjustments,
		EstimateAmount:      upd.EstimateAmount,
		FinalDecisionAmount: upd.FinalDecisionAmount,
		DeliveryDate:        upd.DeliveryDate,
		UpdatedAt:           now,
	}

	if upd.HasExpenses {
		prepared.ReplaceExpenses = true
		prepared.Expenses = make([]storage.ExpenseItem, 0, len(upd.Expenses))
		for _, item := range upd.Expenses {
			prepared.Expenses = append(prepared.Expenses, s.recalcExpense(workOrderID, item))
		}
	}

	// The first saved edit moves a delivered order into aggregation.
	if storage.CanTransition(wo.Status, storage.StatusAggregating) {
		prepared.Status = storage.StatusAggregating
	}

	if err := s.storage.CommitAggregationUpdate(ctx, prepared); err != nil {
		return err
	}

	if finalize {
		return s.finalize(ctx, workOrderID, user)
	}

	return nil
}

// finalize recomputes the totals from stored state and writes the immutable
// snapshot; the status flip rides on the same transaction in storage.
func (s *Service) finalize(ctx context.Context, workOrderID int64, user string) error {
	const op = "service.aggregate.finalize"

	var (
		records  []storage.WorkRecord
		rateRows []storage.Rate
		expenses []storage.ExpenseItem
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.storage.GetWorkRecords(gCtx, workOrderID)
		return err
	})
	g.Go(func() error {
		var err error
		rateRows, err = s.storage.GetRates(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.storage.GetExpenses(gCtx, workOrderID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	resolver := rates.New(rateRows, s.defaultCostRate, s.defaultBillRate)
	lines, totalHours := BuildActivityLines(records, s.classifier, resolver, now)

	var costTotal, billTotal, adjustmentTotal float64
	for _, l := range lines {
		costTotal += l.CostAmount
		billTotal += l.BillAmount
		adjustmentTotal += l.Adjustment
	}

	var materialTotal float64
	for _, e := range expenses {
		materialTotal += e.BillTotal
	}

	activitiesJSON, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("%s: marshal activities: %w", op, err)
	}
	expensesJSON, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("%s: marshal expenses: %w", op, err)
	}

	return s.storage.SaveSnapshot(ctx, storage.AggregationSnapshot{
		WorkOrderID:     workOrderID,
		TotalHours:      totalHours,
		CostTotal:       costTotal,
		BillTotal:       billTotal,
		MaterialTotal:   materialTotal,
		AdjustmentTotal: adjustmentTotal,
		FinalAmount:     billTotal + materialTotal,
		ActivitiesJSON:  string(activitiesJSON),
		ExpensesJSON:    string(expensesJSON),
		AggregatedBy:    user,
		AggregatedAt:    now,
	})
}

func (s *Service) recalcExpense(workOrderID int64, item storage.ExpenseItem) storage.ExpenseItem {
	line := s.calculator.Recalc(expense.Line{
		Category:      item.Category,
		CostUnitPrice: item.CostUnitPrice,
		CostQuantity:  item.CostQuantity,
		BillUnitPrice: item.BillUnitPrice,
		BillQuantity:  item.BillQuantity,
		BillTotal:     item.BillTotal,
		ManualBill:    item.ManualBill,
		FileEstimate:  item.FileEstimate,
		Memo:          item.Memo,
	})

	return storage.ExpenseItem{
		WorkOrderID:   workOrderID,
		Category:      line.Category,
		CostUnitPrice: line.CostUnitPrice,
		CostQuantity:  line.CostQuantity,
		CostTotal:     line.CostTotal,
		BillUnitPrice: line.BillUnitPrice,
		BillQuantity:  line.BillQuantity,
		BillTotal:     line.BillTotal,
		ManualBill:    line.ManualBill,
		FileEstimate:  line.FileEstimate,
		Memo:          line.Memo,
	}
}

func isEmptyUpdate(upd storage.AggregationUpdate) bool {
	return len(upd.BillRateAdjustments) == 0 &&
		!upd.HasExpenses &&
		upd.EstimateAmount == nil &&
		upd.FinalDecisionAmount == nil &&
		upd.DeliveryDate == nil &&
		upd.Status == ""
}
