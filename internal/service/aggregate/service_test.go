package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"billing-backend/internal/constants"
	"billing-backend/internal/service/expense"
	"billing-backend/internal/storage"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetWorkOrder(ctx context.Context, id int64) (*storage.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.WorkOrder), args.Error(1)
}

func (m *mockStorage) GetWorkRecords(ctx context.Context, workOrderID int64) ([]storage.WorkRecord, error) {
	args := m.Called(ctx, workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.WorkRecord), args.Error(1)
}

func (m *mockStorage) GetRates(ctx context.Context) ([]storage.Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Rate), args.Error(1)
}

func (m *mockStorage) GetAdjustments(ctx context.Context, workOrderID int64) ([]storage.Adjustment, error) {
	args := m.Called(ctx, workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Adjustment), args.Error(1)
}

func (m *mockStorage) GetExpenses(ctx context.Context, workOrderID int64) ([]storage.ExpenseItem, error) {
	args := m.Called(ctx, workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ExpenseItem), args.Error(1)
}

func (m *mockStorage) CommitAggregationUpdate(ctx context.Context, upd storage.PreparedUpdate) error {
	args := m.Called(ctx, upd)
	return args.Error(0)
}

func (m *mockStorage) SaveSnapshot(ctx context.Context, snap storage.AggregationSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newService(st *mockStorage) *Service {
	s := New(st, expense.New(constants.MarkupRates), 8000, 11000)
	s.now = func() time.Time { return testNow }
	return s
}

func aggregatingOrder() *storage.WorkOrder {
	return &storage.WorkOrder{ID: 7, OrderNum: "WO-1001", Status: storage.StatusAggregating}
}

func normalRecords(hours float64) []storage.WorkRecord {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return []storage.WorkRecord{{
		ID: 1, WorkOrderID: 7, WorkerName: "山田太郎", MachineName: "プレス", Description: "組立",
		StartedAt: start, EndedAt: start.Add(time.Duration(hours * float64(time.Hour))),
	}}
}

func openNormalRate(billRate float64) []storage.Rate {
	return []storage.Rate{{
		ID: 1, Activity: constants.ActivityNormal,
		EffectiveFrom: testNow.AddDate(-1, 0, 0), CostRate: 8000, BillRate: billRate,
	}}
}

func TestSave_RateChangeWritesOneVersionAndOneAdjustment(t *testing.T) {
	st := new(mockStorage)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(aggregatingOrder(), nil)
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)

	var captured storage.PreparedUpdate
	st.On("CommitAggregationUpdate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(storage.PreparedUpdate)
		}).Return(nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		BillRateAdjustments: map[constants.Activity]storage.RateAdjustmentInput{
			constants.ActivityNormal: {BillRate: 12000, Memo: "customer agreement"},
		},
	}, "tanaka")

	assert.NoError(t, err)

	assert.Len(t, captured.RateChanges, 1)
	rc := captured.RateChanges[0]
	assert.Equal(t, int64(1), rc.OldRateID)
	assert.Equal(t, float64(11000), rc.OldBillRate)
	assert.Equal(t, float64(12000), rc.NewBillRate)
	assert.Equal(t, float64(8000), rc.CostRate)
	assert.Equal(t, testNow, rc.ChangedAt)

	assert.Len(t, captured.Adjustments, 1)
	adj := captured.Adjustments[0]
	assert.Equal(t, storage.AdjustmentRate, adj.Type)
	assert.Equal(t, float64(3000), adj.Amount)
	assert.Equal(t, "normal rate change (11000→12000)", adj.Reason)
	assert.Equal(t, "tanaka", adj.CreatedBy)
	if assert.NotNil(t, adj.Memo) {
		assert.Equal(t, "customer agreement", *adj.Memo)
	}

	st.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything)
}

func TestSave_ZeroDeltaVersionsRateWithoutAdjustment(t *testing.T) {
	st := new(mockStorage)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(aggregatingOrder(), nil)
	// No trainee hours on this order.
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)

	var captured storage.PreparedUpdate
	st.On("CommitAggregationUpdate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(storage.PreparedUpdate)
		}).Return(nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		BillRateAdjustments: map[constants.Activity]storage.RateAdjustmentInput{
			constants.ActivityTrainee: {BillRate: 9500},
		},
	}, "tanaka")

	assert.NoError(t, err)
	assert.Len(t, captured.RateChanges, 1)
	assert.Empty(t, captured.Adjustments)
}

func TestSave_UnchangedRateIsNoVersion(t *testing.T) {
	st := new(mockStorage)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(aggregatingOrder(), nil)
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)

	var captured storage.PreparedUpdate
	st.On("CommitAggregationUpdate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(storage.PreparedUpdate)
		}).Return(nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		BillRateAdjustments: map[constants.Activity]storage.RateAdjustmentInput{
			constants.ActivityNormal: {BillRate: 11000},
		},
	}, "tanaka")

	assert.NoError(t, err)
	assert.Empty(t, captured.RateChanges)
	assert.Empty(t, captured.Adjustments)
}

func TestSave_LockedOrderRejected(t *testing.T) {
	st := new(mockStorage)
	locked := aggregatingOrder()
	locked.Status = storage.StatusAggregated
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(locked, nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		EstimateAmount: ptr(50000.0),
	}, "tanaka")

	assert.ErrorIs(t, err, ErrOrderLocked)
	st.AssertNotCalled(t, "CommitAggregationUpdate", mock.Anything, mock.Anything)
}

func TestSave_EmptyPayloadRejected(t *testing.T) {
	st := new(mockStorage)
	svc := newService(st)

	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{}, "tanaka")
	assert.ErrorIs(t, err, ErrNothingToSave)
}

func TestSave_DeliveredOrderMovesToAggregating(t *testing.T) {
	st := new(mockStorage)
	delivered := aggregatingOrder()
	delivered.Status = storage.StatusDelivered
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(delivered, nil)
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)

	var captured storage.PreparedUpdate
	st.On("CommitAggregationUpdate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(storage.PreparedUpdate)
		}).Return(nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		EstimateAmount: ptr(50000.0),
	}, "tanaka")

	assert.NoError(t, err)
	assert.Equal(t, storage.StatusAggregating, captured.Status)
}

func TestSave_FinalizeWritesSnapshot(t *testing.T) {
	st := new(mockStorage)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(aggregatingOrder(), nil)
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)
	st.On("GetExpenses", mock.Anything, int64(7)).Return([]storage.ExpenseItem{
		{Category: constants.CategoryMaterial, CostTotal: 999, BillTotal: 1199},
	}, nil)
	st.On("CommitAggregationUpdate", mock.Anything, mock.Anything).Return(nil)

	var snap storage.AggregationSnapshot
	st.On("SaveSnapshot", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			snap = args.Get(1).(storage.AggregationSnapshot)
		}).Return(nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		Status: storage.StatusAggregated,
	}, "tanaka")

	assert.NoError(t, err)
	assert.Equal(t, int64(7), snap.WorkOrderID)
	assert.Equal(t, 3.0, snap.TotalHours)
	assert.Equal(t, float64(24000), snap.CostTotal)
	assert.Equal(t, float64(33000), snap.BillTotal)
	assert.Equal(t, float64(1199), snap.MaterialTotal)
	assert.Equal(t, float64(0), snap.AdjustmentTotal)
	assert.Equal(t, float64(34199), snap.FinalAmount)
	assert.Equal(t, "tanaka", snap.AggregatedBy)
	assert.NotEmpty(t, snap.ActivitiesJSON)
	assert.NotEmpty(t, snap.ExpensesJSON)
}

func TestSave_InvalidStatusRejected(t *testing.T) {
	st := new(mockStorage)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(aggregatingOrder(), nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{Status: "delivered"}, "tanaka")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSave_ExpensesReplacedAfterRecalc(t *testing.T) {
	st := new(mockStorage)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(aggregatingOrder(), nil)
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)

	var captured storage.PreparedUpdate
	st.On("CommitAggregationUpdate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(storage.PreparedUpdate)
		}).Return(nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		HasExpenses: true,
		Expenses: []storage.ExpenseItem{{
			Category:      constants.CategoryMaterial,
			CostUnitPrice: 333,
			CostQuantity:  3,
		}},
	}, "tanaka")

	assert.NoError(t, err)
	assert.True(t, captured.ReplaceExpenses)
	if assert.Len(t, captured.Expenses, 1) {
		e := captured.Expenses[0]
		assert.Equal(t, float64(999), e.CostTotal)
		assert.Equal(t, float64(1199), e.BillTotal)
		assert.Equal(t, int64(7), e.WorkOrderID)
	}
}

func TestGetDetail(t *testing.T) {
	st := new(mockStorage)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(&storage.WorkOrder{
		ID: 7, OrderNum: "WO-1001", CustomerName: "АО Заказчик", ProjectName: "ограждение",
		Status: storage.StatusAggregating,
	}, nil)
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)
	st.On("GetAdjustments", mock.Anything, int64(7)).Return([]storage.Adjustment{}, nil)
	st.On("GetExpenses", mock.Anything, int64(7)).Return([]storage.ExpenseItem{}, nil)

	svc := newService(st)
	detail, err := svc.GetDetail(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, "WO-1001", detail.OrderNum)
	assert.Equal(t, 3.0, detail.TotalHours)
	if assert.Len(t, detail.Activities, 1) {
		assert.Equal(t, float64(33000), detail.Activities[0].BillAmount)
	}
}

func ptr[T any](v T) *T { return &v }

func TestSave_FinalDecisionChangeLeavesLedgerTrace(t *testing.T) {
	st := new(mockStorage)
	wo := aggregatingOrder()
	wo.FinalDecisionAmount = ptr(90000.0)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(wo, nil)
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)

	var captured storage.PreparedUpdate
	st.On("CommitAggregationUpdate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(storage.PreparedUpdate)
		}).Return(nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		FinalDecisionAmount: ptr(99000.0),
	}, "tanaka")

	assert.NoError(t, err)
	if assert.Len(t, captured.Adjustments, 1) {
		adj := captured.Adjustments[0]
		assert.Equal(t, storage.AdjustmentFinalDecision, adj.Type)
		assert.Equal(t, float64(9000), adj.Amount)
		assert.Equal(t, "final decision amount change (90000→99000)", adj.Reason)
	}
}

func TestSave_SameFinalDecisionAmountNoTrace(t *testing.T) {
	st := new(mockStorage)
	wo := aggregatingOrder()
	wo.FinalDecisionAmount = ptr(90000.0)
	st.On("GetWorkOrder", mock.Anything, int64(7)).Return(wo, nil)
	st.On("GetWorkRecords", mock.Anything, int64(7)).Return(normalRecords(3.0), nil)
	st.On("GetRates", mock.Anything).Return(openNormalRate(11000), nil)

	var captured storage.PreparedUpdate
	st.On("CommitAggregationUpdate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(storage.PreparedUpdate)
		}).Return(nil)

	svc := newService(st)
	err := svc.Save(context.Background(), 7, storage.AggregationUpdate{
		FinalDecisionAmount: ptr(90000.0),
	}, "tanaka")

	assert.NoError(t, err)
	assert.Empty(t, captured.Adjustments)
}
