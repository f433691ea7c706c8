package editsession

import (
	"strconv"
	"strings"

	"billing-backend/internal/constants"
	"billing-backend/internal/service/aggregate"
	"billing-backend/internal/service/expense"
	"billing-backend/internal/storage"
)

// DisplayActivity is the original activity line with the pending memo overlaid.
type DisplayActivity struct {
	storage.ActivityLine
	Memo string `json:"memo"`
}

// BillAmount holds per-activity bill figures recomputed from the pending rate,
// falling back to the original when nothing is pending.
type BillAmount struct {
	Activity   constants.Activity `json:"activity"`
	BillRate   float64            `json:"bill_rate"`
	BillAmount float64            `json:"bill_amount"`
}

// RateChange is one entry of the pending-rates diff, shown in the confirmation
// dialog before save.
type RateChange struct {
	Activity   constants.Activity `json:"activity"`
	OldRate    float64            `json:"old_rate"`
	NewRate    float64            `json:"new_rate"`
	Hours      float64            `json:"hours"`
	Adjustment float64            `json:"adjustment"`
	Memo       string             `json:"memo"`
}

// AmountAndDateChanges flags which scalar buffers differ from their originals
// and therefore belong in the save payload.
type AmountAndDateChanges struct {
	EstimateAmount      bool
	FinalDecisionAmount bool
	DeliveryDate        bool
}

func (c AmountAndDateChanges) Any() bool {
	return c.EstimateAmount || c.FinalDecisionAmount || c.DeliveryDate
}

func (s *Session) ActivitiesForDisplay() []DisplayActivity {
	if s.original == nil {
		return nil
	}

	out := make([]DisplayActivity, 0, len(s.original.Activities))
	for _, line := range s.original.Activities {
		out = append(out, DisplayActivity{
			ActivityLine: line,
			Memo:         s.rateEdits[line.Activity].Memo,
		})
	}
	return out
}

func (s *Session) ActivityBillAmounts() []BillAmount {
	if s.original == nil {
		return nil
	}

	out := make([]BillAmount, 0, len(s.original.Activities))
	for _, line := range s.original.Activities {
		rate := line.BillRate
		if pending, ok := s.parsedRate(line.Activity); ok {
			rate = pending
		}
		out = append(out, BillAmount{
			Activity:   line.Activity,
			BillRate:   rate,
			BillAmount: aggregate.RoundMoney(line.Hours * rate),
		})
	}
	return out
}

// RateChanges diffs pending rates against the originals. Unparseable or blank
// input and rates equal to the original produce no entry.
func (s *Session) RateChanges() []RateChange {
	if s.original == nil {
		return nil
	}

	var out []RateChange
	for _, line := range s.original.Activities {
		pending, ok := s.parsedRate(line.Activity)
		if !ok || pending == line.BillRate {
			continue
		}
		out = append(out, RateChange{
			Activity:   line.Activity,
			OldRate:    line.BillRate,
			NewRate:    pending,
			Hours:      line.Hours,
			Adjustment: aggregate.RoundMoney(line.Hours * (pending - line.BillRate)),
			Memo:       s.rateEdits[line.Activity].Memo,
		})
	}
	return out
}

func (s *Session) ExpensesHasChanges() bool {
	if len(s.expenses) != len(s.originalExpenses) {
		return true
	}
	for i := range s.expenses {
		if s.expenses[i] != s.originalExpenses[i] {
			return true
		}
	}
	return false
}

// AmountAndDateHasChanges compares the canonical string forms, so "1000" and
// a refetched 1000 do not count as a change.
func (s *Session) AmountAndDateHasChanges() AmountAndDateChanges {
	return AmountAndDateChanges{
		EstimateAmount:      s.estimate != s.originalEstimate,
		FinalDecisionAmount: s.finalDecision != s.originalFinal,
		DeliveryDate:        s.delivery != s.originalDelivery,
	}
}

// BuildPayload assembles the save request from exactly the buffers that
// changed. ErrNoChanges when every buffer matches its original; save is then
// refused without contacting the server.
func (s *Session) BuildPayload() (storage.AggregationUpdate, error) {
	if s.state != StateEditing {
		return storage.AggregationUpdate{}, ErrNotEditing
	}

	var upd storage.AggregationUpdate

	rateChanges := s.RateChanges()
	if len(rateChanges) > 0 {
		upd.BillRateAdjustments = make(map[constants.Activity]storage.RateAdjustmentInput, len(rateChanges))
		for _, rc := range rateChanges {
			upd.BillRateAdjustments[rc.Activity] = storage.RateAdjustmentInput{
				BillRate: rc.NewRate,
				Memo:     rc.Memo,
			}
		}
	}

	if s.ExpensesHasChanges() {
		upd.HasExpenses = true
		upd.Expenses = make([]storage.ExpenseItem, 0, len(s.expenses))
		for _, row := range s.expenses {
			upd.Expenses = append(upd.Expenses, s.expenseItem(row))
		}
	}

	scalars := s.AmountAndDateHasChanges()
	if scalars.EstimateAmount {
		upd.EstimateAmount = parseOptionalAmount(s.estimate)
	}
	if scalars.FinalDecisionAmount {
		upd.FinalDecisionAmount = parseOptionalAmount(s.finalDecision)
	}
	if scalars.DeliveryDate {
		d := s.delivery
		upd.DeliveryDate = &d
	}

	if len(upd.BillRateAdjustments) == 0 && !upd.HasExpenses && !scalars.Any() {
		return storage.AggregationUpdate{}, ErrNoChanges
	}

	return upd, nil
}

func (s *Session) parsedRate(activity constants.Activity) (float64, bool) {
	edit, ok := s.rateEdits[activity]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(edit.Rate), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (s *Session) expenseItem(row ExpenseEdit) storage.ExpenseItem {
	line := s.calculator.Recalc(expense.Line{
		Category:      row.Category,
		CostUnitPrice: expense.ParsePrice(row.CostUnitPrice),
		CostQuantity:  expense.ParseQuantity(row.CostQuantity),
		BillUnitPrice: expense.ParsePrice(row.BillUnitPrice),
		BillQuantity:  expense.ParseQuantity(row.BillQuantity),
		BillTotal:     expense.ParsePrice(row.BillTotal),
		ManualBill:    row.ManualBill,
	})

	item := storage.ExpenseItem{
		Category:      line.Category,
		CostUnitPrice: line.CostUnitPrice,
		CostQuantity:  line.CostQuantity,
		CostTotal:     line.CostTotal,
		BillUnitPrice: line.BillUnitPrice,
		BillQuantity:  line.BillQuantity,
		BillTotal:     line.BillTotal,
		ManualBill:    line.ManualBill,
	}
	if row.FileEstimate != "" {
		if v, err := strconv.ParseFloat(row.FileEstimate, 64); err == nil {
			item.FileEstimate = &v
		}
	}
	if row.Memo != "" {
		m := row.Memo
		item.Memo = &m
	}
	return item
}

func parseOptionalAmount(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
