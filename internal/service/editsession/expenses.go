package editsession

import "billing-backend/internal/service/expense"

func (s *Session) Expenses() []ExpenseEdit {
	return append([]ExpenseEdit(nil), s.expenses...)
}

func (s *Session) AddExpense(row ExpenseEdit) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.expenses = append(s.expenses, s.recalcRow(row))
	return nil
}

func (s *Session) RemoveExpense(i int) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if i < 0 || i >= len(s.expenses) {
		return ErrBadIndex
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	return nil
}

// UpdateExpense replaces one row. Touching any bill-side field directly flips
// the manual override on; while the override is off, the bill side is
// rederived from the cost side.
func (s *Session) UpdateExpense(i int, row ExpenseEdit) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if i < 0 || i >= len(s.expenses) {
		return ErrBadIndex
	}

	prev := s.expenses[i]
	if !prev.ManualBill && billSideTouched(prev, row) {
		row.ManualBill = true
	} else if prev.ManualBill {
		row.ManualBill = true
	}

	s.expenses[i] = s.recalcRow(row)
	return nil
}

// ResetOverride drops the manual override and rederives the bill side from
// the markup formula.
func (s *Session) ResetOverride(i int) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if i < 0 || i >= len(s.expenses) {
		return ErrBadIndex
	}

	row := s.expenses[i]
	row.ManualBill = false
	s.expenses[i] = s.recalcRow(row)
	return nil
}

func billSideTouched(prev, next ExpenseEdit) bool {
	return prev.BillUnitPrice != next.BillUnitPrice ||
		prev.BillQuantity != next.BillQuantity ||
		prev.BillTotal != next.BillTotal
}

// recalcRow runs the calculator over the form strings and writes the derived
// figures back as strings, so the buffer always shows consistent totals.
func (s *Session) recalcRow(row ExpenseEdit) ExpenseEdit {
	line := s.calculator.Recalc(expense.Line{
		Category:      row.Category,
		CostUnitPrice: expense.ParsePrice(row.CostUnitPrice),
		CostQuantity:  expense.ParseQuantity(row.CostQuantity),
		BillUnitPrice: expense.ParsePrice(row.BillUnitPrice),
		BillQuantity:  expense.ParseQuantity(row.BillQuantity),
		BillTotal:     expense.ParsePrice(row.BillTotal),
		ManualBill:    row.ManualBill,
	})

	row.CostUnitPrice = formatAmount(line.CostUnitPrice)
	row.CostQuantity = formatAmount(line.CostQuantity)
	row.CostTotal = formatAmount(line.CostTotal)
	row.BillUnitPrice = formatAmount(line.BillUnitPrice)
	row.BillQuantity = formatAmount(line.BillQuantity)
	row.BillTotal = formatAmount(line.BillTotal)
	return row
}
