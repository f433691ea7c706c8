package editsession

import (
	"errors"
	"strconv"
	"strings"

	"billing-backend/internal/constants"
	"billing-backend/internal/service/expense"
	"billing-backend/internal/storage"
)

// Session states. Every mutation requires Editing; Begin requires Viewing.
const (
	StateViewing = "viewing"
	StateEditing = "editing"
)

var (
	ErrNotEditing     = errors.New("no edit in progress")
	ErrAlreadyEditing = errors.New("edit already in progress")
	ErrNoChanges      = errors.New("no changes to save")
	ErrBadIndex       = errors.New("expense index out of range")
)

// RateEdit is the pending bill-rate override for one activity, held as the raw
// operator input string.
type RateEdit struct {
	Rate string
	Memo string
}

// ExpenseEdit is one expense row as it sits in the form: numeric fields are
// strings until save, so half-typed input never explodes.
type ExpenseEdit struct {
	Category      string
	CostUnitPrice string
	CostQuantity  string
	CostTotal     string
	BillUnitPrice string
	BillQuantity  string
	BillTotal     string
	ManualBill    bool
	FileEstimate  string
	Memo          string
}

// Session is the staged edit buffer one operator holds between "start editing"
// and save/cancel. All getters are pure derivations over the buffers; nothing
// here talks to storage.
type Session struct {
	state      string
	calculator *expense.Calculator

	original *storage.AggregationDetail

	rateEdits map[constants.Activity]RateEdit

	originalExpenses []ExpenseEdit
	expenses         []ExpenseEdit

	originalEstimate string
	originalFinal    string
	originalDelivery string
	estimate         string
	finalDecision    string
	delivery         string
}

func New(calculator *expense.Calculator) *Session {
	return &Session{state: StateViewing, calculator: calculator}
}

func (s *Session) State() string { return s.state }

// Begin seeds every buffer from the current server state. The manual-override
// flag of each expense comes from whether its stored bill total still matches
// the markup formula, not from trusting any stored flag.
func (s *Session) Begin(detail *storage.AggregationDetail) error {
	if s.state == StateEditing {
		return ErrAlreadyEditing
	}

	s.original = detail
	s.rateEdits = make(map[constants.Activity]RateEdit)

	s.originalExpenses = make([]ExpenseEdit, 0, len(detail.Expenses))
	for _, item := range detail.Expenses {
		s.originalExpenses = append(s.originalExpenses, s.seedExpense(item))
	}
	s.expenses = append([]ExpenseEdit(nil), s.originalExpenses...)

	s.originalEstimate = formatOptionalAmount(detail.EstimateAmount)
	s.originalFinal = formatOptionalAmount(detail.FinalDecisionAmount)
	s.originalDelivery = formatOptionalDate(detail.DeliveryDate)
	s.estimate = s.originalEstimate
	s.finalDecision = s.originalFinal
	s.delivery = s.originalDelivery

	s.state = StateEditing
	return nil
}

// Cancel throws every buffer away without touching the server.
func (s *Session) Cancel() {
	s.reset()
}

// Commit clears the buffers after a successful save. The caller refetches
// fresh state before the next Begin.
func (s *Session) Commit() {
	s.reset()
}

func (s *Session) reset() {
	s.state = StateViewing
	s.original = nil
	s.rateEdits = nil
	s.originalExpenses = nil
	s.expenses = nil
	s.originalEstimate, s.originalFinal, s.originalDelivery = "", "", ""
	s.estimate, s.finalDecision, s.delivery = "", "", ""
}

func (s *Session) SetRate(activity constants.Activity, rate, memo string) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.rateEdits[activity] = RateEdit{Rate: rate, Memo: memo}
	return nil
}

func (s *Session) SetEstimateAmount(v string) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.estimate = strings.TrimSpace(v)
	return nil
}

func (s *Session) SetFinalDecisionAmount(v string) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.finalDecision = strings.TrimSpace(v)
	return nil
}

func (s *Session) SetDeliveryDate(v string) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.delivery = strings.TrimSpace(v)
	return nil
}

func (s *Session) seedExpense(item storage.ExpenseItem) ExpenseEdit {
	manual := !s.calculator.AutoBillMatches(expense.Line{
		Category:      item.Category,
		CostUnitPrice: item.CostUnitPrice,
		CostQuantity:  item.CostQuantity,
		BillTotal:     item.BillTotal,
	})

	return ExpenseEdit{
		Category:      item.Category,
		CostUnitPrice: formatAmount(item.CostUnitPrice),
		CostQuantity:  formatAmount(item.CostQuantity),
		CostTotal:     formatAmount(item.CostTotal),
		BillUnitPrice: formatAmount(item.BillUnitPrice),
		BillQuantity:  formatAmount(item.BillQuantity),
		BillTotal:     formatAmount(item.BillTotal),
		ManualBill:    manual,
		FileEstimate:  formatOptionalAmount(item.FileEstimate),
		Memo:          derefString(item.Memo),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return formatAmount(*v)
}

func formatOptionalDate(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
