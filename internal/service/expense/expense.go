package expense

import (
	"math"
	"strconv"
	"strings"
)

// Calculator derives billed amounts for non-labor expense lines from the
// category markup table. It holds no state besides the table, so one instance
// serves every request.
type Calculator struct {
	markups map[string]float64
}

func New(markups map[string]float64) *Calculator {
	return &Calculator{markups: markups}
}

// Line is the calculator's working shape of one expense row.
type Line struct {
	Category      string
	CostUnitPrice float64
	CostQuantity  float64
	CostTotal     float64
	BillUnitPrice float64
	BillQuantity  float64
	BillTotal     float64
	ManualBill    bool
	FileEstimate  *float64
	Memo          *string
}

// Recalc applies the pricing rules to the line and returns the result:
// cost side is always recomputed, bill side only while no manual override is
// in place. Inputs are clamped first, so a malformed line comes out safe
// rather than rejected.
func (c *Calculator) Recalc(line Line) Line {
	line.CostUnitPrice = ClampPrice(line.CostUnitPrice)
	line.CostQuantity = ClampQuantity(line.CostQuantity)
	line.CostTotal = line.CostUnitPrice * line.CostQuantity

	if line.ManualBill {
		// Operator-entered bill figures stay verbatim until the override
		// is reset.
		line.BillUnitPrice = ClampPrice(line.BillUnitPrice)
		line.BillQuantity = ClampQuantity(line.BillQuantity)
		return line
	}

	markup, ok := c.markups[line.Category]
	if !ok {
		markup = 1.0
	}

	if line.BillQuantity < 1 {
		line.BillQuantity = line.CostQuantity
	}
	line.BillTotal = math.Ceil(line.CostTotal * markup)
	line.BillUnitPrice = math.Ceil(line.BillTotal / line.BillQuantity)

	return line
}

// AutoBillMatches reports whether the stored bill total still equals the
// markup formula. A stored line that diverges was manually overridden.
func (c *Calculator) AutoBillMatches(line Line) bool {
	markup, ok := c.markups[line.Category]
	if !ok {
		markup = 1.0
	}
	return line.BillTotal == math.Ceil(line.CostUnitPrice*line.CostQuantity*markup)
}

// ParsePrice coerces free-form numeric input to a usable unit price.
// Blank, non-numeric or negative input becomes 0.
func ParsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return ClampPrice(v)
}

// ParseQuantity coerces free-form numeric input to a usable quantity.
// Blank, non-numeric, zero or negative input becomes 1.
func ParseQuantity(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 1
	}
	return ClampQuantity(v)
}

func ClampPrice(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func ClampQuantity(v float64) float64 {
	if v < 1 || math.IsNaN(v) {
		return 1
	}
	return v
}
