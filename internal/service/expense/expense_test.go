package expense

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"billing-backend/internal/constants"
)

func calc() *Calculator {
	return New(constants.MarkupRates)
}

func TestRecalc_AutoMarkup(t *testing.T) {
	line := calc().Recalc(Line{
		Category:      constants.CategoryMaterial,
		CostUnitPrice: 333,
		CostQuantity:  3,
	})

	assert.Equal(t, float64(999), line.CostTotal)
	// ceil(999 * 1.2) = 1199
	assert.Equal(t, float64(1199), line.BillTotal)
	// bill quantity defaults to cost quantity; unit price is ceil(1199/3)
	assert.Equal(t, float64(3), line.BillQuantity)
	assert.Equal(t, float64(400), line.BillUnitPrice)
}

func TestRecalc_UnknownCategoryNoMarkup(t *testing.T) {
	line := calc().Recalc(Line{
		Category:      "misc",
		CostUnitPrice: 100,
		CostQuantity:  2,
	})

	assert.Equal(t, float64(200), line.BillTotal)
}

func TestRecalc_ManualOverrideFreezesBillSide(t *testing.T) {
	line := Line{
		Category:      constants.CategoryMaterial,
		CostUnitPrice: 100,
		CostQuantity:  1,
		BillUnitPrice: 5000,
		BillQuantity:  1,
		BillTotal:     5000,
		ManualBill:    true,
	}

	got := calc().Recalc(line)
	assert.Equal(t, float64(100), got.CostTotal)
	assert.Equal(t, float64(5000), got.BillTotal)

	// A later cost edit still leaves the bill side alone.
	got.CostUnitPrice = 900
	got = calc().Recalc(got)
	assert.Equal(t, float64(900), got.CostTotal)
	assert.Equal(t, float64(5000), got.BillTotal)
}

func TestRecalc_OverrideResetRederives(t *testing.T) {
	line := Line{
		Category:      constants.CategoryOutsourcing,
		CostUnitPrice: 1000,
		CostQuantity:  2,
		BillTotal:     9999,
		ManualBill:    true,
	}
	line = calc().Recalc(line)
	assert.Equal(t, float64(9999), line.BillTotal)

	line.ManualBill = false
	line = calc().Recalc(line)
	// ceil(2000 * 1.25)
	assert.Equal(t, float64(2500), line.BillTotal)
}

func TestRecalc_ClampsInputs(t *testing.T) {
	line := calc().Recalc(Line{
		Category:      constants.CategoryShipping,
		CostUnitPrice: -500,
		CostQuantity:  0,
	})

	assert.Equal(t, float64(0), line.CostUnitPrice)
	assert.Equal(t, float64(1), line.CostQuantity)
	assert.Equal(t, float64(0), line.CostTotal)
	assert.Equal(t, float64(0), line.BillTotal)
}

func TestAutoBillMatches(t *testing.T) {
	c := calc()

	assert.True(t, c.AutoBillMatches(Line{
		Category:      constants.CategoryMaterial,
		CostUnitPrice: 333,
		CostQuantity:  3,
		BillTotal:     1199,
	}))
	assert.False(t, c.AutoBillMatches(Line{
		Category:      constants.CategoryMaterial,
		CostUnitPrice: 333,
		CostQuantity:  3,
		BillTotal:     5000,
	}))
}

func TestParseCoercion(t *testing.T) {
	assert.Equal(t, float64(0), ParsePrice(""))
	assert.Equal(t, float64(0), ParsePrice("abc"))
	assert.Equal(t, float64(0), ParsePrice("-10"))
	assert.Equal(t, float64(150), ParsePrice(" 150 "))

	assert.Equal(t, float64(1), ParseQuantity(""))
	assert.Equal(t, float64(1), ParseQuantity("xyz"))
	assert.Equal(t, float64(1), ParseQuantity("0"))
	assert.Equal(t, float64(1), ParseQuantity("-3"))
	assert.Equal(t, float64(4), ParseQuantity("4"))
}
