package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"billing-backend/internal/constants"
	"billing-backend/internal/service/classify"
	"billing-backend/internal/service/rates"
	"billing-backend/internal/storage"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func span(worker, machine, description string, startHour float64, hours float64) storage.WorkRecord {
	start := day.Add(time.Duration(startHour * float64(time.Hour)))
	return storage.WorkRecord{
		WorkerName:  worker,
		MachineName: machine,
		Description: description,
		StartedAt:   start,
		EndedAt:     start.Add(time.Duration(hours * float64(time.Hour))),
	}
}

func TestBuildActivityLines_Example(t *testing.T) {
	records := []storage.WorkRecord{
		span("山田太郎", "プレス", "曲げ加工", 9, 3.0),
		span("山田太郎", "プレス", "検査", 13, 2.5),
	}

	resolver := rates.New(nil, 8000, 11000)
	lines, totalHours := BuildActivityLines(records, classify.New(), resolver, day)

	assert.Len(t, lines, 2)

	assert.Equal(t, constants.ActivityNormal, lines[0].Activity)
	assert.Equal(t, 3.0, lines[0].Hours)
	assert.Equal(t, float64(33000), lines[0].BillAmount)

	assert.Equal(t, constants.ActivityInspection, lines[1].Activity)
	assert.Equal(t, 2.5, lines[1].Hours)
	assert.Equal(t, float64(27500), lines[1].BillAmount)

	assert.Equal(t, 5.5, totalHours)
	assert.Equal(t, float64(60500), lines[0].BillAmount+lines[1].BillAmount)
}

func TestBuildActivityLines_HoursRoundedPerGroup(t *testing.T) {
	// Three records of 0.33h each: per-record rounding would give 0.9,
	// group-level rounding gives round(0.99*10)/10 = 1.0.
	records := []storage.WorkRecord{
		span("山田太郎", "プレス", "組立", 9, 0.33),
		span("山田太郎", "プレス", "組立", 10, 0.33),
		span("山田太郎", "プレス", "組立", 11, 0.33),
	}

	resolver := rates.New(nil, 8000, 11000)
	lines, totalHours := BuildActivityLines(records, classify.New(), resolver, day)

	assert.Len(t, lines, 1)
	assert.Equal(t, 1.0, lines[0].Hours)
	assert.Equal(t, 1.0, totalHours)
}

func TestBuildActivityLines_AdjustmentAgainstOriginalRate(t *testing.T) {
	apr := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	history := []storage.Rate{
		{ID: 1, Activity: constants.ActivityNormal, EffectiveFrom: day.AddDate(-1, 0, 0), EffectiveTo: &apr, CostRate: 8000, BillRate: 11000},
		{ID: 2, Activity: constants.ActivityNormal, EffectiveFrom: apr, CostRate: 8000, BillRate: 12000},
	}

	records := []storage.WorkRecord{
		span("山田太郎", "プレス", "組立", 9, 3.0),
	}

	resolver := rates.New(history, 8000, 11000)
	lines, _ := BuildActivityLines(records, classify.New(), resolver, day)

	assert.Equal(t, float64(12000), lines[0].BillRate)
	assert.Equal(t, float64(36000), lines[0].BillAmount)
	// 36000 - round(3.0*11000)
	assert.Equal(t, float64(3000), lines[0].Adjustment)
}

func TestBuildActivityLines_NegativeSpanCountsZero(t *testing.T) {
	rec := span("山田太郎", "プレス", "組立", 9, 2)
	rec.EndedAt = rec.StartedAt.Add(-time.Hour)

	resolver := rates.New(nil, 8000, 11000)
	lines, totalHours := BuildActivityLines([]storage.WorkRecord{rec}, classify.New(), resolver, day)

	assert.Len(t, lines, 1)
	assert.Equal(t, 0.0, lines[0].Hours)
	assert.Equal(t, 0.0, totalHours)
}
