package aggregate

import (
	"math"
	"time"

	"billing-backend/internal/constants"
	"billing-backend/internal/service/classify"
	"billing-backend/internal/service/rates"
	"billing-backend/internal/storage"
)

// RoundMoney rounds to the nearest whole currency unit.
func RoundMoney(v float64) float64 {
	return math.Round(v)
}

// RoundHours rounds to one decimal place. Applied per activity group, never per record.
func RoundHours(h float64) float64 {
	return math.Round(h*10) / 10
}

// BuildActivityLines classifies every record, groups by activity and prices
// each group against the rate history. Pure given its inputs: the GET display
// and the finalization snapshot call it with the same instant and must get
// identical lines.
func BuildActivityLines(records []storage.WorkRecord, classifier *classify.Classifier, resolver *rates.Resolver, at time.Time) ([]storage.ActivityLine, float64) {
	rawHours := make(map[constants.Activity]float64)
	for _, rec := range records {
		activity := classifier.Classify(rec)
		rawHours[activity] += rec.Hours()
	}

	var lines []storage.ActivityLine
	var totalHours float64

	for _, activity := range constants.AllActivities {
		raw, ok := rawHours[activity]
		if !ok {
			continue
		}

		hours := RoundHours(raw)
		current := resolver.Current(activity, at)
		original := resolver.Original(activity)

		billAmount := RoundMoney(hours * current.BillRate)
		lines = append(lines, storage.ActivityLine{
			Activity:     activity,
			ActivityName: constants.ActivityNames[activity],
			Hours:        hours,
			CostRate:     current.CostRate,
			BillRate:     current.BillRate,
			CostAmount:   RoundMoney(hours * current.CostRate),
			BillAmount:   billAmount,
			Adjustment:   billAmount - RoundMoney(hours*original.BillRate),
		})
		totalHours += hours
	}

	return lines, RoundHours(totalHours)
}

// HoursByActivity extracts the per-group hours from built lines, the figure
// the adjustment ledger prices rate deltas against.
func HoursByActivity(lines []storage.ActivityLine) map[constants.Activity]float64 {
	hours := make(map[constants.Activity]float64, len(lines))
	for _, l := range lines {
		hours[l.Activity] = l.Hours
	}
	return hours
}
