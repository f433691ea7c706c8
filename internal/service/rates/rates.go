package rates

import (
	"time"

	"billing-backend/internal/constants"
	"billing-backend/internal/storage"
)

// Resolved is the rate pair in effect for one activity at one instant.
type Resolved struct {
	Activity constants.Activity
	CostRate float64
	BillRate float64
	// RateID is 0 when the default kicked in (no row for the activity).
	RateID int64
}

// Resolver answers rate lookups over an in-memory rate history. It never
// fails: an activity without any rate row resolves to the configured default,
// so a work order can always show a total.
type Resolver struct {
	defaultCostRate float64
	defaultBillRate float64
	byActivity      map[constants.Activity][]storage.Rate
}

// New groups the history per activity. Rows arrive in any order; resolution
// sorts by walking for the latest matching interval.
func New(history []storage.Rate, defaultCostRate, defaultBillRate float64) *Resolver {
	byActivity := make(map[constants.Activity][]storage.Rate)
	for _, r := range history {
		byActivity[r.Activity] = append(byActivity[r.Activity], r)
	}

	return &Resolver{
		defaultCostRate: defaultCostRate,
		defaultBillRate: defaultBillRate,
		byActivity:      byActivity,
	}
}

// Current returns the rate whose [from, to) interval contains the instant.
// With several candidates (should not happen, intervals do not overlap) the
// latest effectiveFrom wins.
func (rs *Resolver) Current(activity constants.Activity, at time.Time) Resolved {
	var best *storage.Rate
	for i := range rs.byActivity[activity] {
		r := rs.byActivity[activity][i]
		if !r.Contains(at) {
			continue
		}
		if best == nil || r.EffectiveFrom.After(best.EffectiveFrom) {
			best = &rs.byActivity[activity][i]
		}
	}
	if best == nil {
		return Resolved{
			Activity: activity,
			CostRate: rs.defaultCostRate,
			BillRate: rs.defaultBillRate,
		}
	}

	return Resolved{Activity: activity, CostRate: best.CostRate, BillRate: best.BillRate, RateID: best.ID}
}

// Original returns the historically first rate of the activity, the baseline
// every adjustment is reported against. Falls back to the default like Current.
func (rs *Resolver) Original(activity constants.Activity) Resolved {
	var first *storage.Rate
	for i := range rs.byActivity[activity] {
		r := rs.byActivity[activity][i]
		if first == nil || r.EffectiveFrom.Before(first.EffectiveFrom) {
			first = &rs.byActivity[activity][i]
		}
	}
	if first == nil {
		return Resolved{
			Activity: activity,
			CostRate: rs.defaultCostRate,
			BillRate: rs.defaultBillRate,
		}
	}

	return Resolved{Activity: activity, CostRate: first.CostRate, BillRate: first.BillRate, RateID: first.ID}
}
