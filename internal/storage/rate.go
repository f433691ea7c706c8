package storage

import (
	"time"

	"billing-backend/internal/constants"
)

// Rate is one time-bounded {costRate, billRate} version for an activity.
// Intervals of one activity never overlap; at most one row is open-ended.
type Rate struct {
	ID            int64               `json:"id"`
	Activity      constants.Activity  `json:"activity"`
	EffectiveFrom time.Time           `json:"effective_from"`
	EffectiveTo   *time.Time          `json:"effective_to"`
	CostRate      float64             `json:"cost_rate"`
	BillRate      float64             `json:"bill_rate"`
}

// Contains reports whether the instant falls inside [EffectiveFrom, EffectiveTo).
func (r Rate) Contains(at time.Time) bool {
	if at.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo == nil {
		return true
	}
	return at.Before(*r.EffectiveTo)
}

// RateChange is one versioning write: close the open interval, open a new one.
type RateChange struct {
	Activity    constants.Activity
	OldRateID   int64 // 0 when the activity had no rate row
	OldBillRate float64
	NewBillRate float64
	CostRate    float64
	ChangedAt   time.Time
}
