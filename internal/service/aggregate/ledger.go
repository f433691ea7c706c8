package aggregate

import (
	"fmt"
	"strconv"
	"time"

	"billing-backend/internal/constants"
	"billing-backend/internal/service/rates"
	"billing-backend/internal/storage"
)

// buildRateChanges turns the pending bill-rate overrides into rate version
// writes plus their audit rows. A rate equal to the currently effective one
// produces nothing; a changed rate whose priced delta is exactly 0 (no hours)
// still versions the rate but writes no adjustment; the ledger records
// financial deltas only.
func buildRateChanges(
	pending map[constants.Activity]storage.RateAdjustmentInput,
	resolver *rates.Resolver,
	hours map[constants.Activity]float64,
	workOrderID int64,
	user string,
	now time.Time,
) ([]storage.RateChange, []storage.Adjustment) {
	var changes []storage.RateChange
	var adjustments []storage.Adjustment

	// Fixed activity order keeps the write order deterministic.
	for _, activity := range constants.AllActivities {
		input, ok := pending[activity]
		if !ok {
			continue
		}

		current := resolver.Current(activity, now)
		if input.BillRate == current.BillRate {
			continue
		}

		changes = append(changes, storage.RateChange{
			Activity:    activity,
			OldRateID:   current.RateID,
			OldBillRate: current.BillRate,
			NewBillRate: input.BillRate,
			CostRate:    current.CostRate,
			ChangedAt:   now,
		})

		amount := RoundMoney(hours[activity] * (input.BillRate - current.BillRate))
		if amount == 0 {
			continue
		}

		var memo *string
		if input.Memo != "" {
			m := input.Memo
			memo = &m
		}

		adjustments = append(adjustments, storage.Adjustment{
			WorkOrderID: workOrderID,
			Type:        storage.AdjustmentRate,
			Amount:      amount,
			Reason:      rateChangeReason(activity, current.BillRate, input.BillRate),
			Memo:        memo,
			CreatedBy:   user,
			CreatedAt:   now,
		})
	}

	return changes, adjustments
}

// finalDecisionDelta records a final-decision-amount change as a comment-type
// ledger row carrying the signed delta. Nil when nothing changed.
func finalDecisionDelta(wo *storage.WorkOrder, newAmount *float64, user string, now time.Time) *storage.Adjustment {
	if newAmount == nil {
		return nil
	}

	var old float64
	if wo.FinalDecisionAmount != nil {
		old = *wo.FinalDecisionAmount
	}
	if *newAmount == old {
		return nil
	}

	return &storage.Adjustment{
		WorkOrderID: wo.ID,
		Type:        storage.AdjustmentFinalDecision,
		Amount:      RoundMoney(*newAmount - old),
		Reason:      fmt.Sprintf("final decision amount change (%s→%s)", formatRate(old), formatRate(*newAmount)),
		CreatedBy:   user,
		CreatedAt:   now,
	}
}

func rateChangeReason(activity constants.Activity, oldRate, newRate float64) string {
	return fmt.Sprintf("%s rate change (%s→%s)",
		string(activity), formatRate(oldRate), formatRate(newRate))
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
