package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"billing-backend/internal/constants"
	"billing-backend/internal/service/aggregate"
	"billing-backend/internal/storage"
)

type AggregationSaver interface {
	Save(ctx context.Context, workOrderID int64, upd storage.AggregationUpdate, user string) error
}

// Request mirrors the save payload; the expenses pointer distinguishes
// "replace with empty set" from "untouched".
type Request struct {
	BillRateAdjustments map[constants.Activity]storage.RateAdjustmentInput `json:"bill_rate_adjustments"`
	Expenses            *[]storage.ExpenseItem                             `json:"expenses"`
	EstimateAmount      *float64                                           `json:"estimate_amount"`
	FinalDecisionAmount *float64                                           `json:"final_decision_amount"`
	DeliveryDate        *string                                            `json:"delivery_date"`
	Status              string                                             `json:"status"`
}

type Response struct {
	WorkOrderID int64  `json:"work_order_id"`
	Status      string `json:"status"`
	Error       string `json:"error"`
}

func SaveAggregation(log *slog.Logger, saver AggregationSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.aggregation.update.SaveAggregation"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		upd := storage.AggregationUpdate{
			BillRateAdjustments: req.BillRateAdjustments,
			EstimateAmount:      req.EstimateAmount,
			FinalDecisionAmount: req.FinalDecisionAmount,
			DeliveryDate:        req.DeliveryDate,
			Status:              req.Status,
		}
		if req.Expenses != nil {
			upd.HasExpenses = true
			upd.Expenses = *req.Expenses
		}

		user := r.Header.Get("X-User")
		if user == "" {
			user = "operator"
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = saver.Save(ctx, id, upd, user)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrWorkOrderNotFound):
				http.Error(w, "Work order not found", http.StatusNotFound)
			case errors.Is(err, aggregate.ErrOrderLocked):
				w.WriteHeader(http.StatusConflict)
				render.JSON(w, r, Response{WorkOrderID: id, Error: "work order is already finalized"})
			case errors.Is(err, aggregate.ErrNothingToSave), errors.Is(err, aggregate.ErrInvalidStatus):
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, Response{WorkOrderID: id, Error: err.Error()})
			default:
				log.Error("failed to save aggregation", slog.String("op", op), slog.String("error", err.Error()))
				http.Error(w, "Internal error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, r, Response{
			WorkOrderID: id,
			Status:      strconv.Itoa(http.StatusOK),
		})
	}
}
