package save

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

	"billing-backend/internal/storage"
)

type AdjustmentSaver interface {
	GetWorkOrder(ctx context.Context, id int64) (*storage.WorkOrder, error)
	SaveAdjustment(ctx context.Context, a storage.Adjustment) (int64, error)
}

type Request struct {
	Memo string `json:"memo"`
}

type Response struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// SaveComment appends a free-form comment adjustment to a work order.
// Finalized orders take no new entries.
func SaveComment(log *slog.Logger, saver AdjustmentSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adjustments.save.SaveComment"

		idStr := chi.URLParam(r, "id")
		workOrderID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}
		if req.Memo == "" {
			http.Error(w, "Memo is required", http.StatusBadRequest)
			return
		}

		user := r.Header.Get("X-User")
		if user == "" {
			user = "operator"
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		wo, err := saver.GetWorkOrder(ctx, workOrderID)
		if err != nil {
			if errors.Is(err, storage.ErrWorkOrderNotFound) {
				http.Error(w, "Work order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load work order", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if wo.Status == storage.StatusAggregated {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, Response{Error: "work order is already finalized"})
			return
		}

		memo := req.Memo
		id, err := saver.SaveAdjustment(ctx, storage.Adjustment{
			WorkOrderID: workOrderID,
			Type:        storage.AdjustmentFinalDecision,
			Reason:      "operator comment",
			Memo:        &memo,
			CreatedBy:   user,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			log.Error("failed to save comment", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{ID: id, Status: strconv.Itoa(http.StatusOK)})
	}
}
