package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"billing-backend/internal/storage"
)

type AggregationProvider interface {
	GetDetail(ctx context.Context, workOrderID int64) (*storage.AggregationDetail, error)
}

func GetAggregation(log *slog.Logger, provider AggregationProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.aggregation.get.GetAggregation"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		detail, err := provider.GetDetail(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrWorkOrderNotFound) {
				http.Error(w, "Work order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to build aggregation detail", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, detail)
	}
}
