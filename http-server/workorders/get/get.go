package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"billing-backend/internal/storage"
	"billing-backend/internal/storage/mysql"
)

type WorkOrderLister interface {
	GetWorkOrders(ctx context.Context, filter mysql.WorkOrderFilter) ([]storage.WorkOrder, error)
}

func GetWorkOrders(log *slog.Logger, lister WorkOrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workorders.get.GetWorkOrders"

		filter := mysql.WorkOrderFilter{
			Status:   r.URL.Query().Get("status"),
			Customer: r.URL.Query().Get("customer"),
			OrderNum: r.URL.Query().Get("order_num"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		orders, err := lister.GetWorkOrders(ctx, filter)
		if err != nil {
			log.Error("failed to list work orders", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, orders)
	}
}
