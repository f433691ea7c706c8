package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"billing-backend/internal/constants"
	"billing-backend/internal/storage"
)

type RateHistoryStore interface {
	GetRateHistory(ctx context.Context, activity constants.Activity) ([]storage.Rate, error)
}

// GetRateHistoryAdmin returns the read-only audit view of one activity's rate versions.
func GetRateHistoryAdmin(log *slog.Logger, store RateHistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.get.GetRateHistoryAdmin"

		activity := constants.Activity(r.URL.Query().Get("activity"))
		if !constants.IsActivity(activity) {
			http.Error(w, "Unknown activity", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		history, err := store.GetRateHistory(ctx, activity)
		if err != nil {
			log.Error("failed to load rate history", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, history)
	}
}
