package excel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"billing-backend/internal/storage"
)

type StatementGenerator interface {
	GenerateStatement(ctx context.Context, workOrderID int64) ([]byte, error)
}

func GenerateStatementExcel(log *slog.Logger, generator StatementGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.excel.GenerateStatementExcel"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		data, err := generator.GenerateStatement(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrWorkOrderNotFound) {
				http.Error(w, "Work order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to generate statement", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement_%d.xlsx"`, id))
		w.Write(data)
	}
}
