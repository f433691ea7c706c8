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

	"billing-backend/internal/storage"
)

type AdjustmentStore interface {
	GetAdjustment(ctx context.Context, id int64) (*storage.Adjustment, error)
	UpdateAdjustmentMemo(ctx context.Context, id int64, memo string) error
	SoftDeleteAdjustment(ctx context.Context, id int64) error
}

type Request struct {
	Memo string `json:"memo"`
}

// UpdateAdjustment edits a comment-type adjustment. Only its author or an
// admin may touch it; rate_adjustment rows are append-only and refused here.
func UpdateAdjustment(log *slog.Logger, store AdjustmentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adjustments.update.UpdateAdjustment"

		_, id, ok := loadEditable(w, r, log, store, op)
		if !ok {
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := store.UpdateAdjustmentMemo(ctx, id, req.Memo); err != nil {
			log.Error("failed to update adjustment", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]interface{}{"status": strconv.Itoa(http.StatusOK), "id": id})
	}
}

func DeleteAdjustment(log *slog.Logger, store AdjustmentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adjustments.update.DeleteAdjustment"

		_, id, ok := loadEditable(w, r, log, store, op)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := store.SoftDeleteAdjustment(ctx, id); err != nil {
			log.Error("failed to delete adjustment", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]interface{}{"status": strconv.Itoa(http.StatusOK), "id": id})
	}
}

// loadEditable parses the id, loads the row and enforces the type and
// author-or-admin rules shared by edit and delete.
func loadEditable(w http.ResponseWriter, r *http.Request, log *slog.Logger, store AdjustmentStore, op string) (*storage.Adjustment, int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, 0, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	adj, err := store.GetAdjustment(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrAdjustmentNotFound) {
			http.Error(w, "Adjustment not found", http.StatusNotFound)
			return nil, 0, false
		}
		log.Error("failed to load adjustment", slog.String("op", op), slog.String("error", err.Error()))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return nil, 0, false
	}

	if adj.Type != storage.AdjustmentFinalDecision {
		http.Error(w, "Only comment adjustments can be edited", http.StatusForbidden)
		return nil, 0, false
	}

	user := r.Header.Get("X-User")
	role := r.Header.Get("X-Role")
	if adj.CreatedBy != user && role != "admin" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, 0, false
	}

	return adj, id, true
}
