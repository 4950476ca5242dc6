package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/security/authmw"
	"github.com/linemk/campus-canteen/internal/service"
)

// UpdateStatusResponse — ответ при успешном переходе статуса.
type UpdateStatusResponse struct {
	Success   bool          `json:"success"`
	NewStatus models.Status `json:"new_status"`
}

// SellerOrdersHandler обрабатывает запрос GET /seller/orders/?status=
func SellerOrdersHandler(log *slog.Logger, orderQuery service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SellerOrdersHandler"
		logger := log.With(slog.String("op", op))

		statusFilter := r.URL.Query().Get("status")
		orders, err := orderQuery.SellerQueue(r.Context(), statusFilter)
		if err != nil {
			logger.Error("failed to get seller queue", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	}
}

// SellerOrderDetailHandler обрабатывает запрос GET /seller/orders/{id}/
func SellerOrderDetailHandler(log *slog.Logger, orderQuery service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SellerOrderDetailHandler"
		logger := log.With(slog.String("op", op))

		orderID, ok := orderIDParam(r)
		if !ok {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}

		detail, err := orderQuery.SellerDetail(r.Context(), orderID)
		if err != nil {
			logger.Error("failed to get order detail", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// UpdateOrderStatusHandler обрабатывает запрос PUT /api/orders/{id}/status/{new_status}/
func UpdateOrderStatusHandler(log *slog.Logger, statusService service.StatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		actorID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		orderID, ok := orderIDParam(r)
		if !ok {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		target := models.Status(chi.URLParam(r, "new_status"))

		if err := statusService.Advance(r.Context(), orderID, target, actorID); err != nil {
			logger.Error("failed to advance status", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, UpdateStatusResponse{Success: true, NewStatus: target})
	}
}
