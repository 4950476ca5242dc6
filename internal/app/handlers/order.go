package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/campus-canteen/internal/security/authmw"
	"github.com/linemk/campus-canteen/internal/service"
)

// CreateOrderResponse — ответ при успешном размещении заказа.
type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// orderIDParam разбирает параметр {id} из URL. Нечисловой идентификатор
// неотличим от несуществующего заказа.
func orderIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CreateOrderHandler обрабатывает запрос POST /api/orders/create/
// Тело запроса — корзина: {"<menu_item_id>": {"quantity": N, "name": "..."}}.
func CreateOrderHandler(log *slog.Logger, placementService service.PlacementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var cart service.Cart
		if err := json.NewDecoder(r.Body).Decode(&cart); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "invalid JSON format")
			return
		}

		orderID, orderNumber, err := placementService.PlaceOrder(r.Context(), userID, cart)
		if err != nil {
			logger.Error("failed to place order", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CreateOrderResponse{
			Success:     true,
			OrderID:     orderID,
			OrderNumber: orderNumber,
		})
	}
}

// OrderConfirmationHandler обрабатывает запрос GET /student/order-confirmation/{id}
func OrderConfirmationHandler(log *slog.Logger, orderQuery service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderConfirmationHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
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

		conf, err := orderQuery.Confirmation(r.Context(), userID, orderID)
		if err != nil {
			logger.Error("failed to get confirmation", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conf)
	}
}

// OrderTrackingHandler обрабатывает запрос GET /student/order-tracking/{id}
func OrderTrackingHandler(log *slog.Logger, orderQuery service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderTrackingHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
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

		details, err := orderQuery.StudentOrder(r.Context(), userID, orderID)
		if err != nil {
			logger.Error("failed to get order", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

// StudentOrdersHandler обрабатывает запрос GET /student/orders/ — история, новые первыми.
func StudentOrdersHandler(log *slog.Logger, orderQuery service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.StudentOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		orders, err := orderQuery.StudentHistory(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get order history", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	}
}
