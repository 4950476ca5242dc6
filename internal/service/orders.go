package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/storage"
	"github.com/shopspring/decimal"
)

// pickupEstimateOffset — фиксированный сдвиг для оценки времени выдачи заказа.
const pickupEstimateOffset = 15 * time.Minute

// OrderQueryService отдает заказы для студенческих и продавецких экранов.
type OrderQueryService interface {
	// StudentOrder возвращает заказ с позициями, только если он принадлежит пользователю.
	StudentOrder(ctx context.Context, userID, orderID int64) (*OrderDetails, error)
	// Confirmation возвращает подтверждение с оценкой времени выдачи (created_at + 15 минут).
	Confirmation(ctx context.Context, userID, orderID int64) (*Confirmation, error)
	// StudentHistory возвращает заказы пользователя, новые первыми.
	StudentHistory(ctx context.Context, userID int64) ([]*models.Order, error)
	// SellerQueue возвращает очередь заказов, опционально отфильтрованную по статусу.
	SellerQueue(ctx context.Context, statusFilter string) ([]*models.Order, error)
	// SellerDetail возвращает заказ с позициями и посчитанными суммами по строкам.
	SellerDetail(ctx context.Context, orderID int64) (*SellerOrderDetails, error)
}

type orderQueryService struct {
	log           *slog.Logger
	userRepo      storage.UserStorage
	orderRepo     storage.OrderStorage
	orderItemRepo storage.OrderItemStorage
}

func NewOrderQueryService(log *slog.Logger, userRepo storage.UserStorage,
	orderRepo storage.OrderStorage, orderItemRepo storage.OrderItemStorage) OrderQueryService {
	return &orderQueryService{
		log:           log,
		userRepo:      userRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
	}
}

// OrderDetails — заказ вместе с его строками.
type OrderDetails struct {
	Order *models.Order       `json:"order"`
	Items []*models.OrderItem `json:"items"`
}

// Confirmation — подтверждение заказа с оценкой времени выдачи.
type Confirmation struct {
	Order      *models.Order `json:"order"`
	PickupTime time.Time     `json:"pickup_time"`
}

// SellerOrderLine — строка заказа с посчитанной суммой quantity*unit_price.
type SellerOrderLine struct {
	MenuItemName string          `json:"menu_item_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// SellerOrderDetails — заказ для экрана продавца: владелец и строки с суммами.
type SellerOrderDetails struct {
	Order *models.Order      `json:"order"`
	Lines []*SellerOrderLine `json:"lines"`
}

// ownedOrder возвращает заказ пользователя; чужой или несуществующий заказ
// неразличимы для клиента, оба случая — ErrUnknownOrder.
func (s *orderQueryService) ownedOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrUnknownOrder
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrUnknownOrder
	}
	return order, nil
}

func (s *orderQueryService) StudentOrder(ctx context.Context, userID, orderID int64) (*OrderDetails, error) {
	const op = "service.OrderQueryService.StudentOrder"
	s.log.Info("getting student order", slog.String("op", op),
		slog.Int64("userID", userID), slog.Int64("orderID", orderID))

	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, err := s.orderItemRepo.GetItemsByOrderID(ctx, orderID)
	if err != nil {
		s.log.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	return &OrderDetails{Order: order, Items: items}, nil
}

func (s *orderQueryService) Confirmation(ctx context.Context, userID, orderID int64) (*Confirmation, error) {
	const op = "service.OrderQueryService.Confirmation"
	s.log.Info("getting order confirmation", slog.String("op", op),
		slog.Int64("userID", userID), slog.Int64("orderID", orderID))

	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Confirmation{
		Order:      order,
		PickupTime: order.CreatedAt.Add(pickupEstimateOffset),
	}, nil
}

func (s *orderQueryService) StudentHistory(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderQueryService.StudentHistory"
	s.log.Info("getting student order history", slog.String("op", op), slog.Int64("userID", userID))

	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	return orders, nil
}

// SellerQueue принимает фильтр статуса из query-параметра; "all" и пустая строка
// означают отсутствие фильтра, нераспознанный статус отклоняется.
func (s *orderQueryService) SellerQueue(ctx context.Context, statusFilter string) ([]*models.Order, error) {
	const op = "service.OrderQueryService.SellerQueue"
	s.log.Info("getting seller queue", slog.String("op", op), slog.String("status", statusFilter))

	var status models.Status
	if statusFilter != "" && statusFilter != "all" {
		status = models.Status(statusFilter)
		if !status.Valid() {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
		}
	}

	orders, err := s.orderRepo.ListOrders(ctx, status)
	if err != nil {
		s.log.Error("failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return orders, nil
}

func (s *orderQueryService) SellerDetail(ctx context.Context, orderID int64) (*SellerOrderDetails, error) {
	const op = "service.OrderQueryService.SellerDetail"
	s.log.Info("getting seller order detail", slog.String("op", op), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownOrder)
		}
		s.log.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	// имя владельца для экрана продавца
	owner, err := s.userRepo.GetUserByID(ctx, order.UserID)
	if err == nil {
		order.Username = owner.Username
	}

	items, err := s.orderItemRepo.GetItemsByOrderID(ctx, orderID)
	if err != nil {
		s.log.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}

	lines := make([]*SellerOrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, &SellerOrderLine{
			MenuItemName: item.MenuItemName,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return &SellerOrderDetails{Order: order, Lines: lines}, nil
}
