package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"

	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/storage"
	"github.com/shopspring/decimal"
)

// CartLine — строка корзины, присланная клиентом: количество и отображаемое имя.
type CartLine struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// Cart — корзина: идентификатор позиции меню -> строка корзины.
type Cart map[string]CartLine

// PlacementService размещает заказ: проверяет корзину по текущему меню,
// считает сумму и атомарно сохраняет заказ вместе с его строками.
type PlacementService interface {
	PlaceOrder(ctx context.Context, userID int64, cart Cart) (orderID int64, orderNumber string, err error)
}

type placementService struct {
	log           *slog.Logger
	db            *sql.DB
	menuRepo      storage.MenuStorage
	orderRepo     storage.OrderStorage
	orderItemRepo storage.OrderItemStorage
}

func NewPlacementService(log *slog.Logger, db *sql.DB, menuRepo storage.MenuStorage,
	orderRepo storage.OrderStorage, orderItemRepo storage.OrderItemStorage) PlacementService {
	return &placementService{
		log:           log,
		db:            db,
		menuRepo:      menuRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
	}
}

const (
	orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberLength   = 8
	// сколько раз пробуем заново при коллизии номера заказа
	maxPlacementAttempts = 5
)

// PlaceOrder размещает заказ. Все записи выполняются в одной транзакции:
// либо сохраняются заказ и все его строки, либо ничего. Цена каждой позиции
// фиксируется в строке заказа на момент размещения. При коллизии номера заказа
// транзакция повторяется с новым номером.
func (s *placementService) PlaceOrder(ctx context.Context, userID int64, cart Cart) (int64, string, error) {
	const op = "service.PlacementService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting order placement", slog.Int("cartLines", len(cart)))

	if len(cart) == 0 {
		return 0, "", fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}
	for _, line := range cart {
		if line.Quantity < 1 {
			return 0, "", fmt.Errorf("%s: %w", op, ErrInvalidInput)
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		orderID, orderNumber, err := s.placeOnce(ctx, logger, userID, cart)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNumberTaken) {
				logger.Warn("order number collision, retrying", slog.Int("attempt", attempt+1))
				lastErr = err
				continue
			}
			return 0, "", err
		}
		logger.Info("order placed successfully",
			slog.Int64("orderID", orderID), slog.String("orderNumber", orderNumber))
		return orderID, orderNumber, nil
	}
	return 0, "", fmt.Errorf("%s: failed to allocate order number: %w", op, lastErr)
}

// placeOnce — одна попытка разместить заказ в одной транзакции.
func (s *placementService) placeOnce(ctx context.Context, logger *slog.Logger, userID int64, cart Cart) (int64, string, error) {
	const op = "service.PlacementService.placeOnce"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, "", fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
	}

	total := decimal.Zero
	type pricedLine struct {
		menuItemID int64
		quantity   int
		unitPrice  decimal.Decimal
	}
	var lines []pricedLine

	// Каждая строка корзины сверяется с текущим меню; отсутствующая или недоступная
	// позиция отменяет весь заказ, частичных заказов не бывает.
	for rawID, line := range cart {
		displayName := line.Name
		if displayName == "" {
			displayName = rawID
		}
		itemID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			rollback()
			return 0, "", fmt.Errorf("%s: %w", op, &ItemUnavailableError{Name: displayName})
		}
		menuItem, err := s.menuRepo.GetAvailableItemTx(ctx, tx, itemID)
		if err != nil {
			rollback()
			if errors.Is(err, storage.ErrMenuItemNotFound) {
				logger.Warn("cart references unavailable item", slog.Int64("menuItemID", itemID))
				return 0, "", fmt.Errorf("%s: %w", op, &ItemUnavailableError{Name: displayName})
			}
			logger.Error("failed to get menu item", slog.Any("error", err))
			return 0, "", fmt.Errorf("%s: failed to get menu item: %w", op, err)
		}

		total = total.Add(menuItem.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		lines = append(lines, pricedLine{
			menuItemID: menuItem.ID,
			quantity:   line.Quantity,
			unitPrice:  menuItem.Price,
		})
	}

	if total.IsZero() {
		rollback()
		return 0, "", fmt.Errorf("%s: %w", op, ErrEmptyOrder)
	}

	orderNumber, err := generateOrderNumber()
	if err != nil {
		rollback()
		logger.Error("failed to generate order number", slog.Any("error", err))
		return 0, "", fmt.Errorf("%s: failed to generate order number: %w", op, err)
	}

	order := &models.Order{
		UserID:      userID,
		OrderNumber: orderNumber,
		TotalAmount: total,
		Status:      models.StatusPending,
	}
	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, order)
	if err != nil {
		rollback()
		if errors.Is(err, storage.ErrOrderNumberTaken) {
			return 0, "", err
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return 0, "", fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	for _, line := range lines {
		item := &models.OrderItem{
			OrderID:    orderID,
			MenuItemID: line.menuItemID,
			Quantity:   line.quantity,
			UnitPrice:  line.unitPrice,
		}
		if err := s.orderItemRepo.CreateOrderItemTx(ctx, tx, item); err != nil {
			rollback()
			logger.Error("failed to create order item", slog.Any("error", err))
			return 0, "", fmt.Errorf("%s: failed to create order item: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, "", fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return orderID, orderNumber, nil
}

// generateOrderNumber возвращает 8-символьный номер заказа из заглавных букв и цифр.
func generateOrderNumber() (string, error) {
	buf := make([]byte, orderNumberLength)
	alphabetLen := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = orderNumberAlphabet[n.Int64()]
	}
	return string(buf), nil
}
