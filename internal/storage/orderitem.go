package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/campus-canteen/internal/domain/models"
)

// OrderItemStorage описывает методы для работы со строками заказа.
type OrderItemStorage interface {
	// CreateOrderItemTx вставляет строку заказа в рамках транзакции размещения.
	CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	// GetItemsByOrderID возвращает строки заказа с JOIN, чтобы получить название позиции меню.
	GetItemsByOrderID(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
}

type orderItemRepository struct {
	db *sql.DB
}

func NewOrderItemRepository(db *sql.DB) OrderItemStorage {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price)
	          VALUES ($1, $2, $3, $4)`
	_, err := tx.ExecContext(ctx, query, item.OrderID, item.MenuItemID, item.Quantity, item.UnitPrice)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderItemRepository) GetItemsByOrderID(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.menu_item_id, m.name, i.quantity, i.unit_price
		FROM order_items i
		JOIN menu_items m ON i.menu_item_id = m.id
		WHERE i.order_id = $1
		ORDER BY i.id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.MenuItemName,
			&item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
