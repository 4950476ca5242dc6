package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/campus-canteen/internal/domain/models"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNumberTaken = errors.New("order number already taken")
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrderTx вставляет заказ в рамках транзакции размещения и возвращает его id.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	// ListOrdersByUser возвращает заказы пользователя, новые первыми.
	ListOrdersByUser(ctx context.Context, userID int64) ([]*models.Order, error)
	// ListOrders возвращает все заказы (с именем владельца), опционально фильтруя по статусу.
	ListOrders(ctx context.Context, status models.Status) ([]*models.Order, error)
	// LockOrderByIDTx читает заказ с блокировкой строки, защита от гонки двух одновременных переходов.
	LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.Status) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, user_id, order_number, total_amount, status, created_at, updated_at, pickup_time"

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, order_number, total_amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`,
		order.UserID, order.OrderNumber, order.TotalAmount, order.Status,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation номера заказа
			return 0, ErrOrderNumberTaken
		}
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err := row.Scan(&order.ID, &order.UserID, &order.OrderNumber, &order.TotalAmount,
		&order.Status, &order.CreatedAt, &order.UpdatedAt, &order.PickupTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.OrderNumber, &order.TotalAmount,
			&order.Status, &order.CreatedAt, &order.UpdatedAt, &order.PickupTime); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders используется очередью продавца: JOIN с users, чтобы показать владельца заказа.
// Пустой status означает отсутствие фильтра.
func (r *orderRepository) ListOrders(ctx context.Context, status models.Status) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.username, o.order_number, o.total_amount, o.status,
		       o.created_at, o.updated_at, o.pickup_time
		FROM orders o
		JOIN users u ON o.user_id = u.id`
	args := []any{}
	if status != "" {
		query += " WHERE o.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY o.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.Username, &order.OrderNumber,
			&order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt, &order.PickupTime); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", id)
	if err := row.Scan(&order.ID, &order.UserID, &order.OrderNumber, &order.TotalAmount,
		&order.Status, &order.CreatedAt, &order.UpdatedAt, &order.PickupTime); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "55P03" { // lock
			return nil, fmt.Errorf("order row is locked, please try again: %w", err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.Status) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
