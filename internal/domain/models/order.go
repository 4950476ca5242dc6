package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status — статус заказа
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid проверяет, что статус входит в признанный набор.
// cancelled признаётся как значение, но ни одно правило перехода его не допускает.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order представляет заказ студента.
// TotalAmount фиксируется при создании и равен сумме quantity*unit_price по позициям.
type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Username    string          `json:"username,omitempty"` // заполняется через JOIN с users
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	PickupTime  *time.Time      `json:"pickup_time,omitempty"`
}

// OrderItem — строка заказа. UnitPrice — цена позиции меню на момент заказа,
// поэтому исторические заказы не меняются при изменении цен в меню.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	MenuItemID   int64           `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name"` // заполняется через JOIN с menu_items
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}
