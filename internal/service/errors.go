package service

import (
	"errors"
	"fmt"
)

// Доменные ошибки. На границе HTTP они превращаются в структурированный JSON-ответ,
// наружу в виде паники ничего не уходит.
var (
	ErrInvalidInput       = errors.New("invalid or empty cart")
	ErrEmptyOrder         = errors.New("cart is empty or contains nothing billable")
	ErrUnknownOrder       = errors.New("order not found")
	ErrInvalidStatus      = errors.New("invalid status provided")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ItemUnavailableError возвращается при попытке заказать отсутствующую или недоступную позицию.
// Несёт имя позиции, чтобы назвать её в ответе клиенту.
type ItemUnavailableError struct {
	Name string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("item %s is no longer available", e.Name)
}
