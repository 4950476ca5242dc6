package models

import "time"

// OrderStatusHistory — запись аудита смены статуса, только добавляется, никогда не изменяется.
// ChangedBy может быть nil, если учетная запись изменившего была удалена.
type OrderStatusHistory struct {
	ID             int64     `json:"id"`
	OrderID        int64     `json:"order_id"`
	PreviousStatus Status    `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	ChangedBy      *int64    `json:"changed_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
