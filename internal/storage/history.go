package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/campus-canteen/internal/domain/models"
)

// StatusHistoryStorage описывает методы для журнала смен статуса.
// Журнал только пополняется, записи никогда не изменяются и не удаляются.
type StatusHistoryStorage interface {
	// AppendTx добавляет запись аудита в рамках транзакции перехода статуса.
	AppendTx(ctx context.Context, tx *sql.Tx, rec *models.OrderStatusHistory) error
	GetByOrderID(ctx context.Context, orderID int64) ([]*models.OrderStatusHistory, error)
}

type statusHistoryRepository struct {
	db *sql.DB
}

func NewStatusHistoryRepository(db *sql.DB) StatusHistoryStorage {
	return &statusHistoryRepository{db: db}
}

func (r *statusHistoryRepository) AppendTx(ctx context.Context, tx *sql.Tx, rec *models.OrderStatusHistory) error {
	query := `INSERT INTO order_status_history (order_id, previous_status, new_status, changed_by, created_at)
	          VALUES ($1, $2, $3, $4, NOW())`
	_, err := tx.ExecContext(ctx, query, rec.OrderID, rec.PreviousStatus, rec.NewStatus, rec.ChangedBy)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

func (r *statusHistoryRepository) GetByOrderID(ctx context.Context, orderID int64) ([]*models.OrderStatusHistory, error) {
	query := `SELECT id, order_id, previous_status, new_status, changed_by, created_at
	          FROM order_status_history WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.OrderStatusHistory
	for rows.Next() {
		rec := &models.OrderStatusHistory{}
		if err := rows.Scan(&rec.ID, &rec.OrderID, &rec.PreviousStatus, &rec.NewStatus,
			&rec.ChangedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
