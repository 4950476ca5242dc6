package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/storage"
)

// StatusService продвигает заказ по строго линейной цепочке статусов
// pending -> preparing -> ready -> completed и пишет каждую смену в журнал аудита.
type StatusService interface {
	Advance(ctx context.Context, orderID int64, target models.Status, actorID int64) error
}

type statusService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	historyRepo storage.StatusHistoryStorage
}

func NewStatusService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage,
	historyRepo storage.StatusHistoryStorage) StatusService {
	return &statusService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
	}
}

// transitionPredecessor задает единственный допустимый предыдущий статус для каждого целевого.
// cancelled распознается как значение, но перехода в него нет ни из одного состояния.
var transitionPredecessor = map[models.Status]models.Status{
	models.StatusPreparing: models.StatusPending,
	models.StatusReady:     models.StatusPreparing,
	models.StatusCompleted: models.StatusReady,
}

// Advance выполняет переход статуса. Чтение текущего статуса, проверка предусловия,
// запись нового статуса и добавление записи аудита выполняются в одной транзакции
// с блокировкой строки заказа, поэтому два одновременных перехода по одному заказу
// не могут оба пройти проверку.
func (s *statusService) Advance(ctx context.Context, orderID int64, target models.Status, actorID int64) error {
	const op = "service.StatusService.Advance"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("orderID", orderID),
		slog.String("target", string(target)),
		slog.Int64("actorID", actorID),
	)
	logger.Info("starting status transition")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
	}

	order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID)
	if err != nil {
		rollback()
		if errors.Is(err, storage.ErrOrderNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUnknownOrder)
		}
		logger.Error("failed to lock order", slog.Any("error", err))
		return fmt.Errorf("%s: failed to lock order: %w", op, err)
	}

	if !target.Valid() {
		rollback()
		return fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	previous := order.Status

	required, ok := transitionPredecessor[target]
	if !ok || previous != required {
		rollback()
		logger.Warn("illegal status transition",
			slog.String("current", string(previous)))
		return fmt.Errorf("%s: %w", op, ErrIllegalTransition)
	}

	if err := s.orderRepo.UpdateStatusTx(ctx, tx, orderID, target); err != nil {
		rollback()
		logger.Error("failed to update status", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update status: %w", op, err)
	}

	rec := &models.OrderStatusHistory{
		OrderID:        orderID,
		PreviousStatus: previous,
		NewStatus:      target,
		ChangedBy:      &actorID,
	}
	if err := s.historyRepo.AppendTx(ctx, tx, rec); err != nil {
		rollback()
		logger.Error("failed to append status history", slog.Any("error", err))
		return fmt.Errorf("%s: failed to append status history: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("status transition completed",
		slog.String("previous", string(previous)))
	return nil
}
