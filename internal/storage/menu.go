package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/campus-canteen/internal/domain/models"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

// MenuStorage описывает методы для работы с позициями меню.
type MenuStorage interface {
	// GetAvailableItemTx ищет доступную к заказу позицию внутри транзакции размещения заказа.
	GetAvailableItemTx(ctx context.Context, tx *sql.Tx, id int64) (*models.MenuItem, error)
	ListAvailableItems(ctx context.Context) ([]*models.MenuItem, error)
	GetItemByID(ctx context.Context, id int64) (*models.MenuItem, error)
	ListItems(ctx context.Context) ([]*models.MenuItem, error)
	CreateItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, item *models.MenuItem) error
	DeleteItem(ctx context.Context, id int64) error
}

type menuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) MenuStorage {
	return &menuRepository{db: db}
}

const menuColumns = "id, name, description, category, price, image_path, is_available"

func scanMenuItem(row *sql.Row) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Category,
		&item.Price, &item.ImagePath, &item.IsAvailable); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// GetAvailableItemTx возвращает позицию только если она существует и доступна к заказу.
func (r *menuRepository) GetAvailableItemTx(ctx context.Context, tx *sql.Tx, id int64) (*models.MenuItem, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE id = $1 AND is_available = TRUE", id)
	return scanMenuItem(row)
}

func (r *menuRepository) GetItemByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE id = $1", id)
	return scanMenuItem(row)
}

func (r *menuRepository) ListAvailableItems(ctx context.Context) ([]*models.MenuItem, error) {
	return r.list(ctx, "SELECT "+menuColumns+" FROM menu_items WHERE is_available = TRUE ORDER BY category, name")
}

func (r *menuRepository) ListItems(ctx context.Context) ([]*models.MenuItem, error) {
	return r.list(ctx, "SELECT "+menuColumns+" FROM menu_items ORDER BY category, name")
}

func (r *menuRepository) list(ctx context.Context, query string) ([]*models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		item := &models.MenuItem{}
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Category,
			&item.Price, &item.ImagePath, &item.IsAvailable); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuRepository) CreateItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO menu_items (name, description, category, price, image_path, is_available)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		item.Name, item.Description, item.Category, item.Price, item.ImagePath, item.IsAvailable,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	item.ID = id
	return item, nil
}

func (r *menuRepository) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET name = $1, description = $2, category = $3, price = $4,
		 image_path = $5, is_available = $6 WHERE id = $7`,
		item.Name, item.Description, item.Category, item.Price, item.ImagePath, item.IsAvailable, item.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *menuRepository) DeleteItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}
