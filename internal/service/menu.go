package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/storage"
)

// MenuService отдает меню студентам и дает администратору управлять позициями.
type MenuService interface {
	// Available возвращает доступные позиции, сгруппированные по категориям.
	Available(ctx context.Context) ([]*CategoryMenu, error)
	ListAll(ctx context.Context) ([]*models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id int64) error
}

// CategoryMenu — категория и её доступные позиции.
type CategoryMenu struct {
	Category models.Category    `json:"category"`
	Items    []*models.MenuItem `json:"items"`
}

type menuService struct {
	log      *slog.Logger
	menuRepo storage.MenuStorage
}

func NewMenuService(log *slog.Logger, menuRepo storage.MenuStorage) MenuService {
	return &menuService{log: log, menuRepo: menuRepo}
}

// порядок категорий на витрине
var categoryOrder = []models.Category{
	models.CategorySnacks,
	models.CategoryMeals,
	models.CategoryBeverages,
	models.CategorySpecials,
}

func (s *menuService) Available(ctx context.Context) ([]*CategoryMenu, error) {
	const op = "service.MenuService.Available"
	s.log.Info("getting available menu", slog.String("op", op))

	items, err := s.menuRepo.ListAvailableItems(ctx)
	if err != nil {
		s.log.Error("failed to list menu items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list menu items: %w", op, err)
	}

	byCategory := make(map[models.Category][]*models.MenuItem)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	var menu []*CategoryMenu
	for _, cat := range categoryOrder {
		if catItems, ok := byCategory[cat]; ok {
			menu = append(menu, &CategoryMenu{Category: cat, Items: catItems})
		}
	}
	return menu, nil
}

func (s *menuService) ListAll(ctx context.Context) ([]*models.MenuItem, error) {
	const op = "service.MenuService.ListAll"
	s.log.Info("listing all menu items", slog.String("op", op))

	items, err := s.menuRepo.ListItems(ctx)
	if err != nil {
		s.log.Error("failed to list menu items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list menu items: %w", op, err)
	}
	return items, nil
}

func validateMenuItem(item *models.MenuItem) error {
	if item.Name == "" || !item.Category.Valid() || !item.Price.IsPositive() {
		return ErrInvalidInput
	}
	return nil
}

func (s *menuService) Create(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	const op = "service.MenuService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("name", item.Name))
	logger.Info("creating menu item")

	if err := validateMenuItem(item); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.menuRepo.CreateItem(ctx, item)
	if err != nil {
		logger.Error("failed to create menu item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create menu item: %w", op, err)
	}
	logger.Info("menu item created", slog.Int64("id", created.ID))
	return created, nil
}

func (s *menuService) Update(ctx context.Context, item *models.MenuItem) error {
	const op = "service.MenuService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("id", item.ID))
	logger.Info("updating menu item")

	if err := validateMenuItem(item); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.menuRepo.UpdateItem(ctx, item); err != nil {
		logger.Error("failed to update menu item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update menu item: %w", op, err)
	}
	return nil
}

func (s *menuService) Delete(ctx context.Context, id int64) error {
	const op = "service.MenuService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("id", id))
	logger.Info("deleting menu item")

	if err := s.menuRepo.DeleteItem(ctx, id); err != nil {
		logger.Error("failed to delete menu item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete menu item: %w", op, err)
	}
	return nil
}
