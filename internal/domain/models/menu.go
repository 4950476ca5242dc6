package models

import "github.com/shopspring/decimal"

// Category — категория блюда в меню
type Category string

const (
	CategorySnacks    Category = "snacks"
	CategoryMeals     Category = "meals"
	CategoryBeverages Category = "beverages"
	CategorySpecials  Category = "specials"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySnacks, CategoryMeals, CategoryBeverages, CategorySpecials:
		return true
	}
	return false
}

// MenuItem представляет позицию меню столовой.
// Заказать можно только позицию с IsAvailable = true.
type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImagePath   *string         `json:"image_path,omitempty"`
	IsAvailable bool            `json:"is_available"`
}
