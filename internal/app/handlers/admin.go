package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/service"
	"github.com/shopspring/decimal"
)

// MenuItemRequest — тело запроса на создание/изменение позиции меню.
type MenuItemRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required,oneof=snacks meals beverages specials"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	ImagePath   *string         `json:"image_path,omitempty"`
	IsAvailable bool            `json:"is_available"`
}

// CreateUserRequest — тело запроса на создание учетной записи администратором.
type CreateUserRequest struct {
	Username   string  `json:"username" validate:"required"`
	Password   string  `json:"password" validate:"required,min=8"`
	Role       string  `json:"role" validate:"required,oneof=student seller admin"`
	RollNumber *string `json:"roll_number,omitempty"`
}

// UserResponse — учетная запись без хэша пароля.
type UserResponse struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	RollNumber *string     `json:"roll_number,omitempty"`
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// AdminCreateMenuItemHandler обрабатывает запрос POST /api/admin/menu/
func AdminCreateMenuItemHandler(log *slog.Logger, menuService service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminCreateMenuItemHandler"
		logger := log.With(slog.String("op", op))

		var req MenuItemRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		item, err := menuService.Create(r.Context(), &models.MenuItem{
			Name:        req.Name,
			Description: req.Description,
			Category:    models.Category(req.Category),
			Price:       req.Price,
			ImagePath:   req.ImagePath,
			IsAvailable: req.IsAvailable,
		})
		if err != nil {
			logger.Error("failed to create menu item", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

// AdminUpdateMenuItemHandler обрабатывает запрос PUT /api/admin/menu/{id}/
// Через него же переключается доступность позиции.
func AdminUpdateMenuItemHandler(log *slog.Logger, menuService service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminUpdateMenuItemHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}

		var req MenuItemRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		err = menuService.Update(r.Context(), &models.MenuItem{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Category:    models.Category(req.Category),
			Price:       req.Price,
			ImagePath:   req.ImagePath,
			IsAvailable: req.IsAvailable,
		})
		if err != nil {
			logger.Error("failed to update menu item", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// AdminDeleteMenuItemHandler обрабатывает запрос DELETE /api/admin/menu/{id}/
func AdminDeleteMenuItemHandler(log *slog.Logger, menuService service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminDeleteMenuItemHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}

		if err := menuService.Delete(r.Context(), id); err != nil {
			logger.Error("failed to delete menu item", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// AdminListMenuHandler обрабатывает запрос GET /api/admin/menu/ — все позиции, включая недоступные.
func AdminListMenuHandler(log *slog.Logger, menuService service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListMenuHandler"
		logger := log.With(slog.String("op", op))

		items, err := menuService.ListAll(r.Context())
		if err != nil {
			logger.Error("failed to list menu items", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// AdminCreateUserHandler обрабатывает запрос POST /api/admin/users/
func AdminCreateUserHandler(log *slog.Logger, userAdmin service.UserAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminCreateUserHandler"
		logger := log.With(slog.String("op", op))

		var req CreateUserRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		user, err := userAdmin.CreateUser(r.Context(), req.Username, req.Password,
			models.Role(req.Role), req.RollNumber)
		if err != nil {
			logger.Error("failed to create user", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, UserResponse{
			ID:         user.ID,
			Username:   user.Username,
			Role:       user.Role,
			RollNumber: user.RollNumber,
		})
	}
}

// AdminListUsersHandler обрабатывает запрос GET /api/admin/users/
func AdminListUsersHandler(log *slog.Logger, userAdmin service.UserAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListUsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := userAdmin.ListUsers(r.Context())
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}

		resp := make([]UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, UserResponse{
				ID:         u.ID,
				Username:   u.Username,
				Role:       u.Role,
				RollNumber: u.RollNumber,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": resp})
	}
}
