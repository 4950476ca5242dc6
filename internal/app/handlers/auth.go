package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/security/authmw"
	"github.com/linemk/campus-canteen/internal/service"
)

// LoginRequest представляет структуру запроса для аутентификации с тегами валидации
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse представляет структуру ответа с JWT-токеном и redirect по роли
type LoginResponse struct {
	Token    string      `json:"token"`
	Role     models.Role `json:"role"`
	Redirect string      `json:"redirect"`
}

var validate = validator.New()

// redirectForRole возвращает стартовую страницу для роли.
func redirectForRole(role models.Role) string {
	switch role {
	case models.RoleStudent:
		return "/student/menu/"
	case models.RoleSeller:
		return "/seller/orders/"
	default: // admin
		return "/api/admin/menu/"
	}
}

// LoginHandler – HTTP-обработчик для аутентификации, принимает логгер и экземпляр AuthService
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "validation error")
			return
		}

		token, role, err := authService.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			logger.Error("login failed", slog.Any("error", err))
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token:    token,
			Role:     role,
			Redirect: redirectForRole(role),
		})
	}
}

// LogoutHandler завершает сессию. Токены не хранятся на сервере,
// клиент просто перестает использовать свой, поэтому ответ — редирект на вход.
func LogoutHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"redirect": "/login/",
		})
	}
}

// LandingHandler — стартовая страница: аутентифицированного пользователя
// отправляет на его стартовый экран, остальных — на вход. Токен не обязателен.
func LandingHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role, err := authmw.ParseRequest(r)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]string{"redirect": "/login/"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"redirect": redirectForRole(role)})
	}
}
