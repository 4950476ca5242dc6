package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/campus-canteen/internal/service"
)

// MenuResponse — доступное меню, сгруппированное по категориям.
type MenuResponse struct {
	Menu []*service.CategoryMenu `json:"menu"`
}

// StudentMenuHandler обрабатывает запрос GET /student/menu/
func StudentMenuHandler(log *slog.Logger, menuService service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.StudentMenuHandler"
		logger := log.With(slog.String("op", op))

		menu, err := menuService.Available(r.Context())
		if err != nil {
			logger.Error("failed to get menu", slog.Any("error", err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MenuResponse{Menu: menu})
	}
}
