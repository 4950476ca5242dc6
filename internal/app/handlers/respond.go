package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linemk/campus-canteen/internal/service"
	"github.com/linemk/campus-canteen/internal/storage"
)

// ErrorResponse — структура JSON-ответа при ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError превращает доменную ошибку в структурированный JSON-ответ.
// Всё, что не входит в таксономию, считается внутренней ошибкой.
func writeDomainError(w http.ResponseWriter, err error) {
	var unavailable *service.ItemUnavailableError
	switch {
	case errors.As(err, &unavailable):
		writeError(w, http.StatusNotFound, unavailable.Error())
	case errors.Is(err, service.ErrUnknownOrder),
		errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, storage.ErrMenuItemNotFound),
		errors.Is(err, storage.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrIllegalTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
