package authmw

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/campus-canteen/internal/domain/models"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	RoleKey   contextKey = "role"
)

var (
	ErrNoToken      = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// ParseRequest извлекает и проверяет bearer-токен запроса, возвращая userID и роль из claims.
// Используется и middleware, и landing-страницей, которой токен не обязателен.
func ParseRequest(r *http.Request) (int64, models.Role, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return 0, "", errors.New("JWT_SECRET is not set")
	}

	// Формат заголовка: "Bearer <token>"
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, "", ErrNoToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, "", ErrInvalidToken
	}
	tokenStr := parts[1]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidToken
	}

	roleStr, ok := claims["role"].(string)
	if !ok || !models.Role(roleStr).Valid() {
		return 0, "", ErrInvalidToken
	}

	return userID, models.Role(roleStr), nil
}

// NewAuthMiddleware создаёт middleware для проверки JWT, секрет берётся из переменной окружения.
// В контекст запроса кладутся userID и роль из claims.
func NewAuthMiddleware() func(http.Handler) http.Handler {
	if os.Getenv("JWT_SECRET") == "" {
		panic("JWT_SECRET is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, role, err := ParseRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает запрос дальше только при совпадении роли из токена.
// Проверка выполняется один раз на границе, до вызова доменной логики.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	allowedSet := make(map[models.Role]bool, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !allowedSet[role] {
				http.Error(w, "forbidden: insufficient role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromContext извлекает userID из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// RoleFromContext извлекает роль из контекста.
func RoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(RoleKey).(models.Role)
	return role, ok
}
