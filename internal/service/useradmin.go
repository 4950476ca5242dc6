package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// UserAdminService — управление учетными записями со стороны администратора.
type UserAdminService interface {
	CreateUser(ctx context.Context, username, password string, role models.Role, rollNumber *string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	// EnsureAdmin создаёт учетную запись администратора, если её ещё нет.
	// Вызывается при старте приложения, чтобы в системе всегда был администратор.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type userAdminService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewUserAdminService(log *slog.Logger, userRepo storage.UserStorage) UserAdminService {
	return &userAdminService{log: log, userRepo: userRepo}
}

func (s *userAdminService) CreateUser(ctx context.Context, username, password string, role models.Role, rollNumber *string) (*models.User, error) {
	const op = "service.UserAdminService.CreateUser"
	logger := s.log.With(slog.String("op", op), slog.String("username", username), slog.String("role", string(role)))
	logger.Info("creating user")

	if username == "" || password == "" || !role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := s.userRepo.CreateUser(ctx, &models.User{
		Username:   username,
		PassHash:   passHash,
		Role:       role,
		RollNumber: rollNumber,
	})
	if err != nil {
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}
	logger.Info("user created", slog.Int64("userID", user.ID))
	return user, nil
}

func (s *userAdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "service.UserAdminService.ListUsers"
	s.log.Info("listing users", slog.String("op", op))

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}
	return users, nil
}

func (s *userAdminService) EnsureAdmin(ctx context.Context, username, password string) error {
	const op = "service.UserAdminService.EnsureAdmin"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))

	_, err := s.userRepo.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	logger.Info("bootstrapping admin account")
	if _, err := s.CreateUser(ctx, username, password, models.RoleAdmin, nil); err != nil {
		// возможна гонка с параллельным стартом второго экземпляра
		if errors.Is(err, storage.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
