package main

import (
	"context"

	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/campus-canteen/internal/app"
	"github.com/linemk/campus-canteen/internal/app/handlers"
	"github.com/linemk/campus-canteen/internal/config"
	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/lib/logger"
	"github.com/linemk/campus-canteen/internal/lib/logger/handlers/urllog"
	"github.com/linemk/campus-canteen/internal/security/authmw"
	"github.com/linemk/campus-canteen/internal/service"
	"github.com/linemk/campus-canteen/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	menuRepo := storage.NewMenuRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	orderItemRepo := storage.NewOrderItemRepository(application.DB)
	historyRepo := storage.NewStatusHistoryRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	menuService := service.NewMenuService(application.Logger, menuRepo)
	placementService := service.NewPlacementService(application.Logger, application.DB, menuRepo, orderRepo, orderItemRepo)
	statusService := service.NewStatusService(application.Logger, application.DB, orderRepo, historyRepo)
	orderQueryService := service.NewOrderQueryService(application.Logger, userRepo, orderRepo, orderItemRepo)
	userAdminService := service.NewUserAdminService(application.Logger, userRepo)

	// стартовая учетная запись администратора, если задан ADMIN_PASSWORD
	if cfg.Bootstrap.AdminPassword != "" {
		if err := userAdminService.EnsureAdmin(context.Background(),
			cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
			log.Error("failed to bootstrap admin", slog.Any("error", err))
			panic(errors.Wrap(err, "failed to bootstrap admin"))
		}
	}

	// публичные эндпоинты
	router.Get("/", handlers.LandingHandler(application.Logger))
	router.Post("/login/", handlers.LoginHandler(application.Logger, authService))
	router.Get("/logout/", handlers.LogoutHandler(application.Logger))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"alive": true}`)
	})

	router.Group(func(r chi.Router) {
		r.Use(authmw.NewAuthMiddleware())

		// экраны студента
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(models.RoleStudent))
			r.Get("/student/menu/", handlers.StudentMenuHandler(application.Logger, menuService))
			r.Get("/student/order-confirmation/{id}", handlers.OrderConfirmationHandler(application.Logger, orderQueryService))
			r.Get("/student/order-tracking/{id}", handlers.OrderTrackingHandler(application.Logger, orderQueryService))
			r.Get("/student/orders/", handlers.StudentOrdersHandler(application.Logger, orderQueryService))
			r.Post("/api/orders/create/", handlers.CreateOrderHandler(application.Logger, placementService))
		})

		// экраны продавца
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(models.RoleSeller))
			r.Get("/seller/orders/", handlers.SellerOrdersHandler(application.Logger, orderQueryService))
			r.Get("/seller/orders/{id}/", handlers.SellerOrderDetailHandler(application.Logger, orderQueryService))
			r.Put("/api/orders/{id}/status/{new_status}/", handlers.UpdateOrderStatusHandler(application.Logger, statusService))
		})

		// административные эндпоинты
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(models.RoleAdmin))
			r.Get("/api/admin/menu/", handlers.AdminListMenuHandler(application.Logger, menuService))
			r.Post("/api/admin/menu/", handlers.AdminCreateMenuItemHandler(application.Logger, menuService))
			r.Put("/api/admin/menu/{id}/", handlers.AdminUpdateMenuItemHandler(application.Logger, menuService))
			r.Delete("/api/admin/menu/{id}/", handlers.AdminDeleteMenuItemHandler(application.Logger, menuService))
			r.Get("/api/admin/users/", handlers.AdminListUsersHandler(application.Logger, userAdminService))
			r.Post("/api/admin/users/", handlers.AdminCreateUserHandler(application.Logger, userAdminService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
