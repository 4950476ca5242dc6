package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/campus-canteen/internal/app/handlers"
	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/security/authmw"
	"github.com/linemk/campus-canteen/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	token string
	role  models.Role
	err   error
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (string, models.Role, error) {
	return f.token, f.role, f.err
}

// fakePlacementService — фиктивная реализация размещения заказа.
type fakePlacementService struct {
	orderID     int64
	orderNumber string
	err         error
	gotUserID   int64
	gotCart     service.Cart
}

func (f *fakePlacementService) PlaceOrder(ctx context.Context, userID int64, cart service.Cart) (int64, string, error) {
	f.gotUserID = userID
	f.gotCart = cart
	return f.orderID, f.orderNumber, f.err
}

// fakeStatusService — фиктивная реализация перехода статуса.
type fakeStatusService struct {
	err        error
	gotOrderID int64
	gotTarget  models.Status
	gotActorID int64
}

func (f *fakeStatusService) Advance(ctx context.Context, orderID int64, target models.Status, actorID int64) error {
	f.gotOrderID = orderID
	f.gotTarget = target
	f.gotActorID = actorID
	return f.err
}

// fakeOrderQueryService — фиктивная реализация запросов заказов.
type fakeOrderQueryService struct {
	details     *service.OrderDetails
	conf        *service.Confirmation
	history     []*models.Order
	queue       []*models.Order
	sellerView  *service.SellerOrderDetails
	err         error
	gotStatus   string
}

func (f *fakeOrderQueryService) StudentOrder(ctx context.Context, userID, orderID int64) (*service.OrderDetails, error) {
	return f.details, f.err
}

func (f *fakeOrderQueryService) Confirmation(ctx context.Context, userID, orderID int64) (*service.Confirmation, error) {
	return f.conf, f.err
}

func (f *fakeOrderQueryService) StudentHistory(ctx context.Context, userID int64) ([]*models.Order, error) {
	return f.history, f.err
}

func (f *fakeOrderQueryService) SellerQueue(ctx context.Context, statusFilter string) ([]*models.Order, error) {
	f.gotStatus = statusFilter
	return f.queue, f.err
}

func (f *fakeOrderQueryService) SellerDetail(ctx context.Context, orderID int64) (*service.SellerOrderDetails, error) {
	return f.sellerView, f.err
}

// fakeMenuService — фиктивная реализация меню.
type fakeMenuService struct {
	menu    []*service.CategoryMenu
	items   []*models.MenuItem
	created *models.MenuItem
	err     error
}

func (f *fakeMenuService) Available(ctx context.Context) ([]*service.CategoryMenu, error) {
	return f.menu, f.err
}

func (f *fakeMenuService) ListAll(ctx context.Context) ([]*models.MenuItem, error) {
	return f.items, f.err
}

func (f *fakeMenuService) Create(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = item
	item.ID = 1
	return item, nil
}

func (f *fakeMenuService) Update(ctx context.Context, item *models.MenuItem) error {
	return f.err
}

func (f *fakeMenuService) Delete(ctx context.Context, id int64) error {
	return f.err
}

// withUser кладет userID в контекст запроса, как это делает auth middleware.
func withUser(req *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(req.Context(), authmw.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestLoginHandler_Success(t *testing.T) {
	fakeSvc := &fakeAuthService{token: "test-token", role: models.RoleStudent}
	handler := handlers.LoginHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "rahul", "password": "password123"}`
	req := httptest.NewRequest("POST", "/login/", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.LoginResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "test-token", resp.Token)
	assert.Equal(t, models.RoleStudent, resp.Role)
	assert.Equal(t, "/student/menu/", resp.Redirect)
}

func TestLoginHandler_RedirectByRole(t *testing.T) {
	cases := []struct {
		role     models.Role
		redirect string
	}{
		{models.RoleStudent, "/student/menu/"},
		{models.RoleSeller, "/seller/orders/"},
		{models.RoleAdmin, "/api/admin/menu/"},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			fakeSvc := &fakeAuthService{token: "test-token", role: tc.role}
			handler := handlers.LoginHandler(testLogger(), fakeSvc)

			reqBody := `{"username": "someone", "password": "password123"}`
			req := httptest.NewRequest("POST", "/login/", bytes.NewBufferString(reqBody))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			var resp handlers.LoginResponse
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tc.redirect, resp.Redirect)
		})
	}
}

func TestLoginHandler_InvalidJSON(t *testing.T) {
	handler := handlers.LoginHandler(testLogger(), &fakeAuthService{})

	reqBody := `{"username": "rahul", "password":`
	req := httptest.NewRequest("POST", "/login/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginHandler_ShortPassword(t *testing.T) {
	handler := handlers.LoginHandler(testLogger(), &fakeAuthService{})

	reqBody := `{"username": "rahul", "password": "short"}`
	req := httptest.NewRequest("POST", "/login/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginHandler_AuthError(t *testing.T) {
	handler := handlers.LoginHandler(testLogger(), &fakeAuthService{err: assert.AnError})

	reqBody := `{"username": "rahul", "password": "password123"}`
	req := httptest.NewRequest("POST", "/login/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutHandler(t *testing.T) {
	handler := handlers.LogoutHandler(testLogger())

	req := httptest.NewRequest("GET", "/logout/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "/login/", resp["redirect"])
}

func TestLandingHandler_NoToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	handler := handlers.LandingHandler(testLogger())

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "/login/", resp["redirect"])
}

func TestCreateOrderHandler_Success(t *testing.T) {
	fakeSvc := &fakePlacementService{orderID: 7, orderNumber: "QX7RT2M9"}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"3": {"quantity": 2, "name": "Samosa"}}`
	req := httptest.NewRequest("POST", "/api/orders/create/", bytes.NewBufferString(reqBody))
	req = withUser(req, 42)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.CreateOrderResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.OrderID)
	assert.Equal(t, "QX7RT2M9", resp.OrderNumber)

	// корзина и пользователь дошли до сервиса без искажений
	assert.Equal(t, int64(42), fakeSvc.gotUserID)
	assert.Equal(t, 2, fakeSvc.gotCart["3"].Quantity)
}

func TestCreateOrderHandler_NoUserInContext(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakePlacementService{})

	req := httptest.NewRequest("POST", "/api/orders/create/", bytes.NewBufferString(`{}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateOrderHandler_ItemUnavailable(t *testing.T) {
	fakeSvc := &fakePlacementService{err: &service.ItemUnavailableError{Name: "Samosa"}}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"3": {"quantity": 2, "name": "Samosa"}}`
	req := httptest.NewRequest("POST", "/api/orders/create/", bytes.NewBufferString(reqBody))
	req = withUser(req, 42)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp handlers.ErrorResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "Samosa")
}

func TestCreateOrderHandler_EmptyCart(t *testing.T) {
	fakeSvc := &fakePlacementService{err: service.ErrInvalidInput}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("POST", "/api/orders/create/", bytes.NewBufferString(`{}`))
	req = withUser(req, 42)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// routeRequest прогоняет запрос через chi-роутер, чтобы URL-параметры заполнились.
func routeRequest(method, pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Method(method, pattern, handler)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestUpdateOrderStatusHandler_Success(t *testing.T) {
	fakeSvc := &fakeStatusService{}
	handler := handlers.UpdateOrderStatusHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("PUT", "/api/orders/7/status/preparing/", nil)
	req = withUser(req, 5)
	rr := routeRequest("PUT", "/api/orders/{id}/status/{new_status}/", handler, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(7), fakeSvc.gotOrderID)
	assert.Equal(t, models.StatusPreparing, fakeSvc.gotTarget)
	assert.Equal(t, int64(5), fakeSvc.gotActorID)

	var resp handlers.UpdateStatusResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.StatusPreparing, resp.NewStatus)
}

func TestUpdateOrderStatusHandler_IllegalTransition(t *testing.T) {
	fakeSvc := &fakeStatusService{err: service.ErrIllegalTransition}
	handler := handlers.UpdateOrderStatusHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("PUT", "/api/orders/7/status/completed/", nil)
	req = withUser(req, 5)
	rr := routeRequest("PUT", "/api/orders/{id}/status/{new_status}/", handler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateOrderStatusHandler_UnknownOrder(t *testing.T) {
	fakeSvc := &fakeStatusService{err: service.ErrUnknownOrder}
	handler := handlers.UpdateOrderStatusHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("PUT", "/api/orders/404/status/preparing/", nil)
	req = withUser(req, 5)
	rr := routeRequest("PUT", "/api/orders/{id}/status/{new_status}/", handler, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateOrderStatusHandler_BadOrderID(t *testing.T) {
	handler := handlers.UpdateOrderStatusHandler(testLogger(), &fakeStatusService{})

	req := httptest.NewRequest("PUT", "/api/orders/abc/status/preparing/", nil)
	req = withUser(req, 5)
	rr := routeRequest("PUT", "/api/orders/{id}/status/{new_status}/", handler, req)

	// нечисловой идентификатор неотличим от несуществующего заказа
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOrderConfirmationHandler_Success(t *testing.T) {
	created := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
	fakeSvc := &fakeOrderQueryService{conf: &service.Confirmation{
		Order: &models.Order{
			ID:          7,
			OrderNumber: "QX7RT2M9",
			Status:      models.StatusPending,
			CreatedAt:   created,
		},
		PickupTime: created.Add(15 * time.Minute),
	}}
	handler := handlers.OrderConfirmationHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/student/order-confirmation/7", nil)
	req = withUser(req, 42)
	rr := routeRequest("GET", "/student/order-confirmation/{id}", handler, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Order struct {
			OrderNumber string `json:"order_number"`
		} `json:"order"`
		PickupTime time.Time `json:"pickup_time"`
	}
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "QX7RT2M9", resp.Order.OrderNumber)
	assert.Equal(t, created.Add(15*time.Minute), resp.PickupTime)
}

func TestOrderTrackingHandler_NotOwner(t *testing.T) {
	fakeSvc := &fakeOrderQueryService{err: service.ErrUnknownOrder}
	handler := handlers.OrderTrackingHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/student/order-tracking/7", nil)
	req = withUser(req, 99)
	rr := routeRequest("GET", "/student/order-tracking/{id}", handler, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSellerOrdersHandler_PassesFilter(t *testing.T) {
	fakeSvc := &fakeOrderQueryService{queue: []*models.Order{
		{ID: 7, Status: models.StatusReady, OrderNumber: "QX7RT2M9"},
	}}
	handler := handlers.SellerOrdersHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/seller/orders/?status=ready", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", fakeSvc.gotStatus)
}

func TestSellerOrdersHandler_InvalidFilter(t *testing.T) {
	fakeSvc := &fakeOrderQueryService{err: service.ErrInvalidStatus}
	handler := handlers.SellerOrdersHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/seller/orders/?status=shipped", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStudentMenuHandler(t *testing.T) {
	fakeSvc := &fakeMenuService{menu: []*service.CategoryMenu{
		{Category: models.CategorySnacks, Items: []*models.MenuItem{
			{ID: 3, Name: "Samosa", Price: decimal.RequireFromString("10.00"), IsAvailable: true},
		}},
	}}
	handler := handlers.StudentMenuHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/student/menu/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.MenuResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Menu, 1)
	assert.Equal(t, models.CategorySnacks, resp.Menu[0].Category)
}

func TestAdminCreateMenuItemHandler_Success(t *testing.T) {
	fakeSvc := &fakeMenuService{}
	handler := handlers.AdminCreateMenuItemHandler(testLogger(), fakeSvc)

	reqBody := `{"name": "Filter Coffee", "category": "beverages", "price": "12.00", "is_available": true}`
	req := httptest.NewRequest("POST", "/api/admin/menu/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Filter Coffee", fakeSvc.created.Name)
	assert.Equal(t, models.CategoryBeverages, fakeSvc.created.Category)
}

func TestAdminCreateMenuItemHandler_BadCategory(t *testing.T) {
	handler := handlers.AdminCreateMenuItemHandler(testLogger(), &fakeMenuService{})

	reqBody := `{"name": "Cake", "category": "desserts", "price": "30.00"}`
	req := httptest.NewRequest("POST", "/api/admin/menu/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
