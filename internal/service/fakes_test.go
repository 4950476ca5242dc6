package service_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sort"

	"github.com/linemk/campus-canteen/internal/domain/models"
	"github.com/linemk/campus-canteen/internal/storage"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// fakeUserRepo — фиктивный репозиторий пользователей, ключ — логин.
type fakeUserRepo struct {
	users map[string]*models.User
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Username]; ok {
		return nil, storage.ErrUserExists
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// fakeMenuRepo — фиктивный репозиторий меню, ключ — id позиции.
type fakeMenuRepo struct {
	items  map[int64]*models.MenuItem
	nextID int64
}

var _ storage.MenuStorage = (*fakeMenuRepo)(nil)

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{items: make(map[int64]*models.MenuItem), nextID: 1}
}

func (f *fakeMenuRepo) GetAvailableItemTx(ctx context.Context, tx *sql.Tx, id int64) (*models.MenuItem, error) {
	item, ok := f.items[id]
	if !ok || !item.IsAvailable {
		return nil, storage.ErrMenuItemNotFound
	}
	return item, nil
}

func (f *fakeMenuRepo) GetItemByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, storage.ErrMenuItemNotFound
	}
	return item, nil
}

func (f *fakeMenuRepo) ListAvailableItems(ctx context.Context) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	for _, item := range f.items {
		if item.IsAvailable {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (f *fakeMenuRepo) ListItems(ctx context.Context) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	for _, item := range f.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (f *fakeMenuRepo) CreateItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	item.ID = f.nextID
	f.nextID++
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeMenuRepo) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return storage.ErrMenuItemNotFound
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeMenuRepo) DeleteItem(ctx context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return storage.ErrMenuItemNotFound
	}
	delete(f.items, id)
	return nil
}

// fakeOrderRepo — фиктивный репозиторий заказов.
// failTakenTimes эмулирует коллизию номера заказа: первые N вставок
// завершаются ErrOrderNumberTaken.
type fakeOrderRepo struct {
	orders           map[int64]*models.Order
	nextID           int64
	failTakenTimes   int
	attemptedNumbers []string
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order), nextID: 1}
}

func (f *fakeOrderRepo) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	f.attemptedNumbers = append(f.attemptedNumbers, order.OrderNumber)
	if f.failTakenTimes > 0 {
		f.failTakenTimes--
		return 0, storage.ErrOrderNumberTaken
	}
	order.ID = f.nextID
	f.nextID++
	f.orders[order.ID] = order
	return order.ID, nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) ListOrdersByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	var orders []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context, status models.Status) ([]*models.Order, error) {
	var orders []*models.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (f *fakeOrderRepo) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	return f.GetOrderByID(ctx, id)
}

func (f *fakeOrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.Status) error {
	order, ok := f.orders[id]
	if !ok {
		return storage.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

// fakeOrderItemRepo — фиктивный репозиторий строк заказа, ключ — id заказа.
type fakeOrderItemRepo struct {
	items map[int64][]*models.OrderItem
}

var _ storage.OrderItemStorage = (*fakeOrderItemRepo)(nil)

func newFakeOrderItemRepo() *fakeOrderItemRepo {
	return &fakeOrderItemRepo{items: make(map[int64][]*models.OrderItem)}
}

func (f *fakeOrderItemRepo) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	f.items[item.OrderID] = append(f.items[item.OrderID], item)
	return nil
}

func (f *fakeOrderItemRepo) GetItemsByOrderID(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	return f.items[orderID], nil
}

// fakeHistoryRepo — фиктивный журнал смен статуса.
type fakeHistoryRepo struct {
	recs []*models.OrderStatusHistory
}

var _ storage.StatusHistoryStorage = (*fakeHistoryRepo)(nil)

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (f *fakeHistoryRepo) AppendTx(ctx context.Context, tx *sql.Tx, rec *models.OrderStatusHistory) error {
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeHistoryRepo) GetByOrderID(ctx context.Context, orderID int64) ([]*models.OrderStatusHistory, error) {
	var recs []*models.OrderStatusHistory
	for _, rec := range f.recs {
		if rec.OrderID == orderID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
