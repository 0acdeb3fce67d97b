package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/bakery/internal/model"
	"github.com/iurnickita/bakery/internal/store/config"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(config.Config{DBDsn: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testOrder(id string, customer string, createdAt time.Time) model.Order {
	var order model.Order
	order.ID = id
	order.Number = "JCB-250615-0231"
	order.Data.Customer = customer
	order.Data.Contact = model.Contact{Name: "Wanjiku", Phone: "254712345678"}
	order.Data.Total = decimal.RequireFromString("45.99")
	order.Data.PaymentStatus = "NotStarted"
	order.Data.CreatedAt = createdAt
	return order
}

func TestStoreOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	createdAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	// Создание заказа
	order := testOrder("o1", "c1", createdAt)
	require.NoError(t, store.OrderPost(ctx, order))
	require.ErrorIs(t, store.OrderPost(ctx, order), ErrAlreadyExists)

	// Чтение заказа
	dbOrder, err := store.OrderGet(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, order.Number, dbOrder.Number)
	require.Equal(t, order.Data.Contact, dbOrder.Data.Contact)
	require.True(t, order.Data.Total.Equal(dbOrder.Data.Total))
	require.Equal(t, "NotStarted", dbOrder.Data.PaymentStatus)
	require.True(t, createdAt.Equal(dbOrder.Data.CreatedAt))

	// Обновление статуса оплаты
	require.NoError(t, store.OrderPaymentPut(ctx, "o1", "Completed"))
	dbOrder, err = store.OrderGet(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, "Completed", dbOrder.Data.PaymentStatus)
	require.False(t, dbOrder.Data.UpdatedAt.Before(createdAt))

	require.ErrorIs(t, store.OrderPaymentPut(ctx, "missing", "Completed"), ErrNoRows)
	_, err = store.OrderGet(ctx, "missing")
	require.ErrorIs(t, err, ErrNoRows)
}

func TestStoreOrderList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.OrderPost(ctx, testOrder("o1", "c1", base)))
	require.NoError(t, store.OrderPost(ctx, testOrder("o2", "c1", base.Add(time.Hour))))
	require.NoError(t, store.OrderPost(ctx, testOrder("o3", "c2", base)))

	orders, err := store.OrderList(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "o2", orders[0].ID)
	require.Equal(t, "o1", orders[1].ID)

	orders, err = store.OrderList(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestRebindPlaceholders(t *testing.T) {
	pg := &store{database: sqlx.NewDb(nil, "pgx")}
	require.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", pg.database.Rebind("UPDATE t SET a = ? WHERE b = ?"))

	lite := &store{database: sqlx.NewDb(nil, "sqlite")}
	require.Equal(t, "SELECT ?", lite.database.Rebind("SELECT ?"))
}
