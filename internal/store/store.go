// Package store: журнал заказов, оформленных через витрину, и итогов их оплаты.
// Источником истины остаётся бэкенд; журнал нужен для истории покупателя и разбора инцидентов.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iurnickita/bakery/internal/model"
	"github.com/iurnickita/bakery/internal/store/config"
)

type Store interface {
	OrderPost(ctx context.Context, order model.Order) error
	OrderGet(ctx context.Context, orderID string) (model.Order, error)
	OrderPaymentPut(ctx context.Context, orderID string, paymentStatus string) error
	OrderList(ctx context.Context, customer string) ([]model.Order, error)
	Close() error
}

var (
	ErrNoRows        = errors.New("no rows")
	ErrAlreadyExists = errors.New("already exists")
)

type store struct {
	database *sqlx.DB
}

func NewStore(cfg config.Config) (Store, error) {
	postgres := strings.HasPrefix(cfg.DBDsn, "postgres://") || strings.HasPrefix(cfg.DBDsn, "postgresql://")

	driverName := "sqlite"
	if postgres {
		driverName = "pgx"
	}
	db, err := sqlx.Open(driverName, cfg.DBDsn)
	if err != nil {
		return nil, err
	}
	if !postgres {
		// у каждого соединения SQLite в памяти своя база
		db.SetMaxOpenConns(1)
	}

	// Журнал заказов.
	// Создается одна строка на заказ, после чего меняется статус оплаты
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS order_journal (" +
			" id VARCHAR (64) PRIMARY KEY," +
			" number VARCHAR (32) NOT NULL," +
			" customer VARCHAR (64) NOT NULL," +
			" contact_name VARCHAR (128) NOT NULL," +
			" contact_phone VARCHAR (32) NOT NULL," +
			" total VARCHAR (32) NOT NULL," +
			" payment_status VARCHAR (32) NOT NULL," +
			" created_at TIMESTAMP NOT NULL," +
			" updated_at TIMESTAMP NOT NULL" +
			" );")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &store{database: db}, nil
}

func (store *store) Close() error {
	return store.database.Close()
}

func (store *store) OrderPost(ctx context.Context, order model.Order) error {
	//Запись нового заказа
	_, err := store.database.ExecContext(ctx, store.database.Rebind(
		"INSERT INTO order_journal"+
			" (id, number, customer, contact_name, contact_phone, total, payment_status, created_at, updated_at)"+
			" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		order.ID,
		order.Number,
		order.Data.Customer,
		order.Data.Contact.Name,
		order.Data.Contact.Phone,
		order.Data.Total.String(),
		order.Data.PaymentStatus,
		order.Data.CreatedAt.UTC(),
		order.Data.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (store *store) OrderGet(ctx context.Context, orderID string) (model.Order, error) {
	row := store.database.QueryRowContext(ctx, store.database.Rebind(
		"SELECT id, number, customer, contact_name, contact_phone, total, payment_status, created_at, updated_at"+
			" FROM order_journal"+
			" WHERE id = ?"),
		orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, ErrNoRows
		}
		return model.Order{}, err
	}
	return order, nil
}

func (store *store) OrderPaymentPut(ctx context.Context, orderID string, paymentStatus string) error {
	//Обновление статуса оплаты
	res, err := store.database.ExecContext(ctx, store.database.Rebind(
		"UPDATE order_journal"+
			" SET payment_status = ?, updated_at = ?"+
			" WHERE id = ?"),
		paymentStatus,
		time.Now().UTC(),
		orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

func (store *store) OrderList(ctx context.Context, customer string) ([]model.Order, error) {
	//Получение заказов покупателя, новые первыми
	rows, err := store.database.QueryContext(ctx, store.database.Rebind(
		"SELECT id, number, customer, contact_name, contact_phone, total, payment_status, created_at, updated_at"+
			" FROM order_journal"+
			" WHERE customer = ?"+
			" ORDER BY created_at DESC"),
		customer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (model.Order, error) {
	var order model.Order
	var total string
	err := row.Scan(&order.ID,
		&order.Number,
		&order.Data.Customer,
		&order.Data.Contact.Name,
		&order.Data.Contact.Phone,
		&total,
		&order.Data.PaymentStatus,
		&order.Data.CreatedAt,
		&order.Data.UpdatedAt)
	if err != nil {
		return model.Order{}, err
	}
	order.Data.Total, err = decimal.NewFromString(total)
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}
