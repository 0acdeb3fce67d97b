package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/backend"
	"github.com/iurnickita/bakery/internal/catalog"
	"github.com/iurnickita/bakery/internal/model"
	"github.com/iurnickita/bakery/internal/ordernumber"
	"github.com/iurnickita/bakery/internal/payment"
	"github.com/iurnickita/bakery/internal/phone"
	"github.com/iurnickita/bakery/internal/service/config"
	"github.com/iurnickita/bakery/internal/store"
)

type Service interface {
	PostOrder(ctx context.Context, customer string, form OrderForm) (model.Order, error)
	GetOrders(ctx context.Context, customer string) ([]model.Order, error)

	StartPayment(ctx context.Context, customer string, orderID string, phone string) error
	PaymentStatus(ctx context.Context, customer string, orderID string) (payment.Attempt, error)
	CancelPayment(ctx context.Context, customer string, orderID string) error
	ResetPayment(ctx context.Context, customer string, orderID string) error

	Products(ctx context.Context, category string) ([]model.Product, error)
	Product(ctx context.Context, productID string) (model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)

	Admin() Admin
}

// Данные формы заказа
type OrderForm struct {
	Contact  model.Contact
	Items    []model.OrderItem
	Delivery model.Delivery
}

var (
	ErrInsufficientData    = errors.New("insufficient data")
	ErrUnprocessableEntity = errors.New("unprocessable entity")
	ErrNotFound            = errors.New("order not found")
)

type service struct {
	cfg      config.Config
	store    store.Store
	backend  backend.Client
	catalog  catalog.Catalog
	payments *payment.Manager
	numbers  *ordernumber.Generator
	zaplog   *zap.Logger
}

func NewService(cfg config.Config,
	store store.Store,
	client backend.Client,
	catalog catalog.Catalog,
	payments *payment.Manager,
	zaplog *zap.Logger) Service {

	service := service{
		cfg:      cfg,
		store:    store,
		backend:  client,
		catalog:  catalog,
		payments: payments,
		numbers:  ordernumber.NewGenerator(cfg.OrderPrefix),
		zaplog:   zaplog,
	}
	payments.OnChange(service.journalPayment)

	return &service
}

func (service *service) PostOrder(ctx context.Context, customer string, form OrderForm) (model.Order, error) {
	if err := validateOrderForm(customer, &form); err != nil {
		return model.Order{}, err
	}

	// Цены берутся из каталога, а не из формы
	items := make([]model.OrderItem, 0, len(form.Items))
	total := decimal.Zero
	for _, item := range form.Items {
		product, err := service.catalog.Product(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, backend.ErrNotFound) {
				return model.Order{}, fmt.Errorf("%w: product %s not found", ErrUnprocessableEntity, item.ProductID)
			}
			return model.Order{}, err
		}
		if !product.Available {
			return model.Order{}, fmt.Errorf("%w: %s is not available", ErrUnprocessableEntity, product.Name)
		}
		item.Name = product.Name
		item.Price = product.Price
		items = append(items, item)
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if form.Delivery.Method == model.DeliveryMethodDelivery {
		settings, err := service.backend.GetSettings(ctx)
		if err != nil {
			return model.Order{}, fmt.Errorf("get delivery fee: %w", err)
		}
		total = total.Add(settings.DeliveryFee)
	}

	// Номер генерируется один раз на попытку оформления и уходит в бэкенд вместе с заказом
	number := service.numbers.Next()
	created, err := service.backend.CreateOrder(ctx, backend.OrderRequest{
		OrderNumber: number,
		UserID:      customer,
		Customer:    form.Contact,
		Items:       items,
		Delivery:    form.Delivery,
		Total:       total,
	})
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}

	now := time.Now()
	order := model.Order{
		ID:     created.OrderID(),
		Number: created.OrderNumber,
		Data: model.OrderData{
			Customer:      customer,
			Contact:       form.Contact,
			Items:         items,
			Delivery:      form.Delivery,
			Total:         total,
			PaymentStatus: payment.StatusNotStarted.String(),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	// Журнал вспомогательный: ошибка записи не отменяет созданный заказ
	if err := service.store.OrderPost(ctx, order); err != nil {
		service.zaplog.Error("order journal write failed",
			zap.String("order", order.ID),
			zap.String("number", order.Number),
			zap.Error(err))
	}

	service.zaplog.Info("order created",
		zap.String("order", order.ID),
		zap.String("number", order.Number),
		zap.String("total", total.StringFixed(2)))
	return order, nil
}

func validateOrderForm(customer string, form *OrderForm) error {
	if customer == "" {
		return ErrInsufficientData
	}
	if form.Contact.Name == "" || form.Contact.Phone == "" {
		return fmt.Errorf("%w: contact name and phone are required", ErrInsufficientData)
	}
	if !phone.Valid(form.Contact.Phone) {
		return fmt.Errorf("%w: contact phone: %w", ErrUnprocessableEntity, phone.ErrInvalid)
	}
	if len(form.Items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrInsufficientData)
	}
	for _, item := range form.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return fmt.Errorf("%w: invalid line item", ErrUnprocessableEntity)
		}
	}

	switch form.Delivery.Method {
	case "":
		form.Delivery.Method = model.DeliveryMethodPickup
	case model.DeliveryMethodPickup:
	case model.DeliveryMethodDelivery:
		if form.Delivery.Address == "" {
			return fmt.Errorf("%w: delivery address is required", ErrInsufficientData)
		}
	default:
		return fmt.Errorf("%w: unknown delivery method %q", ErrUnprocessableEntity, form.Delivery.Method)
	}
	return nil
}

func (service *service) GetOrders(ctx context.Context, customer string) ([]model.Order, error) {
	if customer == "" {
		return nil, ErrInsufficientData
	}
	return service.store.OrderList(ctx, customer)
}

func (service *service) StartPayment(ctx context.Context, customer string, orderID string, phone string) error {
	order, err := service.ownOrder(ctx, customer, orderID)
	if err != nil {
		return err
	}

	return service.payments.Start(ctx, payment.Request{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Phone:       phone,
		Amount:      order.Data.Total,
	})
}

func (service *service) PaymentStatus(ctx context.Context, customer string, orderID string) (payment.Attempt, error) {
	if _, err := service.ownOrder(ctx, customer, orderID); err != nil {
		return payment.Attempt{}, err
	}
	attempt, err := service.payments.Snapshot(orderID)
	if errors.Is(err, payment.ErrNoAttempt) {
		return payment.Attempt{OrderID: orderID, Status: payment.StatusNotStarted}, nil
	}
	return attempt, err
}

func (service *service) CancelPayment(ctx context.Context, customer string, orderID string) error {
	if _, err := service.ownOrder(ctx, customer, orderID); err != nil {
		return err
	}
	return service.payments.Cancel(orderID)
}

func (service *service) ResetPayment(ctx context.Context, customer string, orderID string) error {
	if _, err := service.ownOrder(ctx, customer, orderID); err != nil {
		return err
	}
	return service.payments.Reset(orderID)
}

// ownOrder находит заказ в журнале, а если его там нет: в бэкенде,
// и проверяет, что он принадлежит покупателю.
func (service *service) ownOrder(ctx context.Context, customer string, orderID string) (model.Order, error) {
	if customer == "" || orderID == "" {
		return model.Order{}, ErrInsufficientData
	}

	order, err := service.store.OrderGet(ctx, orderID)
	if errors.Is(err, store.ErrNoRows) {
		order, err = service.backend.GetOrder(ctx, orderID)
		if errors.Is(err, backend.ErrNotFound) {
			return model.Order{}, ErrNotFound
		}
	}
	if err != nil {
		return model.Order{}, err
	}
	// заказ без владельца не принадлежит никому из покупателей
	if order.Data.Customer != customer {
		return model.Order{}, ErrNotFound
	}
	return order, nil
}

// journalPayment записывает итог попытки оплаты в журнал.
func (service *service) journalPayment(attempt payment.Attempt) {
	if !attempt.Status.Terminal() {
		return
	}
	err := service.store.OrderPaymentPut(context.Background(), attempt.OrderID, attempt.Status.String())
	if err != nil && !errors.Is(err, store.ErrNoRows) {
		service.zaplog.Error("payment journal write failed",
			zap.String("order", attempt.OrderID),
			zap.Stringer("status", attempt.Status),
			zap.Error(err))
	}
}

func (service *service) Products(ctx context.Context, category string) ([]model.Product, error) {
	return service.catalog.Products(ctx, category)
}

func (service *service) Product(ctx context.Context, productID string) (model.Product, error) {
	return service.catalog.Product(ctx, productID)
}

func (service *service) Categories(ctx context.Context) ([]model.Category, error) {
	return service.catalog.Categories(ctx)
}
