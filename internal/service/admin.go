package service

import (
	"context"
	"fmt"

	"github.com/iurnickita/bakery/internal/model"
)

// Admin: операции back-office. Данные живут в бэкенде, витрина только передаёт запросы
// и сбрасывает кэш каталога после изменений.
type Admin interface {
	Orders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status string) error
	SaveProduct(ctx context.Context, product model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	SaveCategory(ctx context.Context, category model.Category) (model.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
	Customers(ctx context.Context) ([]model.Customer, error)
	Settings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) (model.Settings, error)
}

var orderStatuses = map[string]bool{
	model.OrderStatusPending:   true,
	model.OrderStatusConfirmed: true,
	model.OrderStatusPreparing: true,
	model.OrderStatusReady:     true,
	model.OrderStatusDelivered: true,
	model.OrderStatusCancelled: true,
}

type admin struct {
	service *service
}

func (service *service) Admin() Admin {
	return admin{service: service}
}

func (a admin) Orders(ctx context.Context) ([]model.Order, error) {
	return a.service.backend.ListOrders(ctx)
}

func (a admin) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	if orderID == "" {
		return ErrInsufficientData
	}
	if !orderStatuses[status] {
		return fmt.Errorf("%w: unknown order status %q", ErrUnprocessableEntity, status)
	}
	return a.service.backend.UpdateOrderStatus(ctx, orderID, status)
}

func (a admin) SaveProduct(ctx context.Context, product model.Product) (model.Product, error) {
	if product.Name == "" {
		return model.Product{}, fmt.Errorf("%w: product name is required", ErrInsufficientData)
	}
	if product.Price.IsNegative() {
		return model.Product{}, fmt.Errorf("%w: price must not be negative", ErrUnprocessableEntity)
	}
	saved, err := a.service.backend.SaveProduct(ctx, product)
	if err != nil {
		return model.Product{}, err
	}
	a.service.catalog.Invalidate(ctx)
	return saved, nil
}

func (a admin) DeleteProduct(ctx context.Context, productID string) error {
	if err := a.service.backend.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	a.service.catalog.Invalidate(ctx)
	return nil
}

func (a admin) SaveCategory(ctx context.Context, category model.Category) (model.Category, error) {
	if category.Name == "" {
		return model.Category{}, fmt.Errorf("%w: category name is required", ErrInsufficientData)
	}
	saved, err := a.service.backend.SaveCategory(ctx, category)
	if err != nil {
		return model.Category{}, err
	}
	a.service.catalog.Invalidate(ctx)
	return saved, nil
}

func (a admin) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := a.service.backend.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}
	a.service.catalog.Invalidate(ctx)
	return nil
}

func (a admin) Customers(ctx context.Context) ([]model.Customer, error) {
	return a.service.backend.ListCustomers(ctx)
}

func (a admin) Settings(ctx context.Context) (model.Settings, error) {
	return a.service.backend.GetSettings(ctx)
}

func (a admin) SaveSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	if settings.StoreName == "" {
		return model.Settings{}, fmt.Errorf("%w: store name is required", ErrInsufficientData)
	}
	if settings.DeliveryFee.IsNegative() {
		return model.Settings{}, fmt.Errorf("%w: delivery fee must not be negative", ErrUnprocessableEntity)
	}
	return a.service.backend.SaveSettings(ctx, settings)
}
