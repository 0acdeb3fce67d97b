package backend

import (
	"context"
	"net/http"

	"github.com/iurnickita/bakery/internal/model"
)

func (c *client) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	var products []model.Product
	req := c.request(ctx)
	if category != "" {
		req.SetQueryParam("category", category)
	}
	if err := c.do(req, http.MethodGet, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *client) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	var product model.Product
	req := c.request(ctx).SetPathParam("id", productID)
	if err := c.do(req, http.MethodGet, "/products/{id}", &product); err != nil {
		return model.Product{}, err
	}
	return product, nil
}

// SaveProduct создаёт товар (пустой ID) или обновляет существующий.
func (c *client) SaveProduct(ctx context.Context, product model.Product) (model.Product, error) {
	var saved model.Product
	req := c.request(ctx).SetBody(product)
	var err error
	if product.ID == "" {
		err = c.do(req, http.MethodPost, "/products", &saved)
	} else {
		err = c.do(req.SetPathParam("id", product.ID), http.MethodPut, "/products/{id}", &saved)
	}
	if err != nil {
		return model.Product{}, err
	}
	return saved, nil
}

func (c *client) DeleteProduct(ctx context.Context, productID string) error {
	req := c.request(ctx).SetPathParam("id", productID)
	return c.do(req, http.MethodDelete, "/products/{id}", nil)
}

func (c *client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(c.request(ctx), http.MethodGet, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *client) SaveCategory(ctx context.Context, category model.Category) (model.Category, error) {
	var saved model.Category
	req := c.request(ctx).SetBody(category)
	var err error
	if category.ID == "" {
		err = c.do(req, http.MethodPost, "/categories", &saved)
	} else {
		err = c.do(req.SetPathParam("id", category.ID), http.MethodPut, "/categories/{id}", &saved)
	}
	if err != nil {
		return model.Category{}, err
	}
	return saved, nil
}

func (c *client) DeleteCategory(ctx context.Context, categoryID string) error {
	req := c.request(ctx).SetPathParam("id", categoryID)
	return c.do(req, http.MethodDelete, "/categories/{id}", nil)
}
