package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/bakery/internal/model"
)

// JSON запроса на создание заказа
type OrderRequest struct {
	OrderNumber string            `json:"orderNumber"`
	UserID      string            `json:"userId,omitempty"`
	Customer    model.Contact     `json:"customer"`
	Items       []model.OrderItem `json:"items"`
	Delivery    model.Delivery    `json:"delivery"`
	Total       decimal.Decimal   `json:"total"`
}

type OrderCreated struct {
	ID          string `json:"id"`
	MongoID     string `json:"_id"`
	OrderNumber string `json:"orderNumber"`
}

// OrderID возвращает идентификатор заказа независимо от того, в каком поле его вернул бэкенд.
func (o OrderCreated) OrderID() string {
	if o.ID != "" {
		return o.ID
	}
	return o.MongoID
}

// JSON заказа в ответах бэкенда
type OrderAnswer struct {
	ID            string            `json:"id"`
	MongoID       string            `json:"_id"`
	OrderNumber   string            `json:"orderNumber"`
	UserID        string            `json:"userId"`
	Customer      model.Contact     `json:"customer"`
	Items         []model.OrderItem `json:"items"`
	Delivery      model.Delivery    `json:"delivery"`
	Total         decimal.Decimal   `json:"total"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"paymentStatus"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (a OrderAnswer) toModel() model.Order {
	id := a.ID
	if id == "" {
		id = a.MongoID
	}
	return model.Order{
		ID:     id,
		Number: a.OrderNumber,
		Data: model.OrderData{
			Customer:      a.UserID,
			Contact:       a.Customer,
			Items:         a.Items,
			Delivery:      a.Delivery,
			Total:         a.Total,
			PaymentStatus: a.PaymentStatus,
			CreatedAt:     a.CreatedAt,
			UpdatedAt:     a.UpdatedAt,
		},
	}
}

func (c *client) CreateOrder(ctx context.Context, req OrderRequest) (OrderCreated, error) {
	var created OrderCreated
	err := c.do(c.request(ctx).SetBody(req), http.MethodPost, "/orders", &created)
	if err != nil {
		return OrderCreated{}, err
	}
	if created.OrderNumber == "" {
		created.OrderNumber = req.OrderNumber
	}
	return created, nil
}

func (c *client) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	var answer OrderAnswer
	req := c.request(ctx).SetPathParam("id", orderID)
	if err := c.do(req, http.MethodGet, "/orders/{id}", &answer); err != nil {
		return model.Order{}, err
	}
	return answer.toModel(), nil
}

func (c *client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var answers []OrderAnswer
	if err := c.do(c.request(ctx), http.MethodGet, "/orders", &answers); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(answers))
	for _, answer := range answers {
		orders = append(orders, answer.toModel())
	}
	return orders, nil
}

func (c *client) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	req := c.request(ctx).
		SetPathParam("id", orderID).
		SetBody(map[string]string{"status": status})
	return c.do(req, http.MethodPatch, "/orders/{id}/status", nil)
}
