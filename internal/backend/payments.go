package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	OrderID string
	Phone   string
	Amount  decimal.Decimal
}

// JSON запроса инициации платежа; сумма уходит числом, а не строкой
type paymentRequestJSON struct {
	OrderID     string      `json:"orderId"`
	PhoneNumber string      `json:"phoneNumber"`
	Amount      json.Number `json:"amount"`
}

// JSON ответа о статусе платежа
type PaymentStatus struct {
	Verified bool   `json:"verified"`
	Status   string `json:"status"`
}

const (
	PaymentStatusCompleted = "Completed"
	PaymentStatusFailed    = "Failed"
)

// InitiatePayment отправляет запрос на оплату на телефон плательщика.
// Итог оплаты этот вызов не сообщает: его нужно запрашивать через PaymentStatus.
func (c *client) InitiatePayment(ctx context.Context, req PaymentRequest) error {
	body := paymentRequestJSON{
		OrderID:     req.OrderID,
		PhoneNumber: req.Phone,
		Amount:      json.Number(req.Amount.StringFixed(2)),
	}
	return c.do(c.request(ctx).SetBody(body), http.MethodPost, "/payments/initiate", nil)
}

func (c *client) PaymentStatus(ctx context.Context, orderID string) (PaymentStatus, error) {
	var status PaymentStatus
	req := c.request(ctx).SetPathParam("orderId", orderID)
	if err := c.do(req, http.MethodGet, "/payments/status/{orderId}", &status); err != nil {
		return PaymentStatus{}, err
	}
	return status, nil
}
