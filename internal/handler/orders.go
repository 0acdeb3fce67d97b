package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/bakery/internal/model"
	"github.com/iurnickita/bakery/internal/payment"
	"github.com/iurnickita/bakery/internal/service"
)

type PostOrderJSONRequest struct {
	Contact  model.Contact     `json:"contact"`
	Items    []model.OrderItem `json:"items"`
	Delivery model.Delivery    `json:"delivery"`
}

type OrderJSONResponse struct {
	ID            string            `json:"id"`
	Number        string            `json:"orderNumber"`
	Customer      string            `json:"customer,omitempty"`
	Contact       model.Contact     `json:"contact"`
	Items         []model.OrderItem `json:"items"`
	Delivery      model.Delivery    `json:"delivery"`
	Total         decimal.Decimal   `json:"total"`
	PaymentStatus string            `json:"paymentStatus,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func orderJSON(order model.Order) OrderJSONResponse {
	return OrderJSONResponse{
		ID:            order.ID,
		Number:        order.Number,
		Customer:      order.Data.Customer,
		Contact:       order.Data.Contact,
		Items:         order.Data.Items,
		Delivery:      order.Data.Delivery,
		Total:         order.Data.Total,
		PaymentStatus: order.Data.PaymentStatus,
		CreatedAt:     order.Data.CreatedAt,
	}
}

func ordersJSON(orders []model.Order) []OrderJSONResponse {
	out := make([]OrderJSONResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, orderJSON(order))
	}
	return out
}

func (h *handler) PostOrder(w http.ResponseWriter, r *http.Request) {
	var orderReq PostOrderJSONRequest
	if !h.readJSON(w, r, &orderReq) {
		return
	}

	order, err := h.service.PostOrder(r.Context(), customerOf(r), service.OrderForm{
		Contact:  orderReq.Contact,
		Items:    orderReq.Items,
		Delivery: orderReq.Delivery,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, orderJSON(order))
}

func (h *handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetOrders(r.Context(), customerOf(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, ordersJSON(orders))
}

type PostPaymentJSONRequest struct {
	Phone string `json:"phone"`
}

// PaymentJSONResponse: состояние попытки оплаты, как его показывает витрина
type PaymentJSONResponse struct {
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber,omitempty"`
	Status      payment.Status  `json:"status"`
	Message     string          `json:"message"`
	Phone       string          `json:"phone,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Polls       int             `json:"polls"`
	Active      bool            `json:"active"`
	Terminal    bool            `json:"terminal"`
}

func paymentJSON(orderID string, attempt payment.Attempt) PaymentJSONResponse {
	return PaymentJSONResponse{
		OrderID:     orderID,
		OrderNumber: attempt.OrderNumber,
		Status:      attempt.Status,
		Message:     payment.Message(attempt),
		Phone:       attempt.Phone,
		Amount:      attempt.Amount,
		Polls:       attempt.Polls,
		Active:      attempt.Active,
		Terminal:    attempt.Status.Terminal(),
	}
}

func (h *handler) PostPayment(w http.ResponseWriter, r *http.Request) {
	var paymentReq PostPaymentJSONRequest
	if !h.readJSON(w, r, &paymentReq) {
		return
	}

	orderID := chi.URLParam(r, "id")
	err := h.service.StartPayment(r.Context(), customerOf(r), orderID, paymentReq.Phone)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writePayment(w, r, http.StatusAccepted)
}

func (h *handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	h.writePayment(w, r, http.StatusOK)
}

func (h *handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelPayment(r.Context(), customerOf(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writePayment(w, r, http.StatusOK)
}

func (h *handler) ResetPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetPayment(r.Context(), customerOf(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writePayment(w, r, http.StatusOK)
}

func (h *handler) writePayment(w http.ResponseWriter, r *http.Request, status int) {
	orderID := chi.URLParam(r, "id")
	attempt, err := h.service.PaymentStatus(r.Context(), customerOf(r), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, status, paymentJSON(orderID, attempt))
}

func (h *handler) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err = json.Unmarshal(buf.Bytes(), v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
