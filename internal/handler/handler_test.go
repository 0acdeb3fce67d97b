package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/auth"
	authConfig "github.com/iurnickita/bakery/internal/auth/config"
	"github.com/iurnickita/bakery/internal/backend"
	"github.com/iurnickita/bakery/internal/model"
	"github.com/iurnickita/bakery/internal/payment"
	"github.com/iurnickita/bakery/internal/phone"
	"github.com/iurnickita/bakery/internal/service"
	"github.com/iurnickita/bakery/internal/token"
)

const testSecret = "secret"

// fakeService реализует только вызываемые в тесте методы
type fakeService struct {
	service.Service

	postOrderFn    func(customer string, form service.OrderForm) (model.Order, error)
	startPaymentFn func(customer, orderID, phone string) error
	attempt        payment.Attempt
	statusErr      error
	admin          *fakeAdmin
}

func (f *fakeService) PostOrder(_ context.Context, customer string, form service.OrderForm) (model.Order, error) {
	return f.postOrderFn(customer, form)
}

func (f *fakeService) GetOrders(_ context.Context, customer string) ([]model.Order, error) {
	return nil, nil
}

func (f *fakeService) StartPayment(_ context.Context, customer string, orderID string, phone string) error {
	return f.startPaymentFn(customer, orderID, phone)
}

func (f *fakeService) PaymentStatus(context.Context, string, string) (payment.Attempt, error) {
	return f.attempt, f.statusErr
}

func (f *fakeService) Product(_ context.Context, productID string) (model.Product, error) {
	return model.Product{}, &backend.APIError{StatusCode: http.StatusNotFound, Message: "Product not found"}
}

func (f *fakeService) Admin() service.Admin {
	return f.admin
}

type fakeAdmin struct {
	service.Admin

	statuses map[string]string
}

func (f *fakeAdmin) UpdateOrderStatus(_ context.Context, orderID string, status string) error {
	if status == "baked" {
		return service.ErrUnprocessableEntity
	}
	f.statuses[orderID] = status
	return nil
}

func newTestRouter(svc service.Service) http.Handler {
	a := auth.NewAuth(authConfig.Config{Secret: testSecret, TokenTTL: time.Hour}, nil, zap.NewNop())
	return newHandler(a, svc, zap.NewNop()).newRouter()
}

func bearer(t *testing.T, userCode, role string) string {
	t.Helper()
	tokenString, err := token.BuildJWTString([]byte(testSecret), time.Hour, token.Session{
		UserCode:     userCode,
		Role:         role,
		BackendToken: "bt",
	})
	require.NoError(t, err)
	return "Bearer " + tokenString
}

func doRequest(t *testing.T, h http.Handler, method, target, body, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestOrdersRequireSession(t *testing.T) {
	h := newTestRouter(&fakeService{})

	w := doRequest(t, h, http.MethodGet, "/api/orders", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, h, http.MethodGet, "/api/orders", "", bearer(t, "c1", model.RoleCustomer))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestPostOrder(t *testing.T) {
	svc := &fakeService{
		postOrderFn: func(customer string, form service.OrderForm) (model.Order, error) {
			if len(form.Items) == 0 {
				return model.Order{}, service.ErrInsufficientData
			}
			return model.Order{
				ID:     "o1",
				Number: "JCB-250101-0001",
				Data: model.OrderData{
					Customer: customer,
					Contact:  form.Contact,
					Items:    form.Items,
					Total:    decimal.RequireFromString("45.99"),
				},
			}, nil
		},
	}
	h := newTestRouter(svc)
	authorization := bearer(t, "c1", model.RoleCustomer)

	w := doRequest(t, h, http.MethodPost, "/api/orders", `{"contact":{"name":"A","phone":"0712345678"},"items":[]}`, authorization)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, http.MethodPost, "/api/orders", `{not json`, authorization)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, http.MethodPost, "/api/orders",
		`{"contact":{"name":"A","phone":"0712345678"},"items":[{"productId":"sourdough","quantity":3}]}`, authorization)
	require.Equal(t, http.StatusCreated, w.Code)

	var got OrderJSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "o1", got.ID)
	require.Equal(t, "JCB-250101-0001", got.Number)
	require.Equal(t, "c1", got.Customer)
	require.Equal(t, "45.99", got.Total.StringFixed(2))
}

func TestPostPayment(t *testing.T) {
	svc := &fakeService{
		attempt: payment.Attempt{
			OrderID:     "o1",
			OrderNumber: "JCB-250101-0001",
			Phone:       "254712345678",
			Amount:      decimal.RequireFromString("45.99"),
			Status:      payment.StatusAwaitingConfirmation,
			Active:      true,
		},
	}
	svc.startPaymentFn = func(customer, orderID, raw string) error {
		if _, err := phone.Normalize(raw); err != nil {
			return &payment.ValidationError{Field: "phone", Err: err}
		}
		return nil
	}
	h := newTestRouter(svc)
	authorization := bearer(t, "c1", model.RoleCustomer)

	w := doRequest(t, h, http.MethodPost, "/api/orders/o1/payment", `{"phone":"12345"}`, authorization)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, http.MethodPost, "/api/orders/o1/payment", `{"phone":"0712345678"}`, authorization)
	require.Equal(t, http.StatusAccepted, w.Code)

	var got PaymentJSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "o1", got.OrderID)
	require.Equal(t, payment.StatusAwaitingConfirmation, got.Status)
	require.True(t, got.Active)
	require.False(t, got.Terminal)
	require.Equal(t, payment.Message(svc.attempt), got.Message)
}

func TestPaymentErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{
			name: "gateway message",
			err:  &payment.InitiationError{Message: "Insufficient balance", Err: errors.New("402")},
			code: http.StatusBadGateway,
			body: "Insufficient balance",
		},
		{name: "foreign order", err: service.ErrNotFound, code: http.StatusNotFound},
		{name: "cancelled", err: payment.ErrCancelled, code: http.StatusConflict},
		{
			name: "backend rejects",
			err:  &backend.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "bad amount"},
			code: http.StatusUnprocessableEntity,
			body: "bad amount",
		},
		{name: "backend down", err: &backend.APIError{StatusCode: http.StatusServiceUnavailable}, code: http.StatusBadGateway},
		{name: "unexpected", err: errors.New("boom"), code: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{startPaymentFn: func(string, string, string) error { return tt.err }}
			h := newTestRouter(svc)

			w := doRequest(t, h, http.MethodPost, "/api/orders/o1/payment", `{"phone":"0712345678"}`, bearer(t, "c1", model.RoleCustomer))
			require.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				require.Equal(t, tt.body, strings.TrimSpace(w.Body.String()))
			}
		})
	}
}

func TestGetPaymentWithoutAttempt(t *testing.T) {
	svc := &fakeService{attempt: payment.Attempt{Status: payment.StatusNotStarted}}
	h := newTestRouter(svc)

	w := doRequest(t, h, http.MethodGet, "/api/orders/o1/payment", "", bearer(t, "c1", model.RoleCustomer))
	require.Equal(t, http.StatusOK, w.Code)

	var got PaymentJSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, payment.StatusNotStarted, got.Status)
	require.False(t, got.Active)
	require.NotEmpty(t, got.Message)
}

func TestCatalogProductNotFound(t *testing.T) {
	h := newTestRouter(&fakeService{})

	w := doRequest(t, h, http.MethodGet, "/api/catalog/products/nope", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	admin := &fakeAdmin{statuses: make(map[string]string)}
	h := newTestRouter(&fakeService{admin: admin})

	w := doRequest(t, h, http.MethodPatch, "/api/admin/orders/o1/status", `{"status":"ready"}`, bearer(t, "c1", model.RoleCustomer))
	require.Equal(t, http.StatusForbidden, w.Code)

	adminAuth := bearer(t, "a1", model.RoleAdmin)
	w = doRequest(t, h, http.MethodPatch, "/api/admin/orders/o1/status", `{"status":"baked"}`, adminAuth)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(t, h, http.MethodPatch, "/api/admin/orders/o1/status", `{"status":"ready"}`, adminAuth)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, model.OrderStatusReady, admin.statuses["o1"])
}
